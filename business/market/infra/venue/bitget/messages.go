// Package bitget implements the venue.Connector capability set for
// Bitget's public spot WebSocket channel: a snapshot+delta style
// connector per spec.md §4.C, maintaining an incremental book.Book per
// pair and re-deriving top-of-book on every "snapshot" or "update"
// push.
package bitget

import "encoding/json"

// wsEnvelope is the shape of every push on the public channel: a
// subscribe/unsubscribe ack, an error, or a book push.
type wsEnvelope struct {
	Event  string          `json:"event"`
	Code   json.RawMessage `json:"code"`
	Action string          `json:"action"`
	Arg    wsArg           `json:"arg"`
	Data   []wsBookPayload `json:"data"`
}

type wsArg struct {
	InstType string `json:"instType"`
	Channel  string `json:"channel"`
	InstID   string `json:"instId"`
}

// wsBookPayload carries one book push's levels. Bids/Asks are
// [price, size] string pairs, a zero size meaning "remove this level"
// (spec.md invariant 10).
type wsBookPayload struct {
	Bids [][2]string `json:"bids"`
	Asks [][2]string `json:"asks"`
}

// exchangeSymbolsResponse is the REST response for Bitget's spot symbol
// catalog, used by Discover.
type exchangeSymbolsResponse struct {
	Data []exchangeSymbol `json:"data"`
}

type exchangeSymbol struct {
	BaseCoin  string `json:"baseCoin"`
	QuoteCoin string `json:"quoteCoin"`
	Status    string `json:"status"`
}

// instID converts a canonical base/quote pair into Bitget's
// concatenated instrument ID, e.g. ("BTC", "USDT") -> "BTCUSDT".
func instID(base, quote string) string {
	return base + quote
}
