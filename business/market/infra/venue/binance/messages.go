// Package binance implements the venue.Connector capability set for
// Binance's combined-streams WebSocket API: a full-snapshot style
// connector per spec.md §4.C, taking bids[0]/asks[0] directly from each
// @bookTicker message rather than maintaining an incremental book.
package binance

import (
	"encoding/json"
	"strings"
)

// streamEvent is the combined-streams wrapper Binance puts around every
// push once a client connects to /stream?streams=....
type streamEvent struct {
	Stream string          `json:"stream"`
	Data   json.RawMessage `json:"data"`
}

// bookTickerEvent is the best bid/ask update pushed on <symbol>@bookTicker.
// It carries the venue's original decimal strings untouched so the quote
// table can preserve them for lossless rendering (spec.md §4.A).
type bookTickerEvent struct {
	Symbol   string `json:"s"`
	BidPrice string `json:"b"`
	BidQty   string `json:"B"`
	AskPrice string `json:"a"`
	AskQty   string `json:"A"`
}

// exchangeInfoResponse is the REST response for the exchange's tradable
// spot symbol catalog, used by Discover.
type exchangeInfoResponse struct {
	Symbols []exchangeSymbol `json:"symbols"`
}

type exchangeSymbol struct {
	Symbol     string `json:"symbol"`
	Status     string `json:"status"`
	BaseAsset  string `json:"baseAsset"`
	QuoteAsset string `json:"quoteAsset"`
	IsSpot     bool   `json:"isSpotTradingAllowed"`
}

// bookTickerStream returns the bookTicker stream name for a symbol.
func bookTickerStream(symbol string) string {
	return strings.ToLower(symbol) + "@bookTicker"
}

// symbolFor converts a canonical Pair into Binance's concatenated symbol
// form, e.g. "BTC/USDT" -> "BTCUSDT".
func symbolFor(base, quote string) string {
	return strings.ToUpper(base) + strings.ToUpper(quote)
}
