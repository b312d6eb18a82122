// Package coinbase implements the venue.Connector capability set for
// Coinbase Exchange's public level2_batch channel: a snapshot+delta
// style connector per spec.md §4.C, maintaining one book.Book per
// product across the life of a batch session.
package coinbase

import "strings"

// subscribeRequest is the level2_batch subscription control frame.
type subscribeRequest struct {
	Type     string             `json:"type"`
	Channels []subscribeChannel `json:"channels"`
}

type subscribeChannel struct {
	Name       string   `json:"name"`
	ProductIDs []string `json:"product_ids"`
}

// wsEnvelope is decoded first to branch on Type before the full
// snapshot/l2update payload is parsed.
type wsEnvelope struct {
	Type      string `json:"type"`
	ProductID string `json:"product_id"`
}

type snapshotEvent struct {
	Type      string      `json:"type"`
	ProductID string      `json:"product_id"`
	Bids      [][2]string `json:"bids"`
	Asks      [][2]string `json:"asks"`
}

// l2UpdateEvent carries [side, price, size] triples; size "0" removes
// the level.
type l2UpdateEvent struct {
	Type      string     `json:"type"`
	ProductID string     `json:"product_id"`
	Changes   [][3]string `json:"changes"`
}

type productsResponse []product

type product struct {
	BaseCurrency    string `json:"base_currency"`
	QuoteCurrency   string `json:"quote_currency"`
	Status          string `json:"status"`
	TradingDisabled bool   `json:"trading_disabled"`
	CancelOnly      bool   `json:"cancel_only"`
	PostOnly        bool   `json:"post_only"`
}

// productID converts a canonical base/quote leg pair into Coinbase's
// hyphenated product form, e.g. ("ETH", "USDC") -> "ETH-USDC".
func productID(base, quote string) string {
	return strings.ToUpper(base) + "-" + strings.ToUpper(quote)
}
