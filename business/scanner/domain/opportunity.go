// Package domain contains the scanner bounded context's value types:
// opportunity keys and records, hysteresis state, and stale-quote rows.
package domain

import (
	"github.com/matrix-911/Airbitrage/business/market/domain"
	"github.com/shopspring/decimal"
)

// OpportunityKey identifies one directional cross-venue spread for a
// pair. (pair, A, B) and (pair, B, A) are distinct keys (spec.md §8
// invariant 8) — buying on A and selling on B is a different hysteresis
// instance from the reverse direction.
type OpportunityKey struct {
	Pair      domain.Pair
	BuyVenue  string
	SellVenue string
}

// Opportunity is one ranked row produced by a compute() scan.
type Opportunity struct {
	ID         string
	Pair       domain.Pair
	BuyVenue   string
	SellVenue  string
	BuyPrice   decimal.Decimal
	SellPrice  decimal.Decimal
	BuyPriceStr  string
	SellPriceStr string
	ProfitPct  decimal.Decimal
	BuyQty     decimal.Decimal
	SellQty    decimal.Decimal
	ExecQty    decimal.Decimal
	BuyAgeSec  float64
	SellAgeSec float64
	Long       bool
}

// Key returns the opportunity's hysteresis identity.
func (o Opportunity) Key() OpportunityKey {
	return OpportunityKey{Pair: o.Pair, BuyVenue: o.BuyVenue, SellVenue: o.SellVenue}
}

// StaleQuote is one row of list_stale()'s output (spec.md §4.F).
type StaleQuote struct {
	Venue    string
	Pair     domain.Pair
	AgeSec   float64
	Quote    domain.Quote
}
