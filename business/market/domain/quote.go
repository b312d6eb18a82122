// Package domain contains the core value types shared across the market
// bounded context: canonical pairs and the top-of-book Quote record.
package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Pair is a canonical "BASE/QUOTE" trading pair identifier. Venue-specific
// encodings ("BTC-USDT", "btc_usdt", "tBTCUST", ...) never leave a
// connector; everything outside business/market/infra/venue deals only in
// Pair.
type Pair string

// NewPair builds the canonical form from upper-cased base/quote codes.
func NewPair(base, quote string) Pair {
	return Pair(strings.ToUpper(base) + "/" + strings.ToUpper(quote))
}

// Split returns the base and quote legs of the pair.
func (p Pair) Split() (base, quote string) {
	parts := strings.SplitN(string(p), "/", 2)
	if len(parts) != 2 {
		return string(p), ""
	}
	return parts[0], parts[1]
}

func (p Pair) String() string { return string(p) }

// ParsePairs converts configuration strings like "BTC/USDT" into
// canonical Pair values, skipping any entry that isn't a two-leg
// "BASE/QUOTE" form.
func ParsePairs(raw []string) []Pair {
	out := make([]Pair, 0, len(raw))
	for _, r := range raw {
		parts := strings.SplitN(strings.TrimSpace(r), "/", 2)
		if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
			continue
		}
		out = append(out, NewPair(parts[0], parts[1]))
	}
	return out
}

// Quote is the normalized top-of-book record published by a connector for
// a single (venue, pair). Every field except TsMs is optional: a nil
// pointer means the venue did not supply that field on its most recent
// accepted update. Writes to a Quote are always whole-record replacements;
// partial field updates never appear in the quote table.
type Quote struct {
	Bid   *decimal.Decimal
	Ask   *decimal.Decimal
	BidSz *decimal.Decimal
	AskSz *decimal.Decimal

	// BidStr/AskStr preserve the venue's original decimal string when one
	// was supplied, so the numeric formatter can render without ever
	// routing the value through a binary float.
	BidStr *string
	AskStr *string

	// TsMs is the receive-time (not venue-supplied) monotonic-wall-clock
	// millisecond timestamp of the last accepted update. Zero means never
	// updated.
	TsMs int64
}

// HasBid reports whether a bid price is present.
func (q Quote) HasBid() bool { return q.Bid != nil }

// HasAsk reports whether an ask price is present.
func (q Quote) HasAsk() bool { return q.Ask != nil }

// HasBothSides reports whether both a bid and an ask are present, the
// precondition for the quote to serve as a source in the arbitrage scan
// (spec.md §4.F: half-quotes are never scanned).
func (q Quote) HasBothSides() bool { return q.HasBid() && q.HasAsk() }

// AgeMs returns how long ago (in milliseconds) this quote was last
// accepted, relative to nowMs. A quote that was never updated (TsMs==0)
// reports math.MaxInt64 so it always classifies as stale.
func (q Quote) AgeMs(nowMs int64) int64 {
	if q.TsMs == 0 {
		return 1<<63 - 1
	}
	return nowMs - q.TsMs
}

// NewQuoteFromStrings builds a Quote from the venue's original decimal
// strings, parsing them into decimal.Decimal for arithmetic while
// preserving the strings for lossless rendering. A string that fails to
// parse is dropped (apperror.CodeInvalidQuoteField territory) rather than
// failing the whole update, mirroring spec.md §7's per-field drop policy.
func NewQuoteFromStrings(bidStr, bidSzStr, askStr, askSzStr *string, tsMs int64) Quote {
	q := Quote{TsMs: tsMs}

	if bidStr != nil {
		if v, err := decimal.NewFromString(*bidStr); err == nil {
			q.Bid = &v
			q.BidStr = bidStr
		}
	}
	if bidSzStr != nil && q.Bid != nil {
		if v, err := decimal.NewFromString(*bidSzStr); err == nil {
			q.BidSz = &v
		}
	}
	if askStr != nil {
		if v, err := decimal.NewFromString(*askStr); err == nil {
			q.Ask = &v
			q.AskStr = askStr
		}
	}
	if askSzStr != nil && q.Ask != nil {
		if v, err := decimal.NewFromString(*askSzStr); err == nil {
			q.AskSz = &v
		}
	}
	return q
}
