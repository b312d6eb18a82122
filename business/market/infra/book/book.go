// Package book implements the per-connector order-book level store
// (spec.md §4.B): a price-keyed map per side with best-level extraction.
// A Book is owned exclusively by the connector session that maintains it
// and is never shared outside that session (spec.md §5).
package book

import (
	"sync"

	"github.com/shopspring/decimal"
)

// Side identifies which side of the book a level belongs to.
type Side int

const (
	SideBid Side = iota
	SideAsk
)

// Level is one price level: the venue's original decimal string (the map
// key, to avoid IEEE-754 float key duplication per spec.md §9), its
// parsed numeric value, and the size resting at that price.
type Level struct {
	PriceStr string
	Price    decimal.Decimal
	Size     decimal.Decimal
}

// Book holds two independent price->level maps, bids and asks.
type Book struct {
	mu   sync.RWMutex
	bids map[string]Level
	asks map[string]Level
}

// New returns an empty Book.
func New() *Book {
	return &Book{
		bids: make(map[string]Level),
		asks: make(map[string]Level),
	}
}

// Reset clears both sides. Used on a fresh snapshot, including the first
// snapshot received after a reconnect — the prior session's book is never
// carried across a reconnect (spec.md §4.C).
func (b *Book) Reset() {
	b.mu.Lock()
	b.bids = make(map[string]Level)
	b.asks = make(map[string]Level)
	b.mu.Unlock()
}

// Apply inserts or replaces the level at priceStr, or removes it when
// size is zero (spec.md invariant 10). priceStr must be the venue's
// original price token, parsed once here for comparisons in Best.
func (b *Book) Apply(side Side, priceStr string, size decimal.Decimal) error {
	price, err := decimal.NewFromString(priceStr)
	if err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	m := b.sideMapLocked(side)
	if size.Sign() == 0 {
		delete(m, priceStr)
		return nil
	}
	m[priceStr] = Level{PriceStr: priceStr, Price: price, Size: size}
	return nil
}

// Best returns the extremal level for side: the maximum price for bids,
// the minimum for asks. ok is false when that side is empty.
func (b *Book) Best(side Side) (lvl Level, ok bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	m := b.sideMapLocked(side)
	for _, candidate := range m {
		if !ok {
			lvl, ok = candidate, true
			continue
		}
		switch side {
		case SideBid:
			if candidate.Price.GreaterThan(lvl.Price) {
				lvl = candidate
			}
		case SideAsk:
			if candidate.Price.LessThan(lvl.Price) {
				lvl = candidate
			}
		}
	}
	return lvl, ok
}

// Depth returns the number of resting levels on side, mainly for tests
// and metrics.
func (b *Book) Depth(side Side) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.sideMapLocked(side))
}

// sideMapLocked must be called with b.mu held (read or write).
func (b *Book) sideMapLocked(side Side) map[string]Level {
	if side == SideBid {
		return b.bids
	}
	return b.asks
}
