// Package quotetable implements the process-wide quote table (spec.md
// §4.D): a two-level venue -> pair -> Quote mapping with a single writer
// per (venue, pair) and many readers.
package quotetable

import (
	"sync"

	"github.com/matrix-911/Airbitrage/business/market/domain"
)

// Table is safe for concurrent use: each venue has its own inner map
// guarded by the table's lock, and every write is a whole-record replace
// (spec.md §3: "writes to a quote are always whole-record replacements").
type Table struct {
	mu        sync.RWMutex
	quotes    map[string]map[domain.Pair]domain.Quote
	supported map[string]map[domain.Pair]struct{}
}

// New returns an empty Table.
func New() *Table {
	return &Table{
		quotes:    make(map[string]map[domain.Pair]domain.Quote),
		supported: make(map[string]map[domain.Pair]struct{}),
	}
}

// Put replaces the quote for (venue, pair). Last-write-wins: the caller
// is expected to be the single connector owning that venue, so no
// cross-writer ordering needs to be resolved here.
func (t *Table) Put(venue string, pair domain.Pair, q domain.Quote) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.quotes[venue] == nil {
		t.quotes[venue] = make(map[domain.Pair]domain.Quote)
	}
	t.quotes[venue][pair] = q
}

// SetSupported records the set of pairs a venue's discover() call
// returned as tradable.
func (t *Table) SetSupported(venue string, pairs []domain.Pair) {
	t.mu.Lock()
	defer t.mu.Unlock()
	set := make(map[domain.Pair]struct{}, len(pairs))
	for _, p := range pairs {
		set[p] = struct{}{}
	}
	t.supported[venue] = set
}

// Supported returns the pairs a venue's last discover() call accepted.
func (t *Table) Supported(venue string) []domain.Pair {
	t.mu.RLock()
	defer t.mu.RUnlock()
	set := t.supported[venue]
	out := make([]domain.Pair, 0, len(set))
	for p := range set {
		out = append(out, p)
	}
	return out
}

// Venues returns every venue name that has ever published a quote or a
// supported set.
func (t *Table) Venues() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	seen := make(map[string]struct{})
	for v := range t.quotes {
		seen[v] = struct{}{}
	}
	for v := range t.supported {
		seen[v] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for v := range seen {
		out = append(out, v)
	}
	return out
}

// VenueQuote pairs a stored Quote with the (venue, pair) it belongs to.
type VenueQuote struct {
	Venue string
	Pair  domain.Pair
	Quote domain.Quote
}

// Snapshot is a materialized, point-in-time-per-key copy of the table,
// consistent enough for one engine scan pass (spec.md §5: no global
// consistent cut is promised or needed, only per-key atomicity).
type Snapshot struct {
	entries []VenueQuote
}

// Snapshot returns a materialized copy of every stored quote.
func (t *Table) Snapshot() Snapshot {
	t.mu.RLock()
	defer t.mu.RUnlock()

	entries := make([]VenueQuote, 0)
	for venue, pairs := range t.quotes {
		for pair, q := range pairs {
			entries = append(entries, VenueQuote{Venue: venue, Pair: pair, Quote: q})
		}
	}
	return Snapshot{entries: entries}
}

// All returns every entry in the snapshot; iteration order is the map
// iteration order at snapshot time and is not meaningful.
func (s Snapshot) All() []VenueQuote { return s.entries }

// ByPair groups the snapshot's entries by pair, the shape the arbitrage
// engine scans over (spec.md §4.F step 2: "for every pair observed in
// any venue").
func (s Snapshot) ByPair() map[domain.Pair][]VenueQuote {
	out := make(map[domain.Pair][]VenueQuote)
	for _, e := range s.entries {
		out[e.Pair] = append(out[e.Pair], e)
	}
	return out
}
