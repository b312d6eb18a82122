// Package venue defines the connector capability set every per-venue
// implementation satisfies (spec.md §4.C, §9: "model connectors as a
// capability set {discover, run} ... shared behavior belongs in a common
// helper, not a base type") and the helpers shared across them.
package venue

import (
	"context"

	"github.com/matrix-911/Airbitrage/business/market/domain"
)

// Sink receives a normalized top-of-book update. It MUST be non-blocking
// from the connector's perspective (spec.md §4.C) — in this module it is
// a closure over *quotetable.Table.Put, itself mutex-protected and O(1).
// Constructor-injected, never a mutable late-bound callback (spec.md §9).
type Sink func(venue string, pair domain.Pair, q domain.Quote)

// Connector is the capability set implemented once per venue. There is
// no shared base type: batching, reconnect and best-level derivation
// live in the helpers below, and each venue package composes them as it
// needs.
type Connector interface {
	// Name is the venue tag used as the quote table's venue key.
	Name() string

	// Discover performs a one-shot HTTP call against the venue's public
	// instruments endpoint and returns the subset of desired that is
	// currently tradable as a spot pair. Discovery failures return an
	// empty slice and a non-nil error; callers log and continue with
	// other venues (spec.md §7).
	Discover(ctx context.Context, desired []domain.Pair) ([]domain.Pair, error)

	// Run starts as many websocket sessions as needed to carry
	// supported, each handling at most the connector's SUB_BATCH pairs.
	// It returns only when ctx is cancelled (or on an unrecoverable
	// setup error); transient I/O errors trigger an internal reconnect,
	// never a return.
	Run(ctx context.Context, supported []domain.Pair) error
}
