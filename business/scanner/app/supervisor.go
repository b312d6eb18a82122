package app

import (
	"context"
	"sort"
	"strings"
	"sync"

	marketdomain "github.com/matrix-911/Airbitrage/business/market/domain"
	"github.com/matrix-911/Airbitrage/business/market/infra/quotetable"
	"github.com/matrix-911/Airbitrage/business/market/infra/venue"
	scannerdomain "github.com/matrix-911/Airbitrage/business/scanner/domain"
	"github.com/matrix-911/Airbitrage/internal/config"
	"github.com/matrix-911/Airbitrage/internal/logger"
)

// Snapshot is the supervisor's external read contract (spec.md §6):
// ranked opportunities, stale quotes, and the venues currently loaded.
type Snapshot struct {
	Opportunities []scannerdomain.Opportunity
	Stale         []scannerdomain.StaleQuote
	Venues        []string
}

// Supervisor is component G: it owns the connector fleet, wires their
// output into the shared quote table, and exposes snapshot()/
// reconfigure() to external collaborators (spec.md §4.G).
type Supervisor struct {
	log     logger.LoggerInterface
	table   *quotetable.Table
	engine  *Engine
	venues  []string
	options map[string]config.VenueOptions

	mu       sync.Mutex
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	current  []marketdomain.Pair // canonical sorted desired set currently running
	running  bool
}

// NewSupervisor builds a Supervisor over the given venue names (spec.md
// §6 VENUES configuration) and per-venue options.
func NewSupervisor(log logger.LoggerInterface, table *quotetable.Table, engine *Engine, venues []string, options map[string]config.VenueOptions) *Supervisor {
	return &Supervisor{
		log:     log,
		table:   table,
		engine:  engine,
		venues:  venues,
		options: options,
	}
}

// Start begins serving desired (spec.md §1's start(pairs) entry): it
// discovers each venue's supported subset and launches one session task
// per connector. It is the initial, non-reconfiguring entry point.
func (s *Supervisor) Start(ctx context.Context, desired []marketdomain.Pair) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.startLocked(ctx, desired)
}

// Reconfigure implements spec.md §4.G's hot-reconfigure: if the
// canonical sorted desired set differs from what's currently running,
// every session is cancelled, discovery is re-run, and sessions are
// restarted. The swap is atomic from a snapshot() caller's perspective
// beyond the unavoidable aging of carried-over quotes.
func (s *Supervisor) Reconfigure(ctx context.Context, newDesired []marketdomain.Pair) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sameCanonicalSet(s.current, newDesired) {
		return nil
	}

	s.stopLocked()
	return s.startLocked(ctx, newDesired)
}

// Stop cancels every running session and waits for them to return.
func (s *Supervisor) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()
}

func (s *Supervisor) startLocked(ctx context.Context, desired []marketdomain.Pair) error {
	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.log.Info(runCtx, "starting venue fleet", "venues", s.venues, "pairs", pairsToStrings(desired))

	for _, name := range s.venues {
		name := name
		sink := func(venueName string, pair marketdomain.Pair, q marketdomain.Quote) {
			s.table.Put(venueName, pair, q)
		}

		conn, err := venue.Build(name, s.options[name], sink, s.log)
		if err != nil {
			s.log.Warn(runCtx, "venue not available, skipping", "venue", name, "error", err)
			continue
		}

		supported, err := conn.Discover(runCtx, desired)
		if err != nil {
			s.log.Warn(runCtx, "discovery failed, supervisor continues with other venues", "venue", name, "error", err)
			supported = nil
		}
		s.table.SetSupported(name, supported)

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			if err := conn.Run(runCtx, supported); err != nil && runCtx.Err() == nil {
				s.log.Warn(runCtx, "venue session returned unexpectedly", "venue", name, "error", err)
			}
		}()
	}

	s.current = canonicalSort(desired)
	s.running = true
	return nil
}

func (s *Supervisor) stopLocked() {
	if !s.running {
		return
	}
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
	s.running = false
}

// Snapshot is the thin wrapper over the engine operations described in
// spec.md §6.
func (s *Supervisor) Snapshot() Snapshot {
	return Snapshot{
		Opportunities: s.engine.Compute(),
		Stale:         s.engine.ListStale(),
		Venues:        s.table.Venues(),
	}
}

// Supported returns the pairs the named venue's last discover() call
// accepted.
func (s *Supervisor) Supported(venueName string) []marketdomain.Pair {
	return s.table.Supported(venueName)
}

func canonicalSort(pairs []marketdomain.Pair) []marketdomain.Pair {
	out := make([]marketdomain.Pair, len(pairs))
	copy(out, pairs)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func sameCanonicalSet(a, b []marketdomain.Pair) bool {
	ca, cb := canonicalSort(a), canonicalSort(b)
	if len(ca) != len(cb) {
		return false
	}
	for i := range ca {
		if ca[i] != cb[i] {
			return false
		}
	}
	return true
}

// pairsToStrings renders a pair slice for logging.
func pairsToStrings(pairs []marketdomain.Pair) string {
	strs := make([]string, len(pairs))
	for i, p := range pairs {
		strs[i] = p.String()
	}
	return strings.Join(strs, ",")
}
