// Package app implements the scanner's business logic: hysteresis state,
// the arbitrage engine, and the supervisor that wires connectors to it.
package app

import (
	"sync"

	"github.com/matrix-911/Airbitrage/business/scanner/domain"
	"github.com/shopspring/decimal"
)

// HysteresisStore holds the process-lifetime in-window state for every
// opportunity key observed so far (spec.md §4.E). It is owned by the
// engine and mutated only from Observe, which compute() calls once per
// scanned key per scan. Not observing a key never transitions it.
type HysteresisStore struct {
	mu     sync.Mutex
	states map[domain.OpportunityKey]domain.HysteresisState
}

// NewHysteresisStore returns an empty store.
func NewHysteresisStore() *HysteresisStore {
	return &HysteresisStore{states: make(map[domain.OpportunityKey]domain.HysteresisState)}
}

// Observe applies the transition function for key given profitFrac at
// nowMs and returns the resulting state (spec.md §4.E transition rule):
//
//	not in-window && profitFrac >= threshEnter -> in-window, since=nowMs
//	in-window && profitFrac < threshExit       -> not in-window, since cleared
//	otherwise                                  -> unchanged
func (s *HysteresisStore) Observe(key domain.OpportunityKey, profitFrac, threshEnter, threshExit decimal.Decimal, nowMs int64) domain.HysteresisState {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.states[key]
	switch {
	case !st.InWindow && profitFrac.Cmp(threshEnter) >= 0:
		st.InWindow = true
		st.SinceMs = nowMs
	case st.InWindow && profitFrac.Cmp(threshExit) < 0:
		st.InWindow = false
		st.SinceMs = 0
	}
	s.states[key] = st
	return st
}

// Get returns the current state for key without mutating it (used by
// tests and by any external inspector); the zero value (not in-window)
// is returned for a key never observed.
func (s *HysteresisStore) Get(key domain.OpportunityKey) domain.HysteresisState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.states[key]
}
