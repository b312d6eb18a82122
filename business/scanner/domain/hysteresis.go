package domain

// HysteresisState is the per-OpportunityKey in-window flag and entry
// timestamp (spec.md §3, §4.E). It is lazily created when a key is first
// observed and otherwise lives for the process lifetime: a key that
// stops being observed simply keeps its last state, it is never expired.
type HysteresisState struct {
	InWindow bool
	SinceMs  int64 // valid only when InWindow is true
}

// IsLong reports whether the in-window interval has continuously lasted
// at least longMs as of nowMs (spec.md §4.E, invariant 5).
func (h HysteresisState) IsLong(nowMs, longMs int64) bool {
	if !h.InWindow {
		return false
	}
	return nowMs-h.SinceMs >= longMs
}
