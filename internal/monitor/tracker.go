package monitor

// PresenceTracker remembers which aircraft have already been alerted on
// so that an aircraft loitering inside the radius produces exactly one
// notification per visit. Identifiers are marked after a successful
// alert and pruned once the aircraft leaves the hit set, so a departure
// followed by a return alerts again.
//
// The tracker is not safe for concurrent use; the monitor service owns
// it and touches it from a single goroutine.
type PresenceTracker struct {
	active map[string]struct{}
}

// NewPresenceTracker returns an empty tracker.
func NewPresenceTracker() *PresenceTracker {
	return &PresenceTracker{active: make(map[string]struct{})}
}

// IsActive reports whether the identifier has already been alerted on
// during its current visit.
func (t *PresenceTracker) IsActive(id string) bool {
	_, ok := t.active[id]
	return ok
}

// Mark records that an alert has been sent for the identifier.
func (t *PresenceTracker) Mark(id string) {
	t.active[id] = struct{}{}
}

// Prune drops every tracked identifier that is absent from the current
// hit set, resetting departed aircraft for their next visit.
func (t *PresenceTracker) Prune(current map[string]struct{}) {
	for id := range t.active {
		if _, ok := current[id]; !ok {
			delete(t.active, id)
		}
	}
}

// Size returns the number of aircraft currently tracked.
func (t *PresenceTracker) Size() int {
	return len(t.active)
}
