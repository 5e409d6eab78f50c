package monitor

import "testing"

func TestPresenceTrackerVisitLifecycle(t *testing.T) {
	tracker := NewPresenceTracker()

	// First sighting: not yet active, alert would fire.
	if tracker.IsActive("X1") {
		t.Fatal("expected X1 to be inactive before first mark")
	}
	tracker.Mark("X1")

	// Same aircraft still inside on the next cycle: no second alert.
	tracker.Prune(map[string]struct{}{"X1": {}})
	if !tracker.IsActive("X1") {
		t.Fatal("expected X1 to stay active while still present")
	}

	// Aircraft leaves: pruned.
	tracker.Prune(map[string]struct{}{})
	if tracker.IsActive("X1") {
		t.Fatal("expected X1 to be pruned after leaving")
	}

	// Aircraft returns: treated as a fresh visit.
	if tracker.IsActive("X1") {
		t.Fatal("expected returning X1 to be inactive again")
	}
	tracker.Mark("X1")
	if !tracker.IsActive("X1") {
		t.Fatal("expected X1 active after re-entry mark")
	}
}

func TestPresenceTrackerPruneKeepsPresent(t *testing.T) {
	tracker := NewPresenceTracker()
	tracker.Mark("A")
	tracker.Mark("B")
	tracker.Mark("C")

	tracker.Prune(map[string]struct{}{"A": {}, "C": {}})

	if !tracker.IsActive("A") || !tracker.IsActive("C") {
		t.Error("expected present aircraft to survive prune")
	}
	if tracker.IsActive("B") {
		t.Error("expected absent aircraft to be pruned")
	}
	if got := tracker.Size(); got != 2 {
		t.Errorf("expected 2 tracked aircraft, got %d", got)
	}
}
