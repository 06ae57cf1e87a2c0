package finch

import (
	"testing"
	"time"
)

func TestSharedStateFlags(t *testing.T) {
	s := NewSharedState()
	if s.Available() || s.Snapshot() != nil {
		t.Error("Expected nothing published")
	}

	if !s.ToggleLock() || !s.Locked() {
		t.Error("Expected locked after first toggle")
	}
	if s.ToggleLock() || s.Locked() {
		t.Error("Expected unlocked after second toggle")
	}

	s.RequestNext()
	if !s.NextRequested() {
		t.Error("Expected next requested")
	}
	s.clearNext()
	if s.NextRequested() {
		t.Error("Expected next cleared")
	}

	s.Stop()
	if !s.Stopped() {
		t.Error("Expected stopped")
	}
}

func TestSharedStatePublish(t *testing.T) {
	s := NewSharedState()
	snap := &Snapshot{Score: 42}
	s.Publish(snap)
	if !s.Available() {
		t.Fatal("Expected a snapshot")
	}
	got := s.Snapshot()
	if got != snap || got.Score != 42 {
		t.Errorf("Expected published snapshot, got %+v", got)
	}
	if got.Published.IsZero() {
		t.Error("Expected publish time to be set")
	}
}

func TestPublisherThrottle(t *testing.T) {
	c := newTestClimber(t, testConfig(), nil)
	state := NewSharedState()
	p := &publisher{state: state, path: "target.png"}

	if err := p.publish(c, false); err != nil {
		t.Fatalf("publish failed: %v", err)
	}
	first := state.Snapshot()
	if first == nil {
		t.Fatal("Expected the first publish to go through")
	}
	if first.Path != "target.png" || first.Style != StyleCanvas {
		t.Errorf("Unexpected snapshot labels %q %v", first.Path, first.Style)
	}
	if first.Canvas.Bounds().Dx() != 64 || first.Diff == nil {
		t.Error("Expected canvas and difference field in the snapshot")
	}

	// A second publish within the frame interval is dropped.
	p.last = time.Now()
	if err := p.publish(c, false); err != nil {
		t.Fatalf("publish failed: %v", err)
	}
	if state.Snapshot() != first {
		t.Error("Expected throttled publish to be dropped")
	}

	if err := p.publish(c, true); err != nil {
		t.Fatalf("publish failed: %v", err)
	}
	if state.Snapshot() == first {
		t.Error("Expected forced publish to go through")
	}
}

func TestSnapshotDoesNotAlias(t *testing.T) {
	c := newTestClimber(t, testConfig(), nil)
	snap, err := snapshotOf(c)
	if err != nil {
		t.Fatalf("snapshotOf failed: %v", err)
	}
	before := append([]uint8(nil), snap.Canvas.Pix...)
	for i := 0; i < 5; i++ {
		if _, err := c.Step(); err != nil {
			t.Fatalf("Step failed: %v", err)
		}
	}
	for i := range before {
		if snap.Canvas.Pix[i] != before[i] {
			t.Fatal("Snapshot canvas changed while the search ran")
		}
	}
}
