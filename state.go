package finch

import (
	"image"
	"sync/atomic"
	"time"
)

// FrameInterval is the minimum time between two frames of the display, and
// so between two publications of the search state.
const FrameInterval = time.Second / 60

// Snapshot is an immutable view of the search, published by the search
// goroutine and read whole by the display. Images are Go-owned copies and
// never alias a canvas the search is still drawing on.
type Snapshot struct {
	Canvas *image.RGBA
	// Diff is the difference field at its reduced resolution.
	Diff *image.Gray
	// Target is the image being painted, at canvas resolution.
	Target *image.RGBA

	Path       string
	Style      Style
	Strokes    int
	Score      int
	Generation int
	StepTime   time.Duration
	Status     Status
	Published  time.Time
}

// SharedState is the handoff between the search and display goroutines.
//
// Each field has a single writer. The search goroutine publishes
// snapshots and clears the next-image request once it has moved on. The
// display goroutine toggles the lock and raises next-image. Either side
// may raise stop, and both observe it.
type SharedState struct {
	snapshot atomic.Pointer[Snapshot]
	locked   atomic.Bool
	next     atomic.Bool
	stop     atomic.Bool
}

// NewSharedState returns a state with nothing published yet.
func NewSharedState() *SharedState {
	return &SharedState{}
}

// Publish replaces the current snapshot.
func (s *SharedState) Publish(snap *Snapshot) {
	if snap.Published.IsZero() {
		snap.Published = time.Now()
	}
	s.snapshot.Store(snap)
}

// Snapshot returns the latest snapshot, or nil before the first Publish.
func (s *SharedState) Snapshot() *Snapshot {
	return s.snapshot.Load()
}

// Available reports whether anything has been published.
func (s *SharedState) Available() bool {
	return s.snapshot.Load() != nil
}

// ToggleLock flips the display lock and returns the new value. The lock
// only freezes what is shown; the search keeps running.
func (s *SharedState) ToggleLock() bool {
	for {
		old := s.locked.Load()
		if s.locked.CompareAndSwap(old, !old) {
			return !old
		}
	}
}

// Locked reports whether the display is frozen.
func (s *SharedState) Locked() bool { return s.locked.Load() }

// RequestNext asks the search to abandon the current image.
func (s *SharedState) RequestNext() { s.next.Store(true) }

// NextRequested reports whether a next-image request is pending.
func (s *SharedState) NextRequested() bool { return s.next.Load() }

// clearNext acknowledges a next-image request.
func (s *SharedState) clearNext() { s.next.Store(false) }

// Stop asks both goroutines to finish.
func (s *SharedState) Stop() { s.stop.Store(true) }

// Stopped reports whether Stop has been called.
func (s *SharedState) Stopped() bool { return s.stop.Load() }

// publisher throttles snapshots of one search to one per FrameInterval.
type publisher struct {
	state  *SharedState
	path   string
	target *image.RGBA
	last   time.Time
}

// publish snapshots c when a frame interval has passed, or unconditionally
// when force is set.
func (p *publisher) publish(c *Climber, force bool) error {
	now := time.Now()
	if !force && now.Sub(p.last) < FrameInterval {
		return nil
	}
	snap, err := snapshotOf(c)
	if err != nil {
		return err
	}
	snap.Path = p.path
	snap.Target = p.target
	snap.Published = now
	p.state.Publish(snap)
	p.last = now
	return nil
}

// snapshotOf copies the state of c into a Snapshot.
func snapshotOf(c *Climber) (*Snapshot, error) {
	s := c.Specimen()
	canvas, err := s.Image()
	if err != nil {
		return nil, err
	}
	var diff *image.Gray
	if s.Diff != nil {
		diff = s.Diff.Gray
	}
	return &Snapshot{
		Canvas:     canvas,
		Diff:       diff,
		Style:      c.Catalog().Style(),
		Strokes:    len(s.Brushes),
		Score:      c.Score(),
		Generation: c.Generation(),
		StepTime:   c.StepTime(),
		Status:     c.Status(),
	}, nil
}
