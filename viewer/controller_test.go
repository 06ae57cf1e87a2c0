package viewer

import (
	"image"
	"image/color"
	"strings"
	"testing"
	"time"

	"github.com/wbrown/finch"
	"github.com/wbrown/finch/imageutil"
)

func newTestController(t *testing.T) (*Controller, *finch.SharedState) {
	t.Helper()
	state := finch.NewSharedState()
	c, err := NewController(state, false)
	if err != nil {
		t.Fatalf("NewController failed: %v", err)
	}
	return c, state
}

func testSnapshot(v uint8) *finch.Snapshot {
	diff := image.NewGray(image.Rect(0, 0, 4, 3))
	diff.Pix[0] = 100
	return &finch.Snapshot{
		Canvas:   imageutil.CreateSolidImage(8, 6, color.RGBA{R: v, G: v, B: v, A: 255}),
		Diff:     diff,
		Target:   imageutil.CreateSolidImage(8, 6, color.RGBA{B: 200, A: 255}),
		Path:     "/images/mandrill.png",
		Style:    finch.StyleOil,
		Score:    12345,
		StepTime: 250 * time.Microsecond,
	}
}

func TestIntentForKey(t *testing.T) {
	tests := map[rune]Intent{
		'd': IntentShowDiff,
		'm': IntentShowCanvas,
		'o': IntentShowTarget,
		'i': IntentToggleOverlay,
		'l': IntentToggleLock,
		'n': IntentNextImage,
		'q': IntentQuit,
		'x': IntentNone,
	}
	for r, want := range tests {
		if got := IntentForKey(r); got != want {
			t.Errorf("IntentForKey(%q): expected %v, got %v", r, want, got)
		}
	}
}

func TestControllerModes(t *testing.T) {
	c, _ := newTestController(t)
	if c.Mode() != ModeCanvas {
		t.Fatalf("Expected canvas mode, got %v", c.Mode())
	}
	c.Handle(IntentShowDiff)
	if c.Mode() != ModeDiff {
		t.Errorf("Expected diff mode, got %v", c.Mode())
	}
	c.Handle(IntentShowTarget)
	if c.Mode() != ModeTarget {
		t.Errorf("Expected target mode, got %v", c.Mode())
	}
	c.Handle(IntentToggleOverlay)
	if !c.Overlay() {
		t.Error("Expected overlay on")
	}
}

func TestControllerFlags(t *testing.T) {
	c, state := newTestController(t)

	c.Handle(IntentNextImage)
	if !state.NextRequested() {
		t.Error("Expected next-image request")
	}
	c.Handle(IntentToggleLock)
	if !state.Locked() {
		t.Error("Expected lock engaged")
	}
	c.Handle(IntentToggleLock)
	if state.Locked() {
		t.Error("Expected lock released")
	}
	c.Handle(IntentQuit)
	if !state.Stopped() {
		t.Error("Expected stop")
	}
}

func TestControllerFrameBeforePublish(t *testing.T) {
	c, _ := newTestController(t)
	frame, err := c.Frame()
	if err != nil {
		t.Fatalf("Frame failed: %v", err)
	}
	if frame != nil {
		t.Error("Expected no frame before the first snapshot")
	}
}

func TestControllerFrameModes(t *testing.T) {
	c, state := newTestController(t)
	state.Publish(testSnapshot(50))

	frame, err := c.Frame()
	if err != nil {
		t.Fatalf("Frame failed: %v", err)
	}
	if got := frame.RGBAAt(4, 4); got.R != 50 {
		t.Errorf("Expected canvas pixel, got %v", got)
	}

	c.Handle(IntentShowTarget)
	frame, _ = c.Frame()
	if got := frame.RGBAAt(4, 4); got.B != 200 {
		t.Errorf("Expected target pixel, got %v", got)
	}

	c.Handle(IntentShowDiff)
	frame, _ = c.Frame()
	if frame.Bounds() != image.Rect(0, 0, 8, 6) {
		t.Fatalf("Expected diff scaled to canvas size, got %v", frame.Bounds())
	}
	if got := frame.RGBAAt(0, 0); got.R != 255 {
		t.Errorf("Expected stretched diff peak, got %v", got)
	}
	if got := frame.RGBAAt(7, 5); got.R != 0 {
		t.Errorf("Expected empty diff cell, got %v", got)
	}
}

func TestControllerFrameDoesNotAliasSnapshot(t *testing.T) {
	c, state := newTestController(t)
	snap := testSnapshot(50)
	state.Publish(snap)
	c.Handle(IntentToggleOverlay)

	if _, err := c.Frame(); err != nil {
		t.Fatalf("Frame failed: %v", err)
	}
	for i := 0; i < len(snap.Canvas.Pix); i += 4 {
		if snap.Canvas.Pix[i] != 50 {
			t.Fatal("Overlay must not draw onto the published snapshot")
		}
	}
}

func TestControllerLockFreezes(t *testing.T) {
	c, state := newTestController(t)
	state.Publish(testSnapshot(10))
	c.Handle(IntentToggleLock)

	if _, err := c.Frame(); err != nil {
		t.Fatalf("Frame failed: %v", err)
	}
	state.Publish(testSnapshot(90))
	if got := c.Snapshot().Canvas.RGBAAt(0, 0).R; got != 10 {
		t.Errorf("Expected frozen snapshot, got canvas value %d", got)
	}

	c.Handle(IntentToggleLock)
	if got := c.Snapshot().Canvas.RGBAAt(0, 0).R; got != 90 {
		t.Errorf("Expected live snapshot after unlock, got canvas value %d", got)
	}
}

func TestStatusLine(t *testing.T) {
	c, _ := newTestController(t)
	snap := testSnapshot(0)

	if got := c.StatusLine(snap); !strings.HasSuffix(got, "inf fps") {
		t.Errorf("Expected inf fps before two ticks, got %q", got)
	}

	start := time.Now()
	c.Tick(start)
	c.Tick(start.Add(finch.FrameInterval))
	want := "mandrill.png-Oil 250 us, 12345 score 60 fps"
	if got := c.StatusLine(snap); got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}
}
