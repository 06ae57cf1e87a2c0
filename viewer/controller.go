// Package viewer shows a running search in a window: the live canvas, its
// difference field or the target, with an optional debug overlay.
package viewer

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"path/filepath"
	"time"

	"github.com/wbrown/finch"
	"github.com/wbrown/finch/imageutil"
)

// Mode selects what the window shows.
type Mode int

const (
	// ModeCanvas shows the painting.
	ModeCanvas Mode = iota
	// ModeDiff shows the difference field the next stroke is sampled from.
	ModeDiff
	// ModeTarget shows the image being painted.
	ModeTarget
)

// String returns the name of the mode.
func (m Mode) String() string {
	switch m {
	case ModeCanvas:
		return "canvas"
	case ModeDiff:
		return "diff"
	case ModeTarget:
		return "target"
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// Intent is what a key press asks for.
type Intent int

const (
	IntentNone Intent = iota
	IntentShowDiff
	IntentShowCanvas
	IntentShowTarget
	IntentToggleOverlay
	IntentToggleLock
	IntentNextImage
	IntentQuit
)

// IntentForKey maps a key, by the character it types, to an intent.
func IntentForKey(r rune) Intent {
	switch r {
	case 'd':
		return IntentShowDiff
	case 'm':
		return IntentShowCanvas
	case 'o':
		return IntentShowTarget
	case 'i':
		return IntentToggleOverlay
	case 'l':
		return IntentToggleLock
	case 'n':
		return IntentNextImage
	case 'q':
		return IntentQuit
	}
	return IntentNone
}

// Controller holds the display-side state of the viewer and turns shared
// snapshots into frames. It never writes to the search: only the lock,
// next-image and stop flags of the shared state.
type Controller struct {
	state   *finch.SharedState
	text    *imageutil.TextDrawer
	mode    Mode
	overlay bool

	frozen    *finch.Snapshot
	lastFrame time.Time
	frameTime time.Duration
}

// NewController returns a controller over state showing the canvas.
func NewController(state *finch.SharedState, overlay bool) (*Controller, error) {
	text, err := imageutil.NewTextDrawer(12, color.RGBA{R: 255, A: 255})
	if err != nil {
		return nil, err
	}
	return &Controller{state: state, text: text, overlay: overlay}, nil
}

// Mode returns the current display mode.
func (c *Controller) Mode() Mode { return c.mode }

// Overlay reports whether the debug overlay is shown.
func (c *Controller) Overlay() bool { return c.overlay }

// Handle applies an intent.
func (c *Controller) Handle(in Intent) {
	switch in {
	case IntentShowDiff:
		c.mode = ModeDiff
	case IntentShowCanvas:
		c.mode = ModeCanvas
	case IntentShowTarget:
		c.mode = ModeTarget
	case IntentToggleOverlay:
		c.overlay = !c.overlay
	case IntentToggleLock:
		locked := c.state.ToggleLock()
		finch.Logger().Info("display lock", "locked", locked)
	case IntentNextImage:
		c.state.RequestNext()
	case IntentQuit:
		c.state.Stop()
	}
}

// Tick records the start of a frame at now.
func (c *Controller) Tick(now time.Time) {
	if !c.lastFrame.IsZero() {
		c.frameTime = now.Sub(c.lastFrame)
	}
	c.lastFrame = now
}

// Snapshot returns the snapshot to show: the latest one, or the one that
// was current when the lock was engaged.
func (c *Controller) Snapshot() *finch.Snapshot {
	if !c.state.Locked() {
		c.frozen = nil
		return c.state.Snapshot()
	}
	if c.frozen == nil {
		c.frozen = c.state.Snapshot()
	}
	return c.frozen
}

// Frame renders the current view, or returns nil when nothing has been
// published yet.
func (c *Controller) Frame() (*image.RGBA, error) {
	snap := c.Snapshot()
	if snap == nil || snap.Canvas == nil {
		return nil, nil
	}

	var frame *image.RGBA
	size := snap.Canvas.Bounds()
	switch {
	case c.mode == ModeDiff && snap.Diff != nil:
		diff := imageutil.ResizeGray(imageutil.Stretch(snap.Diff),
			size.Dx(), size.Dy(), imageutil.InterpolationNearest)
		frame = imageutil.GrayToRGBA(diff)
	case c.mode == ModeTarget && snap.Target != nil:
		frame = imageutil.Clone(snap.Target)
	default:
		frame = imageutil.Clone(snap.Canvas)
	}

	var lines []string
	if c.overlay {
		lines = append(lines, c.StatusLine(snap))
	}
	if c.state.Locked() {
		lines = append(lines, "LOCKED")
	}
	if len(lines) > 0 {
		if err := c.text.DrawLines(frame, lines, 10, 20); err != nil {
			return nil, err
		}
	}
	return frame, nil
}

// StatusLine formats the debug overlay for snap.
func (c *Controller) StatusLine(snap *finch.Snapshot) string {
	fps := "inf"
	if c.frameTime > 0 {
		fps = fmt.Sprintf("%d", int(math.Round(1/c.frameTime.Seconds())))
	}
	return fmt.Sprintf("%s-%s %d us, %d score %s fps",
		filepath.Base(snap.Path), snap.Style, snap.StepTime.Microseconds(), snap.Score, fps)
}
