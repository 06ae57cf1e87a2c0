package viewer

import (
	"errors"
	"image"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/wbrown/finch"
)

// Options configures the window.
type Options struct {
	Title      string
	Width      int
	Height     int
	Fullscreen bool
	// Overlay shows the debug overlay from the start.
	Overlay bool
}

var keyRunes = map[ebiten.Key]rune{
	ebiten.KeyD:      'd',
	ebiten.KeyM:      'm',
	ebiten.KeyO:      'o',
	ebiten.KeyI:      'i',
	ebiten.KeyL:      'l',
	ebiten.KeyN:      'n',
	ebiten.KeyQ:      'q',
	ebiten.KeyEscape: 'q',
}

// Game adapts a Controller to ebiten.
type Game struct {
	ctrl  *Controller
	state *finch.SharedState
	keys  []ebiten.Key

	screen *ebiten.Image
	size   image.Point
}

// NewGame returns a game showing state.
func NewGame(state *finch.SharedState, overlay bool) (*Game, error) {
	ctrl, err := NewController(state, overlay)
	if err != nil {
		return nil, err
	}
	return &Game{ctrl: ctrl, state: state}, nil
}

// Update implements ebiten.Game.
func (g *Game) Update() error {
	if ebiten.IsWindowBeingClosed() {
		g.state.Stop()
	}
	if g.state.Stopped() {
		return ebiten.Termination
	}
	g.keys = inpututil.AppendJustPressedKeys(g.keys[:0])
	for _, k := range g.keys {
		if r, ok := keyRunes[k]; ok {
			g.ctrl.Handle(IntentForKey(r))
		}
	}
	return nil
}

// Draw implements ebiten.Game.
func (g *Game) Draw(screen *ebiten.Image) {
	g.ctrl.Tick(time.Now())
	frame, err := g.ctrl.Frame()
	if err != nil {
		finch.Logger().Warn("failed to render frame", "error", err)
		return
	}
	if frame == nil {
		return
	}
	size := frame.Bounds().Size()
	if g.screen == nil || g.size != size {
		if g.screen != nil {
			g.screen.Deallocate()
		}
		g.screen = ebiten.NewImage(size.X, size.Y)
		g.size = size
	}
	g.screen.WritePixels(frame.Pix)

	sw, sh := screen.Bounds().Dx(), screen.Bounds().Dy()
	scale := min(float64(sw)/float64(size.X), float64(sh)/float64(size.Y))
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(scale, scale)
	op.GeoM.Translate((float64(sw)-float64(size.X)*scale)/2, (float64(sh)-float64(size.Y)*scale)/2)
	op.Filter = ebiten.FilterLinear
	screen.DrawImage(g.screen, op)
}

// Layout implements ebiten.Game.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return outsideWidth, outsideHeight
}

// Run opens the window and blocks until the window is closed or state is
// stopped. It must be called from the main goroutine. state is stopped on
// return.
func Run(state *finch.SharedState, opts Options) error {
	defer state.Stop()
	game, err := NewGame(state, opts.Overlay)
	if err != nil {
		return err
	}
	ebiten.SetWindowTitle(opts.Title)
	ebiten.SetWindowSize(max(1, opts.Width), max(1, opts.Height))
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetFullscreen(opts.Fullscreen)
	ebiten.SetWindowClosingHandled(true)
	ebiten.SetTPS(int(time.Second / finch.FrameInterval))

	err = ebiten.RunGame(game)
	if errors.Is(err, ebiten.Termination) {
		return nil
	}
	return err
}
