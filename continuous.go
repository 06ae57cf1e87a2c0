package finch

import (
	"context"
	"fmt"
	"math/rand/v2"
	"os"
	"path/filepath"
	"sort"
	"time"
)

// Continuous paints random images from a folder one after another until
// stopped, carrying the canvas over from one image to the next. Progress
// is published to State for a display to pick up.
type Continuous struct {
	Config Config
	// ImageDir holds the targets. Only regular files directly inside it
	// are considered.
	ImageDir string
	// BrushRoot holds one texture directory per style.
	BrushRoot string
	// Styles are chosen from at random for each image.
	Styles []Style
	State  *SharedState
}

// Run paints until ctx is done or State is stopped. Failures painting a
// single image are logged and the image is skipped; Run only returns an
// error when no image can be picked at all. State is stopped on return.
func (r *Continuous) Run(ctx context.Context) error {
	defer r.State.Stop()
	if len(r.Styles) == 0 {
		return fmt.Errorf("no brush styles configured")
	}
	cfg := r.Config
	cfg.RetainBrushes = false
	rng := newRand(cfg.Seed)

	var carried *Specimen
	defer func() {
		if carried != nil {
			carried.Close()
		}
	}()

	previous := ""
	for !r.State.Stopped() && ctx.Err() == nil {
		path, err := pickImage(r.ImageDir, previous, rng)
		if err != nil {
			return err
		}
		previous = path
		style := r.Styles[rng.IntN(len(r.Styles))]

		Logger().Info("drawing image", "path", path, "style", style.String())
		carried, err = r.paintOne(ctx, cfg, path, style, carried)
		if err != nil {
			Logger().Warn("skipping image", "path", path, "style", style.String(), "error", err)
		}
		r.State.clearNext()
	}
	return nil
}

// paintOne searches one image starting from start, which may be nil, and
// returns the specimen to carry over to the next image. On failure the
// start specimen is handed back.
func (r *Continuous) paintOne(ctx context.Context, cfg Config, path string, style Style, start *Specimen) (*Specimen, error) {
	catalog, err := LoadCatalog(r.BrushRoot, style)
	if err != nil {
		return start, err
	}
	defer catalog.Close()

	raw, err := LoadTarget(path)
	if err != nil {
		return start, err
	}
	defer raw.Close()
	target := NormalizeSize(raw, cfg.MaxDimension)
	defer target.Close()
	targetImg, err := matToRGBA(target)
	if err != nil {
		return start, err
	}

	climber, err := NewClimber(target, catalog, cfg, start)
	if err != nil {
		return start, err
	}
	defer climber.Close()

	pub := &publisher{state: r.State, path: path, target: targetImg}
	if err := pub.publish(climber, true); err != nil {
		return climber.Detach(), err
	}

	imageCtx, cancel := context.WithTimeout(ctx, cfg.MaxTimePerImage)
	defer cancel()
	started := time.Now()
	status, err := climber.Run(imageCtx, RunOptions{
		Halt: func() bool {
			return r.State.Stopped() || r.State.NextRequested()
		},
		OnStep: func(c *Climber, accepted bool) error {
			if !accepted {
				return nil
			}
			return pub.publish(c, false)
		},
	})
	if err != nil {
		return climber.Detach(), err
	}
	Logger().Info("image finished", "path", path, "status", status.String(),
		"generations", climber.Generation(), "score", climber.Score(),
		"elapsed", time.Since(started))
	err = pub.publish(climber, true)
	return climber.Detach(), err
}

// pickImage returns a random regular file in dir other than previous. A
// folder with a single file yields that file every time.
func pickImage(dir, previous string, rng *rand.Rand) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("failed to list images: %w", err)
	}
	var paths []string
	for _, e := range entries {
		if e.Type().IsRegular() {
			paths = append(paths, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(paths)
	switch len(paths) {
	case 0:
		return "", fmt.Errorf("no images in %s", dir)
	case 1:
		return paths[0], nil
	}
	for {
		if p := paths[rng.IntN(len(paths))]; p != previous {
			return p, nil
		}
	}
}
