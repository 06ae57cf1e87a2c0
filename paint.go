package finch

import (
	"context"
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"time"

	"gocv.io/x/gocv"
)

// Artifact names written to Config.OutputDir.
const (
	FinalName    = "final.png"
	UpscaledName = "final_4k.png"
	GIFName      = "progress.gif"
	HistoryName  = "history.png"
	GenotypeName = "genotype.db"
)

// Genotype is the replayable record of a finished painting: the brush list
// plus what is needed to redraw it.
type Genotype struct {
	Name        string
	Style       Style
	Method      DifferenceMethod
	Width       int
	Height      int
	Score       int
	Generations int
	Brushes     []Brush
}

// GenotypeSaver persists genotypes and returns an identifier for them.
type GenotypeSaver interface {
	SaveGenotype(ctx context.Context, g Genotype) (string, error)
}

// Result is the outcome of a single-shot painting.
type Result struct {
	// Specimen is the final accepted specimen.
	Specimen *Specimen
	// Upscaled is the final specimen redrawn at 4K, or an empty Mat.
	Upscaled gocv.Mat
	// GIF is the encoded progress animation, or nil.
	GIF []byte

	Status      Status
	Score       int
	Generations int
	History     History
	// GenotypeID identifies the saved genotype, if one was saved.
	GenotypeID string
}

// Close releases the images held by r.
func (r *Result) Close() error {
	var errs []error
	if r.Specimen != nil {
		errs = append(errs, r.Specimen.Close())
	}
	errs = append(errs, r.Upscaled.Close())
	return errors.Join(errs...)
}

// Painter paints single targets to completion.
type Painter struct {
	Config  Config
	Catalog *Catalog
	// Genotypes receives the final genotype when Config.PersistGenotype is
	// set. A nil Genotypes skips the save.
	Genotypes GenotypeSaver
}

// Paint normalizes target to Config.MaxDimension and paints it until the
// search converges, runs out of patience, or ctx is done. Intermediate
// results are captured every Config.ScoreInterval of improvement; the
// first and the last accepted states are always captured. name labels
// the run in logs and the genotype record.
func (p *Painter) Paint(ctx context.Context, target gocv.Mat, name string) (*Result, error) {
	cfg := p.Config
	prepared := NormalizeSize(target, cfg.MaxDimension)
	defer prepared.Close()

	climber, err := NewClimber(prepared, p.Catalog, cfg, nil)
	if err != nil {
		return nil, err
	}
	defer climber.Close()

	if cfg.OutputDir != "" {
		if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	Logger().Info("painting", "name", name, "style", p.Catalog.Style().String(),
		"method", cfg.Method.String(), "width", prepared.Cols(), "height", prepared.Rows())

	shots := &capture{cfg: cfg, lastScore: -1}
	start := time.Now()
	var history History
	status, err := climber.Run(ctx, RunOptions{
		OnStep: func(c *Climber, accepted bool) error {
			if !accepted {
				return nil
			}
			history.Record(c, time.Since(start))
			if shots.due(c.Score()) {
				return shots.take(c)
			}
			return nil
		},
	})
	if err != nil {
		return nil, err
	}
	if shots.lastScore != climber.Score() {
		if err := shots.take(climber); err != nil {
			return nil, err
		}
	}
	Logger().Info("painting finished", "name", name, "status", status.String(),
		"generations", climber.Generation(), "score", climber.Score(),
		"elapsed", time.Since(start))

	res := &Result{
		Upscaled:    gocv.NewMat(),
		Status:      status,
		Score:       climber.Score(),
		Generations: climber.Generation(),
		History:     history,
	}
	res.Specimen = climber.Detach()
	if err := p.finish(ctx, res, shots.frames, name); err != nil {
		res.Close()
		return nil, err
	}
	return res, nil
}

// finish produces the final artifacts of a painting.
func (p *Painter) finish(ctx context.Context, res *Result, frames []image.Image, name string) error {
	cfg := p.Config
	out := func(file string) string { return filepath.Join(cfg.OutputDir, file) }

	write := cfg.OutputDir != ""
	if write {
		if err := WritePNG(out(FinalName), res.Specimen.Canvas); err != nil {
			return err
		}
	}

	if cfg.MakeUpscale {
		upscaled, err := Redraw4K(res.Specimen, p.Catalog)
		switch {
		case errors.Is(err, ErrNoGenotype):
			upscaled.Close()
			Logger().Warn("skipping upscale, no brushes retained", "name", name)
		case err != nil:
			upscaled.Close()
			return fmt.Errorf("failed to upscale: %w", err)
		default:
			res.Upscaled.Close()
			res.Upscaled = upscaled
			if write {
				if err := WritePNG(out(UpscaledName), upscaled); err != nil {
					return err
				}
			}
		}
	}

	if cfg.MakeGIF && len(frames) > 0 {
		data, err := AssembleGIF(frames)
		if err != nil {
			return err
		}
		res.GIF = data
		if write {
			if err := os.WriteFile(out(GIFName), data, 0o644); err != nil {
				return fmt.Errorf("failed to write gif: %w", err)
			}
		}
	}

	if write && cfg.PlotHistory && len(res.History) > 0 {
		if err := res.History.Plot(name, out(HistoryName)); err != nil {
			return err
		}
	}

	if cfg.PersistGenotype && p.Genotypes != nil {
		if len(res.Specimen.Brushes) == 0 {
			Logger().Warn("skipping genotype, no brushes retained", "name", name)
			return nil
		}
		id, err := p.Genotypes.SaveGenotype(ctx, Genotype{
			Name:        name,
			Style:       p.Catalog.Style(),
			Method:      cfg.Method,
			Width:       res.Specimen.Width(),
			Height:      res.Specimen.Height(),
			Score:       res.Score,
			Generations: res.Generations,
			Brushes:     res.Specimen.Brushes,
		})
		if err != nil {
			return fmt.Errorf("failed to save genotype: %w", err)
		}
		res.GenotypeID = id
		Logger().Info("saved genotype", "name", name, "id", id, "strokes", len(res.Specimen.Brushes))
	}
	return nil
}

// capture throttles intermediate results to one per score interval.
type capture struct {
	cfg       Config
	lastScore int
	frames    []image.Image
}

// due reports whether a state at score should be captured.
func (c *capture) due(score int) bool {
	return c.lastScore < 0 || c.lastScore-score >= c.cfg.ScoreInterval
}

// take writes the intermediate PNG and keeps a GIF frame of the climber's
// current state.
func (c *capture) take(cl *Climber) error {
	c.lastScore = cl.Score()
	if c.cfg.WriteIntermediate && c.cfg.OutputDir != "" {
		path := filepath.Join(c.cfg.OutputDir, cl.Report()+".png")
		if err := WritePNG(path, cl.Specimen().Canvas); err != nil {
			return err
		}
	}
	if c.cfg.MakeGIF {
		frame, err := cl.Specimen().Image()
		if err != nil {
			return err
		}
		c.frames = append(c.frames, frame)
	}
	return nil
}
