package finch

import (
	"fmt"
	"time"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// HistoryPoint records one accepted improvement.
type HistoryPoint struct {
	Generation int
	Score      int
	Elapsed    time.Duration
}

// History is the sequence of accepted improvements of one search, in
// generation order.
type History []HistoryPoint

// Record appends the state of c.
func (h *History) Record(c *Climber, elapsed time.Duration) {
	*h = append(*h, HistoryPoint{
		Generation: c.Generation(),
		Score:      c.Score(),
		Elapsed:    elapsed,
	})
}

// Plot writes a score-over-generations line chart of h to path. The image
// format follows the file extension.
func (h History) Plot(title, path string) error {
	if len(h) == 0 {
		return fmt.Errorf("empty score history")
	}
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Generation"
	p.Y.Label.Text = "Score"

	pts := make(plotter.XYs, len(h))
	for i, pt := range h {
		pts[i].X = float64(pt.Generation)
		pts[i].Y = float64(pt.Score)
	}
	line, err := plotter.NewLine(pts)
	if err != nil {
		return err
	}
	p.Add(line, plotter.NewGrid())

	if err := p.Save(6*vg.Inch, 4*vg.Inch, path); err != nil {
		return fmt.Errorf("failed to save plot: %w", err)
	}
	return nil
}
