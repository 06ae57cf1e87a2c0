package finch

import (
	"fmt"
	"math/rand/v2"

	"gocv.io/x/gocv"
)

// Mutator proposes new strokes for one target. It bundles everything a
// proposal reads: the target itself, its gradient, the brush catalog, the
// scoring Differ and the random source.
type Mutator struct {
	Target   gocv.Mat
	Gradient *Gradient
	Catalog  *Catalog
	Differ   *Differ
	Rand     *rand.Rand
	// Retain appends each proposed stroke to the new specimen's brushes.
	Retain bool
}

// Mutate proposes exactly one stroke on a copy of s and scores the result.
// s itself is left untouched, so a rejected proposal costs nothing but the
// returned specimen, which the caller must close.
//
// fitness is the current fitness of s and determines the stroke size.
// s.Diff must hold the difference field of s.
func (m *Mutator) Mutate(s *Specimen, fitness float64) (*Specimen, float64, error) {
	if s.Diff == nil {
		return nil, 0, fmt.Errorf("specimen has no difference field")
	}
	width, height := m.Target.Cols(), m.Target.Rows()

	pos, err := SamplePosition(s.Diff, width, height, m.Rand)
	if err != nil {
		return nil, 0, err
	}
	brush := Brush{
		Color:    colorAt(m.Target, pos),
		Texture:  m.Catalog.RandomIndex(m.Rand),
		Position: pos,
		Angle:    m.Gradient.Direction(pos),
		Size:     BrushSizeForFitness(fitness, height, width),
	}

	next := s.Clone()
	if err := m.Catalog.Composite(brush, &next.Canvas); err != nil {
		next.Close()
		return nil, 0, fmt.Errorf("failed to paint stroke: %w", err)
	}
	if m.Retain {
		next.Brushes = append(next.Brushes, brush)
	}

	next.Diff, err = m.Differ.Field(next.Canvas)
	if err != nil {
		next.Close()
		return nil, 0, err
	}
	return next, Fitness(next.Diff), nil
}

// newRand returns the random source for a search. A zero seed seeds from
// the runtime's entropy.
func newRand(seed uint64) *rand.Rand {
	if seed == 0 {
		return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}
