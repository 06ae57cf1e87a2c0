package finch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"gocv.io/x/gocv"
)

// Status is the state of a hill-climbing search.
type Status int

const (
	// Running searches on.
	Running Status = iota
	// Converged reached the termination score, or the canvas matches the
	// target exactly.
	Converged
	// Exhausted saw Patience consecutive proposals without improvement.
	Exhausted
	// Halted was asked to stop from outside, between two iterations.
	Halted
	// TimedOut ran out of its wall-clock budget.
	TimedOut
)

// String returns the name of the status.
func (s Status) String() string {
	switch s {
	case Running:
		return "running"
	case Converged:
		return "converged"
	case Exhausted:
		return "exhausted"
	case Halted:
		return "halted"
	case TimedOut:
		return "timed out"
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

// Done reports whether s is terminal.
func (s Status) Done() bool { return s != Running }

// Climber runs the stochastic hill climb for one target: propose a stroke,
// score it, keep it only if the rounded score strictly improves. Ties count
// as stagnation. A Climber is used from a single goroutine.
type Climber struct {
	cfg      Config
	mutator  *Mutator
	specimen *Specimen

	fitness    float64
	score      int
	stagnation int
	generation int
	status     Status

	lastUpdate time.Time
	stepTime   time.Duration
}

// NewClimber prepares a search of target with the textures in catalog.
// start becomes owned by the Climber; pass nil to start from a blank
// canvas. A start canvas of a different size is rescaled to the target and
// its brushes dropped. The Climber does not own target or catalog, which
// must outlive it.
func NewClimber(target gocv.Mat, catalog *Catalog, cfg Config, start *Specimen) (*Climber, error) {
	if target.Empty() {
		return nil, ErrEmptyImage
	}
	gradient, err := NewGradient(target)
	if err != nil {
		return nil, err
	}
	differ, err := NewDiffer(target, cfg.Method)
	if err != nil {
		return nil, err
	}
	if start == nil {
		start = NewSpecimenLike(target)
	} else {
		start.resizeCanvas(target.Cols(), target.Rows())
	}

	start.Diff, err = differ.Field(start.Canvas)
	if err != nil {
		differ.Close()
		return nil, err
	}

	c := &Climber{
		cfg: cfg,
		mutator: &Mutator{
			Target:   target,
			Gradient: gradient,
			Catalog:  catalog,
			Differ:   differ,
			Rand:     newRand(cfg.Seed),
			Retain:   cfg.RetainBrushes,
		},
		specimen:   start,
		fitness:    Fitness(start.Diff),
		lastUpdate: time.Now(),
	}
	c.score = RoundedScore(c.fitness)
	if start.Diff.Sum() == 0 {
		c.status = Converged
	} else {
		c.status = c.checkTermination()
	}
	return c, nil
}

// Step runs one iteration. It reports whether the proposal was accepted.
// Step on a finished search does nothing.
func (c *Climber) Step() (bool, error) {
	if c.status.Done() {
		return false, nil
	}
	c.generation++

	trial, fitness, err := c.mutator.Mutate(c.specimen, c.fitness)
	if errors.Is(err, ErrConverged) {
		c.status = Converged
		return false, nil
	}
	if err != nil {
		return false, err
	}

	accepted := false
	score := RoundedScore(fitness)
	if score >= c.score {
		c.stagnation++
		trial.Close()
	} else {
		c.stagnation = 0
		c.specimen.Close()
		c.specimen = trial
		c.fitness = fitness
		c.score = score
		accepted = true
	}

	now := time.Now()
	c.stepTime = now.Sub(c.lastUpdate)
	c.lastUpdate = now

	if c.cfg.LogIterations {
		Logger().Debug(c.Report())
	}
	c.status = c.checkTermination()
	if c.status.Done() {
		Logger().Info("search finished", "status", c.status.String(),
			"generation", c.generation, "score", c.score)
	}
	return accepted, nil
}

// checkTermination applies the patience and termination-score rules.
func (c *Climber) checkTermination() Status {
	switch {
	case c.stagnation >= c.cfg.patience():
		return Exhausted
	case c.score <= c.cfg.terminationScore():
		return Converged
	}
	return Running
}

// RunOptions hooks a caller into Run.
type RunOptions struct {
	// Halt is polled before every iteration. Returning true stops the
	// search with status Halted.
	Halt func() bool
	// OnStep is called after every iteration. A non-nil error stops the
	// search and is returned from Run.
	OnStep func(c *Climber, accepted bool) error
}

// Run steps until the search finishes, ctx is done, or opts.Halt asks it
// to stop. ctx and Halt are only checked between iterations; a stroke in
// progress is always completed. A context deadline yields TimedOut, any
// other cancellation Halted.
func (c *Climber) Run(ctx context.Context, opts RunOptions) (Status, error) {
	for !c.status.Done() {
		if err := ctx.Err(); err != nil {
			if errors.Is(err, context.DeadlineExceeded) {
				c.status = TimedOut
			} else {
				c.status = Halted
			}
			break
		}
		if opts.Halt != nil && opts.Halt() {
			c.status = Halted
			break
		}
		accepted, err := c.Step()
		if err != nil {
			return c.status, err
		}
		if opts.OnStep != nil {
			if err := opts.OnStep(c, accepted); err != nil {
				return c.status, err
			}
		}
	}
	return c.status, nil
}

// Report formats the state of the search the way result files are named.
func (c *Climber) Report() string {
	return fmt.Sprintf("gen_%06d__dt_%d_us__score_%d",
		c.generation, c.stepTime.Microseconds(), c.score)
}

// LogValue implements slog.LogValuer.
func (c *Climber) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("generation", c.generation),
		slog.Int("score", c.score),
		slog.Int("stagnation", c.stagnation),
		slog.String("status", c.status.String()),
	)
}

// Specimen returns the current accepted specimen. It remains owned by the
// Climber and is replaced on the next accepted Step.
func (c *Climber) Specimen() *Specimen { return c.specimen }

// Fitness returns the fitness of the current specimen.
func (c *Climber) Fitness() float64 { return c.fitness }

// Score returns the rounded score of the current specimen.
func (c *Climber) Score() int { return c.score }

// Stagnation returns the number of consecutive rejected proposals.
func (c *Climber) Stagnation() int { return c.stagnation }

// Generation returns the number of iterations run.
func (c *Climber) Generation() int { return c.generation }

// Status returns the state of the search.
func (c *Climber) Status() Status { return c.status }

// StepTime returns the duration of the last iteration.
func (c *Climber) StepTime() time.Duration { return c.stepTime }

// Catalog returns the brush catalog the search paints with.
func (c *Climber) Catalog() *Catalog { return c.mutator.Catalog }

// Detach hands the current specimen to the caller, who becomes responsible
// for closing it. The Climber must not be stepped afterwards.
func (c *Climber) Detach() *Specimen {
	s := c.specimen
	c.specimen = nil
	if !c.status.Done() {
		c.status = Halted
	}
	return s
}

// Close releases the Climber's resources, including its specimen unless it
// was detached.
func (c *Climber) Close() error {
	var errs []error
	if c.specimen != nil {
		errs = append(errs, c.specimen.Close())
		c.specimen = nil
	}
	errs = append(errs, c.mutator.Differ.Close())
	return errors.Join(errs...)
}
