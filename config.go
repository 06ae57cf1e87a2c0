package finch

import (
	"errors"
	"time"
)

const (
	// ScoreDecimals is the number of fractional percentage digits kept in a
	// rounded score. A rounded score is round(fitness * 100 * 10^ScoreDecimals).
	ScoreDecimals = 3
	// ScoreMultiplier is 10^ScoreDecimals.
	ScoreMultiplier = 1000

	// DefaultPatience is the number of consecutive non-improving trials
	// after which a search gives up.
	DefaultPatience = 100
	// DefaultScoreInterval is the drop in rounded score between two
	// persisted intermediate results.
	DefaultScoreInterval = ScoreMultiplier / 2
	// DefaultMaxDimension bounds the longer side of a single-shot target.
	DefaultMaxDimension = 640
	// ContinuousMaxDimension bounds the longer side of a continuous target.
	ContinuousMaxDimension = 720
	// DefaultMaxTimePerImage bounds the search for one image in continuous
	// mode.
	DefaultMaxTimePerImage = 5 * time.Minute
)

var (
	// ErrEmptyImage is returned when an image could not be decoded.
	ErrEmptyImage = errors.New("finch: empty image")
	// ErrNoTextures is returned when a brush catalog holds no textures.
	ErrNoTextures = errors.New("finch: no brush textures")
	// ErrConverged is returned by weighted sampling when the difference
	// field carries no mass, i.e. the canvas already matches the target.
	ErrConverged = errors.New("finch: difference field is empty")
	// ErrNoGenotype is returned when a redraw is requested for a specimen
	// whose brushes were not retained.
	ErrNoGenotype = errors.New("finch: specimen has no retained brushes")
)

// Config holds everything that changes how a search behaves or what it
// writes. A Config is built once, by DefaultConfig and Options, and never
// mutated while a search is running.
type Config struct {
	// Method selects the difference metric used for sampling and fitness.
	Method DifferenceMethod

	// RetainBrushes appends every accepted stroke to the specimen's brush
	// list. Required for upscaled redraws and genotype snapshots.
	RetainBrushes bool
	// WriteIntermediate persists a PNG every ScoreInterval of improvement.
	// It has no effect without an OutputDir.
	WriteIntermediate bool
	// PersistGenotype stores the final brush list in OutputDir/genotype.db.
	PersistGenotype bool
	// MakeGIF assembles a progress GIF from the intermediate frames.
	MakeGIF bool
	// LogIterations logs one line per search iteration at debug level.
	LogIterations bool
	// PlotHistory writes a score-over-generations plot.
	PlotHistory bool
	// MakeUpscale redraws the final specimen at 4K.
	MakeUpscale bool

	// OutputDir receives the final artifacts and, with WriteIntermediate,
	// the intermediate results. Empty writes no files.
	OutputDir string

	Patience int
	// TerminationScore is the rounded score at or below which a search
	// counts as converged. Zero selects the default for Method.
	TerminationScore int
	ScoreInterval    int
	MaxDimension     int
	MaxTimePerImage  time.Duration

	// Seed seeds the stroke sampler. Zero picks a random seed.
	Seed uint64
}

// Option is a functional option for configuring a Config.
type Option func(*Config)

// DefaultConfig returns the production configuration with opts applied:
// brushes are retained, the final canvas, its 4K redraw and a progress GIF
// are written to _results, and no intermediate results are kept.
func DefaultConfig(opts ...Option) Config {
	cfg := Config{
		Method:          AbsoluteDifference,
		RetainBrushes:   true,
		MakeGIF:         true,
		MakeUpscale:     true,
		OutputDir:       "_results",
		Patience:        DefaultPatience,
		ScoreInterval:   DefaultScoreInterval,
		MaxDimension:    DefaultMaxDimension,
		MaxTimePerImage: DefaultMaxTimePerImage,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// DebugConfig returns the configuration used during development: every
// intermediate result is written and every iteration is logged.
func DebugConfig(opts ...Option) Config {
	base := []Option{
		WithWriteIntermediate(true),
		WithLogIterations(true),
		WithPlotHistory(true),
	}
	return DefaultConfig(append(base, opts...)...)
}

// WithMethod sets the difference metric.
func WithMethod(m DifferenceMethod) Option {
	return func(c *Config) { c.Method = m }
}

// WithRetainBrushes controls whether accepted strokes are kept.
func WithRetainBrushes(v bool) Option {
	return func(c *Config) { c.RetainBrushes = v }
}

// WithWriteIntermediate controls per-interval PNG output.
func WithWriteIntermediate(v bool) Option {
	return func(c *Config) { c.WriteIntermediate = v }
}

// WithPersistGenotype controls the sqlite genotype snapshot.
func WithPersistGenotype(v bool) Option {
	return func(c *Config) { c.PersistGenotype = v }
}

// WithGIF controls progress GIF assembly.
func WithGIF(v bool) Option {
	return func(c *Config) { c.MakeGIF = v }
}

// WithUpscale controls the 4K redraw of the final specimen.
func WithUpscale(v bool) Option {
	return func(c *Config) { c.MakeUpscale = v }
}

// WithLogIterations controls per-iteration debug logging.
func WithLogIterations(v bool) Option {
	return func(c *Config) { c.LogIterations = v }
}

// WithPlotHistory controls the score history plot.
func WithPlotHistory(v bool) Option {
	return func(c *Config) { c.PlotHistory = v }
}

// WithOutputDir sets the artifact directory.
func WithOutputDir(dir string) Option {
	return func(c *Config) { c.OutputDir = dir }
}

// WithPatience sets the stagnation limit.
func WithPatience(n int) Option {
	return func(c *Config) { c.Patience = n }
}

// WithTerminationScore overrides the per-metric termination score.
func WithTerminationScore(score int) Option {
	return func(c *Config) { c.TerminationScore = score }
}

// WithScoreInterval sets the persisted-result interval.
func WithScoreInterval(interval int) Option {
	return func(c *Config) { c.ScoreInterval = interval }
}

// WithMaxDimension sets the bound on the target's longer side.
func WithMaxDimension(n int) Option {
	return func(c *Config) { c.MaxDimension = n }
}

// WithMaxTimePerImage sets the continuous-mode budget per image.
func WithMaxTimePerImage(d time.Duration) Option {
	return func(c *Config) { c.MaxTimePerImage = d }
}

// WithSeed seeds the stroke sampler for reproducible runs.
func WithSeed(seed uint64) Option {
	return func(c *Config) { c.Seed = seed }
}

// terminationScore returns the effective termination score.
func (c Config) terminationScore() int {
	if c.TerminationScore > 0 {
		return c.TerminationScore
	}
	return c.Method.TerminationScore()
}

// patience returns the effective stagnation limit.
func (c Config) patience() int {
	if c.Patience > 0 {
		return c.Patience
	}
	return DefaultPatience
}
