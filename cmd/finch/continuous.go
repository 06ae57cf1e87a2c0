package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"

	"github.com/wbrown/finch"
	"github.com/wbrown/finch/viewer"
)

var continuousCmd = &cobra.Command{
	Use:   "continuous <image-dir>",
	Short: "Paint random images from a folder in a window, one after another",
	Long: `Paint random images from a folder in a window. Each image is painted over
the previous one until it converges, runs out of patience, or --max-time
passes; then the next image is picked.

Keys:
  d    show the difference field
  m    show the painting
  o    show the original image
  i    toggle the debug overlay
  l    freeze the displayed frame
  n    skip to the next image
  q    quit (also Esc)`,
	Args: cobra.ExactArgs(1),
	RunE: runContinuous,
}

func init() {
	rootCmd.AddCommand(continuousCmd)

	flags := continuousCmd.Flags()
	flags.StringSlice("styles", nil, "Brush styles to pick from (default all)")
	flags.Duration("max-time", finch.DefaultMaxTimePerImage, "Time limit per image")
	flags.Int("max-dimension", finch.ContinuousMaxDimension, "Bound on the longer side of each image")
	flags.Bool("fullscreen", false, "Open the window fullscreen")
	flags.Bool("overlay", false, "Start with the debug overlay shown")
	flags.Bool("log-iterations", false, "Log every iteration at debug level")

	bindFlags(continuousCmd, map[string]string{
		"continuous.styles":         "styles",
		"continuous.max_time":       "max-time",
		"continuous.max_dimension":  "max-dimension",
		"continuous.fullscreen":     "fullscreen",
		"continuous.overlay":        "overlay",
		"continuous.log_iterations": "log-iterations",
	}, false)
}

func runContinuous(cmd *cobra.Command, args []string) error {
	styles, err := parseStyles(viper.GetStringSlice("continuous.styles"))
	if err != nil {
		return err
	}
	opts, err := searchOptions()
	if err != nil {
		return err
	}
	maxDim := viper.GetInt("continuous.max_dimension")
	cfg := finch.DefaultConfig(append(opts,
		finch.WithMaxTimePerImage(viper.GetDuration("continuous.max_time")),
		finch.WithMaxDimension(maxDim),
		finch.WithLogIterations(viper.GetBool("continuous.log_iterations")),
		finch.WithRetainBrushes(false),
		finch.WithGIF(false),
		finch.WithUpscale(false),
		finch.WithOutputDir(""),
	)...)

	state := finch.NewSharedState()
	runner := &finch.Continuous{
		Config:    cfg,
		ImageDir:  args[0],
		BrushRoot: viper.GetString("brushes"),
		Styles:    styles,
		State:     state,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return runner.Run(ctx)
	})
	g.Go(func() error {
		<-ctx.Done()
		state.Stop()
		return nil
	})

	// The window must own the main goroutine.
	viewErr := viewer.Run(state, viewer.Options{
		Title:      "finch",
		Width:      maxDim,
		Height:     maxDim * 3 / 4,
		Fullscreen: viper.GetBool("continuous.fullscreen"),
		Overlay:    viper.GetBool("continuous.overlay"),
	})
	stop()
	if err := g.Wait(); err != nil {
		return err
	}
	return viewErr
}
