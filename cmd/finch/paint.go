package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/wbrown/finch"
	"github.com/wbrown/finch/store"
)

var paintCmd = &cobra.Command{
	Use:   "paint <image>",
	Short: "Paint a single image until it converges",
	Long: `Paint a single image until the score reaches the termination score or no
improvement is found for --patience strokes in a row. The final canvas, a
4K redraw and a progress GIF are written to --out.`,
	Args: cobra.ExactArgs(1),
	RunE: runPaint,
}

func init() {
	rootCmd.AddCommand(paintCmd)

	flags := paintCmd.Flags()
	flags.String("style", finch.StyleCanvas.String(), "Brush style: Canvas, Oil, Sketch, or Watercolor")
	flags.String("out", "_results", "Output directory")
	flags.Bool("debug", false, "Write every score interval, log every iteration and plot the score history")
	flags.Bool("genotype", false, "Store the brush list in <out>/genotype.db")
	flags.Bool("gif", true, "Assemble a progress GIF")
	flags.Bool("upscale", true, "Redraw the result at 4K")
	flags.Int("max-dimension", finch.DefaultMaxDimension, "Bound on the longer side of the target")
	flags.Int("score-interval", finch.DefaultScoreInterval, "Score drop between two captured frames")

	bindFlags(paintCmd, map[string]string{
		"paint.style":          "style",
		"paint.out":            "out",
		"paint.debug":          "debug",
		"paint.genotype":       "genotype",
		"paint.gif":            "gif",
		"paint.upscale":        "upscale",
		"paint.max_dimension":  "max-dimension",
		"paint.score_interval": "score-interval",
	}, false)
}

func runPaint(cmd *cobra.Command, args []string) error {
	style, err := finch.ParseStyle(viper.GetString("paint.style"))
	if err != nil {
		return err
	}
	opts, err := searchOptions()
	if err != nil {
		return err
	}
	opts = append(opts,
		finch.WithOutputDir(viper.GetString("paint.out")),
		finch.WithPersistGenotype(viper.GetBool("paint.genotype")),
		finch.WithGIF(viper.GetBool("paint.gif")),
		finch.WithUpscale(viper.GetBool("paint.upscale")),
		finch.WithMaxDimension(viper.GetInt("paint.max_dimension")),
		finch.WithScoreInterval(viper.GetInt("paint.score_interval")),
	)
	cfg := finch.DefaultConfig(opts...)
	if viper.GetBool("paint.debug") {
		cfg = finch.DebugConfig(opts...)
	}

	target, err := finch.LoadTarget(args[0])
	if err != nil {
		return err
	}
	defer target.Close()

	catalog, err := finch.LoadCatalog(viper.GetString("brushes"), style)
	if err != nil {
		return err
	}
	defer catalog.Close()

	painter := &finch.Painter{Config: cfg, Catalog: catalog}
	if cfg.PersistGenotype {
		if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
			return err
		}
		db, err := store.Open(filepath.Join(cfg.OutputDir, finch.GenotypeName))
		if err != nil {
			return err
		}
		defer db.Close()
		painter.Genotypes = db
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	res, err := painter.Paint(ctx, target, filepath.Base(args[0]))
	if err != nil {
		return err
	}
	defer res.Close()

	finch.Logger().Info("done", "status", res.Status.String(), "score", res.Score,
		"generations", res.Generations, "strokes", len(res.Specimen.Brushes), "genotype", res.GenotypeID)
	return nil
}
