package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/wbrown/finch"
	"github.com/wbrown/finch/store"
)

var redrawCmd = &cobra.Command{
	Use:   "redraw <genotype.db> <run-id>",
	Short: "Redraw a stored painting at a larger scale",
	Args:  cobra.ExactArgs(2),
	RunE:  runRedraw,
}

var runsCmd = &cobra.Command{
	Use:   "runs <genotype.db>",
	Short: "List the paintings stored in a genotype database",
	Args:  cobra.ExactArgs(1),
	RunE:  runRuns,
}

func init() {
	rootCmd.AddCommand(redrawCmd, runsCmd)

	flags := redrawCmd.Flags()
	flags.Float64("scale", 0, "Scale factor (0 = about 4K pixels)")
	flags.String("out", "redraw.png", "Output PNG")
	flags.String("fit", "", "Scale and center-crop the redraw to WxH, e.g. 3840x2160")

	bindFlags(redrawCmd, map[string]string{
		"redraw.scale": "scale",
		"redraw.out":   "out",
		"redraw.fit":   "fit",
	}, false)
}

func runRedraw(cmd *cobra.Command, args []string) error {
	db, err := store.Open(args[0])
	if err != nil {
		return err
	}
	defer db.Close()

	run, err := db.LoadRun(cmd.Context(), args[1])
	if err != nil {
		return err
	}
	catalog, err := finch.LoadCatalog(viper.GetString("brushes"), run.Style)
	if err != nil {
		return err
	}
	defer catalog.Close()

	scale := viper.GetFloat64("redraw.scale")
	if scale <= 0 {
		scale = finch.ScaleFor4K(run.Height, run.Width)
	}
	img, err := finch.RedrawGenotype(run.Brushes, run.Width, run.Height, catalog, scale)
	if err != nil {
		return err
	}
	defer img.Close()

	if fit := viper.GetString("redraw.fit"); fit != "" {
		var w, h int
		if _, err := fmt.Sscanf(fit, "%dx%d", &w, &h); err != nil || w < 1 || h < 1 {
			return fmt.Errorf("invalid --fit %q, expected WxH", fit)
		}
		fitted := finch.ScaleToDimension(img, w, h)
		img.Close()
		img = fitted
	}

	out := viper.GetString("redraw.out")
	if err := finch.WritePNG(out, img); err != nil {
		return err
	}
	finch.Logger().Info("redrew", "run", run.ID.String(), "scale", scale, "out", out)
	return nil
}

func runRuns(cmd *cobra.Command, args []string) error {
	if _, err := os.Stat(args[0]); err != nil {
		return err
	}
	db, err := store.Open(args[0])
	if err != nil {
		return err
	}
	defer db.Close()

	runs, err := db.ListRuns(cmd.Context())
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tSTYLE\tMETHOD\tSIZE\tSCORE\tGENERATIONS\tCREATED")
	for _, r := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%dx%d\t%d\t%d\t%s\n",
			r.ID, r.Name, r.Style, r.Method, r.Width, r.Height, r.Score, r.Generations,
			r.Created.Format("2006-01-02 15:04:05"))
	}
	return w.Flush()
}
