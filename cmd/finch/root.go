package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/wbrown/finch"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "finch",
	Short: "Paint images with textured brush strokes",
	Long: `finch recreates an image as a painting. Strokes are proposed one at a
time where the canvas differs most from the target, oriented along the
target's gradient, and kept only when they bring the canvas closer.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := initConfig(); err != nil {
			return err
		}
		return initLogging()
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "Config file (default ./finch.yaml)")
	flags.String("log-level", "info", "Log level: debug, info, warn, or error")
	flags.String("brushes", "brushes", "Directory holding one texture directory per brush style")
	flags.String("method", "absolute", "Difference method: absolute, relative, or perceptual")
	flags.Int("patience", finch.DefaultPatience, "Consecutive rejected strokes before giving up")
	flags.Int("termination-score", 0, "Score at or below which painting stops (0 = method default)")
	flags.Uint64("seed", 0, "Random seed (0 = random)")

	bindFlags(rootCmd, map[string]string{
		"log.level":         "log-level",
		"brushes":           "brushes",
		"method":            "method",
		"patience":          "patience",
		"termination_score": "termination-score",
		"seed":              "seed",
	}, true)
}

// bindFlags binds viper keys to the named flags of cmd.
func bindFlags(cmd *cobra.Command, keys map[string]string, persistent bool) {
	set := cmd.Flags()
	if persistent {
		set = cmd.PersistentFlags()
	}
	for key, flag := range keys {
		if err := viper.BindPFlag(key, set.Lookup(flag)); err != nil {
			panic(fmt.Sprintf("failed to bind flag %s: %v", flag, err))
		}
	}
}

func initConfig() error {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("finch")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
	}
	viper.SetEnvPrefix("FINCH")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return fmt.Errorf("failed to read config: %w", err)
		}
	}
	return nil
}

func initLogging() error {
	var level slog.Level
	if err := level.UnmarshalText([]byte(viper.GetString("log.level"))); err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	finch.SetLogger(logger)
	return nil
}

// searchOptions returns the options shared by every command that paints.
func searchOptions() ([]finch.Option, error) {
	method, err := finch.ParseDifferenceMethod(viper.GetString("method"))
	if err != nil {
		return nil, err
	}
	return []finch.Option{
		finch.WithMethod(method),
		finch.WithPatience(viper.GetInt("patience")),
		finch.WithTerminationScore(viper.GetInt("termination_score")),
		finch.WithSeed(viper.GetUint64("seed")),
	}, nil
}

// parseStyles resolves a list of style names. An empty list selects every
// style.
func parseStyles(names []string) ([]finch.Style, error) {
	if len(names) == 0 {
		return finch.Styles(), nil
	}
	styles := make([]finch.Style, 0, len(names))
	for _, name := range names {
		s, err := finch.ParseStyle(strings.TrimSpace(name))
		if err != nil {
			return nil, err
		}
		styles = append(styles, s)
	}
	return styles, nil
}
