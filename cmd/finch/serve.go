package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/wbrown/finch"
	"github.com/wbrown/finch/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve paint requests over HTTP",
	Long: `Serve paint requests over HTTP. POST / takes a multipart form with an
"image" file and a "brush_set" style name and answers with JSON holding the
base64 encoded result PNG and progress GIF.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	flags := serveCmd.Flags()
	flags.String("addr", ":8080", "Listen address")
	flags.Int("max-response", server.DefaultMaxResponseBytes, "Largest response body in bytes")
	flags.Bool("upscale", true, "Return the 4K redraw instead of the working canvas")

	bindFlags(serveCmd, map[string]string{
		"serve.addr":         "addr",
		"serve.max_response": "max-response",
		"serve.upscale":      "upscale",
	}, false)
}

func runServe(cmd *cobra.Command, args []string) error {
	opts, err := searchOptions()
	if err != nil {
		return err
	}
	cfg := finch.DefaultConfig(append(opts,
		finch.WithUpscale(viper.GetBool("serve.upscale")),
	)...)

	s := server.New(&server.CatalogPainter{Config: cfg, BrushRoot: viper.GetString("brushes")})
	s.SetMaxResponseBytes(viper.GetInt("serve.max_response"))
	srv := &http.Server{
		Addr:              viper.GetString("serve.addr"),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	finch.Logger().Info("listening", "addr", srv.Addr)
	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
