package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/cpunion/ytgrab/logger"
	"github.com/cpunion/ytgrab/progress"
	"github.com/cpunion/ytgrab/server"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the info and download operations over HTTP",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

var serveAddr string

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default from config, :8080)")
}

func runServe(cmd *cobra.Command, _ []string) error {
	log := logger.Get("CLI")
	// Concurrent requests would interleave bars on one terminal.
	progress.SetEnabled(false)

	svc, ffmpeg, err := newService()
	if err != nil {
		return err
	}
	if err := ffmpeg.Check(cmd.Context()); err != nil {
		return err
	}

	addr := cfg.Serve.Addr
	if serveAddr != "" {
		addr = serveAddr
	}

	srv := &http.Server{
		Addr: addr,
		Handler: server.New(svc, server.Config{
			CacheDir: cfg.Serve.CacheDir,
			TempDir:  cfg.Serve.TempDir,
		}),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Emit(logger.INFO, "Listening on http://%s (thumbnails in %s)\n", addr, cfg.Serve.CacheDir)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-cmd.Context().Done():
	}

	log.Emit(logger.INFO, "Shutdown signal received; draining...\n")
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()
	return srv.Shutdown(ctx)
}
