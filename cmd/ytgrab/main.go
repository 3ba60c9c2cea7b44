package main

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/cpunion/ytgrab/config"
	"github.com/cpunion/ytgrab/extractor"
	"github.com/cpunion/ytgrab/fetch"
	"github.com/cpunion/ytgrab/logger"
	"github.com/cpunion/ytgrab/media"
	"github.com/cpunion/ytgrab/progress"
	"github.com/cpunion/ytgrab/thumbnail"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var rootCmd = &cobra.Command{
	Use:   "ytgrab",
	Short: "Fetch video metadata or download and transcode videos",
	Long: `ytgrab looks up the title and thumbnail of a video, or downloads its
best video and audio streams and muxes them with ffmpeg.`,
	SilenceErrors:     true,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

var (
	configPath string
	backend    string
	logLevel   string
	overwrite  bool
	noProgress bool

	cfg *config.Config
)

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&configPath, "config", "c", "", "YAML configuration file")
	flags.StringVar(&backend, "backend", "", "Extractor backend: youtube or ytdlp")
	flags.StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn or error")
	flags.BoolVarP(&overwrite, "overwrite", "y", false, "Overwrite existing files without prompting")
	flags.BoolVar(&noProgress, "no-progress", false, "Disable progress bars")
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()

	if err != nil {
		writeError(os.Stderr, err)
		os.Exit(1)
	}
}

// setup loads the configuration and applies command line overrides before
// any subcommand runs.
func setup(cmd *cobra.Command, _ []string) error {
	loaded, err := config.Load(configPath)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("backend") {
		loaded.Backend = backend
	}
	if flags.Changed("log-level") {
		loaded.LogLevel = logLevel
	}
	if flags.Changed("overwrite") {
		loaded.Overwrite = overwrite
	}
	if noProgress {
		loaded.NoProgress = true
	}
	if err := loaded.Validate(); err != nil {
		return err
	}

	level, err := logger.ParseLevel(loaded.LogLevel)
	if err != nil {
		return err
	}
	logger.SetMinLoggingLevel(level)
	progress.SetEnabled(!loaded.NoProgress && term.IsTerminal(int(os.Stderr.Fd())))

	cfg = loaded
	return nil
}

// newService wires the configured extractor, thumbnail fetcher and ffmpeg.
func newService() (*fetch.Service, *media.FFmpeg, error) {
	// Streams can take far longer than HTTPTimeout, so the client itself only
	// bounds the wait for response headers. Metadata lookups get a deadline.
	streamClient := &http.Client{
		Transport: &http.Transport{
			Proxy:                 http.ProxyFromEnvironment,
			ResponseHeaderTimeout: cfg.HTTPTimeout,
		},
	}
	ex, err := extractor.New(cfg.Backend, extractor.Options{
		HTTPClient:      streamClient,
		MaxRes:          cfg.MaxResolution,
		MetadataTimeout: cfg.HTTPTimeout,
		YtdlpPath:       cfg.YtdlpPath,
	})
	if err != nil {
		return nil, nil, err
	}

	thumbs := thumbnail.NewFetcher(&http.Client{Timeout: cfg.HTTPTimeout})
	ffmpeg := media.NewFFmpeg(cfg.FFmpegPath, cfg.Overwrite)

	return fetch.New(ex, thumbs, ffmpeg), ffmpeg, nil
}

func writeJSON(w io.Writer, v any, indent string) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", indent)
	return enc.Encode(v)
}

func writeError(w io.Writer, err error) {
	writeJSON(w, map[string]string{"error": err.Error()}, "")
}
