package extractor

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/cpunion/ytgrab/logger"
)

var log = logger.Get("Extractor")

var (
	ErrInvalidURL     = errors.New("invalid URL")
	ErrRestricted     = errors.New("restricted content")
	ErrNoFormat       = errors.New("no suitable format found")
	ErrUnknownBackend = errors.New("unknown extractor backend")
)

const (
	BackendYouTube = "youtube"
	BackendYtdlp   = "ytdlp"
)

// Info is the subset of video metadata ytgrab cares about.
type Info struct {
	ID           string
	Title        string
	ThumbnailURL string
	Duration     time.Duration
}

// Extractor resolves a media URL into metadata and separate
// video-only / audio-only streams written to local files.
type Extractor interface {
	Info(ctx context.Context, url string) (*Info, error)
	DownloadVideo(ctx context.Context, url, dst string) error
	DownloadAudio(ctx context.Context, url, dst string) error
}

type Options struct {
	HTTPClient      *http.Client
	MaxRes          int
	MetadataTimeout time.Duration
	YtdlpPath       string
}

func New(backend string, opts Options) (Extractor, error) {
	switch backend {
	case BackendYouTube, "":
		yt := NewYouTube(opts.HTTPClient, opts.MaxRes)
		yt.MetadataTimeout = opts.MetadataTimeout
		return yt, nil
	case BackendYtdlp:
		return NewYtdlp(opts.YtdlpPath), nil
	}

	return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, backend)
}
