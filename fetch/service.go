// Package fetch sequences the extractor, thumbnail store and ffmpeg into
// the two user facing operations: metadata lookup and download.
package fetch

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/cpunion/ytgrab/extractor"
	"github.com/cpunion/ytgrab/logger"
	"github.com/cpunion/ytgrab/media"
	"github.com/cpunion/ytgrab/thumbnail"
)

var log = logger.Get("Fetch")

// Merger muxes the intermediate streams into the final file.
type Merger interface {
	Merge(ctx context.Context, job media.MergeJob) error
}

type Service struct {
	extractor extractor.Extractor
	thumbs    *thumbnail.Fetcher
	merger    Merger
}

func New(ex extractor.Extractor, thumbs *thumbnail.Fetcher, merger Merger) *Service {
	return &Service{extractor: ex, thumbs: thumbs, merger: merger}
}

// InfoResult is the outcome of an info lookup. Failures are carried in
// Error rather than returned, so callers always have something to print.
type InfoResult struct {
	Title     string
	Thumbnail string
	Error     string
}

func (r InfoResult) Failed() bool {
	return r.Error != ""
}

// MarshalJSON renders either {"title", "thumbnail"} or {"error"}. A missing
// thumbnail is encoded as null.
func (r InfoResult) MarshalJSON() ([]byte, error) {
	if r.Failed() {
		return marshalRaw(struct {
			Error string `json:"error"`
		}{r.Error})
	}

	var thumb *string
	if r.Thumbnail != "" {
		thumb = &r.Thumbnail
	}
	return marshalRaw(struct {
		Title     string  `json:"title"`
		Thumbnail *string `json:"thumbnail"`
	}{r.Title, thumb})
}

// marshalRaw is json.Marshal without HTML escaping, so titles keep their
// "&", "<" and ">" characters.
func marshalRaw(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// Info fetches the title of rawURL and stores its thumbnail in dir.
func (s *Service) Info(ctx context.Context, rawURL, dir string) InfoResult {
	result, err := s.info(ctx, rawURL, dir)
	if err != nil {
		log.Emit(logger.ERROR, "Failed to fetch video info: %v\n", err)
		return InfoResult{Error: err.Error()}
	}
	return result
}

func (s *Service) info(ctx context.Context, rawURL, dir string) (InfoResult, error) {
	url, err := extractor.NormalizeURL(rawURL)
	if err != nil {
		return InfoResult{}, err
	}

	log.Emit(logger.INFO, "Fetching video info: %s\n", url)
	info, err := s.extractor.Info(ctx, url)
	if err != nil {
		return InfoResult{}, err
	}

	name, err := s.thumbs.Fetch(ctx, info.ThumbnailURL, dir)
	if err != nil {
		return InfoResult{}, err
	}

	return InfoResult{Title: info.Title, Thumbnail: name}, nil
}

// Download fetches the video-only and audio-only streams of rawURL next to
// outputPath, muxes them into outputPath using the codecs for format and
// removes the intermediate files, whether or not the merge succeeded.
func (s *Service) Download(ctx context.Context, rawURL, outputPath, format string) error {
	url, err := extractor.NormalizeURL(rawURL)
	if err != nil {
		return err
	}

	paths := media.PathsFor(outputPath)
	if dir := filepath.Dir(paths.Output); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}
	defer removeIntermediates(paths)

	log.Emit(logger.INFO, "Downloading %s as %s into %s\n", url, format, paths.Output)

	if err := s.extractor.DownloadVideo(ctx, url, paths.Video); err != nil {
		return fmt.Errorf("download video: %w", err)
	}
	log.Emit(logger.SUCCESS, "Video downloaded: %s\n", paths.Video)

	if err := s.extractor.DownloadAudio(ctx, url, paths.Audio); err != nil {
		return fmt.Errorf("download audio: %w", err)
	}
	log.Emit(logger.SUCCESS, "Audio downloaded: %s\n", paths.Audio)

	job := media.MergeJob{
		Video:  paths.Video,
		Audio:  paths.Audio,
		Output: paths.Output,
		Codecs: media.CodecsFor(format),
	}
	if err := s.merger.Merge(ctx, job); err != nil {
		return fmt.Errorf("merge: %w", err)
	}

	return nil
}

func removeIntermediates(paths media.Paths) {
	for _, p := range paths.Intermediates() {
		if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			log.Emit(logger.WARNING, "Failed to remove temporary file %s: %v\n", p, err)
		}
	}
}
