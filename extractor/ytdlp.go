package extractor

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cpunion/ytgrab/logger"
	"github.com/lrstanley/go-ytdlp"
)

const (
	ytdlpVideoFormat = "bestvideo[ext=mp4]"
	ytdlpAudioFormat = "bestaudio[ext=mp3]/bestaudio"
)

// Ytdlp drives the yt-dlp executable, which covers far more sites than the
// native YouTube backend.
type Ytdlp struct {
	Path string
}

func NewYtdlp(path string) *Ytdlp {
	return &Ytdlp{Path: path}
}

func (y *Ytdlp) command() *ytdlp.Command {
	cmd := ytdlp.New().NoWarnings().NoPlaylist()
	if y.Path != "" {
		cmd = cmd.SetExecutable(y.Path)
	}
	return cmd
}

func (y *Ytdlp) Info(ctx context.Context, url string) (*Info, error) {
	res, err := y.command().SkipDownload().PrintJSON().Run(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("yt-dlp: %w", err)
	}

	return parseYtdlpInfo([]byte(res.Stdout))
}

func (y *Ytdlp) DownloadVideo(ctx context.Context, url, dst string) error {
	return y.download(ctx, url, dst, ytdlpVideoFormat)
}

func (y *Ytdlp) DownloadAudio(ctx context.Context, url, dst string) error {
	return y.download(ctx, url, dst, ytdlpAudioFormat)
}

func (y *Ytdlp) download(ctx context.Context, url, dst, format string) error {
	log.Emit(logger.INFO, "yt-dlp downloading %s into %s\n", format, dst)

	_, err := y.command().
		Format(format).
		Output(escapeTemplate(dst)).
		ForceOverwrites().
		Run(ctx, url)
	if err != nil {
		return fmt.Errorf("yt-dlp: %w", err)
	}

	return nil
}

type ytdlpInfo struct {
	ID         string           `json:"id"`
	Title      string           `json:"title"`
	Duration   float64          `json:"duration"`
	Thumbnail  string           `json:"thumbnail"`
	Thumbnails []ytdlpThumbnail `json:"thumbnails"`
}

type ytdlpThumbnail struct {
	URL    string `json:"url"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// parseYtdlpInfo returns the first JSON document found in yt-dlp's output.
func parseYtdlpInfo(out []byte) (*Info, error) {
	sc := bufio.NewScanner(bytes.NewReader(out))
	sc.Buffer(make([]byte, 64*1024), 16*1024*1024)
	for sc.Scan() {
		line := bytes.TrimSpace(sc.Bytes())
		if len(line) == 0 || line[0] != '{' {
			continue
		}

		var raw ytdlpInfo
		if err := json.Unmarshal(line, &raw); err != nil {
			continue
		}

		return &Info{
			ID:           raw.ID,
			Title:        raw.Title,
			ThumbnailURL: raw.bestThumbnail(),
			Duration:     time.Duration(raw.Duration * float64(time.Second)),
		}, nil
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("parse yt-dlp output: %w", err)
	}

	return nil, errors.New("yt-dlp returned no media info")
}

func (i ytdlpInfo) bestThumbnail() string {
	if i.Thumbnail != "" {
		return i.Thumbnail
	}

	var best ytdlpThumbnail
	for _, t := range i.Thumbnails {
		if best.URL == "" || t.Width*t.Height > best.Width*best.Height {
			best = t
		}
	}
	return best.URL
}

// escapeTemplate stops yt-dlp from expanding "%" sequences in a literal path.
func escapeTemplate(path string) string {
	return strings.ReplaceAll(path, "%", "%%")
}
