package extractor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cpunion/ytgrab/logger"
	"github.com/cpunion/ytgrab/progress"
	"github.com/dustin/go-humanize"
	"github.com/kkdai/youtube/v2"
)

const defaultMaxRes = 1080

// YouTube extracts streams natively through kkdai/youtube, without any
// external executable.
type YouTube struct {
	client *youtube.Client
	MaxRes int
	// MetadataTimeout bounds each video metadata lookup. Stream downloads
	// are not affected. Zero means no limit.
	MetadataTimeout time.Duration
}

func NewYouTube(httpClient *http.Client, maxRes int) *YouTube {
	if maxRes <= 0 {
		maxRes = defaultMaxRes
	}
	return &YouTube{
		client: &youtube.Client{HTTPClient: httpClient},
		MaxRes: maxRes,
	}
}

func (yd *YouTube) Info(ctx context.Context, url string) (*Info, error) {
	video, err := yd.video(ctx, url)
	if err != nil {
		return nil, err
	}

	return &Info{
		ID:           video.ID,
		Title:        video.Title,
		ThumbnailURL: bestThumbnail(video.Thumbnails),
		Duration:     video.Duration,
	}, nil
}

func (yd *YouTube) DownloadVideo(ctx context.Context, url, dst string) error {
	video, err := yd.video(ctx, url)
	if err != nil {
		return err
	}

	format, err := selectVideoFormat(video.Formats, yd.MaxRes)
	if err != nil {
		return err
	}
	log.Emit(logger.DEBUG, "Selected video format: ItagNo: %d, Quality: %s, MimeType: %s, Bitrate: %d\n",
		format.ItagNo, format.QualityLabel, format.MimeType, format.Bitrate)

	return yd.downloadStream(ctx, video, format, dst, "Video")
}

func (yd *YouTube) DownloadAudio(ctx context.Context, url, dst string) error {
	video, err := yd.video(ctx, url)
	if err != nil {
		return err
	}

	format, err := selectAudioFormat(video.Formats)
	if err != nil {
		return err
	}
	log.Emit(logger.DEBUG, "Selected audio format: ItagNo: %d, MimeType: %s, Bitrate: %d\n",
		format.ItagNo, format.MimeType, format.Bitrate)

	return yd.downloadStream(ctx, video, format, dst, "Audio")
}

func (yd *YouTube) video(ctx context.Context, url string) (*youtube.Video, error) {
	if !IsYouTube(url) {
		return nil, fmt.Errorf("%w: youtube backend cannot handle %q", ErrInvalidURL, url)
	}

	if yd.MetadataTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, yd.MetadataTimeout)
		defer cancel()
	}

	video, err := yd.client.GetVideoContext(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("failed to get video info: %w", classify(err))
	}

	return video, nil
}

func (yd *YouTube) downloadStream(ctx context.Context, video *youtube.Video, format *youtube.Format, filename, label string) error {
	stream, size, err := yd.client.GetStreamContext(ctx, video, format)
	if err != nil {
		return fmt.Errorf("failed to get stream: %w", classify(err))
	}
	defer stream.Close()

	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	log.Emit(logger.INFO, "Downloading %s stream of %q (%s)\n", strings.ToLower(label), video.Title, humanize.Bytes(uint64(max(size, 0))))

	task := progress.NewTask(label, size, false)
	defer task.Finish()

	if _, err := io.Copy(file, task.Reader(stream)); err != nil {
		return fmt.Errorf("failed to save stream: %w", err)
	}

	return nil
}

// selectVideoFormat picks the best video-only stream not exceeding maxRes,
// preferring the MP4 container.
func selectVideoFormat(formats youtube.FormatList, maxRes int) (*youtube.Format, error) {
	var best *youtube.Format
	bestQuality := 0
	bestIsMP4 := false

	for i := range formats {
		format := &formats[i]
		if !strings.HasPrefix(format.MimeType, "video/") || format.AudioChannels > 0 {
			continue
		}

		quality := videoQuality(format)
		if quality == 0 || quality > maxRes {
			continue
		}

		isMP4 := strings.HasPrefix(format.MimeType, "video/mp4")
		switch {
		case best == nil,
			isMP4 && !bestIsMP4,
			isMP4 == bestIsMP4 && quality > bestQuality,
			isMP4 == bestIsMP4 && quality == bestQuality && format.Bitrate > best.Bitrate:
			best, bestQuality, bestIsMP4 = format, quality, isMP4
		}
	}

	if best == nil {
		return nil, fmt.Errorf("%w: video", ErrNoFormat)
	}

	return best, nil
}

func selectAudioFormat(formats youtube.FormatList) (*youtube.Format, error) {
	var best *youtube.Format
	for i := range formats {
		format := &formats[i]
		if !strings.HasPrefix(format.MimeType, "audio/") {
			continue
		}
		if best == nil || format.Bitrate > best.Bitrate {
			best = format
		}
	}

	if best == nil {
		return nil, fmt.Errorf("%w: audio", ErrNoFormat)
	}

	return best, nil
}

// videoQuality returns the vertical resolution of a format, falling back
// to the leading digits of labels such as "720p60".
func videoQuality(format *youtube.Format) int {
	if format.Height > 0 {
		return format.Height
	}

	label := format.QualityLabel
	end := strings.IndexFunc(label, func(r rune) bool { return r < '0' || r > '9' })
	if end == -1 {
		end = len(label)
	}
	quality, _ := strconv.Atoi(label[:end])
	return quality
}

func bestThumbnail(thumbnails youtube.Thumbnails) string {
	var best youtube.Thumbnail
	for _, t := range thumbnails {
		if best.URL == "" || t.Width*t.Height > best.Width*best.Height {
			best = t
		}
	}
	return best.URL
}

func classify(err error) error {
	switch {
	case errors.Is(err, youtube.ErrLoginRequired),
		errors.Is(err, youtube.ErrVideoPrivate),
		errors.Is(err, youtube.ErrNotPlayableInEmbed):
		return fmt.Errorf("%w: %w", ErrRestricted, err)
	case errors.Is(err, youtube.ErrInvalidCharactersInVideoID),
		errors.Is(err, youtube.ErrVideoIDMinLength):
		return fmt.Errorf("%w: %w", ErrInvalidURL, err)
	}

	var statusErr *youtube.ErrPlayabiltyStatus
	if errors.As(err, &statusErr) {
		return fmt.Errorf("%w: %w", ErrRestricted, err)
	}

	return err
}
