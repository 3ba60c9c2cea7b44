package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"sync"

	"github.com/cpunion/ytgrab/logger"
	"github.com/cpunion/ytgrab/progress"
)

var log = logger.Get("FFmpeg")

var ErrFFmpegNotFound = errors.New("ffmpeg not found")

const defaultFFmpegPath = "ffmpeg"

// MergeJob describes one mux of a video-only and an audio-only file.
type MergeJob struct {
	Video  string
	Audio  string
	Output string
	Codecs Codecs
}

type FFmpeg struct {
	Path      string
	Overwrite bool
}

func NewFFmpeg(path string, overwrite bool) *FFmpeg {
	return &FFmpeg{Path: path, Overwrite: overwrite}
}

func (f *FFmpeg) bin() string {
	if f.Path != "" {
		return f.Path
	}
	return defaultFFmpegPath
}

// Check verifies that the configured ffmpeg binary can be executed.
func (f *FFmpeg) Check(ctx context.Context) error {
	if err := exec.CommandContext(ctx, f.bin(), "-version").Run(); err != nil {
		return fmt.Errorf("%w at %q: %v", ErrFFmpegNotFound, f.bin(), err)
	}
	return nil
}

func (f *FFmpeg) Merge(ctx context.Context, job MergeJob) error {
	args := mergeArgs(job, f.Overwrite)
	log.Emit(logger.DEBUG, "Executing FFmpeg command: %s %s\n", f.bin(), strings.Join(args, " "))

	cmd := exec.CommandContext(ctx, f.bin(), args...)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("failed to get stdout pipe: %w", err)
	}

	stderr, err := cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("failed to get stderr pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start ffmpeg: %w", err)
	}

	// The total is taken from the "Duration:" line ffmpeg prints on stderr.
	task := progress.NewTask("Merging", 0, true)

	// Both pipes must be drained before Wait; stderr is kept for the error message.
	var (
		stderrBuf bytes.Buffer
		wg        sync.WaitGroup
	)
	consume := func(r io.Reader) {
		defer wg.Done()
		progress.ParseFFmpegProgress(r, task)
		io.Copy(io.Discard, r)
	}
	wg.Add(2)
	go consume(stdout)
	go consume(io.TeeReader(stderr, &stderrBuf))
	wg.Wait()

	err = cmd.Wait()
	task.Finish()
	if err != nil {
		if tail := tailString(stderrBuf.String(), 512); tail != "" {
			return fmt.Errorf("failed to merge video and audio: %w: %s", err, tail)
		}
		return fmt.Errorf("failed to merge video and audio: %w", err)
	}

	log.Emit(logger.SUCCESS, "Final video created: %s\n", job.Output)
	return nil
}

func mergeArgs(job MergeJob, overwrite bool) []string {
	overwriteFlag := "-n"
	if overwrite {
		overwriteFlag = "-y"
	}

	return []string{
		overwriteFlag,
		"-hide_banner",
		"-nostats",
		"-progress", "pipe:1",
		"-i", job.Video,
		"-i", job.Audio,
		"-c:v", job.Codecs.Video,
		"-c:a", job.Codecs.Audio,
		"-strict", "experimental",
		job.Output,
	}
}

// tailString returns the last at most n bytes of s, trimmed.
func tailString(s string, n int) string {
	if len(s) > n {
		s = s[len(s)-n:]
	}
	return strings.TrimSpace(s)
}
