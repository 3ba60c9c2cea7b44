package progress

import (
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	SetEnabled(false)
}

func TestParseFFmpegProgress(t *testing.T) {
	output := strings.Join([]string{
		"Input #0, mov,mp4,m4a,3gp,3g2,mj2, from 'clip_video.mp4':",
		"  Duration: 00:03:25.47, start: 0.000000, bitrate: 1021 kb/s",
		"Input #1, mp3, from 'clip_audio.mp3':",
		"  Duration: 00:03:25.50, start: 0.025057, bitrate: 128 kb/s",
		"frame=120",
		"out_time_ms=61000000",
		"speed=2.53x",
		"progress=continue",
	}, "\n")

	task := NewTask("Merging", 0, true)
	ParseFFmpegProgress(strings.NewReader(output), task)

	current, total := task.Snapshot()
	assert.Equal(t, int64(3*time.Minute+25*time.Second+470*time.Millisecond), total)
	assert.Equal(t, int64(61*time.Second), current)
}

func TestParseFFmpegProgressEnd(t *testing.T) {
	task := NewTask("Merging", int64(10*time.Second), true)
	ParseFFmpegProgress(strings.NewReader("out_time_ms=4000000\nprogress=end\n"), task)

	current, total := task.Snapshot()
	assert.Equal(t, total, current)
}

func TestSetCurrentClampsToTotal(t *testing.T) {
	task := NewTask("Video", 100, false)
	task.SetCurrent(250)

	current, _ := task.Snapshot()
	assert.Equal(t, int64(100), current)
}

func TestReaderCountsWhenDisabled(t *testing.T) {
	task := NewTask("Audio", 11, false)
	n, err := io.Copy(io.Discard, task.Reader(strings.NewReader("hello world")))
	require.NoError(t, err)
	task.Finish()

	current, _ := task.Snapshot()
	assert.Equal(t, int64(11), n)
	assert.Equal(t, int64(11), current)
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "42s", formatDuration(42*time.Second))
	assert.Equal(t, "3m:5s", formatDuration(3*time.Minute+5*time.Second))
	assert.Equal(t, "1h:0m:9s", formatDuration(time.Hour+9*time.Second))
}

func TestParseSpeed(t *testing.T) {
	assert.InDelta(t, 1.5, parseSpeed("1.5x"), 0.0001)
	assert.Zero(t, parseSpeed("N/A"))
}
