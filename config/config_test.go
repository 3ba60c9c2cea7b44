package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("YTGRAB_CACHE_DIR", "")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "youtube", cfg.Backend)
	assert.Equal(t, "ffmpeg", cfg.FFmpegPath)
	assert.Equal(t, "yt-dlp", cfg.YtdlpPath)
	assert.Equal(t, 1080, cfg.MaxResolution)
	assert.Equal(t, 30*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.False(t, cfg.NoProgress)
	assert.False(t, cfg.Overwrite)
	assert.Equal(t, ":8080", cfg.Serve.Addr)
	assert.Equal(t, "thumbnails", filepath.Base(cfg.Serve.CacheDir))
	assert.NotEmpty(t, cfg.Serve.TempDir)
}

func TestLoadEnv(t *testing.T) {
	t.Setenv("YTGRAB_BACKEND", "ytdlp")
	t.Setenv("YTGRAB_MAX_RESOLUTION", "720")
	t.Setenv("YTGRAB_HTTP_TIMEOUT", "5s")
	t.Setenv("YTGRAB_NO_PROGRESS", "true")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "ytdlp", cfg.Backend)
	assert.Equal(t, 720, cfg.MaxResolution)
	assert.Equal(t, 5*time.Second, cfg.HTTPTimeout)
	assert.True(t, cfg.NoProgress)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ytgrab.yml")
	require.NoError(t, os.WriteFile(path, []byte(`
backend: ytdlp
ffmpeg_path: /opt/ffmpeg/bin/ffmpeg
log_level: debug
overwrite: true
no_progress: true
serve:
  addr: 127.0.0.1:9000
  cache_dir: /var/cache/ytgrab
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "ytdlp", cfg.Backend)
	assert.Equal(t, "/opt/ffmpeg/bin/ffmpeg", cfg.FFmpegPath)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.True(t, cfg.Overwrite)
	assert.True(t, cfg.NoProgress)
	assert.Equal(t, "127.0.0.1:9000", cfg.Serve.Addr)
	assert.Equal(t, "/var/cache/ytgrab", cfg.Serve.CacheDir)
	// Unset keys still get their defaults.
	assert.Equal(t, 1080, cfg.MaxResolution)
}

func TestLoadExpandsHome(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)
	t.Setenv("YTGRAB_CACHE_DIR", "~/thumbs")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "thumbs"), cfg.Serve.CacheDir)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{Backend: "youtube", LogLevel: "info", MaxResolution: 1080}
	}
	require.NoError(t, valid().Validate())

	cfg := valid()
	cfg.Backend = "vlc"
	assert.Error(t, cfg.Validate())

	cfg = valid()
	cfg.LogLevel = "chatty"
	assert.Error(t, cfg.Validate())

	cfg = valid()
	cfg.MaxResolution = 0
	assert.Error(t, cfg.Validate())
}
