package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/cpunion/ytgrab/extractor"
	"github.com/cpunion/ytgrab/logger"
	"github.com/ilyakaznacheev/cleanenv"
	"github.com/mitchellh/go-homedir"
)

const appDirName = "ytgrab"

// Config holds the user supplied settings, read from an optional YAML file
// and overridden by YTGRAB_* environment variables.
type Config struct {
	Backend       string        `yaml:"backend" env:"YTGRAB_BACKEND" env-default:"youtube" env-description:"Extractor backend (youtube|ytdlp)"`
	FFmpegPath    string        `yaml:"ffmpeg_path" env:"YTGRAB_FFMPEG" env-default:"ffmpeg" env-description:"Path to the ffmpeg executable"`
	YtdlpPath     string        `yaml:"ytdlp_path" env:"YTGRAB_YTDLP" env-default:"yt-dlp" env-description:"Path to the yt-dlp executable"`
	MaxResolution int           `yaml:"max_resolution" env:"YTGRAB_MAX_RESOLUTION" env-default:"1080" env-description:"Highest video height to download"`
	HTTPTimeout   time.Duration `yaml:"http_timeout" env:"YTGRAB_HTTP_TIMEOUT" env-default:"30s" env-description:"Timeout for metadata and thumbnail requests"`
	LogLevel      string        `yaml:"log_level" env:"YTGRAB_LOG_LEVEL" env-default:"info" env-description:"debug|info|warn|error"`
	NoProgress    bool          `yaml:"no_progress" env:"YTGRAB_NO_PROGRESS" env-description:"Never render progress bars"`
	Overwrite     bool          `yaml:"overwrite" env:"YTGRAB_OVERWRITE" env-default:"false" env-description:"Overwrite existing output files"`
	Serve         ServeConfig   `yaml:"serve"`
}

// ServeConfig only matters to the HTTP front end.
type ServeConfig struct {
	Addr     string `yaml:"addr" env:"YTGRAB_SERVE_ADDR" env-default:":8080"`
	CacheDir string `yaml:"cache_dir" env:"YTGRAB_CACHE_DIR"`
	TempDir  string `yaml:"temp_dir" env:"YTGRAB_TEMP_DIR"`
}

// Load reads configPath (if not empty) and the environment into a Config,
// then resolves directory defaults and validates the result.
func Load(configPath string) (*Config, error) {
	cfg := &Config{}

	var err error
	if configPath != "" {
		configPath, err = homedir.Expand(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to expand config path: %w", err)
		}
		err = cleanenv.ReadConfig(configPath, cfg)
	} else {
		err = cleanenv.ReadEnv(cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration - %v", err)
	}

	if err := cfg.resolveDirs(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate rejects settings that cannot work.
func (c *Config) Validate() error {
	switch c.Backend {
	case extractor.BackendYouTube, extractor.BackendYtdlp:
	default:
		return fmt.Errorf("invalid backend %q (must be %s|%s)", c.Backend, extractor.BackendYouTube, extractor.BackendYtdlp)
	}

	if _, err := logger.ParseLevel(c.LogLevel); err != nil {
		return err
	}

	if c.MaxResolution < 1 {
		return fmt.Errorf("invalid max_resolution: %d", c.MaxResolution)
	}

	if c.HTTPTimeout < 0 {
		return fmt.Errorf("invalid http_timeout: %s", c.HTTPTimeout)
	}

	return nil
}

func (c *Config) resolveDirs() error {
	var err error
	if c.FFmpegPath, err = homedir.Expand(c.FFmpegPath); err != nil {
		return err
	}
	if c.YtdlpPath, err = homedir.Expand(c.YtdlpPath); err != nil {
		return err
	}

	if c.Serve.CacheDir == "" {
		dir, err := os.UserCacheDir()
		if err != nil {
			dir = os.TempDir()
		}
		c.Serve.CacheDir = filepath.Join(dir, appDirName, "thumbnails")
	} else if c.Serve.CacheDir, err = homedir.Expand(c.Serve.CacheDir); err != nil {
		return err
	}

	if c.Serve.TempDir == "" {
		c.Serve.TempDir = os.TempDir()
	} else if c.Serve.TempDir, err = homedir.Expand(c.Serve.TempDir); err != nil {
		return err
	}

	return nil
}
