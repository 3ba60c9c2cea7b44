// Package thumbnail stores remote thumbnails under generated names in a
// local cache directory.
package thumbnail

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"

	"github.com/cpunion/ytgrab/logger"
	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
)

var log = logger.Get("Thumbnail")

type Fetcher struct {
	client *http.Client
}

func NewFetcher(client *http.Client) *Fetcher {
	if client == nil {
		client = http.DefaultClient
	}
	return &Fetcher{client: client}
}

// Fetch downloads thumbURL into dir under a random name that keeps the
// remote file extension, and returns that name. An empty thumbURL yields
// an empty name and no request.
func (f *Fetcher) Fetch(ctx context.Context, thumbURL, dir string) (string, error) {
	if thumbURL == "" {
		return "", nil
	}

	filename := uuid.New().String() + extension(thumbURL)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create thumbnail dir: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, thumbURL, nil)
	if err != nil {
		return "", fmt.Errorf("thumbnail request: %w", err)
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("thumbnail download failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("thumbnail download failed: HTTP %d", resp.StatusCode)
	}

	target := filepath.Join(dir, filename)
	file, err := os.Create(target)
	if err != nil {
		return "", fmt.Errorf("create thumbnail file: %w", err)
	}

	n, err := io.Copy(file, resp.Body)
	if closeErr := file.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(target)
		return "", fmt.Errorf("write thumbnail: %w", err)
	}

	log.Emit(logger.SUCCESS, "Thumbnail saved: %s (%s)\n", target, humanize.Bytes(uint64(n)))
	return filename, nil
}

// extension returns the extension of the URL path, ignoring any query
// string or fragment.
func extension(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return path.Ext(rawURL)
	}
	return path.Ext(u.Path)
}

// ClearCache removes the regular files directly inside dir and reports how
// many were removed. A missing dir is not an error.
func ClearCache(dir string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return 0, nil
		}
		return 0, err
	}

	var (
		removed int
		errs    []error
	)
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		if err := os.Remove(filepath.Join(dir, entry.Name())); err != nil {
			errs = append(errs, err)
			continue
		}
		removed++
	}

	return removed, errors.Join(errs...)
}
