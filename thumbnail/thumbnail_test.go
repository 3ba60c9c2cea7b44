package thumbnail

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/vi/abc/maxresdefault.jpg", r.URL.Path)
		w.Write([]byte("jpeg-bytes"))
	}))
	defer srv.Close()

	dir := filepath.Join(t.TempDir(), "cache", "nested")
	name, err := NewFetcher(srv.Client()).Fetch(context.Background(), srv.URL+"/vi/abc/maxresdefault.jpg?sqp=-oaymwE", dir)
	require.NoError(t, err)

	assert.Equal(t, ".jpg", filepath.Ext(name))
	_, err = uuid.Parse(strings.TrimSuffix(name, ".jpg"))
	assert.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, name))
	require.NoError(t, err)
	assert.Equal(t, "jpeg-bytes", string(data))
}

func TestFetchNamesAreUnique(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("x"))
	}))
	defer srv.Close()

	dir := t.TempDir()
	f := NewFetcher(srv.Client())
	a, err := f.Fetch(context.Background(), srv.URL+"/t.webp", dir)
	require.NoError(t, err)
	b, err := f.Fetch(context.Background(), srv.URL+"/t.webp", dir)
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestFetchHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	dir := t.TempDir()
	_, err := NewFetcher(srv.Client()).Fetch(context.Background(), srv.URL+"/missing.jpg", dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP 404")

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestFetchEmptyURL(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "never-created")
	name, err := NewFetcher(nil).Fetch(context.Background(), "", dir)
	require.NoError(t, err)
	assert.Empty(t, name)

	_, err = os.Stat(dir)
	assert.True(t, os.IsNotExist(err))
}

func TestExtension(t *testing.T) {
	assert.Equal(t, ".webp", extension("https://i.ytimg.com/vi_webp/abc/maxresdefault.webp"))
	assert.Equal(t, ".jpg", extension("https://i.ytimg.com/vi/abc/hq.jpg?sqp=a&rs=b"))
	assert.Equal(t, "", extension("https://cdn.example/thumb"))
}

func TestClearCache(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.jpg", "b.webp"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "keep"), 0o755))

	removed, err := ClearCache(dir)
	require.NoError(t, err)
	assert.Equal(t, 2, removed)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "keep", entries[0].Name())
}

func TestClearCacheMissingDir(t *testing.T) {
	removed, err := ClearCache(filepath.Join(t.TempDir(), "nope"))
	assert.NoError(t, err)
	assert.Zero(t, removed)
}
