package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cpunion/ytgrab/fetch"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteError(t *testing.T) {
	var buf bytes.Buffer
	writeError(&buf, errors.New(`merge: exit status 1: "out.mp4" exists`))
	assert.Equal(t, `{"error":"merge: exit status 1: \"out.mp4\" exists"}`+"\n", buf.String())
}

func TestWriteJSONKeepsUnicode(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeJSON(&buf, map[string]string{"title": "Cafés & <Crêpes>"}, "    "))
	assert.Equal(t, "{\n    \"title\": \"Cafés & <Crêpes>\"\n}\n", buf.String())
}

func TestWriteJSONInfoResult(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeJSON(&buf, fetch.InfoResult{Title: "Tom & Jerry <3"}, "    "))
	assert.Equal(t, "{\n    \"title\": \"Tom & Jerry <3\",\n    \"thumbnail\": null\n}\n", buf.String())
}

func TestCommandArgs(t *testing.T) {
	assert.Error(t, infoCmd.Args(infoCmd, []string{"only-url"}))
	assert.NoError(t, infoCmd.Args(infoCmd, []string{"url", "dir"}))
	assert.Error(t, downloadCmd.Args(downloadCmd, []string{"url", "out.mp4"}))
	assert.NoError(t, downloadCmd.Args(downloadCmd, []string{"url", "out.mp4", "mp4"}))
	assert.Error(t, serveCmd.Args(serveCmd, []string{"extra"}))
}

// execute runs the root command with args and returns what it printed on stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var stdout bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
		clearCache, noProgress = false, false
	})

	err := rootCmd.ExecuteContext(context.Background())
	return stdout.String(), err
}

func TestInfoCommandReportsFailureOnStdout(t *testing.T) {
	t.Setenv("YTGRAB_BACKEND", "youtube")
	dir := t.TempDir()
	stale := filepath.Join(dir, "stale.jpg")
	require.NoError(t, os.WriteFile(stale, []byte("old"), 0o644))

	// The youtube backend refuses foreign hosts without any network access.
	out, err := execute(t, "info", "--clear-cache", "--no-progress", "https://example.com/watch/1", dir)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(out, "{\n    \"error\": \"invalid URL: "), out)
	var decoded map[string]string
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	assert.Len(t, decoded, 1)
	assert.Contains(t, decoded["error"], "example.com")

	assert.NoFileExists(t, stale)
}

func TestInfoCommandInvalidURL(t *testing.T) {
	t.Setenv("YTGRAB_BACKEND", "youtube")

	out, err := execute(t, "info", "--no-progress", "ftp://example.com/v", t.TempDir())
	require.NoError(t, err)

	var decoded map[string]string
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	assert.Contains(t, decoded["error"], "invalid URL")
}

func TestRootRejectsBadConfig(t *testing.T) {
	t.Setenv("YTGRAB_BACKEND", "vlc")

	_, err := execute(t, "info", "--no-progress", "https://youtu.be/UaH8cAGdjzw", t.TempDir())
	assert.Error(t, err)
}
