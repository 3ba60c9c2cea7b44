package extractor

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

var (
	videoIDRegex   = regexp.MustCompile(`^[0-9A-Za-z_-]{11}$`)
	pathVideoRegex = regexp.MustCompile(`^/(?:shorts|embed|live|v)/([0-9A-Za-z_-]{11})`)
)

const watchURL = "https://www.youtube.com/watch?v="

// NormalizeURL rewrites the various YouTube URL shapes into the canonical
// watch URL. Other http(s) URLs are returned unchanged so that backends
// able to handle them (yt-dlp) still can.
func NormalizeURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("%w: empty URL", ErrInvalidURL)
	}
	if videoIDRegex.MatchString(raw) {
		return watchURL + raw, nil
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	switch strings.ToLower(parsed.Scheme) {
	case "http", "https":
	default:
		return "", fmt.Errorf("%w: unsupported scheme %q", ErrInvalidURL, parsed.Scheme)
	}
	if parsed.Host == "" {
		return "", fmt.Errorf("%w: missing host", ErrInvalidURL)
	}

	host := strings.TrimPrefix(strings.ToLower(parsed.Hostname()), "www.")
	switch host {
	case "youtu.be":
		id := strings.Trim(parsed.Path, "/")
		if id == "" {
			return "", fmt.Errorf("%w: missing video id", ErrInvalidURL)
		}
		return watchURL + id, nil
	case "youtube.com", "m.youtube.com", "music.youtube.com":
		if id := parsed.Query().Get("v"); id != "" {
			return watchURL + id, nil
		}
		if m := pathVideoRegex.FindStringSubmatch(parsed.Path); m != nil {
			return watchURL + m[1], nil
		}
		return "", fmt.Errorf("%w: no video id in %q", ErrInvalidURL, raw)
	}

	return parsed.String(), nil
}

// IsYouTube reports whether a normalised URL points at YouTube.
func IsYouTube(normalized string) bool {
	return strings.HasPrefix(normalized, watchURL)
}
