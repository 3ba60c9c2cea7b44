package media

import (
	"path/filepath"
	"strings"
)

// Paths are the files involved in producing a single output: the two
// intermediate streams and the muxed result.
type Paths struct {
	Video  string
	Audio  string
	Output string
}

// PathsFor derives intermediate file names from the requested output path
// by swapping its extension for a suffix.
func PathsFor(outputPath string) Paths {
	base := outputPath
	ext := filepath.Ext(outputPath)
	// "dir/.mp4" has no stem, the whole name is the base.
	if ext != "" && ext != filepath.Base(outputPath) {
		base = strings.TrimSuffix(outputPath, ext)
	}

	return Paths{
		Video:  base + "_video.mp4",
		Audio:  base + "_audio.mp3",
		Output: outputPath,
	}
}

// Intermediates lists the files that must not outlive a download.
func (p Paths) Intermediates() []string {
	return []string{p.Video, p.Audio}
}
