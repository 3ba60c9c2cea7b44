package media

import "strings"

type Codecs struct {
	Video string
	Audio string
}

// DefaultCodecs keeps the downloaded MP4 video as is and re-encodes audio
// to AAC, which every common container accepts.
var DefaultCodecs = Codecs{Video: "copy", Audio: "aac"}

var codecTable = map[string]Codecs{
	"webm": {Video: "libvpx-vp9", Audio: "libopus"},
}

// CodecsFor maps an output format name to the ffmpeg encoders used to
// produce it. Unknown formats use DefaultCodecs.
func CodecsFor(format string) Codecs {
	if c, ok := codecTable[strings.ToLower(strings.TrimSpace(format))]; ok {
		return c
	}
	return DefaultCodecs
}
