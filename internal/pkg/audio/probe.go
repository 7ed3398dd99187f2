// Package audio extracts metadata from uploaded audio payloads without
// decoding them.
package audio

import (
	"bytes"
	"encoding/binary"
	"path/filepath"
	"strings"

	"github.com/dhowden/tag"
	"github.com/gabriel-vasile/mimetype"
)

// Info is what can be learned from a payload. Zero values mean unknown.
type Info struct {
	MimeType string
	Year     *int
	Duration int // seconds
}

var extMimeTypes = map[string]string{
	".mp3": "audio/mpeg",
	".wav": "audio/wav",
}

// Probe sniffs the content type, reads the embedded year tag and, for WAV, the
// duration from the RIFF header. Every step is best-effort.
func Probe(filename string, data []byte) Info {
	info := Info{MimeType: MimeTypeForExt(filepath.Ext(filename))}

	mt := mimetype.Detect(data)
	if strings.HasPrefix(mt.String(), "audio/") {
		info.MimeType = mt.String()
	}

	if m, err := tag.ReadFrom(bytes.NewReader(data)); err == nil {
		if y := m.Year(); y > 0 {
			info.Year = &y
		}
	}

	if mt.Is("audio/wav") {
		info.Duration = wavDuration(data)
	}
	return info
}

// MimeTypeForExt maps an accepted extension to its content type.
func MimeTypeForExt(ext string) string {
	if mt, ok := extMimeTypes[strings.ToLower(ext)]; ok {
		return mt
	}
	return "application/octet-stream"
}

// wavDuration walks the RIFF chunks for "fmt " and "data" and returns the
// rounded playback length, or 0 if the header is malformed.
func wavDuration(data []byte) int {
	if len(data) < 12 || string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		return 0
	}

	var byteRate, dataSize uint32
	for off := 12; off+8 <= len(data); {
		id := string(data[off : off+4])
		size := binary.LittleEndian.Uint32(data[off+4 : off+8])
		body := off + 8

		switch id {
		case "fmt ":
			if body+12 <= len(data) {
				byteRate = binary.LittleEndian.Uint32(data[body+8 : body+12])
			}
		case "data":
			dataSize = size
		}
		if byteRate > 0 && dataSize > 0 {
			break
		}

		// chunks are word aligned
		next := body + int(size) + int(size&1)
		if next <= off {
			return 0
		}
		off = next
	}

	if byteRate == 0 {
		return 0
	}
	return int((uint64(dataSize) + uint64(byteRate)/2) / uint64(byteRate))
}
