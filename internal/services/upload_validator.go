package services

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// MaxAudioSize is the upload cap in bytes.
const MaxAudioSize = 20 * 1024 * 1024

var allowedAudioExts = map[string]string{
	".mp3": "audio/mpeg",
	".wav": "audio/wav",
}

// AudioFile is a candidate upload. Size is the size reported by the client;
// the content is re-checked against MaxAudioSize when it is read.
type AudioFile struct {
	Filename string
	Size     int64
	Content  io.Reader
}

// ValidateAudio rejects unsupported extensions and oversized payloads
// without touching any storage.
func ValidateAudio(f AudioFile) error {
	ext := strings.ToLower(filepath.Ext(f.Filename))
	if _, ok := allowedAudioExts[ext]; !ok {
		return fieldError("audio_file", ErrUnsupportedFormat, "Поддерживаются только .mp3 и .wav файлы.")
	}
	if f.Size > MaxAudioSize {
		return fieldError("audio_file", ErrFileTooLarge, "Файл должен быть не больше 20 МБ.")
	}
	if f.Content == nil {
		return fieldError("audio_file", ErrInvalidInput, "Файл не передан.")
	}
	return nil
}

// readAudio loads a validated payload, enforcing the cap on the bytes
// actually received.
func readAudio(f AudioFile) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(f.Content, MaxAudioSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read audio: %w", err)
	}
	if len(data) > MaxAudioSize {
		return nil, fieldError("audio_file", ErrFileTooLarge, "Файл должен быть не больше 20 МБ.")
	}
	if len(data) == 0 {
		return nil, fieldError("audio_file", ErrInvalidInput, "Файл пустой.")
	}
	return data, nil
}
