package audio

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// wavFile builds a PCM WAV header followed by dataSize zero bytes.
func wavFile(byteRate uint32, dataSize uint32) []byte {
	var b bytes.Buffer
	b.WriteString("RIFF")
	binary.Write(&b, binary.LittleEndian, uint32(36+dataSize))
	b.WriteString("WAVEfmt ")
	binary.Write(&b, binary.LittleEndian, uint32(16))
	binary.Write(&b, binary.LittleEndian, uint16(1))  // PCM
	binary.Write(&b, binary.LittleEndian, uint16(1))  // mono
	binary.Write(&b, binary.LittleEndian, byteRate/2) // sample rate at 16 bit
	binary.Write(&b, binary.LittleEndian, byteRate)
	binary.Write(&b, binary.LittleEndian, uint16(2))
	binary.Write(&b, binary.LittleEndian, uint16(16))
	b.WriteString("data")
	binary.Write(&b, binary.LittleEndian, dataSize)
	b.Write(make([]byte, dataSize))
	return b.Bytes()
}

// id3Frame encodes an ID3v2.3 text frame.
func id3Frame(id, text string) []byte {
	var b bytes.Buffer
	b.WriteString(id)
	binary.Write(&b, binary.BigEndian, uint32(len(text)+1))
	b.Write([]byte{0, 0, 0})
	b.WriteString(text)
	return b.Bytes()
}

func mp3File(frames ...[]byte) []byte {
	body := bytes.Join(frames, nil)
	size := len(body)
	var b bytes.Buffer
	b.WriteString("ID3")
	b.Write([]byte{3, 0, 0})
	b.Write([]byte{byte(size >> 21 & 0x7f), byte(size >> 14 & 0x7f), byte(size >> 7 & 0x7f), byte(size & 0x7f)})
	b.Write(body)
	b.Write([]byte{0xff, 0xfb, 0x90, 0x00})
	b.Write(make([]byte, 64))
	return b.Bytes()
}

func TestProbeWAV(t *testing.T) {
	info := Probe("track.WAV", wavFile(8000, 16000))
	assert.Equal(t, "audio/wav", info.MimeType)
	assert.Equal(t, 2, info.Duration)
	assert.Nil(t, info.Year)
}

func TestProbeMP3Tags(t *testing.T) {
	data := mp3File(
		id3Frame("TIT2", "Прости"),
		id3Frame("TPE1", "Земфира"),
		id3Frame("TYER", "2000"),
	)

	info := Probe("track.mp3", data)
	assert.Equal(t, "audio/mpeg", info.MimeType)
	require.NotNil(t, info.Year)
	assert.Equal(t, 2000, *info.Year)
	assert.Equal(t, 0, info.Duration)
}

func TestProbeUnknownContentFallsBackToExtension(t *testing.T) {
	info := Probe("noise.mp3", []byte("definitely not audio"))
	assert.Equal(t, "audio/mpeg", info.MimeType)
	assert.Nil(t, info.Year)
}

func TestWavDurationMalformed(t *testing.T) {
	assert.Equal(t, 0, wavDuration(nil))
	assert.Equal(t, 0, wavDuration([]byte("RIFF\x00\x00\x00\x00WAVE")))
	assert.Equal(t, 0, wavDuration([]byte("RIFX\x00\x00\x00\x00WAVEfmt ")))
}

func TestWavDurationHugeDataChunk(t *testing.T) {
	data := wavFile(1000, 0)
	binary.LittleEndian.PutUint32(data[len(data)-4:], 0xFFFFFFFF)

	assert.Equal(t, 4294967, wavDuration(data))
}

func TestMimeTypeForExt(t *testing.T) {
	assert.Equal(t, "audio/mpeg", MimeTypeForExt(".MP3"))
	assert.Equal(t, "application/octet-stream", MimeTypeForExt(".flac"))
}
