package motif

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
)

type (
	chunkHeader struct {
		ID   [4]byte
		Size uint32
	}

	// fmtChunk is the format chunk of a stereo wave file, see
	// http://www-mmsp.ece.mcgill.ca/Documents/AudioFormats/WAVE/WAVE.html
	fmtChunk struct {
		Header        chunkHeader
		Format        uint16
		Channels      uint16
		SampleRate    uint32
		ByteRate      uint32
		BlockAlign    uint16
		BitsPerSample uint16
	}
)

const (
	wavePCM   = 1
	waveFloat = 3
	channels  = 2
)

// Wav converts the buffer into a .wav file. pcm16 selects 16-bit signed
// integer samples; otherwise the samples are written as 32-bit floats.
func (buffer AudioBuffer) Wav(pcm16 bool) ([]byte, error) {
	bytesPerSample, format := 4, uint16(waveFloat)
	if pcm16 {
		bytesPerSample, format = 2, wavePCM
	}
	dataSize := uint32(len(buffer) * channels * bytesPerSample)
	f := fmtChunk{
		Header:        chunkHeader{ID: [4]byte{'f', 'm', 't', ' '}, Size: 16},
		Format:        format,
		Channels:      channels,
		SampleRate:    SampleRate,
		ByteRate:      uint32(SampleRate * channels * bytesPerSample),
		BlockAlign:    uint16(channels * bytesPerSample),
		BitsPerSample: uint16(8 * bytesPerSample),
	}
	var extra []any
	if !pcm16 {
		// non-PCM formats need the extension size and a fact chunk
		f.Header.Size = 18
		extra = []any{uint16(0), chunkHeader{ID: [4]byte{'f', 'a', 'c', 't'}, Size: 4}, uint32(len(buffer))}
	}
	riffSize := 4 + 8 + f.Header.Size + 8 + dataSize
	if !pcm16 {
		riffSize += 12
	}
	buf := new(bytes.Buffer)
	fields := append([]any{chunkHeader{ID: [4]byte{'R', 'I', 'F', 'F'}, Size: riffSize}, [4]byte{'W', 'A', 'V', 'E'}, f}, extra...)
	fields = append(fields, chunkHeader{ID: [4]byte{'d', 'a', 't', 'a'}, Size: dataSize})
	for _, v := range fields {
		if err := binary.Write(buf, binary.LittleEndian, v); err != nil {
			return nil, fmt.Errorf("Wav failed: %w", err)
		}
	}
	if err := buffer.writeSamples(pcm16, buf); err != nil {
		return nil, fmt.Errorf("Wav failed: %w", err)
	}
	return buf.Bytes(), nil
}

// Raw converts the buffer into interleaved little-endian samples without any
// header.
func (buffer AudioBuffer) Raw(pcm16 bool) ([]byte, error) {
	buf := new(bytes.Buffer)
	if err := buffer.writeSamples(pcm16, buf); err != nil {
		return nil, fmt.Errorf("Raw failed: %w", err)
	}
	return buf.Bytes(), nil
}

func (buffer AudioBuffer) writeSamples(pcm16 bool, buf *bytes.Buffer) error {
	if !pcm16 {
		return binary.Write(buf, binary.LittleEndian, buffer)
	}
	ints := make([][2]int16, len(buffer))
	for i, frame := range buffer {
		for c, v := range frame {
			ints[i][c] = int16(max(min(v*math.MaxInt16, math.MaxInt16), math.MinInt16))
		}
	}
	return binary.Write(buf, binary.LittleEndian, ints)
}
