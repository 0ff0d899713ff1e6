package oto

import (
	"encoding/binary"
	"math"

	"github.com/motifvae/motif"
)

// floatBufferToBytes encodes a stereo buffer as interleaved 32-bit
// little-endian floats into dst, which must hold 8 bytes per frame. Samples
// are clipped to [-1, 1].
func floatBufferToBytes(buffer motif.AudioBuffer, dst []byte) {
	for i, frame := range buffer {
		for c, v := range frame {
			v = max(min(v, 1), -1)
			binary.LittleEndian.PutUint32(dst[i*8+c*4:], math.Float32bits(v))
		}
	}
}
