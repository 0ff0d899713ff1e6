// Package synth is a small polyphonic synthesizer for previewing melodies:
// triangle oscillators with a linear attack and release.
package synth

import (
	"math"

	"github.com/motifvae/motif"
	"github.com/viterin/vek/vek32"
)

type (
	Synth struct {
		// Gain scales the mix of all voices.
		Gain float32

		voices [MaxVoices]voice
		age    uint64
		tmp    []float32
		mix    []float32
	}

	voice struct {
		id       int
		active   bool
		released bool
		phase    float32
		step     float32 // phase increment per sample
		env      float32
		velocity float32
		age      uint64
	}
)

const MaxVoices = 32

const (
	attackPerSample  = 1 / (0.005 * motif.SampleRate)
	releasePerSample = 1 / (0.08 * motif.SampleRate)
)

func New() *Synth {
	return &Synth{Gain: 0.25}
}

// Frequency returns the frequency of a MIDI pitch in Hz.
func Frequency(pitch int) float64 {
	return 440 * math.Pow(2, float64(pitch-69)/12)
}

// Trigger starts a note on the voice. A voice already playing is retriggered;
// when all voices are busy, the oldest one is stolen.
func (s *Synth) Trigger(id int, pitch int, velocity float32) {
	v := s.find(id)
	if v == nil {
		v = s.free()
	}
	s.age++
	*v = voice{
		id:       id,
		active:   true,
		step:     float32(Frequency(pitch) / motif.SampleRate),
		velocity: velocity,
		age:      s.age,
	}
}

func (s *Synth) Release(id int) {
	if v := s.find(id); v != nil {
		v.released = true
	}
}

func (s *Synth) ReleaseAll() {
	for i := range s.voices {
		s.voices[i].released = true
	}
}

// Playing returns the number of voices still sounding.
func (s *Synth) Playing() int {
	ret := 0
	for _, v := range s.voices {
		if v.active {
			ret++
		}
	}
	return ret
}

func (s *Synth) Render(buffer motif.AudioBuffer) {
	n := len(buffer)
	if cap(s.mix) < n {
		s.mix = make([]float32, n)
		s.tmp = make([]float32, n)
	}
	s.mix = vek32.Zeros_Into(s.mix, n)
	s.tmp = s.tmp[:n]
	for i := range s.voices {
		if v := &s.voices[i]; v.active {
			v.render(s.tmp)
			vek32.Add_Inplace(s.mix, s.tmp)
		}
	}
	vek32.MulNumber_Inplace(s.mix, s.Gain)
	for i, x := range s.mix {
		buffer[i] = [2]float32{x, x}
	}
}

func (s *Synth) find(id int) *voice {
	for i := range s.voices {
		if v := &s.voices[i]; v.active && v.id == id {
			return v
		}
	}
	return nil
}

func (s *Synth) free() *voice {
	oldest := &s.voices[0]
	for i := range s.voices {
		v := &s.voices[i]
		if !v.active {
			return v
		}
		if v.age < oldest.age {
			oldest = v
		}
	}
	return oldest
}

func (v *voice) render(out []float32) {
	for i := range out {
		if v.released {
			v.env -= releasePerSample
			if v.env <= 0 {
				v.env = 0
				v.active = false
				clear(out[i:])
				return
			}
		} else if v.env < 1 {
			v.env = min(v.env+attackPerSample, 1)
		}
		tri := 4*float32(math.Abs(float64(v.phase-0.5))) - 1
		out[i] = tri * v.env * v.velocity
		v.phase += v.step
		if v.phase >= 1 {
			v.phase -= 1
		}
	}
}
