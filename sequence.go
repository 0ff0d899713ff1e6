package motif

import (
	"errors"
	"fmt"
	"math"
	"slices"
)

type (
	// Sequence is a continuous-time note sequence, the representation shared
	// with the generative model and the playback layer. All times are in
	// quarter notes; Tempos tell how fast the quarters go.
	//
	// A Sequence is quantized when StepsPerQuarter > 0; then every note also
	// carries its start and end as integer steps and TotalQuantizedSteps
	// gives the length of the sequence in steps.
	Sequence struct {
		TicksPerQuarter     int
		TotalTime           float64
		Tempos              []Tempo `yaml:",flow"`
		Notes               []SeqNote
		StepsPerQuarter     int `yaml:",omitempty"`
		TotalQuantizedSteps int `yaml:",omitempty"`
	}

	Tempo struct {
		Time float64
		QPM  float64
	}

	SeqNote struct {
		Pitch              int
		Velocity           int
		StartTime          float64
		EndTime            float64
		QuantizedStartStep int `yaml:",omitempty"`
		QuantizedEndStep   int `yaml:",omitempty"`
	}

	// ScheduledNote is a note of a sequence in wall clock time, ready to be
	// handed to a transport.
	ScheduledNote struct {
		Offset   float64 // seconds from the start of the sequence
		Pitch    int
		Duration float64 // seconds
	}
)

const (
	DefaultTicksPerQuarter = 220
	DefaultQPM             = 120
	DefaultVelocity        = 100
)

var (
	ErrInvalidStepsPerQuarter = errors.New("steps per quarter must be at least 1")
	ErrNotQuantized           = errors.New("sequence is not quantized")
	ErrNegativeTime           = errors.New("sequence has a note with negative time")
	ErrMultipleTempos         = errors.New("sequence has more than one tempo")
)

// Quantize snaps the note times of seq onto a grid of stepsPerQuarter steps
// per quarter note. A note whose end rounds onto its start is made one step
// long. The original sequence is not modified.
func Quantize(seq Sequence, stepsPerQuarter int) (Sequence, error) {
	if stepsPerQuarter < 1 {
		return Sequence{}, ErrInvalidStepsPerQuarter
	}
	for _, t := range seq.Tempos {
		if t.Time > 0 && t.QPM != seq.QPM() {
			return Sequence{}, ErrMultipleTempos
		}
	}
	ret := seq.Copy()
	ret.StepsPerQuarter = stepsPerQuarter
	spq := float64(stepsPerQuarter)
	totalSteps := int(math.Round(seq.TotalTime * spq))
	for i := range ret.Notes {
		n := &ret.Notes[i]
		if n.StartTime < 0 || n.EndTime < 0 {
			return Sequence{}, fmt.Errorf("note %d: %w", i, ErrNegativeTime)
		}
		n.QuantizedStartStep = int(math.Round(n.StartTime * spq))
		n.QuantizedEndStep = int(math.Round(n.EndTime * spq))
		if n.QuantizedEndStep <= n.QuantizedStartStep {
			n.QuantizedEndStep = n.QuantizedStartStep + 1
		}
		totalSteps = max(totalSteps, n.QuantizedEndStep)
	}
	ret.TotalQuantizedSteps = totalSteps
	return ret, nil
}

// Unquantize replaces the note times of a quantized sequence with the exact
// times of their quantized steps. The notes keep their step fields, so the
// result can still be mapped back onto the grid it was quantized to.
func Unquantize(seq Sequence) (Sequence, error) {
	if seq.StepsPerQuarter < 1 {
		return Sequence{}, ErrNotQuantized
	}
	ret := seq.Copy()
	spq := float64(seq.StepsPerQuarter)
	for i := range ret.Notes {
		n := &ret.Notes[i]
		n.StartTime = float64(n.QuantizedStartStep) / spq
		n.EndTime = float64(n.QuantizedEndStep) / spq
	}
	ret.TotalTime = float64(seq.TotalQuantizedSteps) / spq
	ret.StepsPerQuarter = 0
	ret.TotalQuantizedSteps = 0
	return ret, nil
}

func (s *Sequence) Copy() Sequence {
	ret := *s
	ret.Tempos = slices.Clone(s.Tempos)
	ret.Notes = slices.Clone(s.Notes)
	return ret
}

// QPM returns the tempo of the first tempo marker, or DefaultQPM if the
// sequence has none.
func (s *Sequence) QPM() float64 {
	if len(s.Tempos) == 0 || s.Tempos[0].QPM <= 0 {
		return DefaultQPM
	}
	return s.Tempos[0].QPM
}

// Seconds converts a time in quarter notes into seconds at the sequence
// tempo.
func (s *Sequence) Seconds(quarters float64) float64 {
	return quarters * 60 / s.QPM()
}

// Schedule lists the notes in wall clock time, ordered by their offsets.
func (s *Sequence) Schedule() []ScheduledNote {
	ret := make([]ScheduledNote, 0, len(s.Notes))
	for _, n := range s.Notes {
		ret = append(ret, ScheduledNote{
			Offset:   s.Seconds(n.StartTime),
			Pitch:    n.Pitch,
			Duration: s.Seconds(n.EndTime - n.StartTime),
		})
	}
	slices.SortStableFunc(ret, func(a, b ScheduledNote) int {
		switch {
		case a.Offset < b.Offset:
			return -1
		case a.Offset > b.Offset:
			return 1
		}
		return 0
	})
	return ret
}
