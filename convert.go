package motif

import "fmt"

// ToSequence converts grid notes into a model compatible sequence. A step is
// 1/resolution quarter notes long and the sequence always spans the whole
// grid, bars*BeatsPerBar quarters. The result has been through a
// quantize-unquantize round trip at the given resolution, so it lies exactly
// on the grid the generative model expects.
func ToSequence(notes []Note, resolution int, qpm float64, bars int) (Sequence, error) {
	if resolution < 1 {
		return Sequence{}, ErrInvalidStepsPerQuarter
	}
	r := float64(resolution)
	seq := Sequence{
		TicksPerQuarter: DefaultTicksPerQuarter,
		TotalTime:       float64(bars * BeatsPerBar),
		Tempos:          []Tempo{{Time: 0, QPM: qpm}},
		Notes:           make([]SeqNote, 0, len(notes)),
	}
	for _, n := range notes {
		seq.Notes = append(seq.Notes, SeqNote{
			Pitch:     n.Pitch,
			Velocity:  DefaultVelocity,
			StartTime: float64(n.Step) / r,
			EndTime:   float64(n.End()) / r,
		})
	}
	q, err := Quantize(seq, resolution)
	if err != nil {
		return Sequence{}, fmt.Errorf("ToSequence: %w", err)
	}
	ret, err := Unquantize(q)
	if err != nil {
		return Sequence{}, fmt.Errorf("ToSequence: %w", err)
	}
	return ret, nil
}

// FromDecodedSequence converts a quantized sequence, as returned by the
// generative model, back into grid notes. The quantized steps are read as
// is, so they are interpreted at the current grid resolution.
func FromDecodedSequence(seq Sequence) []Note {
	ret := make([]Note, 0, len(seq.Notes))
	for _, n := range seq.Notes {
		ret = append(ret, Note{
			Step:     n.QuantizedStartStep,
			Duration: n.QuantizedEndStep - n.QuantizedStartStep,
			Pitch:    n.Pitch,
		})
	}
	return ret
}
