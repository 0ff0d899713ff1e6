package motif

type (
	// Note is a single editable note on the piano roll. Step and Duration are
	// given in grid subdivisions of the current resolution, so the same note
	// data appears to move when the resolution changes.
	Note struct {
		Step     int
		Duration int
		Pitch    int
	}

	// PitchRange is an inclusive range of MIDI pitches shown as rows of the
	// grid.
	PitchRange struct {
		Min, Max int
	}
)

// DefaultPitchRange spans two octaves from C3 to C5.
var DefaultPitchRange = PitchRange{Min: 48, Max: 72}

// End returns the first step after the note.
func (n Note) End() int { return n.Step + n.Duration }

// Overlaps reports whether the half-open intervals [Step, End) of two notes on
// the same pitch intersect. Notes on different pitches never overlap.
func (n Note) Overlaps(o Note) bool {
	return n.Pitch == o.Pitch && n.Step < o.End() && n.End() > o.Step
}

func (r PitchRange) Rows() int { return r.Max - r.Min + 1 }

func (r PitchRange) Clamp(pitch int) int { return max(min(pitch, r.Max), r.Min) }

func (r PitchRange) Contains(pitch int) bool { return pitch >= r.Min && pitch <= r.Max }

var pitchClassNames = [12]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

// PitchName returns the pitch class name of a MIDI pitch, e.g. "C#" for 61.
func PitchName(pitch int) string {
	return pitchClassNames[(pitch%12+12)%12]
}

// IsBlackKey reports whether the pitch is played on a black piano key; used
// by painters to shade the rows.
func IsBlackKey(pitch int) bool {
	switch (pitch%12 + 12) % 12 {
	case 1, 3, 6, 8, 10:
		return true
	}
	return false
}
