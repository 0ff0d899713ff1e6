package roll

import (
	"errors"
	"fmt"
	"iter"
	"slices"

	"github.com/motifvae/motif"
	"gopkg.in/yaml.v3"
)

type (
	// NoteGrid is the set of committed notes. Every mutation it accepts keeps
	// the set free of overlapping notes on the same pitch; rejected mutations
	// leave the set untouched and are reported with ok == false only.
	//
	// Notes are handed out as pointers so that a gesture can keep referring to
	// the same note while it is being moved or resized. The pointers stay
	// valid until the note is removed.
	NoteGrid struct {
		pitches motif.PitchRange
		notes   []*motif.Note
	}

	// melodyFile is the YAML form of a note set. Each note is a flow style
	// row [step, duration, pitch].
	melodyFile struct {
		Notes [][]int `yaml:",flow"`
	}
)

var ErrInvalidMelody = errors.New("invalid melody")

func NewNoteGrid(pitches motif.PitchRange) *NoteGrid {
	return &NoteGrid{pitches: pitches}
}

func (g *NoteGrid) Pitches() motif.PitchRange { return g.pitches }
func (g *NoteGrid) Len() int                  { return len(g.notes) }

// All iterates over the notes in creation order.
func (g *NoteGrid) All() iter.Seq[motif.Note] {
	return func(yield func(motif.Note) bool) {
		for _, n := range g.notes {
			if !yield(*n) {
				return
			}
		}
	}
}

// Snapshot returns a copy of the notes in creation order.
func (g *NoteGrid) Snapshot() []motif.Note {
	return slices.Collect(g.All())
}

// TryCreate adds a note unless it would overlap a note on the same pitch.
// Duration is floored at 1, the step at 0 and the pitch is clamped into the
// pitch range before the test.
func (g *NoteGrid) TryCreate(step, duration, pitch int) (*motif.Note, bool) {
	n := &motif.Note{Step: max(step, 0), Duration: max(duration, 1), Pitch: g.pitches.Clamp(pitch)}
	if g.overlaps(*n, nil) {
		return nil, false
	}
	g.notes = append(g.notes, n)
	return n, true
}

// TryMove moves the note to a new step and pitch, unless it would then
// overlap another note. The pitch is clamped into the pitch range first.
func (g *NoteGrid) TryMove(n *motif.Note, step, pitch int) bool {
	c := motif.Note{Step: max(step, 0), Duration: n.Duration, Pitch: g.pitches.Clamp(pitch)}
	if g.overlaps(c, n) {
		return false
	}
	*n = c
	return true
}

// ResizeFromRight moves the end of the note to step. The note is always at
// least one step long. Neighbors are not checked.
func (g *NoteGrid) ResizeFromRight(n *motif.Note, step int) {
	n.Duration = max(1, step-n.Step)
}

// ResizeFromLeft moves the start of the note to step, keeping its end
// fixed. The start cannot pass the end, so the note keeps at least one step.
// Neighbors are not checked.
func (g *NoteGrid) ResizeFromLeft(n *motif.Note, step int) {
	end := n.End()
	step = max(min(step, end-1), 0)
	if end-step <= 0 {
		return
	}
	n.Step, n.Duration = step, end-step
}

// Remove removes the note; removing a note not in the grid does nothing.
func (g *NoteGrid) Remove(n *motif.Note) {
	g.notes = slices.DeleteFunc(g.notes, func(m *motif.Note) bool { return m == n })
}

func (g *NoteGrid) Reset() {
	g.notes = nil
}

// FindAt returns the note under the point, or nil. When several notes
// contain the point, the most recently created wins.
func (g *NoteGrid) FindAt(x, y float64, m motif.Mapper) *motif.Note {
	for i := len(g.notes) - 1; i >= 0; i-- {
		if m.NoteRect(*g.notes[i]).Contains(x, y) {
			return g.notes[i]
		}
	}
	return nil
}

// Replace clears the grid and creates the notes one by one, in order.
// Notes that would overlap an earlier note are skipped; rejected tells how
// many.
func (g *NoteGrid) Replace(notes []motif.Note) (rejected int) {
	g.Reset()
	for _, n := range notes {
		if _, ok := g.TryCreate(n.Step, n.Duration, n.Pitch); !ok {
			rejected++
		}
	}
	return rejected
}

func (g *NoteGrid) Marshal() ([]byte, error) {
	var f melodyFile
	for n := range g.All() {
		f.Notes = append(f.Notes, []int{n.Step, n.Duration, n.Pitch})
	}
	return yaml.Marshal(f)
}

// Unmarshal replaces the notes with the ones in data. Overlapping notes are
// dropped like in Replace.
func (g *NoteGrid) Unmarshal(data []byte) (rejected int, err error) {
	var f melodyFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return 0, fmt.Errorf("%w: %w", ErrInvalidMelody, err)
	}
	notes := make([]motif.Note, 0, len(f.Notes))
	for i, row := range f.Notes {
		if len(row) != 3 {
			return 0, fmt.Errorf("%w: note %d: want [step, duration, pitch], got %v", ErrInvalidMelody, i, row)
		}
		notes = append(notes, motif.Note{Step: row[0], Duration: row[1], Pitch: row[2]})
	}
	return g.Replace(notes), nil
}

func (g *NoteGrid) overlaps(c motif.Note, except *motif.Note) bool {
	for _, n := range g.notes {
		if n != except && c.Overlaps(*n) {
			return true
		}
	}
	return false
}
