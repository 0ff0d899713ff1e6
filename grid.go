package motif

import (
	"errors"
	"math"
)

// BeatsPerBar is fixed; the grid only supports 4/4.
const BeatsPerBar = 4

// MaxHandleWidth is the widest resize handle, in pixels.
const MaxHandleWidth = 10

type (
	// GridConfig describes the zoom of the piano roll. It is derived from the
	// user controls and never stored inside notes.
	GridConfig struct {
		Bars                int
		SubdivisionsPerBeat int
		Pitches             PitchRange
	}

	// Mapper converts between pixel coordinates of a surface and grid cells.
	// It holds no state besides its fields: build a new one every time the
	// surface or the configuration might have changed.
	Mapper struct {
		Config        GridConfig
		Width, Height float64
	}

	// Rect is an axis aligned rectangle in pixel coordinates.
	Rect struct {
		X, Y, W, H float64
	}

	// Handle tells which resize handle of a note, if any, is under the
	// pointer.
	Handle int
)

const (
	HandleNone Handle = iota
	HandleLeft
	HandleRight
)

var ErrInvalidGrid = errors.New("bars, resolution and pitch range must be positive")

func (c GridConfig) Columns() int { return c.Bars * BeatsPerBar * c.SubdivisionsPerBeat }
func (c GridConfig) Rows() int    { return c.Pitches.Rows() }

// Holds reports whether the note starts on a column of the grid and its
// pitch is in the pitch range.
func (c GridConfig) Holds(n Note) bool {
	return n.Step >= 0 && n.Step < c.Columns() && c.Pitches.Contains(n.Pitch)
}

// Quarters returns the length of the grid in quarter notes.
func (c GridConfig) Quarters() int { return c.Bars * BeatsPerBar }

func (c GridConfig) Validate() error {
	if c.Bars < 1 || c.SubdivisionsPerBeat < 1 || c.Pitches.Rows() < 1 {
		return ErrInvalidGrid
	}
	return nil
}

func (m Mapper) CellWidth() float64  { return m.Width / float64(m.Config.Columns()) }
func (m Mapper) CellHeight() float64 { return m.Height / float64(m.Config.Rows()) }

// StepAt returns the column under x.
func (m Mapper) StepAt(x float64) int {
	return int(math.Floor(x / m.Width * float64(m.Config.Columns())))
}

// NearestStep returns the column boundary nearest to x.
func (m Mapper) NearestStep(x float64) int {
	return int(math.Round(x / m.CellWidth()))
}

// PitchAt returns the pitch of the row under y. The result is not clamped:
// y at or beyond the bottom edge maps below Pitches.Min.
func (m Mapper) PitchAt(y float64) int {
	return m.Config.Pitches.Max - int(math.Floor(y/m.Height*float64(m.Config.Rows())))
}

func (m Mapper) NoteRect(n Note) Rect {
	cw, ch := m.CellWidth(), m.CellHeight()
	return Rect{
		X: float64(n.Step) * cw,
		Y: float64(m.Config.Pitches.Max-n.Pitch) * ch,
		W: float64(n.Duration) * cw,
		H: ch,
	}
}

func (m Mapper) HandleWidth() float64 {
	return math.Min(MaxHandleWidth, m.CellWidth()/2)
}

// Handle returns the resize handle of n under x. The left handle wins when
// the note is so short that the handles overlap.
func (m Mapper) Handle(x float64, n Note) Handle {
	r := m.NoteRect(n)
	hw := m.HandleWidth()
	if x >= r.X && x < r.X+hw {
		return HandleLeft
	}
	if x > r.X+r.W-hw && x <= r.X+r.W {
		return HandleRight
	}
	return HandleNone
}

// Contains reports whether the point lies inside the rectangle, edges
// included.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x <= r.X+r.W && y >= r.Y && y <= r.Y+r.H
}

// Canon returns the same rectangle with non-negative width and height.
func (r Rect) Canon() Rect {
	if r.W < 0 {
		r.X, r.W = r.X+r.W, -r.W
	}
	if r.H < 0 {
		r.Y, r.H = r.Y+r.H, -r.H
	}
	return r
}
