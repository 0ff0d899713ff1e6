package roll

import "github.com/motifvae/motif"

type (
	// Interaction turns pointer events into edits of a NoteGrid. It holds at
	// most one draft: the anchor cell of a note being drawn, or the note being
	// moved or resized. All coordinates are converted with the Mapper given
	// with each event, so the grid configuration may change in the middle of
	// a gesture.
	Interaction struct {
		state        InteractionState
		anchorStep   int
		anchorPitch  int
		target       *motif.Note
		handle       motif.Handle
		lastX, lastY float64

		hover  *motif.Note
		cursor Cursor
	}

	InteractionState int

	PointerEvent struct {
		Kind PointerKind
		X, Y float64
		// DeleteModifier is true when the key that turns a press on a note
		// into a delete is held.
		DeleteModifier bool
	}

	PointerKind int

	// Cursor is the pointer shape a painter should show.
	Cursor int
)

const (
	Idle InteractionState = iota
	Creating
	Moving
	Resizing
	Hovering
)

const (
	PointerDown PointerKind = iota
	PointerMove
	PointerUp
	PointerLeave
)

const (
	CursorDefault Cursor = iota
	CursorCrosshair
	CursorMove
	CursorResize
)

func (s InteractionState) String() string {
	switch s {
	case Idle:
		return "Idle"
	case Creating:
		return "Creating"
	case Moving:
		return "Moving"
	case Resizing:
		return "Resizing"
	case Hovering:
		return "Hovering"
	}
	return "Unknown"
}

func (i *Interaction) State() InteractionState { return i.state }
func (i *Interaction) Cursor() Cursor          { return i.cursor }

// Active reports whether a gesture is in progress.
func (i *Interaction) Active() bool {
	return i.state == Creating || i.state == Moving || i.state == Resizing
}

// Hovered returns the note under the pointer while no gesture is active.
func (i *Interaction) Hovered() (motif.Note, bool) {
	if i.hover == nil {
		return motif.Note{}, false
	}
	return *i.hover, true
}

// Preview returns the rectangle of the note being drawn, from the anchor
// cell to the pointer.
func (i *Interaction) Preview(m motif.Mapper) (motif.Rect, bool) {
	if i.state != Creating {
		return motif.Rect{}, false
	}
	cw, ch := m.CellWidth(), m.CellHeight()
	x := float64(i.anchorStep) * cw
	r := motif.Rect{
		X: x,
		Y: float64(m.Config.Pitches.Max-i.anchorPitch) * ch,
		W: i.lastX - x,
		H: ch,
	}
	return r.Canon(), true
}

// Cancel drops the draft without committing it; used when the grid is
// replaced under an active gesture.
func (i *Interaction) Cancel() {
	*i = Interaction{}
}

// Handle processes one pointer event and reports whether the grid was
// changed.
func (i *Interaction) Handle(ev PointerEvent, g *NoteGrid, m motif.Mapper) (changed bool) {
	switch ev.Kind {
	case PointerDown:
		if i.Active() {
			changed = i.up(i.lastX, g, m)
		}
		i.lastX, i.lastY = ev.X, ev.Y
		return i.down(ev, g, m) || changed
	case PointerMove:
		i.lastX, i.lastY = ev.X, ev.Y
		return i.move(ev, g, m)
	case PointerUp:
		if !i.Active() {
			i.lastX, i.lastY = ev.X, ev.Y
			i.updateHints(ev.X, ev.Y, g, m)
			return false
		}
		i.lastX, i.lastY = ev.X, ev.Y
		return i.up(ev.X, g, m)
	case PointerLeave:
		if i.Active() {
			changed = i.up(i.lastX, g, m)
		}
		i.state, i.hover, i.cursor = Idle, nil, CursorDefault
		return changed
	}
	return false
}

func (i *Interaction) down(ev PointerEvent, g *NoteGrid, m motif.Mapper) bool {
	i.hover = nil
	hit := g.FindAt(ev.X, ev.Y, m)
	switch {
	case hit != nil && ev.DeleteModifier:
		g.Remove(hit)
		i.state, i.cursor = Idle, CursorCrosshair
		return true
	case hit != nil:
		i.target = hit
		if i.handle = m.Handle(ev.X, *hit); i.handle != motif.HandleNone {
			i.state, i.cursor = Resizing, CursorResize
		} else {
			i.state, i.cursor = Moving, CursorMove
		}
	default:
		i.state, i.cursor = Creating, CursorCrosshair
		i.anchorStep, i.anchorPitch = m.StepAt(ev.X), m.PitchAt(ev.Y)
	}
	return false
}

func (i *Interaction) move(ev PointerEvent, g *NoteGrid, m motif.Mapper) bool {
	switch i.state {
	case Moving:
		before := *i.target
		pitch := m.Config.Pitches.Clamp(m.PitchAt(ev.Y))
		return g.TryMove(i.target, m.NearestStep(ev.X), pitch) && before != *i.target
	case Resizing:
		before := *i.target
		if i.handle == motif.HandleRight {
			g.ResizeFromRight(i.target, m.NearestStep(ev.X))
		} else {
			g.ResizeFromLeft(i.target, m.NearestStep(ev.X))
		}
		return before != *i.target
	case Creating:
		return false
	}
	i.updateHints(ev.X, ev.Y, g, m)
	return false
}

// up ends the active gesture with the pointer at x.
func (i *Interaction) up(x float64, g *NoteGrid, m motif.Mapper) (changed bool) {
	if i.state == Creating {
		step := m.NearestStep(x)
		start, end := min(i.anchorStep, step), max(i.anchorStep, step)
		_, changed = g.TryCreate(start, max(1, end-start), i.anchorPitch)
	}
	i.state, i.target, i.handle = Idle, nil, motif.HandleNone
	return changed
}

func (i *Interaction) updateHints(x, y float64, g *NoteGrid, m motif.Mapper) {
	i.state = Hovering
	i.hover = g.FindAt(x, y, m)
	switch {
	case i.hover == nil:
		i.cursor = CursorCrosshair
	case m.Handle(x, *i.hover) != motif.HandleNone:
		i.cursor = CursorResize
	default:
		i.cursor = CursorMove
	}
}
