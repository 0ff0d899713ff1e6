package roll

import (
	"time"

	"github.com/bep/debounce"
	"github.com/google/uuid"
	"github.com/motifvae/motif"
	"github.com/motifvae/motif/config"
	"github.com/motifvae/motif/variation"
)

type (
	// Model is the state of one piano roll session. It is owned by the user
	// interface goroutine: pointer events, views and ProcessMsg must all be
	// called from it. Work that may block, model initialization and
	// generation, runs on separate goroutines that report back through the
	// broker.
	Model struct {
		grid          *NoteGrid
		interaction   Interaction
		width, height float64

		bpm        int
		bars       int
		resolution int
		strength   int // hundredths of the noise standard deviation
		candidates int
		keep       int

		playing        bool
		playingVariant bool
		metronome      bool
		playPosition   float64

		modelReady   bool
		initializing bool
		generating   bool
		pending      uuid.UUID
		// revision is bumped on every change of the notes or of their timing;
		// a generation result computed for an older revision is stale.
		revision  int
		variants  []variation.Variant
		variantID uuid.UUID

		alerts []Alert

		broker     *Broker
		engine     *variation.Engine
		reschedule func(func())
	}

	// generateResult is sent to the model when a generation request finishes.
	generateResult struct {
		ID       uuid.UUID
		Revision int
		Variants []variation.Variant
		Err      error
	}

	modelInitialized struct {
		Err error
	}

	// rescheduleMsg asks the model to send the current notes to a playing
	// player.
	rescheduleMsg struct{}
)

const rescheduleDelay = 150 * time.Millisecond

// NewModel creates a session with the settings of cfg. engine may be nil, in
// which case generation is never enabled.
func NewModel(broker *Broker, engine *variation.Engine, cfg config.Config) *Model {
	m := &Model{
		grid:       NewNoteGrid(motif.PitchRange{Min: cfg.PitchMin, Max: cfg.PitchMax}),
		bpm:        cfg.BPM,
		bars:       cfg.Bars,
		resolution: cfg.Resolution,
		strength:   int(cfg.Strength*100 + 0.5),
		candidates: cfg.Candidates,
		keep:       cfg.Keep,
		broker:     broker,
		engine:     engine,
		reschedule: debounce.New(rescheduleDelay),
	}
	if engine != nil {
		m.modelReady = engine.Ready()
	}
	return m
}

func (m *Model) Broker() *Broker { return m.broker }

// Grid returns the committed notes. The grid must only be read, all edits go
// through pointer events and actions.
func (m *Model) Grid() *NoteGrid { return m.grid }

func (m *Model) Interaction() *Interaction { return &m.interaction }

func (m *Model) Config() motif.GridConfig {
	return motif.GridConfig{Bars: m.bars, SubdivisionsPerBeat: m.resolution, Pitches: m.grid.Pitches()}
}

// Mapper maps the current surface onto the current grid. It is rebuilt on
// every call.
func (m *Model) Mapper() motif.Mapper {
	return motif.Mapper{Config: m.Config(), Width: m.width, Height: m.height}
}

// SetSurface tells the size of the drawing surface in pixels.
func (m *Model) SetSurface(width, height float64) {
	m.width, m.height = width, height
}

func (m *Model) Revision() int { return m.revision }

// Sigma returns the standard deviation of the latent noise.
func (m *Model) Sigma() float64 { return float64(m.strength) / 100 }

// Variants returns the winners of the last generation, best first, and the
// id of the request that produced them.
func (m *Model) Variants() ([]variation.Variant, uuid.UUID) { return m.variants, m.variantID }

func (m *Model) Generating() bool { return m.generating }
func (m *Model) ModelReady() bool { return m.modelReady }

// Pointer handles a pointer event on the drawing surface.
func (m *Model) Pointer(ev PointerEvent) {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	if m.interaction.Handle(ev, m.grid, m.Mapper()) {
		m.edited()
	}
}

// LoadNotes replaces the notes, e.g. with a melody read from a file. It
// returns the number of notes dropped because they overlapped.
func (m *Model) LoadNotes(notes []motif.Note) (rejected int) {
	m.interaction.Cancel()
	rejected = m.grid.Replace(notes)
	m.edited()
	return rejected
}

// ProcessMsg applies a message received from the broker.
func (m *Model) ProcessMsg(msg MsgToModel) {
	if msg.HasPlayerStatus {
		m.playPosition = msg.PlayerStatus.Position
		if msg.PlayerStatus.Finished && m.playingVariant {
			m.playing, m.playingVariant = false, false
		}
	}
	switch d := msg.Data.(type) {
	case generateResult:
		m.generateFinished(d)
	case modelInitialized:
		m.initializing = false
		m.modelReady = d.Err == nil
		if d.Err != nil {
			m.Alerts().AddNamed("ModelInit", d.Err.Error(), Error)
		} else {
			m.Alerts().AddNamed("ModelInit", "Model loaded", Info)
		}
	case rescheduleMsg:
		if m.playing && !m.playingVariant {
			m.sendSchedule(false)
		}
	case Alert:
		m.Alerts().AddAlert(d)
	}
}

// edited is called after every change of the notes or of their timing.
func (m *Model) edited() {
	m.revision++
	if m.playing && !m.playingVariant {
		m.reschedule(func() { TrySend(m.broker.ToModel, MsgToModel{Data: rescheduleMsg{}}) })
	}
}
