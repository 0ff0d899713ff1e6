package roll

import "github.com/motifvae/motif"

type (
	Play Model

	playToggle      Play
	playSkipToStart Play
	playVariant     struct {
		*Play
		index int
	}

	// PlayMsg starts or updates the playback. With LoopQuarters > 0 the
	// window [0, LoopQuarters) is looped, otherwise the player stops after
	// the last note. Restart rewinds to the start; otherwise the player
	// continues from its current position.
	PlayMsg struct {
		Schedule     []motif.ScheduledNote
		QPM          float64
		LoopQuarters float64
		Restart      bool
	}

	// PauseMsg stops the playback, keeping the position.
	PauseMsg struct{}

	// StopMsg stops the playback and rewinds to the start.
	StopMsg struct{}

	MetronomeMsg struct {
		On bool
	}
)

func (m *Model) Play() *Play { return (*Play)(m) }

// Position returns the position of the playhead in quarter notes.
func (m *Play) Position() float64 { return m.playPosition }

func (m *Play) IsPlaying() bool { return m.playing }

// Toggle starts the looped playback of the notes, or pauses it.
func (m *Play) Toggle() Action { return MakeAction((*playToggle)(m)) }

func (m *playToggle) Do() {
	if m.playing {
		m.playing = false
		TrySend(m.broker.ToPlayer, any(PauseMsg{}))
		return
	}
	if m.grid.Len() == 0 {
		(*Model)(m).Alerts().AddNamed("EmptyInput", "Draw some notes first", Warning)
		return
	}
	m.playing = true
	(*Model)(m).sendSchedule(false)
}

// SkipToStart stops the playback and rewinds the playhead.
func (m *Play) SkipToStart() Action { return MakeAction((*playSkipToStart)(m)) }

func (m *playSkipToStart) Do() {
	m.playing, m.playingVariant = false, false
	m.playPosition = 0
	TrySend(m.broker.ToPlayer, any(StopMsg{}))
}

// Variant plays the i:th variant once from the start.
func (m *Play) Variant(i int) Action { return MakeAction(playVariant{m, i}) }

func (a playVariant) Enabled() bool { return a.index >= 0 && a.index < len(a.variants) }

func (a playVariant) Do() {
	seq, err := motif.ToSequence(a.variants[a.index].Notes, a.resolution, float64(a.bpm), a.bars)
	if err != nil {
		(*Model)(a.Play).Alerts().Add(err.Error(), Error)
		return
	}
	a.playing, a.playingVariant = true, true
	TrySend(a.broker.ToPlayer, any(PlayMsg{Schedule: seq.Schedule(), QPM: float64(a.bpm), Restart: true}))
}

// sendSchedule sends the notes of the grid to the player, looping the whole
// grid.
func (m *Model) sendSchedule(restart bool) {
	seq, err := motif.ToSequence(m.grid.Snapshot(), m.resolution, float64(m.bpm), m.bars)
	if err != nil {
		m.Alerts().Add(err.Error(), Error)
		return
	}
	restart = restart || m.playingVariant
	m.playingVariant = false
	TrySend(m.broker.ToPlayer, any(PlayMsg{
		Schedule:     seq.Schedule(),
		QPM:          float64(m.bpm),
		LoopQuarters: float64(m.Config().Quarters()),
		Restart:      restart,
	}))
}
