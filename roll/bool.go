package roll

type metronomeBool Model

// Metronome toggles the click on every quarter note during playback.
func (m *Model) Metronome() Bool { return MakeBool((*metronomeBool)(m)) }

func (v *metronomeBool) Value() bool { return v.metronome }
func (v *metronomeBool) SetValue(value bool) {
	v.metronome = value
	TrySend(v.broker.ToPlayer, any(MetronomeMsg{On: value}))
}
