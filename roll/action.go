package roll

import "context"

type (
	resetAction      Model
	initializeAction Model
	applyVariant     struct {
		*Model
		index int
	}
)

// Reset removes all notes and stops playback.
func (m *Model) Reset() Action { return MakeAction((*resetAction)(m)) }

func (m *resetAction) Do() {
	m.interaction.Cancel()
	m.grid.Reset()
	(*Model)(m).edited()
	(*Model)(m).Play().SkipToStart().Do()
}

// InitializeModel initializes the generative model on a separate goroutine.
// Generate is disabled until it has finished.
func (m *Model) InitializeModel() Action { return MakeAction((*initializeAction)(m)) }

func (m *initializeAction) Enabled() bool {
	return m.engine != nil && !m.initializing && !m.modelReady
}

func (m *initializeAction) Do() {
	m.initializing = true
	engine, toModel := m.engine, m.broker.ToModel
	go func() {
		err := engine.Initialize(context.Background())
		toModel <- MsgToModel{Data: modelInitialized{Err: err}}
	}()
}

// ApplyVariant replaces the notes with the notes of the i:th variant.
func (m *Model) ApplyVariant(i int) Action { return MakeAction(applyVariant{m, i}) }

func (a applyVariant) Enabled() bool { return a.index >= 0 && a.index < len(a.variants) }

func (a applyVariant) Do() {
	if rejected := a.LoadNotes(a.variants[a.index].Notes); rejected > 0 {
		a.Alerts().Add("Some overlapping notes of the variant were dropped", Warning)
	}
}
