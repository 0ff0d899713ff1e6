package roll

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/motifvae/motif/variation"
)

type generateAction Model

// Generate asks the engine for variations of the current notes. The request
// runs on its own goroutine and the action stays disabled until the result
// has been processed, so at most one request is in flight. If the notes are
// edited in the meantime, the result is discarded.
func (m *Model) Generate() Action { return MakeAction((*generateAction)(m)) }

func (m *generateAction) Enabled() bool {
	return m.engine != nil && !m.generating && !m.initializing
}

func (m *generateAction) Do() {
	if m.grid.Len() == 0 {
		(*Model)(m).generationError(variation.ErrEmptyInput)
		return
	}
	if !m.engine.Ready() {
		(*Model)(m).generationError(variation.ErrModelUnready)
		return
	}
	req := variation.Request{
		Notes:      m.grid.Snapshot(),
		Config:     (*Model)(m).Config(),
		QPM:        float64(m.bpm),
		Sigma:      (*Model)(m).Sigma(),
		Candidates: m.candidates,
		Keep:       m.keep,
	}
	id, revision := uuid.New(), m.revision
	m.generating, m.pending = true, id
	engine, toModel := m.engine, m.broker.ToModel
	go func() {
		variants, err := engine.Generate(context.Background(), req)
		toModel <- MsgToModel{Data: generateResult{ID: id, Revision: revision, Variants: variants, Err: err}}
	}()
}

func (m *Model) generateFinished(r generateResult) {
	if r.ID != m.pending {
		return
	}
	m.generating, m.pending = false, uuid.Nil
	switch {
	case r.Err != nil:
		m.generationError(r.Err)
	case r.Revision != m.revision:
		m.Alerts().AddNamed("StaleVariations", "The notes changed during generation, variations discarded", Info)
	default:
		m.variants, m.variantID = r.Variants, r.ID
		m.Alerts().AddNamed("Generated", fmt.Sprintf("Generated %d variations", len(r.Variants)), Info)
	}
}

func (m *Model) generationError(err error) {
	switch {
	case errors.Is(err, variation.ErrEmptyInput):
		m.Alerts().AddNamed("EmptyInput", "Draw some notes first", Warning)
	case errors.Is(err, variation.ErrModelUnready):
		m.Alerts().AddNamed("ModelUnready", "Model not ready", Warning)
	default:
		m.Alerts().AddNamed("GenerationFailed", err.Error(), Error)
	}
}
