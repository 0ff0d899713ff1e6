// Package variation generates variations of a melody by sampling the latent
// space of a generative model around the encoding of the melody.
package variation

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/motifvae/motif"
	"github.com/viterin/vek/vek32"
)

type (
	// Engine turns a set of grid notes into ranked variations. The
	// candidates are ranked by how far their latent vector was moved from the
	// encoding of the original notes, closest first.
	Engine struct {
		model motif.GenerativeModel
		pool  *VectorPool
		ready atomic.Bool

		randMu sync.Mutex
		rand   *rand.Rand
	}

	Request struct {
		Notes      []motif.Note
		Config     motif.GridConfig
		QPM        float64
		Sigma      float64 // standard deviation of the latent noise
		Candidates int     // number of candidates to decode, N
		Keep       int     // number of winners to return, K
	}

	// Variant is a decoded candidate; Score is the euclidean norm of the
	// noise that produced it.
	Variant struct {
		Sequence motif.Sequence
		Notes    []motif.Note
		Score    float64
	}
)

const MaxCandidates = 64

var (
	ErrEmptyInput       = errors.New("no notes to vary")
	ErrModelUnready     = errors.New("generative model is not ready")
	ErrGenerationFailed = errors.New("generation failed")
)

func NewEngine(model motif.GenerativeModel, pool *VectorPool, seed uint64) *Engine {
	if pool == nil {
		pool = NewVectorPool()
	}
	return &Engine{
		model: model,
		pool:  pool,
		rand:  rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
	}
}

// Initialize initializes the underlying model. Generate fails with
// ErrModelUnready until Initialize has succeeded.
func (e *Engine) Initialize(ctx context.Context) error {
	if err := e.model.Initialize(ctx); err != nil {
		return fmt.Errorf("model initialization failed: %w", err)
	}
	e.ready.Store(true)
	return nil
}

func (e *Engine) Ready() bool { return e.ready.Load() }

func (e *Engine) Pool() *VectorPool { return e.pool }

// Generate encodes the notes, perturbs the encoding with Candidates samples
// of gaussian noise, decodes all candidates in one batch and returns the Keep
// candidates with the smallest noise, in ascending order of score. Decoded
// notes that do not fit on the grid of the request are dropped. Errors
// from the model are wrapped in ErrGenerationFailed; no partial results are
// returned.
func (e *Engine) Generate(ctx context.Context, req Request) ([]Variant, error) {
	if len(req.Notes) == 0 {
		return nil, ErrEmptyInput
	}
	if !e.Ready() {
		return nil, ErrModelUnready
	}
	if err := req.Config.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrGenerationFailed, err)
	}
	n := max(min(req.Candidates, MaxCandidates), 1)
	k := max(min(req.Keep, n), 1)
	res := req.Config.SubdivisionsPerBeat
	seq, err := motif.ToSequence(req.Notes, res, req.QPM, req.Config.Bars)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrGenerationFailed, err)
	}
	if len(seq.Notes) == 0 {
		return nil, ErrEmptyInput
	}
	quantized, err := motif.Quantize(seq, res)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrGenerationFailed, err)
	}

	scope := e.pool.Scope()
	defer scope.Release()

	encoded, err := e.model.Encode(ctx, []motif.Sequence{quantized})
	if err != nil {
		return nil, fmt.Errorf("%w: encode: %w", ErrGenerationFailed, err)
	}
	if len(encoded) != 1 || len(encoded[0]) == 0 {
		return nil, fmt.Errorf("%w: encode returned %d vectors", ErrGenerationFailed, len(encoded))
	}
	dim := len(encoded[0])
	z := scope.Get(dim)
	copy(z, encoded[0])

	batch := scope.Batch(n, dim)
	noise := scope.Batch(n, dim)
	runs := scope.Batch(n, dim)
	scores := make([]float64, n)
	e.randMu.Lock()
	for i := range n {
		copy(batch[i], z)
		for j := range noise[i] {
			noise[i][j] = float32(e.rand.NormFloat64() * req.Sigma)
		}
	}
	e.randMu.Unlock()
	for i := range n {
		vek32.Add_Into(runs[i], batch[i], noise[i])
		scores[i] = float64(vek32.Norm(noise[i]))
	}

	decoded, err := e.model.Decode(ctx, runs)
	if err != nil {
		return nil, fmt.Errorf("%w: decode: %w", ErrGenerationFailed, err)
	}
	if len(decoded) != n {
		return nil, fmt.Errorf("%w: decode returned %d sequences for %d vectors", ErrGenerationFailed, len(decoded), n)
	}

	variants := make([]Variant, n)
	for i, d := range decoded {
		if d.StepsPerQuarter > 0 && d.StepsPerQuarter != res {
			if d, err = requantize(d, res); err != nil {
				return nil, fmt.Errorf("%w: %w", ErrGenerationFailed, err)
			}
		}
		// the model may answer with more steps or pitches than the grid shows
		notes := slices.DeleteFunc(motif.FromDecodedSequence(d), func(n motif.Note) bool { return !req.Config.Holds(n) })
		variants[i] = Variant{Sequence: d, Notes: notes, Score: scores[i]}
	}
	slices.SortStableFunc(variants, func(a, b Variant) int {
		switch {
		case a.Score < b.Score:
			return -1
		case a.Score > b.Score:
			return 1
		}
		return 0
	})
	return variants[:k:k], nil
}

// requantize moves a decoded sequence from the model's resolution onto the
// grid resolution.
func requantize(seq motif.Sequence, res int) (motif.Sequence, error) {
	u, err := motif.Unquantize(seq)
	if err != nil {
		return motif.Sequence{}, err
	}
	return motif.Quantize(u, res)
}
