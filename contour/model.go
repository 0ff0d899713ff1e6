// Package contour implements motif.GenerativeModel with a weight-free melody
// autoencoder. A melody is encoded, step by step, into its contour: whether a
// note sounds, whether a note starts and where the sounding pitch lies within
// the pitch range. Decoding reads the contour back into a monophonic melody,
// so points near an encoding decode to melodies near the original.
package contour

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"sync/atomic"

	"github.com/motifvae/motif"
	"gopkg.in/yaml.v3"
)

type (
	Config struct {
		NumSteps        int
		StepsPerQuarter int
		MinPitch        int
		MaxPitch        int
	}

	Model struct {
		config      Config
		initialized atomic.Bool
	}

	// checkpointConfig is the subset of a MusicVAE checkpoint config.json
	// that describes the melody converter.
	checkpointConfig struct {
		Type          string `yaml:"type"`
		DataConverter struct {
			Type string `yaml:"type"`
			Args struct {
				NumSteps int `yaml:"numSteps"`
				MinPitch int `yaml:"minPitch"`
				MaxPitch int `yaml:"maxPitch"`
			} `yaml:"args"`
		} `yaml:"dataConverter"`
	}
)

// Fields of the latent vector of each step.
const (
	activity = iota
	onset
	pitch
	fieldsPerStep
)

const threshold = 0.5

var DefaultConfig = Config{NumSteps: 256, StepsPerQuarter: 4, MinPitch: 21, MaxPitch: 108}

var (
	ErrInvalidConfig  = errors.New("invalid contour configuration")
	ErrNotInitialized = errors.New("contour model is not initialized")
	ErrDimension      = errors.New("latent vector has wrong dimension")
)

func New(config Config) *Model {
	return &Model{config: config}
}

// LoadConfig reads the melody converter settings from a checkpoint
// config.json, so the contour model works on the same grid as the
// checkpoint. Missing fields keep their DefaultConfig values.
func LoadConfig(path string) (Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("could not read checkpoint config: %w", err)
	}
	var c checkpointConfig
	if err := yaml.Unmarshal(b, &c); err != nil {
		return Config{}, fmt.Errorf("could not parse checkpoint config %v: %w", path, err)
	}
	ret := DefaultConfig
	args := c.DataConverter.Args
	if args.NumSteps > 0 {
		ret.NumSteps = args.NumSteps
	}
	if args.MaxPitch > 0 {
		ret.MinPitch, ret.MaxPitch = args.MinPitch, args.MaxPitch
	}
	return ret, nil
}

func (c Config) Validate() error {
	if c.NumSteps < 1 || c.StepsPerQuarter < 1 || c.MinPitch < 0 || c.MaxPitch <= c.MinPitch || c.MaxPitch > 127 {
		return fmt.Errorf("%w: %+v", ErrInvalidConfig, c)
	}
	return nil
}

// Dim returns the dimension of the latent space.
func (c Config) Dim() int { return c.NumSteps * fieldsPerStep }

func (m *Model) Config() Config { return m.config }

func (m *Model) Initialize(ctx context.Context) error {
	if err := m.config.Validate(); err != nil {
		return err
	}
	m.initialized.Store(true)
	return nil
}

func (m *Model) Encode(ctx context.Context, seqs []motif.Sequence) ([]motif.Vector, error) {
	if !m.initialized.Load() {
		return nil, ErrNotInitialized
	}
	ret := make([]motif.Vector, len(seqs))
	for i, seq := range seqs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		z, err := m.encode(seq)
		if err != nil {
			return nil, fmt.Errorf("sequence %d: %w", i, err)
		}
		ret[i] = z
	}
	return ret, nil
}

func (m *Model) encode(seq motif.Sequence) (motif.Vector, error) {
	q, err := m.requantize(seq)
	if err != nil {
		return nil, err
	}
	c := m.config
	z := make(motif.Vector, c.Dim())
	top := make([]int, c.NumSteps)
	for i := range top {
		top[i] = -1
	}
	for _, n := range q.Notes {
		p := max(min(n.Pitch, c.MaxPitch), c.MinPitch)
		for s := max(n.QuantizedStartStep, 0); s < min(n.QuantizedEndStep, c.NumSteps); s++ {
			if p < top[s] {
				continue
			}
			top[s] = p
			z[s*fieldsPerStep+onset] = 0
			if s == n.QuantizedStartStep {
				z[s*fieldsPerStep+onset] = 1
			}
		}
	}
	span := float32(c.MaxPitch - c.MinPitch)
	for s, p := range top {
		if p < 0 {
			continue
		}
		z[s*fieldsPerStep+activity] = 1
		z[s*fieldsPerStep+pitch] = float32(p-c.MinPitch) / span
	}
	return z, nil
}

// requantize puts the sequence on the model's own step grid.
func (m *Model) requantize(seq motif.Sequence) (motif.Sequence, error) {
	if seq.StepsPerQuarter == m.config.StepsPerQuarter {
		return seq, nil
	}
	if seq.StepsPerQuarter > 0 {
		u, err := motif.Unquantize(seq)
		if err != nil {
			return motif.Sequence{}, err
		}
		seq = u
	}
	return motif.Quantize(seq, m.config.StepsPerQuarter)
}

func (m *Model) Decode(ctx context.Context, zs []motif.Vector) ([]motif.Sequence, error) {
	if !m.initialized.Load() {
		return nil, ErrNotInitialized
	}
	ret := make([]motif.Sequence, len(zs))
	for i, z := range zs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if len(z) != m.config.Dim() {
			return nil, fmt.Errorf("vector %d: %w: got %d, want %d", i, ErrDimension, len(z), m.config.Dim())
		}
		ret[i] = m.decode(z)
	}
	return ret, nil
}

func (m *Model) decode(z motif.Vector) motif.Sequence {
	c := m.config
	spq := float64(c.StepsPerQuarter)
	seq := motif.Sequence{
		TicksPerQuarter:     motif.DefaultTicksPerQuarter,
		TotalTime:           float64(c.NumSteps) / spq,
		Tempos:              []motif.Tempo{{Time: 0, QPM: motif.DefaultQPM}},
		StepsPerQuarter:     c.StepsPerQuarter,
		TotalQuantizedSteps: c.NumSteps,
	}
	span := float64(c.MaxPitch - c.MinPitch)
	cur := -1 // index of the sounding note in seq.Notes
	end := func(step int) {
		if cur >= 0 {
			seq.Notes[cur].QuantizedEndStep = step
			seq.Notes[cur].EndTime = float64(step) / spq
			cur = -1
		}
	}
	for s := range c.NumSteps {
		f := z[s*fieldsPerStep : (s+1)*fieldsPerStep]
		if f[activity] <= threshold {
			end(s)
			continue
		}
		p := c.MinPitch + int(math.Round(float64(f[pitch])*span))
		p = max(min(p, c.MaxPitch), c.MinPitch)
		if cur >= 0 && f[onset] <= threshold && seq.Notes[cur].Pitch == p {
			continue
		}
		end(s)
		seq.Notes = append(seq.Notes, motif.SeqNote{
			Pitch:              p,
			Velocity:           motif.DefaultVelocity,
			StartTime:          float64(s) / spq,
			QuantizedStartStep: s,
		})
		cur = len(seq.Notes) - 1
	}
	end(c.NumSteps)
	return seq
}
