// Package config holds the session settings of motif: grid size, tempo and
// the variation parameters.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/motifvae/motif"
	"gopkg.in/yaml.v2"
)

type Config struct {
	BPM        int     `yaml:"bpm"`
	Bars       int     `yaml:"bars"`
	Resolution int     `yaml:"resolution"`
	PitchMin   int     `yaml:"pitchmin"`
	PitchMax   int     `yaml:"pitchmax"`
	Strength   float64 `yaml:"strength"` // standard deviation of the latent noise
	Candidates int     `yaml:"candidates"`
	Keep       int     `yaml:"keep"`
	Seed       uint64  `yaml:"seed"`
	AssetDir   string  `yaml:"assetdir"`
	AssetURL   string  `yaml:"asseturl"`
}

// Limits of the settings; the session model clamps to the same ranges.
const (
	MaxBPM        = 300
	MaxBars       = 16
	MaxResolution = 16
	MaxStrength   = 3
	MaxCandidates = 64
)

// FileName is looked up in the motif directory of os.UserConfigDir.
const FileName = "config.yml"

var ErrInvalid = errors.New("invalid configuration")

//go:embed default.yml
var defaultYaml []byte

func Default() Config {
	var c Config
	if err := yaml.UnmarshalStrict(defaultYaml, &c); err != nil {
		panic(fmt.Errorf("failed to unmarshal default config: %w", err))
	}
	return c
}

// Load reads the configuration file at path on top of the defaults. With an
// empty path, the user config file is read if it exists.
func Load(path string) (Config, error) {
	c := Default()
	if path == "" {
		dir, err := os.UserConfigDir()
		if err != nil {
			return c, nil
		}
		path = filepath.Join(dir, "motif", FileName)
		if _, err := os.Stat(path); err != nil {
			return c, nil
		}
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return c, fmt.Errorf("could not read config: %w", err)
	}
	if err := yaml.UnmarshalStrict(b, &c); err != nil {
		return c, fmt.Errorf("could not parse config %v: %w", path, err)
	}
	return c, c.Validate()
}

func (c Config) Validate() error {
	switch {
	case c.BPM < 1 || c.BPM > MaxBPM:
		return fmt.Errorf("%w: bpm %d not in 1..%d", ErrInvalid, c.BPM, MaxBPM)
	case c.Bars < 1 || c.Bars > MaxBars:
		return fmt.Errorf("%w: bars %d not in 1..%d", ErrInvalid, c.Bars, MaxBars)
	case c.Resolution < 1 || c.Resolution > MaxResolution:
		return fmt.Errorf("%w: resolution %d not in 1..%d", ErrInvalid, c.Resolution, MaxResolution)
	case c.PitchMin < 0 || c.PitchMax > 127 || c.PitchMin > c.PitchMax:
		return fmt.Errorf("%w: pitch range %d..%d", ErrInvalid, c.PitchMin, c.PitchMax)
	case c.Strength < 0 || c.Strength > MaxStrength:
		return fmt.Errorf("%w: strength %v not in 0..%v", ErrInvalid, c.Strength, MaxStrength)
	case c.Candidates < 1 || c.Candidates > MaxCandidates:
		return fmt.Errorf("%w: candidates %d not in 1..%d", ErrInvalid, c.Candidates, MaxCandidates)
	case c.Keep < 1 || c.Keep > c.Candidates:
		return fmt.Errorf("%w: keep %d not in 1..%d", ErrInvalid, c.Keep, c.Candidates)
	}
	return nil
}

func (c Config) Grid() motif.GridConfig {
	return motif.GridConfig{
		Bars:                c.Bars,
		SubdivisionsPerBeat: c.Resolution,
		Pitches:             motif.PitchRange{Min: c.PitchMin, Max: c.PitchMax},
	}
}
