package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/motifvae/motif"
	"github.com/motifvae/motif/config"
	"github.com/motifvae/motif/midifile"
	"github.com/motifvae/motif/variation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testGrid = motif.GridConfig{Bars: 1, SubdivisionsPerBeat: 4, Pitches: motif.DefaultPitchRange}

func TestReadMelodyYaml(t *testing.T) {
	path := filepath.Join(t.TempDir(), "melody.yml")
	require.NoError(t, os.WriteFile(path, []byte("notes:\n  - [0, 4, 60]\n  - [2, 2, 60]\n  - [4, 2, 99]\n"), 0644))
	notes, err := readMelody(path, testGrid)
	require.NoError(t, err)
	assert.Equal(t, []motif.Note{{Step: 0, Duration: 4, Pitch: 60}, {Step: 4, Duration: 2, Pitch: 72}}, notes)
}

func TestReadMelodyMidi(t *testing.T) {
	want := []motif.Note{{Step: 0, Duration: 2, Pitch: 60}, {Step: 2, Duration: 2, Pitch: 64}, {Step: 8, Duration: 4, Pitch: 67}}
	seq, err := motif.ToSequence(want, 4, 120, 1)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "melody.mid")
	require.NoError(t, midifile.WriteFile(path, seq))
	notes, err := readMelody(path, testGrid)
	require.NoError(t, err)
	assert.Equal(t, want, notes)
}

func TestReadMelodyMissing(t *testing.T) {
	_, err := readMelody(filepath.Join(t.TempDir(), "nothing.yml"), testGrid)
	assert.Error(t, err)
}

func TestDefaultTemplate(t *testing.T) {
	tmpl, err := loadTemplate("")
	require.NoError(t, err)
	var b bytes.Buffer
	err = tmpl.Execute(&b, report{
		ID:     uuid.Nil,
		Source: "melody.yml",
		Config: config.Default(),
		Variants: []variation.Variant{
			{Notes: []motif.Note{{Step: 0, Duration: 4, Pitch: 60}}, Score: 0.5},
			{Notes: []motif.Note{{Step: 2, Duration: 1, Pitch: 61}}, Score: 1.25},
		},
	})
	require.NoError(t, err)
	assert.Equal(t,
		"batch 00000000-0000-0000-0000-000000000000 from melody.yml: 2 of 16 candidates, strength 0.50\n"+
			" 1. score  0.500 | C4@0+4\n"+
			" 2. score  1.250 | C#4@2+1\n",
		b.String())
}

func TestWriteVariants(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	cfg := config.Default()
	variants := []variation.Variant{{Notes: []motif.Note{{Step: 0, Duration: 4, Pitch: 60}}}}
	require.NoError(t, writeVariants(dir, "melody", cfg, variants))
	notes, err := readMelody(filepath.Join(dir, "melody-1.yml"), cfg.Grid())
	require.NoError(t, err)
	assert.Equal(t, variants[0].Notes, notes)
	notes, err = readMelody(filepath.Join(dir, "melody-1.mid"), cfg.Grid())
	require.NoError(t, err)
	assert.Equal(t, variants[0].Notes, notes)
}
