package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/motifvae/motif"
	"github.com/motifvae/motif/assets"
	"github.com/motifvae/motif/config"
	"github.com/motifvae/motif/contour"
	"github.com/motifvae/motif/midifile"
	"github.com/motifvae/motif/roll"
	"github.com/motifvae/motif/variation"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// session drives a roll.Model without a user interface: the command line
// takes the place of the pointer and the buttons.
type session struct {
	cfg    config.Config
	model  *roll.Model
	broker *roll.Broker
	caser  cases.Caser
}

const generateTimeout = time.Minute

func newSession(cfg config.Config, engine *variation.Engine) *session {
	broker := roll.NewBroker()
	return &session{
		cfg:    cfg,
		model:  roll.NewModel(broker, engine, cfg),
		broker: broker,
		caser:  cases.Title(language.English),
	}
}

// newEngine builds and initializes the variation engine. The model
// dimensions are read from the checkpoint config in the asset directory, if
// there is one.
func newEngine(ctx context.Context, cfg config.Config) (*variation.Engine, error) {
	c := contour.DefaultConfig
	if cfg.AssetDir != "" {
		path := filepath.Join(cfg.AssetDir, assets.ConfigFile)
		if _, err := os.Stat(path); err == nil {
			if c, err = contour.LoadConfig(path); err != nil {
				return nil, err
			}
		}
	}
	engine := variation.NewEngine(contour.New(c), nil, cfg.Seed)
	if err := engine.Initialize(ctx); err != nil {
		return nil, err
	}
	return engine, nil
}

// load replaces the notes of the session with the melody in the file at
// path: a .mid file or a .yml note file.
func (s *session) load(path string) error {
	notes, err := readMelody(path, s.cfg.Grid())
	if err != nil {
		return err
	}
	if rejected := s.model.LoadNotes(notes); rejected > 0 {
		log.Printf("%v: dropped %d overlapping notes", path, rejected)
	}
	if s.model.Grid().Len() == 0 {
		return fmt.Errorf("%v: no notes on the grid", path)
	}
	return nil
}

func readMelody(path string, grid motif.GridConfig) ([]motif.Note, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mid", ".midi":
		seq, err := midifile.ReadFile(path)
		if err != nil {
			return nil, err
		}
		q, err := motif.Quantize(seq, grid.SubdivisionsPerBeat)
		if err != nil {
			return nil, fmt.Errorf("could not quantize %v: %w", path, err)
		}
		notes := motif.FromDecodedSequence(q)
		// whatever starts past the last bar does not fit on the grid
		return slices.DeleteFunc(notes, func(n motif.Note) bool { return n.Step >= grid.Columns() }), nil
	default:
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("could not read file %v: %w", path, err)
		}
		g := roll.NewNoteGrid(grid.Pitches)
		if _, err := g.Unmarshal(b); err != nil {
			return nil, fmt.Errorf("could not parse %v: %w", path, err)
		}
		return g.Snapshot(), nil
	}
}

// pump processes the next message for the model, waiting at most timeout.
func (s *session) pump(timeout time.Duration) bool {
	msg, ok := roll.TimeoutReceive(s.broker.ToModel, timeout)
	if ok {
		s.model.ProcessMsg(msg)
	}
	return ok
}

// generate runs the Generate action of the model and waits for the result.
func (s *session) generate() ([]variation.Variant, uuid.UUID, error) {
	s.model.Generate().Do()
	for s.model.Generating() {
		if !s.pump(generateTimeout) {
			return nil, uuid.Nil, errors.New("timed out waiting for variations")
		}
	}
	variants, id := s.model.Variants()
	if len(variants) == 0 {
		return nil, uuid.Nil, errors.New("no variations generated")
	}
	return variants, id, nil
}

// flushAlerts writes the pending alerts to w and removes them.
func (s *session) flushAlerts(w io.Writer) {
	for _, a := range s.model.Alerts().Iterate {
		fmt.Fprintf(w, "%s: %s\n", s.caser.String(a.Priority.String()), a.Message)
	}
	s.model.Alerts().Update(time.Hour)
}
