package roll_test

import (
	"bytes"
	"context"
	"encoding/binary"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/motifvae/motif"
	"github.com/motifvae/motif/config"
	"github.com/motifvae/motif/contour"
	"github.com/motifvae/motif/roll"
	"github.com/motifvae/motif/synth"
	"github.com/motifvae/motif/variation"
)

type modelFuzzState struct {
	model *roll.Model
	file  []byte
}

func (s *modelFuzzState) Iterate(yield func(string, func(p string, t *testing.T)) bool, seed int) {
	// Ints
	s.IterateInt("BPM", s.model.BPM(), yield, seed)
	s.IterateInt("Bars", s.model.Bars(), yield, seed)
	s.IterateInt("Resolution", s.model.Resolution(), yield, seed)
	s.IterateInt("Strength", s.model.Strength(), yield, seed)
	s.IterateInt("Candidates", s.model.Candidates(), yield, seed)
	s.IterateInt("Keep", s.model.Keep(), yield, seed)
	s.IterateBool("Metronome", s.model.Metronome(), yield, seed)
	// Actions
	s.IterateAction("Reset", s.model.Reset(), yield, seed)
	s.IterateAction("InitializeModel", s.model.InitializeModel(), yield, seed)
	s.IterateAction("Generate", s.model.Generate(), yield, seed)
	s.IterateAction("ApplyVariant", s.model.ApplyVariant(seed%4), yield, seed)
	s.IterateAction("PlayToggle", s.model.Play().Toggle(), yield, seed)
	s.IterateAction("PlaySkipToStart", s.model.Play().SkipToStart(), yield, seed)
	s.IterateAction("PlayVariant", s.model.Play().Variant(seed%4), yield, seed)
	// Pointer
	yield("Pointer", func(p string, t *testing.T) {
		s.model.Pointer(roll.PointerEvent{
			Kind:           roll.PointerKind(seed % 4),
			X:              float64(seed*7%700) - 30,
			Y:              float64(seed*13%300) - 20,
			DeleteModifier: seed%5 == 0,
		})
	})
	yield("LoadNotes", func(p string, t *testing.T) {
		s.model.LoadNotes([]motif.Note{
			{Step: seed % 8, Duration: seed%3 + 1, Pitch: 40 + seed%40},
			{Step: seed % 5, Duration: 2, Pitch: 60},
		})
	})
	yield("Alerts.Update", func(p string, t *testing.T) {
		s.model.Alerts().Update(time.Duration(seed%1000) * time.Millisecond)
	})
	// File round trip
	yield("Marshal", func(p string, t *testing.T) {
		data, err := s.model.Grid().Marshal()
		if err != nil {
			t.Errorf("Path: %s Marshal failed: %v", p, err)
		}
		s.file = data
	})
	if s.file != nil {
		yield("Unmarshal", func(p string, t *testing.T) {
			notes := roll.NewNoteGrid(s.model.Grid().Pitches())
			if _, err := notes.Unmarshal(s.file); err != nil {
				t.Errorf("Path: %s Unmarshal of a marshaled grid failed: %v", p, err)
				return
			}
			s.model.LoadNotes(notes.Snapshot())
		})
	}
	// Invariants
	yield("Notes", func(p string, t *testing.T) {
		r := s.model.Grid().Pitches()
		for n := range s.model.Grid().All() {
			if n.Step < 0 || n.Duration < 1 || n.Pitch < r.Min || n.Pitch > r.Max {
				t.Errorf("Path: %s invalid note in grid: %+v", p, n)
			}
		}
	})
	yield("KeepWithinCandidates", func(p string, t *testing.T) {
		if k, n := s.model.Keep().Value(), s.model.Candidates().Value(); k > n {
			t.Errorf("Path: %s keep %d exceeds candidates %d", p, k, n)
		}
	})
}

func (s *modelFuzzState) IterateInt(name string, i roll.Int, yield func(string, func(p string, t *testing.T)) bool, seed int) {
	r := i.Range()
	yield(name+".Set", func(p string, t *testing.T) {
		i.SetValue(seed%(r.Max-r.Min+10) - 5 + r.Min)
	})
	yield(name+".Value", func(p string, t *testing.T) {
		if v := i.Value(); v < r.Min || v > r.Max {
			r := i.Range()
			t.Errorf("Path: %s %s value out of range [%d,%d]: %d", p, name, r.Min, r.Max, v)
		}
	})
}

func (s *modelFuzzState) IterateAction(name string, a roll.Action, yield func(string, func(p string, t *testing.T)) bool, seed int) {
	yield(name+".Do", func(p string, t *testing.T) {
		a.Do()
	})
}

func (s *modelFuzzState) IterateBool(name string, b roll.Bool, yield func(string, func(p string, t *testing.T)) bool, seed int) {
	yield(name+".Set", func(p string, t *testing.T) {
		b.SetValue(seed%2 == 0)
	})
	yield(name+".Toggle", func(p string, t *testing.T) {
		b.Toggle()
	})
}

// drain processes the messages waiting for the model without blocking. The
// player keeps producing statuses, so at most one channel full is handled.
func drain(model *roll.Model, broker *roll.Broker) {
	for range cap(broker.ToModel) {
		select {
		case msg := <-broker.ToModel:
			model.ProcessMsg(msg)
		default:
			return
		}
	}
}

func FuzzModel(f *testing.F) {
	seed := make([]byte, 1)
	for i := range seed {
		seed[i] = byte(i)
	}
	f.Add(seed)
	f.Fuzz(func(t *testing.T, slice []byte) {
		reader := bytes.NewReader(slice)
		broker := roll.NewBroker()
		engine := variation.NewEngine(contour.New(contour.Config{NumSteps: 64, StepsPerQuarter: 4, MinPitch: 21, MaxPitch: 108}), nil, 1)
		model := roll.NewModel(broker, engine, config.Default())
		model.SetSurface(640, 250)
		player := roll.NewPlayer(broker, synth.New())
		buf := make(motif.AudioBuffer, 2048)
		closeChan := make(chan struct{})
		go func() {
		loop:
			for {
				select {
				case <-closeChan:
					break loop
				default:
					player.Process(buf)
				}
			}
		}()
		state := modelFuzzState{model: model}
		count := 0
		state.Iterate(func(n string, f func(p string, t *testing.T)) bool {
			count++
			return true
		}, 0)
		totalPath := ""
		for m, err := binary.ReadVarint(reader); err == nil; m, err = binary.ReadVarint(reader) {
			seed := int(m)
			index := seed % count
			state.Iterate(func(n string, f func(p string, t *testing.T)) bool {
				if index == 0 {
					totalPath += n + ". "
					f(totalPath, t)
				}
				index--
				return index > 0
			}, seed)
			drain(model, broker)
			for _, a := range model.Alerts().Iterate {
				if a.Name == "GenerationFailed" {
					t.Errorf("Path: %s generation failed: %s", totalPath, a.Message)
				}
			}
		}
		closeChan <- struct{}{}
	})
}

// gatedModel blocks every Encode until the gate is closed.
type gatedModel struct {
	gate chan struct{}
}

func (g *gatedModel) Initialize(ctx context.Context) error { return nil }

func (g *gatedModel) Encode(ctx context.Context, seqs []motif.Sequence) ([]motif.Vector, error) {
	<-g.gate
	ret := make([]motif.Vector, len(seqs))
	for i := range ret {
		ret[i] = make(motif.Vector, 8)
	}
	return ret, nil
}

func (g *gatedModel) Decode(ctx context.Context, zs []motif.Vector) ([]motif.Sequence, error) {
	ret := make([]motif.Sequence, len(zs))
	for i := range ret {
		ret[i] = motif.Sequence{
			StepsPerQuarter:     4,
			TotalQuantizedSteps: 32,
			Tempos:              []motif.Tempo{{QPM: motif.DefaultQPM}},
			Notes:               []motif.SeqNote{{Pitch: 62, Velocity: motif.DefaultVelocity, QuantizedStartStep: 2, QuantizedEndStep: 6}},
		}
	}
	return ret, nil
}

var testMelody = []motif.Note{{Step: 0, Duration: 4, Pitch: 60}, {Step: 4, Duration: 4, Pitch: 64}}

func newTestModel(t *testing.T, ready bool) (*roll.Model, *roll.Broker, *gatedModel) {
	t.Helper()
	gm := &gatedModel{gate: make(chan struct{})}
	engine := variation.NewEngine(gm, nil, 1)
	if ready {
		if err := engine.Initialize(context.Background()); err != nil {
			t.Fatalf("Initialize failed: %v", err)
		}
	}
	broker := roll.NewBroker()
	return roll.NewModel(broker, engine, config.Default()), broker, gm
}

func receive(t *testing.T, model *roll.Model, broker *roll.Broker) {
	t.Helper()
	msg, ok := roll.TimeoutReceive(broker.ToModel, 5*time.Second)
	if !ok {
		t.Fatalf("no message from the background goroutine")
	}
	model.ProcessMsg(msg)
}

func hasAlert(model *roll.Model, name string) bool {
	for _, a := range model.Alerts().Iterate {
		if a.Name == name {
			return true
		}
	}
	return false
}

func TestGenerateSingleFlight(t *testing.T) {
	model, broker, gm := newTestModel(t, true)
	model.LoadNotes(testMelody)
	model.Generate().Do()
	if !model.Generating() {
		t.Fatalf("expected a generation in flight")
	}
	if model.Generate().Enabled() {
		t.Errorf("Generate enabled while a request is in flight")
	}
	model.Generate().Do()
	close(gm.gate)
	receive(t, model, broker)
	if model.Generating() {
		t.Errorf("still generating after the result was processed")
	}
	variants, id := model.Variants()
	if len(variants) != config.Default().Keep {
		t.Errorf("got %d variants, want %d", len(variants), config.Default().Keep)
	}
	if id == uuid.Nil {
		t.Errorf("variants have no request id")
	}
	if !hasAlert(model, "Generated") {
		t.Errorf("missing Generated alert")
	}
	if _, ok := roll.TimeoutReceive(broker.ToModel, 50*time.Millisecond); ok {
		t.Errorf("a second request was started")
	}
}

func TestStaleResultDiscarded(t *testing.T) {
	model, broker, gm := newTestModel(t, true)
	model.LoadNotes(testMelody)
	model.Generate().Do()
	model.LoadNotes(testMelody[:1])
	close(gm.gate)
	receive(t, model, broker)
	if variants, _ := model.Variants(); len(variants) != 0 {
		t.Errorf("stale variants were kept: %v", variants)
	}
	if !hasAlert(model, "StaleVariations") {
		t.Errorf("missing StaleVariations alert")
	}
	if !model.Generate().Enabled() {
		t.Errorf("Generate disabled after the stale result")
	}
}

func TestGenerateEmptyInput(t *testing.T) {
	model, _, _ := newTestModel(t, true)
	model.Generate().Do()
	if model.Generating() {
		t.Errorf("generation started without notes")
	}
	if !hasAlert(model, "EmptyInput") {
		t.Errorf("missing EmptyInput alert")
	}
}

func TestGenerateModelUnready(t *testing.T) {
	model, _, _ := newTestModel(t, false)
	model.LoadNotes(testMelody)
	model.Generate().Do()
	if model.Generating() {
		t.Errorf("generation started with an unready model")
	}
	if !hasAlert(model, "ModelUnready") {
		t.Errorf("missing ModelUnready alert")
	}
}

func TestInitializeModel(t *testing.T) {
	model, broker, _ := newTestModel(t, false)
	if !model.InitializeModel().Enabled() {
		t.Fatalf("InitializeModel disabled before initialization")
	}
	model.InitializeModel().Do()
	if model.Generate().Enabled() {
		t.Errorf("Generate enabled during initialization")
	}
	receive(t, model, broker)
	if !model.ModelReady() {
		t.Errorf("model not ready after initialization")
	}
	if model.InitializeModel().Enabled() {
		t.Errorf("InitializeModel enabled after initialization")
	}
	if !hasAlert(model, "ModelInit") {
		t.Errorf("missing ModelInit alert")
	}
}

func TestApplyVariant(t *testing.T) {
	model, broker, gm := newTestModel(t, true)
	model.LoadNotes(testMelody)
	if model.ApplyVariant(0).Enabled() {
		t.Errorf("ApplyVariant enabled without variants")
	}
	model.Generate().Do()
	close(gm.gate)
	receive(t, model, broker)
	model.ApplyVariant(0).Do()
	want := motif.Note{Step: 2, Duration: 4, Pitch: 62}
	if got := model.Grid().Snapshot(); len(got) != 1 || got[0] != want {
		t.Errorf("got %v, want [%v]", got, want)
	}
}

func TestApplyVariantStaysOnGrid(t *testing.T) {
	engine := variation.NewEngine(contour.New(contour.DefaultConfig), nil, 1)
	if err := engine.Initialize(context.Background()); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	broker := roll.NewBroker()
	model := roll.NewModel(broker, engine, config.Default())
	model.LoadNotes(testMelody)
	model.Generate().Do()
	receive(t, model, broker)
	grid := model.Config()
	variants, _ := model.Variants()
	if len(variants) == 0 {
		t.Fatalf("no variants generated")
	}
	for i, v := range variants {
		for _, n := range v.Notes {
			if !grid.Holds(n) {
				t.Errorf("variant %d: note %v is outside the %d columns and pitches %v", i, n, grid.Columns(), grid.Pitches)
			}
		}
	}
	model.ApplyVariant(0).Do()
	for _, n := range model.Grid().Snapshot() {
		if !grid.Holds(n) {
			t.Errorf("applied note %v is outside the grid", n)
		}
	}
}

func TestPlayToggle(t *testing.T) {
	model, broker, _ := newTestModel(t, true)
	model.Play().Toggle().Do()
	if model.Play().IsPlaying() {
		t.Errorf("playing an empty grid")
	}
	if !hasAlert(model, "EmptyInput") {
		t.Errorf("missing EmptyInput alert")
	}
	model.LoadNotes(testMelody)
	model.Play().Toggle().Do()
	if !model.Play().IsPlaying() {
		t.Fatalf("not playing after toggle")
	}
	msg, ok := roll.TimeoutReceive(broker.ToPlayer, time.Second)
	if !ok {
		t.Fatalf("nothing sent to the player")
	}
	play, ok := msg.(roll.PlayMsg)
	if !ok {
		t.Fatalf("got %T, want PlayMsg", msg)
	}
	if play.LoopQuarters != 8 || len(play.Schedule) != 2 || play.QPM != 120 {
		t.Errorf("unexpected PlayMsg %+v", play)
	}
	model.Play().Toggle().Do()
	if model.Play().IsPlaying() {
		t.Errorf("still playing after second toggle")
	}
	if msg, _ := roll.TimeoutReceive(broker.ToPlayer, time.Second); msg != any(roll.PauseMsg{}) {
		t.Errorf("got %v, want PauseMsg", msg)
	}
}

func TestIntsEditRevision(t *testing.T) {
	model, _, _ := newTestModel(t, true)
	r := model.Revision()
	model.BPM().SetValue(90)
	model.Bars().SetValue(1)
	model.Resolution().SetValue(2)
	if model.Revision() != r+3 {
		t.Errorf("got revision %d, want %d", model.Revision(), r+3)
	}
	model.Candidates().SetValue(2)
	if model.Keep().Value() != 2 {
		t.Errorf("keep not clamped to candidates: %d", model.Keep().Value())
	}
	if got := model.Resolution().String(); got != "1/8" {
		t.Errorf("got resolution %q, want 1/8", got)
	}
	if got := model.Strength().String(); got != "0.50" {
		t.Errorf("got strength %q, want 0.50", got)
	}
}

func TestAlertsReplaceAndFade(t *testing.T) {
	model, _, _ := newTestModel(t, true)
	model.Alerts().AddNamed("A", "first", roll.Info)
	model.Alerts().AddNamed("A", "second", roll.Warning)
	model.Alerts().Add("anonymous", roll.Error)
	if model.Alerts().Len() != 2 {
		t.Fatalf("got %d alerts, want 2", model.Alerts().Len())
	}
	for _, a := range model.Alerts().Iterate {
		if a.Name == "A" && a.Message != "second" {
			t.Errorf("named alert was not replaced: %q", a.Message)
		}
	}
	for range 100 {
		model.Alerts().Update(100 * time.Millisecond)
	}
	if model.Alerts().Len() != 0 {
		t.Errorf("alerts did not expire: %d left", model.Alerts().Len())
	}
}
