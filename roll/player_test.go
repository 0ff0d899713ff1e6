package roll_test

import (
	"fmt"
	"slices"
	"testing"

	"github.com/motifvae/motif"
	"github.com/motifvae/motif/roll"
)

// recordingSynth logs every call with the number of frames rendered before
// it.
type recordingSynth struct {
	rendered int
	log      []string
}

func (s *recordingSynth) Render(buffer motif.AudioBuffer) { s.rendered += len(buffer) }
func (s *recordingSynth) Trigger(voice, pitch int, velocity float32) {
	s.log = append(s.log, fmt.Sprintf("on %d %d@%d", voice, pitch, s.rendered))
}
func (s *recordingSynth) Release(voice int) {
	s.log = append(s.log, fmt.Sprintf("off %d@%d", voice, s.rendered))
}
func (s *recordingSynth) ReleaseAll() { s.log = append(s.log, fmt.Sprintf("releaseAll@%d", s.rendered)) }

func process(p *roll.Player, buffers int) {
	buf := make(motif.AudioBuffer, 4096)
	for range buffers {
		p.Process(buf)
	}
}

func lastStatus(t *testing.T, b *roll.Broker) roll.PlayerStatus {
	t.Helper()
	var ret roll.PlayerStatus
	found := false
	for {
		select {
		case msg := <-b.ToModel:
			if msg.HasPlayerStatus {
				ret, found = msg.PlayerStatus, true
			}
			continue
		default:
		}
		break
	}
	if !found {
		t.Fatalf("player sent no status")
	}
	return ret
}

func TestPlayerLoop(t *testing.T) {
	broker := roll.NewBroker()
	synth := &recordingSynth{}
	player := roll.NewPlayer(broker, synth)
	// at 120 QPM a quarter is 22050 frames
	broker.ToPlayer <- roll.PlayMsg{
		Schedule: []motif.ScheduledNote{
			{Offset: 0, Pitch: 60, Duration: 0.25},
			{Offset: 0.5, Pitch: 64, Duration: 0.25},
		},
		QPM:          120,
		LoopQuarters: 2,
		Restart:      true,
	}
	process(player, 11)
	want := []string{
		"releaseAll@0",
		"on 0 60@0",
		"off 0@11025",
		"on 1 64@22050",
		"off 1@33075",
		"releaseAll@44100",
		"on 0 60@44100",
	}
	if !slices.Equal(synth.log, want) {
		t.Errorf("got %v, want %v", synth.log, want)
	}
	if s := lastStatus(t, broker); !s.Playing || s.Finished {
		t.Errorf("unexpected status %+v", s)
	}
}

func TestPlayerFinishes(t *testing.T) {
	broker := roll.NewBroker()
	synth := &recordingSynth{}
	player := roll.NewPlayer(broker, synth)
	broker.ToPlayer <- roll.PlayMsg{
		Schedule: []motif.ScheduledNote{{Offset: 0, Pitch: 67, Duration: 0.1}},
		QPM:      120,
		Restart:  true,
	}
	process(player, 2)
	want := []string{"releaseAll@0", "on 0 67@0", "off 0@4410", "releaseAll@4410"}
	if !slices.Equal(synth.log, want) {
		t.Errorf("got %v, want %v", synth.log, want)
	}
	if s := lastStatus(t, broker); s.Playing || !s.Finished {
		t.Errorf("got %+v, want a finished status", s)
	}
	process(player, 1)
	if s := lastStatus(t, broker); s.Finished {
		t.Errorf("finished reported twice")
	}
	if synth.rendered != 3*4096 {
		t.Errorf("got %d frames rendered, want %d", synth.rendered, 3*4096)
	}
}

func TestPlayerMetronome(t *testing.T) {
	broker := roll.NewBroker()
	synth := &recordingSynth{}
	player := roll.NewPlayer(broker, synth)
	broker.ToPlayer <- roll.MetronomeMsg{On: true}
	broker.ToPlayer <- roll.PlayMsg{QPM: 120, LoopQuarters: 1, Restart: true}
	process(player, 6)
	want := []string{
		"releaseAll@0",
		"on -1 84@0",
		"off -1@11025",
		"releaseAll@22050",
		"on -1 84@22050",
	}
	if !slices.Equal(synth.log, want) {
		t.Errorf("got %v, want %v", synth.log, want)
	}
}

func TestPlayerPauseAndStop(t *testing.T) {
	broker := roll.NewBroker()
	player := roll.NewPlayer(broker, &recordingSynth{})
	broker.ToPlayer <- roll.PlayMsg{
		Schedule:     []motif.ScheduledNote{{Offset: 0, Pitch: 60, Duration: 1}},
		QPM:          120,
		LoopQuarters: 4,
	}
	process(player, 2)
	broker.ToPlayer <- roll.PauseMsg{}
	process(player, 1)
	s := lastStatus(t, broker)
	if s.Playing || s.Position != 8192.0/22050 {
		t.Errorf("got %+v after pause, want stopped at %v", s, 8192.0/22050)
	}
	broker.ToPlayer <- roll.StopMsg{}
	process(player, 1)
	if s := lastStatus(t, broker); s.Playing || s.Position != 0 {
		t.Errorf("got %+v after stop, want rewound", s)
	}
}
