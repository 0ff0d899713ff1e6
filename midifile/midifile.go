// Package midifile imports and exports sequences as standard MIDI files.
package midifile

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"slices"

	"github.com/motifvae/motif"
	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

// TicksPerQuarter is the resolution of exported files.
const TicksPerQuarter = 480

const channel = 0

var ErrUnsupportedTimeFormat = errors.New("only metric time formats are supported")

type event struct {
	tick uint32
	on   bool
	note motif.SeqNote
}

// Write encodes the sequence as a single track SMF with a 4/4 meter and the
// tempo of the sequence.
func Write(w io.Writer, seq motif.Sequence) error {
	events := make([]event, 0, 2*len(seq.Notes))
	for _, n := range seq.Notes {
		events = append(events,
			event{tick: toTicks(n.StartTime), on: true, note: n},
			event{tick: toTicks(n.EndTime), on: false, note: n})
	}
	// note offs first, so that repeated notes on the same pitch do not cut
	// each other
	slices.SortStableFunc(events, func(a, b event) int {
		switch {
		case a.tick != b.tick:
			return int(a.tick) - int(b.tick)
		case a.on == b.on:
			return 0
		case !a.on:
			return -1
		}
		return 1
	})
	var tr smf.Track
	tr.Add(0, smf.MetaMeter(motif.BeatsPerBar, 4))
	tr.Add(0, smf.MetaTempo(seq.QPM()))
	var last uint32
	for _, e := range events {
		key := uint8(max(min(e.note.Pitch, 127), 0))
		if e.on {
			vel := uint8(max(min(e.note.Velocity, 127), 1))
			tr.Add(e.tick-last, midi.NoteOn(channel, key, vel))
		} else {
			tr.Add(e.tick-last, midi.NoteOff(channel, key))
		}
		last = e.tick
	}
	tr.Close(0)
	s := smf.New()
	s.TimeFormat = smf.MetricTicks(TicksPerQuarter)
	if err := s.Add(tr); err != nil {
		return fmt.Errorf("could not add track: %w", err)
	}
	if _, err := s.WriteTo(w); err != nil {
		return fmt.Errorf("could not write midi file: %w", err)
	}
	return nil
}

func WriteFile(path string, seq motif.Sequence) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("could not create midi file: %w", err)
	}
	if err := Write(f, seq); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Read decodes all tracks of an SMF into one sequence. Times are converted
// to quarter notes; only the first tempo is kept.
func Read(r io.Reader) (seq motif.Sequence, err error) {
	// smf panics on some malformed files
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("could not parse midi file: %v", r)
		}
	}()
	s, err := smf.ReadFrom(r)
	if err != nil {
		return motif.Sequence{}, fmt.Errorf("could not parse midi file: %w", err)
	}
	mt, ok := s.TimeFormat.(smf.MetricTicks)
	if !ok {
		return motif.Sequence{}, ErrUnsupportedTimeFormat
	}
	tpq := float64(mt.Ticks4th())
	seq.TicksPerQuarter = int(mt.Ticks4th())
	type key struct{ ch, key uint8 }
	for _, track := range s.Tracks {
		var abs int64
		pending := map[key][]motif.SeqNote{}
		for _, ev := range track {
			abs += int64(ev.Delta)
			t := float64(abs) / tpq
			var ch, k, vel uint8
			var bpm float64
			switch {
			case ev.Message.GetMetaTempo(&bpm):
				if len(seq.Tempos) == 0 {
					seq.Tempos = append(seq.Tempos, motif.Tempo{Time: t, QPM: bpm})
				}
			case ev.Message.GetNoteOn(&ch, &k, &vel) && vel > 0:
				kk := key{ch, k}
				pending[kk] = append(pending[kk], motif.SeqNote{Pitch: int(k), Velocity: int(vel), StartTime: t})
			case ev.Message.GetNoteOn(&ch, &k, &vel), ev.Message.GetNoteOff(&ch, &k, &vel):
				kk := key{ch, k}
				if len(pending[kk]) == 0 {
					continue
				}
				n := pending[kk][0]
				pending[kk] = pending[kk][1:]
				n.EndTime = t
				seq.Notes = append(seq.Notes, n)
				seq.TotalTime = math.Max(seq.TotalTime, t)
			}
		}
	}
	if len(seq.Tempos) == 0 {
		seq.Tempos = []motif.Tempo{{Time: 0, QPM: motif.DefaultQPM}}
	}
	slices.SortStableFunc(seq.Notes, func(a, b motif.SeqNote) int {
		if a.StartTime != b.StartTime {
			if a.StartTime < b.StartTime {
				return -1
			}
			return 1
		}
		return a.Pitch - b.Pitch
	})
	return seq, nil
}

func ReadFile(path string) (motif.Sequence, error) {
	f, err := os.Open(path)
	if err != nil {
		return motif.Sequence{}, fmt.Errorf("could not open midi file: %w", err)
	}
	defer f.Close()
	return Read(f)
}

func toTicks(quarters float64) uint32 {
	return uint32(math.Round(max(quarters, 0) * TicksPerQuarter))
}
