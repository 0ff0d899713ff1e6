package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/motifvae/motif"
	"github.com/motifvae/motif/roll"
	"github.com/motifvae/motif/synth"
	"github.com/motifvae/motif/variation"
	"github.com/spf13/cobra"
)

var (
	renderOut     string
	renderPCM     bool
	renderRaw     bool
	renderVariant int
)

const renderChunk = 1024

func init() {
	rootCmd.AddCommand(renderCmd)
	renderCmd.Flags().StringVarP(&renderOut, "out", "o", "", "Output file. By default, the melody file name with the extension replaced.")
	renderCmd.Flags().BoolVarP(&renderPCM, "pcm", "c", false, "Convert audio to 16-bit signed PCM when outputting.")
	renderCmd.Flags().BoolVarP(&renderRaw, "raw", "r", false, "Output a .raw file instead of a .wav file.")
	renderCmd.Flags().IntVar(&renderVariant, "variant", 0, "Generate variations and render the n:th best one instead of the melody.")
}

var renderCmd = &cobra.Command{
	Use:   "render melody",
	Short: "Render a melody or one of its variations to an audio file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		var engine *variation.Engine
		if renderVariant > 0 {
			if engine, err = newEngine(context.Background(), cfg); err != nil {
				return err
			}
		}
		s := newSession(cfg, engine)
		if err := s.load(args[0]); err != nil {
			return err
		}
		notes := s.model.Grid().Snapshot()
		if renderVariant > 0 {
			variants, _, err := s.generate()
			s.flushAlerts(os.Stderr)
			if err != nil {
				return err
			}
			if renderVariant > len(variants) {
				return fmt.Errorf("there is no variant %d", renderVariant)
			}
			notes = variants[renderVariant-1].Notes
		}
		seq, err := motif.ToSequence(notes, cfg.Resolution, float64(cfg.BPM), cfg.Bars)
		if err != nil {
			return err
		}
		buffer := render(seq.Schedule(), float64(cfg.BPM))
		ext := ".wav"
		var contents []byte
		if renderRaw {
			ext = ".raw"
			contents, err = buffer.Raw(renderPCM)
		} else {
			contents, err = buffer.Wav(renderPCM)
		}
		if err != nil {
			return err
		}
		out := renderOut
		if out == "" {
			out = strings.TrimSuffix(args[0], filepath.Ext(args[0])) + ext
		}
		if err := os.WriteFile(out, contents, 0644); err != nil {
			return fmt.Errorf("could not write file %v: %w", out, err)
		}
		return nil
	},
}

// render plays the schedule once through a player, without an audio device,
// and returns the audio including the release of the last notes.
func render(schedule []motif.ScheduledNote, qpm float64) motif.AudioBuffer {
	broker := roll.NewBroker()
	player := roll.NewPlayer(broker, synth.New())
	broker.ToPlayer <- roll.PlayMsg{Schedule: schedule, QPM: qpm, Restart: true}
	var ret motif.AudioBuffer
	chunk := make(motif.AudioBuffer, renderChunk)
	for finished := false; !finished; {
		player.Process(chunk)
		ret = append(ret, chunk...)
	drain:
		for {
			select {
			case msg := <-broker.ToModel:
				finished = finished || msg.PlayerStatus.Finished
			default:
				break drain
			}
		}
	}
	tail := make(motif.AudioBuffer, motif.SampleRate/4)
	player.Process(tail)
	return append(ret, tail...)
}
