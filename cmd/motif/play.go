package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/motifvae/motif"
	"github.com/motifvae/motif/oto"
	"github.com/motifvae/motif/roll"
	"github.com/motifvae/motif/synth"
	"github.com/motifvae/motif/variation"
	"github.com/spf13/cobra"
)

var (
	playVariant   int
	playLoops     int
	playMetronome bool
)

// releaseTail lets the last notes fade out before the device is closed.
const releaseTail = 200 * time.Millisecond

func init() {
	rootCmd.AddCommand(playCmd)
	playCmd.Flags().IntVar(&playVariant, "variant", 0, "Generate variations and play the n:th best one once. By default, the melody itself is looped.")
	playCmd.Flags().IntVar(&playLoops, "loops", 1, "How many times the melody is looped.")
	playCmd.Flags().BoolVar(&playMetronome, "metronome", false, "Click every quarter note.")
}

var playCmd = &cobra.Command{
	Use:   "play melody",
	Short: "Play a melody or one of its variations",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		var engine *variation.Engine
		if playVariant > 0 {
			if engine, err = newEngine(context.Background(), cfg); err != nil {
				return err
			}
		}
		s := newSession(cfg, engine)
		if err := s.load(args[0]); err != nil {
			return err
		}
		if playVariant > 0 {
			_, _, err := s.generate()
			s.flushAlerts(os.Stderr)
			if err != nil {
				return err
			}
		}
		var audioContext motif.AudioContext
		audioContext, err = oto.NewContext()
		if err != nil {
			return fmt.Errorf("could not acquire oto AudioContext: %w", err)
		}
		defer audioContext.Close()
		player := roll.NewPlayer(s.broker, synth.New())
		s.model.Metronome().SetValue(playMetronome)
		if playVariant > 0 {
			s.model.Play().Variant(playVariant - 1).Do()
			if !s.model.Play().IsPlaying() {
				return fmt.Errorf("there is no variant %d", playVariant)
			}
		} else {
			s.model.Play().Toggle().Do()
		}
		playback := audioContext.Play(func(buf motif.AudioBuffer) error {
			player.Process(buf)
			return nil
		})
		quarter := time.Duration(float64(time.Minute) / float64(cfg.BPM))
		deadline := time.Now().Add(time.Duration(playLoops*cfg.Bars*motif.BeatsPerBar) * quarter)
		for s.model.Play().IsPlaying() {
			if playVariant == 0 && time.Now().After(deadline) {
				s.model.Play().SkipToStart().Do()
				break
			}
			s.pump(10 * time.Millisecond)
		}
		time.Sleep(releaseTail)
		s.flushAlerts(os.Stderr)
		return playback.Close()
	},
}
