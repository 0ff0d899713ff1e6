package main

import (
	"github.com/motifvae/motif/config"
	"github.com/spf13/cobra"
)

var (
	configPath string
	overrides  config.Config
)

func init() {
	f := rootCmd.PersistentFlags()
	f.StringVar(&configPath, "config", "", "Configuration file. By default, "+config.FileName+" in the motif directory of the user config dir is used if it exists.")
	f.IntVar(&overrides.BPM, "bpm", 0, "Tempo in quarter notes per minute.")
	f.IntVar(&overrides.Bars, "bars", 0, "Length of the grid in 4/4 bars.")
	f.IntVar(&overrides.Resolution, "resolution", 0, "Grid steps per quarter note.")
	f.Float64Var(&overrides.Strength, "strength", 0, "Standard deviation of the latent noise.")
	f.IntVar(&overrides.Candidates, "candidates", 0, "Number of candidates to decode.")
	f.IntVar(&overrides.Keep, "keep", 0, "Number of variations to keep.")
	f.Uint64Var(&overrides.Seed, "seed", 0, "Seed of the latent noise.")
	f.StringVar(&overrides.AssetDir, "assets", "", "Directory of the model checkpoint.")
}

// loadConfig reads the configuration and applies the flags given on the
// command line on top of it.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	c, err := config.Load(configPath)
	if err != nil {
		return c, err
	}
	f := cmd.Flags()
	if f.Changed("bpm") {
		c.BPM = overrides.BPM
	}
	if f.Changed("bars") {
		c.Bars = overrides.Bars
	}
	if f.Changed("resolution") {
		c.Resolution = overrides.Resolution
	}
	if f.Changed("strength") {
		c.Strength = overrides.Strength
	}
	if f.Changed("candidates") {
		c.Candidates = overrides.Candidates
		c.Keep = min(c.Keep, c.Candidates)
	}
	if f.Changed("keep") {
		c.Keep = overrides.Keep
	}
	if f.Changed("seed") {
		c.Seed = overrides.Seed
	}
	if f.Changed("assets") {
		c.AssetDir = overrides.AssetDir
	}
	return c, c.Validate()
}
