package main

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "motif",
	Short: "Piano roll melodies and their latent space variations",
	Long: `motif reads a short melody, drawn on a piano roll grid and saved as a
.yml note file or a .mid file, and generates variations of it by perturbing
its latent vector. The melody and its variations can be played or rendered.`,
	SilenceUsage: true,
}

func main() {
	cobra.CheckErr(rootCmd.Execute())
}
