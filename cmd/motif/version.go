package main

import (
	"fmt"

	"github.com/motifvae/motif/version"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		info := version.Read()
		fmt.Println(info)
		if info.GoVersion != "" {
			fmt.Printf("built with %v\n", info.GoVersion)
		}
	},
}
