package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/motifvae/motif/assets"
	"github.com/spf13/cobra"
)

var fetchURL string

const fetchTimeout = 5 * time.Minute

func init() {
	rootCmd.AddCommand(fetchCmd)
	fetchCmd.Flags().StringVar(&fetchURL, "url", "", "Base url of the checkpoint. Defaults to asseturl of the configuration, or "+assets.DefaultBaseURL)
}

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Download the model checkpoint",
	Long: `Download the model checkpoint: its config.json, the weights manifest and
all the weight shards listed in it. The files are written to the asset
directory of the configuration, or to the motif directory of the user cache
dir.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		url := fetchURL
		if url == "" {
			url = cfg.AssetURL
		}
		if url == "" {
			url = assets.DefaultBaseURL
		}
		dir := cfg.AssetDir
		if dir == "" {
			cache, err := os.UserCacheDir()
			if err != nil {
				return err
			}
			dir = filepath.Join(cache, "motif", "checkpoint")
		}
		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		defer cancel()
		files, err := assets.Fetch(ctx, &http.Client{}, url, dir)
		for _, f := range files {
			log.Printf("wrote %v", filepath.Join(dir, f))
		}
		if err != nil {
			log.Fatalf("fetching %v failed: %v", url, err)
		}
		return nil
	},
}
