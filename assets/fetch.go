// Package assets downloads the files of a model checkpoint: its config, its
// weights manifest and every weight shard the manifest lists.
package assets

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const DefaultBaseURL = "https://storage.googleapis.com/magentadata/js/checkpoints/music_vae/mel_16bar_small_q2/"

const (
	ConfigFile   = "config.json"
	ManifestFile = "weights_manifest.json"
)

var ErrFetchFailed = errors.New("asset fetch failed")

// manifestGroup is one entry of a weights manifest; only the shard paths are
// needed.
type manifestGroup struct {
	Paths []string `yaml:"paths"`
}

// Fetch downloads the checkpoint at baseURL into dir and returns the names of
// the written files. Any failed request, including a non-2xx response, fails
// the whole fetch with ErrFetchFailed.
func Fetch(ctx context.Context, client *http.Client, baseURL, dir string) ([]string, error) {
	if client == nil {
		client = http.DefaultClient
	}
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid base url: %w", ErrFetchFailed, err)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFetchFailed, err)
	}
	var written []string
	get := func(name string) ([]byte, error) {
		b, err := download(ctx, client, base, name)
		if err != nil {
			return nil, err
		}
		if err := os.WriteFile(filepath.Join(dir, filepath.FromSlash(name)), b, 0644); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrFetchFailed, err)
		}
		written = append(written, name)
		return b, nil
	}
	if _, err := get(ConfigFile); err != nil {
		return written, err
	}
	b, err := get(ManifestFile)
	if err != nil {
		return written, err
	}
	shards, err := ShardPaths(b)
	if err != nil {
		return written, err
	}
	for _, s := range shards {
		if _, err := get(s); err != nil {
			return written, err
		}
	}
	return written, nil
}

// ShardPaths lists the shard files of every group of a weights manifest.
func ShardPaths(manifest []byte) ([]string, error) {
	var groups []manifestGroup
	if err := yaml.Unmarshal(manifest, &groups); err != nil {
		return nil, fmt.Errorf("%w: could not parse manifest: %w", ErrFetchFailed, err)
	}
	var ret []string
	for _, g := range groups {
		for _, p := range g.Paths {
			if p != path.Base(p) || p == "." || p == ".." {
				return nil, fmt.Errorf("%w: invalid shard path %q", ErrFetchFailed, p)
			}
			ret = append(ret, p)
		}
	}
	return ret, nil
}

func download(ctx context.Context, client *http.Client, base *url.URL, name string) ([]byte, error) {
	u := base.JoinPath(name)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFetchFailed, err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFetchFailed, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %s: %s", ErrFetchFailed, u, resp.Status)
	}
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrFetchFailed, u, err)
	}
	return b, nil
}
