package main

import (
	"context"
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/Masterminds/sprig"
	"github.com/google/uuid"
	"github.com/motifvae/motif"
	"github.com/motifvae/motif/config"
	"github.com/motifvae/motif/midifile"
	"github.com/motifvae/motif/roll"
	"github.com/motifvae/motif/variation"
	"github.com/spf13/cobra"
)

//go:embed templates/*.txt
var templateFS embed.FS

var (
	varyOut      string
	varyTemplate string
)

type report struct {
	ID       uuid.UUID
	Source   string
	Config   config.Config
	Variants []variation.Variant
}

func init() {
	rootCmd.AddCommand(varyCmd)
	varyCmd.Flags().StringVarP(&varyOut, "out", "o", "", "Directory where to write the variations as .mid and .yml files. The directory and its parents are created if needed.")
	varyCmd.Flags().StringVarP(&varyTemplate, "template", "t", "", "Report the variations with this text/template instead of the default one.")
}

var varyCmd = &cobra.Command{
	Use:   "vary melody",
	Short: "Generate variations of a melody",
	Long: `Generate variations of a melody read from a .mid or .yml note file. The
best variations, closest to the original in the latent space, are reported
best first.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		tmpl, err := loadTemplate(varyTemplate)
		if err != nil {
			return err
		}
		engine, err := newEngine(context.Background(), cfg)
		if err != nil {
			return err
		}
		s := newSession(cfg, engine)
		if err := s.load(args[0]); err != nil {
			return err
		}
		variants, id, err := s.generate()
		s.flushAlerts(os.Stderr)
		if err != nil {
			return err
		}
		if err := tmpl.Execute(os.Stdout, report{ID: id, Source: args[0], Config: cfg, Variants: variants}); err != nil {
			return fmt.Errorf("could not write report: %w", err)
		}
		if varyOut == "" {
			return nil
		}
		name := strings.TrimSuffix(filepath.Base(args[0]), filepath.Ext(args[0]))
		return writeVariants(varyOut, name, cfg, variants)
	},
}

func loadTemplate(path string) (*template.Template, error) {
	funcs := template.FuncMap{"pitch": func(p int) string { return fmt.Sprintf("%s%d", motif.PitchName(p), p/12-1) }}
	base := template.New("base").Funcs(sprig.TxtFuncMap()).Funcs(funcs)
	if path == "" {
		tmpl, err := base.ParseFS(templateFS, "templates/variants.txt")
		if err != nil {
			return nil, fmt.Errorf("could not parse default template: %w", err)
		}
		return tmpl.Lookup("variants.txt"), nil
	}
	tmpl, err := base.ParseFiles(path)
	if err != nil {
		return nil, fmt.Errorf("could not parse template %v: %w", path, err)
	}
	return tmpl.Lookup(filepath.Base(path)), nil
}

func writeVariants(dir, name string, cfg config.Config, variants []variation.Variant) error {
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		return fmt.Errorf("could not create output directory %v: %w", dir, err)
	}
	for i, v := range variants {
		base := filepath.Join(dir, fmt.Sprintf("%s-%d", name, i+1))
		seq, err := motif.ToSequence(v.Notes, cfg.Resolution, float64(cfg.BPM), cfg.Bars)
		if err != nil {
			return err
		}
		if err := midifile.WriteFile(base+".mid", seq); err != nil {
			return err
		}
		g := roll.NewNoteGrid(cfg.Grid().Pitches)
		g.Replace(v.Notes)
		b, err := g.Marshal()
		if err != nil {
			return err
		}
		if err := os.WriteFile(base+".yml", b, 0644); err != nil {
			return fmt.Errorf("could not write file %v: %w", base+".yml", err)
		}
	}
	return nil
}
