package generator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"gopkg.in/yaml.v3"

	"github.com/spachava753/jobgen/internal/catalog"
	"github.com/spachava753/jobgen/internal/config"
	"github.com/spachava753/jobgen/internal/deriver"
	"github.com/spachava753/jobgen/internal/matrix"
	"github.com/spachava753/jobgen/internal/models"
	"github.com/spachava753/jobgen/internal/pipeline"
	"github.com/spachava753/jobgen/internal/wave"
)

// Generator turns job matrices into a CI document.
type Generator struct {
	cfg      models.GeneratorConfig
	catalog  *catalog.Catalog
	rules    wave.RuleSet
	deriver  *deriver.Deriver
	template *yaml.Node
}

// WaveSummary describes one category of the generated document.
type WaveSummary struct {
	Jobs    int `json:"jobs"`
	Batches int `json:"batches"`
}

// Summary describes a generated document.
type Summary struct {
	TotalJobs   int                                 `json:"total_jobs"`
	Placeholder bool                                `json:"placeholder"`
	Stages      []string                            `json:"stages"`
	Waves       map[models.WaveCategory]WaveSummary `json:"waves"`
}

// New creates a Generator. The shared job template is loaded here so a bad
// template fails before any matrix is read.
func New(cfg models.GeneratorConfig) (*Generator, error) {
	g := &Generator{
		cfg:     cfg,
		catalog: catalog.Default().WithOverrides(cfg.Catalog.Versions),
		rules:   wave.DefaultRules(),
		deriver: deriver.New(cfg.Script, cfg.Concurrency),
	}

	if cfg.Template != "" {
		tmpl, err := pipeline.LoadTemplate(cfg.Template)
		if err != nil {
			return nil, err
		}
		g.template = tmpl
	}

	return g, nil
}

// Run loads every source, renders its jobs, distributes them into waves and
// writes the CI document to w.
func (g *Generator) Run(ctx context.Context, sources []string, w io.Writer) (*Summary, error) {
	entries, err := matrix.LoadAll(ctx, sources, g.cfg.Concurrency)
	if err != nil {
		return nil, fmt.Errorf("loading job matrix: %w", err)
	}
	slog.Debug("loaded job matrices", "sources", len(sources), "entries", len(entries))

	return g.Generate(ctx, entries, w)
}

// Generate renders entries and writes the CI document to w.
func (g *Generator) Generate(ctx context.Context, entries []models.MatrixEntry, w io.Writer) (*Summary, error) {
	if err := g.checkCatalog(entries); err != nil {
		return nil, err
	}

	jobs, err := g.deriver.DeriveAll(ctx, entries)
	if err != nil {
		return nil, fmt.Errorf("deriving jobs: %w", err)
	}

	if err := deriver.CheckUnique(jobs); err != nil {
		return nil, err
	}

	waves := wave.Distribute(jobs, g.rules, g.cfg.Waves)

	doc := pipeline.Document{
		Variables: g.cfg.Variables,
		Template:  g.template,
	}
	if err := pipeline.Write(w, waves, doc); err != nil {
		return nil, fmt.Errorf("writing pipeline: %w", err)
	}

	summary := summarize(waves)
	if summary.Placeholder {
		slog.Warn("job matrix is empty, wrote placeholder job", "job", pipeline.PlaceholderJobName)
	}
	return summary, nil
}

// checkCatalog logs every catalog miss and, in strict mode, fails on them.
func (g *Generator) checkCatalog(entries []models.MatrixEntry) error {
	var errs []error
	for i, e := range entries {
		if e.Descriptor == nil {
			continue
		}
		misses := g.catalog.Validate(e.Descriptor)
		if len(misses) == 0 {
			continue
		}

		name := e.Name
		if name == "" {
			name = deriver.JobName(e.Descriptor)
		}
		for _, m := range misses {
			slog.Warn("software not in catalog",
				"index", i,
				"job", name,
				"key", m.Key,
				"name", m.Software.Name,
				"version", m.Software.Version)
		}
		errs = append(errs, &models.UnknownSoftwareError{Job: name, Misses: misses})
	}

	if g.cfg.Catalog.Strict && len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

func summarize(waves models.WaveMatrix) *Summary {
	s := &Summary{
		TotalJobs: wave.JobCount(waves),
		Stages:    wave.Stages(waves),
		Waves:     make(map[models.WaveCategory]WaveSummary, len(models.WaveCategories)),
	}
	s.Placeholder = s.TotalJobs == 0

	for _, c := range models.WaveCategories {
		ws := WaveSummary{Batches: len(waves[c])}
		for _, b := range waves[c] {
			ws.Jobs += len(b)
		}
		s.Waves[c] = ws
	}
	return s
}

// RunFromConfig loads a config file, applies wave overrides on top of its
// [waves] table and generates the CI document. An empty configPath uses the
// default configuration.
func RunFromConfig(ctx context.Context, configPath string, overrides models.WaveSize, sources []string, w io.Writer) (*Summary, error) {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return nil, err
	}
	cfg.Waves = config.MergeWaves(cfg.Waves, overrides)

	g, err := New(cfg)
	if err != nil {
		return nil, fmt.Errorf("creating generator: %w", err)
	}

	return g.Run(ctx, sources, w)
}

// WriteCatalog writes the version catalog of g as YAML to w.
func (g *Generator) WriteCatalog(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(g.catalog.Listing()); err != nil {
		return fmt.Errorf("writing catalog: %w", err)
	}
	return enc.Close()
}

// ListCatalog writes the version catalog configured by configPath to w.
func ListCatalog(configPath string, w io.Writer) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	g, err := New(cfg)
	if err != nil {
		return fmt.Errorf("creating generator: %w", err)
	}
	return g.WriteCatalog(w)
}

func loadConfig(configPath string) (models.GeneratorConfig, error) {
	if configPath == "" {
		return config.DefaultConfig(), nil
	}
	cfg, err := config.LoadConfigFile(configPath)
	if err != nil {
		return cfg, fmt.Errorf("loading config: %w", err)
	}
	return cfg, nil
}
