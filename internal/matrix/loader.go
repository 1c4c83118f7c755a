// Package matrix loads job matrices produced by the external combinatorics
// tool.
package matrix

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/spachava753/jobgen/internal/models"
)

// Parse decodes a job matrix document and checks that every entry can be
// named.
func Parse(data []byte) ([]models.MatrixEntry, error) {
	var m models.Matrix
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("%w: %w", models.ErrInvalidMatrix, err)
	}

	for i, e := range m.Jobs {
		if e.Name == "" && len(e.Descriptor) == 0 {
			return nil, fmt.Errorf("jobs[%d]: %w", i, models.ErrMissingName)
		}
		if len(e.Descriptor) > 0 && !e.Descriptor.Has(models.DeviceCompiler) && e.Name == "" {
			return nil, fmt.Errorf("jobs[%d]: %w: descriptor without %s needs an explicit name",
				i, models.ErrInvalidMatrix, models.DeviceCompiler)
		}
	}

	return m.Jobs, nil
}

// LoadFromPath loads a job matrix from a local filesystem path.
func LoadFromPath(path string) ([]models.MatrixEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading matrix file: %w", err)
	}

	entries, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parsing matrix %s: %w", path, err)
	}
	return entries, nil
}

// LoadFromURL loads a job matrix from a remote URL.
func LoadFromURL(ctx context.Context, url string) ([]models.MatrixEntry, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching matrix: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching matrix: HTTP %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	entries, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parsing matrix %s: %w", url, err)
	}
	return entries, nil
}

// Load reads a single source, fetching it when it is an http(s) URL.
func Load(ctx context.Context, source string) ([]models.MatrixEntry, error) {
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		return LoadFromURL(ctx, source)
	}
	return LoadFromPath(source)
}

// LoadAll loads every source concurrently, at most limit at a time, and
// concatenates the entries in source order.
func LoadAll(ctx context.Context, sources []string, limit int) ([]models.MatrixEntry, error) {
	loaded := make([][]models.MatrixEntry, len(sources))

	g, ctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}
	for i, src := range sources {
		g.Go(func() error {
			entries, err := Load(ctx, src)
			if err != nil {
				return fmt.Errorf("loading %s: %w", src, err)
			}
			slog.Debug("loaded job matrix", "source", src, "jobs", len(entries))
			loaded[i] = entries
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	var all []models.MatrixEntry
	for _, entries := range loaded {
		all = append(all, entries...)
	}
	return all, nil
}
