// Package deriver turns job matrix entries into named CI jobs.
package deriver

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/spachava753/jobgen/internal/models"
)

// Runner tags.
const (
	TagArch    = "x86_64"
	TagCPUOnly = "cpuonly"
	TagCUDA    = "cuda"
	TagROCm    = "rocm"
)

// suffixTools are appended to the job name in this order. Without them job
// names collide and the CI silently runs only one of the colliding jobs.
var suffixTools = []string{
	models.CMake,
	models.Boost,
	models.Ubuntu,
	models.CXXStandard,
	models.BuildType,
}

// JobName builds the name of the job described by desc.
func JobName(desc models.JobDescriptor) string {
	device := desc[models.DeviceCompiler]

	var b strings.Builder
	b.WriteString("linux_")
	b.WriteString(device.Name + device.Version)

	switch device.Name {
	case models.NVCC:
		host := desc[models.HostCompiler]
		b.WriteString("-" + host.Name + host.Version)
	case models.ClangCUDA:
		b.WriteString("-cuda" + desc.Version(models.CUDABackend))
	}

	if desc.CompileOnly() {
		b.WriteString("_compile_only")
	}

	for _, tool := range suffixTools {
		sw, ok := desc.Get(tool)
		if !ok {
			continue
		}
		switch sw.Name {
		case models.CXXStandard:
			b.WriteString("_cxx" + sw.Version)
		case models.BuildType:
			b.WriteString("_" + sw.Version)
		default:
			b.WriteString("_" + sw.Name + sw.Version)
		}
	}

	return b.String()
}

// Tags selects the runner for the job: CPU only, NVIDIA or AMD GPU.
func Tags(desc models.JobDescriptor) []string {
	switch {
	case desc.CompileOnly():
		return []string{TagArch, TagCPUOnly}
	case desc.BackendEnabled(models.CUDABackend):
		return []string{TagArch, TagCUDA}
	case desc.BackendEnabled(models.HIPBackend):
		return []string{TagArch, TagROCm}
	default:
		return []string{TagArch, TagCPUOnly}
	}
}

// Deriver renders matrix entries with a fixed script list.
type Deriver struct {
	script      []string
	concurrency int
}

// New creates a Deriver. Jobs run script; DeriveAll renders at most
// concurrency entries at once.
func New(script []string, concurrency int) *Deriver {
	if concurrency <= 0 {
		concurrency = 1
	}
	return &Deriver{
		script:      slices.Clone(script),
		concurrency: concurrency,
	}
}

// Derive renders a single entry. Image and variables are taken from the
// entry as is.
func (d *Deriver) Derive(entry models.MatrixEntry) (models.NamedJob, error) {
	name := entry.Name
	if name == "" {
		if !entry.Descriptor.Has(models.DeviceCompiler) {
			return models.NamedJob{}, models.ErrMissingName
		}
		name = JobName(entry.Descriptor)
	}

	tags := []string{TagArch, TagCPUOnly}
	if entry.Descriptor != nil {
		tags = Tags(entry.Descriptor)
	}

	var vars map[string]string
	if len(entry.Variables) > 0 {
		vars = make(map[string]string, len(entry.Variables))
		for k, v := range entry.Variables {
			vars[k] = v
		}
	}

	return models.NamedJob{
		Name: name,
		Body: models.JobBody{
			Image:         entry.Image,
			Variables:     vars,
			Script:        slices.Clone(d.script),
			Tags:          tags,
			Interruptible: true,
		},
		Descriptor: entry.Descriptor,
	}, nil
}

// DeriveAll renders entries concurrently. The result keeps the entry order.
func (d *Deriver) DeriveAll(ctx context.Context, entries []models.MatrixEntry) ([]models.NamedJob, error) {
	jobs := make([]models.NamedJob, len(entries))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(d.concurrency)
	for i, entry := range entries {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			job, err := d.Derive(entry)
			if err != nil {
				return fmt.Errorf("jobs[%d]: %w", i, err)
			}
			jobs[i] = job
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return jobs, nil
}

// CheckUnique returns a *models.DuplicateNameError when two jobs share a name.
// Duplicate keys would make one job overwrite the other in the document.
func CheckUnique(jobs []models.NamedJob) error {
	counts := make(map[string]int, len(jobs))
	var dups []string
	for _, j := range jobs {
		counts[j.Name]++
		if counts[j.Name] == 2 {
			dups = append(dups, j.Name)
		}
	}
	if len(dups) == 0 {
		return nil
	}

	dupCounts := make(map[string]int, len(dups))
	for _, n := range dups {
		dupCounts[n] = counts[n]
	}
	return &models.DuplicateNameError{Names: dups, Counts: dupCounts}
}
