// Package catalog holds the software versions the CI covers.
package catalog

import (
	"slices"
	"strings"

	"github.com/spachava753/jobgen/internal/models"
)

// BuildTypes are the CMake build types a job can use.
var BuildTypes = []string{"Release", "Debug"}

// Catalog is an immutable list of supported versions per tool.
type Catalog struct {
	versions map[string][]string
}

// New creates a catalog from versions. The map is copied.
func New(versions map[string][]string) *Catalog {
	c := &Catalog{versions: make(map[string][]string, len(versions))}
	for name, vs := range versions {
		c.versions[name] = slices.Clone(vs)
	}
	return c
}

// Default returns the catalog used when no versions are configured.
func Default() *Catalog {
	return New(map[string][]string{
		models.GCC:   {"9", "10", "11", "12"},
		models.Clang: {"9", "10", "11", "12", "13", "14", "15"},
		models.NVCC: {
			"11.0", "11.1", "11.2", "11.3", "11.4",
			"11.5", "11.6", "11.7", "11.8", "12.0",
		},
		models.HIPCC:       {"5.0", "5.1", "5.2", "5.3"},
		models.Ubuntu:      {"20.04"},
		models.CMake:       {"3.18.6", "3.19.8", "3.20.6", "3.21.6", "3.22.3", "3.23.2"},
		models.Boost:       {"1.74.0", "1.75.0", "1.76.0", "1.77.0", "1.78.0", "1.79.0", "1.80.0"},
		models.CXXStandard: {"17", "20"},
		models.BuildType:   BuildTypes,
		// runtime jobs are derived from compile-only ones by the matrix builder
		models.JobExecutionType: {models.ExecutionCompileOnly},
	})
}

// WithOverrides returns a copy of c where every tool in overrides has its
// version list replaced.
func (c *Catalog) WithOverrides(overrides map[string][]string) *Catalog {
	merged := New(c.versions)
	for name, vs := range overrides {
		merged.versions[name] = slices.Clone(vs)
	}
	return merged
}

// Versions returns the supported versions of name, in catalog order.
func (c *Catalog) Versions(name string) []string {
	return slices.Clone(c.versions[name])
}

// CompilerVersions returns every compiler version in the catalog. With
// clangCUDA set, each clang version is followed by a clang-cuda entry of the
// same version.
func (c *Catalog) CompilerVersions(clangCUDA bool) []models.Software {
	var compilers []models.Software
	for _, name := range []string{models.GCC, models.Clang, models.NVCC, models.HIPCC} {
		for _, v := range c.versions[name] {
			compilers = append(compilers, models.Software{Name: name, Version: v})
			if clangCUDA && name == models.Clang {
				compilers = append(compilers, models.Software{Name: models.ClangCUDA, Version: v})
			}
		}
	}
	return compilers
}

// BackendMatrix returns the backend combinations to test. Only one GPU
// backend is enabled per combination: HIP versions first, then CUDA.
func (c *Catalog) BackendMatrix() [][]models.Software {
	var combinations [][]models.Software
	for _, v := range c.versions[models.HIPCC] {
		combinations = append(combinations, []models.Software{{Name: models.HIPBackend, Version: v}})
	}
	for _, v := range c.versions[models.NVCC] {
		combinations = append(combinations, []models.Software{{Name: models.CUDABackend, Version: v}})
	}
	return combinations
}

// Listing is the catalog as printed by jobgen -list-catalog.
type Listing struct {
	Compilers []models.Software   `yaml:"compilers"`
	Backends  [][]models.Software `yaml:"backends"`
	Tools     map[string][]string `yaml:"tools"`
}

// Listing returns the compilers including clang-cuda, the backend
// combinations and the versions of every other tool.
func (c *Catalog) Listing() Listing {
	l := Listing{
		Compilers: c.CompilerVersions(true),
		Backends:  c.BackendMatrix(),
		Tools:     make(map[string][]string),
	}
	for name := range c.versions {
		switch name {
		case models.GCC, models.Clang, models.NVCC, models.HIPCC:
			continue
		}
		l.Tools[name] = c.Versions(name)
	}
	return l
}

// Validate returns every entry of desc whose version is not in the catalog.
// Keys the catalog has no list for are accepted.
func (c *Catalog) Validate(desc models.JobDescriptor) []models.CatalogMiss {
	var misses []models.CatalogMiss

	keys := make([]string, 0, len(desc))
	for k := range desc {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	for _, key := range keys {
		sw := desc[key]
		list, ok := c.lookupList(key, sw)
		if !ok {
			continue
		}
		if !slices.Contains(list, sw.Version) {
			misses = append(misses, models.CatalogMiss{Key: key, Software: sw})
		}
	}
	return misses
}

// lookupList resolves the version list a descriptor entry is checked against.
func (c *Catalog) lookupList(key string, sw models.Software) ([]string, bool) {
	switch key {
	case models.HostCompiler, models.DeviceCompiler:
		name := sw.Name
		if name == models.ClangCUDA {
			name = models.Clang
		}
		list, ok := c.versions[name]
		return list, ok
	case models.CUDABackend, models.HIPBackend:
		if strings.EqualFold(sw.Version, models.BackendOff) {
			return nil, false
		}
		name := models.NVCC
		if key == models.HIPBackend {
			name = models.HIPCC
		}
		list, ok := c.versions[name]
		return list, ok
	case models.JobExecutionType:
		return []string{models.ExecutionCompileOnly, models.ExecutionRuntime}, true
	default:
		list, ok := c.versions[key]
		return list, ok
	}
}
