package wave

import (
	"slices"
	"strings"

	"github.com/spachava753/jobgen/internal/models"
)

// Predicate reports whether a job matches a classification rule.
type Predicate func(job models.NamedJob) bool

// NameContains matches jobs whose name contains s.
func NameContains(s string) Predicate {
	return func(job models.NamedJob) bool {
		return strings.Contains(job.Name, s)
	}
}

// NamePrefix matches jobs whose name starts with prefix.
func NamePrefix(prefix string) Predicate {
	return func(job models.NamedJob) bool {
		return strings.HasPrefix(job.Name, prefix)
	}
}

// DeviceCompiler matches jobs whose descriptor uses the device compiler name.
func DeviceCompiler(name string) Predicate {
	return func(job models.NamedJob) bool {
		return job.Descriptor.Name(models.DeviceCompiler) == name
	}
}

// HostCompiler matches jobs whose descriptor uses the host compiler name.
func HostCompiler(name string) Predicate {
	return func(job models.NamedJob) bool {
		return job.Descriptor.Name(models.HostCompiler) == name
	}
}

// ExecutionType matches jobs whose descriptor has the given execution type.
func ExecutionType(execType string) Predicate {
	return func(job models.NamedJob) bool {
		return job.Descriptor.Version(models.JobExecutionType) == execType
	}
}

// All matches when every predicate matches.
func All(preds ...Predicate) Predicate {
	return func(job models.NamedJob) bool {
		for _, p := range preds {
			if !p(job) {
				return false
			}
		}
		return true
	}
}

// Any matches when at least one predicate matches.
func Any(preds ...Predicate) Predicate {
	return func(job models.NamedJob) bool {
		for _, p := range preds {
			if p(job) {
				return true
			}
		}
		return false
	}
}

// Not inverts p.
func Not(p Predicate) Predicate {
	return func(job models.NamedJob) bool {
		return !p(job)
	}
}

// Either evaluates byDescriptor for jobs whose descriptor names a device
// compiler and byName for all others, including jobs with an empty or partial
// descriptor. A job classified by descriptor ignores its explicit name.
func Either(byDescriptor, byName Predicate) Predicate {
	return func(job models.NamedJob) bool {
		if job.Descriptor.Has(models.DeviceCompiler) {
			return byDescriptor(job)
		}
		return byName(job)
	}
}

// Rule routes matching jobs to Category.
type Rule struct {
	Name     string
	Category models.WaveCategory
	Match    Predicate
}

// RuleSet is an ordered, immutable list of rules. The first matching rule
// decides the category; jobs matching none are unclassified.
type RuleSet struct {
	rules []Rule
}

// NewRuleSet creates a rule set evaluated in the given order.
func NewRuleSet(rules ...Rule) RuleSet {
	return RuleSet{rules: slices.Clone(rules)}
}

// CategoryOf returns the category of the first rule matching job.
func (rs RuleSet) CategoryOf(job models.NamedJob) models.WaveCategory {
	for _, r := range rs.rules {
		if r.Match(job) {
			return r.Category
		}
	}
	return models.WaveUnclassified
}

// DefaultRules returns the rule set of the CI. Order matters: the clang rule
// must exclude clang-cuda, which is a runtime job.
func DefaultRules() RuleSet {
	return NewRuleSet(
		Rule{
			Name:     "compile-only",
			Category: models.WaveCompileOnly,
			Match: Either(
				ExecutionType(models.ExecutionCompileOnly),
				NameContains("_compile_only"),
			),
		},
		Rule{
			// clang without the CUDA backend is only built
			Name:     "clang",
			Category: models.WaveCompileOnly,
			Match: Either(
				DeviceCompiler(models.Clang),
				All(NamePrefix("linux_clang"), Not(NamePrefix("linux_clang-cuda"))),
			),
		},
		Rule{
			Name:     "hipcc",
			Category: models.WaveRuntime,
			Match:    Either(DeviceCompiler(models.HIPCC), NamePrefix("linux_hipcc")),
		},
		Rule{
			Name:     "nvcc-gcc",
			Category: models.WaveRuntime,
			Match: Either(
				All(DeviceCompiler(models.NVCC), HostCompiler(models.GCC)),
				All(NamePrefix("linux_nvcc"), NameContains("gcc")),
			),
		},
		Rule{
			Name:     "nvcc-clang",
			Category: models.WaveRuntime,
			Match: Either(
				All(DeviceCompiler(models.NVCC), HostCompiler(models.Clang)),
				All(NamePrefix("linux_nvcc"), NameContains("clang")),
			),
		},
		Rule{
			Name:     "clang-cuda",
			Category: models.WaveRuntime,
			Match:    Either(DeviceCompiler(models.ClangCUDA), NamePrefix("linux_clang-cuda")),
		},
		Rule{
			Name:     "nvhpc",
			Category: models.WaveRuntime,
			Match:    Either(DeviceCompiler(models.NVHPC), NamePrefix("linux_nvhpc")),
		},
	)
}

// Classification holds the jobs of each category in input order.
type Classification map[models.WaveCategory][]models.NamedJob

// Classify assigns every job to exactly one category. Every category of
// models.WaveCategories is present in the result, possibly empty. Rules
// pointing at a category outside that list route to unclassified.
func (rs RuleSet) Classify(jobs []models.NamedJob) Classification {
	groups := make(Classification, len(models.WaveCategories))
	for _, c := range models.WaveCategories {
		groups[c] = []models.NamedJob{}
	}
	for _, job := range jobs {
		c := rs.CategoryOf(job)
		if _, known := groups[c]; !known {
			c = models.WaveUnclassified
		}
		groups[c] = append(groups[c], job)
	}
	return groups
}

// Counts returns the number of jobs per category.
func (c Classification) Counts() map[models.WaveCategory]int {
	counts := make(map[models.WaveCategory]int, len(c))
	for cat, jobs := range c {
		counts[cat] = len(jobs)
	}
	return counts
}
