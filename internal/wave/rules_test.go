package wave

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/spachava753/jobgen/internal/models"
)

func named(names ...string) []models.NamedJob {
	jobs := make([]models.NamedJob, 0, len(names))
	for _, n := range names {
		jobs = append(jobs, models.NamedJob{Name: n})
	}
	return jobs
}

func names(jobs []models.NamedJob) []string {
	out := make([]string, 0, len(jobs))
	for _, j := range jobs {
		out = append(out, j.Name)
	}
	return out
}

func described(name string, kv ...string) models.NamedJob {
	desc := models.JobDescriptor{}
	for i := 0; i+2 < len(kv); i += 3 {
		desc[kv[i]] = models.Software{Name: kv[i+1], Version: kv[i+2]}
	}
	return models.NamedJob{Name: name, Descriptor: desc}
}

func TestClassify_ByName(t *testing.T) {
	jobs := named(
		"linux_gcc9_compile_only",
		"linux_gcc9",
		"linux_hipcc5.0",
		"linux_nvcc11.0-gcc9",
		"linux_foo_custom",
	)

	got := DefaultRules().Classify(jobs)

	want := map[models.WaveCategory][]string{
		models.WaveCompileOnly:  {"linux_gcc9_compile_only"},
		models.WaveRuntime:      {"linux_hipcc5.0", "linux_nvcc11.0-gcc9"},
		models.WaveUnclassified: {"linux_gcc9", "linux_foo_custom"},
	}
	for _, c := range models.WaveCategories {
		if diff := cmp.Diff(want[c], names(got[c])); diff != "" {
			t.Errorf("category %s mismatch (-want +got):\n%s", c, diff)
		}
	}
}

func TestCategoryOf_DefaultRules(t *testing.T) {
	tests := []struct {
		name string
		job  models.NamedJob
		want models.WaveCategory
	}{
		{"clang by name", models.NamedJob{Name: "linux_clang14_cmake3.22.3"}, models.WaveCompileOnly},
		{"clang-cuda by name", models.NamedJob{Name: "linux_clang-cuda14-cuda11.5"}, models.WaveRuntime},
		{"nvcc clang by name", models.NamedJob{Name: "linux_nvcc11.8-clang14"}, models.WaveRuntime},
		{"nvhpc by name", models.NamedJob{Name: "linux_nvhpc23.1"}, models.WaveRuntime},
		{"compile only marker beats runtime prefix", models.NamedJob{Name: "linux_hipcc5.0_compile_only_cmake3.22.3"}, models.WaveCompileOnly},
		{"nvcc without known host", models.NamedJob{Name: "linux_nvcc11.0-icpx"}, models.WaveUnclassified},
		{
			"compile only descriptor",
			described("x", models.DeviceCompiler, "nvcc", "11.0", models.HostCompiler, "gcc", "9",
				models.JobExecutionType, models.JobExecutionType, models.ExecutionCompileOnly),
			models.WaveCompileOnly,
		},
		{
			"clang descriptor",
			described("x", models.DeviceCompiler, "clang", "15"),
			models.WaveCompileOnly,
		},
		{
			"clang-cuda descriptor",
			described("x", models.DeviceCompiler, "clang-cuda", "15"),
			models.WaveRuntime,
		},
		{
			"hipcc descriptor",
			described("x", models.DeviceCompiler, "hipcc", "5.1"),
			models.WaveRuntime,
		},
		{
			"nvcc gcc descriptor",
			described("x", models.DeviceCompiler, "nvcc", "12.0", models.HostCompiler, "gcc", "11"),
			models.WaveRuntime,
		},
		{
			"nvcc clang descriptor",
			described("x", models.DeviceCompiler, "nvcc", "12.0", models.HostCompiler, "clang", "14"),
			models.WaveRuntime,
		},
		{
			"nvhpc descriptor",
			described("x", models.DeviceCompiler, "nvhpc", "23.1"),
			models.WaveRuntime,
		},
		{
			"gcc runtime descriptor",
			described("linux_clang_but_gcc", models.DeviceCompiler, "gcc", "12",
				models.JobExecutionType, models.JobExecutionType, models.ExecutionRuntime),
			models.WaveUnclassified,
		},
	}

	rules := DefaultRules()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := rules.CategoryOf(tt.job); got != tt.want {
				t.Errorf("CategoryOf(%q) = %s, want %s", tt.job.Name, got, tt.want)
			}
		})
	}
}

func TestCategoryOf_FirstMatchWins(t *testing.T) {
	clangFirst := NewRuleSet(
		Rule{Name: "clang", Category: models.WaveCompileOnly, Match: NamePrefix("linux_clang")},
		Rule{Name: "clang-cuda", Category: models.WaveRuntime, Match: NamePrefix("linux_clang-cuda")},
	)
	cudaFirst := NewRuleSet(
		Rule{Name: "clang-cuda", Category: models.WaveRuntime, Match: NamePrefix("linux_clang-cuda")},
		Rule{Name: "clang", Category: models.WaveCompileOnly, Match: NamePrefix("linux_clang")},
	)

	job := models.NamedJob{Name: "linux_clang-cuda14"}
	if got := clangFirst.CategoryOf(job); got != models.WaveCompileOnly {
		t.Errorf("clangFirst: got %s, want %s", got, models.WaveCompileOnly)
	}
	if got := cudaFirst.CategoryOf(job); got != models.WaveRuntime {
		t.Errorf("cudaFirst: got %s, want %s", got, models.WaveRuntime)
	}
}

func TestClassify_Totality(t *testing.T) {
	jobs := named(
		"linux_nvcc11.0-gcc9", "linux_clang9", "a", "linux_hipcc5.3",
		"linux_clang-cuda10-cuda11.0", "b", "linux_gcc12_compile_only", "linux_nvhpc22.1",
	)

	got := DefaultRules().Classify(jobs)

	seen := make(map[string]int)
	total := 0
	for _, c := range models.WaveCategories {
		for _, j := range got[c] {
			seen[j.Name]++
			total++
		}
	}
	if total != len(jobs) {
		t.Errorf("classified %d jobs, want %d", total, len(jobs))
	}
	for _, j := range jobs {
		if seen[j.Name] != 1 {
			t.Errorf("job %s appears %d times", j.Name, seen[j.Name])
		}
	}

	if diff := cmp.Diff([]string{"linux_nvcc11.0-gcc9", "linux_hipcc5.3", "linux_clang-cuda10-cuda11.0", "linux_nvhpc22.1"},
		names(got[models.WaveRuntime])); diff != "" {
		t.Errorf("runtime order mismatch (-want +got):\n%s", diff)
	}
}

func TestClassify_Empty(t *testing.T) {
	got := DefaultRules().Classify(nil)
	for _, c := range models.WaveCategories {
		jobs, ok := got[c]
		if !ok {
			t.Errorf("category %s missing from classification", c)
		}
		if len(jobs) != 0 {
			t.Errorf("category %s has %d jobs, want 0", c, len(jobs))
		}
	}
}

func TestClassify_UnknownCategoryFallsBack(t *testing.T) {
	rules := NewRuleSet(Rule{Name: "nightly", Category: "nightly", Match: NamePrefix("n")})

	got := rules.Classify(named("n1", "x"))

	if diff := cmp.Diff([]string{"n1", "x"}, names(got[models.WaveUnclassified])); diff != "" {
		t.Errorf("unclassified mismatch (-want +got):\n%s", diff)
	}
	if _, ok := got["nightly"]; ok {
		t.Error("unknown category leaked into classification")
	}
}

func TestClassify_DoesNotModifyInput(t *testing.T) {
	jobs := named("linux_hipcc5.0", "linux_clang9")
	before := names(jobs)

	DefaultRules().Classify(jobs)

	if diff := cmp.Diff(before, names(jobs)); diff != "" {
		t.Errorf("input modified (-before +after):\n%s", diff)
	}
}

func TestRuleSet_Immutable(t *testing.T) {
	rules := []Rule{{Name: "a", Category: models.WaveRuntime, Match: NamePrefix("a")}}
	rs := NewRuleSet(rules...)
	rules[0].Category = models.WaveCompileOnly

	if got := rs.CategoryOf(models.NamedJob{Name: "a1"}); got != models.WaveRuntime {
		t.Errorf("rule set shares caller slice, got %s", got)
	}

}

func TestPredicateCombinators(t *testing.T) {
	job := models.NamedJob{Name: "linux_nvcc11.0-gcc9"}

	tests := []struct {
		name string
		pred Predicate
		want bool
	}{
		{"all true", All(NamePrefix("linux_nvcc"), NameContains("gcc")), true},
		{"all false", All(NamePrefix("linux_nvcc"), NameContains("clang")), false},
		{"any", Any(NameContains("clang"), NameContains("gcc")), true},
		{"any none", Any(NameContains("clang"), NameContains("hip")), false},
		{"not", Not(NameContains("clang")), true},
		{"either uses name without descriptor", Either(DeviceCompiler("hipcc"), NamePrefix("linux_nvcc")), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.pred(job); got != tt.want {
				t.Errorf("predicate = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCategoryOf_PartialDescriptorUsesName(t *testing.T) {
	tests := []struct {
		name string
		job  models.NamedJob
		want models.WaveCategory
	}{
		{
			"empty descriptor",
			models.NamedJob{Name: "linux_hipcc5.0", Descriptor: models.JobDescriptor{}},
			models.WaveRuntime,
		},
		{
			"descriptor without device compiler",
			described("linux_nvcc11.0-gcc9", models.CMake, "cmake", "3.22.3"),
			models.WaveRuntime,
		},
		{
			"compile only name with unrelated descriptor",
			described("linux_gcc9_compile_only", models.Ubuntu, "ubuntu", "20.04"),
			models.WaveCompileOnly,
		},
		{
			"clang name with host compiler only",
			described("linux_clang14", models.HostCompiler, "clang", "14"),
			models.WaveCompileOnly,
		},
	}

	rules := DefaultRules()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := rules.CategoryOf(tt.job); got != tt.want {
				t.Errorf("CategoryOf(%q) = %s, want %s", tt.job.Name, got, tt.want)
			}
		})
	}
}

func TestCategoryOf_DescriptorBeatsExplicitName(t *testing.T) {
	// The name claims a CUDA job, the descriptor is a plain gcc build.
	job := described("linux_nvcc11.0-gcc9", models.DeviceCompiler, "gcc", "9", models.HostCompiler, "gcc", "9")

	if got := DefaultRules().CategoryOf(job); got != models.WaveUnclassified {
		t.Errorf("CategoryOf = %s, want %s", got, models.WaveUnclassified)
	}
}
