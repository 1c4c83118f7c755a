package models

import "testing"

func TestStageName(t *testing.T) {
	tests := []struct {
		category WaveCategory
		index    int
		want     string
	}{
		{WaveCompileOnly, 0, "compile_only-stage0"},
		{WaveRuntime, 3, "runtime-stage3"},
		{WaveUnclassified, 12, "unclassified-stage12"},
	}

	for _, tt := range tests {
		if got := StageName(tt.category, tt.index); got != tt.want {
			t.Errorf("StageName(%s, %d) = %q, want %q", tt.category, tt.index, got, tt.want)
		}
	}
}

func TestParseWaveCategory(t *testing.T) {
	for _, c := range WaveCategories {
		got, ok := ParseWaveCategory(string(c))
		if !ok || got != c {
			t.Errorf("ParseWaveCategory(%q) = %q, %v", c, got, ok)
		}
	}
	if _, ok := ParseWaveCategory("nightly"); ok {
		t.Error("expected unknown category to fail")
	}
}

func TestBackendEnabled(t *testing.T) {
	desc := JobDescriptor{
		CUDABackend: {Name: CUDABackend, Version: "11.0"},
		HIPBackend:  {Name: HIPBackend, Version: "OFF"},
	}
	if !desc.BackendEnabled(CUDABackend) {
		t.Error("expected CUDA backend enabled")
	}
	if desc.BackendEnabled(HIPBackend) {
		t.Error("expected HIP backend disabled")
	}
	if desc.BackendEnabled("alpaka_ACC_ANY_BT_OMP5_ENABLE") {
		t.Error("expected missing backend disabled")
	}
}
