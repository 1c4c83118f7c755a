package config

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/spachava753/jobgen/internal/models"
)

// DefaultFileName is the config file looked up when none is given.
const DefaultFileName = "jobgen.toml"

// DefaultScript is the command list of a generated job.
var DefaultScript = []string{
	"source ./script/gitlabci/print_env.sh",
	"source ./script/gitlab_ci_run.sh",
}

// DefaultVariables returns the global variables of every document. The CPU
// backends enabled here are the ones each job builds unless its own variables
// say otherwise.
func DefaultVariables() map[string]string {
	return map[string]string{
		"ALPAKA_CI_OS_NAME":                     "Linux",
		"alpaka_ACC_CPU_B_SEQ_T_SEQ_ENABLE":     "ON",
		"alpaka_ACC_CPU_B_SEQ_T_THREADS_ENABLE": "ON",
		"alpaka_ACC_CPU_B_SEQ_T_FIBERS_ENABLE":  "OFF",
		"alpaka_ACC_CPU_B_TBB_T_SEQ_ENABLE":     "OFF",
		"alpaka_ACC_CPU_B_OMP2_T_SEQ_ENABLE":    "ON",
		"alpaka_ACC_CPU_B_SEQ_T_OMP2_ENABLE":    "ON",
		"alpaka_ACC_ANY_BT_OMP5_ENABLE":         "OFF",
		"alpaka_ACC_ANY_BT_OACC_ENABLE":         "OFF",
		models.CUDABackend:                      "OFF",
		"alpaka_ACC_GPU_CUDA_ONLY_MODE":         "OFF",
		models.HIPBackend:                       "OFF",
		"alpaka_ACC_GPU_HIP_ONLY_MODE":          "OFF",
		"ALPAKA_CI_ANALYSIS":                    "OFF",
		"ALPAKA_CI_RUN_TESTS":                   "ON",
		"alpaka_CI":                             "GITLAB",
		"ALPAKA_CI_SANITIZERS":                  "",
		"ALPAKA_CI_INSTALL_CUDA":                "OFF",
		"ALPAKA_CI_INSTALL_HIP":                 "OFF",
		"ALPAKA_CI_CMAKE_DIR":                   "$HOME/cmake",
		"BOOST_ROOT":                            "$HOME/boost",
		"ALPAKA_CI_BOOST_LIB_DIR":               "$HOME/boost_libs",
		"ALPAKA_CI_CUDA_DIR":                    "$HOME/cuda",
		"ALPAKA_CI_HIP_ROOT_DIR":                "$HOME/hip",
	}
}

// DefaultConfig returns a GeneratorConfig with default values.
func DefaultConfig() models.GeneratorConfig {
	return models.GeneratorConfig{
		Script:      append([]string(nil), DefaultScript...),
		Concurrency: 4,
		Variables:   DefaultVariables(),
	}
}

// LoadConfig loads and parses a jobgen.toml file from the given filesystem.
// Relative template paths are kept relative to fsys.
func LoadConfig(fsys fs.FS, name string) (models.GeneratorConfig, error) {
	cfg := DefaultConfig()
	// [variables] extends the defaults key by key.
	cfg.Variables = nil

	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return cfg, fmt.Errorf("reading %s: %w", name, err)
	}

	md, err := toml.Decode(string(data), &cfg)
	if err != nil {
		return cfg, fmt.Errorf("parsing %s: %w", name, err)
	}

	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		return cfg, fmt.Errorf("parsing %s: unknown keys: %s", name, strings.Join(keys, ", "))
	}

	// Negative wave sizes are legal and clamped during distribution.
	for category := range cfg.Waves {
		if _, ok := models.ParseWaveCategory(string(category)); !ok {
			return cfg, fmt.Errorf("waves.%s: unknown wave category", category)
		}
	}

	if md.IsDefined("concurrency") && cfg.Concurrency <= 0 {
		return cfg, fmt.Errorf("concurrency must be positive, got %d", cfg.Concurrency)
	}
	if len(cfg.Script) == 0 {
		cfg.Script = append([]string(nil), DefaultScript...)
	}
	cfg.Variables = mergeVariables(DefaultVariables(), cfg.Variables)

	return cfg, nil
}

// LoadConfigFile loads a config file from disk. The template path of the
// result is resolved against the directory of path.
func LoadConfigFile(path string) (models.GeneratorConfig, error) {
	dir, name := filepath.Split(path)
	if dir == "" {
		dir = "."
	}

	cfg, err := LoadConfig(os.DirFS(dir), name)
	if err != nil {
		return cfg, err
	}

	if cfg.Template != "" && !filepath.IsAbs(cfg.Template) {
		cfg.Template = filepath.Join(dir, cfg.Template)
	}
	return cfg, nil
}

// MergeWaves returns a new WaveSize holding base overlaid with overrides.
// Neither input is modified.
func MergeWaves(base, overrides models.WaveSize) models.WaveSize {
	merged := make(models.WaveSize, len(base)+len(overrides))
	for c, v := range base {
		merged[c] = v
	}
	for c, v := range overrides {
		merged[c] = v
	}
	return merged
}

func mergeVariables(base, overrides map[string]string) map[string]string {
	for k, v := range overrides {
		base[k] = v
	}
	return base
}
