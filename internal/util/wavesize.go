package util

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spachava753/jobgen/internal/models"
)

// WaveEnvPrefix prefixes the environment variables that override wave sizes,
// e.g. JOBGEN_WAVE_COMPILE_ONLY=4.
const WaveEnvPrefix = "JOBGEN_WAVE_"

// ParseWaveSize converts an override of the form "category=size" (e.g.
// "runtime=3"). Negative sizes are accepted and clamped later.
func ParseWaveSize(s string) (models.WaveCategory, int, error) {
	s = strings.TrimSpace(s)
	name, value, ok := strings.Cut(s, "=")
	if !ok {
		return "", 0, fmt.Errorf("invalid wave size %q: want category=size", s)
	}

	category, ok := models.ParseWaveCategory(strings.ToLower(strings.TrimSpace(name)))
	if !ok {
		return "", 0, fmt.Errorf("invalid wave size %q: unknown wave category %q", s, name)
	}

	size, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return "", 0, fmt.Errorf("invalid wave size %q: %w", s, err)
	}
	return category, size, nil
}

// EnvVarName returns the environment variable overriding category.
func EnvVarName(category models.WaveCategory) string {
	name := strings.ToUpper(string(category))
	name = strings.ReplaceAll(name, "-", "_")
	return WaveEnvPrefix + name
}

// WaveSizesFromEnv reads wave size overrides using lookup (typically
// os.LookupEnv). Unset and empty variables are skipped.
func WaveSizesFromEnv(lookup func(string) (string, bool)) (models.WaveSize, error) {
	sizes := make(models.WaveSize)
	for _, category := range models.WaveCategories {
		key := EnvVarName(category)
		value, ok := lookup(key)
		value = strings.TrimSpace(value)
		if !ok || value == "" {
			continue
		}
		size, err := strconv.Atoi(value)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", key, err)
		}
		sizes[category] = size
	}
	return sizes, nil
}
