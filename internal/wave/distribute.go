// Package wave distributes CI jobs into waves of size-bounded stages.
//
// Jobs are classified into the categories of models.WaveCategories by an
// ordered RuleSet, each category is split into batches of its resolved wave
// size, and every batch becomes one pipeline stage named
// "<category>-stage<index>". No function modifies its inputs.
package wave

import (
	"log/slog"

	"github.com/spachava753/jobgen/internal/models"
)

// Distribute classifies jobs with rules and partitions each category by its
// resolved size. Every category of models.WaveCategories is a key of the
// result; an empty category has no batches.
func Distribute(jobs []models.NamedJob, rules RuleSet, overrides models.WaveSize) models.WaveMatrix {
	groups := rules.Classify(jobs)
	sizes := ResolveSizes(overrides, groups.Counts())

	matrix := make(models.WaveMatrix, len(models.WaveCategories))
	for _, category := range models.WaveCategories {
		chunks := Partition(groups[category], sizes[category])
		batches := make([]models.Batch, 0, len(chunks))
		for _, chunk := range chunks {
			batches = append(batches, models.Batch(chunk))
		}
		matrix[category] = batches

		slog.Debug("distributed wave",
			"category", category,
			"jobs", len(groups[category]),
			"size", sizes[category],
			"batches", len(batches))
	}
	return matrix
}

// Stages returns the stage labels of matrix in emission order.
func Stages(matrix models.WaveMatrix) []string {
	var stages []string
	for _, category := range models.WaveCategories {
		for i := range matrix[category] {
			stages = append(stages, models.StageName(category, i))
		}
	}
	return stages
}

// JobCount returns the number of jobs over all batches of matrix.
func JobCount(matrix models.WaveMatrix) int {
	n := 0
	for _, category := range models.WaveCategories {
		for _, batch := range matrix[category] {
			n += len(batch)
		}
	}
	return n
}
