package wave

import "github.com/spachava753/jobgen/internal/models"

// ResolveSizes returns the partition step of every category in counts.
//
// Without an override a category is not split. An override is clamped to
// [0, count], and a resulting 0 becomes 1 so that partitioning always
// advances. The inputs are never modified.
func ResolveSizes(overrides models.WaveSize, counts map[models.WaveCategory]int) map[models.WaveCategory]int {
	sizes := make(map[models.WaveCategory]int, len(counts))
	for category, n := range counts {
		size, ok := overrides[category]
		switch {
		case !ok:
			size = n
		case size < 0:
			size = 0
		case size > n:
			size = n
		}
		sizes[category] = max(size, 1)
	}
	return sizes
}
