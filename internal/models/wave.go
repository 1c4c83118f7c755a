package models

import "strconv"

// WaveCategory identifies a group of jobs sharing a scheduling treatment.
type WaveCategory string

const (
	WaveCompileOnly  WaveCategory = "compile_only"
	WaveRuntime      WaveCategory = "runtime"
	WaveUnclassified WaveCategory = "unclassified"
)

// WaveCategories is the fixed emission order of the categories. Stage order in
// the generated pipeline follows it.
var WaveCategories = []WaveCategory{
	WaveCompileOnly,
	WaveRuntime,
	WaveUnclassified,
}

// ParseWaveCategory returns the category named s.
func ParseWaveCategory(s string) (WaveCategory, bool) {
	for _, c := range WaveCategories {
		if string(c) == s {
			return c, true
		}
	}
	return "", false
}

// WaveSize holds the user supplied batch size per category. A missing key
// means the category is not split.
type WaveSize map[WaveCategory]int

// Batch is a contiguous slice of one category's jobs, run as one stage.
type Batch []NamedJob

// WaveMatrix holds the batches of every category in batch index order.
type WaveMatrix map[WaveCategory][]Batch

// StageName returns the stage label of batch index within category.
func StageName(category WaveCategory, index int) string {
	return string(category) + "-stage" + strconv.Itoa(index)
}
