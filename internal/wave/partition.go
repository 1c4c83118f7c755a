package wave

// Partition splits items into consecutive chunks of step elements; the last
// chunk may be shorter. A step below 1 is treated as 1 and an empty input
// yields no chunks. Chunks share the backing array of items.
func Partition[T any](items []T, step int) [][]T {
	step = max(step, 1)
	chunks := make([][]T, 0, (len(items)+step-1)/step)
	for i := 0; i < len(items); i += step {
		end := min(i+step, len(items))
		chunks = append(chunks, items[i:end:end])
	}
	return chunks
}
