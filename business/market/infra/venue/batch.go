package venue

import "github.com/matrix-911/Airbitrage/business/market/domain"

// Chunk splits pairs into batches of at most size, preserving order.
// Every connector's Run uses this to respect its SUB_BATCH constant
// (spec.md §4.C: "each handling at most SUB_BATCH pairs").
func Chunk(pairs []domain.Pair, size int) [][]domain.Pair {
	if size <= 0 {
		size = len(pairs)
	}
	if len(pairs) == 0 {
		return nil
	}

	batches := make([][]domain.Pair, 0, (len(pairs)+size-1)/size)
	for i := 0; i < len(pairs); i += size {
		end := i + size
		if end > len(pairs) {
			end = len(pairs)
		}
		batches = append(batches, pairs[i:end])
	}
	return batches
}
