package sorter

import (
	"math/rand"
	"testing"
)

func TestInsertionSortFresh(t *testing.T) {
	tests := []struct {
		name string
		data []int32
		want []uint32
	}{
		{"single", []int32{5}, []uint32{0}},
		{"sorted", []int32{1, 2, 3}, []uint32{0, 1, 2}},
		{"reversed", []int32{3, 2, 1}, []uint32{2, 1, 0}},
		{"duplicates keep order", []int32{2, 1, 2, 1}, []uint32{1, 3, 0, 2}},
		{"negatives", []int32{0, -5, 5, -1}, []uint32{1, 3, 0, 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			idx := make([]uint32, len(tt.data))
			for i := range idx {
				idx[i] = 99 // garbage must be overwritten
			}
			insertionSort(idx, tt.data, true)
			for i := range tt.want {
				if idx[i] != tt.want[i] {
					t.Fatalf("got %v, want %v", idx, tt.want)
				}
			}
		})
	}
}

func TestInsertionSortRefine(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	data := randomInts[int16](rng, 200, -300, 300)

	idx := make([]uint32, len(data))
	insertionSort(idx, data, true)
	checkPermutation(t, data, idx)

	// Nudge a few values and refine the existing order.
	for i := 0; i < 10; i++ {
		data[rng.Intn(len(data))] += int16(rng.Intn(21) - 10)
	}
	insertionSort(idx, data, false)
	checkOrdered(t, data, idx)
}

func TestInsertionSortFloat64(t *testing.T) {
	data := []float64{2.5, -1, 2.5, 0, -1e300}
	idx := make([]uint32, len(data))
	insertionSort(idx, data, true)
	checkPermutation(t, data, idx)
	if idx[0] != 4 {
		t.Errorf("expected -1e300 first, got index %d", idx[0])
	}
}
