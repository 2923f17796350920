package sorter

import (
	"bytes"
	"math"
	"math/rand"
	"testing"
	"unsafe"
)

// checkPermutation fails the test unless perm is a bijection on [0, len(data))
// that reads data in ascending order, with bit-identical equal values kept in
// input order. Order is not checked across NaNs.
func checkPermutation[T Number](t *testing.T, data []T, perm []uint32) {
	t.Helper()
	checkOrder(t, data, perm, true)
}

// checkOrdered is checkPermutation without the stability requirement.
func checkOrdered[T Number](t *testing.T, data []T, perm []uint32) {
	t.Helper()
	checkOrder(t, data, perm, false)
}

func checkOrder[T Number](t *testing.T, data []T, perm []uint32, stable bool) {
	t.Helper()

	if len(perm) != len(data) {
		t.Fatalf("permutation length %d, want %d", len(perm), len(data))
	}

	seen := make([]bool, len(data))
	for i, idx := range perm {
		if int(idx) >= len(data) {
			t.Fatalf("index %d at rank %d out of range", idx, i)
		}
		if seen[idx] {
			t.Fatalf("duplicate index %d at rank %d", idx, i)
		}
		seen[idx] = true

		if i == 0 {
			continue
		}
		prev, cur := data[perm[i-1]], data[idx]
		if cur < prev {
			t.Fatalf("not sorted at rank %d: %v < %v", i, cur, prev)
		}
		if stable && prev == cur && sameBits(prev, cur) && perm[i-1] > idx {
			t.Fatalf("unstable at rank %d: index %d before %d for equal value %v", i, perm[i-1], idx, cur)
		}
	}
}

func sameBits[T Number](a, b T) bool {
	return math.Float64bits(float64(a)) == math.Float64bits(float64(b))
}

// rawBytes views data as its in-memory bytes.
func rawBytes[T Number](data []T) []byte {
	if len(data) == 0 {
		return nil
	}
	var zero T
	return unsafe.Slice((*byte)(unsafe.Pointer(&data[0])), len(data)*int(unsafe.Sizeof(zero)))
}

// checkUnchanged fails the test unless data holds exactly the bytes of want.
func checkUnchanged[T Number](t *testing.T, data, want []T) {
	t.Helper()
	if !bytes.Equal(rawBytes(data), rawBytes(want)) {
		t.Fatalf("input was modified by sorting")
	}
}

func clone[T any](s []T) []T {
	return append([]T(nil), s...)
}

func randomInts[T Number](rng *rand.Rand, n int, lo, hi int64) []T {
	data := make([]T, n)
	for i := range data {
		data[i] = T(lo + rng.Int63n(hi-lo+1))
	}
	return data
}

func randomFloat32s(rng *rand.Rand, n int) []float32 {
	data := make([]float32, n)
	for i := range data {
		data[i] = (rng.Float32() - 0.5) * 1000
	}
	return data
}
