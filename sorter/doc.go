// Package sorter computes index permutations that order numeric slices
// without reordering (or writing to) the slices themselves.
//
// Inputs of 8, 16 and 32 bit integers and of float32 are sorted with a
// least-significant-byte radix sort over 256-bucket histograms. Inputs shorter
// than the Sorter's threshold, and element types the radix path does not
// handle (float64, 64-bit and platform-sized integers), go through a stable
// insertion sort instead.
//
// A Sorter owns its index buffers and scratch tables and reuses them across
// calls, growing them when a larger input arrives. It is not safe for
// concurrent use; give each goroutine its own Sorter.
//
//	s := sorter.New()
//	perm := sorter.Sort(s, []float32{1.5, -2.5, 0}, false)
//	// perm == [1 2 0]
//
// Floating point order is not fully specified. NaNs land wherever their bit
// pattern or comparisons put them. Negative and positive zero compare equal,
// yet the radix path places every -0 before every +0 while the insertion
// path keeps them in input order, so for columns holding both zeros the two
// paths may return different permutations.
//
// The slice returned by the sort functions and by Results belongs to the
// Sorter and is overwritten by the next sort. Copy it to keep it.
package sorter
