package sorter

import "fmt"

// maxWidth is the widest key, in bytes, the radix path handles.
const maxWidth = 4

// Histogram counts, for one byte offset of the keys, how many keys hold each
// byte value.
type Histogram [256]uint32

// Occupied returns the number of non-empty buckets.
func (h *Histogram) Occupied() int {
	n := 0
	for _, c := range h {
		if c != 0 {
			n++
		}
	}
	return n
}

// buildHistograms resets the first width tables of hist and fills them in
// one pass over keys. Offset 0 is the least significant byte.
func buildHistograms(keys []uint32, width int, hist *[maxWidth]Histogram) {
	for j := 0; j < width; j++ {
		hist[j] = Histogram{}
	}

	h0, h1, h2, h3 := &hist[0], &hist[1], &hist[2], &hist[3]
	switch width {
	case 1:
		for _, k := range keys {
			h0[byte(k)]++
		}
	case 2:
		for _, k := range keys {
			h0[byte(k)]++
			h1[byte(k>>8)]++
		}
	case 4:
		for _, k := range keys {
			h0[byte(k)]++
			h1[byte(k>>8)]++
			h2[byte(k>>16)]++
			h3[byte(k>>24)]++
		}
	default:
		panic(fmt.Sprintf("sorter: no histogram layout for width %d", width))
	}
}
