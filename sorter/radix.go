package sorter

// radix runs one stable counting pass per byte offset of keys, least
// significant first, leaving the permutation in s.buffers.front.
//
// The histograms in s.hist must already describe keys. A pass whose bucket
// for the first key's byte holds every key cannot change the order, so it is
// skipped without swapping buffers.
func (s *Sorter) radix(keys []uint32, width int) {
	n := uint32(len(keys))
	b := &s.buffers
	link := &s.link
	ran := false

	for j := 0; j < width; j++ {
		h := &s.hist[j]
		shift := uint(8 * j)

		if h[byte(keys[0]>>shift)] == n {
			s.stats.Skipped++
			continue
		}

		link[0] = 0
		for k := 1; k < 256; k++ {
			link[k] = link[k-1] + h[k-1]
		}

		dst := b.back
		if !ran {
			for i, k := range keys {
				d := byte(k >> shift)
				dst[link[d]] = uint32(i)
				link[d]++
			}
		} else {
			for _, idx := range b.front {
				d := byte(keys[idx] >> shift)
				dst[link[d]] = idx
				link[d]++
			}
		}

		b.swap()
		ran = true
		s.stats.Passes++
	}

	if !ran {
		// every key is identical
		b.identity()
		return
	}
	b.valid = true
}
