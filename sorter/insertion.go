package sorter

// insertionSort orders idx so that data read through it ascends. With fresh
// set, idx is first reset to identity order; otherwise the order already held
// in idx is refined in place. Strict less-than keeps equal elements in their
// current relative order.
func insertionSort[T Number](idx []uint32, data []T, fresh bool) {
	if fresh {
		for i := range idx {
			idx[i] = uint32(i)
		}
	}

	for i := 1; i < len(idx); i++ {
		rank := idx[i]
		key := data[rank]
		j := i
		for j > 0 && key < data[idx[j-1]] {
			idx[j] = idx[j-1]
			j--
		}
		if j != i {
			idx[j] = rank
		}
	}
}
