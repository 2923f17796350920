package sorter

// indexBuffers is the pair of index sequences the radix passes ping-pong
// between. front holds the latest permutation once valid is set.
type indexBuffers struct {
	front []uint32
	back  []uint32
	size  int
	valid bool
}

// resize makes both buffers n long, reusing their backing arrays when they
// are large enough. Buffers only ever grow. Any held permutation is dropped.
func (b *indexBuffers) resize(n int) {
	b.valid = false
	b.front = grow(b.front, n)
	b.back = grow(b.back, n)
	b.size = n
}

func grow(buf []uint32, n int) []uint32 {
	if cap(buf) < n {
		return make([]uint32, n)
	}
	return buf[:n]
}

func (b *indexBuffers) release() {
	*b = indexBuffers{}
}

func (b *indexBuffers) current() ([]uint32, error) {
	if !b.valid {
		return nil, ErrNotSorted
	}
	return b.front, nil
}

func (b *indexBuffers) swap() {
	b.front, b.back = b.back, b.front
}

// identity fills front with 0..size-1 and marks it valid.
func (b *indexBuffers) identity() {
	for i := range b.front {
		b.front[i] = uint32(i)
	}
	b.valid = true
}
