package sorter

import (
	"fmt"
	"math"

	"golang.org/x/exp/constraints"
)

// DefaultThreshold is the element count below which the insertion sort is
// used unless the radix path is forced.
const DefaultThreshold = 32

// Path is the algorithm that produced a permutation.
type Path uint8

const (
	PathNone Path = iota
	PathInsertion
	PathRadix
)

func (p Path) String() string {
	switch p {
	case PathInsertion:
		return "insertion"
	case PathRadix:
		return "radix"
	}
	return "none"
}

// Stats describes the most recent sort.
type Stats struct {
	Path  Path
	Shape Shape
	Count int
	// Passes is the number of counting passes that ran; Skipped the number
	// elided because all keys shared that byte.
	Passes  int
	Skipped int
}

// Sorter computes index permutations, reusing its buffers between calls.
type Sorter struct {
	threshold int
	buffers   indexBuffers
	keys      []uint32
	hist      [maxWidth]Histogram
	link      [256]uint32
	stats     Stats
}

// Option configures a Sorter.
type Option func(*Sorter)

// WithThreshold sets the element count below which insertion sort is used.
// Negative values are treated as zero.
func WithThreshold(n int) Option {
	return func(s *Sorter) {
		if n < 0 {
			n = 0
		}
		s.threshold = n
	}
}

// WithCapacity preallocates buffers for n elements.
func WithCapacity(n int) Option {
	return func(s *Sorter) {
		if n > 0 {
			s.SetSize(n)
		}
	}
}

// New returns an empty Sorter.
func New(opts ...Option) *Sorter {
	s := &Sorter{threshold: DefaultThreshold}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Threshold returns the insertion sort cutoff.
func (s *Sorter) Threshold() int {
	return s.threshold
}

// SetSize prepares the index buffers for n elements and drops any held
// permutation. Existing storage is reused when it is large enough.
func (s *Sorter) SetSize(n int) {
	if n < 0 || uint64(n) > math.MaxUint32 {
		panic(fmt.Sprintf("sorter: size %d out of range", n))
	}
	s.buffers.resize(n)
}

// Release drops every buffer the Sorter holds.
func (s *Sorter) Release() {
	s.buffers.release()
	s.keys = nil
	s.stats = Stats{}
}

// Capacity returns the number of elements the buffers hold without
// reallocating.
func (s *Sorter) Capacity() int {
	return cap(s.buffers.front)
}

// IsSorted reports whether a valid permutation is held.
func (s *Sorter) IsSorted() bool {
	return s.buffers.valid
}

// Results returns the permutation from the last sort, or ErrNotSorted.
func (s *Sorter) Results() ([]uint32, error) {
	return s.buffers.current()
}

// Stats returns statistics about the last sort.
func (s *Sorter) Stats() Stats {
	return s.stats
}

// Histograms returns a copy of the byte histograms built by the last sort,
// least significant offset first, or nil if that sort did not use the radix
// path.
func (s *Sorter) Histograms() []Histogram {
	if s.stats.Path != PathRadix {
		return nil
	}
	out := make([]Histogram, s.stats.Shape.Width)
	copy(out, s.hist[:])
	return out
}

func (s *Sorter) begin(n int, sh Shape, path Path) {
	s.SetSize(n)
	s.stats = Stats{Path: path, Shape: sh, Count: n}
}

func (s *Sorter) keyScratch(n int) []uint32 {
	if cap(s.keys) < n {
		s.keys = make([]uint32, n)
	}
	return s.keys[:n]
}

// Sort returns the permutation that orders data ascending, ties kept in
// input order. Element types without a radix path (float64, int64, uint64,
// int, uint) always use insertion sort, even when forceRadix is set;
// radixable inputs shorter than the threshold use it unless forceRadix is set.
//
// data is only read. An empty input returns an empty permutation and leaves
// the Sorter untouched.
func Sort[T Number](s *Sorter, data []T, forceRadix bool) []uint32 {
	if len(data) == 0 {
		return []uint32{}
	}

	sh := ShapeOf[T]()
	if sh.Radixable() && (forceRadix || len(data) >= s.threshold) {
		return sortRadix(s, data, sh)
	}
	return sortInsertion(s, data, sh)
}

// SortUnsigned sorts 8, 16 or 32 bit unsigned integers.
func SortUnsigned[T constraints.Unsigned](s *Sorter, data []T, forceRadix bool) ([]uint32, error) {
	if sh := ShapeOf[T](); !sh.Radixable() {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedWidth, sh)
	}
	return Sort(s, data, forceRadix), nil
}

// SortSigned sorts 8, 16 or 32 bit signed integers.
func SortSigned[T constraints.Signed](s *Sorter, data []T, forceRadix bool) ([]uint32, error) {
	if sh := ShapeOf[T](); !sh.Radixable() {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedWidth, sh)
	}
	return Sort(s, data, forceRadix), nil
}

// SortFloat32 sorts float32 values. NaNs end up in a deterministic but
// unspecified position.
func SortFloat32[T ~float32](s *Sorter, data []T, forceRadix bool) []uint32 {
	return Sort(s, data, forceRadix)
}

// Refine re-sorts data starting from the permutation the Sorter already
// holds, which is cheap when data has changed little since that sort.
func Refine[T Number](s *Sorter, data []T) ([]uint32, error) {
	idx, err := s.buffers.current()
	if err != nil {
		return nil, err
	}
	if len(idx) != len(data) {
		return nil, fmt.Errorf("%w: holding %d indices, got %d elements", ErrSizeMismatch, len(idx), len(data))
	}
	s.stats = Stats{Path: PathInsertion, Shape: ShapeOf[T](), Count: len(data)}
	insertionSort(idx, data, false)
	return idx, nil
}

func sortInsertion[T Number](s *Sorter, data []T, sh Shape) []uint32 {
	s.begin(len(data), sh, PathInsertion)
	insertionSort(s.buffers.front, data, true)
	s.buffers.valid = true
	return s.buffers.front
}

func sortRadix[T Number](s *Sorter, data []T, sh Shape) []uint32 {
	n := len(data)
	s.begin(n, sh, PathRadix)
	keys := s.keyScratch(n)
	loadKeys(keys, data, sh)
	buildHistograms(keys, sh.Width, &s.hist)
	s.radix(keys, sh.Width)
	return s.buffers.front
}
