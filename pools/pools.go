package pools

import (
	"strings"
	"sync"

	"github.com/thomcc/radix-sorter/ingestor"
	"github.com/thomcc/radix-sorter/sorter"
)

// MaxPooledSorterCapacity is the largest buffer capacity a Sorter may keep
// when returned to a pool. Larger buffers are released.
const MaxPooledSorterCapacity = 1 << 22

// Sorters hands out Sorters that share one insertion-sort threshold.
// A Sorter must not be used after it is returned.
type Sorters struct {
	pool      sync.Pool
	threshold int
}

// NewSorters creates a pool of Sorters using the given threshold.
func NewSorters(threshold int) *Sorters {
	p := &Sorters{threshold: threshold}
	p.pool.New = func() interface{} {
		return sorter.New(sorter.WithThreshold(p.threshold))
	}
	return p
}

// Threshold returns the threshold pooled Sorters are created with.
func (p *Sorters) Threshold() int {
	return p.threshold
}

// Get returns a Sorter from the pool.
func (p *Sorters) Get() *sorter.Sorter {
	return p.pool.Get().(*sorter.Sorter)
}

// Put returns s to the pool, dropping its buffers if they grew past
// MaxPooledSorterCapacity.
func (p *Sorters) Put(s *sorter.Sorter) {
	if s.Capacity() > MaxPooledSorterCapacity {
		s.Release()
	}
	p.pool.Put(s)
}

// GlobalPools provides centralized memory pooling for the live pipeline
type GlobalPools struct {
	SampleSlices sync.Pool
	Builders     sync.Pool
}

// Pools is the global instance of memory pools
var Pools = &GlobalPools{
	SampleSlices: sync.Pool{
		New: func() interface{} {
			slice := make([]ingestor.Sample, 0, 1024)
			return &slice
		},
	},
	Builders: sync.Pool{
		New: func() interface{} {
			builder := &strings.Builder{}
			builder.Grow(256)
			return builder
		},
	},
}

// GetSampleSlice gets a sample slice from the pool and resets it
func (gp *GlobalPools) GetSampleSlice() []ingestor.Sample {
	slicePtr := gp.SampleSlices.Get().(*[]ingestor.Sample)
	*slicePtr = (*slicePtr)[:0] // Reset length while keeping capacity
	return *slicePtr
}

// ReturnSampleSlice returns a sample slice to the pool
func (gp *GlobalPools) ReturnSampleSlice(slice []ingestor.Sample) {
	if cap(slice) < 8192 { // Prevent memory bloat
		emptySlice := slice[:0]
		gp.SampleSlices.Put(&emptySlice)
	}
}

// GetBuilder gets a string builder from the pool and resets it
func (gp *GlobalPools) GetBuilder() *strings.Builder {
	builder := gp.Builders.Get().(*strings.Builder)
	builder.Reset()
	return builder
}

// ReturnBuilder returns a string builder to the pool
func (gp *GlobalPools) ReturnBuilder(builder *strings.Builder) {
	if builder.Cap() < 64*1024 {
		gp.Builders.Put(builder)
	}
}

// Reset clears all pools (useful for testing)
func (gp *GlobalPools) Reset() {
	gp.SampleSlices = sync.Pool{New: gp.SampleSlices.New}
	gp.Builders = sync.Pool{New: gp.Builders.New}
}
