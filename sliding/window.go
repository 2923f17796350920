package sliding

import (
	"math"
	"time"

	"github.com/alphadose/haxmap"
	"github.com/thomcc/radix-sorter/ingestor"
)

// --- Sliding Window ---

// ValueStat tracks how often a value occurs in the window.
type ValueStat struct {
	First time.Time
	Last  time.Time
	Count int
}

// Window keeps the most recent samples, bounded by age and count, together
// with a tally of the distinct values among them.
type Window struct {
	Queue      []ingestor.Sample
	Tally      *haxmap.Map[uint64, ValueStat] // keyed by tallyKey(value)
	timeLimit  time.Duration
	maxEntries int
	now        func() time.Time
}

func NewWindow(window time.Duration, maxEntries int) *Window {
	hint := maxEntries
	if hint <= 0 || hint > 1<<21 {
		hint = 1 << 21
	}
	return &Window{
		Queue:      make([]ingestor.Sample, 0),
		Tally:      haxmap.New[uint64, ValueStat](uintptr(hint)),
		timeLimit:  window,
		maxEntries: maxEntries,
		now:        time.Now,
	}
}

// tallyKey folds -0 into +0 and every NaN into one key, so the tally counts
// numerically distinct values.
func tallyKey(v float64) uint64 {
	switch {
	case v == 0:
		return 0
	case math.IsNaN(v):
		return math.Float64bits(math.NaN())
	}
	return math.Float64bits(v)
}

func insertIntoTally(m *haxmap.Map[uint64, ValueStat], s ingestor.Sample) {
	key := tallyKey(s.Value)
	stat, exists := m.Get(key)
	if !exists {
		stat = ValueStat{First: s.Timestamp}
	}
	stat.Last = s.Timestamp
	stat.Count++
	m.Set(key, stat)
}

func deleteFromTally(m *haxmap.Map[uint64, ValueStat], s ingestor.Sample) {
	key := tallyKey(s.Value)
	stat, exists := m.Get(key)
	if !exists {
		return
	}
	stat.Count--
	if stat.Count <= 0 {
		m.Del(key)
		return
	}
	m.Set(key, stat)
}

func (w *Window) Insert(samples []ingestor.Sample) {
	w.Queue = append(w.Queue, samples...)
	for _, s := range samples {
		insertIntoTally(w.Tally, s)
	}
}

// DropOld evicts samples older than the time limit, then the oldest samples
// beyond the size limit. Samples are assumed to arrive in time order.
func (w *Window) DropOld() {
	cutoff := w.now().Add(-w.timeLimit)
	idx := 0
	for idx < len(w.Queue) && w.Queue[idx].Timestamp.Before(cutoff) {
		deleteFromTally(w.Tally, w.Queue[idx])
		idx++
	}

	remainingLen := len(w.Queue) - idx
	if w.maxEntries > 0 && remainingLen > w.maxEntries {
		toDelete := remainingLen - w.maxEntries
		for i := 0; i < toDelete; i++ {
			deleteFromTally(w.Tally, w.Queue[idx+i])
		}
		idx += toDelete
	}

	if idx > 0 {
		// copy so the evicted prefix can be collected
		w.Queue = append([]ingestor.Sample(nil), w.Queue[idx:]...)
	}
}

func (w *Window) Update(samples []ingestor.Sample) {
	w.Insert(samples)
	w.DropOld()
}

// Values returns the values currently in the window, oldest first.
func (w *Window) Values() []float64 {
	out := make([]float64, len(w.Queue))
	for i, s := range w.Queue {
		out[i] = s.Value
	}
	return out
}

func (w *Window) Len() int {
	return len(w.Queue)
}

// Distinct returns the number of distinct values in the window.
func (w *Window) Distinct() int {
	return int(w.Tally.Len())
}

// Stat returns the tally entry for v.
func (w *Window) Stat(v float64) (ValueStat, bool) {
	return w.Tally.Get(tallyKey(v))
}

// Mode returns the most frequent value in the window and its count. Ties go
// to the smaller value. The count is 0 for an empty window.
func (w *Window) Mode() (float64, int) {
	var best float64
	count := 0
	w.Tally.ForEach(func(key uint64, stat ValueStat) bool {
		v := math.Float64frombits(key)
		if stat.Count > count || (stat.Count == count && v < best) {
			best, count = v, stat.Count
		}
		return true
	})
	return best, count
}
