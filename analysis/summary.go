package analysis

import (
	"math"

	"github.com/thomcc/radix-sorter/ingestor"
	"github.com/thomcc/radix-sorter/output"
	"golang.org/x/exp/slices"
)

// Summarize reads order statistics from col through its ascending
// permutation. NaNs are counted but left out of every statistic. It returns
// nil when no comparable values remain.
//
// A NaN stops the comparison sort from moving values past it, so when NaNs
// are present the remaining indices are ranked again.
func Summarize(col *ingestor.Column, perm []uint32) *output.Summary {
	ranked := perm
	nans := 0
	if col.Type == ingestor.F32 || col.Type == ingestor.F64 {
		for _, idx := range perm {
			if col.IsNaN(int(idx)) {
				nans++
			}
		}
		if nans > 0 {
			ranked = make([]uint32, 0, len(perm)-nans)
			for _, idx := range perm {
				if !col.IsNaN(int(idx)) {
					ranked = append(ranked, idx)
				}
			}
			slices.SortStableFunc(ranked, func(a, b uint32) bool {
				return col.Float(int(a)) < col.Float(int(b))
			})
		}
	}

	n := len(ranked)
	if n == 0 {
		return nil
	}

	at := func(rank int) string {
		return col.Format(int(ranked[rank]))
	}

	s := &output.Summary{
		Min:    at(0),
		Max:    at(n - 1),
		Median: at((n - 1) / 2),
		P90:    at(nearestRank(0.90, n)),
		P99:    at(nearestRank(0.99, n)),
		NaNs:   nans,
	}

	distinct, run, longest := 1, 1, 1
	for r := 1; r < n; r++ {
		if col.Equal(int(ranked[r-1]), int(ranked[r])) {
			run++
			if run > longest {
				longest = run
			}
			continue
		}
		distinct++
		run = 1
	}
	s.Distinct = distinct
	s.LongestRun = longest
	return s
}

// nearestRank returns the zero-based rank of the p-th percentile of n values.
func nearestRank(p float64, n int) int {
	r := int(math.Ceil(p*float64(n))) - 1
	if r < 0 {
		return 0
	}
	if r >= n {
		return n - 1
	}
	return r
}
