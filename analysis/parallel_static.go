package analysis

import (
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/thomcc/radix-sorter/config"
	"github.com/thomcc/radix-sorter/output"
	"github.com/thomcc/radix-sorter/pools"
)

// ParallelStaticFromConfig sorts the configured inputs concurrently, one
// worker per CPU at most. Each worker borrows a Sorter from a shared pool.
// Results come back ordered by input name, matching StaticFromConfig.
func ParallelStaticFromConfig(cfg *config.Config) (*output.JSONOutput, []*SortedColumn, error) {
	analysisStart := time.Now()
	jsonOutput := output.NewJSONOutput("static", analysisStart)

	if err := checkStaticConfig(cfg, jsonOutput); err != nil {
		return jsonOutput, nil, err
	}

	sorters := pools.NewSorters(cfg.Global.Threshold)
	opts := SortOptions{ForceRadix: cfg.Global.ForceRadix, IncludePermutation: cfg.Static.IncludePermutation}

	names := cfg.InputNames()
	workChan := make(chan string, len(names))

	numWorkers := runtime.NumCPU()
	if len(names) < numWorkers {
		numWorkers = len(names)
	}

	var wg sync.WaitGroup
	var mu sync.Mutex
	sorted := make([]*SortedColumn, 0, len(names))
	var totals runTotals

	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			s := sorters.Get()
			defer sorters.Put(s)

			for name := range workChan {
				var local runTotals
				sc := processInput(s, name, cfg.StaticInputs[name], opts, jsonOutput, &local)

				mu.Lock()
				if sc != nil {
					sorted = append(sorted, sc)
				}
				totals.add(local)
				mu.Unlock()
			}
		}()
	}

	for _, name := range names {
		workChan <- name
	}
	close(workChan)
	wg.Wait()

	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Result.Name < sorted[j].Result.Name
	})

	finishStatic(cfg, jsonOutput, sorted, totals, analysisStart)
	return jsonOutput, sorted, nil
}
