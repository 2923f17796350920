package analysis

import (
	"fmt"
	"time"

	"github.com/thomcc/radix-sorter/config"
	"github.com/thomcc/radix-sorter/ingestor"
	"github.com/thomcc/radix-sorter/output"
	"github.com/thomcc/radix-sorter/pools"
	"github.com/thomcc/radix-sorter/sorter"
)

// SortedColumn is a column together with its ascending permutation and the
// result document entry describing the sort.
type SortedColumn struct {
	Column *ingestor.Column
	Perm   []uint32
	Result *output.ColumnResult
}

// SortOptions controls how SortColumn runs.
type SortOptions struct {
	ForceRadix         bool
	IncludePermutation bool
}

// SortColumn sorts col with s and describes the outcome. The permutation is
// copied out of s, so s may be reused once SortColumn returns.
func SortColumn(s *sorter.Sorter, col *ingestor.Column, opts SortOptions) *SortedColumn {
	start := time.Now()
	perm := col.Sort(s, opts.ForceRadix)
	elapsed := time.Since(start)

	owned := make([]uint32, len(perm))
	copy(owned, perm)

	st := s.Stats()
	hists := s.Histograms()
	if len(perm) == 0 {
		// an empty input leaves the previous sort's state in s
		st = sorter.Stats{Shape: col.Shape()}
		hists = nil
	}

	result := &output.ColumnResult{
		Name:  col.Name,
		Type:  col.Type.String(),
		Count: len(owned),
		Stats: output.SortStats{
			Path:       st.Path.String(),
			Shape:      col.Shape().String(),
			Passes:     st.Passes,
			Skipped:    st.Skipped,
			SortTimeUS: elapsed.Microseconds(),
		},
		Summary:    Summarize(col, owned),
		Offsets:    output.OffsetStats(hists, len(owned)),
		Histograms: hists,
		Shape:      col.Shape(),
	}
	if opts.IncludePermutation {
		result.Permutation = owned
	}

	return &SortedColumn{Column: col, Perm: owned, Result: result}
}

// StaticFromConfig sorts every configured input one after another.
func StaticFromConfig(cfg *config.Config) (*output.JSONOutput, []*SortedColumn, error) {
	analysisStart := time.Now()
	jsonOutput := output.NewJSONOutput("static", analysisStart)

	if err := checkStaticConfig(cfg, jsonOutput); err != nil {
		return jsonOutput, nil, err
	}

	s := sorter.New(sorter.WithThreshold(cfg.Global.Threshold))
	opts := SortOptions{ForceRadix: cfg.Global.ForceRadix, IncludePermutation: cfg.Static.IncludePermutation}

	var sorted []*SortedColumn
	var totals runTotals
	for _, name := range cfg.InputNames() {
		sc := processInput(s, name, cfg.StaticInputs[name], opts, jsonOutput, &totals)
		if sc != nil {
			sorted = append(sorted, sc)
		}
	}

	finishStatic(cfg, jsonOutput, sorted, totals, analysisStart)
	return jsonOutput, sorted, nil
}

type runTotals struct {
	values  int
	parsing time.Duration
	sorting time.Duration
}

func (t *runTotals) add(o runTotals) {
	t.values += o.values
	t.parsing += o.parsing
	t.sorting += o.sorting
}

func checkStaticConfig(cfg *config.Config, jsonOutput *output.JSONOutput) error {
	if cfg == nil {
		jsonOutput.AddError("config_error", "configuration is nil", 1)
		return fmt.Errorf("configuration is nil")
	}
	if cfg.Static == nil {
		jsonOutput.AddError("config_error", "static configuration section is missing", 1)
		return fmt.Errorf("static configuration section is missing")
	}
	if cfg.Global == nil {
		cfg.Global = &config.GlobalConfig{Threshold: sorter.DefaultThreshold}
	}
	if len(cfg.StaticInputs) == 0 {
		jsonOutput.AddWarning("config_warning", "no inputs configured, nothing to sort", 1)
	}
	return nil
}

// processInput parses, filters and sorts one input. Failures are recorded in
// jsonOutput and yield nil.
func processInput(s *sorter.Sorter, name string, input *config.InputConfig, opts SortOptions,
	jsonOutput *output.JSONOutput, totals *runTotals) *SortedColumn {

	if input == nil {
		jsonOutput.AddWarning("config_warning", fmt.Sprintf("input '%s' is nil, skipping", name), 1)
		return nil
	}

	parseStart := time.Now()
	col, err := ingestor.ParseValueFile(input.File, input.Type)
	parseDuration := time.Since(parseStart)
	if err != nil {
		jsonOutput.AddError("parse_file", fmt.Sprintf("input '%s': %v", name, err), 1)
		return nil
	}
	col.Name = name

	col, dropped := applyFilter(col, input.Filter)
	if dropped > 0 {
		jsonOutput.AddWarning("filtered_values", fmt.Sprintf("input '%s': %d values outside the configured range were dropped", name, dropped), dropped)
	}
	if col.Len() == 0 {
		jsonOutput.AddWarning("empty_input", fmt.Sprintf("input '%s' has no values", name), 1)
	}

	sc := SortColumn(s, col, opts)
	sc.Result.File = input.File
	sc.Result.Filtered = dropped

	totals.values += col.Len()
	totals.parsing += parseDuration
	totals.sorting += time.Duration(sc.Result.Stats.SortTimeUS) * time.Microsecond
	return sc
}

func finishStatic(cfg *config.Config, jsonOutput *output.JSONOutput, sorted []*SortedColumn, totals runTotals, start time.Time) {
	jsonOutput.Results = make([]output.ColumnResult, 0, len(sorted))
	for _, sc := range sorted {
		jsonOutput.Results = append(jsonOutput.Results, *sc.Result)
	}

	jsonOutput.General.Inputs = len(cfg.StaticInputs)
	jsonOutput.General.TotalValues = totals.values
	jsonOutput.General.Parsing.DurationMS = totals.parsing.Milliseconds()
	jsonOutput.General.Parsing.RatePerSecond = ratePerSecond(totals.values, totals.parsing)
	jsonOutput.General.Sorting = output.Sorting{
		Threshold:     cfg.Global.Threshold,
		ForceRadix:    cfg.Global.ForceRadix,
		DurationMS:    totals.sorting.Milliseconds(),
		RatePerSecond: ratePerSecond(totals.values, totals.sorting),
	}
	jsonOutput.UpdateDuration(start)
}

func ratePerSecond(n int, d time.Duration) int64 {
	if d <= 0 {
		return 0
	}
	return int64(float64(n) / d.Seconds())
}

// SortWindow converts the values of a live window to the window's element
// type, drops those outside filter and sorts the rest with a pooled Sorter.
// It returns the number of values the element type could not represent.
func SortWindow(sorters *pools.Sorters, name string, window *config.WindowConfig, values []float64, forceRadix bool) (*SortedColumn, int, error) {
	col, skipped, err := ingestor.ColumnFromFloats(name, window.Type, values)
	if err != nil {
		return nil, 0, fmt.Errorf("window %s: %w", name, err)
	}
	col, dropped := applyFilter(col, window.Filter)

	s := sorters.Get()
	defer sorters.Put(s)

	sc := SortColumn(s, col, SortOptions{ForceRadix: forceRadix})
	sc.Result.Filtered = dropped
	return sc, skipped, nil
}
