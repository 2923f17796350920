package analysis

import (
	"fmt"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/thomcc/radix-sorter/config"
	"github.com/thomcc/radix-sorter/ingestor"
	"github.com/thomcc/radix-sorter/output"
	"github.com/thomcc/radix-sorter/pools"
	"github.com/thomcc/radix-sorter/sorter"
	"github.com/thomcc/radix-sorter/testutil"
)

func floatPtr(v float64) *float64 { return &v }

func descendingLines(n int) []string {
	lines := make([]string, n)
	for i := range lines {
		lines[i] = fmt.Sprint(n - i)
	}
	return lines
}

func staticConfig(inputs map[string]*config.InputConfig) *config.Config {
	return &config.Config{
		Global:       &config.GlobalConfig{Threshold: sorter.DefaultThreshold},
		Static:       &config.StaticConfig{},
		StaticInputs: inputs,
	}
}

func hasWarning(out *output.JSONOutput, typ string) bool {
	for _, w := range out.Warnings {
		if w.Type == typ {
			return true
		}
	}
	return false
}

func hasError(out *output.JSONOutput, typ string) bool {
	for _, e := range out.Errors {
		if e.Type == typ {
			return true
		}
	}
	return false
}

func TestStaticFromConfig(t *testing.T) {
	small := testutil.WriteLines(t, "small.txt", "3", "1", "2")
	large := testutil.WriteLines(t, "large.txt", descendingLines(100)...)

	cfg := staticConfig(map[string]*config.InputConfig{
		"small": {File: small, Type: ingestor.U16, TypeRaw: "u16"},
		"large": {File: large, Type: ingestor.I32, TypeRaw: "i32"},
	})

	out, sorted, err := StaticFromConfig(cfg)
	if err != nil {
		t.Fatalf("StaticFromConfig failed: %v", err)
	}
	if len(out.Errors) != 0 {
		t.Fatalf("Unexpected errors: %+v", out.Errors)
	}
	if len(sorted) != 2 || len(out.Results) != 2 {
		t.Fatalf("Expected 2 results, got %d sorted and %d in output", len(sorted), len(out.Results))
	}

	// ordered by input name
	if out.Results[0].Name != "large" || out.Results[1].Name != "small" {
		t.Errorf("Results not ordered by name: %s, %s", out.Results[0].Name, out.Results[1].Name)
	}

	large0 := out.Results[0]
	if large0.Stats.Path != "radix" || large0.Stats.Shape != "i32" {
		t.Errorf("Expected radix path on i32, got %s on %s", large0.Stats.Path, large0.Stats.Shape)
	}
	if large0.Count != 100 || large0.File != large {
		t.Errorf("Unexpected result header: %+v", large0)
	}
	if len(large0.Offsets) != 4 {
		t.Errorf("Expected 4 offset stats, got %d", len(large0.Offsets))
	}
	if large0.Summary == nil || large0.Summary.Min != "1" || large0.Summary.Max != "100" {
		t.Errorf("Unexpected summary: %+v", large0.Summary)
	}
	if large0.Permutation != nil {
		t.Error("Permutation included without IncludePermutation")
	}

	small0 := out.Results[1]
	if small0.Stats.Path != "insertion" || small0.Stats.Passes != 0 {
		t.Errorf("Expected insertion path without passes, got %+v", small0.Stats)
	}
	if !reflect.DeepEqual(sorted[1].Perm, []uint32{1, 2, 0}) {
		t.Errorf("Expected permutation [1 2 0], got %v", sorted[1].Perm)
	}

	if out.General.Inputs != 2 || out.General.TotalValues != 103 {
		t.Errorf("Unexpected totals: %+v", out.General)
	}
	if out.General.Sorting.Threshold != sorter.DefaultThreshold {
		t.Errorf("Expected threshold %d, got %d", sorter.DefaultThreshold, out.General.Sorting.Threshold)
	}
	if out.Metadata.AnalysisType != "static" {
		t.Errorf("Expected analysis type static, got %s", out.Metadata.AnalysisType)
	}
}

func TestStaticFromConfigIncludePermutation(t *testing.T) {
	file := testutil.WriteLines(t, "values.txt", "-1.5", "2", "-3")
	cfg := staticConfig(map[string]*config.InputConfig{
		"floats": {File: file, Type: ingestor.F32, TypeRaw: "f32"},
	})
	cfg.Static.IncludePermutation = true

	out, _, err := StaticFromConfig(cfg)
	if err != nil {
		t.Fatalf("StaticFromConfig failed: %v", err)
	}
	if !reflect.DeepEqual(out.Results[0].Permutation, []uint32{2, 0, 1}) {
		t.Errorf("Expected permutation [2 0 1], got %v", out.Results[0].Permutation)
	}
}

func TestStaticFromConfigForceRadix(t *testing.T) {
	file := testutil.WriteLines(t, "values.txt", "300", "5", "70000")
	cfg := staticConfig(map[string]*config.InputConfig{
		"forced": {File: file, Type: ingestor.U32, TypeRaw: "u32"},
	})
	cfg.Global.ForceRadix = true

	out, sorted, err := StaticFromConfig(cfg)
	if err != nil {
		t.Fatalf("StaticFromConfig failed: %v", err)
	}
	if out.Results[0].Stats.Path != "radix" {
		t.Errorf("Expected radix path when forced, got %s", out.Results[0].Stats.Path)
	}
	if !reflect.DeepEqual(sorted[0].Perm, []uint32{1, 0, 2}) {
		t.Errorf("Expected permutation [1 0 2], got %v", sorted[0].Perm)
	}
	if !out.General.Sorting.ForceRadix {
		t.Error("ForceRadix not reported")
	}
}

func TestStaticFromConfigConfigErrors(t *testing.T) {
	tests := []struct {
		name string
		cfg  *config.Config
	}{
		{"nil config", nil},
		{"missing static section", &config.Config{Global: &config.GlobalConfig{}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, sorted, err := StaticFromConfig(tt.cfg)
			if err == nil {
				t.Fatal("Expected error")
			}
			if sorted != nil {
				t.Errorf("Expected no results, got %d", len(sorted))
			}
			if !hasError(out, "config_error") {
				t.Errorf("Expected config_error, got %+v", out.Errors)
			}

			out, _, err = ParallelStaticFromConfig(tt.cfg)
			if err == nil || !hasError(out, "config_error") {
				t.Errorf("Parallel run did not report the config error: %v", err)
			}
		})
	}
}

func TestStaticFromConfigRecordsProblems(t *testing.T) {
	dir := t.TempDir()
	good := testutil.WriteLines(t, "good.txt", "1", "2")
	bad := testutil.WriteLines(t, "bad.txt", "1", "oops")
	empty := testutil.WriteLines(t, "empty.txt", "# nothing here")

	cfg := staticConfig(map[string]*config.InputConfig{
		"good":    {File: good, Type: ingestor.U8, TypeRaw: "u8"},
		"bad":     {File: bad, Type: ingestor.U8, TypeRaw: "u8"},
		"missing": {File: filepath.Join(dir, "nope.txt"), Type: ingestor.U8, TypeRaw: "u8"},
		"empty":   {File: empty, Type: ingestor.U8, TypeRaw: "u8"},
		"nil":     nil,
	})

	for _, run := range []struct {
		name string
		fn   func(*config.Config) (*output.JSONOutput, []*SortedColumn, error)
	}{
		{"sequential", StaticFromConfig},
		{"parallel", ParallelStaticFromConfig},
	} {
		t.Run(run.name, func(t *testing.T) {
			out, sorted, err := run.fn(cfg)
			if err != nil {
				t.Fatalf("Run failed: %v", err)
			}

			if len(out.Errors) != 2 || !hasError(out, "parse_file") {
				t.Errorf("Expected 2 parse_file errors, got %+v", out.Errors)
			}
			for _, e := range out.Errors {
				if !strings.Contains(e.Message, "bad") && !strings.Contains(e.Message, "missing") {
					t.Errorf("Error does not name its input: %s", e.Message)
				}
			}
			if !hasWarning(out, "empty_input") {
				t.Error("Expected empty_input warning")
			}
			if !hasWarning(out, "config_warning") {
				t.Error("Expected config_warning for nil input")
			}

			// empty inputs still produce a result
			if len(sorted) != 2 {
				t.Fatalf("Expected 2 results, got %d", len(sorted))
			}
			if sorted[0].Result.Name != "empty" || sorted[0].Result.Stats.Path != "none" {
				t.Errorf("Unexpected empty result: %+v", sorted[0].Result)
			}
			if sorted[0].Result.Summary != nil || sorted[0].Result.Offsets != nil {
				t.Error("Empty input should carry no summary or offsets")
			}
			if out.General.TotalValues != 2 {
				t.Errorf("Expected 2 total values, got %d", out.General.TotalValues)
			}
		})
	}
}

func TestStaticFromConfigNoInputs(t *testing.T) {
	out, sorted, err := StaticFromConfig(staticConfig(nil))
	if err != nil {
		t.Fatalf("StaticFromConfig failed: %v", err)
	}
	if len(sorted) != 0 || len(out.Results) != 0 {
		t.Errorf("Expected no results, got %d", len(sorted))
	}
	if !hasWarning(out, "config_warning") {
		t.Error("Expected config_warning for empty input set")
	}
}

func TestStaticFromConfigFilter(t *testing.T) {
	file := testutil.WriteLines(t, "values.txt", "-10", "0", "5", "10", "20")
	cfg := staticConfig(map[string]*config.InputConfig{
		"filtered": {
			File: file, Type: ingestor.I8, TypeRaw: "i8",
			Filter: config.ValueFilter{Min: floatPtr(0), Max: floatPtr(10)},
		},
	})

	out, sorted, err := StaticFromConfig(cfg)
	if err != nil {
		t.Fatalf("StaticFromConfig failed: %v", err)
	}
	r := out.Results[0]
	if r.Count != 3 || r.Filtered != 2 {
		t.Errorf("Expected 3 kept and 2 filtered, got %d and %d", r.Count, r.Filtered)
	}
	if r.Summary.Min != "0" || r.Summary.Max != "10" {
		t.Errorf("Unexpected bounds after filtering: %+v", r.Summary)
	}
	if sorted[0].Column.Len() != 3 {
		t.Errorf("Expected filtered column of 3, got %d", sorted[0].Column.Len())
	}
	if !hasWarning(out, "filtered_values") {
		t.Error("Expected filtered_values warning")
	}
}

func TestParallelMatchesSequential(t *testing.T) {
	inputs := make(map[string]*config.InputConfig)
	for i := 0; i < 6; i++ {
		inputs[fmt.Sprintf("input%d", i)] = &config.InputConfig{
			File: testutil.GenerateValueFile(t, 500*(i+1)), Type: ingestor.I32, TypeRaw: "i32",
		}
	}
	cfg := staticConfig(inputs)
	cfg.Static.IncludePermutation = true

	seqOut, seq, err := StaticFromConfig(cfg)
	if err != nil {
		t.Fatalf("StaticFromConfig failed: %v", err)
	}
	parOut, par, err := ParallelStaticFromConfig(cfg)
	if err != nil {
		t.Fatalf("ParallelStaticFromConfig failed: %v", err)
	}

	if len(seq) != len(par) {
		t.Fatalf("Result counts differ: %d vs %d", len(seq), len(par))
	}
	for i := range seq {
		if seq[i].Result.Name != par[i].Result.Name {
			t.Errorf("Result %d: names differ: %s vs %s", i, seq[i].Result.Name, par[i].Result.Name)
		}
		if !reflect.DeepEqual(seq[i].Perm, par[i].Perm) {
			t.Errorf("Result %s: permutations differ", seq[i].Result.Name)
		}
		if !reflect.DeepEqual(seq[i].Result.Summary, par[i].Result.Summary) {
			t.Errorf("Result %s: summaries differ", seq[i].Result.Name)
		}
		if !reflect.DeepEqual(seq[i].Result.Offsets, par[i].Result.Offsets) {
			t.Errorf("Result %s: offsets differ", seq[i].Result.Name)
		}
	}
	if seqOut.General.TotalValues != parOut.General.TotalValues {
		t.Errorf("Totals differ: %d vs %d", seqOut.General.TotalValues, parOut.General.TotalValues)
	}
}

func TestSortColumnCopiesPermutation(t *testing.T) {
	s := sorter.New()
	a, _, _ := ingestor.ColumnFromFloats("a", ingestor.U8, []float64{2, 1, 0})
	b, _, _ := ingestor.ColumnFromFloats("b", ingestor.U8, []float64{0, 1, 2})

	first := SortColumn(s, a, SortOptions{IncludePermutation: true})
	SortColumn(s, b, SortOptions{})

	if !reflect.DeepEqual(first.Perm, []uint32{2, 1, 0}) {
		t.Errorf("Permutation changed after sorter reuse: %v", first.Perm)
	}
	if !reflect.DeepEqual(first.Result.Permutation, first.Perm) {
		t.Error("Result permutation differs from the sorted column's")
	}
	if first.Result.Shape.String() != "u8" || len(first.Result.Histograms) != 0 {
		t.Errorf("Unexpected shape %s or histograms %d", first.Result.Shape, len(first.Result.Histograms))
	}
}

func TestSortColumnHistograms(t *testing.T) {
	values := make([]float64, 64)
	for i := range values {
		values[i] = float64(i * 1000)
	}
	col, _, _ := ingestor.ColumnFromFloats("wide", ingestor.U32, values)

	sc := SortColumn(sorter.New(), col, SortOptions{})
	if len(sc.Result.Histograms) != 4 {
		t.Fatalf("Expected 4 histograms, got %d", len(sc.Result.Histograms))
	}
	// 63000 < 2^16, so the top two bytes are always zero
	if !sc.Result.Offsets[3].Skipped || !sc.Result.Offsets[2].Skipped {
		t.Errorf("Expected upper offsets skipped: %+v", sc.Result.Offsets)
	}
	if sc.Result.Stats.Skipped != 2 {
		t.Errorf("Expected 2 skipped passes, got %d", sc.Result.Stats.Skipped)
	}
}

func TestSortWindow(t *testing.T) {
	sorters := pools.NewSorters(sorter.DefaultThreshold)
	window := &config.WindowConfig{Type: ingestor.U8, TypeRaw: "u8"}

	values := []float64{200, 3, 1.5, -1, 3, 256, 7}
	sc, skipped, err := SortWindow(sorters, "win", window, values, false)
	if err != nil {
		t.Fatalf("SortWindow failed: %v", err)
	}
	if skipped != 3 {
		t.Errorf("Expected 3 unrepresentable values skipped, got %d", skipped)
	}
	if sc.Column.Len() != 4 {
		t.Fatalf("Expected 4 values, got %d", sc.Column.Len())
	}
	if sc.Result.Name != "win" || sc.Result.Summary.Max != "200" || sc.Result.Summary.Min != "3" {
		t.Errorf("Unexpected result: %+v", sc.Result)
	}
	if !reflect.DeepEqual(sc.Perm, []uint32{1, 2, 3, 0}) {
		t.Errorf("Expected permutation [1 2 3 0], got %v", sc.Perm)
	}
}

func TestSortWindowFilter(t *testing.T) {
	sorters := pools.NewSorters(sorter.DefaultThreshold)
	window := &config.WindowConfig{
		Type: ingestor.F64, TypeRaw: "f64",
		Filter: config.ValueFilter{Max: floatPtr(100)},
	}

	sc, skipped, err := SortWindow(sorters, "win", window, []float64{50, 150, -2, 100}, true)
	if err != nil {
		t.Fatalf("SortWindow failed: %v", err)
	}
	if skipped != 0 || sc.Result.Filtered != 1 {
		t.Errorf("Expected 0 skipped and 1 filtered, got %d and %d", skipped, sc.Result.Filtered)
	}
	if sc.Result.Count != 3 {
		t.Errorf("Expected 3 values, got %d", sc.Result.Count)
	}
}

func TestSortWindowUnknownType(t *testing.T) {
	sorters := pools.NewSorters(sorter.DefaultThreshold)
	_, _, err := SortWindow(sorters, "win", &config.WindowConfig{}, []float64{1}, false)
	if err == nil {
		t.Fatal("Expected error for unknown element type")
	}
	if !strings.Contains(err.Error(), "win") {
		t.Errorf("Error does not name the window: %v", err)
	}
}
