package tui

import (
	"fmt"
	"strings"
	"testing"

	"github.com/gdamore/tcell/v2"
	"github.com/thomcc/radix-sorter/analysis"
	"github.com/thomcc/radix-sorter/ingestor"
	"github.com/thomcc/radix-sorter/output"
	"github.com/thomcc/radix-sorter/sorter"
)

func sortedColumn(t *testing.T, name string, typ ingestor.ElementType, values []float64, force bool) *analysis.SortedColumn {
	t.Helper()
	col, _, err := ingestor.ColumnFromFloats(name, typ, values)
	if err != nil {
		t.Fatalf("ColumnFromFloats failed: %v", err)
	}
	return analysis.SortColumn(sorter.New(), col, analysis.SortOptions{ForceRadix: force})
}

func TestFoldHistogram(t *testing.T) {
	var h sorter.Histogram
	h[0] = 1
	h[15] = 2
	h[16] = 3
	h[255] = 4

	rows := foldHistogram(&h)
	want := [foldedRows]uint32{0: 3, 1: 3, 15: 4}
	if rows != want {
		t.Errorf("foldHistogram = %v, want %v", rows, want)
	}
}

func TestBar(t *testing.T) {
	tests := []struct {
		name       string
		count, max uint32
		width      int
		want       string
	}{
		{"empty", 0, 10, 40, ""},
		{"no max", 3, 0, 40, ""},
		{"full", 10, 10, 4, "████"},
		{"half", 5, 10, 4, "██"},
		{"sliver", 1, 1000, 40, "▏"},
		{"partial", 3, 8, 1, "▍"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := bar(tt.count, tt.max, tt.width); got != tt.want {
				t.Errorf("bar(%d, %d, %d) = %q, want %q", tt.count, tt.max, tt.width, got, tt.want)
			}
		})
	}
}

func TestBuildRowsText(t *testing.T) {
	sc := sortedColumn(t, "rows", ingestor.U16, []float64{30, 10, 20}, false)
	lines := strings.Split(strings.TrimSpace(buildRowsText(sc)), "\n")
	if len(lines) != 4 {
		t.Fatalf("Expected header and 3 rows, got %d lines", len(lines))
	}

	want := [][]string{{"0", "1", "10"}, {"1", "2", "20"}, {"2", "0", "30"}}
	for i, w := range want {
		if got := strings.Fields(lines[i+1]); strings.Join(got, " ") != strings.Join(w, " ") {
			t.Errorf("Row %d = %v, want %v", i, got, w)
		}
	}
}

func TestBuildRowsTextTruncates(t *testing.T) {
	values := make([]float64, maxRowLines+5)
	for i := range values {
		values[i] = float64(i)
	}
	sc := sortedColumn(t, "long", ingestor.U32, values, false)

	text := buildRowsText(sc)
	if !strings.Contains(text, "... 5 more rows") {
		t.Errorf("Expected truncation note, got tail %q", text[len(text)-40:])
	}
	if n := strings.Count(text, "\n"); n != maxRowLines+2 {
		t.Errorf("Expected %d lines, got %d", maxRowLines+2, n)
	}
}

func TestBuildHistogramText(t *testing.T) {
	sc := sortedColumn(t, "signed", ingestor.I8, []float64{-128, -1, 0, 5, 127}, true)
	text := buildHistogramText(sc.Result)

	if !strings.Contains(text, "byte 0") {
		t.Errorf("Missing byte 0 section:\n%s", text)
	}
	if strings.Count(text, "\n  ") != foldedRows {
		t.Errorf("Expected %d folded rows:\n%s", foldedRows, text)
	}
	// the top byte is labelled with decoded lower bounds
	if !strings.Contains(text, "≥-128") || !strings.Contains(text, "≥0") {
		t.Errorf("Missing decoded bucket labels:\n%s", text)
	}
}

func TestBuildHistogramTextInsertion(t *testing.T) {
	sc := sortedColumn(t, "small", ingestor.U8, []float64{3, 1, 2}, false)
	text := buildHistogramText(sc.Result)
	if !strings.Contains(text, "No histograms: insertion path") {
		t.Errorf("Unexpected text for insertion path: %q", text)
	}
}

func TestBuildSummaryText(t *testing.T) {
	sc := sortedColumn(t, "latency", ingestor.F32, []float64{1.5, 0.25, 3}, false)
	text := buildSummaryText(sc.Result, 0, 2)

	for _, want := range []string{"latency", "(1/2)", "f32", "insertion", "0.25", "1.5", "3"} {
		if !strings.Contains(text, want) {
			t.Errorf("Summary text missing %q:\n%s", want, text)
		}
	}

	empty := sortedColumn(t, "empty", ingestor.U8, nil, false)
	if text := buildSummaryText(empty.Result, 1, 2); !strings.Contains(text, "no values") {
		t.Errorf("Expected no values marker, got %q", text)
	}
}

func TestBuildDiagnosticsText(t *testing.T) {
	if text := buildDiagnosticsText(nil); !strings.Contains(text, "No issues") {
		t.Errorf("Expected no issues for nil output, got %q", text)
	}

	out := &output.JSONOutput{}
	out.AddWarning("empty_input", "input 'a' has no values", 1)
	out.AddError("parse_file", "input 'b': bad token", 1)

	text := buildDiagnosticsText(out)
	errAt := strings.Index(text, "parse_file")
	warnAt := strings.Index(text, "empty_input")
	if errAt < 0 || warnAt < 0 || errAt > warnAt {
		t.Errorf("Expected errors listed before warnings:\n%s", text)
	}
}

func TestAppKeys(t *testing.T) {
	a := NewApp([]string{"a", "b"})
	a.columns = []*analysis.SortedColumn{
		sortedColumn(t, "a", ingestor.U8, []float64{2, 1}, false),
		sortedColumn(t, "b", ingestor.U8, []float64{1, 2}, false),
	}
	a.analysisComplete.Store(true)
	a.pages.SwitchToPage("results")

	a.handleKey(tcell.NewEventKey(tcell.KeyRune, 'n', tcell.ModNone))
	if a.current != 1 {
		t.Errorf("Expected column 1 after 'n', got %d", a.current)
	}
	a.handleKey(tcell.NewEventKey(tcell.KeyRune, 'n', tcell.ModNone))
	if a.current != 0 {
		t.Errorf("Expected column to wrap to 0, got %d", a.current)
	}

	for i := 1; i <= len(a.focusableItems); i++ {
		a.handleKey(tcell.NewEventKey(tcell.KeyTab, 0, tcell.ModNone))
		if want := i % len(a.focusableItems); a.currentFocus != want {
			t.Errorf("After %d tabs focus = %d, want %d", i, a.currentFocus, want)
		}
	}
	a.handleKey(tcell.NewEventKey(tcell.KeyBacktab, 0, tcell.ModNone))
	if a.currentFocus != len(a.focusableItems)-1 {
		t.Errorf("Backtab from 0 should wrap, got %d", a.currentFocus)
	}

	if len(a.cachedTexts) != 2 {
		t.Errorf("Expected both columns rendered once, got %d cached", len(a.cachedTexts))
	}
	if got := a.rows.GetText(true); !strings.Contains(got, fmt.Sprint("rank")) {
		t.Errorf("Rows panel not rendered: %q", got)
	}
}
