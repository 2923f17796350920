package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/thomcc/radix-sorter/analysis"
	"github.com/thomcc/radix-sorter/output"
	"github.com/thomcc/radix-sorter/pools"
	"github.com/thomcc/radix-sorter/sorter"
)

const (
	foldedRows  = 16
	barWidth    = 40
	maxRowLines = 2000
)

var partialBlocks = []string{"", "▏", "▎", "▍", "▌", "▋", "▊", "▉"}

// foldHistogram sums each run of 16 consecutive buckets into one row.
func foldHistogram(h *sorter.Histogram) [foldedRows]uint32 {
	var rows [foldedRows]uint32
	for b, c := range h {
		rows[b/(256/foldedRows)] += c
	}
	return rows
}

// bar renders count as a horizontal bar of at most width cells, scaled so
// that max fills the whole width. Non-zero counts always get a sliver.
func bar(count, max uint32, width int) string {
	if count == 0 || max == 0 {
		return ""
	}
	eighths := int(uint64(count) * uint64(width*8) / uint64(max))
	if eighths == 0 {
		eighths = 1
	}
	return strings.Repeat("█", eighths/8) + partialBlocks[eighths%8]
}

// buildSummaryText renders the header panel for one sorted column.
func buildSummaryText(r *output.ColumnResult, index, total int) string {
	b := pools.Pools.GetBuilder()
	defer pools.Pools.ReturnBuilder(b)

	fmt.Fprintf(b, "[white::b]%s[white::-] (%d/%d)  [dim]type[white] %s  [dim]values[white] %s",
		r.Name, index+1, total, r.Type, output.FormatNumber(r.Count))
	if r.Filtered > 0 {
		fmt.Fprintf(b, "  [dim]filtered[white] %s", output.FormatNumber(r.Filtered))
	}
	b.WriteString("\n")

	fmt.Fprintf(b, "[dim]path[white] %s", r.Stats.Path)
	if r.Stats.Path == sorter.PathRadix.String() {
		fmt.Fprintf(b, " (%d passes, %d skipped)", r.Stats.Passes, r.Stats.Skipped)
	}
	fmt.Fprintf(b, "  [dim]sort time[white] %s μs\n", output.FormatNumber(int(r.Stats.SortTimeUS)))

	if s := r.Summary; s != nil {
		fmt.Fprintf(b, "[dim]min[white] %s  [dim]median[white] %s  [dim]p90[white] %s  [dim]p99[white] %s  [dim]max[white] %s\n",
			s.Min, s.Median, s.P90, s.P99, s.Max)
		fmt.Fprintf(b, "[dim]distinct[white] %s  [dim]longest run[white] %s",
			output.FormatNumber(s.Distinct), output.FormatNumber(s.LongestRun))
		if s.NaNs > 0 {
			fmt.Fprintf(b, "  [dim]NaN[white] %s", output.FormatNumber(s.NaNs))
		}
		b.WriteString("\n")
	} else {
		b.WriteString("[dim]no values[white]\n")
	}
	return b.String()
}

// buildHistogramText renders every key byte histogram folded into 16 rows,
// most significant byte first. Rows of the top byte are labelled with the
// lowest value they can hold.
func buildHistogramText(r *output.ColumnResult) string {
	if len(r.Histograms) == 0 {
		return fmt.Sprintf("[dim]No histograms: %s path[white]\n", r.Stats.Path)
	}

	b := pools.Pools.GetBuilder()
	defer pools.Pools.ReturnBuilder(b)

	top := len(r.Histograms) - 1
	for offset := top; offset >= 0; offset-- {
		h := &r.Histograms[offset]
		rows := foldHistogram(h)
		var max uint32
		for _, c := range rows {
			if c > max {
				max = c
			}
		}

		fmt.Fprintf(b, "[yellow::b]byte %d[white::-]  %d buckets used", offset, h.Occupied())
		if offset < len(r.Offsets) && r.Offsets[offset].Skipped {
			b.WriteString("  [dim](pass skipped)[white]")
		}
		b.WriteString("\n")

		for i, c := range rows {
			lo := i * (256 / foldedRows)
			label := fmt.Sprintf("%02x-%02x", lo, lo+256/foldedRows-1)
			if offset == top {
				if v, err := sorter.DecodeBucket(r.Shape, byte(lo)); err == nil {
					label = fmt.Sprintf("%s ≥%-10s", label, strconv.FormatFloat(v, 'g', 6, 64))
				}
			}
			fmt.Fprintf(b, "  %s [green]%-*s[white] %s\n", label, barWidth, bar(c, max, barWidth), output.FormatNumber(int(c)))
		}
		b.WriteString("\n")
	}
	return b.String()
}

// buildRowsText lists the column in sorted order as rank, source index and
// value. Long columns are cut after maxRowLines rows.
func buildRowsText(sc *analysis.SortedColumn) string {
	b := pools.Pools.GetBuilder()
	defer pools.Pools.ReturnBuilder(b)

	fmt.Fprintf(b, "[dim]%8s  %10s  %s[white]\n", "rank", "index", "value")

	n := len(sc.Perm)
	limit := n
	if limit > maxRowLines {
		limit = maxRowLines
	}
	for rank := 0; rank < limit; rank++ {
		idx := sc.Perm[rank]
		fmt.Fprintf(b, "%8d  %10d  %s\n", rank, idx, sc.Column.Format(int(idx)))
	}
	if n > limit {
		fmt.Fprintf(b, "[dim]... %s more rows[white]\n", output.FormatNumber(n-limit))
	}
	return b.String()
}

// buildDiagnosticsText lists warnings and errors from the result document.
func buildDiagnosticsText(out *output.JSONOutput) string {
	if out == nil || (len(out.Warnings) == 0 && len(out.Errors) == 0) {
		return "[green]No issues detected[white]\n"
	}

	b := pools.Pools.GetBuilder()
	defer pools.Pools.ReturnBuilder(b)
	for _, e := range out.Errors {
		fmt.Fprintf(b, "[red]%s[white] %s\n", e.Type, e.Message)
	}
	for _, w := range out.Warnings {
		fmt.Fprintf(b, "[yellow]%s[white] %s\n", w.Type, w.Message)
	}
	return b.String()
}
