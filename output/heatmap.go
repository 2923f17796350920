package output

import (
	"fmt"
	"os"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"
	"github.com/thomcc/radix-sorter/sorter"
)

// PlotHistograms renders one heatmap per result that carries radix
// histograms: x is the key byte offset, y the byte value and the colour the
// number of keys in that bucket.
func PlotHistograms(results []ColumnResult, filename string) error {
	page := components.NewPage()
	page.SetLayout(components.PageFlexLayout)

	plotted := 0
	for i := range results {
		if len(results[i].Histograms) == 0 {
			continue
		}
		page.AddCharts(histogramChart(&results[i]))
		plotted++
	}
	if plotted == 0 {
		return fmt.Errorf("no radix histograms to plot")
	}

	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("could not create heatmap file %s: %w", filename, err)
	}
	defer f.Close()

	if err := page.Render(f); err != nil {
		return fmt.Errorf("rendering heatmap: %w", err)
	}
	return nil
}

func histogramChart(r *ColumnResult) *charts.HeatMap {
	width := len(r.Histograms)
	top := width - 1

	var heatmapData []opts.HeatMapData
	var maxCount uint32
	for x, h := range r.Histograms {
		for y, count := range h {
			if count == 0 {
				continue
			}
			if count > maxCount {
				maxCount = count
			}
			heatmapData = append(heatmapData, opts.HeatMapData{
				Value: [3]interface{}{x, y, count},
				Name:  bucketLabel(r.Shape, x, top, byte(y)), // shown in tooltip via params.name
			})
		}
	}

	offsets := make([]string, width)
	for i := range offsets {
		offsets[i] = "byte " + strconv.Itoa(i)
	}

	heatmap := charts.NewHeatMap()
	heatmap.SetGlobalOptions(
		charts.WithLegendOpts(opts.Legend{
			Show: opts.Bool(false),
		}),
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle:       "Radix Histograms",
			Width:           "90vh",
			Height:          "100vh",
			Theme:           types.ThemeVintage,
			BackgroundColor: "transparent",
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    fmt.Sprintf("%s (%s, %d values)", r.Name, r.Type, r.Count),
			Subtitle: "Key bytes, least significant first",
			Left:     "center",
		}),
		charts.WithTooltipOpts(opts.Tooltip{
			Trigger: "item",
			Formatter: opts.FuncOpts(`function (params) {
		return params.name + '<br />Count: ' + params.value[2];
	}`),
		}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Show: opts.Bool(true),
			Min:  0,
			Max:  float32(maxCount),
			InRange: &opts.VisualMapInRange{
				Color: []string{"#ffff8f", "#ff0000", "#000000"},
			},
			Orient: "vertical",
			Right:  "5%",
			Top:    "middle",
		}),
		charts.WithXAxisOpts(opts.XAxis{
			Name: "Offset",
			Type: "category",
			Data: offsets,
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Name:        "Byte value",
			Type:        "category",
			Data:        makeRange(0, 255),
			SplitNumber: 16,
		}),
	)

	heatmap.AddSeries(r.Name, heatmapData)
	return heatmap
}

// bucketLabel names a histogram cell. Buckets of the most significant byte
// also show the smallest value they can hold.
func bucketLabel(sh sorter.Shape, offset, top int, b byte) string {
	label := fmt.Sprintf("byte %d = 0x%02x", offset, b)
	if offset != top {
		return label
	}
	if lo, err := sorter.DecodeBucket(sh, b); err == nil {
		label += fmt.Sprintf("<br />from %s", strconv.FormatFloat(lo, 'g', 6, 64))
	}
	return label
}

// makeRange creates an integer slice [min..max]
func makeRange(min, max int) []int {
	r := make([]int, max-min+1)
	for i := range r {
		r[i] = min + i
	}
	return r
}
