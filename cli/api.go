package cli

import (
	"fmt"
	"io"
	"net"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/thomcc/radix-sorter/analysis"
	"github.com/thomcc/radix-sorter/config"
	"github.com/thomcc/radix-sorter/ingestor"
	"github.com/thomcc/radix-sorter/output"
	"github.com/thomcc/radix-sorter/pools"
	"github.com/thomcc/radix-sorter/sliding"
	"github.com/thomcc/radix-sorter/tui"
	"go.uber.org/zap"
)

// ============================================================================
// CONFIGURATION STRUCTS
// ============================================================================

// OutputConfig contains output formatting options
type OutputConfig struct {
	Compact bool
	Plain   bool
	TUI     bool
}

const (
	liveReadTimeout = 5 * time.Second
	liveIdleSleep   = 250 * time.Millisecond
)

// ============================================================================
// MAIN ENTRY POINTS
// ============================================================================

// StaticFromConfig sorts every input of cfg and prints the result document,
// or hands the results to the TUI.
func StaticFromConfig(cfg *config.Config, outputConfig OutputConfig) error {
	logger, err := createLogger(cfg.Global.LogLevel, cfg.Global.LogFormat)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if outputConfig.TUI {
		return executeTUI(cfg, logger)
	}
	return executeStaticAnalysis(os.Stdout, cfg, outputConfig, logger)
}

// LiveFromConfig receives values over lumberjack and sorts the configured
// windows until the client disconnects or the process is signalled.
func LiveFromConfig(cfg *config.Config) error {
	logger, err := createLogger(cfg.Global.LogLevel, cfg.Global.LogFormat)
	if err != nil {
		return err
	}
	defer logger.Sync()

	return executeLiveAnalysis(cfg, logger)
}

// ============================================================================
// CORE EXECUTION LOGIC
// ============================================================================

// executeStaticAnalysis handles all static analysis - CLI or config file, doesn't matter
func executeStaticAnalysis(w io.Writer, cfg *config.Config, outputConfig OutputConfig, logger *zap.Logger) error {
	result, sorted, err := analysis.ParallelStaticFromConfig(cfg)
	if err != nil {
		outputResult(w, result, outputConfig)
		return err
	}
	logger.Debug("static analysis finished",
		zap.Int("inputs", len(sorted)),
		zap.Int("values", result.General.TotalValues),
		zap.Int64("duration_ms", result.Metadata.DurationMS),
	)

	if cfg.Static.PlotPath != "" && len(sorted) > 0 {
		plotStart := time.Now()
		if err := output.PlotHistograms(result.Results, cfg.Static.PlotPath); err != nil {
			result.AddWarning("plot", fmt.Sprintf("histogram plot not written: %v", err), 1)
		} else {
			result.AddWarning("info", fmt.Sprintf("Histogram plot generated in %v at %s", time.Since(plotStart), cfg.Static.PlotPath), 0)
		}
	}

	outputResult(w, result, outputConfig)
	return nil
}

// executeTUI runs TUI mode - works for both CLI and config file inputs
func executeTUI(cfg *config.Config, logger *zap.Logger) error {
	app := tui.NewApp(cfg.InputNames())

	go func() {
		result, sorted, err := analysis.ParallelStaticFromConfig(cfg)
		if err != nil {
			app.ShowError(fmt.Sprintf("Analysis failed: %v", err))
			return
		}
		if len(sorted) == 0 {
			app.ShowError("Analysis completed but returned no results")
			return
		}
		app.SetResults(result, sorted)
	}()

	if err := app.Run(); err != nil {
		logger.Error("tui stopped", zap.Error(err))
		return fmt.Errorf("tui: %w", err)
	}
	return nil
}

// ============================================================================
// HELPER FUNCTIONS
// ============================================================================

// createConfigFromCLI creates a config.Config from the static command line flags
func createConfigFromCLI(inputs []string, t ingestor.ElementType, filter config.ValueFilter,
	plotPath string, includePermutation bool) (*config.Config, error) {

	cfg := config.New()
	cfg.Static.PlotPath = plotPath
	cfg.Static.IncludePermutation = includePermutation

	for _, arg := range inputs {
		name, path, err := config.ParseInputArg(arg)
		if err != nil {
			return nil, err
		}
		if _, dup := cfg.StaticInputs[name]; dup {
			return nil, fmt.Errorf("duplicate input name %q", name)
		}
		cfg.StaticInputs[name] = &config.InputConfig{
			File:    path,
			Type:    t,
			TypeRaw: t.String(),
			Filter:  filter,
		}
	}
	return cfg, nil
}

// createLiveConfigFromCLI creates a config.Config with a single window from the live command line flags
func createLiveConfigFromCLI(port string, t ingestor.ElementType, slidingWindowMaxTime time.Duration,
	slidingWindowMaxSize int, sleepBetweenIterations int, filter config.ValueFilter) *config.Config {

	cfg := config.New()
	cfg.Live.Port = port
	cfg.LiveWindows["cli_default"] = &config.WindowConfig{
		Type:                   t,
		TypeRaw:                t.String(),
		SlidingWindowMaxTime:   slidingWindowMaxTime,
		SlidingWindowMaxSize:   slidingWindowMaxSize,
		SleepBetweenIterations: sleepBetweenIterations,
		Filter:                 filter,
	}
	return cfg
}

// ============================================================================
// LIVE MODE IMPLEMENTATION
// ============================================================================

// windowInstance holds a sliding window and its associated configuration
type windowInstance struct {
	name   string
	window *sliding.Window
	config *config.WindowConfig
}

func newWindowInstances(cfg *config.Config) []windowInstance {
	windows := make([]windowInstance, 0, len(cfg.LiveWindows))
	for _, name := range cfg.WindowNames() {
		wc := cfg.LiveWindows[name]
		windows = append(windows, windowInstance{
			name:   name,
			window: sliding.NewWindow(wc.SlidingWindowMaxTime, wc.SlidingWindowMaxSize),
			config: wc,
		})
	}
	return windows
}

// processBatch feeds batch into every window, sorts each window and
// returns the iteration's result document.
func processBatch(windows []windowInstance, sorters *pools.Sorters, forceRadix bool,
	batch []ingestor.Sample, iteration int, loopStart time.Time) *output.JSONOutput {

	jsonOutput := output.NewJSONOutput("live", loopStart)
	var sortDuration time.Duration
	windowStats := make([]output.WindowStat, 0, len(windows))

	for _, winInst := range windows {
		winInst.window.Update(batch)
		windowStats = append(windowStats, windowStat(winInst))

		values := winInst.window.Values()
		sortStart := time.Now()
		sc, skipped, err := analysis.SortWindow(sorters, winInst.name, winInst.config, values, forceRadix)
		sortDuration += time.Since(sortStart)
		if err != nil {
			jsonOutput.AddError("sort_window", err.Error(), 1)
			continue
		}
		if skipped > 0 {
			jsonOutput.AddWarning("unrepresentable_values",
				fmt.Sprintf("window '%s': %d values do not fit %s", winInst.name, skipped, winInst.config.Type), skipped)
		}
		jsonOutput.Results = append(jsonOutput.Results, *sc.Result)
		jsonOutput.General.TotalValues += sc.Result.Count
	}
	jsonOutput.General.Inputs = len(windows)

	jsonOutput.LiveStats = &output.LiveStats{
		Iteration:      iteration,
		ProcessedBatch: len(batch),
		LoopDuration:   time.Since(loopStart).Milliseconds(),
		SortDuration:   sortDuration.Microseconds(),
		Windows:        windowStats,
	}
	jsonOutput.UpdateDuration(loopStart)
	return jsonOutput
}

func windowStat(w windowInstance) output.WindowStat {
	st := output.WindowStat{
		Name:     w.name,
		Size:     w.window.Len(),
		Distinct: w.window.Distinct(),
	}
	if v, n := w.window.Mode(); n > 0 {
		st.TopValue = strconv.FormatFloat(v, 'g', -1, 64)
		st.TopCount = n
	}
	return st
}

// executeLiveAnalysis runs live mode analysis - works for both CLI and config file inputs
func executeLiveAnalysis(cfg *config.Config, logger *zap.Logger) error {
	if len(cfg.LiveWindows) == 0 {
		return fmt.Errorf("no live windows configured")
	}

	windows := newWindowInstances(cfg)
	sorters := pools.NewSorters(cfg.Global.Threshold)

	ing, err := ingestor.NewTCPIngestor(":"+cfg.Live.Port, liveReadTimeout)
	if err != nil {
		return fmt.Errorf("error creating ingestor: %w", err)
	}

	logger.Info("waiting for lumberjack client", zap.String("addr", ing.Addr().String()))
	if err := ing.Accept(); err != nil {
		return fmt.Errorf("error accepting connection: %w", err)
	}
	logger.Info("lumberjack server started", zap.Int("windows", len(windows)))

	// Graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(stop)
	go func() {
		if _, ok := <-stop; ok {
			logger.Info("received shutdown signal")
			ing.Close()
		}
	}()

	maxSleepTime := 0
	for _, winInst := range windows {
		if winInst.config.SleepBetweenIterations > maxSleepTime {
			maxSleepTime = winInst.config.SleepBetweenIterations
		}
	}

	iteration := 0
	for {
		loopStart := time.Now()

		batch, err := ing.ReadBatchInto(pools.Pools.GetSampleSlice())
		if err != nil {
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				continue
			}
			logger.Error("read error", zap.Error(err))
			return fmt.Errorf("read error: %w", err)
		}

		if len(batch) == 0 {
			pools.Pools.ReturnSampleSlice(batch)
			if ing.IsClosed() {
				logger.Info("ingestor closed, exiting loop", zap.Int("iterations", iteration))
				return nil
			}
			time.Sleep(liveIdleSleep)
			continue
		}

		iteration++
		logger.Debug("batch received", zap.Int("iteration", iteration), zap.Int("values", len(batch)))

		jsonOutput := processBatch(windows, sorters, cfg.Global.ForceRadix, batch, iteration, loopStart)
		jsonOutput.LiveStats.InvalidEvents = ing.Invalid()
		for _, e := range jsonOutput.Errors {
			logger.Warn("window failed", zap.String("type", e.Type), zap.String("message", e.Message))
		}
		outputJSON(os.Stdout, jsonOutput)
		pools.Pools.ReturnSampleSlice(batch)

		time.Sleep(time.Duration(maxSleepTime) * time.Second)
	}
}

// ============================================================================
// OUTPUT FUNCTIONS
// ============================================================================

// outputJSON outputs in default JSON format (non-compact, non-plain)
func outputJSON(w io.Writer, jsonOutput *output.JSONOutput) {
	outputResult(w, jsonOutput, OutputConfig{})
}

// outputResult is the unified output function that handles all output formats
func outputResult(w io.Writer, jsonOutput *output.JSONOutput, outputConfig OutputConfig) {
	if outputConfig.Plain {
		outputPlain(w, jsonOutput)
		return
	}

	var jsonBytes []byte
	var err error

	if outputConfig.Compact {
		jsonBytes, err = jsonOutput.ToCompactJSON()
	} else {
		jsonBytes, err = jsonOutput.ToJSON()
	}

	if err != nil {
		fmt.Fprintf(w, `{"error": "failed to marshal JSON output: %v"}`, err)
		return
	}
	fmt.Fprintln(w, string(jsonBytes))
}

const (
	heavyRule = "═══════════════════════════════════════════════════════════════════════════════"
	lightRule = "───────────────────────────────────────────────────────────────────────────────"
)

// outputPlain formats the JSON output as human-readable plain text
func outputPlain(w io.Writer, jsonOutput *output.JSONOutput) {
	fmt.Fprintln(w, heavyRule)
	fmt.Fprintf(w, "                            radix-sorter Results\n")
	fmt.Fprintln(w, heavyRule)
	fmt.Fprintln(w)

	fmt.Fprintf(w, "📊 OVERVIEW\n")
	fmt.Fprintln(w, lightRule)
	fmt.Fprintf(w, "Analysis Type:   %s\n", jsonOutput.Metadata.AnalysisType)
	fmt.Fprintf(w, "Generated:       %s\n", jsonOutput.Metadata.GeneratedAt.Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintf(w, "Duration:        %d ms\n", jsonOutput.Metadata.DurationMS)
	fmt.Fprintf(w, "Inputs:          %d\n", jsonOutput.General.Inputs)
	fmt.Fprintf(w, "Total Values:    %s\n", output.FormatNumber(jsonOutput.General.TotalValues))
	fmt.Fprintln(w)

	fmt.Fprintf(w, "⚡ PERFORMANCE\n")
	fmt.Fprintln(w, lightRule)
	fmt.Fprintf(w, "Parse Time:      %d ms\n", jsonOutput.General.Parsing.DurationMS)
	fmt.Fprintf(w, "Parse Rate:      %s values/sec\n", output.FormatNumber(int(jsonOutput.General.Parsing.RatePerSecond)))
	fmt.Fprintf(w, "Sort Time:       %d ms\n", jsonOutput.General.Sorting.DurationMS)
	fmt.Fprintf(w, "Sort Rate:       %s values/sec\n", output.FormatNumber(int(jsonOutput.General.Sorting.RatePerSecond)))
	fmt.Fprintf(w, "Threshold:       %d", jsonOutput.General.Sorting.Threshold)
	if jsonOutput.General.Sorting.ForceRadix {
		fmt.Fprintf(w, " (radix forced)")
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w)

	for i, r := range jsonOutput.Results {
		fmt.Fprintf(w, "🎯 INPUT: %s\n", r.Name)
		fmt.Fprintln(w, lightRule)
		if r.File != "" {
			fmt.Fprintf(w, "File:            %s\n", r.File)
		}
		fmt.Fprintf(w, "Type:            %s\n", r.Type)
		fmt.Fprintf(w, "Values:          %s\n", output.FormatNumber(r.Count))
		if r.Filtered > 0 {
			fmt.Fprintf(w, "Filtered:        %s\n", output.FormatNumber(r.Filtered))
		}
		fmt.Fprintf(w, "Path:            %s", r.Stats.Path)
		if r.Stats.Path == "radix" {
			fmt.Fprintf(w, " (%d passes, %d skipped)", r.Stats.Passes, r.Stats.Skipped)
		}
		fmt.Fprintln(w)
		fmt.Fprintf(w, "Sort Time:       %s μs\n", output.FormatNumber(int(r.Stats.SortTimeUS)))

		if s := r.Summary; s != nil {
			fmt.Fprintln(w)
			fmt.Fprintf(w, "📍 SUMMARY\n")
			fmt.Fprintf(w, "...............................................................................\n")
			fmt.Fprintf(w, "  %-12s %s\n", "min", s.Min)
			fmt.Fprintf(w, "  %-12s %s\n", "median", s.Median)
			fmt.Fprintf(w, "  %-12s %s\n", "p90", s.P90)
			fmt.Fprintf(w, "  %-12s %s\n", "p99", s.P99)
			fmt.Fprintf(w, "  %-12s %s\n", "max", s.Max)
			fmt.Fprintf(w, "  %-12s %s\n", "distinct", output.FormatNumber(s.Distinct))
			fmt.Fprintf(w, "  %-12s %s\n", "longest run", output.FormatNumber(s.LongestRun))
			if s.NaNs > 0 {
				fmt.Fprintf(w, "  %-12s %s\n", "NaN", output.FormatNumber(s.NaNs))
			}
		}

		if len(r.Offsets) > 0 {
			fmt.Fprintln(w)
			fmt.Fprintf(w, "🔍 KEY BYTES\n")
			fmt.Fprintf(w, "...............................................................................\n")
			for _, o := range r.Offsets {
				note := ""
				if o.Skipped {
					note = "  [skipped]"
				}
				fmt.Fprintf(w, "  byte %d  %3d buckets used, fullest 0x%02x with %s%s\n",
					o.Offset, o.Occupied, o.MaxBucket, output.FormatNumber(int(o.MaxCount)), note)
			}
		}
		fmt.Fprintln(w)

		if i < len(jsonOutput.Results)-1 {
			fmt.Fprintf(w, "===============================================================================\n\n")
		}
	}

	if len(jsonOutput.Warnings) > 0 || len(jsonOutput.Errors) > 0 {
		fmt.Fprintf(w, "⚠️  DIAGNOSTICS\n")
		fmt.Fprintln(w, lightRule)

		var warnings []string
		for _, warning := range jsonOutput.Warnings {
			if warning.Type != "info" {
				warnings = append(warnings, warning.Message)
			}
		}
		if len(warnings) > 0 {
			fmt.Fprintf(w, "Warnings:\n  • %s\n", strings.Join(warnings, "\n  • "))
		}

		if len(jsonOutput.Errors) > 0 {
			fmt.Fprintf(w, "Errors:\n")
			for _, err := range jsonOutput.Errors {
				fmt.Fprintf(w, "  • %s\n", err.Message)
			}
		}

		if len(warnings) == 0 && len(jsonOutput.Errors) == 0 {
			fmt.Fprintf(w, "✅ No issues detected\n")
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintln(w, heavyRule)
}
