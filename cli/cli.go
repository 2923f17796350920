package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/thomcc/radix-sorter/config"
	"github.com/thomcc/radix-sorter/ingestor"
	"github.com/thomcc/radix-sorter/sorter"
	"github.com/thomcc/radix-sorter/version"
	cli "github.com/urfave/cli/v2"
)

// parseDate attempts to parse the build date
func parseDate(d string) time.Time {
	t, err := time.Parse(time.RFC3339, d)
	if err != nil {
		return time.Now()
	}
	return t
}

// Shared flag definitions to eliminate duplication
var (
	// Configuration flags
	configFlag = &cli.StringFlag{
		Name:  "config",
		Usage: "Path to configuration file (mutually exclusive with other flags)",
	}
	logLevelFlag = &cli.StringFlag{
		Name:  "logLevel",
		Usage: "Log level: debug, info, warning or error",
		Value: "info",
	}

	// Sorting flags
	typeFlag = &cli.StringFlag{
		Name:  "type",
		Usage: "Element type of the values: u8, u16, u32, i8, i16, i32, f32, f64, i64, u64 or ipv4",
		Value: "u32",
	}
	thresholdFlag = &cli.IntFlag{
		Name:  "threshold",
		Usage: "Inputs shorter than this use insertion sort instead of radix sort",
		Value: sorter.DefaultThreshold,
	}
	forceRadixFlag = &cli.BoolFlag{
		Name:  "forceRadix",
		Usage: "Use radix sort regardless of input length",
		Value: false,
	}

	// Filtering flags
	minFlag = &cli.Float64Flag{
		Name:  "min",
		Usage: "Drop values below this bound before sorting",
	}
	maxFlag = &cli.Float64Flag{
		Name:  "max",
		Usage: "Drop values above this bound before sorting",
	}

	// Output flags
	plotPathFlag = &cli.StringFlag{
		Name:  "plotPath",
		Usage: "Path where to save the histogram heatmap (e.g., '/path/to/hist.html'). If not provided, no plot will be generated.",
	}
	permutationFlag = &cli.BoolFlag{
		Name:  "permutation",
		Usage: "Include the full permutation of each input in the JSON output",
		Value: false,
	}
	compactFlag = &cli.BoolFlag{
		Name:  "compact",
		Usage: "Output compact JSON (no pretty printing)",
		Value: false,
	}
	plainFlag = &cli.BoolFlag{
		Name:  "plain",
		Usage: "Output plain text format for easy readability",
		Value: false,
	}

	// Live-specific flags
	portFlag = &cli.StringFlag{
		Name:  "port",
		Usage: "Port to listen on for lumberjack connections",
		Value: config.DefaultPort,
	}
	slidingWindowMaxTimeFlag = &cli.DurationFlag{
		Name:  "slidingWindowMaxTime",
		Usage: "Maximum time duration for sliding window",
		Value: config.DefaultSlidingWindowMaxTime,
	}
	slidingWindowMaxSizeFlag = &cli.IntFlag{
		Name:  "slidingWindowMaxSize",
		Usage: "Maximum number of values in sliding window",
		Value: config.DefaultSlidingWindowMaxSize,
	}
	sleepBetweenIterationsFlag = &cli.IntFlag{
		Name:  "sleepBetweenIterations",
		Usage: "Sleep duration between iterations in seconds",
		Value: config.DefaultSleepBetweenIterations,
	}

	// Static-specific flags
	inputFlag = &cli.StringSliceFlag{
		Name:  "input",
		Usage: "Value file to sort, as 'name=path' or 'path' (repeatable)",
	}
	tuiFlag = &cli.BoolFlag{
		Name:  "tui",
		Usage: "Launch TUI (Terminal User Interface) mode",
		Value: false,
	}
)

// Shared validation functions
func validateConfigModeFlags(c *cli.Context, allowedFlags []string) error {
	allowed := make(map[string]bool)
	for _, flag := range allowedFlags {
		allowed[flag] = true
	}

	flagsToCheck := []string{
		"input", "type", "threshold", "forceRadix", "min", "max", "plotPath",
		"permutation", "port", "slidingWindowMaxTime", "slidingWindowMaxSize",
		"sleepBetweenIterations", "tui", "compact", "plain", "logLevel",
	}

	for _, flag := range flagsToCheck {
		if c.IsSet(flag) && !allowed[flag] {
			return fmt.Errorf("when using --config, only %v flags are allowed", allowedFlags)
		}
	}
	return nil
}

func validatePlotPath(plotPath string) error {
	if plotPath != "" {
		plotDir := filepath.Dir(plotPath)
		if plotDir == "." {
			plotDir, _ = os.Getwd()
		}
		if _, err := os.Stat(plotDir); os.IsNotExist(err) {
			return fmt.Errorf("plot directory does not exist: %s", plotDir)
		}
	}
	return nil
}

func validateThreshold(threshold int) error {
	if threshold < 0 {
		return fmt.Errorf("threshold must not be negative, got %d", threshold)
	}
	return nil
}

// filterFromFlags builds a value filter from --min and --max.
func filterFromFlags(c *cli.Context) (config.ValueFilter, error) {
	var f config.ValueFilter
	if c.IsSet("min") {
		v := c.Float64("min")
		f.Min = &v
	}
	if c.IsSet("max") {
		v := c.Float64("max")
		f.Max = &v
	}
	if f.Min != nil && f.Max != nil && *f.Min > *f.Max {
		return f, fmt.Errorf("min (%g) must not exceed max (%g)", *f.Min, *f.Max)
	}
	return f, nil
}

// Command handler functions to reduce deep nesting

// handleLiveCommand processes the live command with proper separation of concerns
func handleLiveCommand(c *cli.Context) error {
	configPath := c.String("config")
	if configPath != "" {
		return handleLiveConfigMode(c, configPath)
	}
	return handleLiveFlagsMode(c)
}

// handleLiveConfigMode handles live command when using config file
func handleLiveConfigMode(c *cli.Context, configPath string) error {
	if err := validateConfigModeFlags(c, []string{"logLevel"}); err != nil {
		return err
	}

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := cfg.ValidateLive(); err != nil {
		return fmt.Errorf("invalid live configuration: %w", err)
	}
	if c.IsSet("logLevel") {
		cfg.Global.LogLevel = c.String("logLevel")
	}

	return LiveFromConfig(cfg)
}

// handleLiveFlagsMode handles live command when using CLI flags only
func handleLiveFlagsMode(c *cli.Context) error {
	t, err := ingestor.ParseElementType(c.String("type"))
	if err != nil {
		return err
	}
	if err := validateThreshold(c.Int("threshold")); err != nil {
		return err
	}
	filter, err := filterFromFlags(c)
	if err != nil {
		return err
	}

	cfg := createLiveConfigFromCLI(
		c.String("port"),
		t,
		c.Duration("slidingWindowMaxTime"),
		c.Int("slidingWindowMaxSize"),
		c.Int("sleepBetweenIterations"),
		filter,
	)
	cfg.Global.Threshold = c.Int("threshold")
	cfg.Global.ForceRadix = c.Bool("forceRadix")
	cfg.Global.LogLevel = c.String("logLevel")

	if err := cfg.ValidateLive(); err != nil {
		return fmt.Errorf("invalid live configuration: %w", err)
	}
	return LiveFromConfig(cfg)
}

// handleStaticCommand processes the static command with proper separation of concerns
func handleStaticCommand(c *cli.Context) error {
	configPath := c.String("config")
	if configPath != "" {
		return handleStaticConfigMode(c, configPath)
	}
	return handleStaticFlagsMode(c)
}

// handleStaticConfigMode handles static command when using config file
func handleStaticConfigMode(c *cli.Context, configPath string) error {
	if err := validateConfigModeFlags(c, []string{"tui", "compact", "plain", "logLevel"}); err != nil {
		return err
	}

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := cfg.ValidateStatic(); err != nil {
		return fmt.Errorf("invalid static configuration: %w", err)
	}
	if c.IsSet("logLevel") {
		cfg.Global.LogLevel = c.String("logLevel")
	}

	if err := validatePlotPath(cfg.Static.PlotPath); err != nil {
		return err
	}

	return StaticFromConfig(cfg, OutputConfig{
		Compact: c.Bool("compact"),
		Plain:   c.Bool("plain"),
		TUI:     c.Bool("tui"),
	})
}

// handleStaticFlagsMode handles static command when using CLI flags only
func handleStaticFlagsMode(c *cli.Context) error {
	inputs := c.StringSlice("input")
	if len(inputs) == 0 {
		return fmt.Errorf("at least one --input is required when not using --config")
	}

	t, err := ingestor.ParseElementType(c.String("type"))
	if err != nil {
		return err
	}
	if err := validateThreshold(c.Int("threshold")); err != nil {
		return err
	}
	if err := validatePlotPath(c.String("plotPath")); err != nil {
		return err
	}
	filter, err := filterFromFlags(c)
	if err != nil {
		return err
	}

	cfg, err := createConfigFromCLI(inputs, t, filter, c.String("plotPath"), c.Bool("permutation"))
	if err != nil {
		return err
	}
	cfg.Global.Threshold = c.Int("threshold")
	cfg.Global.ForceRadix = c.Bool("forceRadix")
	cfg.Global.LogLevel = c.String("logLevel")

	if err := cfg.ValidateStatic(); err != nil {
		return err
	}

	return StaticFromConfig(cfg, OutputConfig{
		Compact: c.Bool("compact"),
		Plain:   c.Bool("plain"),
		TUI:     c.Bool("tui"),
	})
}

var App = &cli.App{
	Name:     "radix-sorter",
	Usage:    "Compute sorting permutations of numeric columns from files or live streams",
	Version:  version.Version,
	Compiled: parseDate(version.Date),
	Commands: []*cli.Command{
		{
			Name:  "live",
			Usage: "Sort sliding windows of values received over lumberjack",
			Flags: []cli.Flag{
				// Configuration
				configFlag,
				logLevelFlag,
				// Live-specific flags
				portFlag,
				slidingWindowMaxTimeFlag,
				slidingWindowMaxSizeFlag,
				sleepBetweenIterationsFlag,
				// Sorting flags
				typeFlag,
				thresholdFlag,
				forceRadixFlag,
				// Filtering flags
				minFlag,
				maxFlag,
			},
			Action: handleLiveCommand,
		},
		{
			Name:  "static",
			Usage: "Sort values read from one or more files",
			Flags: []cli.Flag{
				// Configuration
				configFlag,
				logLevelFlag,
				// Static-specific flags
				inputFlag,
				tuiFlag,
				// Sorting flags
				typeFlag,
				thresholdFlag,
				forceRadixFlag,
				// Filtering flags
				minFlag,
				maxFlag,
				// Output flags
				plotPathFlag,
				permutationFlag,
				compactFlag,
				plainFlag,
			},
			Action: handleStaticCommand,
		},
	},
}
