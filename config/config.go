package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/thomcc/radix-sorter/ingestor"
	"github.com/thomcc/radix-sorter/sorter"
)

const (
	DefaultPort                   = "5044"
	DefaultSlidingWindowMaxTime   = 2 * time.Hour
	DefaultSlidingWindowMaxSize   = 100000
	DefaultSleepBetweenIterations = 10
)

type GlobalConfig struct {
	LogLevel   string `toml:"logLevel"`
	LogFormat  string `toml:"logFormat"`
	Threshold  int    `toml:"threshold"`
	ForceRadix bool   `toml:"forceRadix"`
}

// ValueFilter drops values outside [Min, Max]. Nil bounds are open.
type ValueFilter struct {
	Min *float64
	Max *float64
}

// Active reports whether either bound is set.
func (f ValueFilter) Active() bool {
	return f.Min != nil || f.Max != nil
}

// Keep reports whether v lies within the bounds. NaN is never kept by an
// active filter.
func (f ValueFilter) Keep(v float64) bool {
	if f.Min != nil && !(v >= *f.Min) {
		return false
	}
	if f.Max != nil && !(v <= *f.Max) {
		return false
	}
	return true
}

// InputConfig describes one value file to sort in static mode.
type InputConfig struct {
	File    string               `toml:"file"`
	Type    ingestor.ElementType `toml:"-"`
	TypeRaw string               `toml:"type"`
	Filter  ValueFilter          `toml:"-"`
}

// WindowConfig describes one sliding window sorted in live mode.
type WindowConfig struct {
	Type                   ingestor.ElementType `toml:"-"`
	TypeRaw                string               `toml:"type"`
	SlidingWindowMaxTime   time.Duration        `toml:"slidingWindowMaxTime"`
	SlidingWindowMaxSize   int                  `toml:"slidingWindowMaxSize"`
	SleepBetweenIterations int                  `toml:"sleepBetweenIterations"`
	Filter                 ValueFilter          `toml:"-"`
}

type StaticConfig struct {
	PlotPath           string `toml:"plotPath"`
	IncludePermutation bool   `toml:"includePermutation"`
}

type LiveConfig struct {
	Port string `toml:"port"`
}

type Config struct {
	Global       *GlobalConfig `toml:"global"`
	Static       *StaticConfig `toml:"static"`
	Live         *LiveConfig   `toml:"live"`
	StaticInputs map[string]*InputConfig
	LiveWindows  map[string]*WindowConfig
}

// New returns an empty configuration with every section present.
func New() *Config {
	return &Config{
		Global:       &GlobalConfig{Threshold: sorter.DefaultThreshold},
		Static:       &StaticConfig{},
		Live:         &LiveConfig{},
		StaticInputs: make(map[string]*InputConfig),
		LiveWindows:  make(map[string]*WindowConfig),
	}
}

var staticFields = map[string]bool{"plotPath": true, "includePermutation": true}
var liveFields = map[string]bool{"port": true}

func LoadConfig(configPath string) (*Config, error) {
	configData, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(string(configData))
}

// Parse decodes a TOML document. Sub-tables of [static] are inputs and
// sub-tables of [live] are windows, keyed by their table name.
func Parse(data string) (*Config, error) {
	var rawConfig map[string]any
	if _, err := toml.Decode(data, &rawConfig); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	config := New()

	for key, value := range rawConfig {
		switch key {
		case "global":
			if globalMap, ok := value.(map[string]any); ok {
				global, err := parseGlobalConfig(globalMap)
				if err != nil {
					return nil, fmt.Errorf("parsing global config: %w", err)
				}
				config.Global = global
			}
		case "static":
			if staticMap, ok := value.(map[string]any); ok {
				config.Static = parseStaticConfig(staticMap)
				for subKey, subValue := range staticMap {
					if staticFields[subKey] {
						continue
					}
					if inputMap, ok := subValue.(map[string]any); ok {
						input, err := parseInputConfig(inputMap)
						if err != nil {
							return nil, fmt.Errorf("parsing input config %q: %w", subKey, err)
						}
						config.StaticInputs[subKey] = input
					}
				}
			}
		case "live":
			if liveMap, ok := value.(map[string]any); ok {
				config.Live = parseLiveConfig(liveMap)
				for subKey, subValue := range liveMap {
					if liveFields[subKey] {
						continue
					}
					if windowMap, ok := subValue.(map[string]any); ok {
						window, err := parseWindowConfig(windowMap)
						if err != nil {
							return nil, fmt.Errorf("parsing window config %q: %w", subKey, err)
						}
						config.LiveWindows[subKey] = window
					}
				}
			}
		}
	}

	return config, nil
}

func parseGlobalConfig(m map[string]any) (*GlobalConfig, error) {
	config := &GlobalConfig{Threshold: sorter.DefaultThreshold}
	if v, ok := m["logLevel"].(string); ok {
		config.LogLevel = v
	}
	if v, ok := m["logFormat"].(string); ok {
		config.LogFormat = v
	}
	if v, ok := m["threshold"].(int64); ok {
		if v < 0 {
			return nil, fmt.Errorf("threshold must not be negative, got %d", v)
		}
		config.Threshold = int(v)
	}
	if v, ok := m["forceRadix"].(bool); ok {
		config.ForceRadix = v
	}
	return config, nil
}

func parseStaticConfig(m map[string]any) *StaticConfig {
	config := &StaticConfig{}
	if v, ok := m["plotPath"].(string); ok {
		config.PlotPath = v
	}
	if v, ok := m["includePermutation"].(bool); ok {
		config.IncludePermutation = v
	}
	return config
}

func parseLiveConfig(m map[string]any) *LiveConfig {
	config := &LiveConfig{}
	if v, ok := m["port"].(string); ok {
		config.Port = v
	}
	return config
}

func parseElementType(m map[string]any) (ingestor.ElementType, string, error) {
	raw, _ := m["type"].(string)
	if raw == "" {
		return ingestor.Unknown, "", nil
	}
	t, err := ingestor.ParseElementType(raw)
	if err != nil {
		return ingestor.Unknown, raw, err
	}
	return t, raw, nil
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int64:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

func parseFilter(m map[string]any) (ValueFilter, error) {
	var f ValueFilter
	if raw, ok := m["min"]; ok {
		v, ok := toFloat(raw)
		if !ok {
			return f, fmt.Errorf("min must be a number, got %v", raw)
		}
		f.Min = &v
	}
	if raw, ok := m["max"]; ok {
		v, ok := toFloat(raw)
		if !ok {
			return f, fmt.Errorf("max must be a number, got %v", raw)
		}
		f.Max = &v
	}
	if f.Min != nil && f.Max != nil && *f.Min > *f.Max {
		return f, fmt.Errorf("min %v is greater than max %v", *f.Min, *f.Max)
	}
	return f, nil
}

func parseInputConfig(m map[string]any) (*InputConfig, error) {
	config := &InputConfig{}
	if v, ok := m["file"].(string); ok {
		config.File = v
	}
	t, raw, err := parseElementType(m)
	if err != nil {
		return nil, err
	}
	config.Type, config.TypeRaw = t, raw

	filter, err := parseFilter(m)
	if err != nil {
		return nil, err
	}
	config.Filter = filter
	return config, nil
}

func parseWindowConfig(m map[string]any) (*WindowConfig, error) {
	config := &WindowConfig{
		SlidingWindowMaxTime:   DefaultSlidingWindowMaxTime,
		SlidingWindowMaxSize:   DefaultSlidingWindowMaxSize,
		SleepBetweenIterations: DefaultSleepBetweenIterations,
	}
	t, raw, err := parseElementType(m)
	if err != nil {
		return nil, err
	}
	config.Type, config.TypeRaw = t, raw

	if v, ok := m["slidingWindowMaxTime"].(string); ok {
		duration, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("invalid slidingWindowMaxTime %q: %w", v, err)
		}
		config.SlidingWindowMaxTime = duration
	}
	if v, ok := m["slidingWindowMaxSize"].(int64); ok {
		config.SlidingWindowMaxSize = int(v)
	}
	if v, ok := m["sleepBetweenIterations"].(int64); ok {
		config.SleepBetweenIterations = int(v)
	}

	filter, err := parseFilter(m)
	if err != nil {
		return nil, err
	}
	config.Filter = filter
	return config, nil
}

// InputNames returns the configured input names in sorted order.
func (c *Config) InputNames() []string {
	names := make([]string, 0, len(c.StaticInputs))
	for name := range c.StaticInputs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// WindowNames returns the configured window names in sorted order.
func (c *Config) WindowNames() []string {
	names := make([]string, 0, len(c.LiveWindows))
	for name := range c.LiveWindows {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (c *Config) ValidateStatic() error {
	if c.Static == nil {
		return fmt.Errorf("static configuration section is required")
	}

	if len(c.StaticInputs) == 0 {
		return fmt.Errorf("at least one input is required in static mode (e.g., [static.input_name])")
	}

	for _, name := range c.InputNames() {
		input := c.StaticInputs[name]
		if input.File == "" {
			return fmt.Errorf("file is required for input %q", name)
		}
		if input.Type == ingestor.Unknown {
			return fmt.Errorf("type is required for input %q", name)
		}
		if _, err := os.Stat(input.File); os.IsNotExist(err) {
			return fmt.Errorf("input file does not exist: %s", input.File)
		}
	}

	// PlotPath is optional - no validation needed if empty

	return nil
}

func (c *Config) ValidateLive() error {
	if c.Live == nil {
		return fmt.Errorf("live configuration section is required")
	}

	if c.Live.Port == "" {
		return fmt.Errorf("port is required in live configuration")
	}

	if len(c.LiveWindows) == 0 {
		return fmt.Errorf("at least one sliding window configuration is required in live mode (e.g., [live.window_name])")
	}

	for _, name := range c.WindowNames() {
		window := c.LiveWindows[name]
		if window.Type == ingestor.Unknown {
			return fmt.Errorf("type is required for window %q", name)
		}
		if window.SlidingWindowMaxTime <= 0 {
			return fmt.Errorf("slidingWindowMaxTime must be positive for window %q", name)
		}
		if window.SlidingWindowMaxSize <= 0 {
			return fmt.Errorf("slidingWindowMaxSize must be positive for window %q", name)
		}
	}

	return nil
}

// ParseInputArg splits a command line input of the form "name=path". A bare
// path is named after its file.
func ParseInputArg(arg string) (name, path string, err error) {
	if arg == "" {
		return "", "", fmt.Errorf("empty input")
	}
	if i := strings.IndexByte(arg, '='); i >= 0 {
		name, path = arg[:i], arg[i+1:]
		if name == "" || path == "" {
			return "", "", fmt.Errorf("invalid input %q: want name=path", arg)
		}
		return name, path, nil
	}
	return filepath.Base(arg), arg, nil
}
