package output

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/thomcc/radix-sorter/sorter"
	"github.com/thomcc/radix-sorter/version"
)

// JSONOutput represents the complete analysis output structure
type JSONOutput struct {
	Metadata  Metadata       `json:"metadata"`
	General   General        `json:"general"`
	Results   []ColumnResult `json:"results"`
	LiveStats *LiveStats     `json:"live_stats,omitempty"`
	Warnings  []Warning      `json:"warnings"`
	Errors    []Error        `json:"errors"`

	// Mutex for thread-safe warning/error appending
	mu sync.Mutex `json:"-"`
}

// Metadata contains information about the analysis run
type Metadata struct {
	GeneratedAt  time.Time `json:"generated_at"`
	AnalysisType string    `json:"analysis_type"`
	Version      string    `json:"version"`
	DurationMS   int64     `json:"duration_ms"`
}

// General contains overall statistics and information
type General struct {
	Inputs      int     `json:"inputs"`
	TotalValues int     `json:"total_values"`
	Parsing     Parsing `json:"parsing"`
	Sorting     Sorting `json:"sorting"`
}

// Parsing contains parsing performance metrics
type Parsing struct {
	DurationMS    int64 `json:"duration_ms"`
	RatePerSecond int64 `json:"rate_per_second"`
}

// Sorting describes how the sorter was configured and how fast it ran
type Sorting struct {
	Threshold     int   `json:"threshold"`
	ForceRadix    bool  `json:"force_radix"`
	DurationMS    int64 `json:"duration_ms"`
	RatePerSecond int64 `json:"rate_per_second"`
}

// ColumnResult represents the outcome of sorting one input
type ColumnResult struct {
	Name        string             `json:"name"`
	File        string             `json:"file,omitempty"`
	Type        string             `json:"type"`
	Count       int                `json:"count"`
	Filtered    int                `json:"filtered,omitempty"`
	Stats       SortStats          `json:"stats"`
	Summary     *Summary           `json:"summary,omitempty"`
	Offsets     []OffsetStat       `json:"offsets,omitempty"`
	Permutation []uint32           `json:"permutation,omitempty"`
	Histograms  []sorter.Histogram `json:"-"`
	Shape       sorter.Shape       `json:"-"`
}

// SortStats reports what the sorter did for one column
type SortStats struct {
	Path       string `json:"path"`
	Shape      string `json:"shape"`
	Passes     int    `json:"passes"`
	Skipped    int    `json:"skipped_passes"`
	SortTimeUS int64  `json:"sort_time_us"`
}

// Summary holds order statistics read through the permutation. Values are
// rendered the way they appear in the input.
type Summary struct {
	Min        string `json:"min"`
	Max        string `json:"max"`
	Median     string `json:"median"`
	P90        string `json:"p90"`
	P99        string `json:"p99"`
	Distinct   int    `json:"distinct"`
	LongestRun int    `json:"longest_run"`
	NaNs       int    `json:"nans,omitempty"`
}

// OffsetStat summarizes the histogram of one key byte
type OffsetStat struct {
	Offset    int    `json:"offset"`
	Occupied  int    `json:"occupied_buckets"`
	MaxBucket int    `json:"max_bucket"`
	MaxCount  uint32 `json:"max_count"`
	Skipped   bool   `json:"skipped"`
}

// Warning represents a warning message
type Warning struct {
	Type    string `json:"type"`
	Message string `json:"message"`
	Count   int    `json:"count,omitempty"`
}

// Error represents an error message
type Error struct {
	Type    string `json:"type"`
	Message string `json:"message"`
	Count   int    `json:"count,omitempty"`
}

// NewJSONOutput creates a new JSONOutput with default metadata
func NewJSONOutput(analysisType string, startTime time.Time) *JSONOutput {
	return &JSONOutput{
		Metadata: Metadata{
			GeneratedAt:  time.Now().UTC(),
			AnalysisType: analysisType,
			Version:      version.Version,
			DurationMS:   time.Since(startTime).Milliseconds(),
		},
		Results:  []ColumnResult{},
		Warnings: []Warning{},
		Errors:   []Error{},
	}
}

// ToJSON converts the output to pretty-printed JSON
func (j *JSONOutput) ToJSON() ([]byte, error) {
	return json.MarshalIndent(j, "", "  ")
}

// ToCompactJSON converts the output to compact JSON
func (j *JSONOutput) ToCompactJSON() ([]byte, error) {
	return json.Marshal(j)
}

// AddWarning adds a warning to the output (thread-safe)
func (j *JSONOutput) AddWarning(warningType, message string, count int) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Warnings = append(j.Warnings, Warning{
		Type:    warningType,
		Message: message,
		Count:   count,
	})
}

// AddError adds an error to the output (thread-safe)
func (j *JSONOutput) AddError(errorType, message string, count int) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Errors = append(j.Errors, Error{
		Type:    errorType,
		Message: message,
		Count:   count,
	})
}

// LiveStats contains statistics for live mode
type LiveStats struct {
	Iteration      int          `json:"iteration"`
	ProcessedBatch int          `json:"processed_batch"`
	InvalidEvents  int          `json:"invalid_events"`
	LoopDuration   int64        `json:"loop_duration_ms"`
	SortDuration   int64        `json:"sort_duration_us"`
	Windows        []WindowStat `json:"windows"`
}

// WindowStat describes one sliding window after an update.
type WindowStat struct {
	Name     string `json:"name"`
	Size     int    `json:"size"`
	Distinct int    `json:"distinct"`
	TopValue string `json:"top_value,omitempty"`
	TopCount int    `json:"top_count"`
}

// UpdateDuration updates the duration in metadata
func (j *JSONOutput) UpdateDuration(startTime time.Time) {
	j.Metadata.DurationMS = time.Since(startTime).Milliseconds()
}

// OffsetStats summarizes each histogram. An offset is marked skipped when a
// single bucket holds every key, since the radix pass for it does no work.
func OffsetStats(hists []sorter.Histogram, count int) []OffsetStat {
	if len(hists) == 0 {
		return nil
	}
	out := make([]OffsetStat, len(hists))
	for j := range hists {
		h := &hists[j]
		st := OffsetStat{Offset: j, Occupied: h.Occupied()}
		for b, c := range h {
			if c > st.MaxCount {
				st.MaxCount = c
				st.MaxBucket = b
			}
		}
		st.Skipped = count > 0 && st.MaxCount == uint32(count)
		out[j] = st
	}
	return out
}
