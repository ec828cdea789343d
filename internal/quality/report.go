package quality

// Report is the outcome of one analysis. Field names follow the reporting
// format shared with benchmark tooling, so they serialize with snake_case keys.
type Report struct {
	Score   float64 `json:"score" yaml:"score"`
	Details Details `json:"details" yaml:"details"`
}

// Details carries the individual checks that make up the score.
type Details struct {
	OverlapViolations        int             `json:"overlap_violations" yaml:"overlap_violations"`
	HyphenNormalizationOK    bool            `json:"hyphen_normalization_ok" yaml:"hyphen_normalization_ok"`
	LineLengthViolations     int             `json:"line_length_violations" yaml:"line_length_violations"`
	LineLengthViolationRatio float64         `json:"line_length_violation_ratio" yaml:"line_length_violation_ratio"`
	CPSWithinRangeRatio      float64         `json:"cps_within_range_ratio" yaml:"cps_within_range_ratio"`
	DurationStats            DurationStats   `json:"duration_stats" yaml:"duration_stats"`
	CPSHistogram             Histogram       `json:"cps_histogram" yaml:"cps_histogram"`
	BoundaryCounts           Histogram       `json:"boundary_counts" yaml:"boundary_counts"`
	SampleOffenders          SampleOffenders `json:"sample_offenders" yaml:"sample_offenders"`
	SegmentCount             int             `json:"segment_count" yaml:"segment_count"`
	TextLineCount            int             `json:"text_line_count" yaml:"text_line_count"`
	SkippedEntries           int             `json:"skipped_entries" yaml:"skipped_entries"`
}

// DurationStats summarizes cue durations in seconds.
type DurationStats struct {
	Min    float64 `json:"min" yaml:"min"`
	Max    float64 `json:"max" yaml:"max"`
	Mean   float64 `json:"mean" yaml:"mean"`
	Median float64 `json:"median" yaml:"median"`
}

// Histogram tallies values against a [min, max] window.
type Histogram struct {
	BelowMin    int `json:"below_min" yaml:"below_min"`
	WithinRange int `json:"within_range" yaml:"within_range"`
	AboveMax    int `json:"above_max" yaml:"above_max"`
}

// Total returns the number of tallied values.
func (h Histogram) Total() int {
	return h.BelowMin + h.WithinRange + h.AboveMax
}

// Outside returns the number of values outside the window.
func (h Histogram) Outside() int {
	return h.BelowMin + h.AboveMax
}

// SampleOffenders lists a bounded number of concrete violations.
type SampleOffenders struct {
	LineLength  []LineOffender `json:"line_length" yaml:"line_length"`
	CPSBelowMin []CueOffender  `json:"cps_below_min" yaml:"cps_below_min"`
	CPSAboveMax []CueOffender  `json:"cps_above_max" yaml:"cps_above_max"`
}

// LineOffender is a rendered text line over the length limit. Index is the
// 1-based line number in the rendered text.
type LineOffender struct {
	Index   int    `json:"index" yaml:"index"`
	Content string `json:"content" yaml:"content"`
	Length  int    `json:"length" yaml:"length"`
	Limit   int    `json:"limit" yaml:"limit"`
}

// CueOffender is a cue outside the reading-rate window. Index is the cue's
// position in the analyzed input.
type CueOffender struct {
	Index int     `json:"index" yaml:"index"`
	Start float64 `json:"start" yaml:"start"`
	End   float64 `json:"end" yaml:"end"`
	CPS   float64 `json:"cps" yaml:"cps"`
	Text  string  `json:"text" yaml:"text"`
}

// Passed reports whether the score reaches threshold.
func (r Report) Passed(threshold float64) bool {
	return r.Score >= threshold
}

// LogAttrs returns a compact summary suitable for slog.
func (r Report) LogAttrs() []any {
	d := r.Details
	return []any{
		"score", r.Score,
		"segment_count", d.SegmentCount,
		"overlap_violations", d.OverlapViolations,
		"hyphen_normalization_ok", d.HyphenNormalizationOK,
		"line_length_violations", d.LineLengthViolations,
		"cps_within_range_ratio", d.CPSWithinRangeRatio,
		"duration_outside", d.BoundaryCounts.Outside(),
		"skipped_entries", d.SkippedEntries,
	}
}
