// Package quality scores rendered subtitles for readability and timing
// hygiene. The analyzer is pure and works on any cue list, including ones
// parsed from files produced elsewhere.
package quality

import (
	"encoding/json"
	"errors"
	"math"
	"slices"
	"strconv"
	"strings"

	"stitch/internal/transcript"
)

const (
	maxSamples = 5
	cpsEpsilon = 1e-3
)

// Options are the readability limits the analyzer grades against.
type Options struct {
	LineLengthLimit    int
	MinCPS             float64
	MaxCPS             float64
	MinDurationSeconds float64
	MaxDurationSeconds float64
}

// DefaultOptions mirrors the segmenter defaults.
func DefaultOptions() Options {
	return Options{
		LineLengthLimit:    42,
		MinCPS:             10,
		MaxCPS:             22,
		MinDurationSeconds: 0.5,
		MaxDurationSeconds: 7.0,
	}
}

// Validate reports the first invalid option.
func (o Options) Validate() error {
	switch {
	case o.LineLengthLimit <= 0:
		return errors.New("line length limit must be positive")
	case o.MinCPS < 0 || o.MaxCPS <= o.MinCPS:
		return errors.New("cps range must satisfy 0 <= min < max")
	case o.MinDurationSeconds < 0 || o.MaxDurationSeconds <= o.MinDurationSeconds:
		return errors.New("duration range must satisfy 0 <= min < max")
	}
	return nil
}

// Cue is one timed block of subtitle text.
type Cue struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// Analyzer grades cues against fixed options.
type Analyzer struct {
	opts Options
}

// New validates opts and returns an Analyzer.
func New(opts Options) (*Analyzer, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return &Analyzer{opts: opts}, nil
}

// Options returns the analyzer limits.
func (a *Analyzer) Options() Options {
	return a.opts
}

// Analyze grades cues together with the rendered output they came from.
func (a *Analyzer) Analyze(cues []Cue, rendered string) Report {
	indexes := make([]int, len(cues))
	for i := range indexes {
		indexes[i] = i
	}
	return a.analyze(cues, indexes, rendered, 0)
}

// AnalyzeSegments grades pipeline segments.
func (a *Analyzer) AnalyzeSegments(segments []transcript.Segment, rendered string) Report {
	cues := make([]Cue, len(segments))
	for i, seg := range segments {
		cues[i] = Cue{Start: seg.Start, End: seg.End, Text: seg.Text}
	}
	return a.Analyze(cues, rendered)
}

// AnalyzeEntries grades loosely typed entries such as decoded JSON. Entries
// without a usable numeric start and end are skipped and counted.
func (a *Analyzer) AnalyzeEntries(entries []map[string]any, rendered string) Report {
	cues := make([]Cue, 0, len(entries))
	indexes := make([]int, 0, len(entries))
	skipped := 0
	for i, entry := range entries {
		start, okStart := toFloat(entry["start"])
		end, okEnd := toFloat(entry["end"])
		if !okStart || !okEnd {
			skipped++
			continue
		}
		text, _ := entry["text"].(string)
		cues = append(cues, Cue{Start: start, End: end, Text: text})
		indexes = append(indexes, i)
	}
	return a.analyze(cues, indexes, rendered, skipped)
}

func (a *Analyzer) analyze(cues []Cue, indexes []int, rendered string, skipped int) Report {
	var d Details
	d.SegmentCount = len(cues)
	d.SkippedEntries = skipped
	d.SampleOffenders = SampleOffenders{
		LineLength:  []LineOffender{},
		CPSBelowMin: []CueOffender{},
		CPSAboveMax: []CueOffender{},
	}

	for i := 1; i < len(cues); i++ {
		if cues[i].Start < cues[i-1].End {
			d.OverlapViolations++
		}
	}

	lines := textLines(rendered)
	d.TextLineCount = len(lines)
	d.HyphenNormalizationOK = !hyphenSpacingBad(lines)
	for _, line := range lines {
		length := len([]rune(line.content))
		if length <= a.opts.LineLengthLimit {
			continue
		}
		d.LineLengthViolations++
		if len(d.SampleOffenders.LineLength) < maxSamples {
			d.SampleOffenders.LineLength = append(d.SampleOffenders.LineLength, LineOffender{
				Index:   line.number,
				Content: line.content,
				Length:  length,
				Limit:   a.opts.LineLengthLimit,
			})
		}
	}
	if d.TextLineCount > 0 {
		d.LineLengthViolationRatio = float64(d.LineLengthViolations) / float64(d.TextLineCount)
	}

	durations := make([]float64, 0, len(cues))
	for i, cue := range cues {
		dur := cue.End - cue.Start
		durations = append(durations, dur)
		text := strings.Join(strings.Fields(cue.Text), " ")
		cps := transcript.CharsPerSecond(text, math.Max(dur, cpsEpsilon))
		offender := CueOffender{Index: indexes[i], Start: cue.Start, End: cue.End, CPS: cps, Text: text}
		switch {
		case cps < a.opts.MinCPS:
			d.CPSHistogram.BelowMin++
			if len(d.SampleOffenders.CPSBelowMin) < maxSamples {
				d.SampleOffenders.CPSBelowMin = append(d.SampleOffenders.CPSBelowMin, offender)
			}
		case cps > a.opts.MaxCPS:
			d.CPSHistogram.AboveMax++
			if len(d.SampleOffenders.CPSAboveMax) < maxSamples {
				d.SampleOffenders.CPSAboveMax = append(d.SampleOffenders.CPSAboveMax, offender)
			}
		default:
			d.CPSHistogram.WithinRange++
		}
		switch {
		case dur < a.opts.MinDurationSeconds:
			d.BoundaryCounts.BelowMin++
		case dur > a.opts.MaxDurationSeconds:
			d.BoundaryCounts.AboveMax++
		default:
			d.BoundaryCounts.WithinRange++
		}
	}
	d.CPSWithinRangeRatio = 1
	if n := d.CPSHistogram.Total(); n > 0 {
		d.CPSWithinRangeRatio = float64(d.CPSHistogram.WithinRange) / float64(n)
	}
	d.DurationStats = summarize(durations)

	return Report{Score: score(d), Details: d}
}

// score applies every penalty independently and clamps the result.
func score(d Details) float64 {
	s := 1.0
	if d.OverlapViolations > 0 {
		s -= 0.3
	}
	if !d.HyphenNormalizationOK {
		s -= 0.2
	}
	s -= math.Min(0.3, d.LineLengthViolationRatio*0.3)
	s -= math.Min(0.2, (1-d.CPSWithinRangeRatio)*0.2)
	if outside := d.BoundaryCounts.Outside(); outside > 0 {
		ratio := float64(outside) / float64(d.BoundaryCounts.Total())
		s -= 0.1 + math.Min(0.4, ratio*0.4)
	}
	return math.Max(0, math.Min(1, s))
}

func summarize(values []float64) DurationStats {
	if len(values) == 0 {
		return DurationStats{}
	}
	sorted := slices.Clone(values)
	slices.Sort(sorted)
	sum := 0.0
	for _, v := range sorted {
		sum += v
	}
	mid := len(sorted) / 2
	median := sorted[mid]
	if len(sorted)%2 == 0 {
		median = (sorted[mid-1] + sorted[mid]) / 2
	}
	return DurationStats{
		Min:    sorted[0],
		Max:    sorted[len(sorted)-1],
		Mean:   sum / float64(len(sorted)),
		Median: median,
	}
}

func toFloat(v any) (float64, bool) {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int64:
		f = float64(n)
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
