package quality

import (
	"encoding/json"
	"math"
	"strings"
	"testing"

	"stitch/internal/transcript"
)

func newAnalyzer(t *testing.T) *Analyzer {
	t.Helper()
	a, err := New(DefaultOptions())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return a
}

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestEmptyInputScoresPerfect(t *testing.T) {
	r := newAnalyzer(t).Analyze(nil, "")
	if r.Score != 1.0 {
		t.Fatalf("score = %v, want 1.0", r.Score)
	}
	d := r.Details
	if d.OverlapViolations != 0 || d.LineLengthViolations != 0 || d.BoundaryCounts.Outside() != 0 {
		t.Fatalf("expected zero violations, got %+v", d)
	}
	if !d.HyphenNormalizationOK {
		t.Fatal("expected hyphen spacing ok on empty input")
	}
	if d.CPSWithinRangeRatio != 1.0 {
		t.Fatalf("cps ratio = %v, want 1.0", d.CPSWithinRangeRatio)
	}
	if d.DurationStats != (DurationStats{}) {
		t.Fatalf("expected zero duration stats, got %+v", d.DurationStats)
	}
}

func TestOverlapPenalty(t *testing.T) {
	cues := []Cue{
		{Start: 0, End: 2, Text: "Hello there"},
		{Start: 1, End: 3, Text: "friend"},
	}
	r := newAnalyzer(t).Analyze(cues, "")
	if r.Details.OverlapViolations != 1 {
		t.Fatalf("overlap violations = %d, want 1", r.Details.OverlapViolations)
	}
	if r.Score > 0.7 {
		t.Fatalf("score = %v, want <= 0.7", r.Score)
	}
}

func TestCPSAboveMax(t *testing.T) {
	text := strings.Repeat("abcde", 10)
	r := newAnalyzer(t).Analyze([]Cue{{Start: 0, End: 2, Text: text}}, "")
	d := r.Details
	if d.CPSHistogram.AboveMax != 1 {
		t.Fatalf("above max = %d, want 1", d.CPSHistogram.AboveMax)
	}
	if d.CPSWithinRangeRatio != 0 {
		t.Fatalf("cps ratio = %v, want 0", d.CPSWithinRangeRatio)
	}
	if len(d.SampleOffenders.CPSAboveMax) != 1 || !approx(d.SampleOffenders.CPSAboveMax[0].CPS, 25) {
		t.Fatalf("unexpected offenders %+v", d.SampleOffenders.CPSAboveMax)
	}
	if !approx(r.Score, 0.8) {
		t.Fatalf("score = %v, want 0.8", r.Score)
	}
}

func TestHyphenSpacing(t *testing.T) {
	a := newAnalyzer(t)
	cases := []struct {
		text string
		ok   bool
	}{
		{"the co -pilot landed", false},
		{"the co- pilot landed", false},
		{"yes - no", false},
		{"the co-pilot landed", true},
		{"- Where are you going?", true},
		{"wait -", true},
		{"call 555 - 1234", true},
	}
	for _, tc := range cases {
		r := a.Analyze(nil, tc.text)
		if r.Details.HyphenNormalizationOK != tc.ok {
			t.Fatalf("%q: hyphen ok = %v, want %v", tc.text, r.Details.HyphenNormalizationOK, tc.ok)
		}
	}
}

func TestLineClassificationAndLength(t *testing.T) {
	long := strings.Repeat("x", 50)
	rendered := "1\n00:00:00,000 --> 00:00:02,000\nshort line\n" + long + "\n\n2\n00:00:02,000 --> 00:00:04,000\nanother\n"
	r := newAnalyzer(t).Analyze(nil, rendered)
	d := r.Details
	if d.TextLineCount != 3 {
		t.Fatalf("text lines = %d, want 3", d.TextLineCount)
	}
	if d.LineLengthViolations != 1 {
		t.Fatalf("violations = %d, want 1", d.LineLengthViolations)
	}
	if !approx(d.LineLengthViolationRatio, 1.0/3.0) {
		t.Fatalf("ratio = %v", d.LineLengthViolationRatio)
	}
	got := d.SampleOffenders.LineLength
	if len(got) != 1 || got[0].Index != 4 || got[0].Length != 50 || got[0].Limit != 42 {
		t.Fatalf("unexpected line offenders %+v", got)
	}
	if !approx(r.Score, 0.9) {
		t.Fatalf("score = %v, want 0.9", r.Score)
	}
}

func TestSamplesAreCapped(t *testing.T) {
	var b strings.Builder
	for range 8 {
		b.WriteString(strings.Repeat("y", 60))
		b.WriteString("\n")
	}
	r := newAnalyzer(t).Analyze(nil, b.String())
	if r.Details.LineLengthViolations != 8 {
		t.Fatalf("violations = %d, want 8", r.Details.LineLengthViolations)
	}
	if len(r.Details.SampleOffenders.LineLength) != maxSamples {
		t.Fatalf("samples = %d, want %d", len(r.Details.SampleOffenders.LineLength), maxSamples)
	}
	if !approx(r.Score, 0.7) {
		t.Fatalf("score = %v, want 0.7", r.Score)
	}
}

func TestDurationStatsAndBoundaries(t *testing.T) {
	cues := []Cue{
		{Start: 0, End: 0.2, Text: "Hi"},
		{Start: 1, End: 2, Text: "Hello world"},
		{Start: 3, End: 5, Text: "This is a steady sentence."},
		{Start: 6, End: 16, Text: strings.Repeat("word ", 30)},
	}
	d := newAnalyzer(t).Analyze(cues, "").Details
	if d.BoundaryCounts != (Histogram{BelowMin: 1, WithinRange: 2, AboveMax: 1}) {
		t.Fatalf("boundary counts = %+v", d.BoundaryCounts)
	}
	stats := d.DurationStats
	if !approx(stats.Min, 0.2) || !approx(stats.Max, 10) || !approx(stats.Median, 1.5) || !approx(stats.Mean, 13.2/4) {
		t.Fatalf("unexpected stats %+v", stats)
	}
}

func TestScoreClampsAtZero(t *testing.T) {
	cues := []Cue{
		{Start: 0, End: 0.1, Text: strings.Repeat("z", 80)},
		{Start: 0.05, End: 0.09, Text: strings.Repeat("z", 80)},
	}
	rendered := "co -pilot " + strings.Repeat("z", 80)
	r := newAnalyzer(t).Analyze(cues, rendered)
	if r.Score != 0 {
		t.Fatalf("score = %v, want 0", r.Score)
	}
}

func TestAnalyzeEntriesSkipsMalformed(t *testing.T) {
	entries := []map[string]any{
		{"start": 0.0, "end": 2.0, "text": "Hello there, my friend."},
		{"start": "oops", "end": 3.0, "text": "bad"},
		{"end": 4.0, "text": "missing start"},
		{"start": json.Number("3"), "end": "5.5", "text": "Numbers from strings work too."},
		{"start": 6, "end": int64(8), "text": "Integers are fine as well here."},
	}
	r := newAnalyzer(t).AnalyzeEntries(entries, "")
	d := r.Details
	if d.SkippedEntries != 2 {
		t.Fatalf("skipped = %d, want 2", d.SkippedEntries)
	}
	if d.SegmentCount != 3 {
		t.Fatalf("segments = %d, want 3", d.SegmentCount)
	}
	if d.OverlapViolations != 0 {
		t.Fatalf("overlaps = %d, want 0", d.OverlapViolations)
	}
}

func TestAnalyzeEntriesAllMalformed(t *testing.T) {
	entries := []map[string]any{{"start": nil, "end": 1.0}, {"text": "nothing"}}
	r := newAnalyzer(t).AnalyzeEntries(entries, "")
	if r.Details.SkippedEntries != 2 || r.Details.SegmentCount != 0 {
		t.Fatalf("unexpected details %+v", r.Details)
	}
	if r.Score != 1.0 || r.Details.DurationStats != (DurationStats{}) {
		t.Fatalf("expected vacuous report, got %+v", r)
	}
}

func TestOffenderIndexKeepsEntryPosition(t *testing.T) {
	entries := []map[string]any{
		{"start": "x", "end": 1.0},
		{"start": 0.0, "end": 4.0, "text": "slow"},
	}
	d := newAnalyzer(t).AnalyzeEntries(entries, "").Details
	if len(d.SampleOffenders.CPSBelowMin) != 1 || d.SampleOffenders.CPSBelowMin[0].Index != 1 {
		t.Fatalf("unexpected offenders %+v", d.SampleOffenders.CPSBelowMin)
	}
}

func TestAnalyzeSegments(t *testing.T) {
	seg := transcript.NewSegment([]transcript.Word{
		{Text: "Good", Start: 0, End: 0.4},
		{Text: "morning", Start: 0.4, End: 1.0},
	})
	r := newAnalyzer(t).AnalyzeSegments([]transcript.Segment{seg}, "1\n00:00:00,000 --> 00:00:01,000\nGood morning\n")
	if r.Details.SegmentCount != 1 || r.Details.TextLineCount != 1 {
		t.Fatalf("unexpected details %+v", r.Details)
	}
	if r.Details.CPSHistogram.WithinRange != 1 {
		t.Fatalf("cps histogram = %+v", r.Details.CPSHistogram)
	}
	if r.Score != 1.0 {
		t.Fatalf("score = %v, want 1.0", r.Score)
	}
}

func TestReportJSONKeys(t *testing.T) {
	r := newAnalyzer(t).Analyze(nil, "")
	data, err := json.Marshal(r)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	for _, key := range []string{`"score"`, `"hyphen_normalization_ok"`, `"cps_histogram"`, `"sample_offenders"`, `"line_length":[]`} {
		if !strings.Contains(string(data), key) {
			t.Fatalf("missing %s in %s", key, data)
		}
	}
}

func TestOptionsValidate(t *testing.T) {
	bad := DefaultOptions()
	bad.MaxCPS = bad.MinCPS
	if _, err := New(bad); err == nil {
		t.Fatal("expected error for empty cps range")
	}
	bad = DefaultOptions()
	bad.LineLengthLimit = 0
	if _, err := New(bad); err == nil {
		t.Fatal("expected error for zero line limit")
	}
}
