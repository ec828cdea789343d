package transcript

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// MinSegmentSeconds is the extension applied to a cue whose words collapse to
// a single instant so every segment keeps a positive duration.
const MinSegmentSeconds = 0.001

// Segment is a subtitle cue built from a contiguous run of words.
type Segment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
	Words []Word  `json:"words,omitempty"`
}

// NewSegment derives timing and text from words. The word slice is copied.
// A zero-length run is extended by MinSegmentSeconds on its last word.
func NewSegment(words []Word) Segment {
	if len(words) == 0 {
		return Segment{}
	}
	owned := make([]Word, len(words))
	copy(owned, words)
	last := len(owned) - 1
	if owned[last].End <= owned[0].Start {
		owned[last].End = owned[0].Start + MinSegmentSeconds
	}
	return Segment{
		Start: owned[0].Start,
		End:   owned[last].End,
		Text:  JoinWords(owned),
		Words: owned,
	}
}

// Duration returns the segment length in seconds.
func (s Segment) Duration() float64 {
	return s.End - s.Start
}

// CPS returns characters per second of the trimmed text. The duration is
// floored at one millisecond.
func (s Segment) CPS() float64 {
	return CharsPerSecond(s.Text, s.Duration())
}

// CharsPerSecond computes the reading rate for text displayed for dur seconds.
func CharsPerSecond(text string, dur float64) float64 {
	if dur < 1e-3 {
		dur = 1e-3
	}
	return float64(utf8.RuneCountInString(strings.TrimSpace(text))) / dur
}

// AlignedResult is the merged, segmented transcript of one audio source.
type AlignedResult struct {
	Language string    `json:"language,omitempty"`
	Duration float64   `json:"duration"`
	Words    []Word    `json:"words"`
	Segments []Segment `json:"segments"`
}

// Validate checks segment invariants: derived timing and text, positive
// duration, ordering and non-overlap.
func Validate(segments []Segment) error {
	for i, seg := range segments {
		if len(seg.Words) == 0 {
			return fmt.Errorf("segment %d: no words", i)
		}
		if seg.Start != seg.Words[0].Start {
			return fmt.Errorf("segment %d: start %.3f does not match first word %.3f", i, seg.Start, seg.Words[0].Start)
		}
		if seg.End != seg.Words[len(seg.Words)-1].End {
			return fmt.Errorf("segment %d: end %.3f does not match last word %.3f", i, seg.End, seg.Words[len(seg.Words)-1].End)
		}
		if seg.End <= seg.Start {
			return fmt.Errorf("segment %d: non-positive duration", i)
		}
		if want := JoinWords(seg.Words); seg.Text != want {
			return fmt.Errorf("segment %d: text %q does not match words %q", i, seg.Text, want)
		}
		if i > 0 {
			prev := segments[i-1]
			if seg.Start < prev.Start {
				return fmt.Errorf("segment %d: starts before segment %d", i, i-1)
			}
			if seg.Start < prev.End {
				return fmt.Errorf("segment %d: overlaps segment %d", i, i-1)
			}
		}
	}
	return nil
}
