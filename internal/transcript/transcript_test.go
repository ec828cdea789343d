package transcript

import (
	"math"
	"strings"
	"testing"
)

func TestChunkSeconds(t *testing.T) {
	c := Chunk{Index: 1, StartSample: 16000, EndSample: 48000, SampleRate: 16000}
	if c.Start() != 1 || c.End() != 3 || c.Duration() != 2 {
		t.Fatalf("unexpected chunk seconds: %v %v %v", c.Start(), c.End(), c.Duration())
	}
	if (Chunk{StartSample: 10}).Start() != 0 {
		t.Fatal("expected zero for missing sample rate")
	}
}

func TestAbsoluteOffsetsAndDropsBlanks(t *testing.T) {
	chunk := Chunk{Index: 2, StartSample: 32000, EndSample: 64000, SampleRate: 16000}
	hyp := RawHypothesis{ChunkIndex: 2, Tokens: []Token{
		{Text: " hello ", Start: 0.1, End: 0.4},
		{Text: "  ", Start: 0.4, End: 0.5},
		{Text: "world", Start: 0.9, End: 0.7},
	}}
	words := hyp.Absolute(chunk)
	if len(words) != 2 {
		t.Fatalf("expected 2 words, got %d", len(words))
	}
	if words[0].Text != "hello" || math.Abs(words[0].Start-2.1) > 1e-9 {
		t.Fatalf("unexpected first word %+v", words[0])
	}
	if words[1].End != words[1].Start {
		t.Fatalf("expected inverted timing clamped, got %+v", words[1])
	}
	if words[1].Source != (TokenRef{Chunk: 2, Token: 2}) {
		t.Fatalf("unexpected provenance %+v", words[1].Source)
	}
}

func TestJoinWordsReattachesPunctuation(t *testing.T) {
	words := []Word{{Text: "Well"}, {Text: ","}, {Text: "("}, {Text: "maybe"}, {Text: ")"}, {Text: "yes"}, {Text: "?"}}
	if got := JoinWords(words); got != "Well, (maybe) yes?" {
		t.Fatalf("unexpected join %q", got)
	}
}

func TestSentenceHelpers(t *testing.T) {
	cases := map[string]bool{"done.": true, "really?\"": true, "wait": false, "so,": false, "": false}
	for text, want := range cases {
		if got := EndsSentence(text); got != want {
			t.Errorf("EndsSentence(%q) = %v", text, got)
		}
	}
	starts := map[string]bool{"The": true, "I": false, "I'm": false, "I’ll": false, "Ireland": true, "and": false, "\"Hello": true}
	for text, want := range starts {
		if got := StartsSentence(text); got != want {
			t.Errorf("StartsSentence(%q) = %v", text, got)
		}
	}
	if !EndsClause("well,") || EndsClause("well") {
		t.Fatal("unexpected clause detection")
	}
}

func TestNewSegmentDerivesFields(t *testing.T) {
	words := []Word{{Text: "a", Start: 1, End: 1}, {Text: "b", Start: 1, End: 1}}
	seg := NewSegment(words)
	if seg.End <= seg.Start {
		t.Fatalf("expected positive duration, got %+v", seg)
	}
	if seg.End != seg.Words[1].End {
		t.Fatal("end must follow last word")
	}
	if words[1].End != 1 {
		t.Fatal("input words must not be modified")
	}
	if err := Validate([]Segment{seg}); err != nil {
		t.Fatalf("validate: %v", err)
	}
}

func TestCharsPerSecond(t *testing.T) {
	text := strings.Repeat("x", 50)
	if got := CharsPerSecond(text, 2); got != 25 {
		t.Fatalf("expected 25 cps, got %v", got)
	}
	if got := CharsPerSecond("ab", 0); got != 2000 {
		t.Fatalf("expected floored duration, got %v", got)
	}
}

func TestValidateDetectsOverlap(t *testing.T) {
	a := NewSegment([]Word{{Text: "a", Start: 0, End: 2}})
	b := NewSegment([]Word{{Text: "b", Start: 1, End: 3}})
	if err := Validate([]Segment{a, b}); err == nil || !strings.Contains(err.Error(), "overlaps") {
		t.Fatalf("expected overlap error, got %v", err)
	}
}
