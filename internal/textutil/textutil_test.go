package textutil

import (
	"strings"
	"testing"
)

func TestNormalizeToken(t *testing.T) {
	cases := map[string]string{
		"Hello,":   "hello",
		"ＨＥＬＬＯ":    "hello",
		"don't":    "dont",
		" STRASSE": "strasse",
		"...":      "",
	}
	for in, want := range cases {
		if got := NormalizeToken(in); got != want {
			t.Errorf("NormalizeToken(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestWordSetContains(t *testing.T) {
	set := NewWordSet([]string{"And", "but"})
	if !set.Contains("and,") || !set.Contains("BUT") {
		t.Fatal("expected normalized membership")
	}
	if set.Contains("so") {
		t.Fatal("unexpected member")
	}
	var empty WordSet
	if empty.Contains("and") {
		t.Fatal("empty set must not contain words")
	}
}

func TestWrapGreedy(t *testing.T) {
	lines := Wrap("the quick brown fox jumps over the lazy dog", 15)
	want := []string{"the quick brown", "fox jumps over", "the lazy dog"}
	if strings.Join(lines, "|") != strings.Join(want, "|") {
		t.Fatalf("unexpected wrap %q", lines)
	}
	long := Wrap("supercalifragilistic ok", 10)
	if len(long) != 2 || long[0] != "supercalifragilistic" {
		t.Fatalf("expected oversized word on its own line, got %q", long)
	}
	if Wrap("   ", 10) != nil {
		t.Fatal("expected nil for blank text")
	}
}

func TestWrapBalanced(t *testing.T) {
	lines := WrapBalanced("one two three four five six seven", 40)
	if len(lines) != 1 {
		t.Fatalf("expected single line, got %q", lines)
	}
	lines = WrapBalanced("aaaa bbbb cccc dddd eeee ffff gggg hhhh iiii", 40)
	if len(lines) != 2 {
		t.Fatalf("expected two lines, got %q", lines)
	}
	if LongestLine(lines) > 24 {
		t.Fatalf("expected balanced lines, got %q", lines)
	}
}

func TestOutputStem(t *testing.T) {
	cases := map[string]string{
		"lecture":      "lecture",
		"  talk  one ": "talk one",
		"../secret":    "-secret",
		"a/b\\c:d":     "a-b-c-d",
		"what? <now>":  "what now",
		"...":          "",
		"   ":          "",
	}
	for in, want := range cases {
		if got := OutputStem(in); got != want {
			t.Fatalf("OutputStem(%q) = %q, want %q", in, got, want)
		}
	}
}
