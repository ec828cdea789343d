package merge

import (
	"cmp"
	"slices"

	"stitch/internal/transcript"
)

// overlapBounds returns the index where a's tail starts and the index where
// b's head ends. The tail is the longest suffix of a whose word midpoints lie
// at or after the window start. The head is the longest prefix of b whose
// midpoints lie at or before the window end.
func overlapBounds(a, b []transcript.Word, w Window) (tailStart, headEnd int) {
	tailStart = len(a)
	for tailStart > 0 && a[tailStart-1].Mid() >= w.Start {
		tailStart--
	}
	for headEnd < len(b) && b[headEnd].Mid() <= w.End {
		headEnd++
	}
	return tailStart, headEnd
}

// degenerateMerge concatenates both streams ordered by start time.
func degenerateMerge(a, b []transcript.Word) Outcome {
	out := make([]transcript.Word, 0, len(a)+len(b))
	out = append(out, a...)
	out = append(out, b...)
	slices.SortStableFunc(out, func(x, y transcript.Word) int {
		return cmp.Compare(x.Start, y.Start)
	})
	return Outcome{Words: out, Degenerate: true}
}

// cutAtMidpoint keeps tail words that finish their midpoint before the window
// midpoint and head words from the midpoint on.
func cutAtMidpoint(a, b []transcript.Word, tailStart, headEnd int, w Window) Outcome {
	cut := w.Mid()
	out := make([]transcript.Word, 0, len(a)+len(b))
	out = append(out, a[:tailStart]...)
	for _, word := range a[tailStart:] {
		if word.Mid() < cut {
			out = append(out, word)
		}
	}
	for _, word := range b[:headEnd] {
		if word.Mid() >= cut {
			out = append(out, word)
		}
	}
	out = append(out, b[headEnd:]...)
	return Outcome{Words: clampMonotonic(out), Fallback: true}
}

// clampMonotonic raises any start that precedes its predecessor so the
// sequence is non-decreasing. Ends are kept at or after their starts.
func clampMonotonic(words []transcript.Word) []transcript.Word {
	for i := 1; i < len(words); i++ {
		if words[i].Start < words[i-1].Start {
			words[i].Start = words[i-1].Start
			if words[i].End < words[i].Start {
				words[i].End = words[i].Start
			}
		}
	}
	return words
}

// edgeDistanceA measures how far a token of the earlier chunk lies from that
// chunk's end.
func edgeDistanceA(word transcript.Word, w Window) float64 {
	return w.End - word.End
}

// edgeDistanceB measures how far a token of the later chunk lies from that
// chunk's start.
func edgeDistanceB(word transcript.Word, w Window) float64 {
	return word.Start - w.Start
}

func meanConfidence(words []transcript.Word) (float64, bool) {
	if len(words) == 0 {
		return 0, false
	}
	var sum float64
	for _, word := range words {
		if word.Confidence <= 0 {
			return 0, false
		}
		sum += word.Confidence
	}
	return sum / float64(len(words)), true
}
