package timestamps

import (
	"stitch/internal/textutil"
	"stitch/internal/transcript"
)

// Group is a provisional run of words that will become one segment.
type Group []transcript.Word

// Start returns the first word start.
func (g Group) Start() float64 {
	if len(g) == 0 {
		return 0
	}
	return g[0].Start
}

// End returns the last word end.
func (g Group) End() float64 {
	if len(g) == 0 {
		return 0
	}
	return g[len(g)-1].End
}

// Duration returns the group length in seconds.
func (g Group) Duration() float64 {
	return g.End() - g.Start()
}

func join(a, b Group) Group {
	out := make(Group, 0, len(a)+len(b))
	out = append(out, a...)
	return append(out, b...)
}

// EliminateOrphans finds single-word groups separated from a neighbour by
// more than maxGap seconds of silence and merges each into the neighbour with
// the smaller gap. Ties go to the previous group. A single word with short
// gaps on both sides is a real utterance and stays on its own.
func EliminateOrphans(groups []Group, maxGap float64) []Group {
	out := make([]Group, 0, len(groups))
	var carry Group
	for i, g := range groups {
		if len(carry) > 0 {
			g = join(carry, g)
			carry = nil
		}
		if len(g) != 1 {
			out = append(out, g)
			continue
		}
		hasPrev, hasNext := len(out) > 0, i+1 < len(groups)
		var prevGap, nextGap float64
		if hasPrev {
			prevGap = g.Start() - out[len(out)-1].End()
		}
		if hasNext {
			nextGap = groups[i+1].Start() - g.End()
		}
		isolated := (hasPrev && prevGap > maxGap) || (hasNext && nextGap > maxGap)
		switch {
		case !isolated || (!hasPrev && !hasNext):
			out = append(out, g)
		case hasPrev && (!hasNext || prevGap <= nextGap):
			out[len(out)-1] = join(out[len(out)-1], g)
		default:
			carry = g
		}
	}
	return out
}

// MergeShort merges groups shorter than minSeconds into the following group.
// A short final group merges into the previous one instead.
func MergeShort(groups []Group, minSeconds float64) []Group {
	out := make([]Group, 0, len(groups))
	var carry Group
	for i, g := range groups {
		if len(carry) > 0 {
			g = join(carry, g)
			carry = nil
		}
		if g.Duration() < minSeconds && i+1 < len(groups) {
			carry = g
			continue
		}
		out = append(out, g)
	}
	if n := len(out); n > 1 && out[n-1].Duration() < minSeconds {
		out[n-2] = join(out[n-2], out[n-1])
		out = out[:n-1]
	}
	return out
}

// MergeLeadingContinuations merges a group into its predecessor when it opens
// with a continuation word and the predecessor did not end a sentence.
func MergeLeadingContinuations(groups []Group, continuations textutil.WordSet) []Group {
	out := make([]Group, 0, len(groups))
	for _, g := range groups {
		if n := len(out); n > 0 && len(g) > 0 && continuations.Contains(g[0].Text) {
			prev := out[n-1]
			if !transcript.EndsSentence(prev[len(prev)-1].Text) {
				out[n-1] = join(prev, g)
				continue
			}
		}
		out = append(out, g)
	}
	return out
}

// EnforcePunctuation appends a period to a group's last word when the next
// group opens a new sentence and the word carries neither terminal nor
// continuation punctuation. Words are never inserted.
func EnforcePunctuation(groups []Group) []Group {
	out := make([]Group, len(groups))
	copy(out, groups)
	for i := 0; i+1 < len(out); i++ {
		g := out[i]
		next := out[i+1]
		if len(g) == 0 || len(next) == 0 {
			continue
		}
		last := g[len(g)-1]
		if transcript.EndsSentence(last.Text) || transcript.EndsClause(last.Text) {
			continue
		}
		if !transcript.StartsSentence(next[0].Text) {
			continue
		}
		fixed := join(g, nil)
		fixed[len(fixed)-1].Text = last.Text + "."
		out[i] = fixed
	}
	return out
}
