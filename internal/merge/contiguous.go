package merge

import (
	"math"
	"strings"

	"stitch/internal/transcript"
)

type contiguousMerger struct{}

func (contiguousMerger) Merge(a, b []transcript.Word, w Window) Outcome {
	tailStart, headEnd := overlapBounds(a, b, w)
	if tailStart == len(a) || headEnd == 0 || w.Empty() {
		return degenerateMerge(a, b)
	}
	tail := a[tailStart:]
	head := b[:headEnd]

	runA, runB, length := longestCommonRun(tail, head, w)
	if length == 0 {
		return cutAtMidpoint(a, b, tailStart, headEnd, w)
	}

	run := head[runB : runB+length]
	tailRun := tail[runA : runA+length]
	if confA, okA := meanConfidence(tailRun); okA {
		if confB, okB := meanConfidence(run); okB && confA > confB {
			run = tailRun
		}
	}

	out := make([]transcript.Word, 0, len(a)+len(b))
	out = append(out, a[:tailStart+runA]...)
	out = append(out, run...)
	out = append(out, b[runB+length:]...)
	return Outcome{Words: clampMonotonic(out), Matched: length}
}

// longestCommonRun finds the longest run of identical token texts shared by
// tail and head. Equal-length runs prefer the one centred nearest the window
// midpoint, averaging the centre of both renditions, then the one starting
// earliest in tail.
func longestCommonRun(tail, head []transcript.Word, w Window) (startA, startB, length int) {
	n, m := len(tail), len(head)
	prev := make([]int, m+1)
	curr := make([]int, m+1)
	bestDist := math.Inf(1)
	mid := w.Mid()
	for i := 1; i <= n; i++ {
		textA := strings.TrimSpace(tail[i-1].Text)
		for j := 1; j <= m; j++ {
			if textA != strings.TrimSpace(head[j-1].Text) {
				curr[j] = 0
				continue
			}
			curr[j] = prev[j-1] + 1
			l := curr[j]
			centre := (tail[i-l].Start + tail[i-1].End + head[j-l].Start + head[j-1].End) / 4
			dist := math.Abs(centre - mid)
			if l > length || (l == length && dist < bestDist) {
				startA, startB, length, bestDist = i-l, j-l, l, dist
			}
		}
		prev, curr = curr, prev
	}
	return startA, startB, length
}
