package merge

import (
	"stitch/internal/textutil"
	"stitch/internal/transcript"
)

type lcsMerger struct{}

type alignedPair struct {
	a int
	b int
}

func (lcsMerger) Merge(a, b []transcript.Word, w Window) Outcome {
	tailStart, headEnd := overlapBounds(a, b, w)
	if tailStart == len(a) || headEnd == 0 || w.Empty() {
		return degenerateMerge(a, b)
	}
	tail := a[tailStart:]
	head := b[:headEnd]

	pairs := alignTokens(tail, head)
	if len(pairs) == 0 {
		return cutAtMidpoint(a, b, tailStart, headEnd, w)
	}

	out := make([]transcript.Word, 0, len(a)+len(b))
	out = append(out, a[:tailStart]...)
	out = append(out, tail[:pairs[0].a]...)
	for k, pair := range pairs {
		out = append(out, pickAligned(tail[pair.a], head[pair.b], w))
		if k+1 == len(pairs) {
			break
		}
		next := pairs[k+1]
		out = append(out, pickGap(tail[pair.a+1:next.a], head[pair.b+1:next.b], w)...)
	}
	last := pairs[len(pairs)-1]
	out = append(out, head[last.b+1:]...)
	out = append(out, b[headEnd:]...)
	return Outcome{Words: clampMonotonic(out), Matched: len(pairs)}
}

// alignTokens computes a longest common subsequence over normalized token
// text. Tokens that normalize to nothing never match. Backtracking drops the
// tail token whenever that keeps the same length, so among equally long
// alignments matches anchor to the earliest tail positions.
func alignTokens(tail, head []transcript.Word) []alignedPair {
	n, m := len(tail), len(head)
	keysA := normalizedKeys(tail)
	keysB := normalizedKeys(head)

	table := make([][]int, n+1)
	for i := range table {
		table[i] = make([]int, m+1)
	}
	for i := 1; i <= n; i++ {
		for j := 1; j <= m; j++ {
			switch {
			case keysA[i-1] != "" && keysA[i-1] == keysB[j-1]:
				table[i][j] = table[i-1][j-1] + 1
			case table[i-1][j] >= table[i][j-1]:
				table[i][j] = table[i-1][j]
			default:
				table[i][j] = table[i][j-1]
			}
		}
	}

	pairs := make([]alignedPair, table[n][m])
	k := len(pairs)
	for i, j := n, m; i > 0 && j > 0; {
		switch {
		case table[i-1][j] == table[i][j]:
			i--
		case keysA[i-1] != "" && keysA[i-1] == keysB[j-1]:
			k--
			pairs[k] = alignedPair{a: i - 1, b: j - 1}
			i--
			j--
		default:
			j--
		}
	}
	return pairs
}

func normalizedKeys(words []transcript.Word) []string {
	keys := make([]string, len(words))
	for i, word := range words {
		keys[i] = textutil.NormalizeToken(word.Text)
	}
	return keys
}

// pickAligned keeps the rendition recorded farther from its own chunk edge.
// Ties prefer the later chunk.
func pickAligned(fromA, fromB transcript.Word, w Window) transcript.Word {
	if edgeDistanceA(fromA, w) > edgeDistanceB(fromB, w) {
		return fromA
	}
	return fromB
}

// pickGap resolves the unmatched tokens between two aligned pairs. One-sided
// insertions are kept. When both sides disagree the side whose tokens sit
// farther from their chunk edge on average wins, ties prefer the later chunk.
func pickGap(gapA, gapB []transcript.Word, w Window) []transcript.Word {
	switch {
	case len(gapA) == 0:
		return gapB
	case len(gapB) == 0:
		return gapA
	}
	var distA, distB float64
	for _, word := range gapA {
		distA += edgeDistanceA(word, w)
	}
	for _, word := range gapB {
		distB += edgeDistanceB(word, w)
	}
	if distA/float64(len(gapA)) > distB/float64(len(gapB)) {
		return gapA
	}
	return gapB
}
