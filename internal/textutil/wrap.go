package textutil

import (
	"strings"
	"unicode/utf8"
)

// Wrap greedily packs words into lines of at most limit runes. A word longer
// than the limit occupies its own line. A non-positive limit disables wrapping.
func Wrap(text string, limit int) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}
	if limit <= 0 {
		return []string{strings.Join(words, " ")}
	}
	var lines []string
	current := words[0]
	currentLen := utf8.RuneCountInString(current)
	for _, w := range words[1:] {
		wl := utf8.RuneCountInString(w)
		if currentLen+1+wl <= limit {
			current += " " + w
			currentLen += 1 + wl
			continue
		}
		lines = append(lines, current)
		current, currentLen = w, wl
	}
	return append(lines, current)
}

// WrapBalanced wraps text like Wrap but, when the greedy result has exactly
// two lines, moves the break to the word boundary that best evens out the
// line lengths while keeping both lines within the limit.
func WrapBalanced(text string, limit int) []string {
	lines := Wrap(text, limit)
	if len(lines) != 2 {
		return lines
	}
	words := strings.Fields(text)
	best := -1
	bestLongest := 0
	for split := 1; split < len(words); split++ {
		left := utf8.RuneCountInString(strings.Join(words[:split], " "))
		right := utf8.RuneCountInString(strings.Join(words[split:], " "))
		if left > limit || right > limit {
			continue
		}
		longest := max(left, right)
		if best < 0 || longest < bestLongest {
			best, bestLongest = split, longest
		}
	}
	if best < 0 {
		return lines
	}
	return []string{strings.Join(words[:best], " "), strings.Join(words[best:], " ")}
}

// LongestLine returns the rune length of the longest line.
func LongestLine(lines []string) int {
	longest := 0
	for _, line := range lines {
		longest = max(longest, utf8.RuneCountInString(line))
	}
	return longest
}
