package quality

import (
	"strings"
	"unicode"
)

type textLine struct {
	number  int
	content string
}

// textLines keeps the subtitle text lines of rendered output, dropping blank
// lines, cue numbers and timing lines.
func textLines(rendered string) []textLine {
	if rendered == "" {
		return nil
	}
	var out []textLine
	for i, raw := range strings.Split(strings.ReplaceAll(rendered, "\r\n", "\n"), "\n") {
		line := strings.TrimSpace(raw)
		if line == "" || isNumeric(line) || strings.Contains(line, "-->") {
			continue
		}
		out = append(out, textLine{number: i + 1, content: line})
	}
	return out
}

func isNumeric(s string) bool {
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return s != ""
}

// hyphenSpacingBad flags words split around a hyphen, such as "co -pilot",
// "co- pilot" or "co - pilot".
func hyphenSpacingBad(lines []textLine) bool {
	for _, line := range lines {
		tokens := strings.Fields(line.content)
		for i, tok := range tokens {
			hasPrev := i > 0 && isAlphabetic(tokens[i-1])
			hasNext := i+1 < len(tokens) && isAlphabetic(tokens[i+1])
			switch {
			case tok == "-":
				if hasPrev && hasNext {
					return true
				}
			case strings.HasPrefix(tok, "-") && isAlphabetic(tok[1:]):
				if hasPrev {
					return true
				}
			case strings.HasSuffix(tok, "-") && isAlphabetic(tok[:len(tok)-1]):
				if hasNext {
					return true
				}
			}
		}
	}
	return false
}

// isAlphabetic reports whether tok is a word once surrounding punctuation is
// removed.
func isAlphabetic(tok string) bool {
	tok = strings.TrimFunc(tok, unicode.IsPunct)
	if tok == "" {
		return false
	}
	for _, r := range tok {
		if !unicode.IsLetter(r) && r != '\'' && r != '’' {
			return false
		}
	}
	return true
}
