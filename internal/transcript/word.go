package transcript

import (
	"strings"
	"unicode"
)

// Token is a single recognized token with chunk-local timing.
type Token struct {
	Text       string  `json:"text"`
	Start      float64 `json:"start"`
	End        float64 `json:"end"`
	Confidence float64 `json:"confidence,omitempty"`
}

// RawHypothesis is the recognizer output for one chunk.
type RawHypothesis struct {
	ChunkIndex int     `json:"chunk_index"`
	Tokens     []Token `json:"tokens"`
}

// TokenRef identifies the chunk token a word was derived from.
type TokenRef struct {
	Chunk int
	Token int
}

// Word is a token placed on the absolute timeline.
type Word struct {
	Text       string   `json:"text"`
	Start      float64  `json:"start"`
	End        float64  `json:"end"`
	Confidence float64  `json:"confidence,omitempty"`
	Source     TokenRef `json:"-"`
}

// Mid returns the temporal midpoint of the word.
func (w Word) Mid() float64 {
	return (w.Start + w.End) / 2
}

// Duration returns the word length in seconds.
func (w Word) Duration() float64 {
	return w.End - w.Start
}

// Absolute converts the hypothesis tokens into absolute words using the chunk
// start as offset. Blank tokens are dropped and inverted timings are clamped
// so End never precedes Start.
func (h RawHypothesis) Absolute(chunk Chunk) []Word {
	if len(h.Tokens) == 0 {
		return nil
	}
	offset := chunk.Start()
	words := make([]Word, 0, len(h.Tokens))
	for i, tok := range h.Tokens {
		text := strings.TrimSpace(tok.Text)
		if text == "" {
			continue
		}
		start := offset + tok.Start
		end := offset + tok.End
		if end < start {
			end = start
		}
		words = append(words, Word{
			Text:       text,
			Start:      start,
			End:        end,
			Confidence: tok.Confidence,
			Source:     TokenRef{Chunk: chunk.Index, Token: i},
		})
	}
	return words
}

// JoinWords renders words as display text. Words are separated by a single
// space except punctuation-only tokens, which attach to the previous word, and
// words following an opening bracket or quote.
func JoinWords(words []Word) string {
	var b strings.Builder
	prevOpens := false
	for _, w := range words {
		text := strings.TrimSpace(w.Text)
		if text == "" {
			continue
		}
		if b.Len() > 0 && !prevOpens && !attachesLeft(text) {
			b.WriteByte(' ')
		}
		b.WriteString(text)
		prevOpens = opensRight(text)
	}
	return b.String()
}

// EndsSentence reports whether the text ends with terminal punctuation,
// ignoring trailing closing quotes and brackets.
func EndsSentence(text string) bool {
	text = strings.TrimRightFunc(strings.TrimSpace(text), func(r rune) bool {
		return r == '"' || r == '\'' || r == ')' || r == ']' || r == '”' || r == '’' || r == '»'
	})
	if text == "" {
		return false
	}
	switch text[len(text)-1] {
	case '.', '!', '?':
		return true
	}
	return strings.HasSuffix(text, "…")
}

// EndsClause reports whether the text ends with a clause mark (, ; : or -).
func EndsClause(text string) bool {
	text = strings.TrimSpace(text)
	if text == "" {
		return false
	}
	switch text[len(text)-1] {
	case ',', ';', ':', '-':
		return true
	}
	return strings.HasSuffix(text, "—") || strings.HasSuffix(text, "–")
}

func attachesLeft(text string) bool {
	for _, r := range text {
		if !strings.ContainsRune(".,!?;:%)]}…”’»", r) {
			return false
		}
	}
	return true
}

func opensRight(text string) bool {
	for _, r := range text {
		if !strings.ContainsRune("([{“‘«", r) {
			return false
		}
	}
	return true
}

// StartsSentence reports whether the text begins like a new sentence: an
// uppercase first letter that is not the pronoun "I" or one of its
// contractions.
func StartsSentence(text string) bool {
	trimmed := strings.TrimLeftFunc(strings.TrimSpace(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	if trimmed == "" {
		return false
	}
	first := []rune(trimmed)[0]
	if !unicode.IsUpper(first) {
		return false
	}
	return !isPronounI(trimmed)
}

func isPronounI(text string) bool {
	word := strings.TrimRightFunc(text, func(r rune) bool {
		return unicode.IsPunct(r) && r != '\'' && r != '’'
	})
	if word == "I" {
		return true
	}
	for _, sep := range []string{"'", "’"} {
		if strings.HasPrefix(word, "I"+sep) {
			return true
		}
	}
	return false
}
