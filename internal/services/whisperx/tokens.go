package whisperx

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"stitch/internal/transcript"
)

// Word is a single word from WhisperX output. The aligner omits timings for
// words it cannot place (numerals, symbols), so they are optional.
type Word struct {
	Word  string   `json:"word"`
	Start *float64 `json:"start,omitempty"`
	End   *float64 `json:"end,omitempty"`
	Score *float64 `json:"score,omitempty"`
}

func (w Word) timed() bool {
	return w.Start != nil && w.End != nil
}

// Segment represents a transcribed segment from WhisperX JSON output.
type Segment struct {
	Text  string  `json:"text"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Words []Word  `json:"words"`
}

type whisperXPayload struct {
	Segments []Segment `json:"segments"`
}

// LoadSegments loads segments from a WhisperX JSON file.
func LoadSegments(jsonPath string) ([]Segment, error) {
	data, err := os.ReadFile(jsonPath)
	if err != nil {
		return nil, err
	}
	var payload whisperXPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("parse whisperx json: %w", err)
	}
	return payload.Segments, nil
}

// Tokens flattens segments into timed tokens. Untimed words share the gap
// between their timed neighbours (or the segment bounds) evenly. Segments
// without word entries spread their text across the segment span.
func Tokens(segments []Segment) []transcript.Token {
	var out []transcript.Token
	for _, seg := range segments {
		words := seg.Words
		if len(words) == 0 {
			words = wordsFromText(seg.Text)
		}
		out = append(out, segmentTokens(seg, words)...)
	}
	return out
}

func wordsFromText(text string) []Word {
	fields := strings.Fields(text)
	words := make([]Word, len(fields))
	for i, f := range fields {
		words[i] = Word{Word: f}
	}
	return words
}

func segmentTokens(seg Segment, words []Word) []transcript.Token {
	tokens := make([]transcript.Token, 0, len(words))
	cursor := seg.Start
	for i := 0; i < len(words); {
		w := words[i]
		if w.timed() {
			if text := strings.TrimSpace(w.Word); text != "" {
				tok := transcript.Token{Text: text, Start: *w.Start, End: *w.End}
				if w.Score != nil {
					tok.Confidence = *w.Score
				}
				tokens = append(tokens, tok)
			}
			cursor = *w.End
			i++
			continue
		}
		j := i
		for j < len(words) && !words[j].timed() {
			j++
		}
		limit := seg.End
		if j < len(words) {
			limit = *words[j].Start
		}
		span := max(limit-cursor, 0)
		step := span / float64(j-i)
		for k := i; k < j; k++ {
			text := strings.TrimSpace(words[k].Word)
			if text == "" {
				continue
			}
			start := cursor + float64(k-i)*step
			tokens = append(tokens, transcript.Token{Text: text, Start: start, End: start + step})
		}
		cursor += span
		i = j
	}
	return tokens
}
