package testsupport

import (
	"fmt"
	"strings"

	"stitch/internal/hypothesis"
	"stitch/internal/transcript"
)

// Speech lays text out on the absolute timeline starting at start, giving
// each word wordSeconds and leaving gapSeconds between words.
func Speech(text string, start, wordSeconds, gapSeconds float64) []transcript.Word {
	fields := strings.Fields(text)
	words := make([]transcript.Word, len(fields))
	at := start
	for i, field := range fields {
		words[i] = transcript.Word{Text: field, Start: at, End: at + wordSeconds, Confidence: 0.9}
		at += wordSeconds + gapSeconds
	}
	return words
}

// NumberedSpeech returns count uniquely spelled words, one per second and
// half a second long, with a full stop after every sentenceLen words.
func NumberedSpeech(count, sentenceLen int) []transcript.Word {
	words := make([]transcript.Word, count)
	for k := range words {
		text := fmt.Sprintf("w%d", k)
		if sentenceLen > 0 && (k+1)%sentenceLen == 0 {
			text += "."
		}
		words[k] = transcript.Word{Text: text, Start: float64(k), End: float64(k) + 0.5, Confidence: 0.9}
	}
	return words
}

// Hypothesis returns the words lying fully inside chunk, as chunk-local
// tokens.
func Hypothesis(truth []transcript.Word, chunk transcript.Chunk) transcript.RawHypothesis {
	h := transcript.RawHypothesis{ChunkIndex: chunk.Index, Tokens: []transcript.Token{}}
	offset := chunk.Start()
	for _, w := range truth {
		if w.Start < chunk.Start() || w.End > chunk.End() {
			continue
		}
		h.Tokens = append(h.Tokens, transcript.Token{
			Text:       w.Text,
			Start:      w.Start - offset,
			End:        w.End - offset,
			Confidence: w.Confidence,
		})
	}
	return h
}

// Hypotheses slices truth into one hypothesis per chunk.
func Hypotheses(truth []transcript.Word, chunks []transcript.Chunk) []transcript.RawHypothesis {
	out := make([]transcript.RawHypothesis, len(chunks))
	for i, chunk := range chunks {
		out[i] = Hypothesis(truth, chunk)
	}
	return out
}

// RecordedFile packages per-chunk hypotheses as a replayable file.
func RecordedFile(duration float64, sampleRate int, chunkSeconds, overlapSeconds float64, hyps []transcript.RawHypothesis) *hypothesis.File {
	f := &hypothesis.File{
		Language:       "en",
		Duration:       duration,
		SampleRate:     sampleRate,
		ChunkSeconds:   chunkSeconds,
		OverlapSeconds: overlapSeconds,
	}
	for _, h := range hyps {
		f.Chunks = append(f.Chunks, hypothesis.FileChunk{Index: h.ChunkIndex, Tokens: h.Tokens})
	}
	return f
}
