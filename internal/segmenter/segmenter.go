// Package segmenter splits cleaned cue groups into readable subtitle
// segments that respect line, duration and reading-rate limits.
package segmenter

import (
	"cmp"
	"errors"
	"log/slog"
	"math"
	"slices"
	"unicode/utf8"

	"stitch/internal/logging"
	"stitch/internal/textutil"
	"stitch/internal/transcript"
)

// cpsTolerance treats reading rates this close as equal when ranking
// split points.
const cpsTolerance = 1e-9

// Options holds readability constraints.
type Options struct {
	MaxLineChars       int
	MaxLines           int
	MinDurationSeconds float64
	MaxDurationSeconds float64
	MinCPS             float64
	MaxCPS             float64
	ClauseWords        []string
}

// DefaultOptions returns broadcast-style subtitle limits.
func DefaultOptions() Options {
	return Options{
		MaxLineChars:       42,
		MaxLines:           2,
		MinDurationSeconds: 0.5,
		MaxDurationSeconds: 7.0,
		MinCPS:             10,
		MaxCPS:             22,
		ClauseWords:        []string{"and", "but", "or", "nor", "so", "yet", "because", "which", "while"},
	}
}

// Validate reports the first invalid option.
func (o Options) Validate() error {
	switch {
	case o.MaxLineChars <= 0:
		return errors.New("max line chars must be positive")
	case o.MaxLines <= 0:
		return errors.New("max lines must be positive")
	case o.MinDurationSeconds < 0:
		return errors.New("min duration must be non-negative")
	case o.MaxDurationSeconds <= o.MinDurationSeconds:
		return errors.New("max duration must exceed min duration")
	case o.MinCPS < 0 || o.MaxCPS <= o.MinCPS:
		return errors.New("cps range must satisfy 0 <= min < max")
	}
	return nil
}

// Segmenter applies the constraints to cue groups.
type Segmenter struct {
	opts    Options
	clauses textutil.WordSet
	logger  *slog.Logger
}

// New validates options and returns a Segmenter.
func New(opts Options, logger *slog.Logger) (*Segmenter, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return &Segmenter{
		opts:    opts,
		clauses: textutil.NewWordSet(opts.ClauseWords),
		logger:  logging.NewComponentLogger(logger, "segmenter"),
	}, nil
}

// Options returns the configured constraints.
func (s *Segmenter) Options() Options {
	return s.opts
}

// Segment splits every group at sentence ends, rejoining sentences shorter
// than the minimum duration, then recursively splits at clause boundaries
// while a piece is too long to display, and finally removes overlaps between
// consecutive segments.
func (s *Segmenter) Segment(groups []transcript.Segment) []transcript.Segment {
	var pieces [][]transcript.Word
	for _, group := range groups {
		for _, sentence := range s.joinShort(splitSentences(group.Words)) {
			pieces = append(pieces, s.split(sentence)...)
		}
	}

	segments := make([]transcript.Segment, 0, len(pieces))
	for _, piece := range pieces {
		segments = append(segments, transcript.NewSegment(piece))
	}
	fixed, clamped, merged := FixOverlaps(segments)

	var slow, fast int
	for _, seg := range fixed {
		switch cps := seg.CPS(); {
		case cps < s.opts.MinCPS:
			slow++
		case cps > s.opts.MaxCPS:
			fast++
		}
	}
	s.logger.Debug("segmentation complete",
		logging.String(logging.FieldEventType, "segmentation_complete"),
		logging.Int("groups", len(groups)),
		logging.Int("segments", len(fixed)),
		logging.Int("overlaps_clamped", clamped),
		logging.Int("overlaps_merged", merged),
		logging.Int("cps_below_min", slow),
		logging.Int("cps_above_max", fast),
	)
	return fixed
}

func splitSentences(words []transcript.Word) [][]transcript.Word {
	var out [][]transcript.Word
	start := 0
	for i, w := range words {
		if transcript.EndsSentence(w.Text) && i+1 < len(words) {
			out = append(out, words[start:i+1])
			start = i + 1
		}
	}
	if start < len(words) {
		out = append(out, words[start:])
	}
	return out
}

// joinShort merges a sentence shorter than the minimum duration into the
// next sentence, or failing that the previous one, provided the joined piece
// is not over-long. A short sentence that fits nowhere stays alone.
func (s *Segmenter) joinShort(sentences [][]transcript.Word) [][]transcript.Word {
	out := make([][]transcript.Word, 0, len(sentences))
	for i := 0; i < len(sentences); i++ {
		cur := sentences[i]
		if pieceDuration(cur) < s.opts.MinDurationSeconds {
			if i+1 < len(sentences) {
				if joined := concatWords(cur, sentences[i+1]); s.fits(joined) {
					sentences[i+1] = joined
					continue
				}
			}
			if n := len(out); n > 0 {
				if joined := concatWords(out[n-1], cur); s.fits(joined) {
					out[n-1] = joined
					continue
				}
			}
		}
		out = append(out, cur)
	}
	return out
}

func (s *Segmenter) fits(words []transcript.Word) bool {
	tooManyLines, tooLong := s.overLong(words)
	return !tooManyLines && !tooLong
}

func concatWords(a, b []transcript.Word) []transcript.Word {
	out := make([]transcript.Word, 0, len(a)+len(b))
	return append(append(out, a...), b...)
}

func pieceDuration(words []transcript.Word) float64 {
	return words[len(words)-1].End - words[0].Start
}

func pieceCPS(words []transcript.Word) float64 {
	return transcript.CharsPerSecond(transcript.JoinWords(words), pieceDuration(words))
}

// overLong reports whether a piece needs splitting. Single words never do.
func (s *Segmenter) overLong(words []transcript.Word) (tooManyLines, tooLong bool) {
	if len(words) < 2 {
		return false, false
	}
	lines := textutil.Wrap(transcript.JoinWords(words), s.opts.MaxLineChars)
	return len(lines) > s.opts.MaxLines, pieceDuration(words) > s.opts.MaxDurationSeconds
}

func (s *Segmenter) split(words []transcript.Word) [][]transcript.Word {
	tooManyLines, tooLong := s.overLong(words)
	if !tooManyLines && !tooLong {
		return [][]transcript.Word{words}
	}
	k := s.clauseSplit(words)
	if k < 0 {
		k = s.forcedSplit(words, tooLong)
	}
	left := s.split(words[:k])
	return append(left, s.split(words[k:])...)
}

// clauseSplit returns the index of the first word of the right half for the
// best clause boundary, or -1 when the piece has none. A boundary follows a
// word ending in a clause mark or precedes a clause conjunction. The best
// boundary minimizes the larger reading rate of the two halves. Ties go to
// the boundary nearest the temporal midpoint. Boundaries leaving a half
// shorter than the minimum duration are used only when nothing else exists.
func (s *Segmenter) clauseSplit(words []transcript.Word) int {
	mid := (words[0].Start + words[len(words)-1].End) / 2
	type candidate struct {
		index int
		score float64
		dist  float64
		short bool
	}
	var candidates []candidate
	for k := 1; k < len(words); k++ {
		if !transcript.EndsClause(words[k-1].Text) && !s.clauses.Contains(words[k].Text) {
			continue
		}
		left, right := words[:k], words[k:]
		candidates = append(candidates, candidate{
			index: k,
			score: math.Max(pieceCPS(left), pieceCPS(right)),
			dist:  math.Abs((words[k-1].End+words[k].Start)/2 - mid),
			short: pieceDuration(left) < s.opts.MinDurationSeconds || pieceDuration(right) < s.opts.MinDurationSeconds,
		})
	}
	if len(candidates) == 0 {
		return -1
	}
	if slices.ContainsFunc(candidates, func(c candidate) bool { return !c.short }) {
		candidates = slices.DeleteFunc(candidates, func(c candidate) bool { return c.short })
	}
	best := slices.MinFunc(candidates, func(a, b candidate) int {
		if math.Abs(a.score-b.score) > cpsTolerance {
			return cmp.Compare(a.score, b.score)
		}
		return cmp.Compare(a.dist, b.dist)
	})
	return best.index
}

// forcedSplit picks a word boundary when no clause boundary exists. Duration
// overruns split nearest start + min(duration, max)/2. Line overruns split
// nearest the character midpoint.
func (s *Segmenter) forcedSplit(words []transcript.Word, tooLong bool) int {
	best, bestDist := 1, math.Inf(1)
	if tooLong {
		target := words[0].Start + math.Min(pieceDuration(words), s.opts.MaxDurationSeconds)/2
		for k := 1; k < len(words); k++ {
			if d := math.Abs(words[k].Start - target); d < bestDist {
				best, bestDist = k, d
			}
		}
		return best
	}
	total := utf8.RuneCountInString(transcript.JoinWords(words))
	for k := 1; k < len(words); k++ {
		left := utf8.RuneCountInString(transcript.JoinWords(words[:k]))
		if d := math.Abs(float64(left) - float64(total)/2); d < bestDist {
			best, bestDist = k, d
		}
	}
	return best
}

// FixOverlaps makes consecutive segments disjoint. When a segment ends after
// its successor starts it is clamped to the successor's start; when the
// successor starts no later than the segment itself the two are merged.
func FixOverlaps(segments []transcript.Segment) (fixed []transcript.Segment, clamped, merged int) {
	fixed = make([]transcript.Segment, 0, len(segments))
	for _, next := range segments {
		n := len(fixed)
		if n == 0 || next.Start >= fixed[n-1].End {
			fixed = append(fixed, next)
			continue
		}
		cur := fixed[n-1]
		if next.Start > cur.Start {
			words := make([]transcript.Word, len(cur.Words))
			copy(words, cur.Words)
			for i := range words {
				words[i].Start = math.Min(words[i].Start, next.Start)
				words[i].End = math.Min(words[i].End, next.Start)
			}
			fixed[n-1] = transcript.NewSegment(words)
			fixed = append(fixed, next)
			clamped++
			continue
		}
		words := make([]transcript.Word, 0, len(cur.Words)+len(next.Words))
		words = append(words, cur.Words...)
		words = append(words, next.Words...)
		slices.SortStableFunc(words, func(a, b transcript.Word) int {
			return cmp.Compare(a.Start, b.Start)
		})
		fixed[n-1] = transcript.NewSegment(words)
		merged++
	}
	return fixed, clamped, merged
}
