// Package timestamps turns a merged word stream into provisional cue groups
// and cleans them with a fixed sequence of independent passes.
package timestamps

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"stitch/internal/logging"
	"stitch/internal/textutil"
	"stitch/internal/transcript"
)

// Granularity selects how provisional groups are formed.
type Granularity string

const (
	// GranularitySentence splits on silence and after sentence-ending punctuation.
	GranularitySentence Granularity = "sentence"
	// GranularityParagraph splits only on long silences.
	GranularityParagraph Granularity = "paragraph"
)

// ParseGranularity resolves a configured granularity name.
func ParseGranularity(name string) (Granularity, error) {
	switch g := Granularity(strings.ToLower(strings.TrimSpace(name))); g {
	case GranularitySentence, GranularityParagraph:
		return g, nil
	case "":
		return GranularitySentence, nil
	default:
		return "", fmt.Errorf("unknown granularity %q (expected sentence or paragraph)", name)
	}
}

// Options configures grouping and cleanup.
type Options struct {
	Granularity         Granularity
	GroupGapSeconds     float64
	ParagraphGapSeconds float64
	OrphanGapSeconds    float64
	MinGroupSeconds     float64
	ContinuationWords   []string
}

// DefaultOptions returns the stock cleanup settings.
func DefaultOptions() Options {
	return Options{
		Granularity:         GranularitySentence,
		GroupGapSeconds:     1.2,
		ParagraphGapSeconds: 2.5,
		OrphanGapSeconds:    1.5,
		MinGroupSeconds:     0.8,
		ContinuationWords:   []string{"and", "but", "or", "so", "because", "which", "who", "then", "to", "of", "with", "that"},
	}
}

// Validate reports the first invalid option.
func (o Options) Validate() error {
	if _, err := ParseGranularity(string(o.Granularity)); err != nil {
		return err
	}
	switch {
	case o.GroupGapSeconds <= 0:
		return errors.New("group gap must be positive")
	case o.ParagraphGapSeconds <= 0:
		return errors.New("paragraph gap must be positive")
	case o.OrphanGapSeconds < 0:
		return errors.New("orphan gap must be non-negative")
	case o.MinGroupSeconds < 0:
		return errors.New("minimum group duration must be non-negative")
	}
	return nil
}

// Adapter groups words into segments.
type Adapter struct {
	opts          Options
	continuations textutil.WordSet
	logger        *slog.Logger
}

// New validates options and returns an Adapter.
func New(opts Options, logger *slog.Logger) (*Adapter, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	opts.Granularity, _ = ParseGranularity(string(opts.Granularity))
	return &Adapter{
		opts:          opts,
		continuations: textutil.NewWordSet(opts.ContinuationWords),
		logger:        logging.NewComponentLogger(logger, "timestamps"),
	}, nil
}

// Adapt groups the words and applies the cleanup passes in order: orphan
// elimination, short-group merging, leading-continuation merging and
// punctuation enforcement.
func (a *Adapter) Adapt(words []transcript.Word) []transcript.Segment {
	groups := a.Group(words)
	initial := len(groups)

	groups = EliminateOrphans(groups, a.opts.OrphanGapSeconds)
	afterOrphans := len(groups)
	groups = MergeShort(groups, a.opts.MinGroupSeconds)
	afterShort := len(groups)
	groups = MergeLeadingContinuations(groups, a.continuations)
	afterContinuations := len(groups)
	groups = EnforcePunctuation(groups)

	a.logger.Debug("timestamp cleanup applied",
		logging.String(logging.FieldEventType, "timestamp_cleanup"),
		logging.Int("words", len(words)),
		logging.Int("groups_initial", initial),
		logging.Int("merged_orphans", initial-afterOrphans),
		logging.Int("merged_short", afterOrphans-afterShort),
		logging.Int("merged_continuations", afterShort-afterContinuations),
		logging.Int("groups_final", len(groups)),
	)

	segments := make([]transcript.Segment, 0, len(groups))
	for _, g := range groups {
		if len(g) == 0 {
			continue
		}
		segments = append(segments, transcript.NewSegment(g))
	}
	return segments
}

// Group forms provisional groups. A new group starts after a silence longer
// than the configured gap and, at sentence granularity, after a word ending
// a sentence.
func (a *Adapter) Group(words []transcript.Word) []Group {
	if len(words) == 0 {
		return nil
	}
	gap := a.opts.GroupGapSeconds
	if a.opts.Granularity == GranularityParagraph {
		gap = a.opts.ParagraphGapSeconds
	}
	var groups []Group
	current := Group{words[0]}
	for _, w := range words[1:] {
		prev := current[len(current)-1]
		split := w.Start-prev.End > gap
		if a.opts.Granularity == GranularitySentence && transcript.EndsSentence(prev.Text) {
			split = true
		}
		if split {
			groups = append(groups, current)
			current = Group{}
		}
		current = append(current, w)
	}
	return append(groups, current)
}
