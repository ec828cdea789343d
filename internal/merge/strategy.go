package merge

import (
	"errors"
	"fmt"
	"strings"

	"stitch/internal/transcript"
)

// ErrUnknownStrategy reports a strategy name outside the supported set.
var ErrUnknownStrategy = errors.New("unknown merge strategy")

// Strategy names a merge algorithm.
type Strategy string

const (
	StrategyContiguous Strategy = "contiguous"
	StrategyLCS        Strategy = "lcs"
	StrategyNone       Strategy = "none"
)

// Strategies lists every supported strategy in display order.
func Strategies() []Strategy {
	return []Strategy{StrategyContiguous, StrategyLCS, StrategyNone}
}

// ParseStrategy resolves a configured name. Matching ignores case and
// surrounding whitespace.
func ParseStrategy(name string) (Strategy, error) {
	normalized := Strategy(strings.ToLower(strings.TrimSpace(name)))
	for _, s := range Strategies() {
		if s == normalized {
			return s, nil
		}
	}
	return "", fmt.Errorf("%w %q (expected one of contiguous, lcs, none)", ErrUnknownStrategy, name)
}

// Merger returns the implementation for the strategy.
func (s Strategy) Merger() (Merger, error) {
	switch s {
	case StrategyContiguous:
		return contiguousMerger{}, nil
	case StrategyLCS:
		return lcsMerger{}, nil
	case StrategyNone:
		return concatMerger{}, nil
	default:
		return nil, fmt.Errorf("%w %q", ErrUnknownStrategy, string(s))
	}
}

// Window is the absolute time range covered by two consecutive chunks.
type Window struct {
	Start float64
	End   float64
}

// Mid returns the window midpoint.
func (w Window) Mid() float64 {
	return (w.Start + w.End) / 2
}

// Empty reports whether the window has no extent.
func (w Window) Empty() bool {
	return w.End <= w.Start
}

// Outcome describes a single pairwise merge.
type Outcome struct {
	Words []transcript.Word
	// Matched is the number of overlap tokens both sides agreed on.
	Matched int
	// Degenerate is set when one side had no words inside the window.
	Degenerate bool
	// Fallback is set when no agreement was found and the window midpoint
	// decided which side kept its words.
	Fallback bool
}

// Merger combines an earlier word stream a with a later stream b whose
// chunks overlap on w. Inputs are not modified.
type Merger interface {
	Merge(a, b []transcript.Word, w Window) Outcome
}

type concatMerger struct{}

func (concatMerger) Merge(a, b []transcript.Word, _ Window) Outcome {
	out := make([]transcript.Word, 0, len(a)+len(b))
	out = append(out, a...)
	out = append(out, b...)
	return Outcome{Words: out}
}
