// Package formats renders aligned transcripts into subtitle and transcript
// files and parses subtitle files back into timed cues.
//
// Formats form a closed registry. Each Spec advertises whether it needs word
// timestamps and whether it can highlight the active word, so callers branch
// on capabilities instead of format names.
package formats

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"stitch/internal/transcript"
)

// ErrUnknownFormat is returned for names outside the registry.
var ErrUnknownFormat = errors.New("unknown output format")

// ErrMissingWordTimestamps is returned when a format needs per-word timings
// that the result does not carry.
var ErrMissingWordTimestamps = errors.New("format requires word timestamps")

// RenderOptions control line layout and highlighting.
type RenderOptions struct {
	MaxLineChars   int
	HighlightWords bool
}

type renderFunc func(result transcript.AlignedResult, opts RenderOptions) ([]byte, error)

// Spec describes one output format.
type Spec struct {
	Name                   string
	Extension              string
	RequiresWordTimestamps bool
	SupportsHighlighting   bool
	render                 renderFunc
}

var registry = []Spec{
	{Name: "srt", Extension: ".srt", SupportsHighlighting: true, render: renderSRT},
	{Name: "vtt", Extension: ".vtt", SupportsHighlighting: true, render: renderVTT},
	{Name: "txt", Extension: ".txt", render: renderTXT},
	{Name: "json", Extension: ".json", RequiresWordTimestamps: true, render: renderJSON},
}

// All returns every registered format in registry order.
func All() []Spec {
	return slices.Clone(registry)
}

// Names lists the registered format names.
func Names() []string {
	names := make([]string, len(registry))
	for i, spec := range registry {
		names[i] = spec.Name
	}
	return names
}

// Lookup resolves a format by case-insensitive name.
func Lookup(name string) (Spec, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	for _, spec := range registry {
		if spec.Name == key {
			return spec, nil
		}
	}
	return Spec{}, fmt.Errorf("%w %q (expected one of %s)", ErrUnknownFormat, name, strings.Join(Names(), ", "))
}

// Render serializes result. Highlighting is applied only when requested and
// supported by the format.
func (s Spec) Render(result transcript.AlignedResult, opts RenderOptions) ([]byte, error) {
	if s.render == nil {
		return nil, fmt.Errorf("%w %q", ErrUnknownFormat, s.Name)
	}
	if s.RequiresWordTimestamps && len(result.Segments) > 0 && len(result.Words) == 0 {
		return nil, fmt.Errorf("%s: %w", s.Name, ErrMissingWordTimestamps)
	}
	if !s.SupportsHighlighting {
		opts.HighlightWords = false
	}
	return s.render(result, opts)
}

// FileName returns base with the format extension appended.
func (s Spec) FileName(base string) string {
	return base + s.Extension
}
