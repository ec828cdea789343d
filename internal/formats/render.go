package formats

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"stitch/internal/transcript"
)

func renderSRT(result transcript.AlignedResult, opts RenderOptions) ([]byte, error) {
	var buf bytes.Buffer
	for i, cue := range buildCues(result.Segments, opts) {
		if i > 0 {
			buf.WriteString("\n")
		}
		fmt.Fprintf(&buf, "%d\n", cue.Index)
		fmt.Fprintf(&buf, "%s --> %s\n", formatTimestamp(cue.Start, ','), formatTimestamp(cue.End, ','))
		buf.WriteString(cue.Text)
		buf.WriteString("\n")
	}
	return buf.Bytes(), nil
}

func renderVTT(result transcript.AlignedResult, opts RenderOptions) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString("WEBVTT\n")
	for _, cue := range buildCues(result.Segments, opts) {
		buf.WriteString("\n")
		fmt.Fprintf(&buf, "%s --> %s\n", formatTimestamp(cue.Start, '.'), formatTimestamp(cue.End, '.'))
		buf.WriteString(cue.Text)
		buf.WriteString("\n")
	}
	return buf.Bytes(), nil
}

func renderTXT(result transcript.AlignedResult, _ RenderOptions) ([]byte, error) {
	var buf bytes.Buffer
	for _, seg := range result.Segments {
		text := strings.TrimSpace(seg.Text)
		if text == "" {
			continue
		}
		buf.WriteString(text)
		buf.WriteString("\n")
	}
	return buf.Bytes(), nil
}

func renderJSON(result transcript.AlignedResult, _ RenderOptions) ([]byte, error) {
	if result.Words == nil {
		result.Words = []transcript.Word{}
	}
	if result.Segments == nil {
		result.Segments = []transcript.Segment{}
	}
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode json transcript: %w", err)
	}
	return append(data, '\n'), nil
}

// formatTimestamp renders seconds as HH:MM:SS plus milliseconds after sep.
func formatTimestamp(seconds float64, sep byte) string {
	if seconds < 0 || math.IsNaN(seconds) {
		seconds = 0
	}
	total := int64(math.Round(seconds * 1000))
	ms := total % 1000
	s := (total / 1000) % 60
	m := (total / 60000) % 60
	h := total / 3600000
	return fmt.Sprintf("%02d:%02d:%02d%c%03d", h, m, s, sep, ms)
}
