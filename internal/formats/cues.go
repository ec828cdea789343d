package formats

import (
	"strings"

	"stitch/internal/textutil"
	"stitch/internal/transcript"
)

// Cue is one timed subtitle block.
type Cue struct {
	Index int
	Start float64
	End   float64
	Text  string
}

// buildCues lays out segments as display cues. With highlighting each word
// gets its own cue showing the whole segment with that word underlined.
func buildCues(segments []transcript.Segment, opts RenderOptions) []Cue {
	cues := make([]Cue, 0, len(segments))
	for _, seg := range segments {
		lines := textutil.WrapBalanced(seg.Text, opts.MaxLineChars)
		if !opts.HighlightWords || len(seg.Words) == 0 {
			cues = append(cues, Cue{Start: seg.Start, End: seg.End, Text: strings.Join(lines, "\n")})
			continue
		}
		cues = append(cues, highlightCues(seg, lines)...)
	}
	for i := range cues {
		cues[i].Index = i + 1
	}
	return cues
}

func highlightCues(seg transcript.Segment, lines []string) []Cue {
	fields := strings.Fields(seg.Text)
	lineSizes := make([]int, len(lines))
	for i, line := range lines {
		lineSizes[i] = len(strings.Fields(line))
	}

	type frame struct {
		field int
		start float64
	}
	var frames []frame
	for k := range seg.Words {
		field := len(strings.Fields(transcript.JoinWords(seg.Words[:k+1]))) - 1
		if field < 0 || field >= len(fields) {
			continue
		}
		if n := len(frames); n > 0 && frames[n-1].field == field {
			continue
		}
		frames = append(frames, frame{field: field, start: seg.Words[k].Start})
	}
	if len(frames) == 0 {
		return []Cue{{Start: seg.Start, End: seg.End, Text: strings.Join(lines, "\n")}}
	}
	frames[0].start = seg.Start

	cues := make([]Cue, 0, len(frames))
	for i, f := range frames {
		end := seg.End
		if i+1 < len(frames) {
			end = frames[i+1].start
		}
		if end <= f.start {
			continue
		}
		marked := make([]string, len(fields))
		copy(marked, fields)
		marked[f.field] = "<u>" + marked[f.field] + "</u>"
		cues = append(cues, Cue{Start: f.start, End: end, Text: regroup(marked, lineSizes)})
	}
	return cues
}

// regroup joins fields back into lines holding the given number of fields.
func regroup(fields []string, sizes []int) string {
	var lines []string
	pos := 0
	for _, size := range sizes {
		if pos+size > len(fields) {
			size = len(fields) - pos
		}
		lines = append(lines, strings.Join(fields[pos:pos+size], " "))
		pos += size
	}
	if pos < len(fields) {
		lines = append(lines, strings.Join(fields[pos:], " "))
	}
	return strings.Join(lines, "\n")
}
