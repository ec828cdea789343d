package formats

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseCues reads SRT or WebVTT content. Blocks without a valid timing line
// are skipped rather than failing the whole file.
func ParseCues(data []byte) []Cue {
	content := strings.TrimSpace(strings.ReplaceAll(string(data), "\r\n", "\n"))
	content = strings.TrimPrefix(content, "\ufeff")
	if content == "" {
		return nil
	}
	var cues []Cue
	for _, block := range strings.Split(content, "\n\n") {
		lines := strings.Split(strings.TrimSpace(block), "\n")
		timing := -1
		for i, line := range lines {
			if strings.Contains(line, "-->") {
				timing = i
				break
			}
		}
		if timing < 0 {
			continue
		}
		start, end, err := parseTimingLine(lines[timing])
		if err != nil {
			continue
		}
		cue := Cue{Index: len(cues) + 1, Start: start, End: end}
		if timing > 0 {
			if idx, err := strconv.Atoi(strings.TrimSpace(lines[timing-1])); err == nil {
				cue.Index = idx
			}
		}
		cue.Text = strings.TrimSpace(strings.Join(lines[timing+1:], "\n"))
		cues = append(cues, cue)
	}
	return cues
}

func parseTimingLine(line string) (float64, float64, error) {
	parts := strings.SplitN(line, "-->", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid timing line %q", line)
	}
	start, err := parseTimestamp(parts[0])
	if err != nil {
		return 0, 0, err
	}
	// WebVTT allows cue settings after the end time.
	endFields := strings.Fields(parts[1])
	if len(endFields) == 0 {
		return 0, 0, fmt.Errorf("invalid timing line %q", line)
	}
	end, err := parseTimestamp(endFields[0])
	if err != nil {
		return 0, 0, err
	}
	return start, end, nil
}

// parseTimestamp accepts HH:MM:SS,mmm, HH:MM:SS.mmm and the WebVTT short
// form MM:SS.mmm.
func parseTimestamp(value string) (float64, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, fmt.Errorf("empty timestamp")
	}
	value = strings.ReplaceAll(value, ",", ".")
	clock, frac, ok := strings.Cut(value, ".")
	if !ok {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}
	parts := strings.Split(clock, ":")
	if len(parts) == 2 {
		parts = append([]string{"0"}, parts...)
	}
	if len(parts) != 3 {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}
	hours, errH := strconv.Atoi(parts[0])
	minutes, errM := strconv.Atoi(parts[1])
	seconds, errS := strconv.Atoi(parts[2])
	millis, errMS := strconv.Atoi(frac)
	if errH != nil || errM != nil || errS != nil || errMS != nil || len(frac) != 3 {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}
	return float64(hours*3600+minutes*60+seconds) + float64(millis)/1000, nil
}
