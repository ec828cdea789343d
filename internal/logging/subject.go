package logging

import "strings"

// FormatSubject builds the run/stage/chunk subject string used in console output.
func FormatSubject(runID, stage, chunk string) string {
	runID = strings.TrimSpace(runID)
	stage = strings.TrimSpace(stage)
	chunk = strings.TrimSpace(chunk)
	if len(runID) > 8 {
		runID = runID[:8]
	}
	parts := make([]string, 0, 3)
	if runID != "" {
		parts = append(parts, "run "+runID)
	}
	if stage != "" {
		parts = append(parts, stage)
	}
	if chunk != "" {
		parts = append(parts, "chunk #"+chunk)
	}
	return strings.Join(parts, " · ")
}
