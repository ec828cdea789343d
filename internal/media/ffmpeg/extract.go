// Package ffmpeg extracts chunk audio for recognizers.
package ffmpeg

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// SampleRate is the rate of extracted chunk audio.
const SampleRate = 16000

// Extract describes one chunk extraction.
type Extract struct {
	Source string
	// AudioStream is the ordinal among the source's audio streams.
	AudioStream int
	Start       float64
	Duration    float64
	Dest        string
}

// Args returns the ffmpeg arguments for e, writing mono 16kHz PCM WAV.
func (e Extract) Args() ([]string, error) {
	if strings.TrimSpace(e.Source) == "" {
		return nil, fmt.Errorf("extract chunk: empty source")
	}
	if e.Start < 0 {
		return nil, fmt.Errorf("extract chunk: invalid start %.3f", e.Start)
	}
	if e.Duration <= 0 {
		return nil, fmt.Errorf("extract chunk: invalid duration %.3f", e.Duration)
	}
	if e.AudioStream < 0 {
		return nil, fmt.Errorf("extract chunk: invalid audio stream %d", e.AudioStream)
	}
	return []string{
		"-y",
		"-hide_banner",
		"-loglevel", "error",
		"-ss", formatSeconds(e.Start),
		"-t", formatSeconds(e.Duration),
		"-i", e.Source,
		"-map", fmt.Sprintf("0:a:%d", e.AudioStream),
		"-vn",
		"-sn",
		"-dn",
		"-ac", "1",
		"-ar", strconv.Itoa(SampleRate),
		"-c:a", "pcm_s16le",
		e.Dest,
	}, nil
}

// Run executes the extraction with binary (default "ffmpeg").
func (e Extract) Run(ctx context.Context, binary string) error {
	args, err := e.Args()
	if err != nil {
		return err
	}
	if strings.TrimSpace(binary) == "" {
		binary = "ffmpeg"
	}
	cmd := exec.CommandContext(ctx, binary, args...) //nolint:gosec
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("ffmpeg extract chunk: %w: %s", err, strings.TrimSpace(string(output)))
	}
	return nil
}

func formatSeconds(v float64) string {
	return strconv.FormatFloat(v, 'f', 3, 64)
}
