package ffprobe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os/exec"
	"strconv"
	"strings"
)

// Result represents the parsed output from an ffprobe inspection.
type Result struct {
	Streams []Stream `json:"streams"`
	Format  Format   `json:"format"`
	raw     []byte
}

// Stream describes a single stream in the media container.
type Stream struct {
	Index         int               `json:"index"`
	CodecName     string            `json:"codec_name"`
	CodecType     string            `json:"codec_type"`
	Duration      string            `json:"duration"`
	SampleRate    string            `json:"sample_rate"`
	Channels      int               `json:"channels"`
	ChannelLayout string            `json:"channel_layout"`
	Tags          map[string]string `json:"tags"`
	Disposition   map[string]int    `json:"disposition"`
}

// Format captures container-level metadata extracted by ffprobe.
type Format struct {
	Filename   string `json:"filename"`
	NBStreams  int    `json:"nb_streams"`
	Duration   string `json:"duration"`
	Size       string `json:"size"`
	FormatName string `json:"format_name"`
}

// Inspect executes ffprobe against the provided path and decodes the JSON response.
func Inspect(ctx context.Context, binary string, path string) (Result, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = "ffprobe"
	}
	path = strings.TrimSpace(path)
	if path == "" {
		return Result{}, errors.New("ffprobe inspect: empty path")
	}

	cmd := exec.CommandContext(ctx, binary, "-v", "error", "-hide_banner", "-show_format", "-show_streams", "-of", "json", "--", path)
	output, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return Result{}, fmt.Errorf("ffprobe inspect: %w: %s", err, strings.TrimSpace(string(exitErr.Stderr)))
		}
		return Result{}, fmt.Errorf("ffprobe inspect: %w", err)
	}
	return Parse(output)
}

// Parse decodes an ffprobe JSON payload.
func Parse(data []byte) (Result, error) {
	var result Result
	if err := json.Unmarshal(data, &result); err != nil {
		return Result{}, fmt.Errorf("ffprobe parse: %w", err)
	}
	result.raw = append([]byte(nil), data...)
	return result, nil
}

// RawJSON returns the raw ffprobe JSON payload.
func (r Result) RawJSON() []byte {
	return append([]byte(nil), r.raw...)
}

// AudioStreams returns the audio streams in container order.
func (r Result) AudioStreams() []Stream {
	var audio []Stream
	for _, stream := range r.Streams {
		if stream.IsAudio() {
			audio = append(audio, stream)
		}
	}
	return audio
}

// AudioStreamCount returns the number of audio streams discovered.
func (r Result) AudioStreamCount() int {
	return len(r.AudioStreams())
}

// DurationSeconds returns the media duration in seconds. The container duration
// wins; when it is missing or unparsable the longest audio stream is used.
// Returns 0 when nothing usable is reported.
func (r Result) DurationSeconds() float64 {
	if d := parseFloat(r.Format.Duration); isUsable(d) {
		return d
	}
	longest := 0.0
	for _, stream := range r.AudioStreams() {
		if d := stream.DurationSeconds(); d > longest {
			longest = d
		}
	}
	return longest
}

// SizeBytes returns the reported container size in bytes, or 0 when unavailable.
func (r Result) SizeBytes() int64 {
	size := parseFloat(r.Format.Size)
	if !isUsable(size) {
		return 0
	}
	return int64(size)
}

// IsAudio reports whether the stream carries audio.
func (s Stream) IsAudio() bool {
	return strings.EqualFold(s.CodecType, "audio")
}

// DurationSeconds returns the stream duration, or 0 when unavailable.
func (s Stream) DurationSeconds() float64 {
	d := parseFloat(s.Duration)
	if !isUsable(d) {
		return 0
	}
	return d
}

// SampleRateHz returns the stream sample rate, or 0 when unavailable.
func (s Stream) SampleRateHz() int {
	rate := parseFloat(s.SampleRate)
	if !isUsable(rate) {
		return 0
	}
	return int(rate)
}

// Title returns the stream title tag, if any.
func (s Stream) Title() string {
	for _, key := range []string{"title", "TITLE", "Title"} {
		if value := strings.TrimSpace(s.Tags[key]); value != "" {
			return value
		}
	}
	return ""
}

// IsDefault reports whether the default disposition flag is set.
func (s Stream) IsDefault() bool {
	return s.Disposition["default"] == 1
}

func isUsable(value float64) bool {
	return !math.IsNaN(value) && !math.IsInf(value, 0) && value > 0
}

func parseFloat(value string) float64 {
	cleaned := strings.TrimSpace(value)
	if cleaned == "" {
		return 0
	}
	if parsed, err := strconv.ParseFloat(cleaned, 64); err == nil {
		return parsed
	}
	return math.NaN()
}
