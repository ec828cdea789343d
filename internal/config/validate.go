package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

var (
	mergeStrategies = []string{"contiguous", "lcs", "none"}
	granularities   = []string{"sentence", "paragraph"}
	outputFormats   = []string{"srt", "vtt", "txt", "json"}
	sources         = []string{"whisperx", "openai", "json"}
	logLevels       = []string{"debug", "info", "warn", "warning", "error"}
	vadMethods      = []string{"silero", "pyannote"}
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateChunking(); err != nil {
		return err
	}
	if err := c.validateMerge(); err != nil {
		return err
	}
	if err := c.validateCleanup(); err != nil {
		return err
	}
	if err := c.validateSegmentation(); err != nil {
		return err
	}
	if err := c.validateQuality(); err != nil {
		return err
	}
	if err := c.validateTranscription(); err != nil {
		return err
	}
	if err := c.validateOutput(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateChunking() error {
	if c.Chunking.ChunkSeconds <= 0 {
		return errors.New("chunking.chunk_seconds must be positive")
	}
	if c.Chunking.OverlapSeconds < 0 {
		return errors.New("chunking.overlap_seconds must be non-negative")
	}
	if c.Chunking.OverlapSeconds >= c.Chunking.ChunkSeconds {
		return errors.New("chunking.overlap_seconds must be less than chunking.chunk_seconds")
	}
	if c.Chunking.SampleRate <= 0 {
		return errors.New("chunking.sample_rate must be positive")
	}
	return nil
}

func (c *Config) validateMerge() error {
	return validateChoice("merge.strategy", c.Merge.Strategy, mergeStrategies)
}

func (c *Config) validateCleanup() error {
	if err := validateChoice("cleanup.granularity", c.Cleanup.Granularity, granularities); err != nil {
		return err
	}
	if err := ensurePositiveMap(map[string]float64{
		"cleanup.group_gap_seconds":     c.Cleanup.GroupGapSeconds,
		"cleanup.paragraph_gap_seconds": c.Cleanup.ParagraphGapSeconds,
		"cleanup.orphan_gap_seconds":    c.Cleanup.OrphanGapSeconds,
	}); err != nil {
		return err
	}
	if c.Cleanup.MinGroupSeconds < 0 {
		return errors.New("cleanup.min_group_seconds must be non-negative")
	}
	return nil
}

func (c *Config) validateSegmentation() error {
	s := c.Segmentation
	if s.MaxLineChars <= 0 {
		return errors.New("segmentation.max_line_chars must be positive")
	}
	if s.MaxLines <= 0 {
		return errors.New("segmentation.max_lines must be positive")
	}
	if err := validateRange("segmentation.min_duration_seconds", "segmentation.max_duration_seconds", s.MinDurationSeconds, s.MaxDurationSeconds); err != nil {
		return err
	}
	return validateRange("segmentation.min_cps", "segmentation.max_cps", s.MinCPS, s.MaxCPS)
}

func (c *Config) validateQuality() error {
	q := c.Quality
	if q.LineLengthLimit <= 0 {
		return errors.New("quality.line_length_limit must be positive")
	}
	if err := validateRange("quality.min_cps", "quality.max_cps", q.MinCPS, q.MaxCPS); err != nil {
		return err
	}
	if err := validateRange("quality.min_segment_duration_seconds", "quality.max_segment_duration_seconds", q.MinSegmentDurationSeconds, q.MaxSegmentDurationSeconds); err != nil {
		return err
	}
	if q.MinScore < 0 || q.MinScore > 1 {
		return errors.New("quality.min_score must be between 0 and 1")
	}
	return nil
}

func (c *Config) validateTranscription() error {
	t := c.Transcription
	if err := validateChoice("transcription.source", t.Source, sources); err != nil {
		return err
	}
	if t.Concurrency > 16 {
		return errors.New("transcription.concurrency must be between 1 and 16")
	}
	if t.Source == "whisperx" {
		if err := validateChoice("transcription.whisperx_vad_method", t.WhisperXVADMethod, vadMethods); err != nil {
			return err
		}
		if t.WhisperXVADMethod == "pyannote" && t.WhisperXHuggingFace == "" {
			return errors.New("transcription.whisperx_hf_token is required when transcription.whisperx_vad_method is pyannote (set HF_TOKEN)")
		}
	}
	return nil
}

func (c *Config) validateOutput() error {
	for _, format := range c.Output.Formats {
		if err := validateChoice("output.formats", format, outputFormats); err != nil {
			return err
		}
	}
	return nil
}

func (c *Config) validateLogging() error {
	return validateChoice("logging.level", c.Logging.Level, logLevels)
}

func validateChoice(key, value string, allowed []string) error {
	if slices.Contains(allowed, value) {
		return nil
	}
	return fmt.Errorf("%s must be one of %s (got %q)", key, strings.Join(allowed, ", "), value)
}

func validateRange(minKey, maxKey string, lo, hi float64) error {
	if lo < 0 {
		return fmt.Errorf("%s must be non-negative", minKey)
	}
	if hi <= lo {
		return fmt.Errorf("%s must be greater than %s", maxKey, minKey)
	}
	return nil
}

func ensurePositiveMap(values map[string]float64) error {
	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	slices.Sort(keys)
	for _, key := range keys {
		if values[key] <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}
