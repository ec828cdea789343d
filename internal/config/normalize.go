package config

import (
	"fmt"
	"os"
	"strings"

	"stitch/internal/language"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeSelectors()
	c.normalizeTranscription()
	c.normalizeWordLists()
	c.normalizeOutput()
	if err := c.normalizeWatch(); err != nil {
		return err
	}
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.WorkDir, err = expandPath(c.Paths.WorkDir); err != nil {
		return fmt.Errorf("paths.work_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.CacheDir) == "" {
		c.Paths.CacheDir = defaultCacheDir()
	}
	if c.Paths.CacheDir, err = expandPath(c.Paths.CacheDir); err != nil {
		return fmt.Errorf("paths.cache_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.ReportDB) == "" {
		c.Paths.ReportDB = defaultReportDB
	}
	if c.Paths.ReportDB, err = expandPath(c.Paths.ReportDB); err != nil {
		return fmt.Errorf("paths.report_db: %w", err)
	}
	return nil
}

func (c *Config) normalizeSelectors() {
	c.Merge.Strategy = strings.ToLower(strings.TrimSpace(c.Merge.Strategy))
	if c.Merge.Strategy == "" {
		c.Merge.Strategy = defaultMergeStrategy
	}
	c.Cleanup.Granularity = strings.ToLower(strings.TrimSpace(c.Cleanup.Granularity))
	if c.Cleanup.Granularity == "" {
		c.Cleanup.Granularity = defaultGranularity
	}
}

func (c *Config) normalizeTranscription() {
	t := &c.Transcription
	t.Source = strings.ToLower(strings.TrimSpace(t.Source))
	if t.Source == "" {
		t.Source = defaultTranscriptionSource
	}
	t.Language = language.ToISO2(t.Language)
	if t.Language == "" {
		t.Language = defaultTranscriptionLang
	}
	if t.Concurrency <= 0 {
		t.Concurrency = 1
	}
	if t.TimeoutSeconds <= 0 {
		t.TimeoutSeconds = defaultTranscriptionTimeout
	}
	t.WhisperXModel = strings.TrimSpace(t.WhisperXModel)
	if t.WhisperXModel == "" {
		t.WhisperXModel = defaultWhisperXModel
	}
	t.WhisperXVADMethod = strings.ToLower(strings.TrimSpace(t.WhisperXVADMethod))
	if t.WhisperXVADMethod == "" {
		t.WhisperXVADMethod = defaultWhisperXVADMethod
	}
	t.WhisperXHuggingFace = strings.TrimSpace(t.WhisperXHuggingFace)
	if t.WhisperXHuggingFace == "" {
		t.WhisperXHuggingFace = firstEnv("HUGGING_FACE_HUB_TOKEN", "HF_TOKEN")
	}
	t.OpenAIAPIKey = strings.TrimSpace(t.OpenAIAPIKey)
	if t.OpenAIAPIKey == "" {
		t.OpenAIAPIKey = firstEnv("OPENAI_API_KEY")
	}
	t.OpenAIModel = strings.TrimSpace(t.OpenAIModel)
	if t.OpenAIModel == "" {
		t.OpenAIModel = defaultOpenAIModel
	}
	t.OpenAIBaseURL = strings.TrimRight(strings.TrimSpace(t.OpenAIBaseURL), "/")
}

// normalizeWordLists fills empty word lists from the transcription language.
func (c *Config) normalizeWordLists() {
	c.Cleanup.ContinuationWords = cleanWords(c.Cleanup.ContinuationWords)
	if len(c.Cleanup.ContinuationWords) == 0 {
		c.Cleanup.ContinuationWords = language.ContinuationWords(c.Transcription.Language)
	}
	c.Segmentation.ClauseWords = cleanWords(c.Segmentation.ClauseWords)
	if len(c.Segmentation.ClauseWords) == 0 {
		c.Segmentation.ClauseWords = language.ClauseWords(c.Transcription.Language)
	}
}

func (c *Config) normalizeOutput() {
	formats := make([]string, 0, len(c.Output.Formats))
	seen := make(map[string]struct{}, len(c.Output.Formats))
	for _, f := range c.Output.Formats {
		normalized := strings.TrimPrefix(strings.ToLower(strings.TrimSpace(f)), ".")
		if normalized == "" {
			continue
		}
		if _, exists := seen[normalized]; exists {
			continue
		}
		seen[normalized] = struct{}{}
		formats = append(formats, normalized)
	}
	if len(formats) == 0 {
		formats = []string{defaultOutputFormat}
	}
	c.Output.Formats = formats
	if dir := strings.TrimSpace(c.Output.Dir); dir != "" {
		if expanded, err := expandPath(dir); err == nil {
			c.Output.Dir = expanded
		}
	}
}

func (c *Config) normalizeWatch() error {
	if strings.TrimSpace(c.Watch.Dir) != "" {
		var err error
		if c.Watch.Dir, err = expandPath(c.Watch.Dir); err != nil {
			return fmt.Errorf("watch.dir: %w", err)
		}
	}
	exts := make([]string, 0, len(c.Watch.Extensions))
	for _, ext := range c.Watch.Extensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		exts = append(exts, ext)
	}
	if len(exts) == 0 {
		exts = append(exts, defaultWatchExtensions...)
	}
	c.Watch.Extensions = exts
	if c.Watch.MaxConcurrent <= 0 {
		c.Watch.MaxConcurrent = defaultWatchMaxConcurrent
	}
	if c.Watch.SettleSeconds < 0 {
		c.Watch.SettleSeconds = 0
	}
	return nil
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

func cleanWords(words []string) []string {
	out := make([]string, 0, len(words))
	for _, w := range words {
		if w = strings.ToLower(strings.TrimSpace(w)); w != "" {
			out = append(out, w)
		}
	}
	return out
}

// firstEnv returns the first non-blank value among the named variables.
func firstEnv(keys ...string) string {
	for _, key := range keys {
		if value := strings.TrimSpace(os.Getenv(key)); value != "" {
			return value
		}
	}
	return ""
}
