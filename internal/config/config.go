package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains working, cache and log locations.
type Paths struct {
	WorkDir  string `toml:"work_dir"`
	LogDir   string `toml:"log_dir"`
	CacheDir string `toml:"cache_dir"`
	ReportDB string `toml:"report_db"`
}

// Chunking controls how audio is cut into overlapping windows.
type Chunking struct {
	ChunkSeconds   float64 `toml:"chunk_seconds"`
	OverlapSeconds float64 `toml:"overlap_seconds"`
	SampleRate     int     `toml:"sample_rate"`
}

// Merge selects the overlap reconciliation strategy.
type Merge struct {
	Strategy string `toml:"strategy"`
}

// Cleanup tunes the word grouping passes.
type Cleanup struct {
	Granularity         string   `toml:"granularity"`
	GroupGapSeconds     float64  `toml:"group_gap_seconds"`
	ParagraphGapSeconds float64  `toml:"paragraph_gap_seconds"`
	OrphanGapSeconds    float64  `toml:"orphan_gap_seconds"`
	MinGroupSeconds     float64  `toml:"min_group_seconds"`
	ContinuationWords   []string `toml:"continuation_words"`
}

// Segmentation holds cue readability limits.
type Segmentation struct {
	MaxLineChars       int      `toml:"max_line_chars"`
	MaxLines           int      `toml:"max_lines"`
	MinDurationSeconds float64  `toml:"min_duration_seconds"`
	MaxDurationSeconds float64  `toml:"max_duration_seconds"`
	MinCPS             float64  `toml:"min_cps"`
	MaxCPS             float64  `toml:"max_cps"`
	ClauseWords        []string `toml:"clause_words"`
}

// Quality holds the limits used when scoring rendered output.
type Quality struct {
	LineLengthLimit           int     `toml:"line_length_limit"`
	MinCPS                    float64 `toml:"min_cps"`
	MaxCPS                    float64 `toml:"max_cps"`
	MinSegmentDurationSeconds float64 `toml:"min_segment_duration_seconds"`
	MaxSegmentDurationSeconds float64 `toml:"max_segment_duration_seconds"`
	MinScore                  float64 `toml:"min_score"`
}

// Transcription selects and configures the hypothesis source.
type Transcription struct {
	Source              string `toml:"source"`
	Language            string `toml:"language"`
	Concurrency         int    `toml:"concurrency"`
	CacheEnabled        bool   `toml:"cache_enabled"`
	TimeoutSeconds      int    `toml:"timeout_seconds"`
	WhisperXModel       string `toml:"whisperx_model"`
	WhisperXCUDAEnabled bool   `toml:"whisperx_cuda_enabled"`
	WhisperXVADMethod   string `toml:"whisperx_vad_method"`
	WhisperXHuggingFace string `toml:"whisperx_hf_token"`
	OpenAIAPIKey        string `toml:"openai_api_key"`
	OpenAIModel         string `toml:"openai_model"`
	OpenAIBaseURL       string `toml:"openai_base_url"`
}

// Output controls which files are written.
type Output struct {
	Formats        []string `toml:"formats"`
	HighlightWords bool     `toml:"highlight_words"`
	Dir            string   `toml:"dir"`
}

// Reports controls persistence of quality reports.
type Reports struct {
	Enabled bool `toml:"enabled"`
}

// Watch configures the drop-folder watcher.
type Watch struct {
	Dir            string   `toml:"dir"`
	Extensions     []string `toml:"extensions"`
	MaxConcurrent  int      `toml:"max_concurrent"`
	SettleSeconds  int      `toml:"settle_seconds"`
	ProcessOnStart bool     `toml:"process_on_start"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for stitch.
//
// Configuration sections by subsystem:
//   - Paths: work, cache and log directories plus the report database
//   - Chunking: chunk length, overlap and sample rate
//   - Merge: overlap reconciliation strategy
//   - Cleanup: word grouping thresholds and continuation words
//   - Segmentation: line, duration and reading-rate limits
//   - Quality: scoring limits and pass threshold
//   - Transcription: hypothesis source selection and credentials
//   - Output: rendered formats and highlighting
//   - Reports: report history
//   - Watch: drop-folder processing
//   - Logging: log format and level
type Config struct {
	Paths         Paths         `toml:"paths"`
	Chunking      Chunking      `toml:"chunking"`
	Merge         Merge         `toml:"merge"`
	Cleanup       Cleanup       `toml:"cleanup"`
	Segmentation  Segmentation  `toml:"segmentation"`
	Quality       Quality       `toml:"quality"`
	Transcription Transcription `toml:"transcription"`
	Output        Output        `toml:"output"`
	Reports       Reports       `toml:"reports"`
	Watch         Watch         `toml:"watch"`
	Logging       Logging       `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("stitch.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the work, log and cache directories.
func (c *Config) EnsureDirectories() error {
	dirs := []string{c.Paths.WorkDir, c.Paths.LogDir, c.Paths.CacheDir}
	if c.Reports.Enabled && c.Paths.ReportDB != "" {
		dirs = append(dirs, filepath.Dir(c.Paths.ReportDB))
	}
	if c.Output.Dir != "" {
		dirs = append(dirs, c.Output.Dir)
	}
	for _, dir := range dirs {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// FFmpegBinary returns the ffmpeg executable name used to extract chunks.
func (c *Config) FFmpegBinary() string {
	return "ffmpeg"
}

// FFprobeBinary returns the ffprobe executable name used to probe audio.
func (c *Config) FFprobeBinary() string {
	return "ffprobe"
}

// UVXBinary returns the uvx executable name used to launch WhisperX.
func (c *Config) UVXBinary() string {
	return "uvx"
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

func defaultCacheDir() string {
	if base, ok := os.LookupEnv("XDG_CACHE_HOME"); ok && strings.TrimSpace(base) != "" {
		return filepath.Join(base, "stitch", "hypotheses")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "~/.cache/stitch/hypotheses"
	}
	return filepath.Join(home, ".cache", "stitch", "hypotheses")
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

// SampleConfig returns the embedded sample configuration.
func SampleConfig() string {
	return sampleConfig
}

// Redacted returns a copy of the configuration with secrets masked, for
// display.
func (c *Config) Redacted() Config {
	out := *c
	if out.Transcription.OpenAIAPIKey != "" {
		out.Transcription.OpenAIAPIKey = "********"
	}
	return out
}
