package config

const (
	defaultConfigPath           = "~/.config/stitch/config.toml"
	defaultWorkDir              = "~/.local/share/stitch/work"
	defaultLogDir               = "~/.local/share/stitch/logs"
	defaultReportDB             = "~/.local/share/stitch/reports.db"
	defaultChunkSeconds         = 30.0
	defaultOverlapSeconds       = 5.0
	defaultSampleRate           = 16000
	defaultMergeStrategy        = "lcs"
	defaultGranularity          = "sentence"
	defaultGroupGapSeconds      = 1.2
	defaultParagraphGapSeconds  = 2.5
	defaultOrphanGapSeconds     = 1.5
	defaultMinGroupSeconds      = 0.8
	defaultMaxLineChars         = 42
	defaultMaxLines             = 2
	defaultMinDurationSeconds   = 0.5
	defaultMaxDurationSeconds   = 7.0
	defaultMinCPS               = 10.0
	defaultMaxCPS               = 22.0
	defaultTranscriptionSource  = "whisperx"
	defaultTranscriptionLang    = "en"
	defaultTranscriptionTimeout = 900
	defaultWhisperXModel        = "large-v3-turbo"
	defaultWhisperXVADMethod    = "silero"
	defaultOpenAIModel          = "whisper-1"
	defaultOutputFormat         = "srt"
	defaultWatchMaxConcurrent   = 1
	defaultWatchSettleSeconds   = 5
	defaultLogFormat            = "console"
	defaultLogLevel             = "info"
)

var defaultWatchExtensions = []string{".wav", ".flac", ".mp3", ".m4a", ".ogg", ".opus", ".mkv", ".mp4"}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			WorkDir:  defaultWorkDir,
			LogDir:   defaultLogDir,
			CacheDir: defaultCacheDir(),
			ReportDB: defaultReportDB,
		},
		Chunking: Chunking{
			ChunkSeconds:   defaultChunkSeconds,
			OverlapSeconds: defaultOverlapSeconds,
			SampleRate:     defaultSampleRate,
		},
		Merge: Merge{
			Strategy: defaultMergeStrategy,
		},
		Cleanup: Cleanup{
			Granularity:         defaultGranularity,
			GroupGapSeconds:     defaultGroupGapSeconds,
			ParagraphGapSeconds: defaultParagraphGapSeconds,
			OrphanGapSeconds:    defaultOrphanGapSeconds,
			MinGroupSeconds:     defaultMinGroupSeconds,
		},
		Segmentation: Segmentation{
			MaxLineChars:       defaultMaxLineChars,
			MaxLines:           defaultMaxLines,
			MinDurationSeconds: defaultMinDurationSeconds,
			MaxDurationSeconds: defaultMaxDurationSeconds,
			MinCPS:             defaultMinCPS,
			MaxCPS:             defaultMaxCPS,
		},
		Quality: Quality{
			LineLengthLimit:           defaultMaxLineChars,
			MinCPS:                    defaultMinCPS,
			MaxCPS:                    defaultMaxCPS,
			MinSegmentDurationSeconds: defaultMinDurationSeconds,
			MaxSegmentDurationSeconds: defaultMaxDurationSeconds,
		},
		Transcription: Transcription{
			Source:            defaultTranscriptionSource,
			Language:          defaultTranscriptionLang,
			Concurrency:       1,
			CacheEnabled:      true,
			TimeoutSeconds:    defaultTranscriptionTimeout,
			WhisperXModel:     defaultWhisperXModel,
			WhisperXVADMethod: defaultWhisperXVADMethod,
			OpenAIModel:       defaultOpenAIModel,
		},
		Output: Output{
			Formats: []string{defaultOutputFormat},
		},
		Reports: Reports{
			Enabled: true,
		},
		Watch: Watch{
			Extensions:    append([]string(nil), defaultWatchExtensions...),
			MaxConcurrent: defaultWatchMaxConcurrent,
			SettleSeconds: defaultWatchSettleSeconds,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
