package pipeline

import (
	"strings"
	"time"

	"stitch/internal/config"
	"stitch/internal/hypothesis"
	"stitch/internal/services"
	openaisvc "stitch/internal/services/openai"
	"stitch/internal/services/whisperx"
)

// Source names accepted by transcription.source.
const (
	SourceWhisperX = "whisperx"
	SourceOpenAI   = "openai"
	SourceJSON     = "json"
)

// NewSource builds the configured hypothesis source. hypothesesPath is only
// used by the json source, which replays a recorded hypothesis file.
func NewSource(cfg *config.Config, hypothesesPath string) (hypothesis.Source, error) {
	switch name := strings.ToLower(strings.TrimSpace(cfg.Transcription.Source)); name {
	case SourceWhisperX:
		return whisperx.NewService(whisperx.Config{
			Model:       cfg.Transcription.WhisperXModel,
			CUDAEnabled: cfg.Transcription.WhisperXCUDAEnabled,
			VADMethod:   cfg.Transcription.WhisperXVADMethod,
			HFToken:     cfg.Transcription.WhisperXHuggingFace,
		}, cfg.FFmpegBinary(), cfg.UVXBinary()), nil
	case SourceOpenAI:
		if strings.TrimSpace(cfg.Transcription.OpenAIAPIKey) == "" {
			return nil, services.Wrap(services.ErrConfiguration, "transcribe", "build source",
				"transcription.openai_api_key (or OPENAI_API_KEY) is required for the openai source", nil)
		}
		return openaisvc.NewService(openaisvc.Config{
			APIKey:  cfg.Transcription.OpenAIAPIKey,
			BaseURL: cfg.Transcription.OpenAIBaseURL,
			Model:   cfg.Transcription.OpenAIModel,
			Timeout: time.Duration(cfg.Transcription.TimeoutSeconds) * time.Second,
		}, cfg.FFmpegBinary()), nil
	case SourceJSON:
		if strings.TrimSpace(hypothesesPath) == "" {
			return nil, services.Wrap(services.ErrConfiguration, "transcribe", "build source",
				"the json source needs a hypothesis file (--hypotheses)", nil)
		}
		file, err := hypothesis.LoadFile(hypothesesPath)
		if err != nil {
			return nil, services.Wrap(services.ErrValidation, "transcribe", "load hypotheses", hypothesesPath, err)
		}
		return hypothesis.NewFileSource(file), nil
	default:
		return nil, services.Wrap(services.ErrConfiguration, "transcribe", "build source",
			"unknown transcription.source "+name, nil)
	}
}
