package openai

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	"stitch/internal/hypothesis"
	langpkg "stitch/internal/language"
	"stitch/internal/media/ffmpeg"
	"stitch/internal/services"
	"stitch/internal/textutil"
	"stitch/internal/transcript"
)

// Config captures API settings.
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// Service transcribes chunks through the OpenAI audio endpoint.
type Service struct {
	client       *openai.Client
	model        string
	timeout      time.Duration
	ffmpegBinary string
	extract      func(ctx context.Context, e ffmpeg.Extract) error
}

// NewService builds a client from cfg.
func NewService(cfg Config, ffmpegBinary string) *Service {
	clientCfg := openai.DefaultConfig(strings.TrimSpace(cfg.APIKey))
	if base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"); base != "" {
		clientCfg.BaseURL = base
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = openai.Whisper1
	}
	s := &Service{
		client:       openai.NewClientWithConfig(clientCfg),
		model:        model,
		timeout:      cfg.Timeout,
		ffmpegBinary: ffmpegBinary,
	}
	s.extract = func(ctx context.Context, e ffmpeg.Extract) error {
		return e.Run(ctx, s.ffmpegBinary)
	}
	return s
}

// WithExtractor replaces chunk extraction (for testing).
func (s *Service) WithExtractor(fn func(ctx context.Context, e ffmpeg.Extract) error) {
	if fn != nil {
		s.extract = fn
	}
}

// Name implements hypothesis.Source.
func (s *Service) Name() string { return "openai" }

// Model implements hypothesis.Source.
func (s *Service) Model() string { return s.model }

// Transcribe implements hypothesis.Source.
func (s *Service) Transcribe(ctx context.Context, req hypothesis.Request) (transcript.RawHypothesis, error) {
	out := transcript.RawHypothesis{ChunkIndex: req.Chunk.Index}
	if strings.TrimSpace(req.AudioPath) == "" {
		return out, services.Wrap(services.ErrValidation, "transcribe", "openai", "No audio path", hypothesis.ErrNoAudio)
	}
	workDir := req.WorkDir
	if workDir == "" {
		workDir = os.TempDir()
	}
	if err := os.MkdirAll(workDir, 0o755); err != nil {
		return out, fmt.Errorf("openai: ensure work dir: %w", err)
	}
	wavPath := filepath.Join(workDir, fmt.Sprintf("chunk_%05d.wav", req.Chunk.Index))
	defer os.Remove(wavPath)

	extract := ffmpeg.Extract{
		Source:      req.AudioPath,
		AudioStream: req.AudioStream,
		Start:       req.Chunk.Start(),
		Duration:    req.Chunk.Duration(),
		Dest:        wavPath,
	}
	if err := s.extract(ctx, extract); err != nil {
		return out, services.Wrap(services.ErrExternalTool, "transcribe", "extract chunk", "ffmpeg could not extract chunk audio", err)
	}

	callCtx := ctx
	if s.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	resp, err := s.client.CreateTranscription(callCtx, openai.AudioRequest{
		Model:                  s.model,
		FilePath:               wavPath,
		Language:               langpkg.ToISO2(req.Language),
		Format:                 openai.AudioResponseFormatVerboseJSON,
		TimestampGranularities: []openai.TranscriptionTimestampGranularity{openai.TranscriptionTimestampGranularityWord},
	})
	if err != nil {
		if ctx.Err() != nil {
			return out, ctx.Err()
		}
		marker := services.ErrExternalTool
		if callCtx.Err() != nil {
			marker = services.ErrTimeout
		}
		return out, services.Wrap(marker, "transcribe", "openai", "Transcription request failed", err)
	}
	out.Tokens = tokensFromResponse(resp)
	return out, nil
}

// tokensFromResponse converts API words to tokens. Word entries carry no
// punctuation, so it is recovered from the transcript text when the
// normalized forms line up.
func tokensFromResponse(resp openai.AudioResponse) []transcript.Token {
	fields := strings.Fields(resp.Text)
	next := 0
	tokens := make([]transcript.Token, 0, len(resp.Words))
	for _, w := range resp.Words {
		text := strings.TrimSpace(w.Word)
		if text == "" {
			continue
		}
		key := textutil.NormalizeToken(text)
		for look := next; look < len(fields) && look < next+3; look++ {
			if key != "" && textutil.NormalizeToken(fields[look]) == key {
				text = fields[look]
				next = look + 1
				break
			}
		}
		end := w.End
		if end < w.Start {
			end = w.Start
		}
		tokens = append(tokens, transcript.Token{Text: text, Start: w.Start, End: end})
	}
	return tokens
}
