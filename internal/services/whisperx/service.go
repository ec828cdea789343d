package whisperx

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"stitch/internal/hypothesis"
	langpkg "stitch/internal/language"
	"stitch/internal/media/ffmpeg"
	"stitch/internal/services"
	"stitch/internal/transcript"
)

// Service transcribes chunks with WhisperX.
type Service struct {
	cfg           Config
	ffmpegBinary  string
	uvxBinary     string
	commandRunner func(ctx context.Context, name string, args ...string) error
}

// NewService creates a WhisperX service with the given configuration.
func NewService(cfg Config, ffmpegBinary, uvxBinary string) *Service {
	if ffmpegBinary == "" {
		ffmpegBinary = "ffmpeg"
	}
	if uvxBinary == "" {
		uvxBinary = "uvx"
	}
	return &Service{
		cfg:          cfg,
		ffmpegBinary: ffmpegBinary,
		uvxBinary:    uvxBinary,
	}
}

// WithCommandRunner sets a custom command runner (for testing).
func (s *Service) WithCommandRunner(runner func(ctx context.Context, name string, args ...string) error) {
	s.commandRunner = runner
}

// Name implements hypothesis.Source.
func (s *Service) Name() string { return "whisperx" }

// Model returns the configured model name.
func (s *Service) Model() string {
	return s.cfg.withDefaults().Model
}

// Transcribe extracts the chunk audio, runs WhisperX on it, and returns the
// recovered word tokens in chunk-local seconds.
func (s *Service) Transcribe(ctx context.Context, req hypothesis.Request) (transcript.RawHypothesis, error) {
	out := transcript.RawHypothesis{ChunkIndex: req.Chunk.Index}
	if strings.TrimSpace(req.AudioPath) == "" {
		return out, services.Wrap(services.ErrValidation, "transcribe", "whisperx", "No audio path", hypothesis.ErrNoAudio)
	}
	workDir := req.WorkDir
	if workDir == "" {
		workDir = os.TempDir()
	}
	chunkDir := filepath.Join(workDir, fmt.Sprintf("chunk_%05d", req.Chunk.Index))
	if err := os.MkdirAll(chunkDir, 0o755); err != nil {
		return out, fmt.Errorf("whisperx: ensure chunk dir: %w", err)
	}

	wavPath := filepath.Join(chunkDir, "chunk.wav")
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

	if err := s.run(ctx, s.uvxBinary, s.buildArgs(wavPath, chunkDir, req.Language)...); err != nil {
		if ctx.Err() != nil {
			return out, ctx.Err()
		}
		return out, services.Wrap(services.ErrExternalTool, "transcribe", "whisperx", "WhisperX failed", err)
	}

	segments, err := LoadSegments(filepath.Join(chunkDir, "chunk.json"))
	if err != nil {
		return out, services.Wrap(services.ErrExternalTool, "transcribe", "load whisperx output", "WhisperX output unreadable", err)
	}
	out.Tokens = Tokens(segments)
	return out, nil
}

func (s *Service) extract(ctx context.Context, e ffmpeg.Extract) error {
	if s.commandRunner != nil {
		args, err := e.Args()
		if err != nil {
			return err
		}
		return s.commandRunner(ctx, s.ffmpegBinary, args...)
	}
	return e.Run(ctx, s.ffmpegBinary)
}

// run executes a command, using the custom runner if set.
func (s *Service) run(ctx context.Context, name string, args ...string) error {
	if s.commandRunner != nil {
		return s.commandRunner(ctx, name, args...)
	}
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec

	// Torch 2.6 changed torch.load default to weights_only=true, breaking WhisperX/pyannote.
	if os.Getenv("TORCH_FORCE_NO_WEIGHTS_ONLY_LOAD") == "" {
		cmd.Env = append(os.Environ(), "TORCH_FORCE_NO_WEIGHTS_ONLY_LOAD=1")
	}

	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%s: %w: %s", name, err, strings.TrimSpace(string(output)))
	}
	return nil
}

// buildArgs constructs the uvx command arguments for WhisperX.
func (s *Service) buildArgs(source, outputDir, language string) []string {
	cfg := s.cfg.withDefaults()
	args := make([]string, 0, 32)
	args = append(args, cfg.indexArgs()...)
	args = append(args, "whisperx", source, "--output_dir", outputDir)
	args = append(args, cfg.modelArgs()...)
	args = append(args, decodeArgs...)
	args = append(args, cfg.vadArgs()...)
	if lang := langpkg.ToISO2(language); lang != "" {
		args = append(args, "--language", lang)
	}
	return append(args, cfg.deviceArgs()...)
}
