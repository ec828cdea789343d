package pipeline

import (
	"context"
	"log/slog"

	"stitch/internal/chunker"
	"stitch/internal/config"
	"stitch/internal/formats"
	"stitch/internal/logging"
	"stitch/internal/merge"
	"stitch/internal/quality"
	"stitch/internal/segmenter"
	"stitch/internal/services"
	"stitch/internal/timestamps"
	"stitch/internal/transcript"
)

// Stage names used in logs and wrapped errors.
const (
	StageProbe      = "probe"
	StagePlan       = "plan"
	StageTranscribe = "transcribe"
	StageMerge      = "merge"
	StageAdapt      = "adapt"
	StageSegment    = "segment"
	StageRender     = "render"
	StageAnalyze    = "analyze"
	StageReport     = "report"
)

// Alignment is the output of the pure stages.
type Alignment struct {
	Result transcript.AlignedResult
	Merge  merge.Result
	// Groups is the number of cue groups left after timestamp cleanup.
	Groups int
}

// Stages holds the configured pure components.
type Stages struct {
	chunker   *chunker.Chunker
	merger    *merge.Engine
	adapter   *timestamps.Adapter
	segmenter *segmenter.Segmenter
	analyzer  *quality.Analyzer
	logger    *slog.Logger
}

// NewStages builds every component from cfg. Invalid settings are reported
// as configuration errors.
func NewStages(cfg *config.Config, logger *slog.Logger) (*Stages, error) {
	if logger == nil {
		logger = logging.NewNop()
	}
	configErr := func(op string, err error) error {
		return services.Wrap(services.ErrConfiguration, "configure", op, "", err)
	}

	planner, err := chunker.New(ChunkerOptions(cfg))
	if err != nil {
		return nil, configErr("chunking", err)
	}
	strategy, err := MergeStrategy(cfg)
	if err != nil {
		return nil, configErr("merge", err)
	}
	merger, err := merge.New(strategy, logger)
	if err != nil {
		return nil, configErr("merge", err)
	}
	tsOpts, err := TimestampOptions(cfg)
	if err != nil {
		return nil, configErr("cleanup", err)
	}
	adapter, err := timestamps.New(tsOpts, logger)
	if err != nil {
		return nil, configErr("cleanup", err)
	}
	seg, err := segmenter.New(SegmenterOptions(cfg), logger)
	if err != nil {
		return nil, configErr("segmentation", err)
	}
	analyzer, err := quality.New(QualityOptions(cfg))
	if err != nil {
		return nil, configErr("quality", err)
	}
	return &Stages{
		chunker:   planner,
		merger:    merger,
		adapter:   adapter,
		segmenter: seg,
		analyzer:  analyzer,
		logger:    logger,
	}, nil
}

// Strategy returns the merge strategy in use.
func (s *Stages) Strategy() merge.Strategy {
	return s.merger.Strategy()
}

// Plan tiles the audio with the configured chunker.
func (s *Stages) Plan(durationSeconds float64, sampleRate int) ([]transcript.Chunk, error) {
	chunks, err := s.chunker.Plan(durationSeconds, sampleRate)
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, StagePlan, "plan chunks", "", err)
	}
	return chunks, nil
}

// Align merges chunk hypotheses and turns the word stream into segments.
// Cancellation is checked between stages.
func (s *Stages) Align(ctx context.Context, chunks []transcript.Chunk, hypotheses []transcript.RawHypothesis) (Alignment, error) {
	logger := logging.WithContext(ctx, s.logger)

	if err := ctx.Err(); err != nil {
		return Alignment{}, err
	}
	merged, err := s.merger.MergeAll(chunks, hypotheses)
	if err != nil {
		return Alignment{}, services.Wrap(services.ErrValidation, StageMerge, "merge hypotheses", "", err)
	}
	if len(merged.SkippedChunks) > 0 {
		logger.Info("chunks without words skipped",
			logging.String(logging.FieldEventType, "chunks_skipped"),
			logging.Int("count", len(merged.SkippedChunks)),
			logging.Any("chunks", merged.SkippedChunks),
		)
	}

	if err := ctx.Err(); err != nil {
		return Alignment{}, err
	}
	groups := s.adapter.Adapt(merged.Words)

	if err := ctx.Err(); err != nil {
		return Alignment{}, err
	}
	segments := s.segmenter.Segment(groups)
	if err := transcript.Validate(segments); err != nil {
		return Alignment{}, services.Wrap(services.ErrValidation, StageSegment, "validate segments", "", err)
	}

	words := merged.Words
	if words == nil {
		words = []transcript.Word{}
	}
	if segments == nil {
		segments = []transcript.Segment{}
	}
	var duration float64
	if len(chunks) > 0 {
		duration = chunks[len(chunks)-1].End()
	}

	logger.Debug("alignment complete",
		logging.String(logging.FieldEventType, "alignment_complete"),
		logging.String("strategy", string(s.merger.Strategy())),
		logging.Int("words", len(words)),
		logging.Int("groups", len(groups)),
		logging.Int("segments", len(segments)),
	)
	return Alignment{
		Result: transcript.AlignedResult{
			Duration: duration,
			Words:    words,
			Segments: segments,
		},
		Merge:  merged,
		Groups: len(groups),
	}, nil
}

// Analyze grades the segments as they appear in plain SRT. Highlighting is
// left off so cue text lines are measured without markup.
func (s *Stages) Analyze(result transcript.AlignedResult, maxLineChars int) (quality.Report, string, error) {
	spec, err := formats.Lookup("srt")
	if err != nil {
		return quality.Report{}, "", err
	}
	rendered, err := spec.Render(result, formats.RenderOptions{MaxLineChars: maxLineChars})
	if err != nil {
		return quality.Report{}, "", services.Wrap(services.ErrValidation, StageAnalyze, "render srt", "", err)
	}
	return s.analyzer.AnalyzeSegments(result.Segments, string(rendered)), string(rendered), nil
}
