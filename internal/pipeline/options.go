package pipeline

import (
	"fmt"

	"stitch/internal/chunker"
	"stitch/internal/config"
	"stitch/internal/formats"
	"stitch/internal/merge"
	"stitch/internal/quality"
	"stitch/internal/segmenter"
	"stitch/internal/timestamps"
)

// ChunkerOptions returns the chunk planning settings.
func ChunkerOptions(cfg *config.Config) chunker.Options {
	return chunker.Options{
		ChunkSeconds:   cfg.Chunking.ChunkSeconds,
		OverlapSeconds: cfg.Chunking.OverlapSeconds,
	}
}

// MergeStrategy resolves the configured merge strategy.
func MergeStrategy(cfg *config.Config) (merge.Strategy, error) {
	return merge.ParseStrategy(cfg.Merge.Strategy)
}

// TimestampOptions returns the grouping and cleanup settings.
func TimestampOptions(cfg *config.Config) (timestamps.Options, error) {
	granularity, err := timestamps.ParseGranularity(cfg.Cleanup.Granularity)
	if err != nil {
		return timestamps.Options{}, err
	}
	return timestamps.Options{
		Granularity:         granularity,
		GroupGapSeconds:     cfg.Cleanup.GroupGapSeconds,
		ParagraphGapSeconds: cfg.Cleanup.ParagraphGapSeconds,
		OrphanGapSeconds:    cfg.Cleanup.OrphanGapSeconds,
		MinGroupSeconds:     cfg.Cleanup.MinGroupSeconds,
		ContinuationWords:   append([]string(nil), cfg.Cleanup.ContinuationWords...),
	}, nil
}

// SegmenterOptions returns the readability limits.
func SegmenterOptions(cfg *config.Config) segmenter.Options {
	return segmenter.Options{
		MaxLineChars:       cfg.Segmentation.MaxLineChars,
		MaxLines:           cfg.Segmentation.MaxLines,
		MinDurationSeconds: cfg.Segmentation.MinDurationSeconds,
		MaxDurationSeconds: cfg.Segmentation.MaxDurationSeconds,
		MinCPS:             cfg.Segmentation.MinCPS,
		MaxCPS:             cfg.Segmentation.MaxCPS,
		ClauseWords:        append([]string(nil), cfg.Segmentation.ClauseWords...),
	}
}

// QualityOptions returns the scoring limits.
func QualityOptions(cfg *config.Config) quality.Options {
	return quality.Options{
		LineLengthLimit:    cfg.Quality.LineLengthLimit,
		MinCPS:             cfg.Quality.MinCPS,
		MaxCPS:             cfg.Quality.MaxCPS,
		MinDurationSeconds: cfg.Quality.MinSegmentDurationSeconds,
		MaxDurationSeconds: cfg.Quality.MaxSegmentDurationSeconds,
	}
}

// RenderOptions returns the layout used when writing output files.
func RenderOptions(cfg *config.Config) formats.RenderOptions {
	return formats.RenderOptions{
		MaxLineChars:   cfg.Segmentation.MaxLineChars,
		HighlightWords: cfg.Output.HighlightWords,
	}
}

// OutputFormats resolves the configured output formats in order.
func OutputFormats(cfg *config.Config) ([]formats.Spec, error) {
	specs := make([]formats.Spec, 0, len(cfg.Output.Formats))
	for _, name := range cfg.Output.Formats {
		spec, err := formats.Lookup(name)
		if err != nil {
			return nil, fmt.Errorf("output.formats: %w", err)
		}
		specs = append(specs, spec)
	}
	if len(specs) == 0 {
		return nil, fmt.Errorf("output.formats: no formats configured")
	}
	return specs, nil
}
