package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"stitch/internal/chunker"
	"stitch/internal/config"
	"stitch/internal/fileutil"
	"stitch/internal/formats"
	"stitch/internal/hypcache"
	"stitch/internal/hypothesis"
	"stitch/internal/logging"
	"stitch/internal/media/audio"
	"stitch/internal/media/ffprobe"
	"stitch/internal/quality"
	"stitch/internal/reports"
	"stitch/internal/services"
	"stitch/internal/textutil"
	"stitch/internal/transcript"
)

// ReportSink persists finished reports.
type ReportSink interface {
	Insert(ctx context.Context, rec *reports.Record) error
}

// ProbeFunc inspects an audio file.
type ProbeFunc func(ctx context.Context, path string) (ffprobe.Result, error)

// Request describes one audio file to process.
type Request struct {
	AudioPath string
	// OutputDir defaults to output.dir, then to the audio file's directory.
	OutputDir string
	// BaseName defaults to the audio file name without its extension.
	BaseName string
}

// Output is one written file.
type Output struct {
	Format string `json:"format"`
	Path   string `json:"path"`
}

// Result summarizes a finished run.
type Result struct {
	RunID      string
	SourcePath string
	Stream     audio.Selection
	Chunks     []transcript.Chunk
	Alignment  Alignment
	Report     quality.Report
	Passed     bool
	Outputs    []Output
	ReportID   int64
	Elapsed    time.Duration
}

// Runner executes full transcription runs.
type Runner struct {
	cfg     *config.Config
	logger  *slog.Logger
	source  hypothesis.Source
	stages  *Stages
	formats []formats.Spec
	render  formats.RenderOptions
	cache   *hypcache.Cache
	reports ReportSink
	probe   ProbeFunc
	newID   func() string
}

// Option customizes a Runner.
type Option func(*Runner)

// WithCache enables the per-chunk hypothesis cache.
func WithCache(cache *hypcache.Cache) Option {
	return func(r *Runner) { r.cache = cache }
}

// WithReportSink persists every finished report.
func WithReportSink(sink ReportSink) Option {
	return func(r *Runner) { r.reports = sink }
}

// WithProbe replaces ffprobe, mainly for tests.
func WithProbe(fn ProbeFunc) Option {
	return func(r *Runner) { r.probe = fn }
}

// WithRunIDs replaces the run identifier generator.
func WithRunIDs(fn func() string) Option {
	return func(r *Runner) { r.newID = fn }
}

// New builds a Runner. Configuration problems are reported before any audio
// is touched.
func New(cfg *config.Config, source hypothesis.Source, logger *slog.Logger, opts ...Option) (*Runner, error) {
	if cfg == nil {
		return nil, services.Wrap(services.ErrConfiguration, "configure", "runner", "config is nil", nil)
	}
	if source == nil {
		return nil, services.Wrap(services.ErrConfiguration, "configure", "runner", "hypothesis source is nil", nil)
	}
	logger = logging.NewComponentLogger(logger, "pipeline")
	stages, err := NewStages(cfg, logger)
	if err != nil {
		return nil, err
	}
	specs, err := OutputFormats(cfg)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "configure", "output", "", err)
	}
	ffprobeBinary := cfg.FFprobeBinary()
	r := &Runner{
		cfg:     cfg,
		logger:  logger,
		source:  source,
		stages:  stages,
		formats: specs,
		render:  RenderOptions(cfg),
		probe: func(ctx context.Context, path string) (ffprobe.Result, error) {
			return ffprobe.Inspect(ctx, ffprobeBinary, path)
		},
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Stages exposes the pure stages.
func (r *Runner) Stages() *Stages {
	return r.stages
}

// Align runs the pure stages over already transcribed chunks.
func (r *Runner) Align(ctx context.Context, chunks []transcript.Chunk, hypotheses []transcript.RawHypothesis) (Alignment, error) {
	return r.stages.Align(ctx, chunks, hypotheses)
}

// Run processes one audio file end to end.
func (r *Runner) Run(ctx context.Context, req Request) (Result, error) {
	started := time.Now()
	path := strings.TrimSpace(req.AudioPath)
	if path == "" {
		return Result{}, services.Wrap(services.ErrValidation, StageProbe, "run", "audio path is empty", hypothesis.ErrNoAudio)
	}
	runID := r.newID()
	ctx = services.WithRunID(ctx, runID)
	ctx = services.WithSourceFile(ctx, path)
	logger := logging.WithContext(ctx, r.logger)
	logger.Info("run started",
		logging.String(logging.FieldEventType, "run_start"),
		logging.String("source", r.source.Name()),
		logging.String("model", r.source.Model()),
		logging.String("strategy", string(r.stages.Strategy())),
	)

	probeCtx := services.WithStage(ctx, StageProbe)
	probed, err := r.probe(probeCtx, path)
	if err != nil {
		return Result{}, services.Wrap(services.ErrExternalTool, StageProbe, "ffprobe", path, err)
	}
	selection := audio.Select(probed.Streams, r.cfg.Transcription.Language)
	if !selection.Found() {
		return Result{}, services.Wrap(services.ErrValidation, StageProbe, "select audio", path, hypothesis.ErrNoAudio)
	}
	if !selection.Matched {
		logging.WarnWithContext(logging.WithContext(probeCtx, r.logger), "no audio stream tagged with the transcription language", "audio_language_unmatched",
			logging.String("language", r.cfg.Transcription.Language),
			logging.String("stream", selection.Label()),
			logging.String(logging.FieldErrorHint, "set transcription.language to the spoken language"),
			logging.String(logging.FieldImpact, "transcribing the best remaining stream"),
		)
	}
	duration := probed.DurationSeconds()
	if duration <= 0 {
		return Result{}, services.Wrap(services.ErrValidation, StageProbe, "duration", "ffprobe reported no usable duration for "+path, nil)
	}
	logger.Debug("audio probed",
		logging.String(logging.FieldEventType, "probe_complete"),
		logging.Seconds("duration", duration),
		logging.String("stream", selection.Label()),
	)

	chunks, err := r.stages.Plan(duration, r.cfg.Chunking.SampleRate)
	if err != nil {
		return Result{}, err
	}

	workDir := filepath.Join(r.cfg.Paths.WorkDir, runID)
	defer func() {
		if err := os.RemoveAll(workDir); err != nil {
			logger.Debug("work dir cleanup failed", logging.Error(err))
		}
	}()
	hyps, err := r.transcribe(ctx, path, selection.Ordinal, workDir, chunks)
	if err != nil {
		return Result{}, err
	}

	res, err := r.finish(ctx, finishInput{
		runID:      runID,
		sourcePath: path,
		req:        req,
		chunks:     chunks,
		hypotheses: hyps,
		started:    started,
	})
	res.Stream = selection
	return res, err
}

// Replay runs a recorded hypothesis file through the pure stages and writes
// the outputs, without audio or a recognizer. Chunking recorded in the file
// overrides the configured chunking.
func (r *Runner) Replay(ctx context.Context, file *hypothesis.File, req Request) (Result, error) {
	started := time.Now()
	if file == nil {
		return Result{}, services.Wrap(services.ErrValidation, StagePlan, "replay", "hypothesis file is nil", nil)
	}
	if textutil.OutputStem(req.BaseName) == "" && strings.TrimSpace(req.AudioPath) == "" {
		return Result{}, services.Wrap(services.ErrValidation, StagePlan, "replay", "an output base name is required", nil)
	}
	runID := r.newID()
	ctx = services.WithRunID(ctx, runID)
	if req.AudioPath != "" {
		ctx = services.WithSourceFile(ctx, req.AudioPath)
	}

	opts := ChunkerOptions(r.cfg)
	if file.ChunkSeconds > 0 {
		opts = chunker.Options{ChunkSeconds: file.ChunkSeconds, OverlapSeconds: file.OverlapSeconds}
	}
	planner, err := chunker.New(opts)
	if err != nil {
		return Result{}, services.Wrap(services.ErrValidation, StagePlan, "chunking", "hypothesis file chunking is invalid", err)
	}
	chunks, err := planner.Plan(file.Duration, file.SampleRate)
	if err != nil {
		return Result{}, services.Wrap(services.ErrValidation, StagePlan, "plan chunks", "", err)
	}
	byIndex := file.Hypotheses()
	hyps := make([]transcript.RawHypothesis, 0, len(byIndex))
	for _, chunk := range chunks {
		if h, ok := byIndex[chunk.Index]; ok {
			hyps = append(hyps, h)
		}
	}
	if len(hyps) != len(byIndex) {
		return Result{}, services.Wrap(services.ErrValidation, StagePlan, "match chunks",
			fmt.Sprintf("hypothesis file has %d chunks but the recording plans %d", len(byIndex), len(chunks)), nil)
	}

	return r.finish(ctx, finishInput{
		runID:      runID,
		sourcePath: req.AudioPath,
		req:        req,
		chunks:     chunks,
		hypotheses: hyps,
		language:   file.Language,
		started:    started,
	})
}

// transcribe fans chunks out to the source with at most
// transcription.concurrency calls in flight. Results are slotted by chunk
// position. The first failure cancels the remaining chunks.
func (r *Runner) transcribe(ctx context.Context, audioPath string, stream int, workDir string, chunks []transcript.Chunk) ([]transcript.RawHypothesis, error) {
	ctx = services.WithStage(ctx, StageTranscribe)
	logger := logging.WithContext(ctx, r.logger)

	limit := r.cfg.Transcription.Concurrency
	if limit <= 0 {
		limit = 1
	}
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	results := make([]transcript.RawHypothesis, len(chunks))
	errs := make([]error, len(chunks))
	sem := make(chan struct{}, limit)
	var wg sync.WaitGroup
	var hits, misses int
	var statsMu sync.Mutex

dispatch:
	for i, chunk := range chunks {
		select {
		case sem <- struct{}{}:
		case <-runCtx.Done():
			break dispatch
		}
		if runCtx.Err() != nil {
			<-sem
			break dispatch
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer func() { <-sem }()
			h, cached, err := r.transcribeChunk(runCtx, audioPath, stream, workDir, chunk)
			if err != nil {
				errs[i] = err
				cancel()
				return
			}
			results[i] = h
			statsMu.Lock()
			if cached {
				hits++
			} else {
				misses++
			}
			statsMu.Unlock()
		}()
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := firstError(errs); err != nil {
		return nil, err
	}
	logger.Info("transcription complete",
		logging.String(logging.FieldEventType, "transcription_complete"),
		logging.Int("chunks", len(chunks)),
		logging.Int("cache_hits", hits),
		logging.Int("recognized", misses),
		logging.Int("concurrency", limit),
	)
	return results, nil
}

// firstError prefers a real failure over the cancellations it caused.
func firstError(errs []error) error {
	var fallback error
	for _, err := range errs {
		if err == nil {
			continue
		}
		if errors.Is(err, context.Canceled) {
			if fallback == nil {
				fallback = err
			}
			continue
		}
		return err
	}
	return fallback
}

func (r *Runner) transcribeChunk(ctx context.Context, audioPath string, stream int, workDir string, chunk transcript.Chunk) (transcript.RawHypothesis, bool, error) {
	if err := ctx.Err(); err != nil {
		return transcript.RawHypothesis{}, false, err
	}
	ctx = services.WithChunkIndex(ctx, chunk.Index)
	logger := logging.WithContext(ctx, r.logger)
	lang := r.cfg.Transcription.Language

	var key hypcache.Key
	useCache := r.cache.Enabled()
	if useCache {
		k, err := hypcache.KeyFor(r.source.Name(), r.source.Model(), lang, audioPath, stream, chunk)
		if err != nil {
			logger.Debug("hypothesis cache key unavailable", logging.Error(err))
			useCache = false
		} else {
			key = k
			if h, ok := r.cache.Lookup(key); ok {
				h.ChunkIndex = chunk.Index
				logger.Debug("hypothesis cache hit", logging.String(logging.FieldEventType, "cache_hit"))
				return h, true, nil
			}
		}
	}

	callCtx := ctx
	if secs := r.cfg.Transcription.TimeoutSeconds; secs > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, time.Duration(secs)*time.Second)
		defer cancel()
	}
	started := time.Now()
	h, err := r.source.Transcribe(callCtx, hypothesis.Request{
		AudioPath:   audioPath,
		AudioStream: stream,
		Chunk:       chunk,
		Language:    lang,
		WorkDir:     workDir,
	})
	if err != nil {
		if ctx.Err() != nil {
			return transcript.RawHypothesis{}, false, ctx.Err()
		}
		if errors.Is(callCtx.Err(), context.DeadlineExceeded) {
			return transcript.RawHypothesis{}, false, services.Wrap(services.ErrTimeout, StageTranscribe, r.source.Name(),
				fmt.Sprintf("chunk %d exceeded %ds", chunk.Index, r.cfg.Transcription.TimeoutSeconds), err)
		}
		return transcript.RawHypothesis{}, false, err
	}
	h.ChunkIndex = chunk.Index
	logger.Debug("chunk transcribed",
		logging.String(logging.FieldEventType, "chunk_transcribed"),
		logging.Int("tokens", len(h.Tokens)),
		logging.Duration("elapsed", time.Since(started)),
	)

	if useCache {
		if err := r.cache.Store(key, h); err != nil {
			logging.WarnWithContext(logger, "hypothesis cache write failed", "cache_write_failed",
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check permissions on paths.cache_dir"),
				logging.String(logging.FieldImpact, "the chunk will be transcribed again next run"),
			)
		}
	}
	return h, false, nil
}

type finishInput struct {
	runID      string
	sourcePath string
	req        Request
	chunks     []transcript.Chunk
	hypotheses []transcript.RawHypothesis
	language   string
	started    time.Time
}

// finish aligns, writes outputs, grades and records a run.
func (r *Runner) finish(ctx context.Context, in finishInput) (Result, error) {
	logger := logging.WithContext(ctx, r.logger)
	res := Result{RunID: in.runID, SourcePath: in.sourcePath, Chunks: in.chunks}

	alignment, err := r.stages.Align(ctx, in.chunks, in.hypotheses)
	if err != nil {
		return res, err
	}
	alignment.Result.Language = in.language
	if alignment.Result.Language == "" {
		alignment.Result.Language = r.cfg.Transcription.Language
	}
	res.Alignment = alignment
	if len(alignment.Result.Segments) == 0 {
		logging.WarnWithContext(logger, "no speech recognized", "empty_transcript",
			logging.String(logging.FieldErrorHint, "check the audio stream and transcription.language"),
			logging.String(logging.FieldImpact, "output files contain no cues"),
		)
	}

	if err := ctx.Err(); err != nil {
		return res, err
	}
	outputs, err := r.writeOutputs(services.WithStage(ctx, StageRender), in.req, alignment.Result)
	if err != nil {
		return res, err
	}
	res.Outputs = outputs

	report, _, err := r.stages.Analyze(alignment.Result, r.render.MaxLineChars)
	if err != nil {
		return res, err
	}
	res.Report = report
	res.Passed = report.Passed(r.cfg.Quality.MinScore)
	res.Elapsed = time.Since(in.started)

	summary := append([]any{
		logging.FieldEventType, "run_complete",
		"passed", res.Passed,
		"outputs", len(outputs),
		"elapsed", res.Elapsed,
	}, report.LogAttrs()...)
	if res.Passed {
		logger.Info("run complete", summary...)
	} else {
		logging.WarnWithContext(logger, "run complete below quality threshold", "quality_below_threshold",
			logging.Float64("score", report.Score),
			logging.Float64("min_score", r.cfg.Quality.MinScore),
			logging.String(logging.FieldErrorHint, "inspect the report with stitch reports show"),
			logging.String(logging.FieldImpact, "subtitles were written but may read poorly"),
		)
		logger.Debug("quality details", summary...)
	}

	if r.reports != nil {
		rec := &reports.Record{
			RunID:         in.runID,
			SourcePath:    in.sourcePath,
			Source:        r.source.Name(),
			Model:         r.source.Model(),
			Language:      alignment.Result.Language,
			MergeStrategy: string(r.stages.Strategy()),
			Duration:      alignment.Result.Duration,
			SegmentCount:  len(alignment.Result.Segments),
			Score:         report.Score,
			Passed:        res.Passed,
			Outputs:       outputPaths(outputs),
			Report:        report,
		}
		if err := r.reports.Insert(services.WithStage(ctx, StageReport), rec); err != nil {
			logging.WarnWithContext(logger, "report not saved", "report_save_failed",
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check paths.report_db"),
				logging.String(logging.FieldImpact, "the run is missing from stitch reports list"),
			)
		} else {
			res.ReportID = rec.ID
		}
	}
	return res, nil
}

func (r *Runner) writeOutputs(ctx context.Context, req Request, result transcript.AlignedResult) ([]Output, error) {
	logger := logging.WithContext(ctx, r.logger)
	dir, base := r.outputTarget(req)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, services.Wrap(services.ErrConfiguration, StageRender, "create output dir", dir, err)
	}
	outputs := make([]Output, 0, len(r.formats))
	for _, spec := range r.formats {
		data, err := spec.Render(result, r.render)
		if err != nil {
			return outputs, services.Wrap(services.ErrValidation, StageRender, spec.Name, "", err)
		}
		path := filepath.Join(dir, spec.FileName(base))
		if err := fileutil.WriteFileAtomic(path, data, 0o644); err != nil {
			return outputs, services.Wrap(services.ErrTransient, StageRender, "write", path, err)
		}
		logger.Debug("output written",
			logging.String(logging.FieldEventType, "output_written"),
			logging.String("format", spec.Name),
			logging.String("path", path),
		)
		outputs = append(outputs, Output{Format: spec.Name, Path: path})
	}
	return outputs, nil
}

func (r *Runner) outputTarget(req Request) (dir, base string) {
	dir = strings.TrimSpace(req.OutputDir)
	if dir == "" {
		dir = r.cfg.Output.Dir
	}
	if dir == "" && req.AudioPath != "" {
		dir = filepath.Dir(req.AudioPath)
	}
	if dir == "" {
		dir = "."
	}
	base = textutil.OutputStem(req.BaseName)
	if base == "" {
		name := filepath.Base(req.AudioPath)
		base = strings.TrimSuffix(name, filepath.Ext(name))
	}
	return dir, base
}

// OutputsExist reports whether every configured output for audioPath is
// already on disk.
func (r *Runner) OutputsExist(audioPath string) bool {
	dir, base := r.outputTarget(Request{AudioPath: audioPath})
	for _, spec := range r.formats {
		if _, err := os.Stat(filepath.Join(dir, spec.FileName(base))); err != nil {
			return false
		}
	}
	return true
}

func outputPaths(outputs []Output) []string {
	paths := make([]string, len(outputs))
	for i, out := range outputs {
		paths[i] = out.Path
	}
	return paths
}
