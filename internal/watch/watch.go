// Package watch processes audio files dropped into a directory.
//
// A file is handed to the handler once it has been quiet (no create or write
// events) for the settle period. At most MaxConcurrent handlers run at once;
// a path already being handled is not queued twice.
package watch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"stitch/internal/logging"
	"stitch/internal/services"
)

// Handler processes one settled file.
type Handler func(ctx context.Context, path string) error

// Options configures a Watcher.
type Options struct {
	Dir            string
	Extensions     []string
	MaxConcurrent  int
	Settle         time.Duration
	ProcessOnStart bool
	// Skip, when set, filters files that need no processing, for example
	// because their outputs already exist.
	Skip func(path string) bool
}

// Watcher dispatches settled files in Dir to a Handler.
type Watcher struct {
	opts    Options
	exts    map[string]struct{}
	handler Handler
	logger  *slog.Logger

	ready     chan string
	done      chan struct{}
	semaphore chan struct{}
	wg        sync.WaitGroup

	mu       sync.Mutex
	pending  map[string]*time.Timer
	inflight map[string]struct{}
}

// New validates opts and builds a Watcher. Run starts it.
func New(opts Options, handler Handler, logger *slog.Logger) (*Watcher, error) {
	if handler == nil {
		return nil, errors.New("watch handler is nil")
	}
	opts.Dir = strings.TrimSpace(opts.Dir)
	if opts.Dir == "" {
		return nil, errors.New("watch directory is empty")
	}
	info, err := os.Stat(opts.Dir)
	if err != nil {
		return nil, fmt.Errorf("stat watch directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("watch path %q is not a directory", opts.Dir)
	}
	if opts.MaxConcurrent <= 0 {
		opts.MaxConcurrent = 1
	}
	if opts.Settle < 0 {
		opts.Settle = 0
	}
	exts := make(map[string]struct{}, len(opts.Extensions))
	for _, ext := range opts.Extensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		exts[ext] = struct{}{}
	}
	if len(exts) == 0 {
		return nil, errors.New("watch extensions are empty")
	}
	return &Watcher{
		opts:      opts,
		exts:      exts,
		handler:   handler,
		logger:    logging.NewComponentLogger(logger, "watch"),
		ready:     make(chan string, 64),
		done:      make(chan struct{}),
		semaphore: make(chan struct{}, opts.MaxConcurrent),
		pending:   make(map[string]*time.Timer),
		inflight:  make(map[string]struct{}),
	}, nil
}

// Run watches until ctx is cancelled, then waits for running handlers and
// returns ctx.Err().
func (w *Watcher) Run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fsw.Close()
	if err := fsw.Add(w.opts.Dir); err != nil {
		return fmt.Errorf("add watch path: %w", err)
	}

	w.logger.Info("watching directory",
		logging.String("dir", w.opts.Dir),
		logging.Int("max_concurrent", w.opts.MaxConcurrent),
		logging.Duration("settle", w.opts.Settle),
		logging.String(logging.FieldEventType, "watch_start"),
	)

	if w.opts.ProcessOnStart {
		if err := w.scanExisting(); err != nil {
			w.logger.Warn("initial scan failed", logging.Error(err))
		}
	}

	defer close(w.done)
	defer w.stopTimers()
	for {
		select {
		case <-ctx.Done():
			w.logger.Info("waiting for running jobs", logging.String(logging.FieldEventType, "watch_draining"))
			w.wg.Wait()
			w.logger.Info("watcher stopped", logging.String(logging.FieldEventType, "watch_stop"))
			return ctx.Err()

		case event, ok := <-fsw.Events:
			if !ok {
				return errors.New("watcher events channel closed")
			}
			if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			if !w.Matches(event.Name) {
				w.logger.Debug("ignoring file", logging.String("path", event.Name))
				continue
			}
			w.schedule(event.Name)

		case path := <-w.ready:
			w.dispatch(ctx, path)

		case err, ok := <-fsw.Errors:
			if !ok {
				return errors.New("watcher errors channel closed")
			}
			w.logger.Warn("watcher error", logging.Error(err))
		}
	}
}

// Matches reports whether path has one of the watched extensions.
func (w *Watcher) Matches(path string) bool {
	_, ok := w.exts[strings.ToLower(filepath.Ext(path))]
	return ok
}

func (w *Watcher) scanExisting() error {
	entries, err := os.ReadDir(w.opts.Dir)
	if err != nil {
		return err
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.Type().IsRegular() {
			names = append(names, entry.Name())
		}
	}
	slices.Sort(names)
	for _, name := range names {
		path := filepath.Join(w.opts.Dir, name)
		if w.Matches(path) {
			w.schedule(path)
		}
	}
	return nil
}

// schedule (re)starts the settle timer for path.
func (w *Watcher) schedule(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if timer, ok := w.pending[path]; ok {
		timer.Reset(w.opts.Settle)
		return
	}
	w.pending[path] = time.AfterFunc(w.opts.Settle, func() {
		w.mu.Lock()
		delete(w.pending, path)
		w.mu.Unlock()
		select {
		case w.ready <- path:
		case <-w.done:
		}
	})
}

func (w *Watcher) stopTimers() {
	w.mu.Lock()
	defer w.mu.Unlock()
	for path, timer := range w.pending {
		timer.Stop()
		delete(w.pending, path)
	}
}

func (w *Watcher) dispatch(ctx context.Context, path string) {
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return
	}
	if w.opts.Skip != nil && w.opts.Skip(path) {
		w.logger.Debug("skipping file", logging.String("path", path))
		return
	}

	w.mu.Lock()
	if _, busy := w.inflight[path]; busy {
		w.mu.Unlock()
		return
	}
	w.inflight[path] = struct{}{}
	w.mu.Unlock()

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		defer func() {
			w.mu.Lock()
			delete(w.inflight, path)
			w.mu.Unlock()
		}()

		select {
		case w.semaphore <- struct{}{}:
		case <-ctx.Done():
			return
		}
		defer func() { <-w.semaphore }()

		w.logger.Info("processing file",
			logging.String(logging.FieldSourceFile, path),
			logging.String(logging.FieldEventType, "watch_dispatch"),
		)
		if err := w.handler(ctx, path); err != nil {
			logging.ErrorWithContext(w.logger, "processing failed", "watch_job_failed",
				logging.String(logging.FieldSourceFile, path),
				logging.String(logging.FieldErrorHint, "check the file and rerun stitch transcribe on it"),
				logging.String("error_kind", services.Kind(err)),
				logging.Error(err),
			)
		}
	}()
}
