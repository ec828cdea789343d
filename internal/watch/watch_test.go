package watch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"stitch/internal/logging"
)

type recorder struct {
	mu    sync.Mutex
	paths []string
	calls chan string
}

func newRecorder() *recorder {
	return &recorder{calls: make(chan string, 16)}
}

func (r *recorder) handle(_ context.Context, path string) error {
	r.mu.Lock()
	r.paths = append(r.paths, path)
	r.mu.Unlock()
	r.calls <- path
	return nil
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.paths)
}

func startWatcher(t *testing.T, opts Options, handler Handler) (cancel func() error) {
	t.Helper()
	w, err := New(opts, handler, logging.NewNop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ctx, stop := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()
	// Give fsnotify time to register the directory.
	time.Sleep(50 * time.Millisecond)
	return func() error {
		stop()
		select {
		case err := <-done:
			return err
		case <-time.After(5 * time.Second):
			t.Fatal("watcher did not stop")
			return nil
		}
	}
}

func waitCall(t *testing.T, r *recorder) string {
	t.Helper()
	select {
	case path := <-r.calls:
		return path
	case <-time.After(5 * time.Second):
		t.Fatal("handler was not called")
		return ""
	}
}

func TestNewValidatesOptions(t *testing.T) {
	dir := t.TempDir()
	noop := func(context.Context, string) error { return nil }
	if _, err := New(Options{Dir: dir, Extensions: []string{"wav"}}, nil, nil); err == nil {
		t.Fatal("expected error for nil handler")
	}
	if _, err := New(Options{Dir: filepath.Join(dir, "missing"), Extensions: []string{"wav"}}, noop, nil); err == nil {
		t.Fatal("expected error for missing directory")
	}
	if _, err := New(Options{Dir: dir}, noop, nil); err == nil {
		t.Fatal("expected error for empty extensions")
	}
}

func TestMatchesNormalizesExtensions(t *testing.T) {
	w, err := New(Options{Dir: t.TempDir(), Extensions: []string{"WAV", ".mp3", " "}}, func(context.Context, string) error { return nil }, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	for path, want := range map[string]bool{"a.wav": true, "b.MP3": true, "c.txt": false, "noext": false} {
		if got := w.Matches(path); got != want {
			t.Fatalf("Matches(%q) = %v, want %v", path, got, want)
		}
	}
}

func TestDispatchesSettledFile(t *testing.T) {
	dir := t.TempDir()
	rec := newRecorder()
	stop := startWatcher(t, Options{Dir: dir, Extensions: []string{".wav"}, Settle: 50 * time.Millisecond}, rec.handle)

	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	target := filepath.Join(dir, "talk.wav")
	if err := os.WriteFile(target, []byte("RIFF"), 0o644); err != nil {
		t.Fatal(err)
	}

	if got := waitCall(t, rec); got != target {
		t.Fatalf("expected %s, got %s", target, got)
	}
	time.Sleep(150 * time.Millisecond)
	if err := stop(); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if rec.count() != 1 {
		t.Fatalf("expected exactly one call, got %d", rec.count())
	}
}

func TestProcessOnStartAndSkip(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.wav", "b.wav"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("RIFF"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	rec := newRecorder()
	skip := func(path string) bool { return filepath.Base(path) == "b.wav" }
	stop := startWatcher(t, Options{
		Dir:            dir,
		Extensions:     []string{"wav"},
		Settle:         10 * time.Millisecond,
		ProcessOnStart: true,
		Skip:           skip,
	}, rec.handle)

	if got := waitCall(t, rec); filepath.Base(got) != "a.wav" {
		t.Fatalf("expected a.wav, got %s", got)
	}
	time.Sleep(100 * time.Millisecond)
	_ = stop()
	if rec.count() != 1 {
		t.Fatalf("expected skipped file to be ignored, got %d calls", rec.count())
	}
}

func TestConcurrencyIsBounded(t *testing.T) {
	dir := t.TempDir()
	var (
		mu      sync.Mutex
		active  int
		peak    int
		handled = make(chan struct{}, 8)
	)
	handler := func(ctx context.Context, _ string) error {
		mu.Lock()
		active++
		if active > peak {
			peak = active
		}
		mu.Unlock()
		time.Sleep(30 * time.Millisecond)
		mu.Lock()
		active--
		mu.Unlock()
		handled <- struct{}{}
		return nil
	}
	stop := startWatcher(t, Options{Dir: dir, Extensions: []string{"wav"}, MaxConcurrent: 2, Settle: 10 * time.Millisecond}, handler)

	for _, name := range []string{"1.wav", "2.wav", "3.wav", "4.wav"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("RIFF"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	for range 4 {
		select {
		case <-handled:
		case <-time.After(5 * time.Second):
			t.Fatal("not all files handled")
		}
	}
	_ = stop()
	if peak > 2 {
		t.Fatalf("expected at most 2 concurrent handlers, saw %d", peak)
	}
}
