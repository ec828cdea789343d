// Package hypcache stores per-chunk recognition hypotheses on disk so reruns
// with different merge or segmentation settings skip the recognizer.
//
// Entries are JSON files named by a sha256 key over everything that affects
// recognition: source, model, language, the audio file identity, and the
// chunk's sample bounds. Writes take a file lock so concurrent stitch
// processes sharing a cache directory do not interleave.
package hypcache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gofrs/flock"

	"stitch/internal/fileutil"
	"stitch/internal/logging"
	"stitch/internal/transcript"
)

const schemaVersion = 1

// Key identifies one cached hypothesis.
type Key struct {
	Source    string
	Model     string
	Language  string
	AudioPath string
	AudioSize int64
	AudioMod  time.Time
	Stream    int
	Chunk     transcript.Chunk
}

// KeyFor builds a Key from the audio file's current identity.
func KeyFor(source, model, lang, audioPath string, stream int, chunk transcript.Chunk) (Key, error) {
	info, err := os.Stat(audioPath)
	if err != nil {
		return Key{}, fmt.Errorf("stat audio: %w", err)
	}
	abs, err := filepath.Abs(audioPath)
	if err != nil {
		abs = audioPath
	}
	return Key{
		Source:    source,
		Model:     model,
		Language:  lang,
		AudioPath: abs,
		AudioSize: info.Size(),
		AudioMod:  info.ModTime(),
		Stream:    stream,
		Chunk:     chunk,
	}, nil
}

// Digest returns the hex sha256 of the key fields.
func (k Key) Digest() string {
	parts := []string{
		strconv.Itoa(schemaVersion),
		k.Source,
		k.Model,
		k.Language,
		k.AudioPath,
		strconv.FormatInt(k.AudioSize, 10),
		strconv.FormatInt(k.AudioMod.UnixNano(), 10),
		strconv.Itoa(k.Stream),
		strconv.FormatInt(k.Chunk.StartSample, 10),
		strconv.FormatInt(k.Chunk.EndSample, 10),
		strconv.Itoa(k.Chunk.SampleRate),
	}
	sum := sha256.Sum256([]byte(strings.Join(parts, "\x00")))
	return hex.EncodeToString(sum[:])
}

type entry struct {
	Version    int                      `json:"version"`
	Source     string                   `json:"source"`
	Model      string                   `json:"model"`
	CachedAt   time.Time                `json:"cached_at"`
	Hypothesis transcript.RawHypothesis `json:"hypothesis"`
}

// Cache is a directory of hypothesis entries. A Cache with an empty directory
// is disabled and every operation is a no-op.
type Cache struct {
	dir    string
	logger *slog.Logger
	// mu serializes goroutines; lock serializes processes.
	mu   sync.Mutex
	lock *flock.Flock
}

// New returns a cache rooted at dir.
func New(dir string, logger *slog.Logger) *Cache {
	logger = logging.NewComponentLogger(logger, "hypcache")
	c := &Cache{dir: strings.TrimSpace(dir), logger: logger}
	if c.dir != "" {
		c.lock = flock.New(filepath.Join(c.dir, ".lock"))
	}
	return c
}

// Enabled reports whether the cache has a directory.
func (c *Cache) Enabled() bool {
	return c != nil && c.dir != ""
}

func (c *Cache) path(k Key) string {
	digest := k.Digest()
	return filepath.Join(c.dir, digest[:2], digest+".json")
}

// Lookup returns the cached hypothesis for k. Unreadable entries are treated
// as misses.
func (c *Cache) Lookup(k Key) (transcript.RawHypothesis, bool) {
	if !c.Enabled() {
		return transcript.RawHypothesis{}, false
	}
	path := c.path(k)
	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			c.logger.Debug("hypothesis cache read failed", logging.String("path", path), logging.Error(err))
		}
		return transcript.RawHypothesis{}, false
	}
	var e entry
	if err := json.Unmarshal(data, &e); err != nil || e.Version != schemaVersion {
		c.logger.Warn("hypothesis cache entry rejected",
			logging.String(logging.FieldEventType, "hypcache_entry_rejected"),
			logging.String(logging.FieldErrorHint, "delete the cache directory if this repeats"),
			logging.String(logging.FieldImpact, "chunk will be transcribed again"),
			logging.String("path", path))
		return transcript.RawHypothesis{}, false
	}
	e.Hypothesis.ChunkIndex = k.Chunk.Index
	return e.Hypothesis, true
}

// Store persists h under k.
func (c *Cache) Store(k Key, h transcript.RawHypothesis) error {
	if !c.Enabled() {
		return nil
	}
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return fmt.Errorf("create cache dir: %w", err)
	}
	data, err := json.Marshal(entry{
		Version:    schemaVersion,
		Source:     k.Source,
		Model:      k.Model,
		CachedAt:   time.Now().UTC(),
		Hypothesis: h,
	})
	if err != nil {
		return fmt.Errorf("encode cache entry: %w", err)
	}
	unlock, err := c.acquire()
	if err != nil {
		return err
	}
	defer unlock()

	if err := fileutil.WriteFileAtomic(c.path(k), data, 0o644); err != nil {
		return fmt.Errorf("persist cache entry: %w", err)
	}
	c.logger.Debug("cached chunk hypothesis",
		logging.Chunk(k.Chunk.Index),
		logging.Int("tokens", len(h.Tokens)))
	return nil
}

// Clear removes every cached entry.
func (c *Cache) Clear() error {
	if !c.Enabled() {
		return nil
	}
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return fmt.Errorf("create cache dir: %w", err)
	}
	unlock, err := c.acquire()
	if err != nil {
		return err
	}
	defer unlock()

	entries, err := os.ReadDir(c.dir)
	if err != nil {
		return fmt.Errorf("read cache dir: %w", err)
	}
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		if err := os.RemoveAll(filepath.Join(c.dir, e.Name())); err != nil {
			return fmt.Errorf("remove cache shard: %w", err)
		}
	}
	return nil
}

func (c *Cache) acquire() (func(), error) {
	c.mu.Lock()
	if err := c.lock.Lock(); err != nil {
		c.mu.Unlock()
		return nil, fmt.Errorf("acquire cache lock: %w", err)
	}
	return func() {
		_ = c.lock.Unlock()
		c.mu.Unlock()
	}, nil
}
