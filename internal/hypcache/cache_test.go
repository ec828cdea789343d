package hypcache

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"stitch/internal/logging"
	"stitch/internal/transcript"
)

func testKey(t *testing.T) Key {
	t.Helper()
	audio := filepath.Join(t.TempDir(), "talk.wav")
	if err := os.WriteFile(audio, []byte("RIFFdata"), 0o644); err != nil {
		t.Fatal(err)
	}
	chunk := transcript.Chunk{Index: 4, StartSample: 160000, EndSample: 640000, SampleRate: 16000}
	key, err := KeyFor("whisperx", "large-v3-turbo", "en", audio, 0, chunk)
	if err != nil {
		t.Fatalf("KeyFor: %v", err)
	}
	return key
}

func TestStoreAndLookup(t *testing.T) {
	cache := New(t.TempDir(), logging.NewNop())
	key := testKey(t)

	if _, ok := cache.Lookup(key); ok {
		t.Fatal("expected miss on empty cache")
	}
	h := transcript.RawHypothesis{ChunkIndex: 4, Tokens: []transcript.Token{{Text: "hi", Start: 0.1, End: 0.3, Confidence: 0.7}}}
	if err := cache.Store(key, h); err != nil {
		t.Fatalf("Store: %v", err)
	}
	got, ok := cache.Lookup(key)
	if !ok {
		t.Fatal("expected hit after store")
	}
	if got.ChunkIndex != 4 || len(got.Tokens) != 1 || got.Tokens[0] != h.Tokens[0] {
		t.Fatalf("unexpected hypothesis %+v", got)
	}
}

func TestDigestChangesWithInputs(t *testing.T) {
	key := testKey(t)
	base := key.Digest()
	if base != key.Digest() {
		t.Fatal("digest must be stable")
	}
	variants := []func(k *Key){
		func(k *Key) { k.Model = "small" },
		func(k *Key) { k.Language = "de" },
		func(k *Key) { k.AudioSize++ },
		func(k *Key) { k.AudioMod = k.AudioMod.Add(time.Second) },
		func(k *Key) { k.Stream = 1 },
		func(k *Key) { k.Chunk.EndSample++ },
	}
	for i, mutate := range variants {
		k := key
		mutate(&k)
		if k.Digest() == base {
			t.Fatalf("variant %d did not change digest", i)
		}
	}
	k := key
	k.Chunk.Index = 99
	if k.Digest() != base {
		t.Fatal("chunk index alone must not change digest")
	}
}

func TestCorruptEntryIsMiss(t *testing.T) {
	cache := New(t.TempDir(), logging.NewNop())
	key := testKey(t)
	path := cache.path(key)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, ok := cache.Lookup(key); ok {
		t.Fatal("expected corrupt entry to miss")
	}
}

func TestDisabledCache(t *testing.T) {
	cache := New("", nil)
	if cache.Enabled() {
		t.Fatal("expected disabled cache")
	}
	if err := cache.Store(Key{}, transcript.RawHypothesis{}); err != nil {
		t.Fatalf("Store on disabled cache: %v", err)
	}
	if _, ok := cache.Lookup(Key{}); ok {
		t.Fatal("disabled cache must miss")
	}
	if err := cache.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}
}

func TestConcurrentStoresAndClear(t *testing.T) {
	cache := New(t.TempDir(), logging.NewNop())
	key := testKey(t)
	var wg sync.WaitGroup
	for i := range 8 {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			k := key
			k.Chunk.StartSample += int64(i)
			if err := cache.Store(k, transcript.RawHypothesis{}); err != nil {
				t.Errorf("Store: %v", err)
			}
		}(i)
	}
	wg.Wait()
	if _, ok := cache.Lookup(key); !ok {
		t.Fatal("expected entry before clear")
	}
	if err := cache.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if _, ok := cache.Lookup(key); ok {
		t.Fatal("expected miss after clear")
	}
}
