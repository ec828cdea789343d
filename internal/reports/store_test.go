package reports_test

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"stitch/internal/quality"
	"stitch/internal/reports"
)

func openStore(t *testing.T) *reports.Store {
	t.Helper()
	store, err := reports.Open(filepath.Join(t.TempDir(), "nested", "reports.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func sampleRecord(runID string, score float64) *reports.Record {
	return &reports.Record{
		RunID:         runID,
		SourcePath:    "/media/talk.wav",
		Source:        "json",
		Model:         "recorded",
		Language:      "en",
		MergeStrategy: "lcs",
		Duration:      100,
		SegmentCount:  12,
		Score:         score,
		Passed:        score >= 0.8,
		Outputs:       []string{"/out/talk.srt"},
		Report: quality.Report{
			Score: score,
			Details: quality.Details{
				OverlapViolations:     1,
				HyphenNormalizationOK: true,
				SegmentCount:          12,
			},
		},
	}
}

func TestInsertAndGet(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	rec := sampleRecord("run-1", 0.9)
	if err := store.Insert(ctx, rec); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if rec.ID == 0 || rec.CreatedAt.IsZero() {
		t.Fatalf("expected id and timestamp assigned, got %+v", rec)
	}

	got, err := store.Get(ctx, rec.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got == nil {
		t.Fatal("expected record")
	}
	if got.RunID != "run-1" || got.Source != "json" || got.MergeStrategy != "lcs" || !got.Passed {
		t.Fatalf("unexpected record %+v", got)
	}
	if got.Report.Details.OverlapViolations != 1 || !got.Report.Details.HyphenNormalizationOK {
		t.Fatalf("report details not round-tripped: %+v", got.Report.Details)
	}
	if len(got.Outputs) != 1 || got.Outputs[0] != "/out/talk.srt" {
		t.Fatalf("unexpected outputs %v", got.Outputs)
	}

	byRun, err := store.GetByRunID(ctx, "run-1")
	if err != nil || byRun == nil || byRun.ID != rec.ID {
		t.Fatalf("GetByRunID: %+v, %v", byRun, err)
	}
}

func TestGetMissingReturnsNil(t *testing.T) {
	store := openStore(t)
	got, err := store.Get(context.Background(), 42)
	if err != nil || got != nil {
		t.Fatalf("expected nil, nil; got %+v, %v", got, err)
	}
}

func TestInsertRejectsDuplicateRunID(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()
	if err := store.Insert(ctx, sampleRecord("dup", 1)); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if err := store.Insert(ctx, sampleRecord("dup", 1)); err == nil {
		t.Fatal("expected unique constraint error")
	}
	if err := store.Insert(ctx, &reports.Record{Source: "json"}); err == nil {
		t.Fatal("expected error for empty run id")
	}
}

func TestListNewestFirst(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()
	base := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	for i, id := range []string{"a", "b", "c"} {
		rec := sampleRecord(id, 0.5)
		rec.CreatedAt = base.Add(time.Duration(i) * time.Minute)
		if err := store.Insert(ctx, rec); err != nil {
			t.Fatalf("Insert %s: %v", id, err)
		}
	}

	records, err := store.List(ctx, 2)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(records) != 2 || records[0].RunID != "c" || records[1].RunID != "b" {
		t.Fatalf("unexpected order: %+v", records)
	}

	all, err := store.List(ctx, 0)
	if err != nil || len(all) != 3 {
		t.Fatalf("expected default limit to return all 3, got %d (%v)", len(all), err)
	}
}

func TestReopenKeepsRecords(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reports.db")
	store, err := reports.Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := store.Insert(context.Background(), sampleRecord("persist", 0.7)); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	_ = store.Close()

	store, err = reports.Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer store.Close()
	records, err := store.List(context.Background(), 10)
	if err != nil || len(records) != 1 {
		t.Fatalf("expected 1 record after reopen, got %d (%v)", len(records), err)
	}
}

func TestOpenRejectsSchemaMismatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reports.db")
	store, err := reports.Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	_ = store.Close()

	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("sql.Open: %v", err)
	}
	if _, err := db.Exec("PRAGMA user_version = 99"); err != nil {
		t.Fatalf("bump version: %v", err)
	}
	_ = db.Close()

	if _, err := reports.Open(path); !errors.Is(err, reports.ErrSchemaMismatch) {
		t.Fatalf("expected ErrSchemaMismatch, got %v", err)
	}
}

func TestConcurrentInserts(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()
	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- store.Insert(ctx, sampleRecord("run-"+string(rune('a'+i)), 0.9))
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("concurrent insert: %v", err)
		}
	}
	records, err := store.List(ctx, 20)
	if err != nil || len(records) != 8 {
		t.Fatalf("expected 8 records, got %d (%v)", len(records), err)
	}
}
