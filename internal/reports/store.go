package reports

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"stitch/internal/quality"
)

const (
	sqliteBusyCode          = 5
	busyRetryAttempts       = 5
	busyRetryInitialBackoff = 10 * time.Millisecond
	busyRetryMaxBackoff     = 200 * time.Millisecond
)

// DefaultListLimit caps List when the caller passes a non-positive limit.
const DefaultListLimit = 20

// Record is one persisted quality report with the run that produced it.
type Record struct {
	ID            int64          `json:"id" yaml:"id"`
	RunID         string         `json:"run_id" yaml:"run_id"`
	SourcePath    string         `json:"source_path,omitempty" yaml:"source_path,omitempty"`
	Source        string         `json:"source" yaml:"source"`
	Model         string         `json:"model,omitempty" yaml:"model,omitempty"`
	Language      string         `json:"language,omitempty" yaml:"language,omitempty"`
	MergeStrategy string         `json:"merge_strategy,omitempty" yaml:"merge_strategy,omitempty"`
	Duration      float64        `json:"duration_seconds" yaml:"duration_seconds"`
	SegmentCount  int            `json:"segment_count" yaml:"segment_count"`
	Score         float64        `json:"score" yaml:"score"`
	Passed        bool           `json:"passed" yaml:"passed"`
	Outputs       []string       `json:"outputs" yaml:"outputs"`
	Report        quality.Report `json:"report" yaml:"report"`
	CreatedAt     time.Time      `json:"created_at" yaml:"created_at"`
}

// Store persists report records in SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the report database at path.
func Open(path string) (*Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("report database path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create report db directory: %w", err)
	}

	// Pragmas go in the DSN so every pooled connection gets the busy timeout.
	dsn := "file:" + path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("connect sqlite db: %w", err)
	}

	store := &Store{db: db, path: path}
	if err := store.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Insert persists rec and fills in its ID and CreatedAt.
func (s *Store) Insert(ctx context.Context, rec *Record) error {
	if rec == nil {
		return errors.New("record is nil")
	}
	if strings.TrimSpace(rec.RunID) == "" {
		return errors.New("record run id is empty")
	}
	reportJSON, err := json.Marshal(rec.Report)
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	outputs := rec.Outputs
	if outputs == nil {
		outputs = []string{}
	}
	outputsJSON, err := json.Marshal(outputs)
	if err != nil {
		return fmt.Errorf("marshal outputs: %w", err)
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	var res sql.Result
	err = retryOnBusy(ctx, func() error {
		var execErr error
		res, execErr = s.db.ExecContext(ctx,
			`INSERT INTO reports (
                run_id, source_path, source, model, language, merge_strategy,
                duration_seconds, segment_count, score, passed, outputs_json,
                report_json, created_at
            ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			rec.RunID,
			nullableString(rec.SourcePath),
			rec.Source,
			nullableString(rec.Model),
			nullableString(rec.Language),
			nullableString(rec.MergeStrategy),
			rec.Duration,
			rec.SegmentCount,
			rec.Score,
			boolToInt(rec.Passed),
			string(outputsJSON),
			string(reportJSON),
			rec.CreatedAt.UTC().Format(time.RFC3339Nano),
		)
		return execErr
	})
	if err != nil {
		return fmt.Errorf("insert report: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("last insert id: %w", err)
	}
	rec.ID = id
	return nil
}

// Get fetches a record by ID. It returns nil without error when absent.
func (s *Store) Get(ctx context.Context, id int64) (*Record, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+recordColumns+` FROM reports WHERE id = ?`, id)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get report: %w", err)
	}
	return rec, nil
}

// GetByRunID fetches the record written by a run. It returns nil without
// error when absent.
func (s *Store) GetByRunID(ctx context.Context, runID string) (*Record, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+recordColumns+` FROM reports WHERE run_id = ?`, strings.TrimSpace(runID))
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get report by run id: %w", err)
	}
	return rec, nil
}

// List returns up to limit records, newest first.
func (s *Store) List(ctx context.Context, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+recordColumns+` FROM reports ORDER BY created_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan report: %w", err)
		}
		records = append(records, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate reports: %w", err)
	}
	return records, nil
}
