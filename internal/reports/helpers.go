package reports

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

const recordColumns = "id, run_id, source_path, source, model, language, merge_strategy, duration_seconds, segment_count, score, passed, outputs_json, report_json, created_at"

func scanRecord(scanner interface{ Scan(dest ...any) error }) (*Record, error) {
	var (
		rec        Record
		sourcePath sql.NullString
		model      sql.NullString
		language   sql.NullString
		strategy   sql.NullString
		passed     int64
		outputsRaw sql.NullString
		reportRaw  string
		createdRaw string
	)
	if err := scanner.Scan(
		&rec.ID,
		&rec.RunID,
		&sourcePath,
		&rec.Source,
		&model,
		&language,
		&strategy,
		&rec.Duration,
		&rec.SegmentCount,
		&rec.Score,
		&passed,
		&outputsRaw,
		&reportRaw,
		&createdRaw,
	); err != nil {
		return nil, err
	}
	rec.SourcePath = sourcePath.String
	rec.Model = model.String
	rec.Language = language.String
	rec.MergeStrategy = strategy.String
	rec.Passed = passed != 0
	rec.Outputs = []string{}
	if outputsRaw.Valid && strings.TrimSpace(outputsRaw.String) != "" {
		if err := json.Unmarshal([]byte(outputsRaw.String), &rec.Outputs); err != nil {
			return nil, fmt.Errorf("decode outputs: %w", err)
		}
	}
	if err := json.Unmarshal([]byte(reportRaw), &rec.Report); err != nil {
		return nil, fmt.Errorf("decode report: %w", err)
	}
	if created, err := time.Parse(time.RFC3339Nano, createdRaw); err == nil {
		rec.CreatedAt = created
	}
	return &rec, nil
}

func isSQLiteBusy(err error) bool {
	if err == nil {
		return false
	}
	var coder interface{ Code() int }
	if errors.As(err, &coder) && coder.Code() == sqliteBusyCode {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

func retryOnBusy(ctx context.Context, op func() error) error {
	if ctx == nil {
		ctx = context.Background()
	}
	delay := busyRetryInitialBackoff
	var lastErr error
	for attempt := 0; attempt < busyRetryAttempts; attempt++ {
		lastErr = op()
		if lastErr == nil {
			return nil
		}
		if !isSQLiteBusy(lastErr) || attempt == busyRetryAttempts-1 {
			break
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		if next := delay * 2; next <= busyRetryMaxBackoff {
			delay = next
		}
	}
	return lastErr
}

func nullableString(value string) any {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return value
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}
