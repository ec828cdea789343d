package reports

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
)

//go:embed schema.sql
var schemaSQL string

// reportsVersion is stored in PRAGMA user_version. Bump it whenever
// schema.sql changes incompatibly.
const reportsVersion = 1

// ErrSchemaMismatch indicates the database was written by an incompatible version.
var ErrSchemaMismatch = errors.New("schema version mismatch")

// migrate creates the reports table on a fresh file and refuses files
// stamped with any other version.
func (s *Store) migrate(ctx context.Context) error {
	var stamped int
	if err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&stamped); err != nil {
		return fmt.Errorf("read user_version: %w", err)
	}
	switch stamped {
	case reportsVersion:
		return nil
	case 0:
	default:
		return fmt.Errorf("%w: %s is at version %d, this build reads %d; move it aside to start a new history",
			ErrSchemaMismatch, s.path, stamped, reportsVersion)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin migration: %w", err)
	}
	defer func() { _ = tx.Rollback() }()
	if _, err := tx.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("create reports table: %w", err)
	}
	// PRAGMA does not accept bound parameters.
	if _, err := tx.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", reportsVersion)); err != nil {
		return fmt.Errorf("stamp user_version: %w", err)
	}
	return tx.Commit()
}
