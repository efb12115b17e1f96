package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/kamthamc/wealthwise/internal/common"
	"github.com/kamthamc/wealthwise/internal/model"
)

// RecordImportRun persists the provenance of one completed import.
func (s *SQLiteStorage) RecordImportRun(ctx context.Context, run *model.ImportRun) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(run.Reference, "import reference"); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO import_runs (
			reference, account_id, file_hash, file_name, source,
			created_count, updated_count, skipped_count, failed_count
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		run.Reference,
		run.AccountID,
		run.FileHash,
		run.FileName,
		run.Source,
		run.CreatedCount,
		run.UpdatedCount,
		run.SkippedCount,
		run.FailedCount,
	)
	if err != nil {
		return fmt.Errorf("failed to record import run: %w", err)
	}
	return nil
}

// GetImportRunByFileHash returns the most recent run for a file hash,
// or common.ErrNotFound when the file was never imported.
func (s *SQLiteStorage) GetImportRunByFileHash(ctx context.Context, fileHash string) (*model.ImportRun, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(fileHash, "fileHash"); err != nil {
		return nil, err
	}

	var run model.ImportRun
	err := s.db.QueryRowContext(ctx, `
		SELECT reference, account_id, file_hash, COALESCE(file_name, ''),
			COALESCE(source, ''), created_count, updated_count,
			skipped_count, failed_count, created_at
		FROM import_runs
		WHERE file_hash = ?
		ORDER BY created_at DESC
		LIMIT 1
	`, fileHash).Scan(
		&run.Reference,
		&run.AccountID,
		&run.FileHash,
		&run.FileName,
		&run.Source,
		&run.CreatedCount,
		&run.UpdatedCount,
		&run.SkippedCount,
		&run.FailedCount,
		&run.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("import run for hash %s: %w", fileHash, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get import run: %w", err)
	}
	return &run, nil
}
