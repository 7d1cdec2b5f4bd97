package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"

	"github.com/chemtools/webmo-go/internal/watcher/domain"
)

// Storage handles all database operations for the watcher
type Storage struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// NewStorage creates a new Storage instance
func NewStorage(db *sqlx.DB, logger *slog.Logger) *Storage {
	return &Storage{
		db:     db,
		logger: logger,
	}
}

// SaveArchive inserts the job snapshot. Inserting a job number that is
// already archived returns domain.ErrAlreadyArchived, which makes the
// insert double as the claim between concurrent watcher instances.
func (s *Storage) SaveArchive(ctx context.Context, archive *domain.Archive) error {
	query := `
		INSERT INTO job_archives (job_number, job_name, engine, status, results, geometry, output, archived_at)
		VALUES (:job_number, :job_name, :engine, :status, :results, :geometry, :output, :archived_at)
		ON CONFLICT (job_number) DO NOTHING
	`

	result, err := s.db.NamedExecContext(ctx, query, archive)
	if err != nil {
		return fmt.Errorf("failed to save archive: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return domain.ErrAlreadyArchived
	}

	s.logger.Info("Job archived",
		slog.Int("job_number", archive.JobNumber),
		slog.String("status", archive.Status),
	)

	return nil
}

// IsArchived reports whether the job's snapshot is already stored.
func (s *Storage) IsArchived(ctx context.Context, jobNumber int) (bool, error) {
	query := `SELECT 1 FROM job_archives WHERE job_number = $1`

	var one int
	err := s.db.GetContext(ctx, &one, query, jobNumber)
	if err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("failed to check archive: %w", err)
	}
	return true, nil
}

// GetArchive retrieves the stored snapshot of one job.
func (s *Storage) GetArchive(ctx context.Context, jobNumber int) (*domain.Archive, error) {
	query := `
		SELECT job_number, job_name, engine, status, results, geometry, output, archived_at
		FROM job_archives
		WHERE job_number = $1
	`

	var archive domain.Archive
	if err := s.db.GetContext(ctx, &archive, query, jobNumber); err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrArchiveNotFound
		}
		return nil, fmt.Errorf("failed to get archive: %w", err)
	}
	return &archive, nil
}
