package db

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"

	"geoprospect/domain/core"
	"geoprospect/domain/geochem"
	"geoprospect/internal/errors"
	"geoprospect/ports"

	"github.com/jmoiron/sqlx"
)

const analysisColumns = `id, dataset_id, filename, column_name, sample_count, skipped,
	clusters, detected, scores, thresholds, created_at`

// analysisRepository implements the AnalysisRepository interface
type analysisRepository struct {
	db *sqlx.DB
}

// NewAnalysisRepository creates a new analysis history repository
func NewAnalysisRepository(db *sqlx.DB) ports.AnalysisRepository {
	return &analysisRepository{db: db}
}

// Create inserts an analysis record
func (r *analysisRepository) Create(ctx context.Context, record *geochem.AnalysisRecord) error {
	query := `INSERT INTO analyses (` + analysisColumns + `) VALUES (
		:id, :dataset_id, :filename, :column_name, :sample_count, :skipped,
		:clusters, :detected, :scores, :thresholds, :created_at
	)`
	if _, err := r.db.NamedExecContext(ctx, query, record); err != nil {
		return errors.WithCode(errors.CodeDatabaseError, fmt.Errorf("failed to create analysis: %w", err))
	}
	return nil
}

// ListRecent returns the latest analyses, newest first
func (r *analysisRepository) ListRecent(ctx context.Context, limit int) ([]geochem.AnalysisRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	query := r.db.Rebind(`SELECT ` + analysisColumns + ` FROM analyses ORDER BY created_at DESC LIMIT ?`)

	records := []geochem.AnalysisRecord{}
	if err := r.db.SelectContext(ctx, &records, query, limit); err != nil {
		return nil, errors.WithCode(errors.CodeDatabaseError, fmt.Errorf("failed to list analyses: %w", err))
	}
	return records, nil
}

// GetByID retrieves an analysis record by its ID
func (r *analysisRepository) GetByID(ctx context.Context, id core.AnalysisID) (*geochem.AnalysisRecord, error) {
	query := r.db.Rebind(`SELECT ` + analysisColumns + ` FROM analyses WHERE id = ?`)

	var record geochem.AnalysisRecord
	if err := r.db.GetContext(ctx, &record, query, id); err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return nil, errors.NotFound("analysis")
		}
		return nil, errors.WithCode(errors.CodeDatabaseError, fmt.Errorf("failed to get analysis: %w", err))
	}
	return &record, nil
}
