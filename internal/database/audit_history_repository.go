package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/asolytics/combo-engine/internal/domain"
)

// AuditHistoryRepository handles database operations for the audit trail.
type AuditHistoryRepository struct {
	db *sqlx.DB
}

// NewAuditHistoryRepository creates a new audit history repository.
func NewAuditHistoryRepository(db *sqlx.DB) *AuditHistoryRepository {
	return &AuditHistoryRepository{db: db}
}

// AuditStats represents aggregate statistics over the audit trail.
type AuditStats struct {
	TotalAudits         int     `json:"total_audits" db:"total_audits"`
	AvgCoveragePct      float64 `json:"avg_coverage_pct" db:"avg_coverage_pct"`
	AvgCombos           float64 `json:"avg_combos" db:"avg_combos"`
	AvgProcessingTimeMs float64 `json:"avg_processing_time_ms" db:"avg_processing_time_ms"`
}

// VerticalStat represents audit volume for a single vertical.
type VerticalStat struct {
	Vertical    string  `json:"vertical" db:"vertical"`
	Count       int     `json:"count" db:"count"`
	AvgCoverage float64 `json:"avg_coverage" db:"avg_coverage"`
}

// Create inserts a new audit record.
func (r *AuditHistoryRepository) Create(ctx context.Context, rec *domain.AuditRecord) error {
	query := `
		INSERT INTO audit_history (
			app_id, vertical, title, subtitle, total_possible, existing,
			missing, coverage_pct, engine_version, processing_time_ms, audited_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id
	`

	err := r.db.QueryRowContext(
		ctx,
		query,
		rec.AppID,
		rec.Vertical,
		rec.Title,
		rec.Subtitle,
		rec.TotalPossible,
		rec.Existing,
		rec.Missing,
		rec.CoveragePct,
		rec.EngineVersion,
		rec.ProcessingTimeMs,
		rec.AuditedAt,
	).Scan(&rec.ID)

	if err != nil {
		return fmt.Errorf("failed to create audit record: %w", err)
	}

	return nil
}

// ListByApp retrieves the most recent audit records for an app, newest first.
func (r *AuditHistoryRepository) ListByApp(ctx context.Context, appID string, limit, offset int) ([]*domain.AuditRecord, error) {
	var records []*domain.AuditRecord
	query := `
		SELECT id, app_id, vertical, title, subtitle, total_possible, existing,
		       missing, coverage_pct, engine_version, processing_time_ms, audited_at
		FROM audit_history
		WHERE app_id = $1
		ORDER BY audited_at DESC
		LIMIT $2 OFFSET $3
	`

	if err := r.db.SelectContext(ctx, &records, query, appID, limit, offset); err != nil {
		return nil, fmt.Errorf("failed to list audit records: %w", err)
	}

	return records, nil
}

// GetLatestByApp retrieves the most recent audit record for an app.
func (r *AuditHistoryRepository) GetLatestByApp(ctx context.Context, appID string) (*domain.AuditRecord, error) {
	var rec domain.AuditRecord
	query := `
		SELECT id, app_id, vertical, title, subtitle, total_possible, existing,
		       missing, coverage_pct, engine_version, processing_time_ms, audited_at
		FROM audit_history
		WHERE app_id = $1
		ORDER BY audited_at DESC
		LIMIT 1
	`

	if err := r.db.GetContext(ctx, &rec, query, appID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("audit history for app %q: %w", appID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get audit record: %w", err)
	}

	return &rec, nil
}

// GetStats retrieves aggregate statistics over the audit trail.
func (r *AuditHistoryRepository) GetStats(ctx context.Context) (*AuditStats, error) {
	var stats AuditStats
	query := `
		SELECT
			COUNT(*) as total_audits,
			COALESCE(AVG(coverage_pct), 0) as avg_coverage_pct,
			COALESCE(AVG(total_possible), 0) as avg_combos,
			COALESCE(AVG(processing_time_ms), 0) as avg_processing_time_ms
		FROM audit_history
	`

	if err := r.db.GetContext(ctx, &stats, query); err != nil {
		return nil, fmt.Errorf("failed to get audit stats: %w", err)
	}

	return &stats, nil
}

// GetVerticalStats retrieves audit volume grouped by vertical.
func (r *AuditHistoryRepository) GetVerticalStats(ctx context.Context) ([]*VerticalStat, error) {
	var stats []*VerticalStat
	query := `
		SELECT
			vertical,
			COUNT(*) as count,
			COALESCE(AVG(coverage_pct), 0) as avg_coverage
		FROM audit_history
		WHERE vertical <> ''
		GROUP BY vertical
		ORDER BY count DESC
		LIMIT 50
	`

	if err := r.db.SelectContext(ctx, &stats, query); err != nil {
		return nil, fmt.Errorf("failed to get vertical stats: %w", err)
	}

	return stats, nil
}
