package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/asolytics/combo-engine/internal/domain"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

// RuleSetRepository handles database operations for vertical rule sets.
type RuleSetRepository struct {
	db *sqlx.DB
}

// NewRuleSetRepository creates a new rule set repository.
func NewRuleSetRepository(db *sqlx.DB) *RuleSetRepository {
	return &RuleSetRepository{db: db}
}

// Create inserts a new rule set into the database.
func (r *RuleSetRepository) Create(ctx context.Context, rs *domain.VerticalRuleSet) error {
	weights, keywords, err := marshalRuleSetMaps(rs)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO vertical_rule_sets (
			vertical, priority_weights, relevance_keywords, brand_aliases,
			competitor_aliases, stopword_overrides, noise_threshold, enabled
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at
	`

	err = r.db.QueryRowContext(
		ctx,
		query,
		rs.Vertical,
		weights,
		keywords,
		pq.Array(rs.BrandAliases),
		pq.Array(rs.CompetitorAliases),
		pq.Array(rs.StopwordOverrides),
		rs.NoiseThreshold,
		rs.Enabled,
	).Scan(&rs.ID, &rs.CreatedAt, &rs.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to create rule set: %w", err)
	}

	return nil
}

// GetByID retrieves a rule set by its ID.
func (r *RuleSetRepository) GetByID(ctx context.Context, id int) (*domain.VerticalRuleSet, error) {
	query := ruleSetSelect + ` WHERE id = $1`
	return r.scanOne(r.db.QueryRowxContext(ctx, query, id), fmt.Sprintf("rule set %d", id))
}

// GetByVertical retrieves the enabled rule set for a vertical, if any.
func (r *RuleSetRepository) GetByVertical(ctx context.Context, vertical string) (*domain.VerticalRuleSet, error) {
	query := ruleSetSelect + ` WHERE vertical = $1 AND enabled = true`
	return r.scanOne(r.db.QueryRowxContext(ctx, query, vertical), fmt.Sprintf("rule set for vertical %q", vertical))
}

// List retrieves all rule sets, optionally restricted to enabled ones.
func (r *RuleSetRepository) List(ctx context.Context, enabled *bool) ([]*domain.VerticalRuleSet, error) {
	query := ruleSetSelect
	var args []any
	if enabled != nil {
		query += ` WHERE enabled = $1`
		args = append(args, *enabled)
	}
	query += ` ORDER BY vertical ASC`

	rows, err := r.db.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list rule sets: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var ruleSets []*domain.VerticalRuleSet
	for rows.Next() {
		rs, scanErr := scanRuleSet(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		ruleSets = append(ruleSets, rs)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rule sets: %w", err)
	}

	return ruleSets, nil
}

// Update updates an existing rule set.
func (r *RuleSetRepository) Update(ctx context.Context, rs *domain.VerticalRuleSet) error {
	weights, keywords, err := marshalRuleSetMaps(rs)
	if err != nil {
		return err
	}

	query := `
		UPDATE vertical_rule_sets
		SET vertical = $1, priority_weights = $2, relevance_keywords = $3,
		    brand_aliases = $4, competitor_aliases = $5, stopword_overrides = $6,
		    noise_threshold = $7, enabled = $8, updated_at = now()
		WHERE id = $9
		RETURNING updated_at
	`

	err = r.db.QueryRowContext(
		ctx,
		query,
		rs.Vertical,
		weights,
		keywords,
		pq.Array(rs.BrandAliases),
		pq.Array(rs.CompetitorAliases),
		pq.Array(rs.StopwordOverrides),
		rs.NoiseThreshold,
		rs.Enabled,
		rs.ID,
	).Scan(&rs.UpdatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("rule set %d: %w", rs.ID, ErrNotFound)
		}
		return fmt.Errorf("failed to update rule set: %w", err)
	}

	return nil
}

// Delete removes a rule set from the database.
func (r *RuleSetRepository) Delete(ctx context.Context, id int) error {
	query := `DELETE FROM vertical_rule_sets WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete rule set: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("rule set %d: %w", id, ErrNotFound)
	}

	return nil
}

// Count returns the total number of rule sets.
func (r *RuleSetRepository) Count(ctx context.Context) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM vertical_rule_sets`

	if err := r.db.QueryRowContext(ctx, query).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count rule sets: %w", err)
	}

	return count, nil
}

const ruleSetSelect = `
	SELECT id, vertical, priority_weights, relevance_keywords, brand_aliases,
	       competitor_aliases, stopword_overrides, noise_threshold, enabled,
	       created_at, updated_at
	FROM vertical_rule_sets
`

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *RuleSetRepository) scanOne(row rowScanner, what string) (*domain.VerticalRuleSet, error) {
	rs, err := scanRuleSet(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", what, ErrNotFound)
		}
		return nil, err
	}
	return rs, nil
}

func scanRuleSet(row rowScanner) (*domain.VerticalRuleSet, error) {
	var (
		rs       domain.VerticalRuleSet
		weights  []byte
		keywords []byte
	)

	err := row.Scan(
		&rs.ID,
		&rs.Vertical,
		&weights,
		&keywords,
		pq.Array(&rs.BrandAliases),
		pq.Array(&rs.CompetitorAliases),
		pq.Array(&rs.StopwordOverrides),
		&rs.NoiseThreshold,
		&rs.Enabled,
		&rs.CreatedAt,
		&rs.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan rule set: %w", err)
	}

	if len(weights) > 0 {
		if err := json.Unmarshal(weights, &rs.PriorityWeights); err != nil {
			return nil, fmt.Errorf("failed to decode priority weights: %w", err)
		}
	}
	if len(keywords) > 0 {
		if err := json.Unmarshal(keywords, &rs.RelevanceKeywords); err != nil {
			return nil, fmt.Errorf("failed to decode relevance keywords: %w", err)
		}
	}

	return &rs, nil
}

// marshalRuleSetMaps encodes the jsonb columns. Nil maps become SQL NULL so
// defaults stay distinguishable from an explicit empty map.
func marshalRuleSetMaps(rs *domain.VerticalRuleSet) (weights, keywords []byte, err error) {
	if rs.PriorityWeights != nil {
		weights, err = json.Marshal(rs.PriorityWeights)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to encode priority weights: %w", err)
		}
	}
	if rs.RelevanceKeywords != nil {
		keywords, err = json.Marshal(rs.RelevanceKeywords)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to encode relevance keywords: %w", err)
		}
	}
	return weights, keywords, nil
}
