package database_test

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/asolytics/combo-engine/internal/database"
)

var ruleSetColumns = []string{
	"id", "vertical", "priority_weights", "relevance_keywords", "brand_aliases",
	"competitor_aliases", "stopword_overrides", "noise_threshold", "enabled",
	"created_at", "updated_at",
}

func TestRuleSetRepository_GetByVertical(t *testing.T) {
	db, mock := newMockDB(t)
	repo := database.NewRuleSetRepository(db)

	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows(ruleSetColumns).AddRow(
		1,
		"language_learning",
		[]byte(`{"relevance":0.4,"length":0.2}`),
		[]byte(`{"learn":1.0,"language":0.8}`),
		[]byte(`{pimsleur}`),
		[]byte(`{duolingo,babbel}`),
		[]byte(`{}`),
		0.7,
		true,
		now,
		now,
	)

	mock.ExpectQuery("SELECT (.+) FROM vertical_rule_sets").
		WithArgs("language_learning").
		WillReturnRows(rows)

	rs, err := repo.GetByVertical(context.Background(), "language_learning")
	require.NoError(t, err)
	assert.Equal(t, 1, rs.ID)
	assert.InDelta(t, 0.4, rs.PriorityWeights["relevance"], 0.001)
	assert.InDelta(t, 1.0, rs.RelevanceKeywords["learn"], 0.001)
	assert.Equal(t, []string{"pimsleur"}, rs.BrandAliases)
	assert.Equal(t, []string{"duolingo", "babbel"}, rs.CompetitorAliases)
	assert.Empty(t, rs.StopwordOverrides)
	assert.InDelta(t, 0.7, rs.NoiseThreshold, 0.001)
	assert.True(t, rs.Enabled)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRuleSetRepository_GetByID_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := database.NewRuleSetRepository(db)

	mock.ExpectQuery("SELECT (.+) FROM vertical_rule_sets").
		WithArgs(42).
		WillReturnRows(sqlmock.NewRows(ruleSetColumns))

	rs, err := repo.GetByID(context.Background(), 42)
	require.Error(t, err)
	assert.Nil(t, rs)
	assert.ErrorIs(t, err, database.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRuleSetRepository_Count(t *testing.T) {
	db, mock := newMockDB(t)
	repo := database.NewRuleSetRepository(db)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM vertical_rule_sets`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(5))

	count, err := repo.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 5, count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRuleSetRepository_Delete_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := database.NewRuleSetRepository(db)

	mock.ExpectExec("DELETE FROM vertical_rule_sets").
		WithArgs(42).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Delete(context.Background(), 42)
	require.Error(t, err)
	assert.ErrorIs(t, err, database.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
