// Package testhelpers provides shared test utilities for the combo-engine
// service: in-memory stand-ins for the Postgres repositories.
package testhelpers

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/asolytics/combo-engine/internal/database"
	"github.com/asolytics/combo-engine/internal/domain"
)

// MockRuleSetStore implements the rule-set store for testing.
type MockRuleSetStore struct {
	mu       sync.RWMutex
	nextID   int
	ruleSets map[int]*domain.VerticalRuleSet
}

// NewMockRuleSetStore creates a new in-memory rule set store.
func NewMockRuleSetStore() *MockRuleSetStore {
	return &MockRuleSetStore{
		nextID:   1,
		ruleSets: make(map[int]*domain.VerticalRuleSet),
	}
}

// Create stores a new rule set and assigns its ID and timestamps.
func (m *MockRuleSetStore) Create(_ context.Context, rs *domain.VerticalRuleSet) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rs.ID = m.nextID
	m.nextID++
	now := time.Now().UTC()
	rs.CreatedAt = now
	rs.UpdatedAt = now
	clone := *rs
	m.ruleSets[rs.ID] = &clone
	return nil
}

// GetByID retrieves a rule set by ID.
func (m *MockRuleSetStore) GetByID(_ context.Context, id int) (*domain.VerticalRuleSet, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if rs, ok := m.ruleSets[id]; ok {
		clone := *rs
		return &clone, nil
	}
	return nil, fmt.Errorf("rule set %d: %w", id, database.ErrNotFound)
}

// GetByVertical retrieves the enabled rule set for a vertical.
func (m *MockRuleSetStore) GetByVertical(_ context.Context, vertical string) (*domain.VerticalRuleSet, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, rs := range m.ruleSets {
		if rs.Vertical == vertical && rs.Enabled {
			clone := *rs
			return &clone, nil
		}
	}
	return nil, fmt.Errorf("rule set for vertical %q: %w", vertical, database.ErrNotFound)
}

// List returns all rule sets, optionally filtered by enabled state.
func (m *MockRuleSetStore) List(_ context.Context, enabled *bool) ([]*domain.VerticalRuleSet, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.VerticalRuleSet
	for id := 1; id < m.nextID; id++ {
		rs, ok := m.ruleSets[id]
		if !ok {
			continue
		}
		if enabled != nil && rs.Enabled != *enabled {
			continue
		}
		clone := *rs
		out = append(out, &clone)
	}
	return out, nil
}

// Update replaces a stored rule set.
func (m *MockRuleSetStore) Update(_ context.Context, rs *domain.VerticalRuleSet) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.ruleSets[rs.ID]; !ok {
		return fmt.Errorf("rule set %d: %w", rs.ID, database.ErrNotFound)
	}
	rs.UpdatedAt = time.Now().UTC()
	clone := *rs
	m.ruleSets[rs.ID] = &clone
	return nil
}

// Delete removes a rule set.
func (m *MockRuleSetStore) Delete(_ context.Context, id int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.ruleSets[id]; !ok {
		return fmt.Errorf("rule set %d: %w", id, database.ErrNotFound)
	}
	delete(m.ruleSets, id)
	return nil
}

// MockAuditHistoryStore implements the audit history store for testing.
type MockAuditHistoryStore struct {
	mu      sync.RWMutex
	nextID  int64
	records []*domain.AuditRecord

	// FailCreate makes Create return an error, for failure-path tests.
	FailCreate error
}

// NewMockAuditHistoryStore creates a new in-memory audit history store.
func NewMockAuditHistoryStore() *MockAuditHistoryStore {
	return &MockAuditHistoryStore{nextID: 1}
}

// Create appends an audit record.
func (m *MockAuditHistoryStore) Create(_ context.Context, rec *domain.AuditRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailCreate != nil {
		return m.FailCreate
	}
	rec.ID = m.nextID
	m.nextID++
	clone := *rec
	m.records = append(m.records, &clone)
	return nil
}

// ListByApp returns records for an app, newest first.
func (m *MockAuditHistoryStore) ListByApp(_ context.Context, appID string, limit, offset int) ([]*domain.AuditRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var matched []*domain.AuditRecord
	for i := len(m.records) - 1; i >= 0; i-- {
		if m.records[i].AppID == appID {
			clone := *m.records[i]
			matched = append(matched, &clone)
		}
	}
	if offset >= len(matched) {
		return nil, nil
	}
	matched = matched[offset:]
	if limit > 0 && limit < len(matched) {
		matched = matched[:limit]
	}
	return matched, nil
}

// GetStats aggregates over all stored records.
func (m *MockAuditHistoryStore) GetStats(_ context.Context) (*database.AuditStats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	stats := &database.AuditStats{TotalAudits: len(m.records)}
	if len(m.records) == 0 {
		return stats, nil
	}
	for _, rec := range m.records {
		stats.AvgCoveragePct += float64(rec.CoveragePct)
		stats.AvgCombos += float64(rec.TotalPossible)
		stats.AvgProcessingTimeMs += float64(rec.ProcessingTimeMs)
	}
	n := float64(len(m.records))
	stats.AvgCoveragePct /= n
	stats.AvgCombos /= n
	stats.AvgProcessingTimeMs /= n
	return stats, nil
}

// GetVerticalStats aggregates record counts per vertical.
func (m *MockAuditHistoryStore) GetVerticalStats(_ context.Context) ([]*database.VerticalStat, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	byVertical := make(map[string]*database.VerticalStat)
	var order []string
	for _, rec := range m.records {
		if rec.Vertical == "" {
			continue
		}
		stat, ok := byVertical[rec.Vertical]
		if !ok {
			stat = &database.VerticalStat{Vertical: rec.Vertical}
			byVertical[rec.Vertical] = stat
			order = append(order, rec.Vertical)
		}
		stat.Count++
		stat.AvgCoverage += float64(rec.CoveragePct)
	}
	out := make([]*database.VerticalStat, 0, len(order))
	for _, vertical := range order {
		stat := byVertical[vertical]
		stat.AvgCoverage /= float64(stat.Count)
		out = append(out, stat)
	}
	return out, nil
}

// Records returns a snapshot of all stored records (for assertions).
func (m *MockAuditHistoryStore) Records() []*domain.AuditRecord {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*domain.AuditRecord, len(m.records))
	copy(out, m.records)
	return out
}

// MockAuditIndexer implements the audit indexer for testing.
type MockAuditIndexer struct {
	mu      sync.RWMutex
	indexed []*domain.AuditResult

	// FailIndex makes IndexAuditResult return an error.
	FailIndex error
}

// NewMockAuditIndexer creates a new in-memory audit indexer.
func NewMockAuditIndexer() *MockAuditIndexer {
	return &MockAuditIndexer{}
}

// EnsureIndex is a no-op for the mock.
func (m *MockAuditIndexer) EnsureIndex(_ context.Context, _ string) error {
	return nil
}

// IndexAuditResult records the result.
func (m *MockAuditIndexer) IndexAuditResult(_ context.Context, result *domain.AuditResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailIndex != nil {
		return m.FailIndex
	}
	m.indexed = append(m.indexed, result)
	return nil
}

// Indexed returns all indexed results.
func (m *MockAuditIndexer) Indexed() []*domain.AuditResult {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*domain.AuditResult, len(m.indexed))
	copy(out, m.indexed)
	return out
}
