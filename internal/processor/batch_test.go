package processor

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/asolytics/combo-engine/internal/domain"
	"github.com/asolytics/combo-engine/internal/logging"
)

type stubAuditor struct {
	calls   atomic.Int64
	failApp string
}

func (s *stubAuditor) RunAudit(_ context.Context, req *domain.AuditRequest) (*domain.AuditResult, error) {
	s.calls.Add(1)
	if req.AppID == s.failApp {
		return nil, errors.New("boom")
	}
	return &domain.AuditResult{AppID: req.AppID}, nil
}

func requests(appIDs ...string) []*domain.AuditRequest {
	reqs := make([]*domain.AuditRequest, len(appIDs))
	for i, id := range appIDs {
		reqs[i] = &domain.AuditRequest{AppID: id, Title: "Some App Title"}
	}
	return reqs
}

func TestBatchProcessor_Process(t *testing.T) {
	auditor := &stubAuditor{}
	proc := NewBatchProcessor(auditor, 4, logging.NewNop())

	reqs := requests("app-1", "app-2", "app-3", "app-4", "app-5")
	results, err := proc.Process(context.Background(), reqs)
	require.NoError(t, err)
	require.Len(t, results, len(reqs))

	// Results stay aligned with the request order.
	for i, result := range results {
		require.NotNil(t, result)
		assert.NoError(t, result.Error)
		assert.Equal(t, reqs[i].AppID, result.Result.AppID)
	}
	assert.Equal(t, int64(len(reqs)), auditor.calls.Load())
}

func TestBatchProcessor_ProcessPartialFailure(t *testing.T) {
	auditor := &stubAuditor{failApp: "app-2"}
	proc := NewBatchProcessor(auditor, 2, logging.NewNop())

	results, err := proc.Process(context.Background(), requests("app-1", "app-2", "app-3"))
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.NoError(t, results[0].Error)
	assert.Error(t, results[1].Error)
	assert.Nil(t, results[1].Result)
	assert.NoError(t, results[2].Error)
}

func TestBatchProcessor_ProcessEmpty(t *testing.T) {
	proc := NewBatchProcessor(&stubAuditor{}, 2, logging.NewNop())

	results, err := proc.Process(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestBatchProcessor_DefaultConcurrency(t *testing.T) {
	proc := NewBatchProcessor(&stubAuditor{}, 0, logging.NewNop())
	assert.Equal(t, 10, proc.GetStats()["concurrency"])

	proc.SetConcurrency(3)
	assert.Equal(t, 3, proc.GetStats()["concurrency"])
	proc.SetConcurrency(-1)
	assert.Equal(t, 3, proc.GetStats()["concurrency"])
}

func TestRateLimiter_Allow(t *testing.T) {
	limiter := NewRateLimiter(1, 1, logging.NewNop())

	assert.True(t, limiter.Allow())
	// Burst of one is spent; the next immediate call is rejected.
	assert.False(t, limiter.Allow())
}

func TestRateLimitedProcessor_Process(t *testing.T) {
	proc := NewBatchProcessor(&stubAuditor{}, 2, logging.NewNop())
	limited := NewRateLimitedProcessor(proc, 100, 100, logging.NewNop())

	results, err := limited.ProcessWithRateLimit(context.Background(), requests("app-1", "app-2"))
	require.NoError(t, err)
	assert.Len(t, results, 2)
}

func TestRateLimitedProcessor_Limiters(t *testing.T) {
	proc := NewBatchProcessor(&stubAuditor{}, 2, logging.NewNop())
	limited := NewRateLimitedProcessor(proc, 1, 1, logging.NewNop())

	es := limited.GetESLimiter()
	db := limited.GetDBLimiter()
	require.NotNil(t, es)
	require.NotNil(t, db)

	// Each limiter carries its own burst of one.
	assert.True(t, es.Allow())
	assert.False(t, es.Allow())
	assert.True(t, db.Allow())
	assert.False(t, db.Allow())
}
