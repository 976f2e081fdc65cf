package telemetry_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/asolytics/combo-engine/internal/telemetry"
)

// providerOnce ensures we only create one Provider per test run to avoid
// duplicate Prometheus metric registration errors from promauto's global
// registry.
var (
	testProvider *telemetry.Provider
	providerOnce sync.Once
)

func getTestProvider(t *testing.T) *telemetry.Provider {
	t.Helper()
	providerOnce.Do(func() {
		testProvider = telemetry.NewProvider()
	})
	return testProvider
}

func TestNewProvider(t *testing.T) {
	provider := getTestProvider(t)
	if provider == nil {
		t.Fatal("expected non-nil provider")
	}
	if provider.Tracer == nil {
		t.Error("expected non-nil tracer")
	}
	if provider.Metrics == nil {
		t.Error("expected non-nil metrics")
	}
}

func TestRecordAudit(t *testing.T) {
	provider := getTestProvider(t)
	ctx := context.Background()

	// Must not panic with or without a vertical label.
	provider.RecordAudit(ctx, "language_learning", 5*time.Millisecond, 120, 42)
	provider.RecordAudit(ctx, "", time.Millisecond, 0, 0)
	provider.RecordAuditFailure(ctx, "capacity_exceeded")
	provider.RecordCapacityExceeded(ctx)
	provider.RecordTier(ctx, "title_consecutive")
	provider.RecordBatchSize(10)
	provider.SetActiveWorkers(3)
	provider.RecordAuditIndexed(ctx, true)
	provider.RecordAuditIndexed(ctx, false)
}

func TestStartSpan(t *testing.T) {
	provider := getTestProvider(t)

	ctx, span := provider.StartSpan(context.Background(), "test-span")
	if ctx == nil {
		t.Error("expected non-nil context")
	}
	if span == nil {
		t.Error("expected non-nil span")
	}
	span.End()
}
