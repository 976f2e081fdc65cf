// Package telemetry provides OpenTelemetry instrumentation for the
// combo-engine service. It exports Prometheus metrics and provides tracing
// capabilities.
package telemetry

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const serviceName = "combo-engine"

// Metrics holds all combo-engine Prometheus metrics.
type Metrics struct {
	// Audit metrics
	AuditsProcessed  *prometheus.CounterVec
	AuditsFailed     *prometheus.CounterVec
	AuditDuration    prometheus.Histogram
	CombosGenerated  prometheus.Histogram
	CoveragePct      prometheus.Histogram
	CapacityExceeded prometheus.Counter
	TierAssigned     *prometheus.CounterVec

	// Batch metrics
	BatchSize     prometheus.Histogram
	ActiveWorkers prometheus.Gauge

	// Storage metrics
	AuditsIndexed prometheus.Counter
	IndexFailures prometheus.Counter
}

// Provider wraps telemetry providers.
type Provider struct {
	Tracer  trace.Tracer
	Metrics *Metrics
}

// NewProvider initializes telemetry with Prometheus metrics.
func NewProvider() *Provider {
	return &Provider{
		Tracer:  otel.Tracer(serviceName),
		Metrics: initMetrics(),
	}
}

// Handler returns the Prometheus HTTP handler for the /metrics endpoint.
func (p *Provider) Handler() http.Handler {
	return promhttp.Handler()
}

func initMetrics() *Metrics {
	m := &Metrics{}
	initAuditMetrics(m)
	initBatchMetrics(m)
	initStorageMetrics(m)
	return m
}

func initAuditMetrics(m *Metrics) {
	m.AuditsProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "combo_engine_audits_processed_total",
		Help: "Total audits evaluated, by vertical",
	}, []string{"vertical"})

	m.AuditsFailed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "combo_engine_audits_failed_total",
		Help: "Total audits that failed, by error code",
	}, []string{"error_code"})

	m.AuditDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "combo_engine_audit_duration_seconds",
		Help:    "Time to evaluate a single audit",
		Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0},
	})

	m.CombosGenerated = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "combo_engine_combos_generated",
		Help:    "Candidate combos generated per audit",
		Buckets: []float64{10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
	})

	m.CoveragePct = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "combo_engine_coverage_pct",
		Help:    "Coverage percentage per audit",
		Buckets: []float64{0, 10, 25, 50, 75, 90, 100},
	})

	m.CapacityExceeded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "combo_engine_capacity_exceeded_total",
		Help: "Audits rejected because the candidate ceiling was exceeded",
	})

	m.TierAssigned = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "combo_engine_tier_assigned_total",
		Help: "Combos classified, by strength tier",
	}, []string{"tier"})
}

func initBatchMetrics(m *Metrics) {
	m.BatchSize = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "combo_engine_batch_size",
		Help:    "Number of audits per batch request",
		Buckets: []float64{1, 5, 10, 25, 50, 100},
	})

	m.ActiveWorkers = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "combo_engine_active_workers",
		Help: "Currently active batch worker goroutines",
	})
}

func initStorageMetrics(m *Metrics) {
	m.AuditsIndexed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "combo_engine_audits_indexed_total",
		Help: "Audit results indexed into Elasticsearch",
	})

	m.IndexFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "combo_engine_index_failures_total",
		Help: "Audit results that failed to index",
	})
}

// RecordAudit records a completed audit evaluation.
func (p *Provider) RecordAudit(_ context.Context, vertical string, duration time.Duration, combos, coveragePct int) {
	if vertical == "" {
		vertical = "default"
	}
	p.Metrics.AuditsProcessed.WithLabelValues(vertical).Inc()
	p.Metrics.AuditDuration.Observe(duration.Seconds())
	p.Metrics.CombosGenerated.Observe(float64(combos))
	p.Metrics.CoveragePct.Observe(float64(coveragePct))
}

// RecordAuditFailure records a failed audit by error code.
func (p *Provider) RecordAuditFailure(_ context.Context, errorCode string) {
	p.Metrics.AuditsFailed.WithLabelValues(errorCode).Inc()
}

// RecordCapacityExceeded counts a rejected oversized candidate set.
func (p *Provider) RecordCapacityExceeded(_ context.Context) {
	p.Metrics.CapacityExceeded.Inc()
}

// RecordTier counts one combo classification by tier.
func (p *Provider) RecordTier(_ context.Context, tier string) {
	p.Metrics.TierAssigned.WithLabelValues(tier).Inc()
}

// RecordBatchSize records the size of a batch request.
func (p *Provider) RecordBatchSize(size int) {
	p.Metrics.BatchSize.Observe(float64(size))
}

// SetActiveWorkers updates the active worker gauge.
func (p *Provider) SetActiveWorkers(count int) {
	p.Metrics.ActiveWorkers.Set(float64(count))
}

// RecordAuditIndexed counts a successful Elasticsearch index operation.
func (p *Provider) RecordAuditIndexed(_ context.Context, success bool) {
	if success {
		p.Metrics.AuditsIndexed.Inc()
		return
	}
	p.Metrics.IndexFailures.Inc()
}

// StartSpan starts a new trace span with optional attributes.
func (p *Provider) StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return p.Tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}
