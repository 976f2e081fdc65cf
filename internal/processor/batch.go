// Package processor runs audits in parallel using a worker pool. Concurrency
// lives here, outside the engine, which stays pure and single-request.
package processor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/asolytics/combo-engine/internal/domain"
)

// Logger defines the logging interface
type Logger interface {
	Debug(msg string, keysAndValues ...any)
	Info(msg string, keysAndValues ...any)
	Warn(msg string, keysAndValues ...any)
	Error(msg string, keysAndValues ...any)
}

// Auditor runs one audit end to end: rule-set resolution, engine evaluation,
// timing. The API layer supplies the implementation.
type Auditor interface {
	RunAudit(ctx context.Context, req *domain.AuditRequest) (*domain.AuditResult, error)
}

// ProcessResult holds the result of processing a single audit request.
// Results stay aligned with the request slice by index.
type ProcessResult struct {
	Request *domain.AuditRequest
	Result  *domain.AuditResult
	Error   error
}

// BatchProcessor processes multiple audit requests in parallel using a worker pool
type BatchProcessor struct {
	auditor     Auditor
	concurrency int
	logger      Logger
}

// NewBatchProcessor creates a new batch processor
func NewBatchProcessor(auditor Auditor, concurrency int, logger Logger) *BatchProcessor {
	if concurrency <= 0 {
		concurrency = 10 // Default concurrency
	}

	return &BatchProcessor{
		auditor:     auditor,
		concurrency: concurrency,
		logger:      logger,
	}
}

// Process runs a batch of audit requests through the worker pool. The returned
// slice is index-aligned with the input; per-request failures are carried in
// ProcessResult.Error rather than failing the batch.
func (b *BatchProcessor) Process(ctx context.Context, requests []*domain.AuditRequest) ([]*ProcessResult, error) {
	if len(requests) == 0 {
		return []*ProcessResult{}, nil
	}

	b.logger.Info("Starting batch processing",
		"batch_size", len(requests),
		"concurrency", b.concurrency,
	)

	startTime := time.Now()

	jobs := make(chan int, len(requests))
	results := make([]*ProcessResult, len(requests))

	var wg sync.WaitGroup
	for i := 0; i < b.concurrency; i++ {
		wg.Add(1)
		go b.worker(ctx, i, requests, jobs, results, &wg)
	}

	for i := range requests {
		jobs <- i
	}
	close(jobs)

	wg.Wait()

	duration := time.Since(startTime)
	successCount := 0
	errorCount := 0

	for i, result := range results {
		if result == nil {
			// Worker stopped before reaching this job.
			results[i] = &ProcessResult{
				Request: requests[i],
				Error:   ctx.Err(),
			}
			errorCount++
			continue
		}
		if result.Error == nil {
			successCount++
		} else {
			errorCount++
		}
	}

	b.logger.Info("Batch processing complete",
		"total", len(requests),
		"success", successCount,
		"errors", errorCount,
		"duration_ms", duration.Milliseconds(),
		"items_per_second", float64(len(requests))/duration.Seconds(),
	)

	return results, nil
}

// worker processes audit requests from the jobs channel
func (b *BatchProcessor) worker(
	ctx context.Context,
	id int,
	requests []*domain.AuditRequest,
	jobs <-chan int,
	results []*ProcessResult,
	wg *sync.WaitGroup,
) {
	defer wg.Done()

	b.logger.Debug("Worker started", "worker_id", id)

	for idx := range jobs {
		select {
		case <-ctx.Done():
			b.logger.Warn("Worker stopping due to context cancellation", "worker_id", id)
			return
		default:
		}

		results[idx] = b.processItem(ctx, requests[idx])
	}

	b.logger.Debug("Worker finished", "worker_id", id)
}

// processItem runs a single audit request
func (b *BatchProcessor) processItem(ctx context.Context, req *domain.AuditRequest) *ProcessResult {
	result := &ProcessResult{
		Request: req,
	}

	auditResult, err := b.auditor.RunAudit(ctx, req)
	if err != nil {
		result.Error = fmt.Errorf("audit failed: %w", err)
		b.logger.Error("Failed to audit app",
			"app_id", req.AppID,
			"error", err,
		)
		return result
	}

	result.Result = auditResult

	b.logger.Debug("Audit processed",
		"app_id", req.AppID,
		"combos", auditResult.Stats.TotalPossible,
		"coverage_pct", auditResult.Stats.CoveragePct,
	)

	return result
}

// GetStats returns statistics about the batch processor
func (b *BatchProcessor) GetStats() map[string]any {
	return map[string]any{
		"concurrency": b.concurrency,
	}
}

// SetConcurrency updates the worker pool concurrency
func (b *BatchProcessor) SetConcurrency(concurrency int) {
	if concurrency > 0 {
		b.concurrency = concurrency
		b.logger.Info("Concurrency updated", "new_concurrency", concurrency)
	}
}
