// Package api exposes the audit engine over HTTP.
package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/asolytics/combo-engine/internal/database"
	"github.com/asolytics/combo-engine/internal/domain"
	"github.com/asolytics/combo-engine/internal/engine"
	"github.com/asolytics/combo-engine/internal/processor"
	"github.com/asolytics/combo-engine/internal/telemetry"
)

// Logger defines the logging interface
type Logger interface {
	Debug(msg string, keysAndValues ...any)
	Info(msg string, keysAndValues ...any)
	Warn(msg string, keysAndValues ...any)
	Error(msg string, keysAndValues ...any)
}

// RuleSetStore is the rule-set persistence the handler depends on.
type RuleSetStore interface {
	Create(ctx context.Context, rs *domain.VerticalRuleSet) error
	GetByID(ctx context.Context, id int) (*domain.VerticalRuleSet, error)
	GetByVertical(ctx context.Context, vertical string) (*domain.VerticalRuleSet, error)
	List(ctx context.Context, enabled *bool) ([]*domain.VerticalRuleSet, error)
	Update(ctx context.Context, rs *domain.VerticalRuleSet) error
	Delete(ctx context.Context, id int) error
}

// AuditHistoryStore is the audit-trail persistence the handler depends on.
type AuditHistoryStore interface {
	Create(ctx context.Context, rec *domain.AuditRecord) error
	ListByApp(ctx context.Context, appID string, limit, offset int) ([]*domain.AuditRecord, error)
	GetStats(ctx context.Context) (*database.AuditStats, error)
	GetVerticalStats(ctx context.Context) ([]*database.VerticalStat, error)
}

// AuditIndexer indexes full audit results for the dashboard. Optional.
type AuditIndexer interface {
	EnsureIndex(ctx context.Context, vertical string) error
	IndexAuditResult(ctx context.Context, result *domain.AuditResult) error
}

// HandlerConfig carries the service-level knobs the handler needs.
// ESWriteRPS and DBWriteRPS throttle batch fan-out; each audited app costs one
// index operation and one history insert.
type HandlerConfig struct {
	ServiceName     string
	ServiceVersion  string
	Concurrency     int
	BatchLimit      int
	HistoryPageSize int
	ESWriteRPS      int
	DBWriteRPS      int
}

// Handler handles HTTP requests for the audit API
type Handler struct {
	engine         *engine.Engine
	batchProcessor *processor.RateLimitedProcessor
	ruleSets       RuleSetStore
	history        AuditHistoryStore
	indexer        AuditIndexer
	telemetry      *telemetry.Provider
	cfg            HandlerConfig
	logger         Logger
}

// NewHandler creates a new API handler. indexer may be nil when Elasticsearch
// is not configured; history and ruleSets may be nil in engine-only mode.
func NewHandler(
	eng *engine.Engine,
	ruleSets RuleSetStore,
	history AuditHistoryStore,
	indexer AuditIndexer,
	tel *telemetry.Provider,
	cfg HandlerConfig,
	logger Logger,
) *Handler {
	if cfg.BatchLimit <= 0 {
		cfg.BatchLimit = 100
	}
	if cfg.HistoryPageSize <= 0 {
		cfg.HistoryPageSize = 20
	}

	h := &Handler{
		engine:    eng,
		ruleSets:  ruleSets,
		history:   history,
		indexer:   indexer,
		telemetry: tel,
		cfg:       cfg,
		logger:    logger,
	}
	h.batchProcessor = processor.NewRateLimitedProcessor(
		processor.NewBatchProcessor(h, cfg.Concurrency, logger),
		cfg.ESWriteRPS,
		cfg.DBWriteRPS,
		logger,
	)
	return h
}

// RunAudit executes one audit end to end: rule-set resolution, engine
// evaluation, timing, history persistence and optional indexing. It is the
// processor.Auditor implementation shared by the single and batch endpoints.
func (h *Handler) RunAudit(ctx context.Context, req *domain.AuditRequest) (*domain.AuditResult, error) {
	ctx, span := h.telemetry.StartSpan(ctx, "audit")
	defer span.End()

	ruleSet := h.resolveRuleSet(ctx, req.Vertical)

	start := time.Now()
	result, err := h.engine.Audit(ctx, req, ruleSet)
	duration := time.Since(start)
	if err != nil {
		if errors.Is(err, engine.ErrCapacityExceeded) {
			h.telemetry.RecordCapacityExceeded(ctx)
			h.telemetry.RecordAuditFailure(ctx, "capacity_exceeded")
		} else {
			h.telemetry.RecordAuditFailure(ctx, "engine_error")
		}
		return nil, err
	}

	result.ProcessingTimeMs = duration.Milliseconds()
	result.AuditedAt = time.Now().UTC()

	h.telemetry.RecordAudit(ctx, req.Vertical, duration, result.Stats.TotalPossible, result.Stats.CoveragePct)
	for tier, count := range result.Stats.TierCounts {
		for i := 0; i < count; i++ {
			h.telemetry.RecordTier(ctx, string(tier))
		}
	}

	h.recordHistory(ctx, result)
	h.indexResult(ctx, result)

	return result, nil
}

// resolveRuleSet loads the enabled rule set for a vertical. A missing rule
// set is not an error; the engine falls back to its defaults.
func (h *Handler) resolveRuleSet(ctx context.Context, vertical string) *domain.VerticalRuleSet {
	if vertical == "" || h.ruleSets == nil {
		return nil
	}

	ruleSet, err := h.ruleSets.GetByVertical(ctx, vertical)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			h.logger.Debug("No rule set for vertical, using defaults", "vertical", vertical)
		} else {
			h.logger.Warn("Failed to load rule set, using defaults", "vertical", vertical, "error", err)
		}
		return nil
	}

	return ruleSet
}

func (h *Handler) recordHistory(ctx context.Context, result *domain.AuditResult) {
	if h.history == nil {
		return
	}

	rec := &domain.AuditRecord{
		AppID:            result.AppID,
		Vertical:         result.Vertical,
		Title:            result.Title,
		Subtitle:         result.Subtitle,
		TotalPossible:    result.Stats.TotalPossible,
		Existing:         result.Stats.Existing,
		Missing:          result.Stats.Missing,
		CoveragePct:      result.Stats.CoveragePct,
		EngineVersion:    result.EngineVersion,
		ProcessingTimeMs: result.ProcessingTimeMs,
		AuditedAt:        result.AuditedAt,
	}
	if err := h.history.Create(ctx, rec); err != nil {
		// The audit result is still good; losing one trail row is recoverable.
		h.logger.Warn("Failed to record audit history", "app_id", result.AppID, "error", err)
	}
}

func (h *Handler) indexResult(ctx context.Context, result *domain.AuditResult) {
	if h.indexer == nil {
		return
	}

	if err := h.indexer.EnsureIndex(ctx, result.Vertical); err != nil {
		h.logger.Warn("Failed to ensure audit index", "vertical", result.Vertical, "error", err)
	}
	if err := h.indexer.IndexAuditResult(ctx, result); err != nil {
		h.logger.Warn("Failed to index audit result", "app_id", result.AppID, "error", err)
		h.telemetry.RecordAuditIndexed(ctx, false)
		return
	}
	h.telemetry.RecordAuditIndexed(ctx, true)
}

// Audit handles POST /api/v1/audit
func (h *Handler) Audit(c *gin.Context) {
	var req domain.AuditRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("Invalid audit request", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Title == "" && req.Subtitle == "" && len(req.KeywordPool) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "title, subtitle or keyword_pool is required"})
		return
	}

	h.logger.Info("Auditing app",
		"app_id", req.AppID,
		"vertical", req.Vertical,
	)

	result, err := h.RunAudit(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, engine.ErrCapacityExceeded) {
			h.logger.Warn("Audit rejected, candidate ceiling exceeded", "app_id", req.AppID)
			c.JSON(http.StatusUnprocessableEntity, AuditResponse{Error: err.Error()})
			return
		}
		h.logger.Error("Audit failed", "app_id", req.AppID, "error", err)
		c.JSON(http.StatusInternalServerError, AuditResponse{Error: err.Error()})
		return
	}

	h.logger.Info("App audited successfully",
		"app_id", result.AppID,
		"combos", result.Stats.TotalPossible,
		"coverage_pct", result.Stats.CoveragePct,
	)

	c.JSON(http.StatusOK, AuditResponse{Result: result})
}

// AuditBatch handles POST /api/v1/audit/batch
func (h *Handler) AuditBatch(c *gin.Context) {
	var req BatchAuditRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("Invalid batch audit request", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if len(req.Requests) > h.cfg.BatchLimit {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "batch size exceeds limit of " + strconv.Itoa(h.cfg.BatchLimit),
		})
		return
	}

	h.logger.Info("Batch auditing apps", "batch_size", len(req.Requests))
	h.telemetry.RecordBatchSize(len(req.Requests))

	results, err := h.batchProcessor.ProcessWithRateLimit(c.Request.Context(), req.Requests)
	if err != nil {
		h.logger.Error("Batch audit failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	items := make([]BatchAuditItem, len(results))
	success := 0
	failed := 0
	for i, result := range results {
		items[i] = BatchAuditItem{
			AppID:  result.Request.AppID,
			Result: result.Result,
		}
		if result.Error != nil {
			items[i].Error = result.Error.Error()
			failed++
		} else {
			success++
		}
	}

	h.logger.Info("Batch audit completed",
		"total", len(results),
		"success", success,
		"failed", failed,
	)

	c.JSON(http.StatusOK, BatchAuditResponse{
		Results: items,
		Total:   len(items),
		Success: success,
		Failed:  failed,
	})
}

// GetAuditHistory handles GET /api/v1/audits/:app_id
func (h *Handler) GetAuditHistory(c *gin.Context) {
	appID := c.Param("app_id")
	if appID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "app_id is required"})
		return
	}
	if h.history == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "audit history is not configured"})
		return
	}

	page := 1
	pageSize := h.cfg.HistoryPageSize
	if pageParam := c.Query("page"); pageParam != "" {
		if p, err := strconv.Atoi(pageParam); err == nil && p > 0 {
			page = p
		}
	}
	if sizeParam := c.Query("page_size"); sizeParam != "" {
		if s, err := strconv.Atoi(sizeParam); err == nil && s > 0 && s <= 100 {
			pageSize = s
		}
	}

	h.logger.Debug("Listing audit history", "app_id", appID, "page", page, "page_size", pageSize)

	records, err := h.history.ListByApp(c.Request.Context(), appID, pageSize, (page-1)*pageSize)
	if err != nil {
		h.logger.Error("Failed to list audit history", "app_id", appID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load audit history"})
		return
	}

	c.JSON(http.StatusOK, AuditHistoryResponse{
		AppID:   appID,
		Audits:  records,
		Total:   len(records),
		Page:    page,
		PerPage: pageSize,
	})
}

func (h *Handler) requireRuleSets(c *gin.Context) bool {
	if h.ruleSets == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "rule sets are not configured"})
		return false
	}
	return true
}

// ListRuleSets handles GET /api/v1/rulesets
func (h *Handler) ListRuleSets(c *gin.Context) {
	if !h.requireRuleSets(c) {
		return
	}

	h.logger.Debug("Listing vertical rule sets")

	var enabled *bool
	if enabledParam := c.Query("enabled"); enabledParam != "" {
		if b, err := strconv.ParseBool(enabledParam); err == nil {
			enabled = &b
		}
	}

	ruleSets, err := h.ruleSets.List(c.Request.Context(), enabled)
	if err != nil {
		h.logger.Error("Failed to list rule sets", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load rule sets"})
		return
	}

	h.logger.Info("Rule sets listed successfully", "count", len(ruleSets))

	c.JSON(http.StatusOK, RuleSetListResponse{
		RuleSets: ruleSets,
		Total:    len(ruleSets),
	})
}

// GetRuleSet handles GET /api/v1/rulesets/:id
func (h *Handler) GetRuleSet(c *gin.Context) {
	if !h.requireRuleSets(c) {
		return
	}
	id, ok := h.ruleSetID(c)
	if !ok {
		return
	}

	ruleSet, err := h.ruleSets.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Rule set not found"})
			return
		}
		h.logger.Error("Failed to get rule set", "id", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get rule set"})
		return
	}

	c.JSON(http.StatusOK, ruleSet)
}

// CreateRuleSet handles POST /api/v1/rulesets
func (h *Handler) CreateRuleSet(c *gin.Context) {
	if !h.requireRuleSets(c) {
		return
	}

	var req domain.VerticalRuleSet
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("Invalid create rule set request", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Vertical == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "vertical is required"})
		return
	}

	h.logger.Info("Creating rule set", "vertical", req.Vertical)

	if err := h.ruleSets.Create(c.Request.Context(), &req); err != nil {
		h.logger.Error("Failed to create rule set", "vertical", req.Vertical, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create rule set"})
		return
	}

	h.logger.Info("Rule set created successfully", "id", req.ID, "vertical", req.Vertical)

	c.JSON(http.StatusCreated, &req)
}

// UpdateRuleSet handles PUT /api/v1/rulesets/:id
func (h *Handler) UpdateRuleSet(c *gin.Context) {
	if !h.requireRuleSets(c) {
		return
	}
	id, ok := h.ruleSetID(c)
	if !ok {
		return
	}

	var req domain.VerticalRuleSet
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("Invalid update rule set request", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	req.ID = id

	h.logger.Info("Updating rule set", "id", id, "vertical", req.Vertical)

	if err := h.ruleSets.Update(c.Request.Context(), &req); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Rule set not found"})
			return
		}
		h.logger.Error("Failed to update rule set", "id", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update rule set"})
		return
	}

	h.logger.Info("Rule set updated successfully", "id", id, "vertical", req.Vertical)

	c.JSON(http.StatusOK, &req)
}

// DeleteRuleSet handles DELETE /api/v1/rulesets/:id
func (h *Handler) DeleteRuleSet(c *gin.Context) {
	if !h.requireRuleSets(c) {
		return
	}
	id, ok := h.ruleSetID(c)
	if !ok {
		return
	}

	h.logger.Info("Deleting rule set", "id", id)

	if err := h.ruleSets.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Rule set not found"})
			return
		}
		h.logger.Error("Failed to delete rule set", "id", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete rule set"})
		return
	}

	h.logger.Info("Rule set deleted successfully", "id", id)

	c.JSON(http.StatusOK, gin.H{"message": "Rule set deleted successfully"})
}

func (h *Handler) ruleSetID(c *gin.Context) (int, bool) {
	idStr := c.Param("id")
	id, err := strconv.Atoi(idStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid rule set ID"})
		return 0, false
	}
	return id, true
}

// GetStats handles GET /api/v1/stats
func (h *Handler) GetStats(c *gin.Context) {
	h.logger.Debug("Getting overall audit stats")

	if h.history == nil {
		c.JSON(http.StatusOK, StatsResponse{Verticals: []*database.VerticalStat{}})
		return
	}

	stats, err := h.history.GetStats(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to get stats", "error", err)
		// Return empty stats instead of error to avoid breaking dashboard
		c.JSON(http.StatusOK, StatsResponse{Verticals: []*database.VerticalStat{}})
		return
	}

	verticals, err := h.history.GetVerticalStats(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to get vertical stats", "error", err)
		verticals = []*database.VerticalStat{}
	}

	c.JSON(http.StatusOK, StatsResponse{
		Stats:     stats,
		Verticals: verticals,
	})
}

// HealthCheck handles GET /health
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":         "healthy",
		"service":        h.cfg.ServiceName,
		"version":        h.cfg.ServiceVersion,
		"engine_version": engine.Version,
	})
}

// ReadyCheck handles GET /ready
func (h *Handler) ReadyCheck(c *gin.Context) {
	checks := gin.H{}
	if h.history != nil || h.ruleSets != nil {
		checks["postgresql"] = "ok"
	}
	if h.indexer != nil {
		checks["elasticsearch"] = "ok"
	}
	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
		"checks": checks,
	})
}
