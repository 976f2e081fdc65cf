package api

import (
	"github.com/asolytics/combo-engine/internal/database"
	"github.com/asolytics/combo-engine/internal/domain"
)

// AuditResponse represents a single audit response
type AuditResponse struct {
	Result *domain.AuditResult `json:"result,omitempty"`
	Error  string              `json:"error,omitempty"`
}

// BatchAuditRequest represents a batch audit request
type BatchAuditRequest struct {
	Requests []*domain.AuditRequest `json:"requests" binding:"required,min=1"`
}

// BatchAuditItem is one entry of a batch response, aligned with the request
// order.
type BatchAuditItem struct {
	AppID  string              `json:"app_id"`
	Result *domain.AuditResult `json:"result,omitempty"`
	Error  string              `json:"error,omitempty"`
}

// BatchAuditResponse represents a batch audit response
type BatchAuditResponse struct {
	Results []BatchAuditItem `json:"results"`
	Total   int              `json:"total"`
	Success int              `json:"success"`
	Failed  int              `json:"failed"`
}

// AuditHistoryResponse represents a paginated audit trail for one app.
type AuditHistoryResponse struct {
	AppID   string                `json:"app_id"`
	Audits  []*domain.AuditRecord `json:"audits"`
	Total   int                   `json:"total"`
	Page    int                   `json:"page"`
	PerPage int                   `json:"per_page"`
}

// RuleSetListResponse represents a list of vertical rule sets.
type RuleSetListResponse struct {
	RuleSets []*domain.VerticalRuleSet `json:"rule_sets"`
	Total    int                       `json:"total"`
}

// StatsResponse represents service-level audit statistics.
type StatsResponse struct {
	Stats     *database.AuditStats     `json:"stats,omitempty"`
	Verticals []*database.VerticalStat `json:"verticals"`
}
