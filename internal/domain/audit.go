package domain

import "time"

// AuditRequest is one audit evaluation over an app's metadata elements.
// Alias lists and the keyword pool override the vertical rule set when
// present; otherwise the rule set (or engine defaults) apply.
type AuditRequest struct {
	AppID    string `json:"app_id"`
	Vertical string `json:"vertical,omitempty"`
	Title    string `json:"title"`
	Subtitle string `json:"subtitle"`

	BrandAliases      []string `json:"brand_aliases,omitempty"`
	CompetitorAliases []string `json:"competitor_aliases,omitempty"`
	KeywordPool       []string `json:"keyword_pool,omitempty"`

	// Candidates are caller-supplied combos (target search phrases) to
	// classify alongside the generated set. Words absent from every
	// element classify as missing, which is what makes coverage
	// percentages meaningful against a target list.
	Candidates []string `json:"candidates,omitempty"`
}

// CoverageStats summarizes existence coverage over one classified combo set.
type CoverageStats struct {
	TotalPossible int          `json:"total_possible"`
	Existing      int          `json:"existing"`
	Missing       int          `json:"missing"`
	CoveragePct   int          `json:"coverage_pct"`
	TierCounts    map[Tier]int `json:"tier_counts"`
}

// BrandTypeStats carries the coverage histogram computed over all combos and
// restricted to the generic and brand partitions. Competitor-tagged combos
// are excluded from both sub-breakdowns.
type BrandTypeStats struct {
	All     CoverageStats `json:"all"`
	Generic CoverageStats `json:"generic"`
	Brand   CoverageStats `json:"brand"`
}

// AuditResult is the engine's full output for one (title, subtitle) pair.
// It is a plain serializable structure with no behavior attached, safe to
// cache and diff across edits. The engine itself fills only deterministic
// fields; timing and timestamps are stamped by the service layer so that
// identical inputs produce byte-identical engine output.
type AuditResult struct {
	AppID    string `json:"app_id"`
	Vertical string `json:"vertical,omitempty"`
	Title    string `json:"title"`
	Subtitle string `json:"subtitle"`

	TitleTokens    []Token `json:"title_tokens"`
	SubtitleTokens []Token `json:"subtitle_tokens"`

	Combos           []Combo        `json:"combos"`
	Stats            CoverageStats  `json:"stats"`
	StatsByBrandType BrandTypeStats `json:"stats_by_brand_type"`

	EngineVersion    string    `json:"engine_version"`
	ProcessingTimeMs int64     `json:"processing_time_ms,omitempty"`
	AuditedAt        time.Time `json:"audited_at,omitempty"`
}

// AuditRecord is the audit-trail row persisted for every completed run.
type AuditRecord struct {
	ID               int64     `db:"id"                 json:"id"`
	AppID            string    `db:"app_id"             json:"app_id"`
	Vertical         string    `db:"vertical"           json:"vertical,omitempty"`
	Title            string    `db:"title"              json:"title"`
	Subtitle         string    `db:"subtitle"           json:"subtitle"`
	TotalPossible    int       `db:"total_possible"     json:"total_possible"`
	Existing         int       `db:"existing"           json:"existing"`
	Missing          int       `db:"missing"            json:"missing"`
	CoveragePct      int       `db:"coverage_pct"       json:"coverage_pct"`
	EngineVersion    string    `db:"engine_version"     json:"engine_version"`
	ProcessingTimeMs int64     `db:"processing_time_ms" json:"processing_time_ms"`
	AuditedAt        time.Time `db:"audited_at"         json:"audited_at"`
}
