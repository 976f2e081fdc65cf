package domain

import "time"

// Priority factor keys used in VerticalRuleSet.PriorityWeights. Unknown keys
// are ignored; absent keys fall back to the engine defaults.
const (
	WeightRelevance    = "relevance"
	WeightLength       = "length"
	WeightHybrid       = "hybrid"
	WeightNovelty      = "novelty"
	WeightNoiseInverse = "noise_inverse"
)

// VerticalRuleSet carries the per-vertical configuration the engine consumes
// as opaque key->weight/threshold data: priority weights, relevance keyword
// weights, alias lists, stopword overrides, and the noise threshold.
type VerticalRuleSet struct {
	ID                int                `db:"id"                 json:"id"`
	Vertical          string             `db:"vertical"           json:"vertical"`
	PriorityWeights   map[string]float64 `db:"priority_weights"   json:"priority_weights,omitempty"`
	RelevanceKeywords map[string]float64 `db:"relevance_keywords" json:"relevance_keywords,omitempty"`
	BrandAliases      []string           `db:"brand_aliases"      json:"brand_aliases,omitempty"`
	CompetitorAliases []string           `db:"competitor_aliases" json:"competitor_aliases,omitempty"`
	StopwordOverrides []string           `db:"stopword_overrides" json:"stopword_overrides,omitempty"`
	NoiseThreshold    float64            `db:"noise_threshold"    json:"noise_threshold"`
	Enabled           bool               `db:"enabled"            json:"enabled"`
	CreatedAt         time.Time          `db:"created_at"         json:"created_at"`
	UpdatedAt         time.Time          `db:"updated_at"         json:"updated_at"`
}
