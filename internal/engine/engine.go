package engine

import (
	"context"
	"fmt"

	"github.com/asolytics/combo-engine/internal/domain"
	"github.com/asolytics/combo-engine/internal/logging"
)

// Version identifies the engine's classification semantics. Bumped whenever
// the decision table or scoring changes, so stored audits can be diffed
// against the version that produced them.
const Version = "1.2.0"

// Config is the immutable configuration for one engine instance. The same
// process can run engines for several verticals concurrently; nothing here
// is shared mutable state.
type Config struct {
	// Stopwords replaces the default stopword set when non-empty.
	Stopwords []string

	// BrandAliases and CompetitorAliases feed the brand classifier.
	BrandAliases      []string
	CompetitorAliases []string

	// KeywordPool is the generic keyword pool: a third token source
	// distinct from title and subtitle verbatim text.
	KeywordPool []string

	// NoiseThreshold marks combos as noise at or above this confidence
	// (DefaultNoiseThreshold when zero).
	NoiseThreshold float64

	// MaxCombos caps the candidate set size (DefaultMaxCombos when zero).
	MaxCombos int

	// Weights and RelevanceKeywords configure the priority scorer.
	Weights           PriorityWeights
	RelevanceKeywords map[string]float64
}

// ApplyRuleSet overlays a vertical rule set onto the config, returning a new
// config. Rule-set fields are consumed as opaque key->weight/threshold data.
func (c Config) ApplyRuleSet(rs *domain.VerticalRuleSet) Config {
	if rs == nil {
		return c
	}
	if len(rs.StopwordOverrides) > 0 {
		c.Stopwords = rs.StopwordOverrides
	}
	if len(rs.BrandAliases) > 0 {
		c.BrandAliases = rs.BrandAliases
	}
	if len(rs.CompetitorAliases) > 0 {
		c.CompetitorAliases = rs.CompetitorAliases
	}
	if rs.NoiseThreshold > 0 {
		c.NoiseThreshold = rs.NoiseThreshold
	}
	if len(rs.PriorityWeights) > 0 {
		if c.Weights.sum() <= 0 {
			c.Weights = DefaultPriorityWeights()
		}
		c.Weights = c.Weights.merge(rs.PriorityWeights)
	}
	if len(rs.RelevanceKeywords) > 0 {
		c.RelevanceKeywords = rs.RelevanceKeywords
	}
	return c
}

// applyRequest overlays per-request overrides onto the config.
func (c Config) applyRequest(req *domain.AuditRequest) Config {
	if req == nil {
		return c
	}
	if len(req.BrandAliases) > 0 {
		c.BrandAliases = req.BrandAliases
	}
	if len(req.CompetitorAliases) > 0 {
		c.CompetitorAliases = req.CompetitorAliases
	}
	if len(req.KeywordPool) > 0 {
		c.KeywordPool = req.KeywordPool
	}
	return c
}

// Engine runs the full audit pipeline: tokenize, generate, classify, tag,
// score, aggregate. Instances are immutable after construction and safe for
// concurrent use.
type Engine struct {
	cfg       Config
	tokenizer *Tokenizer
	generator *Generator
	brand     *BrandClassifier
	noise     *NoiseScorer
	scorer    *PriorityScorer
	logger    logging.Logger
}

// New creates an engine from the config.
func New(cfg Config, logger logging.Logger) *Engine {
	if logger == nil {
		logger = logging.NewNop()
	}
	tokenizer := NewTokenizer(cfg.Stopwords)
	return &Engine{
		cfg:       cfg,
		tokenizer: tokenizer,
		generator: NewGenerator(cfg.MaxCombos),
		brand:     NewBrandClassifier(cfg.BrandAliases, cfg.CompetitorAliases),
		noise:     NewNoiseScorer(tokenizer.IsStopword, cfg.NoiseThreshold),
		scorer:    NewPriorityScorer(cfg.Weights, cfg.RelevanceKeywords, cfg.BrandAliases),
		logger:    logger,
	}
}

// Audit evaluates one (title, subtitle) pair and returns the fresh,
// independent result graph. Optional rule-set configuration and per-request
// overrides are applied without mutating the engine. The only surfaced
// failure is ErrCapacityExceeded; every other edge case degrades to a valid
// (possibly empty) result.
func (e *Engine) Audit(ctx context.Context, req *domain.AuditRequest, rs *domain.VerticalRuleSet) (*domain.AuditResult, error) {
	if req == nil {
		req = &domain.AuditRequest{}
	}

	run := e
	if rs != nil || hasOverrides(req) {
		run = New(e.cfg.ApplyRuleSet(rs).applyRequest(req), e.logger)
	}

	titleTokens := run.tokenizer.Tokenize(req.Title, domain.TokenSourceTitle)
	subtitleTokens := run.tokenizer.Tokenize(req.Subtitle, domain.TokenSourceSubtitle)
	poolTokens := run.tokenizer.TokenizePool(run.cfg.KeywordPool)

	candidates, err := run.generator.Generate(titleTokens, subtitleTokens, poolTokens)
	if err != nil {
		return nil, fmt.Errorf("generate combos for app %q: %w", req.AppID, err)
	}
	candidates, err = run.generator.MergeSupplied(candidates, req.Candidates, run.tokenizer)
	if err != nil {
		return nil, fmt.Errorf("merge supplied combos for app %q: %w", req.AppID, err)
	}

	tc := newTierContext(titleTokens, subtitleTokens, poolTokens)
	combos := make([]domain.Combo, 0, len(candidates))
	for _, cand := range candidates {
		combo := tc.classify(cand)

		combo.BrandTag, combo.MatchedAlias = run.brand.Classify(combo.Text)
		combo.NoiseConfidence = run.noise.Confidence(combo.Keywords)
		combo.IsNoise = run.noise.IsNoise(combo.NoiseConfidence)
		run.scorer.Score(&combo)

		combos = append(combos, combo)
	}

	byBrandType := Aggregate(combos)

	run.logger.Debug("audit evaluated",
		"app_id", req.AppID,
		"title_tokens", len(titleTokens),
		"subtitle_tokens", len(subtitleTokens),
		"pool_tokens", len(poolTokens),
		"combos", len(combos),
		"coverage_pct", byBrandType.All.CoveragePct,
	)

	return &domain.AuditResult{
		AppID:            req.AppID,
		Vertical:         req.Vertical,
		Title:            req.Title,
		Subtitle:         req.Subtitle,
		TitleTokens:      titleTokens,
		SubtitleTokens:   subtitleTokens,
		Combos:           combos,
		Stats:            byBrandType.All,
		StatsByBrandType: byBrandType,
		EngineVersion:    Version,
	}, nil
}

func hasOverrides(req *domain.AuditRequest) bool {
	return len(req.BrandAliases) > 0 || len(req.CompetitorAliases) > 0 || len(req.KeywordPool) > 0
}
