package engine

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/asolytics/combo-engine/internal/domain"
	"github.com/asolytics/combo-engine/internal/logging"
)

func newTestEngine(cfg Config) *Engine {
	return New(cfg, logging.NewNop())
}

func findCombo(t *testing.T, combos []domain.Combo, text string) domain.Combo {
	t.Helper()
	for _, c := range combos {
		if c.Text == text {
			return c
		}
	}
	t.Fatalf("combo %q not found", text)
	return domain.Combo{}
}

func hasComboText(combos []domain.Combo, text string) bool {
	for _, c := range combos {
		if c.Text == text {
			return true
		}
	}
	return false
}

func TestEngine_AuditScenarioLanguageLearning(t *testing.T) {
	eng := newTestEngine(Config{BrandAliases: []string{"pimsleur"}})

	result, err := eng.Audit(context.Background(), &domain.AuditRequest{
		AppID:      "app-1",
		Title:      "Pimsleur Language Learning",
		Subtitle:   "Learn Spanish French More",
		Candidates: []string{"spanish german"},
	}, nil)
	require.NoError(t, err)

	top := findCombo(t, result.Combos, "pimsleur language")
	assert.Equal(t, domain.TierTitleConsecutive, top.StrengthTier)
	assert.Equal(t, 100, top.StrengthScore)
	assert.True(t, top.IsConsecutive)
	assert.Equal(t, domain.BrandTagBrand, top.BrandTag)

	cross := findCombo(t, result.Combos, "language learn")
	assert.Equal(t, domain.TierCrossElement, cross.StrengthTier)
	assert.Equal(t, 70, cross.StrengthScore)
	assert.Equal(t, domain.ComboSourceBoth, cross.Source)

	missing := findCombo(t, result.Combos, "spanish german")
	assert.Equal(t, domain.TierMissing, missing.StrengthTier)
	assert.Equal(t, 0, missing.StrengthScore)
	assert.False(t, missing.Exists)
}

func TestEngine_AuditSuppliedCandidates(t *testing.T) {
	eng := newTestEngine(Config{KeywordPool: []string{"german"}})

	result, err := eng.Audit(context.Background(), &domain.AuditRequest{
		Title:    "Pimsleur Language Learning",
		Subtitle: "Learn Spanish French More",
		Candidates: []string{
			"Spanish German",        // normalized, already generated via the pool
			"german klingon",        // klingon appears nowhere: missing
			"language",              // single word: dropped
			"one two three four five", // over the cap: dropped
		},
	}, nil)
	require.NoError(t, err)

	// "german" is pool-only, "spanish" subtitle-only: a pool/subtitle split.
	combo := findCombo(t, result.Combos, "spanish german")
	assert.Equal(t, domain.TierKeywordsSubtitleCross, combo.StrengthTier)

	missing := findCombo(t, result.Combos, "german klingon")
	assert.Equal(t, domain.TierMissing, missing.StrengthTier)
	assert.False(t, missing.Exists)

	assert.False(t, hasComboText(result.Combos, "language"))
	assert.False(t, hasComboText(result.Combos, "one two three four five"))

	// Supplied duplicates never inflate the totals.
	seen := make(map[string]struct{})
	for _, c := range result.Combos {
		_, dup := seen[c.Text]
		require.False(t, dup, "duplicate combo %q", c.Text)
		seen[c.Text] = struct{}{}
	}
	assert.Greater(t, result.Stats.Missing, 0)
}

func TestEngine_AuditDeterminism(t *testing.T) {
	cfg := Config{
		BrandAliases:      []string{"pimsleur"},
		CompetitorAliases: []string{"duolingo"},
		KeywordPool:       []string{"spanish lessons", "audio course"},
	}
	req := &domain.AuditRequest{
		AppID:    "app-1",
		Title:    "Pimsleur Language Learning",
		Subtitle: "Learn Spanish French More",
	}

	first, err := newTestEngine(cfg).Audit(context.Background(), req, nil)
	require.NoError(t, err)
	second, err := newTestEngine(cfg).Audit(context.Background(), req, nil)
	require.NoError(t, err)

	firstJSON, err := json.Marshal(first)
	require.NoError(t, err)
	secondJSON, err := json.Marshal(second)
	require.NoError(t, err)
	assert.Equal(t, firstJSON, secondJSON, "identical inputs must produce byte-identical output")
}

func TestEngine_AuditNoSharedTokensNoPool(t *testing.T) {
	eng := newTestEngine(Config{})

	result, err := eng.Audit(context.Background(), &domain.AuditRequest{
		Title:    "Photo Editor Pro",
		Subtitle: "Collage Maker Filters",
	}, nil)
	require.NoError(t, err)

	// Without a keyword pool, pool-involving tiers cannot appear.
	counts := result.Stats.TierCounts
	assert.Zero(t, counts[domain.TierTitleKeywordsCross])
	assert.Zero(t, counts[domain.TierKeywordsSubtitleCross])
	assert.Zero(t, counts[domain.TierKeywordsConsecutive])
	assert.Zero(t, counts[domain.TierKeywordsNonConsecutive])
	assert.Zero(t, counts[domain.TierThreeWayCross])

	// Pairs drawing one word from each element are genuine cross splits.
	cross := findCombo(t, result.Combos, "photo collage")
	assert.Equal(t, domain.TierCrossElement, cross.StrengthTier)
}

func TestEngine_AuditEmptyTitle(t *testing.T) {
	eng := newTestEngine(Config{})

	result, err := eng.Audit(context.Background(), &domain.AuditRequest{
		Title:    "",
		Subtitle: "Learn Spanish French More",
	}, nil)
	require.NoError(t, err)
	require.NotEmpty(t, result.Combos)

	allowed := map[domain.Tier]struct{}{
		domain.TierSubtitleConsecutive:    {},
		domain.TierSubtitleNonConsecutive: {},
		domain.TierMissing:                {},
	}
	for _, combo := range result.Combos {
		_, ok := allowed[combo.StrengthTier]
		assert.True(t, ok, "combo %q got tier %s from an empty title", combo.Text, combo.StrengthTier)
	}
}

func TestEngine_AuditEmptyInputs(t *testing.T) {
	eng := newTestEngine(Config{})

	result, err := eng.Audit(context.Background(), &domain.AuditRequest{}, nil)
	require.NoError(t, err)

	assert.Empty(t, result.Combos)
	assert.Equal(t, 0, result.Stats.TotalPossible)
	assert.Equal(t, 0, result.Stats.CoveragePct)
	assert.Equal(t, Version, result.EngineVersion)
}

func TestEngine_AuditCapacityExceeded(t *testing.T) {
	eng := newTestEngine(Config{MaxCombos: 5})

	_, err := eng.Audit(context.Background(), &domain.AuditRequest{
		Title:    "alpha beta gamma delta",
		Subtitle: "epsilon zeta",
	}, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrCapacityExceeded)
}

func TestEngine_AuditCoverageIdentity(t *testing.T) {
	eng := newTestEngine(Config{})

	result, err := eng.Audit(context.Background(), &domain.AuditRequest{
		Title:    "Pimsleur Language Learning",
		Subtitle: "Learn Spanish French More",
	}, nil)
	require.NoError(t, err)

	stats := result.Stats
	assert.Equal(t, stats.TotalPossible, stats.Existing+stats.Missing)
	assert.Equal(t, len(result.Combos), stats.TotalPossible)

	// Every combo carries exactly one valid brand tag.
	for _, combo := range result.Combos {
		switch combo.BrandTag {
		case domain.BrandTagBrand, domain.BrandTagGeneric, domain.BrandTagCompetitor:
		default:
			t.Fatalf("combo %q has invalid brand tag %q", combo.Text, combo.BrandTag)
		}
	}
}

func TestEngine_AuditWithRuleSet(t *testing.T) {
	eng := newTestEngine(Config{})

	rs := &domain.VerticalRuleSet{
		Vertical:          "language_learning",
		BrandAliases:      []string{"pimsleur"},
		CompetitorAliases: []string{"duolingo"},
		RelevanceKeywords: map[string]float64{"language": 1.0, "spanish": 0.9},
		PriorityWeights:   map[string]float64{domain.WeightRelevance: 0.5},
		NoiseThreshold:    0.8,
	}

	result, err := eng.Audit(context.Background(), &domain.AuditRequest{
		Title:    "Pimsleur Language Learning",
		Subtitle: "Learn Spanish French More",
	}, rs)
	require.NoError(t, err)

	branded := findCombo(t, result.Combos, "pimsleur language")
	assert.Equal(t, domain.BrandTagBrand, branded.BrandTag)
	assert.Equal(t, "pimsleur", branded.MatchedAlias)

	// Rule-set relevance weights flow into the factors.
	assert.Greater(t, branded.PriorityFactors.Relevance, 0.0)

	for _, combo := range result.Combos {
		assert.GreaterOrEqual(t, combo.PriorityScore, 0.0)
		assert.LessOrEqual(t, combo.PriorityScore, 100.0)
	}
}

func TestEngine_AuditRequestOverrides(t *testing.T) {
	eng := newTestEngine(Config{BrandAliases: []string{"pimsleur"}})

	result, err := eng.Audit(context.Background(), &domain.AuditRequest{
		Title:        "Pimsleur Language Learning",
		Subtitle:     "Learn Spanish French More",
		BrandAliases: []string{"babbel"},
	}, nil)
	require.NoError(t, err)

	// Request aliases replace engine config: pimsleur is generic now.
	combo := findCombo(t, result.Combos, "pimsleur language")
	assert.Equal(t, domain.BrandTagGeneric, combo.BrandTag)
}

func TestEngine_AuditDuplicateTitleSubtitle(t *testing.T) {
	eng := newTestEngine(Config{})

	result, err := eng.Audit(context.Background(), &domain.AuditRequest{
		Title:    "Learn Spanish Fast",
		Subtitle: "Learn Spanish Fast",
	}, nil)
	require.NoError(t, err)

	// Identical elements still yield a valid result: title tiers win and
	// no combo text repeats.
	seen := make(map[string]struct{})
	for _, combo := range result.Combos {
		_, dup := seen[combo.Text]
		require.False(t, dup, "duplicate combo %q", combo.Text)
		seen[combo.Text] = struct{}{}
		assert.True(t, strings.HasPrefix(string(combo.StrengthTier), "title_") ||
			combo.StrengthTier == domain.TierMissing,
			"combo %q: want a title tier, got %s", combo.Text, combo.StrengthTier)
	}
}
