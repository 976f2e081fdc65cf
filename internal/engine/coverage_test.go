package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/asolytics/combo-engine/internal/domain"
)

func coverageCombo(tier domain.Tier, tag domain.BrandTag) domain.Combo {
	return domain.Combo{
		StrengthTier:  tier,
		StrengthScore: tier.Score(),
		Exists:        tier != domain.TierMissing,
		BrandTag:      tag,
	}
}

func TestAggregate(t *testing.T) {
	combos := []domain.Combo{
		coverageCombo(domain.TierTitleConsecutive, domain.BrandTagBrand),
		coverageCombo(domain.TierCrossElement, domain.BrandTagGeneric),
		coverageCombo(domain.TierCrossElement, domain.BrandTagGeneric),
		coverageCombo(domain.TierMissing, domain.BrandTagGeneric),
		coverageCombo(domain.TierMissing, domain.BrandTagCompetitor),
	}

	stats := Aggregate(combos)

	assert.Equal(t, 5, stats.All.TotalPossible)
	assert.Equal(t, 3, stats.All.Existing)
	assert.Equal(t, 2, stats.All.Missing)
	assert.Equal(t, 60, stats.All.CoveragePct)

	assert.Equal(t, 1, stats.All.TierCounts[domain.TierTitleConsecutive])
	assert.Equal(t, 2, stats.All.TierCounts[domain.TierCrossElement])
	assert.Equal(t, 2, stats.All.TierCounts[domain.TierMissing])

	// Generic partition excludes the brand and competitor combos.
	assert.Equal(t, 3, stats.Generic.TotalPossible)
	assert.Equal(t, 2, stats.Generic.Existing)
	assert.Equal(t, 67, stats.Generic.CoveragePct)

	// Brand partition holds only the brand combo.
	assert.Equal(t, 1, stats.Brand.TotalPossible)
	assert.Equal(t, 1, stats.Brand.Existing)
	assert.Equal(t, 100, stats.Brand.CoveragePct)

	// Competitor combos are excluded from both sub-breakdowns.
	assert.LessOrEqual(t,
		stats.Generic.TotalPossible+stats.Brand.TotalPossible,
		stats.All.TotalPossible)
}

func TestAggregate_Empty(t *testing.T) {
	stats := Aggregate(nil)

	assert.Equal(t, 0, stats.All.TotalPossible)
	assert.Equal(t, 0, stats.All.CoveragePct, "no divide by zero on empty sets")

	// Every tier key is present even at zero.
	assert.Len(t, stats.All.TierCounts, len(domain.AllTiers))
	for _, tier := range domain.AllTiers {
		count, ok := stats.All.TierCounts[tier]
		assert.True(t, ok, "tier %s missing from histogram", tier)
		assert.Zero(t, count)
	}
}

func TestAggregate_CoverageIdentity(t *testing.T) {
	combos := []domain.Combo{
		coverageCombo(domain.TierSubtitleConsecutive, domain.BrandTagGeneric),
		coverageCombo(domain.TierMissing, domain.BrandTagGeneric),
		coverageCombo(domain.TierThreeWayCross, domain.BrandTagBrand),
	}

	stats := Aggregate(combos)

	for _, s := range []domain.CoverageStats{stats.All, stats.Generic, stats.Brand} {
		assert.Equal(t, s.TotalPossible, s.Existing+s.Missing)
	}
}
