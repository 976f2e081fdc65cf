package engine

import (
	"math"

	"github.com/asolytics/combo-engine/internal/domain"
)

// Aggregate folds a classified combo set into the coverage triple: the full
// histogram, the generic-only partition, and the brand-only partition.
// Competitor-tagged combos appear only in All. Aggregation never re-derives
// tiers; it reads the classified fields as-is.
func Aggregate(combos []domain.Combo) domain.BrandTypeStats {
	return domain.BrandTypeStats{
		All:     aggregateSubset(combos, func(domain.Combo) bool { return true }),
		Generic: aggregateSubset(combos, func(c domain.Combo) bool { return c.BrandTag == domain.BrandTagGeneric }),
		Brand:   aggregateSubset(combos, func(c domain.Combo) bool { return c.BrandTag == domain.BrandTagBrand }),
	}
}

func aggregateSubset(combos []domain.Combo, include func(domain.Combo) bool) domain.CoverageStats {
	stats := domain.CoverageStats{
		TierCounts: make(map[domain.Tier]int, len(domain.AllTiers)),
	}
	for _, tier := range domain.AllTiers {
		stats.TierCounts[tier] = 0
	}

	for _, combo := range combos {
		if !include(combo) {
			continue
		}
		stats.TotalPossible++
		stats.TierCounts[combo.StrengthTier]++
		if combo.Exists {
			stats.Existing++
		}
	}

	stats.Missing = stats.TotalPossible - stats.Existing
	if stats.TotalPossible > 0 {
		stats.CoveragePct = int(math.Round(100 * float64(stats.Existing) / float64(stats.TotalPossible)))
	}
	return stats
}
