package engine

import (
	"math"

	"github.com/asolytics/combo-engine/internal/domain"
)

// Priority factor constants.
const (
	// Default factor weights: relevance 30%, length 25%, hybrid 20%,
	// novelty 15%, noise-inverse 10%.
	defaultRelevanceWeight    = 0.30
	defaultLengthWeight       = 0.25
	defaultHybridWeight       = 0.20
	defaultNoveltyWeight      = 0.15
	defaultNoiseInverseWeight = 0.10

	// Length factor: 3-word combos are the long-tail sweet spot.
	lengthFactorThreeWords = 1.0
	lengthFactorTwoWords   = 0.7
	lengthFactorFourWords  = 0.4

	// Hybrid factor: brand+generic mixes beat pure-brand or pure-generic.
	hybridFactorMixed = 1.0
	hybridFactorPure  = 0.4

	// Novelty factor by provenance.
	noveltyFactorCross       = 1.0
	noveltyFactorMissing     = 0.5
	noveltyFactorSameElement = 0.2

	// Relevance when no vertical keyword weights are configured.
	neutralRelevance = 0.5

	maxPriorityScore = 100
)

// PriorityWeights holds the factor weights of the composite priority score.
// Weights are normalized before scoring, so any non-negative configuration
// keeps scores within [0,100].
type PriorityWeights struct {
	Relevance    float64
	Length       float64
	Hybrid       float64
	Novelty      float64
	NoiseInverse float64
}

// DefaultPriorityWeights returns the built-in factor weights.
func DefaultPriorityWeights() PriorityWeights {
	return PriorityWeights{
		Relevance:    defaultRelevanceWeight,
		Length:       defaultLengthWeight,
		Hybrid:       defaultHybridWeight,
		Novelty:      defaultNoveltyWeight,
		NoiseInverse: defaultNoiseInverseWeight,
	}
}

// merge overlays rule-set weights (by factor key) onto w.
func (w PriorityWeights) merge(overrides map[string]float64) PriorityWeights {
	for key, value := range overrides {
		if value < 0 {
			continue
		}
		switch key {
		case domain.WeightRelevance:
			w.Relevance = value
		case domain.WeightLength:
			w.Length = value
		case domain.WeightHybrid:
			w.Hybrid = value
		case domain.WeightNovelty:
			w.Novelty = value
		case domain.WeightNoiseInverse:
			w.NoiseInverse = value
		}
	}
	return w
}

func (w PriorityWeights) sum() float64 {
	return w.Relevance + w.Length + w.Hybrid + w.Novelty + w.NoiseInverse
}

// PriorityScorer computes the composite 0-100 priority score per combo.
type PriorityScorer struct {
	weights   PriorityWeights
	relevance map[string]float64
	brand     *AliasMatcher
}

// NewPriorityScorer creates a scorer. relevanceKeywords maps vertical
// keywords to weights in [0,1]; an empty map scores every combo at the
// neutral relevance. brandAliases feed the hybrid factor.
func NewPriorityScorer(weights PriorityWeights, relevanceKeywords map[string]float64, brandAliases []string) *PriorityScorer {
	if weights.sum() <= 0 {
		weights = DefaultPriorityWeights()
	}
	return &PriorityScorer{
		weights:   weights,
		relevance: relevanceKeywords,
		brand:     NewAliasMatcher(brandAliases),
	}
}

// Score fills the combo's priority score and factor breakdown. Factors are
// retained alongside the score for transparency.
func (p *PriorityScorer) Score(combo *domain.Combo) {
	factors := domain.PriorityFactors{
		Relevance:    p.relevanceFactor(combo.Keywords),
		Length:       lengthFactor(combo.Length),
		Hybrid:       p.hybridFactor(combo.Keywords),
		Novelty:      noveltyFactor(combo.StrengthTier),
		NoiseInverse: clamp01(1 - combo.NoiseConfidence),
	}

	total := p.weights.sum()
	weighted := p.weights.Relevance*factors.Relevance +
		p.weights.Length*factors.Length +
		p.weights.Hybrid*factors.Hybrid +
		p.weights.Novelty*factors.Novelty +
		p.weights.NoiseInverse*factors.NoiseInverse

	combo.PriorityFactors = factors
	combo.PriorityScore = math.Round(maxPriorityScore * weighted / total)
}

// relevanceFactor averages the configured keyword weights over the combo's
// words; unknown words contribute zero. Without configured weights every
// combo is neutrally relevant.
func (p *PriorityScorer) relevanceFactor(words []string) float64 {
	if len(p.relevance) == 0 || len(words) == 0 {
		return neutralRelevance
	}
	sum := 0.0
	for _, w := range words {
		sum += clamp01(p.relevance[w])
	}
	return sum / float64(len(words))
}

// hybridFactor rewards combos mixing a brand word with a generic word.
func (p *PriorityScorer) hybridFactor(words []string) float64 {
	if p.brand.Empty() {
		return hybridFactorPure
	}
	brandWords := 0
	for _, w := range words {
		if _, ok := p.brand.Match(w); ok {
			brandWords++
		}
	}
	if brandWords >= 1 && brandWords < len(words) {
		return hybridFactorMixed
	}
	return hybridFactorPure
}

func lengthFactor(length int) float64 {
	switch length {
	case 3:
		return lengthFactorThreeWords
	case 2:
		return lengthFactorTwoWords
	default:
		return lengthFactorFourWords
	}
}

// noveltyFactor favors combos not trivially derivable from a single element.
func noveltyFactor(tier domain.Tier) float64 {
	switch tier {
	case domain.TierCrossElement, domain.TierTitleKeywordsCross,
		domain.TierKeywordsSubtitleCross, domain.TierThreeWayCross:
		return noveltyFactorCross
	case domain.TierMissing:
		return noveltyFactorMissing
	default:
		return noveltyFactorSameElement
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
