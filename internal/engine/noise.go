package engine

import "math"

// Noise scoring constants.
const (
	// DefaultNoiseThreshold marks a combo as noise when its confidence
	// reaches this value.
	DefaultNoiseThreshold = 0.6

	// minMeaningfulLength is the shortest word counted as meaningful.
	minMeaningfulLength = 3

	// lowSubstanceConfidence floors the confidence of combos with at most
	// one meaningful word.
	lowSubstanceConfidence = 0.9
)

// NoiseScorer derives the low-value signal for a combo: stopword-heavy or
// substance-poor combos are flagged so headline counts can exclude them
// without deleting them from the result set.
type NoiseScorer struct {
	isStopword func(string) bool
	threshold  float64
}

// NewNoiseScorer creates a noise scorer over the tokenizer's stopword
// predicate. A non-positive threshold selects DefaultNoiseThreshold.
func NewNoiseScorer(isStopword func(string) bool, threshold float64) *NoiseScorer {
	if threshold <= 0 {
		threshold = DefaultNoiseThreshold
	}
	return &NoiseScorer{isStopword: isStopword, threshold: threshold}
}

// Confidence returns the noise confidence in [0,1] for a combo's words:
// the stopword ratio, floored at lowSubstanceConfidence when at most one
// word is meaningful.
func (n *NoiseScorer) Confidence(words []string) float64 {
	if len(words) == 0 {
		return 1
	}

	stopwords := 0
	meaningful := 0
	for _, w := range words {
		switch {
		case n.isStopword(w):
			stopwords++
		case len([]rune(w)) >= minMeaningfulLength:
			meaningful++
		}
	}

	confidence := float64(stopwords) / float64(len(words))
	if meaningful <= 1 {
		confidence = math.Max(confidence, lowSubstanceConfidence)
	}
	return confidence
}

// IsNoise reports whether the confidence crosses the configured threshold.
func (n *NoiseScorer) IsNoise(confidence float64) bool {
	return confidence >= n.threshold
}

// Threshold returns the configured noise threshold.
func (n *NoiseScorer) Threshold() float64 {
	return n.threshold
}
