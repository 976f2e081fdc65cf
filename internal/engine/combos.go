package engine

import (
	"errors"
	"fmt"
	"strings"

	"github.com/asolytics/combo-engine/internal/domain"
)

// Combo length bounds. Combos outside this range are never generated; the
// deepest cross tier is a 3-way split, so 4 words is the hard cap.
const (
	MinComboLength = 2
	MaxComboLength = 4
)

// DefaultMaxCombos is the default ceiling on the candidate set size.
const DefaultMaxCombos = 5000

// ErrCapacityExceeded is returned when the token universe would generate
// more candidates than the configured ceiling. The engine surfaces this
// instead of truncating: a silently truncated candidate set would corrupt
// every coverage percentage downstream.
var ErrCapacityExceeded = errors.New("combo candidate set exceeds ceiling")

// Generator enumerates all 2-4 word combinations over the deduplicated
// union of the token sources.
type Generator struct {
	maxCombos int
}

// NewGenerator creates a generator with the given candidate ceiling
// (DefaultMaxCombos when zero or negative).
func NewGenerator(maxCombos int) *Generator {
	if maxCombos <= 0 {
		maxCombos = DefaultMaxCombos
	}
	return &Generator{maxCombos: maxCombos}
}

// Generate returns every combination of MinComboLength..MaxComboLength
// distinct token texts. Canonical word order inside a candidate is
// first-seen order over (title, subtitle, pool), so the output carries no
// duplicate Text values and is fully deterministic.
func (g *Generator) Generate(titleTokens, subtitleTokens, poolTokens []domain.Token) ([]domain.CandidateCombo, error) {
	universe := tokenUniverse(titleTokens, subtitleTokens, poolTokens)

	if total := CandidateCount(len(universe)); total > g.maxCombos {
		return nil, fmt.Errorf("%w: %d candidates from %d distinct tokens (ceiling %d)",
			ErrCapacityExceeded, total, len(universe), g.maxCombos)
	}

	combos := make([]domain.CandidateCombo, 0, CandidateCount(len(universe)))
	n := len(universe)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			combos = append(combos, newCandidate(universe[i], universe[j]))
			for k := j + 1; k < n; k++ {
				combos = append(combos, newCandidate(universe[i], universe[j], universe[k]))
				for l := k + 1; l < n; l++ {
					combos = append(combos, newCandidate(universe[i], universe[j], universe[k], universe[l]))
				}
			}
		}
	}
	return combos, nil
}

// MergeSupplied normalizes caller-supplied combo texts and appends the ones
// not already in the generated set. Entries outside the 2-4 word range are
// dropped rather than rejected. The ceiling applies to the merged set.
func (g *Generator) MergeSupplied(generated []domain.CandidateCombo, supplied []string, tok *Tokenizer) ([]domain.CandidateCombo, error) {
	if len(supplied) == 0 {
		return generated, nil
	}

	seen := make(map[string]struct{}, len(generated))
	for _, c := range generated {
		seen[c.Text] = struct{}{}
	}

	merged := generated
	for _, raw := range supplied {
		tokens := tok.Tokenize(raw, domain.TokenSourceKeywords)
		if len(tokens) < MinComboLength || len(tokens) > MaxComboLength {
			continue
		}
		cand := newCandidate(tokenTexts(tokens)...)
		if _, dup := seen[cand.Text]; dup {
			continue
		}
		seen[cand.Text] = struct{}{}
		merged = append(merged, cand)
	}

	if len(merged) > g.maxCombos {
		return nil, fmt.Errorf("%w: %d candidates after merging supplied combos (ceiling %d)",
			ErrCapacityExceeded, len(merged), g.maxCombos)
	}
	return merged, nil
}

// CandidateCount returns C(n,2)+C(n,3)+C(n,4), the candidate set size for a
// universe of n distinct token texts.
func CandidateCount(n int) int {
	c2 := n * (n - 1) / 2
	c3 := n * (n - 1) * (n - 2) / 6
	c4 := n * (n - 1) * (n - 2) * (n - 3) / 24
	return c2 + c3 + c4
}

func newCandidate(words ...string) domain.CandidateCombo {
	keywords := make([]string, len(words))
	copy(keywords, words)
	return domain.CandidateCombo{
		Text:     strings.Join(keywords, " "),
		Keywords: keywords,
	}
}

// tokenUniverse deduplicates token texts across sources, preserving
// first-seen order (title, then subtitle, then pool).
func tokenUniverse(sources ...[]domain.Token) []string {
	var universe []string
	seen := make(map[string]struct{})
	for _, tokens := range sources {
		for _, tok := range tokens {
			if _, dup := seen[tok.Text]; dup {
				continue
			}
			seen[tok.Text] = struct{}{}
			universe = append(universe, tok.Text)
		}
	}
	return universe
}
