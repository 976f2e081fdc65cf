package engine

import (
	"strings"
	"unicode"

	ahocorasick "github.com/cloudflare/ahocorasick"

	"github.com/asolytics/combo-engine/internal/domain"
)

// AliasMatcher matches configured aliases against combo text in a single
// Aho-Corasick pass, with word-boundary verification so "art" does not match
// inside "smart". Aliases are normalized (lowercased, trimmed, deduplicated)
// at construction; malformed lists are cleaned rather than rejected.
type AliasMatcher struct {
	matcher *ahocorasick.Matcher
	aliases []string
}

// NewAliasMatcher builds a matcher over the alias list. An empty list yields
// a matcher that never matches.
func NewAliasMatcher(aliases []string) *AliasMatcher {
	normalized := make([]string, 0, len(aliases))
	seen := make(map[string]struct{}, len(aliases))
	for _, alias := range aliases {
		alias = strings.ToLower(strings.TrimSpace(alias))
		if alias == "" {
			continue
		}
		if _, dup := seen[alias]; dup {
			continue
		}
		seen[alias] = struct{}{}
		normalized = append(normalized, alias)
	}

	m := &AliasMatcher{aliases: normalized}
	if len(normalized) > 0 {
		m.matcher = ahocorasick.NewStringMatcher(normalized)
	}
	return m
}

// Match returns the first configured alias appearing as a whole word (or
// whole phrase) in text, in alias configuration order.
func (m *AliasMatcher) Match(text string) (string, bool) {
	if m.matcher == nil || text == "" {
		return "", false
	}

	hits := m.matcher.Match([]byte(text))
	if len(hits) == 0 {
		return "", false
	}

	// The automaton reports substring hits; keep only whole-word matches,
	// preferring the earliest configured alias for determinism.
	best := -1
	for _, hit := range hits {
		if hit >= len(m.aliases) {
			continue
		}
		if !wholeWordMatch(text, m.aliases[hit]) {
			continue
		}
		if best == -1 || hit < best {
			best = hit
		}
	}
	if best == -1 {
		return "", false
	}
	return m.aliases[best], true
}

// Empty reports whether the matcher has no configured aliases.
func (m *AliasMatcher) Empty() bool {
	return len(m.aliases) == 0
}

// wholeWordMatch reports whether alias occurs in text bounded by
// non-alphanumeric runes (or the string edges) on both sides.
func wholeWordMatch(text, alias string) bool {
	for start := 0; ; {
		idx := strings.Index(text[start:], alias)
		if idx < 0 {
			return false
		}
		idx += start
		end := idx + len(alias)

		leftOK := idx == 0 || !isWordRune(rune(text[idx-1]))
		rightOK := end == len(text) || !isWordRune(rune(text[end]))
		if leftOK && rightOK {
			return true
		}
		start = idx + 1
	}
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

// BrandClassifier tags combos as brand, competitor, or generic using two
// distinct alias lists. Brand aliases win over competitor aliases when both
// match.
type BrandClassifier struct {
	brand      *AliasMatcher
	competitor *AliasMatcher
}

// NewBrandClassifier creates a brand classifier from the two alias lists.
func NewBrandClassifier(brandAliases, competitorAliases []string) *BrandClassifier {
	return &BrandClassifier{
		brand:      NewAliasMatcher(brandAliases),
		competitor: NewAliasMatcher(competitorAliases),
	}
}

// Classify returns the brand tag for a combo's text plus the matched alias
// when one applied.
func (b *BrandClassifier) Classify(comboText string) (domain.BrandTag, string) {
	if alias, ok := b.brand.Match(comboText); ok {
		return domain.BrandTagBrand, alias
	}
	if alias, ok := b.competitor.Match(comboText); ok {
		return domain.BrandTagCompetitor, alias
	}
	return domain.BrandTagGeneric, ""
}

// ContainsBrandWord reports whether any single word of the combo matches a
// brand alias. Used by the priority scorer's hybrid factor.
func (b *BrandClassifier) ContainsBrandWord(word string) bool {
	_, ok := b.brand.Match(word)
	return ok
}
