package engine

import (
	"github.com/asolytics/combo-engine/internal/domain"
)

// strengtheningSuggestions names the minimal edit that would lift a combo
// into a stronger tier. Advisory output only.
var strengtheningSuggestions = map[domain.Tier]string{
	domain.TierTitleNonConsecutive:   "make the words consecutive in the title",
	domain.TierTitleKeywordsCross:    "move the keyword-pool words into the title",
	domain.TierCrossElement:          "consolidate all words into the title",
	domain.TierKeywordsConsecutive:   "promote the phrase from the keyword pool to the title",
	domain.TierSubtitleConsecutive:   "promote the phrase from the subtitle to the title",
	domain.TierKeywordsSubtitleCross: "consolidate the words into a single element",
	domain.TierKeywordsNonConsecutive: "make the words consecutive in the keyword pool",
	domain.TierSubtitleNonConsecutive: "make the words consecutive in the subtitle",
	domain.TierThreeWayCross:          "consolidate the words into fewer elements",
}

// tierContext holds the positional sequences and membership sets the tier
// decision table evaluates against. Built once per audit.
type tierContext struct {
	titleSeq    []string
	subtitleSeq []string
	poolSeq     []string

	titleSet    map[string]struct{}
	subtitleSet map[string]struct{}
	poolSet     map[string]struct{}
}

func newTierContext(titleTokens, subtitleTokens, poolTokens []domain.Token) *tierContext {
	return &tierContext{
		titleSeq:    tokenTexts(titleTokens),
		subtitleSeq: tokenTexts(subtitleTokens),
		poolSeq:     tokenTexts(poolTokens),
		titleSet:    textSet(titleTokens),
		subtitleSet: textSet(subtitleTokens),
		poolSet:     textSet(poolTokens),
	}
}

// classify runs the fixed decision table over one candidate. Rules are
// evaluated strongest first; the first match wins. The rules are mutually
// exclusive by construction, so the order documents intent rather than
// breaking ties.
func (tc *tierContext) classify(cand domain.CandidateCombo) domain.Combo {
	combo := domain.Combo{
		Text:     cand.Text,
		Keywords: cand.Keywords,
		Length:   len(cand.Keywords),
	}

	words := cand.Keywords
	tier := domain.TierMissing
	consecutive := false

	inTitle := countIn(words, tc.titleSet)
	inSubtitle := countIn(words, tc.subtitleSet)
	inPool := countIn(words, tc.poolSet)
	n := len(words)

	switch {
	// 1. Contiguous run in the title.
	case consecutiveIn(tc.titleSeq, words):
		tier = domain.TierTitleConsecutive
		consecutive = true

	// 2. All words in the title, scattered.
	case inTitle == n:
		tier = domain.TierTitleNonConsecutive

	// 3. Title words completed by keyword-pool words that the subtitle
	// does not supply.
	case inTitle >= 1 && remainderCoveredBy(words, tc.titleSet, tc.poolSet, tc.subtitleSet):
		tier = domain.TierTitleKeywordsCross

	// 4. Split across title and subtitle: each element contributes a word
	// the other does not hold.
	case splitAcross(words, tc.titleSet, tc.subtitleSet):
		tier = domain.TierCrossElement

	// 5. Contiguous run in the keyword pool.
	case consecutiveIn(tc.poolSeq, words):
		tier = domain.TierKeywordsConsecutive
		consecutive = true

	// 6. Contiguous run in the subtitle.
	case consecutiveIn(tc.subtitleSeq, words):
		tier = domain.TierSubtitleConsecutive
		consecutive = true

	// 7. Split across keyword pool and subtitle.
	case splitAcross(words, tc.poolSet, tc.subtitleSet):
		tier = domain.TierKeywordsSubtitleCross

	// 8. All words in the keyword pool, scattered.
	case inPool == n:
		tier = domain.TierKeywordsNonConsecutive

	// 9. All words in the subtitle, scattered.
	case inSubtitle == n:
		tier = domain.TierSubtitleNonConsecutive

	// 10. Three distinct sources all contributing.
	case inTitle >= 1 && inSubtitle >= 1 && inPool >= 1 &&
		coveredByUnion(words, tc.titleSet, tc.subtitleSet, tc.poolSet):
		tier = domain.TierThreeWayCross
	}

	combo.StrengthTier = tier
	combo.StrengthScore = tier.Score()
	combo.Exists = tier != domain.TierMissing
	combo.IsConsecutive = consecutive
	combo.Source = tierSource(tier)

	if suggestion, ok := strengtheningSuggestions[tier]; ok {
		combo.CanStrengthen = true
		combo.StrengtheningSuggestion = suggestion
	}
	return combo
}

// tierSource maps a tier to the combo's provenance tag.
func tierSource(tier domain.Tier) domain.ComboSource {
	switch tier {
	case domain.TierTitleConsecutive, domain.TierTitleNonConsecutive:
		return domain.ComboSourceTitle
	case domain.TierSubtitleConsecutive, domain.TierSubtitleNonConsecutive:
		return domain.ComboSourceSubtitle
	case domain.TierKeywordsConsecutive, domain.TierKeywordsNonConsecutive:
		return domain.ComboSourceKeywords
	case domain.TierCrossElement:
		return domain.ComboSourceBoth
	case domain.TierTitleKeywordsCross, domain.TierKeywordsSubtitleCross, domain.TierThreeWayCross:
		return domain.ComboSourceCross
	default:
		return domain.ComboSourceMissing
	}
}

// consecutiveIn reports whether the combo's words form a contiguous window
// of the element's filtered token sequence. Window order is the element's
// own order; combo words are distinct, so a set comparison over the window
// is exact.
func consecutiveIn(seq []string, words []string) bool {
	n := len(words)
	if n == 0 || len(seq) < n {
		return false
	}
	want := make(map[string]struct{}, n)
	for _, w := range words {
		want[w] = struct{}{}
	}
	for start := 0; start+n <= len(seq); start++ {
		matched := 0
		window := make(map[string]struct{}, n)
		for _, w := range seq[start : start+n] {
			if _, ok := want[w]; !ok {
				break
			}
			if _, dup := window[w]; dup {
				break
			}
			window[w] = struct{}{}
			matched++
		}
		if matched == n {
			return true
		}
	}
	return false
}

// remainderCoveredBy reports whether every word outside primary is present
// in cover and absent from excluded, with at least one such remainder word.
func remainderCoveredBy(words []string, primary, cover, excluded map[string]struct{}) bool {
	remainder := 0
	for _, w := range words {
		if _, ok := primary[w]; ok {
			continue
		}
		if _, ok := cover[w]; !ok {
			return false
		}
		if _, ok := excluded[w]; ok {
			return false
		}
		remainder++
	}
	return remainder >= 1
}

// splitAcross reports whether the words are a genuine two-source split:
// every word is in a or b, at least one word is exclusive to a, and at
// least one is exclusive to b. Words both sources hold satisfy the cover
// but do not count as a contribution.
func splitAcross(words []string, a, b map[string]struct{}) bool {
	if !coveredByUnion(words, a, b) {
		return false
	}
	onlyA, onlyB := false, false
	for _, w := range words {
		_, inA := a[w]
		_, inB := b[w]
		if inA && !inB {
			onlyA = true
		}
		if inB && !inA {
			onlyB = true
		}
	}
	return onlyA && onlyB
}

// coveredByUnion reports whether every word appears in at least one set.
func coveredByUnion(words []string, sets ...map[string]struct{}) bool {
	for _, w := range words {
		found := false
		for _, set := range sets {
			if _, ok := set[w]; ok {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func countIn(words []string, set map[string]struct{}) int {
	count := 0
	for _, w := range words {
		if _, ok := set[w]; ok {
			count++
		}
	}
	return count
}

func tokenTexts(tokens []domain.Token) []string {
	texts := make([]string, len(tokens))
	for i, tok := range tokens {
		texts[i] = tok.Text
	}
	return texts
}

func textSet(tokens []domain.Token) map[string]struct{} {
	set := make(map[string]struct{}, len(tokens))
	for _, tok := range tokens {
		set[tok.Text] = struct{}{}
	}
	return set
}
