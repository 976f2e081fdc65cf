// Package engine implements the keyword combination coverage and
// classification engine: tokenization, combo generation, tier and brand
// classification, priority scoring, and coverage aggregation. The engine is
// a pure, deterministic function of its inputs and configuration.
package engine

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/asolytics/combo-engine/internal/domain"
)

// minTokenLength is the shortest word kept by the tokenizer.
const minTokenLength = 2

// Tokenizer normalizes raw metadata text into ordered, source-tagged tokens.
type Tokenizer struct {
	stopwords map[string]struct{}
}

// NewTokenizer creates a tokenizer. An empty stopword list selects the
// built-in default set; a non-empty list replaces it entirely.
func NewTokenizer(stopwords []string) *Tokenizer {
	if len(stopwords) == 0 {
		stopwords = defaultStopwords
	}
	set := make(map[string]struct{}, len(stopwords))
	for _, w := range stopwords {
		w = strings.ToLower(strings.TrimSpace(w))
		if w == "" {
			continue
		}
		set[w] = struct{}{}
	}
	return &Tokenizer{stopwords: set}
}

// Tokenize normalizes text and emits the filtered token sequence for one
// metadata element. Empty input yields an empty (non-nil) slice; positions
// are zero-based within the filtered sequence.
func (t *Tokenizer) Tokenize(text string, source domain.TokenSource) []domain.Token {
	words := normalizeWords(text)
	tokens := make([]domain.Token, 0, len(words))
	for _, w := range words {
		if len([]rune(w)) < minTokenLength {
			continue
		}
		if t.IsStopword(w) {
			continue
		}
		tokens = append(tokens, domain.Token{
			Text:     w,
			Source:   source,
			Position: len(tokens),
		})
	}
	return tokens
}

// TokenizePool tokenizes each keyword-pool entry and concatenates the
// results into a single deduplicated sequence, positions renumbered over the
// combined pool.
func (t *Tokenizer) TokenizePool(entries []string) []domain.Token {
	tokens := make([]domain.Token, 0, len(entries))
	seen := make(map[string]struct{}, len(entries))
	for _, entry := range entries {
		for _, tok := range t.Tokenize(entry, domain.TokenSourceKeywords) {
			if _, dup := seen[tok.Text]; dup {
				continue
			}
			seen[tok.Text] = struct{}{}
			tok.Position = len(tokens)
			tokens = append(tokens, tok)
		}
	}
	return tokens
}

// IsStopword reports whether the (already lowercased) word is in the
// configured stopword set.
func (t *Tokenizer) IsStopword(word string) bool {
	_, ok := t.stopwords[word]
	return ok
}

// normalizeWords lowercases, folds accents, strips punctuation except
// internal hyphens, and splits on whitespace.
func normalizeWords(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	text = foldAccents(strings.ToLower(text))

	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		case r == '-':
			b.WriteRune(r)
		default:
			b.WriteRune(' ')
		}
	}

	raw := strings.Fields(b.String())
	words := make([]string, 0, len(raw))
	for _, w := range raw {
		w = strings.Trim(w, "-")
		if w != "" {
			words = append(words, w)
		}
	}
	return words
}

// foldAccents strips combining marks so "café" and "cafe" tokenize
// identically. The transformer is stateful, so build one per call.
func foldAccents(text string) string {
	fold := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(fold, text)
	if err != nil {
		return text
	}
	return folded
}
