package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/asolytics/combo-engine/internal/domain"
)

func TestTokenizer_Tokenize(t *testing.T) {
	tok := NewTokenizer(nil)

	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{
			name:  "lowercases and splits",
			input: "Pimsleur Language Learning",
			want:  []string{"pimsleur", "language", "learning"},
		},
		{
			name:  "drops stopwords",
			input: "Learn a Language with the App",
			want:  []string{"learn", "language", "app"},
		},
		{
			name:  "strips punctuation keeps internal hyphens",
			input: "Notes & To-Do Lists!",
			want:  []string{"notes", "to-do", "lists"},
		},
		{
			name:  "drops single character tokens",
			input: "A B Cd",
			want:  []string{"cd"},
		},
		{
			name:  "trims edge hyphens",
			input: "-draft- well-known",
			want:  []string{"draft", "well-known"},
		},
		{
			name:  "folds accents",
			input: "Café Français",
			want:  []string{"cafe", "francais"},
		},
		{
			name:  "collapses whitespace",
			input: "  spaced \t  out   words ",
			want:  []string{"spaced", "out", "words"},
		},
		{
			name:  "empty input",
			input: "",
			want:  []string{},
		},
		{
			name:  "whitespace only",
			input: "   \t\n ",
			want:  []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens := tok.Tokenize(tt.input, domain.TokenSourceTitle)

			texts := make([]string, len(tokens))
			for i, token := range tokens {
				texts[i] = token.Text
			}
			assert.Equal(t, tt.want, texts)

			for i, token := range tokens {
				assert.Equal(t, i, token.Position, "positions must index the filtered sequence")
				assert.Equal(t, domain.TokenSourceTitle, token.Source)
				assert.False(t, token.IsStopword)
			}
		})
	}
}

func TestTokenizer_StopwordOverride(t *testing.T) {
	tok := NewTokenizer([]string{"language"})

	tokens := tok.Tokenize("the language app", domain.TokenSourceSubtitle)

	// Override replaces the default set entirely: "the" survives now.
	texts := make([]string, len(tokens))
	for i, token := range tokens {
		texts[i] = token.Text
	}
	assert.Equal(t, []string{"the", "app"}, texts)
}

func TestTokenizer_TokenizePool(t *testing.T) {
	tok := NewTokenizer(nil)

	tokens := tok.TokenizePool([]string{"spanish lessons", "learn spanish", "French"})

	texts := make([]string, len(tokens))
	for i, token := range tokens {
		texts[i] = token.Text
		assert.Equal(t, domain.TokenSourceKeywords, token.Source)
		assert.Equal(t, i, token.Position)
	}
	// Duplicates across entries are dropped, first-seen order kept.
	assert.Equal(t, []string{"spanish", "lessons", "learn", "french"}, texts)
}
