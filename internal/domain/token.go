package domain

// TokenSource identifies which metadata element a token came from.
type TokenSource string

// Token sources.
const (
	TokenSourceTitle    TokenSource = "title"
	TokenSourceSubtitle TokenSource = "subtitle"
	TokenSourceKeywords TokenSource = "keywords"
)

// Token is a single normalized word extracted from a metadata element.
// Tokens are immutable once produced; Position is the zero-based index
// within the filtered (post-stopword) sequence of its element.
type Token struct {
	Text       string      `json:"text"`
	Source     TokenSource `json:"source"`
	Position   int         `json:"position"`
	IsStopword bool        `json:"is_stopword"`
}
