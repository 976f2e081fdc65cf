package engine

// defaultStopwords contains the articles, conjunctions, and prepositions
// excluded from combo generation. Callers can replace the set per vertical
// through Config.Stopwords.
var defaultStopwords = []string{
	"a", "an", "the",
	"and", "or", "but", "nor", "so", "yet",
	"as", "at", "by", "for", "from", "in", "into", "of",
	"off", "on", "onto", "out", "over", "per", "to", "up", "with",
	"is", "are", "was", "were", "be", "been", "being",
	"it", "its", "this", "that", "these", "those",
	"your", "you", "my", "our", "their",
	"&", "+",
}
