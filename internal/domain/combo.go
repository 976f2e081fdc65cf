package domain

// Tier is one of the mutually exclusive strength classifications describing
// where and how a combo appears across the audited metadata elements.
// The set is closed: classification is a flat decision table over these tags,
// and adding a tier is a deliberate change to that table.
type Tier string

// Strength tiers, strongest first. TierMissing is the non-appearance tag.
const (
	TierTitleConsecutive       Tier = "title_consecutive"
	TierTitleNonConsecutive    Tier = "title_non_consecutive"
	TierTitleKeywordsCross     Tier = "title_keywords_cross"
	TierCrossElement           Tier = "cross_element"
	TierKeywordsConsecutive    Tier = "keywords_consecutive"
	TierSubtitleConsecutive    Tier = "subtitle_consecutive"
	TierKeywordsSubtitleCross  Tier = "keywords_subtitle_cross"
	TierKeywordsNonConsecutive Tier = "keywords_non_consecutive"
	TierSubtitleNonConsecutive Tier = "subtitle_non_consecutive"
	TierThreeWayCross          Tier = "three_way_cross"
	TierMissing                Tier = "missing"
)

// AllTiers lists every tier in strength order. Aggregation iterates this
// slice so histograms always carry every key, including zero counts.
var AllTiers = []Tier{
	TierTitleConsecutive,
	TierTitleNonConsecutive,
	TierTitleKeywordsCross,
	TierCrossElement,
	TierKeywordsConsecutive,
	TierSubtitleConsecutive,
	TierKeywordsSubtitleCross,
	TierKeywordsNonConsecutive,
	TierSubtitleNonConsecutive,
	TierThreeWayCross,
	TierMissing,
}

// tierScores is the fixed strength score per tier. Tiers sharing a score
// remain distinct tags: the score expresses strength, the tag provenance.
var tierScores = map[Tier]int{
	TierTitleConsecutive:       100,
	TierTitleNonConsecutive:    85,
	TierTitleKeywordsCross:     85,
	TierCrossElement:           70,
	TierKeywordsConsecutive:    50,
	TierSubtitleConsecutive:    50,
	TierKeywordsSubtitleCross:  35,
	TierKeywordsNonConsecutive: 25,
	TierSubtitleNonConsecutive: 25,
	TierThreeWayCross:          15,
	TierMissing:                0,
}

// Score returns the fixed strength score for the tier (0 for unknown tags).
func (t Tier) Score() int {
	return tierScores[t]
}

// Valid reports whether t is one of the closed tier tags.
func (t Tier) Valid() bool {
	_, ok := tierScores[t]
	return ok
}

// ComboSource identifies where a combo's words were found.
type ComboSource string

// Combo sources.
const (
	ComboSourceTitle    ComboSource = "title"
	ComboSourceSubtitle ComboSource = "subtitle"
	ComboSourceKeywords ComboSource = "keywords"
	ComboSourceBoth     ComboSource = "both"
	ComboSourceCross    ComboSource = "cross"
	ComboSourceMissing  ComboSource = "missing"
)

// BrandTag classifies a combo by whose name it reflects. Orthogonal to the
// strength tier: a combo can be title_consecutive and brand at once.
type BrandTag string

// Brand tags.
const (
	BrandTagBrand      BrandTag = "brand"
	BrandTagGeneric    BrandTag = "generic"
	BrandTagCompetitor BrandTag = "competitor"
)

// CandidateCombo is a generated but not yet classified word combination.
// Keywords are in canonical (first-seen) order; Text is the space-joined
// identity key, unique within one candidate set.
type CandidateCombo struct {
	Text     string   `json:"text"`
	Keywords []string `json:"keywords"`
}

// PriorityFactors is the normalized [0,1] factor breakdown behind a combo's
// priority score, retained for transparency.
type PriorityFactors struct {
	Relevance    float64 `json:"relevance"`
	Length       float64 `json:"length"`
	Hybrid       float64 `json:"hybrid"`
	Novelty      float64 `json:"novelty"`
	NoiseInverse float64 `json:"noise_inverse"`
}

// Combo is a fully classified 2-4 word keyword combination.
type Combo struct {
	Text     string   `json:"text"`
	Keywords []string `json:"keywords"`
	Length   int      `json:"length"`

	// Existence and provenance
	Exists        bool        `json:"exists"`
	Source        ComboSource `json:"source"`
	StrengthTier  Tier        `json:"strength_tier"`
	StrengthScore int         `json:"strength_score"`
	IsConsecutive bool        `json:"is_consecutive"`

	// Brand classification
	BrandTag     BrandTag `json:"brand_tag"`
	MatchedAlias string   `json:"matched_alias,omitempty"`

	// Noise signal
	NoiseConfidence float64 `json:"noise_confidence"`
	IsNoise         bool    `json:"is_noise"`

	// Priority
	PriorityScore   float64         `json:"priority_score"`
	PriorityFactors PriorityFactors `json:"priority_factors"`

	// Advisory fields
	CanStrengthen           bool   `json:"can_strengthen"`
	StrengtheningSuggestion string `json:"strengthening_suggestion,omitempty"`
}
