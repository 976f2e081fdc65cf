package mappings

// AuditResultMapping represents the Elasticsearch mapping for audit results
type AuditResultMapping struct {
	Settings AuditResultSettings `json:"settings"`
	Mappings AuditResultMappings `json:"mappings"`
}

// AuditResultSettings defines index-level settings
type AuditResultSettings struct {
	BaseSettings
}

// AuditResultMappings defines the field mappings for audit results
type AuditResultMappings struct {
	Properties AuditResultProperties `json:"properties"`
}

// AuditResultProperties defines the properties for each field in the audit
// result mapping. Combos are nested so per-combo tier and score queries
// stay scoped to a single combo.
type AuditResultProperties struct {
	// Identity
	AppID    Field `json:"app_id"`
	Vertical Field `json:"vertical"`

	// Audited elements
	Title    Field `json:"title"`
	Subtitle Field `json:"subtitle"`

	// Classified combos
	Combos Field `json:"combos"`

	// Coverage summary
	Stats            Field `json:"stats"`
	StatsByBrandType Field `json:"stats_by_brand_type"`

	// Run metadata
	EngineVersion    Field `json:"engine_version"`
	ProcessingTimeMs Field `json:"processing_time_ms"`
	AuditedAt        Field `json:"audited_at"`
}

// NewAuditResultMapping creates a new audit result mapping with default settings
func NewAuditResultMapping() *AuditResultMapping {
	return &AuditResultMapping{
		Settings: AuditResultSettings{
			BaseSettings: DefaultSettings(),
		},
		Mappings: AuditResultMappings{
			Properties: AuditResultProperties{
				AppID: Field{
					Type: "keyword",
				},
				Vertical: Field{
					Type: "keyword",
				},
				Title: Field{
					Type:     "text",
					Analyzer: "standard",
				},
				Subtitle: Field{
					Type:     "text",
					Analyzer: "standard",
				},
				Combos: Field{
					Type: "nested",
					Properties: map[string]Field{
						"text":           {Type: "keyword"},
						"strength_tier":  {Type: "keyword"},
						"strength_score": {Type: "integer"},
						"source":         {Type: "keyword"},
						"brand_tag":      {Type: "keyword"},
						"priority_score": {Type: "float"},
						"exists":         {Type: "boolean"},
						"is_noise":       {Type: "boolean"},
					},
				},
				Stats: Field{
					Type: "object",
				},
				StatsByBrandType: Field{
					Type: "object",
				},
				EngineVersion: Field{
					Type: "keyword",
				},
				ProcessingTimeMs: Field{
					Type: "long",
				},
				AuditedAt: Field{
					Type:   "date",
					Format: "strict_date_optional_time||epoch_millis",
				},
			},
		},
	}
}

// GetJSON returns the audit result mapping as a JSON string
func (m *AuditResultMapping) GetJSON() (string, error) {
	return ToJSON(m)
}

// Validate validates the audit result mapping configuration
func (m *AuditResultMapping) Validate() error {
	return ValidateSettings(m.Settings.BaseSettings)
}
