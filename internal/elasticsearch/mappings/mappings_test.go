package mappings

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAuditResultMapping(t *testing.T) {
	mapping := NewAuditResultMapping()

	require.NoError(t, mapping.Validate())
	assert.Equal(t, 1, mapping.Settings.NumberOfShards)

	raw, err := mapping.GetJSON()
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal([]byte(raw), &decoded))

	props := decoded["mappings"].(map[string]any)["properties"].(map[string]any)
	assert.Equal(t, "keyword", props["app_id"].(map[string]any)["type"])
	assert.Equal(t, "nested", props["combos"].(map[string]any)["type"])

	comboProps := props["combos"].(map[string]any)["properties"].(map[string]any)
	assert.Equal(t, "keyword", comboProps["strength_tier"].(map[string]any)["type"])
	assert.Equal(t, "date", props["audited_at"].(map[string]any)["type"])
}

func TestValidateSettings(t *testing.T) {
	assert.NoError(t, ValidateSettings(DefaultSettings()))
	assert.Error(t, ValidateSettings(BaseSettings{NumberOfShards: 0, NumberOfReplicas: 1}))
	assert.Error(t, ValidateSettings(BaseSettings{NumberOfShards: 1, NumberOfReplicas: -1}))
}
