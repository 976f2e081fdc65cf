// Package mappings defines Elasticsearch index mappings as Go structures so
// they can be validated and versioned alongside the code that writes them.
package mappings

import (
	"encoding/json"
	"errors"
)

// BaseSettings defines common index-level settings
type BaseSettings struct {
	NumberOfShards   int `json:"number_of_shards"`
	NumberOfReplicas int `json:"number_of_replicas"`
}

// DefaultSettings returns the default index settings
func DefaultSettings() BaseSettings {
	return BaseSettings{
		NumberOfShards:   1,
		NumberOfReplicas: 1,
	}
}

// Field describes one property in an index mapping.
type Field struct {
	Type       string           `json:"type,omitempty"`
	Analyzer   string           `json:"analyzer,omitempty"`
	Format     string           `json:"format,omitempty"`
	Index      *bool            `json:"index,omitempty"`
	Properties map[string]Field `json:"properties,omitempty"`
}

// ToJSON serializes a mapping for the create-index API.
func ToJSON(mapping any) (string, error) {
	data, err := json.Marshal(mapping)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// ValidateSettings checks that index settings are sane.
func ValidateSettings(s BaseSettings) error {
	if s.NumberOfShards < 1 {
		return errors.New("number_of_shards must be at least 1")
	}
	if s.NumberOfReplicas < 0 {
		return errors.New("number_of_replicas must not be negative")
	}
	return nil
}
