// Package config loads service configuration from an optional YAML file
// overlaid with environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Default configuration values.
const (
	defaultServiceName     = "combo-engine"
	defaultServiceVersion  = "1.0.0"
	defaultServicePort     = 8085
	defaultConcurrency     = 10
	defaultBatchLimit      = 100
	defaultESWriteRPS      = 50
	defaultDBWriteRPS      = 200
	defaultDBHost          = "localhost"
	defaultDBPort          = 5432
	defaultDBUser          = "postgres"
	defaultDBName          = "combo_engine"
	defaultDBSSLMode       = "disable"
	defaultDBMaxConns      = 25
	defaultDBMaxIdleConns  = 5
	defaultDBConnLifetime  = 5 * time.Minute
	defaultESIndexPrefix   = "aso_audits"
	defaultESTimeoutSec    = 30
	defaultLogLevel        = "info"
	defaultLogFormat       = "json"
	defaultMaxCombos       = 5000
	defaultNoiseThreshold  = 0.6
	defaultIndexRPS        = 50
	defaultHistoryPageSize = 20
)

// Config holds all configuration for the combo-engine service.
type Config struct {
	Service       ServiceConfig       `yaml:"service"`
	Database      DatabaseConfig      `yaml:"database"`
	Elasticsearch ElasticsearchConfig `yaml:"elasticsearch"`
	Logging       LoggingConfig       `yaml:"logging"`
	Engine        EngineConfig        `yaml:"engine"`
}

// ServiceConfig holds service-level configuration. ESWriteRPS and DBWriteRPS
// throttle batch fan-out into the audit index and the history table.
type ServiceConfig struct {
	Name            string `yaml:"name"`
	Version         string `yaml:"version"`
	Port            int    `yaml:"port"`
	Debug           bool   `yaml:"debug"`
	Concurrency     int    `yaml:"concurrency"`
	BatchLimit      int    `yaml:"batch_limit"`
	HistoryPageSize int    `yaml:"history_page_size"`
	ESWriteRPS      int    `yaml:"es_write_rps"`
	DBWriteRPS      int    `yaml:"db_write_rps"`
}

// DatabaseConfig holds database configuration.
type DatabaseConfig struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	User            string        `yaml:"user"`
	Password        string        `yaml:"password"`
	Database        string        `yaml:"database"`
	SSLMode         string        `yaml:"sslmode"`
	MaxConnections  int           `yaml:"max_connections"`
	MaxIdleConns    int           `yaml:"max_idle_connections"`
	ConnMaxLifetime time.Duration `yaml:"connection_max_lifetime"`
}

// ElasticsearchConfig holds Elasticsearch configuration. Elasticsearch is
// optional: an empty URL disables audit indexing.
type ElasticsearchConfig struct {
	URL         string        `yaml:"url"`
	Username    string        `yaml:"username"`
	Password    string        `yaml:"password"`
	IndexPrefix string        `yaml:"index_prefix"`
	Timeout     time.Duration `yaml:"timeout"`
	IndexRPS    int           `yaml:"index_rps"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// EngineConfig holds the engine defaults applied when neither the vertical
// rule set nor the request overrides them.
type EngineConfig struct {
	MaxCombos      int      `yaml:"max_combos"`
	NoiseThreshold float64  `yaml:"noise_threshold"`
	Stopwords      []string `yaml:"stopwords"`
	KeywordPool    []string `yaml:"keyword_pool"`
}

// Load reads the optional YAML file at path (skipped when empty or absent),
// applies environment overrides, then fills remaining defaults.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
			// Optional file; env and defaults carry the config.
		case err != nil:
			return nil, fmt.Errorf("read config file %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config file %s: %w", path, err)
			}
		}
	}

	applyEnv(cfg)
	setDefaults(cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	setString(&cfg.Service.Name, "SERVICE_NAME")
	setInt(&cfg.Service.Port, "COMBO_ENGINE_PORT")
	setBool(&cfg.Service.Debug, "APP_DEBUG")
	setInt(&cfg.Service.Concurrency, "COMBO_ENGINE_CONCURRENCY")
	setInt(&cfg.Service.ESWriteRPS, "COMBO_ENGINE_ES_WRITE_RPS")
	setInt(&cfg.Service.DBWriteRPS, "COMBO_ENGINE_DB_WRITE_RPS")

	setString(&cfg.Database.Host, "POSTGRES_HOST")
	setInt(&cfg.Database.Port, "POSTGRES_PORT")
	setString(&cfg.Database.User, "POSTGRES_USER")
	setString(&cfg.Database.Password, "POSTGRES_PASSWORD")
	setString(&cfg.Database.Database, "POSTGRES_DB")
	setString(&cfg.Database.SSLMode, "POSTGRES_SSLMODE")

	setString(&cfg.Elasticsearch.URL, "ELASTICSEARCH_URL")
	setString(&cfg.Elasticsearch.Username, "ELASTICSEARCH_USERNAME")
	setString(&cfg.Elasticsearch.Password, "ELASTICSEARCH_PASSWORD")

	setString(&cfg.Logging.Level, "LOG_LEVEL")
	setString(&cfg.Logging.Format, "LOG_FORMAT")

	setInt(&cfg.Engine.MaxCombos, "ENGINE_MAX_COMBOS")
	setFloat(&cfg.Engine.NoiseThreshold, "ENGINE_NOISE_THRESHOLD")
}

func setDefaults(cfg *Config) {
	s := &cfg.Service
	if s.Name == "" {
		s.Name = defaultServiceName
	}
	if s.Version == "" {
		s.Version = defaultServiceVersion
	}
	if s.Port == 0 {
		s.Port = defaultServicePort
	}
	if s.Concurrency == 0 {
		s.Concurrency = defaultConcurrency
	}
	if s.BatchLimit == 0 {
		s.BatchLimit = defaultBatchLimit
	}
	if s.HistoryPageSize == 0 {
		s.HistoryPageSize = defaultHistoryPageSize
	}
	if s.ESWriteRPS == 0 {
		s.ESWriteRPS = defaultESWriteRPS
	}
	if s.DBWriteRPS == 0 {
		s.DBWriteRPS = defaultDBWriteRPS
	}

	d := &cfg.Database
	if d.Host == "" {
		d.Host = defaultDBHost
	}
	if d.Port == 0 {
		d.Port = defaultDBPort
	}
	if d.User == "" {
		d.User = defaultDBUser
	}
	if d.Database == "" {
		d.Database = defaultDBName
	}
	if d.SSLMode == "" {
		d.SSLMode = defaultDBSSLMode
	}
	if d.MaxConnections == 0 {
		d.MaxConnections = defaultDBMaxConns
	}
	if d.MaxIdleConns == 0 {
		d.MaxIdleConns = defaultDBMaxIdleConns
	}
	if d.ConnMaxLifetime == 0 {
		d.ConnMaxLifetime = defaultDBConnLifetime
	}

	e := &cfg.Elasticsearch
	if e.IndexPrefix == "" {
		e.IndexPrefix = defaultESIndexPrefix
	}
	if e.Timeout == 0 {
		e.Timeout = defaultESTimeoutSec * time.Second
	}
	if e.IndexRPS == 0 {
		e.IndexRPS = defaultIndexRPS
	}

	l := &cfg.Logging
	if l.Level == "" {
		l.Level = defaultLogLevel
	}
	if l.Format == "" {
		l.Format = defaultLogFormat
	}

	en := &cfg.Engine
	if en.MaxCombos == 0 {
		en.MaxCombos = defaultMaxCombos
	}
	if en.NoiseThreshold == 0 {
		en.NoiseThreshold = defaultNoiseThreshold
	}
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v, ok := os.LookupEnv(key); ok {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setFloat(dst *float64, key string) {
	if v, ok := os.LookupEnv(key); ok {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}

func setBool(dst *bool, key string) {
	if v, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}
