package bootstrap

import (
	"context"

	es "github.com/elastic/go-elasticsearch/v8"

	"github.com/asolytics/combo-engine/internal/config"
	"github.com/asolytics/combo-engine/internal/logging"
	"github.com/asolytics/combo-engine/internal/storage"
)

// SetupElasticsearch creates the optional audit-result index storage.
// Returns nil if ES is not configured or unavailable (the service still runs;
// only the dashboard search index is lost).
func SetupElasticsearch(cfg *config.Config, logger logging.Logger) *storage.AuditStorage {
	if cfg.Elasticsearch.URL == "" {
		logger.Info("Elasticsearch not configured, audit indexing disabled")
		return nil
	}

	client, err := es.NewClient(es.Config{
		Addresses: []string{cfg.Elasticsearch.URL},
		Username:  cfg.Elasticsearch.Username,
		Password:  cfg.Elasticsearch.Password,
	})
	if err != nil {
		logger.Warn("Failed to create Elasticsearch client", "error", err)
		logger.Info("Audit indexing will not be available")
		return nil
	}

	auditStorage := storage.NewAuditStorage(client, cfg.Elasticsearch.IndexPrefix, cfg.Elasticsearch.IndexRPS)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Elasticsearch.Timeout)
	defer cancel()

	if err := auditStorage.TestConnection(ctx); err != nil {
		logger.Warn("Failed to verify Elasticsearch connection", "error", err)
		logger.Info("Audit indexing will not be available")
		return nil
	}

	logger.Info("Elasticsearch connected successfully", "index_prefix", cfg.Elasticsearch.IndexPrefix)
	return auditStorage
}
