package bootstrap

import (
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/asolytics/combo-engine/internal/api"
	"github.com/asolytics/combo-engine/internal/config"
	"github.com/asolytics/combo-engine/internal/engine"
	"github.com/asolytics/combo-engine/internal/logging"
	"github.com/asolytics/combo-engine/internal/telemetry"
)

const defaultHTTPTimeout = 30 * time.Second

// HTTPComponents holds all components needed for the HTTP server.
type HTTPComponents struct {
	DB        *sqlx.DB
	Handler   *api.Handler
	Server    *http.Server
	Telemetry *telemetry.Provider
}

// NewHTTPComponents creates all components for the HTTP server.
func NewHTTPComponents(cfg *config.Config, logger logging.Logger) (*HTTPComponents, error) {
	dbComps, err := SetupDatabase(cfg, logger)
	if err != nil {
		return nil, err
	}

	auditStorage := SetupElasticsearch(cfg, logger)

	eng := engine.New(engine.Config{
		Stopwords:      cfg.Engine.Stopwords,
		KeywordPool:    cfg.Engine.KeywordPool,
		NoiseThreshold: cfg.Engine.NoiseThreshold,
		MaxCombos:      cfg.Engine.MaxCombos,
	}, logger)
	logger.Info("Audit engine initialized",
		"engine_version", engine.Version,
		"max_combos", cfg.Engine.MaxCombos,
	)

	tel := telemetry.NewProvider()

	var indexer api.AuditIndexer
	if auditStorage != nil {
		indexer = auditStorage
	}

	handler := api.NewHandler(
		eng,
		dbComps.RuleSetRepo,
		dbComps.HistoryRepo,
		indexer,
		tel,
		api.HandlerConfig{
			ServiceName:     cfg.Service.Name,
			ServiceVersion:  cfg.Service.Version,
			Concurrency:     cfg.Service.Concurrency,
			BatchLimit:      cfg.Service.BatchLimit,
			HistoryPageSize: cfg.Service.HistoryPageSize,
			ESWriteRPS:      cfg.Service.ESWriteRPS,
			DBWriteRPS:      cfg.Service.DBWriteRPS,
		},
		logger,
	)

	server := api.NewServer(handler, tel.Handler(), api.ServerConfig{
		Port:         cfg.Service.Port,
		ReadTimeout:  defaultHTTPTimeout,
		WriteTimeout: defaultHTTPTimeout,
		Debug:        cfg.Service.Debug,
	})

	return &HTTPComponents{
		DB:        dbComps.DB,
		Handler:   handler,
		Server:    server,
		Telemetry: tel,
	}, nil
}

// HTTPShutdownTimeout returns the timeout for HTTP server graceful shutdown.
func HTTPShutdownTimeout() time.Duration {
	return defaultHTTPTimeout
}
