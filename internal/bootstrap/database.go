package bootstrap

import (
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/asolytics/combo-engine/internal/config"
	"github.com/asolytics/combo-engine/internal/database"
	"github.com/asolytics/combo-engine/internal/logging"
)

// DatabaseComponents holds the database connection and repositories.
type DatabaseComponents struct {
	DB          *sqlx.DB
	RuleSetRepo *database.RuleSetRepository
	HistoryRepo *database.AuditHistoryRepository
}

// SetupDatabase creates the database connection and repositories.
func SetupDatabase(cfg *config.Config, logger logging.Logger) (*DatabaseComponents, error) {
	dbConfig := database.Config{
		Host:            cfg.Database.Host,
		Port:            cfg.Database.Port,
		User:            cfg.Database.User,
		Password:        cfg.Database.Password,
		DBName:          cfg.Database.Database,
		SSLMode:         cfg.Database.SSLMode,
		MaxOpenConns:    cfg.Database.MaxConnections,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	}

	logger.Info("Connecting to PostgreSQL database",
		"host", dbConfig.Host,
		"port", dbConfig.Port,
		"database", dbConfig.DBName,
	)

	db, err := database.NewPostgresConnection(dbConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	logger.Info("Database connected successfully")

	return &DatabaseComponents{
		DB:          db,
		RuleSetRepo: database.NewRuleSetRepository(db),
		HistoryRepo: database.NewAuditHistoryRepository(db),
	}, nil
}
