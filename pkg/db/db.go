package db

import (
	"fmt"
	"os"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/doodlesbykumbi/seek-in-go/pkg/logging"
)

// Config holds database connection configuration
type Config struct {
	// URL is the database connection URL (defaults to DATABASE_URL env var)
	URL string
	// MaxOpenConns caps the pool, zero keeps the driver default
	MaxOpenConns int
	// ConnMaxLifetime recycles pooled connections, zero keeps them forever
	ConnMaxLifetime time.Duration
	// SlowThreshold is the query time above which queries are logged as slow
	SlowThreshold time.Duration
}

// Connect opens the catalog database. SQL goes through the logrus logger:
// every statement at debug level, slow ones as warnings otherwise.
func Connect(cfg Config) (*gorm.DB, error) {
	dbURL := cfg.URL
	if dbURL == "" {
		dbURL = URL()
	}
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is required")
	}

	db, err := gorm.Open(
		postgres.New(postgres.Config{
			DSN:                  dbURL,
			PreferSimpleProtocol: true,
		}),
		&gorm.Config{Logger: newLogger(cfg.SlowThreshold)},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if cfg.MaxOpenConns > 0 || cfg.ConnMaxLifetime > 0 {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to access connection pool: %w", err)
		}
		if cfg.MaxOpenConns > 0 {
			sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
		}
		if cfg.ConnMaxLifetime > 0 {
			sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
		}
	}

	return db, nil
}

func newLogger(slow time.Duration) logger.Interface {
	if slow <= 0 {
		slow = 500 * time.Millisecond
	}
	level := logger.Warn
	if logging.IsDebug() {
		level = logger.Info
	}
	return logger.New(logging.Log, logger.Config{
		SlowThreshold: slow,
		LogLevel:      level,
		Colorful:      false,
	})
}

// URL returns DATABASE_URL, or an empty string when it is not set
func URL() string {
	return os.Getenv("DATABASE_URL")
}
