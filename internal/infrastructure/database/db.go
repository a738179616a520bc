// Package database holds the gorm-backed rule source and match audit store.
package database

import (
	"fmt"
	stdlog "log"
	"strings"
	"time"

	"github.com/gadai/backend/internal/logging"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config selects the database driver and connection string
type Config struct {
	Driver string
	DSN    string
	Debug  bool
}

// Open connects to the configured database. SQL logging goes through zerolog.
func Open(cfg Config) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch strings.ToLower(cfg.Driver) {
	case DriverPostgres:
		dialector = postgres.Open(cfg.DSN)
	case DriverSQLite:
		dialector = sqlite.Open(cfg.DSN)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	level := gormlogger.Warn
	if cfg.Debug {
		level = gormlogger.Info
	}
	zl := logging.GetLogger("gorm")

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.New(stdlog.New(zl, "", 0), gormlogger.Config{
			SlowThreshold:             500 * time.Millisecond,
			LogLevel:                  level,
			IgnoreRecordNotFoundError: true,
		}),
	})
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", cfg.Driver, err)
	}

	return db, nil
}

// Migrate creates or updates the tables this service reads and writes
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&ItemTypeRecord{},
		&PawnTermRecord{},
		&MataMatchAudit{},
	)
}

// Close releases the underlying connection pool
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
