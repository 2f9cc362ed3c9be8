// manage.go database schema management
package datastore

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/wastenet/wastenet-go/internal/logging"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// DefaultSlowQueryThreshold defines the duration after which a query is
// considered slow and logged at warn level.
const DefaultSlowQueryThreshold = 1 * time.Second

// createGormLogger configures and returns a new GORM logger instance.
func createGormLogger(debug bool) gormlogger.Interface {
	level := gormlogger.Warn
	if debug {
		level = gormlogger.Info
	}
	return gormlogger.Default.LogMode(level)
}

// getLogger returns the datastore service logger, falling back to the default.
func getLogger() *slog.Logger {
	if l := logging.ForService("datastore"); l != nil {
		return l
	}
	return slog.Default()
}

// performAutoMigration runs GORM auto-migration for the disposal schema and
// logs the outcome.
func performAutoMigration(db *gorm.DB, debug bool, dbType, connectionInfo string) error {
	if err := db.AutoMigrate(&Disposal{}); err != nil {
		return fmt.Errorf("failed to auto-migrate %s database: %w", dbType, err)
	}

	if debug {
		getLogger().Debug("database schema migrated",
			"db_type", dbType,
			"connection", connectionInfo)
	}
	return nil
}

// closeDB closes the underlying sql.DB connection of a GORM handle.
func closeDB(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("getting underlying database connection: %w", err)
	}
	return sqlDB.Close()
}
