package datastore

import (
	"fmt"
	"log/slog"

	"gorm.io/gorm"

	"github.com/tphakala/birddex/internal/logging"
)

// performAutoMigration creates or updates the schema for all persisted
// record types.
func performAutoMigration(db *gorm.DB, debug bool, backend, connection string) error {
	if err := db.AutoMigrate(&OutingRecord{}, &ObservationRecord{}, &DexEntryRecord{}); err != nil {
		return fmt.Errorf("failed to auto-migrate %s database: %w", backend, err)
	}

	if debug {
		logger := logging.ForService("datastore")
		if logger == nil {
			logger = slog.Default()
		}
		logger.Debug("schema migration complete", "backend", backend, "connection", connection)
	}
	return nil
}
