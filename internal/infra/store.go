package infra

import (
	"github.com/nazim1903/Businesstracker/internal/repository"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// OpenStore builds the entity store for driver. The returned *gorm.DB is nil
// for the memory store.
func OpenStore(driver, dsn string) (repository.Store, *gorm.DB, error) {
	if driver == "memory" {
		log.Warn().Msg("using in-memory store; data is lost on exit")
		return repository.NewMemoryStore(), nil, nil
	}
	db, err := NewDatabase(driver, dsn)
	if err != nil {
		return nil, nil, err
	}
	log.Info().Str("driver", driver).Msg("store ready")
	return repository.NewGormStore(db), db, nil
}

// CloseDB closes the connection pool behind db, if any.
func CloseDB(db *gorm.DB) {
	if db == nil {
		return
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
