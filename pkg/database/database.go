package database

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"inventory-service/pkg/config"
)

// Init opens the record store backend and runs migrations for the provided
// models. With sync disabled the store is the embedded local database file;
// with sync enabled it is the shared PostgreSQL backend.
//
// When the local store fails to open or migrate, the database file is removed
// and the store is rebuilt once from scratch. The returned dataReset flag is
// true in that case so the caller can surface a "data was reset" notice
// instead of terminating or silently discarding data. A rebuild is never
// attempted against PostgreSQL since the backend is shared with other writers.
func Init(cfg *config.Config, models ...interface{}) (db *gorm.DB, dataReset bool, err error) {
	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(cfg.DB.LogLevel),
	}

	if cfg.Sync.Enabled {
		pgConfig := postgres.Config{
			DSN:                  cfg.DB.GetDSN(),
			PreferSimpleProtocol: true, // Disables implicit prepared statement usage
		}
		db, err = gorm.Open(postgres.New(pgConfig), gormConfig)
		if err != nil {
			return nil, false, fmt.Errorf("failed to connect to database: %w", err)
		}
		if err = configurePool(db, &cfg.DB); err != nil {
			return nil, false, err
		}
		if err = db.AutoMigrate(models...); err != nil {
			return nil, false, fmt.Errorf("failed to run database migrations: %w", err)
		}
		return db, false, nil
	}

	if err = os.MkdirAll(filepath.Dir(cfg.DB.Path), 0o755); err != nil {
		return nil, false, fmt.Errorf("failed to create data directory: %w", err)
	}

	db, err = openLocal(cfg.DB.Path, gormConfig, models...)
	if err == nil {
		return db, false, nil
	}

	// Rebuild once: drop the damaged file and start over with an empty store.
	zap.L().Warn("local store failed to open, rebuilding from scratch",
		zap.String("db_path", cfg.DB.Path),
		zap.Error(err))
	if removeErr := os.Remove(cfg.DB.Path); removeErr != nil && !os.IsNotExist(removeErr) {
		return nil, false, fmt.Errorf("failed to remove damaged store: %w", removeErr)
	}

	db, err = openLocal(cfg.DB.Path, gormConfig, models...)
	if err != nil {
		return nil, false, fmt.Errorf("failed to rebuild local store: %w", err)
	}
	return db, true, nil
}

func openLocal(path string, gormConfig *gorm.Config, models ...interface{}) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(path), gormConfig)
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(models...); err != nil {
		return nil, err
	}
	return db, nil
}

func configurePool(db *gorm.DB, dbConfig *config.DBConfig) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database object: %w", err)
	}

	sqlDB.SetMaxIdleConns(dbConfig.MaxIdleConns)
	sqlDB.SetMaxOpenConns(dbConfig.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(dbConfig.ConnMaxLifetime)
	return nil
}
