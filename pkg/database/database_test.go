package database

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gormlogger "gorm.io/gorm/logger"

	"inventory-service/internal/model"
	"inventory-service/pkg/config"
)

func localConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		DB: config.DBConfig{
			Path:     filepath.Join(t.TempDir(), "inventory.db"),
			LogLevel: gormlogger.Silent,
		},
		Sync: config.SyncConfig{Enabled: false},
	}
}

func TestInitCreatesLocalStore(t *testing.T) {
	cfg := localConfig(t)

	db, dataReset, err := Init(cfg, &model.Product{})
	require.NoError(t, err)
	assert.False(t, dataReset)

	// Schema is in place: a simple write works.
	product := model.Product{Name: "Chair"}
	require.NoError(t, db.Create(&product).Error)

	_, err = os.Stat(cfg.DB.Path)
	assert.NoError(t, err)
}

func TestInitReopensExistingStore(t *testing.T) {
	cfg := localConfig(t)

	db, _, err := Init(cfg, &model.Product{})
	require.NoError(t, err)
	product := model.Product{Name: "Chair"}
	require.NoError(t, db.Create(&product).Error)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	db, dataReset, err := Init(cfg, &model.Product{})
	require.NoError(t, err)
	assert.False(t, dataReset)

	var count int64
	require.NoError(t, db.Model(&model.Product{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestInitRebuildsDamagedStore(t *testing.T) {
	cfg := localConfig(t)
	require.NoError(t, os.MkdirAll(filepath.Dir(cfg.DB.Path), 0o755))
	require.NoError(t, os.WriteFile(cfg.DB.Path, []byte("this is not a database"), 0o600))

	db, dataReset, err := Init(cfg, &model.Product{})
	require.NoError(t, err)
	assert.True(t, dataReset)

	// The rebuilt store is empty but usable.
	var count int64
	require.NoError(t, db.Model(&model.Product{}).Count(&count).Error)
	assert.EqualValues(t, 0, count)
}
