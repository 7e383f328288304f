package store

import (
	"path/filepath"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"inventory-service/internal/model"
)

// newTestDB opens a throwaway database file with the full schema migrated
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.db")
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&model.Product{},
		&model.Supplier{},
		&model.ContactPerson{},
		&SideAttribute{},
	))
	return db
}

func newTestRecordStore(t *testing.T) *RecordStore {
	t.Helper()
	return NewRecordStore(newTestDB(t), zap.NewNop())
}
