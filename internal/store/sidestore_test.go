package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestSideStore(t *testing.T) *SideAttributeStore {
	t.Helper()
	return NewSideAttributeStore(newTestDB(t), zap.NewNop())
}

func TestSideStoreStringLifecycle(t *testing.T) {
	s := newTestSideStore(t)

	// Default before any set.
	assert.Equal(t, "none", s.GetString(NamespacePackingType, "p1", "none"))

	require.NoError(t, s.SetString(NamespacePackingType, "p1", "carton"))
	assert.Equal(t, "carton", s.GetString(NamespacePackingType, "p1", "none"))

	// Overwrite semantics, no versioning.
	require.NoError(t, s.SetString(NamespacePackingType, "p1", "pallet"))
	assert.Equal(t, "pallet", s.GetString(NamespacePackingType, "p1", "none"))

	// Default again after remove; remove is idempotent.
	require.NoError(t, s.Remove(NamespacePackingType, "p1"))
	assert.Equal(t, "none", s.GetString(NamespacePackingType, "p1", "none"))
	require.NoError(t, s.Remove(NamespacePackingType, "p1"))
}

func TestSideStoreNamespacesAreIndependent(t *testing.T) {
	s := newTestSideStore(t)

	require.NoError(t, s.SetString(NamespacePackingType, "p1", "carton"))
	require.NoError(t, s.SetString(NamespaceSupplierCategory, "p1", "furniture"))

	assert.Equal(t, "carton", s.GetString(NamespacePackingType, "p1", ""))
	assert.Equal(t, "furniture", s.GetString(NamespaceSupplierCategory, "p1", ""))

	require.NoError(t, s.Remove(NamespacePackingType, "p1"))
	assert.Equal(t, "furniture", s.GetString(NamespaceSupplierCategory, "p1", ""))
}

func TestSideStoreInt(t *testing.T) {
	s := newTestSideStore(t)

	assert.EqualValues(t, 12, s.GetInt(NamespaceQuantityPerBox, "p1", 12))
	require.NoError(t, s.SetInt(NamespaceQuantityPerBox, "p1", 24))
	assert.EqualValues(t, 24, s.GetInt(NamespaceQuantityPerBox, "p1", 12))
}

func TestSideStoreTime(t *testing.T) {
	s := newTestSideStore(t)

	fallback := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, fallback, s.GetTime("lastOrdered_", "p1", fallback))

	when := time.Date(2024, 6, 15, 8, 30, 0, 0, time.UTC)
	require.NoError(t, s.SetTime("lastOrdered_", "p1", when))
	assert.True(t, when.Equal(s.GetTime("lastOrdered_", "p1", fallback)))
}

func TestSideStoreBlob(t *testing.T) {
	s := newTestSideStore(t)

	assert.Nil(t, s.GetBlob(NamespaceContactPhoto, "c1"))

	data := []byte{0xFF, 0xD8, 0xFF, 0xE0}
	require.NoError(t, s.SetBlob(NamespaceContactPhoto, "c1", data))
	assert.Equal(t, data, s.GetBlob(NamespaceContactPhoto, "c1"))

	require.NoError(t, s.Remove(NamespaceContactPhoto, "c1"))
	assert.Nil(t, s.GetBlob(NamespaceContactPhoto, "c1"))
}

func TestSideStoreKindMismatchYieldsDefault(t *testing.T) {
	s := newTestSideStore(t)

	require.NoError(t, s.SetString(NamespacePackingType, "p1", "carton"))
	assert.EqualValues(t, 7, s.GetInt(NamespacePackingType, "p1", 7))
	assert.Nil(t, s.GetBlob(NamespacePackingType, "p1"))
}

// Orphaned entries are inert: deleting a record elsewhere does not touch the
// side store, and stale keys simply keep their values.
func TestSideStoreOrphansSurvive(t *testing.T) {
	s := newTestSideStore(t)

	require.NoError(t, s.SetString(NamespaceSupplierCategory, "gone-supplier", "textiles"))
	assert.Equal(t, "textiles", s.GetString(NamespaceSupplierCategory, "gone-supplier", ""))
}
