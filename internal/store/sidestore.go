package store

import (
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Attribute value kinds
const (
	kindString = "string"
	kindInt    = "int"
	kindTime   = "time"
	kindBlob   = "blob"
)

// SideAttribute is one supplementary named attribute for an owning record.
// The key is the namespace concatenated with the owner identity. There is no
// foreign key back to the structured entities: orphaned entries are inert and
// never garbage-collected.
type SideAttribute struct {
	Key         string    `gorm:"type:varchar(512);primaryKey"`
	Kind        string    `gorm:"type:varchar(10);not null"`
	StringValue string    `gorm:"type:text"`
	IntValue    int64     `gorm:"default:0"`
	TimeValue   time.Time `gorm:""`
	BlobValue   []byte    `gorm:"type:blob"`
	UpdatedAt   time.Time
}

// SideAttributeStore persists attributes that are absent from the structured
// schema, namespaced by a string prefix per concern (e.g. "packingType_",
// "supplier_category_") concatenated with the owning record's identity.
//
// It is a flat global mapping with overwrite semantics: no versioning, no
// atomic multi-key updates, and no relationship to the record store's delete
// lifecycle.
type SideAttributeStore struct {
	db  *gorm.DB
	log *zap.Logger
}

// NewSideAttributeStore creates a side-attribute store on an opened database
func NewSideAttributeStore(db *gorm.DB, log *zap.Logger) *SideAttributeStore {
	return &SideAttributeStore{db: db, log: log}
}

func (s *SideAttributeStore) key(namespace, ownerID string) string {
	return namespace + ownerID
}

func (s *SideAttributeStore) set(attr *SideAttribute) error {
	return s.db.Clauses(clause.OnConflict{UpdateAll: true}).Create(attr).Error
}

// get loads the row for a key; found is false when the key is absent or the
// lookup failed (failures are logged, callers see the default).
func (s *SideAttributeStore) get(namespace, ownerID string) (*SideAttribute, bool) {
	var attr SideAttribute
	result := s.db.First(&attr, "key = ?", s.key(namespace, ownerID))
	if result.Error != nil {
		if !errors.Is(result.Error, gorm.ErrRecordNotFound) {
			s.log.Error("Failed to read side attribute",
				zap.String("namespace", namespace),
				zap.String("owner_id", ownerID),
				zap.Error(result.Error))
		}
		return nil, false
	}
	return &attr, true
}

// GetString returns the stored string or the default when absent
func (s *SideAttributeStore) GetString(namespace, ownerID, defaultValue string) string {
	attr, ok := s.get(namespace, ownerID)
	if !ok || attr.Kind != kindString {
		return defaultValue
	}
	return attr.StringValue
}

// SetString overwrites the string value for the key
func (s *SideAttributeStore) SetString(namespace, ownerID, value string) error {
	return s.set(&SideAttribute{
		Key:         s.key(namespace, ownerID),
		Kind:        kindString,
		StringValue: value,
	})
}

// GetInt returns the stored integer or the default when absent
func (s *SideAttributeStore) GetInt(namespace, ownerID string, defaultValue int64) int64 {
	attr, ok := s.get(namespace, ownerID)
	if !ok || attr.Kind != kindInt {
		return defaultValue
	}
	return attr.IntValue
}

// SetInt overwrites the integer value for the key
func (s *SideAttributeStore) SetInt(namespace, ownerID string, value int64) error {
	return s.set(&SideAttribute{
		Key:      s.key(namespace, ownerID),
		Kind:     kindInt,
		IntValue: value,
	})
}

// GetTime returns the stored date or the default when absent
func (s *SideAttributeStore) GetTime(namespace, ownerID string, defaultValue time.Time) time.Time {
	attr, ok := s.get(namespace, ownerID)
	if !ok || attr.Kind != kindTime {
		return defaultValue
	}
	return attr.TimeValue
}

// SetTime overwrites the date value for the key
func (s *SideAttributeStore) SetTime(namespace, ownerID string, value time.Time) error {
	return s.set(&SideAttribute{
		Key:       s.key(namespace, ownerID),
		Kind:      kindTime,
		TimeValue: value,
	})
}

// GetBlob returns the stored binary value, or nil when absent
func (s *SideAttributeStore) GetBlob(namespace, ownerID string) []byte {
	attr, ok := s.get(namespace, ownerID)
	if !ok || attr.Kind != kindBlob {
		return nil
	}
	return attr.BlobValue
}

// SetBlob overwrites the binary value for the key
func (s *SideAttributeStore) SetBlob(namespace, ownerID string, value []byte) error {
	return s.set(&SideAttribute{
		Key:       s.key(namespace, ownerID),
		Kind:      kindBlob,
		BlobValue: value,
	})
}

// Remove deletes the attribute for the key. Removing an absent key is a
// success.
func (s *SideAttributeStore) Remove(namespace, ownerID string) error {
	return s.db.Where("key = ?", s.key(namespace, ownerID)).Delete(&SideAttribute{}).Error
}
