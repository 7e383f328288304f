package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Supplier represents the supplier model stored in the database. The supplier
// category is deliberately absent from the structured schema; it lives in the
// side-attribute store keyed by the supplier identity.
type Supplier struct {
	ID            string          `json:"id" gorm:"type:varchar(36);primaryKey"`
	Name          string          `json:"name" gorm:"type:varchar(255);index;not null"`
	ContactPerson string          `json:"contact_person" gorm:"type:varchar(255)"`
	Email         string          `json:"email" gorm:"type:varchar(100)"`
	Phone         string          `json:"phone" gorm:"type:varchar(50)"`
	Address       string          `json:"address" gorm:"type:text"`
	Website       string          `json:"website" gorm:"type:varchar(255)"`
	Notes         string          `json:"notes" gorm:"type:text"`
	ImagePaths    StringList      `json:"image_paths" gorm:"type:text"`
	Contacts      []ContactPerson `json:"contacts,omitempty" gorm:"foreignKey:SupplierID"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
	DeletedAt     gorm.DeletedAt  `json:"deleted_at,omitempty" gorm:"index"`
}

// BeforeCreate assigns a stable identity before the first save
func (s *Supplier) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	return nil
}
