package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Product represents the product master data. The identity is an opaque
// stable string used as the join key for attachments and side attributes.
type Product struct {
	ID         string         `json:"id" gorm:"type:varchar(36);primaryKey"`
	Name       string         `json:"name" gorm:"type:varchar(255);index;not null"`
	SKU        string         `json:"sku" gorm:"type:varchar(100);index"`
	Category   string         `json:"category" gorm:"type:varchar(100)"`
	Price      float64        `json:"price" gorm:"default:0"`
	Currency   string         `json:"currency" gorm:"type:varchar(10)"`
	MOQ        int            `json:"moq" gorm:"default:0"`
	Dimensions string         `json:"dimensions" gorm:"type:varchar(100)"`
	Weight     float64        `json:"weight" gorm:"default:0"`
	Materials  string         `json:"materials" gorm:"type:text"`
	Notes      string         `json:"notes" gorm:"type:text"`
	ImagePaths StringList     `json:"image_paths" gorm:"type:text"`
	SupplierID *string        `json:"supplier_id,omitempty" gorm:"type:varchar(36);index"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}

// BeforeCreate assigns a stable identity before the first save
func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	return nil
}

// DimensionsComponents parses the "W×H×D" dimensions string into its three
// components. Malformed strings yield empty components, never an error.
func (p *Product) DimensionsComponents() (width, height, depth string) {
	s := strings.ReplaceAll(p.Dimensions, "×", "x")
	parts := strings.Split(s, "x")
	if len(parts) != 3 {
		return "", "", ""
	}
	return parts[0], parts[1], parts[2]
}
