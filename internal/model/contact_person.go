package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ContactPerson represents a contact working for a supplier. Free-text notes
// and the portrait photo are stored in the side-attribute store rather than
// here; the schema lags behind feature growth and the side store carries the
// overflow.
type ContactPerson struct {
	ID            string         `json:"id" gorm:"type:varchar(36);primaryKey"`
	SupplierID    string         `json:"supplier_id" gorm:"type:varchar(36);index;not null"`
	Name          string         `json:"name" gorm:"type:varchar(255);index;not null"`
	JobTitle      string         `json:"job_title" gorm:"type:varchar(100)"`
	Phone         string         `json:"phone" gorm:"type:varchar(50)"`
	Whatsapp      string         `json:"whatsapp" gorm:"type:varchar(50)"`
	WechatID      string         `json:"wechat_id" gorm:"type:varchar(100)"`
	Email         string         `json:"email" gorm:"type:varchar(100)"`
	IsPrimary     bool           `json:"is_primary" gorm:"default:false"`
	CardImagePath string         `json:"card_image_path" gorm:"type:varchar(255)"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}

// BeforeCreate assigns a stable identity before the first save
func (c *ContactPerson) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	return nil
}
