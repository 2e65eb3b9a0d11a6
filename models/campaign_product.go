package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CampaignProduct links a product to a marketing campaign managed by another
// system. Products referenced here cannot be deleted.
type CampaignProduct struct {
	ID           uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	ProductID    uuid.UUID `gorm:"type:uuid;not null;index" json:"product_id"`
	Product      *Product  `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	CampaignName string    `gorm:"not null" json:"campaign_name"`
	CreatedAt    time.Time `json:"created_at"`
}

func (cp *CampaignProduct) BeforeCreate(tx *gorm.DB) error {
	if cp.ID == uuid.Nil {
		cp.ID = uuid.New()
	}
	return nil
}
