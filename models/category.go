package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Category is a node in the product category forest. ParentID is nil for
// root categories. Sibling-name uniqueness and acyclicity of the parent
// chain are enforced by the handlers before any write.
type Category struct {
	ID        uuid.UUID  `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	Name      string     `gorm:"not null;index:idx_categories_name_parent" json:"name"`
	ParentID  *uuid.UUID `gorm:"type:uuid;index:idx_categories_name_parent;index" json:"parent_id"`
	Parent    *Category  `gorm:"foreignKey:ParentID" json:"parent,omitempty"`
	Children  []Category `gorm:"foreignKey:ParentID" json:"children,omitempty"`
	Products  []Product  `gorm:"foreignKey:CategoryID" json:"products,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

func (c *Category) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
