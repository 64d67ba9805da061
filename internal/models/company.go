package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Company — корень тенантности. Единственная сущность без company_id.
type Company struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Name        string `gorm:"uniqueIndex;size:100;not null" json:"name"`
	Description string `gorm:"size:255" json:"description,omitempty"`
	Address     string `gorm:"size:255" json:"address,omitempty"`
	City        string `gorm:"size:100" json:"city,omitempty"`
	Country     string `gorm:"size:100" json:"country,omitempty"`
	PostalCode  string `gorm:"size:20"  json:"postal_code,omitempty"`
	Phone       string `gorm:"size:50"  json:"phone,omitempty"`
	Email       string `gorm:"size:100" json:"email,omitempty"`
	Website     string `gorm:"size:255" json:"website,omitempty"`

	// Логотип хранится во внешнем Storage, локально — только ссылка.
	HasLogo    bool   `json:"has_logo"`
	LogoFileID string `gorm:"size:255" json:"-"`
}

func (c *Company) BeforeCreate(_ *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}
