package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Customer и Subcontractor — плоские тенантные справочники без иерархии.

type Customer struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	CompanyID string `gorm:"index;size:36;not null" json:"company_id"`

	Name        string `gorm:"size:100;not null" json:"name"`
	ContactName string `gorm:"size:100" json:"contact_name,omitempty"`
	Email       string `gorm:"size:100" json:"email,omitempty"`
	Phone       string `gorm:"size:50"  json:"phone,omitempty"`
	Address     string `gorm:"size:255" json:"address,omitempty"`
	City        string `gorm:"size:100" json:"city,omitempty"`
	Country     string `gorm:"size:100" json:"country,omitempty"`
	PostalCode  string `gorm:"size:20"  json:"postal_code,omitempty"`

	HasLogo    bool   `json:"has_logo"`
	LogoFileID string `gorm:"size:255" json:"-"`
}

func (c *Customer) BeforeCreate(_ *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}
