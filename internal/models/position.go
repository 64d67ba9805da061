package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Position struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	CompanyID string `gorm:"index;size:36;not null" json:"company_id"`
	// Подразделение обязано принадлежать той же компании (проверяется в store).
	OrganizationUnitID string `gorm:"index;size:36;not null" json:"organization_unit_id"`

	Title       string `gorm:"size:100;not null" json:"title"`
	Description string `gorm:"size:255" json:"description,omitempty"`
	Level       string `gorm:"size:50" json:"level,omitempty"` // junior|senior|lead и т.п.
}

func (p *Position) BeforeCreate(_ *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}
