package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// OrganizationUnit — узел иерархии подразделений внутри компании.
// path и level — денормализованный кэш цепочки предков; пересчитываются
// транзакционно при create/move, руками не меняются.
//
// Формат path: "/"-склеенная цепочка id от корня до узла включительно,
// например "/<rootID>/<childID>". Потомки ищутся по префиксу path+"/".
type OrganizationUnit struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	CompanyID   string `gorm:"index;size:36;not null" json:"company_id"`
	Name        string `gorm:"size:100;not null" json:"name"`
	Description string `gorm:"size:200" json:"description,omitempty"`

	ParentID string `gorm:"index;size:36" json:"parent_id,omitempty"`
	Path     string `gorm:"index;size:1024" json:"path"`
	Level    int    `json:"level"`
}

func (o *OrganizationUnit) BeforeCreate(_ *gorm.DB) error {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	return nil
}
