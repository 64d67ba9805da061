package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	LanguageEN = "en"
	LanguageFR = "fr"
)

type User struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// company_id пустой — суперпользователь (вне тенанта).
	CompanyID string `gorm:"index;size:36" json:"company_id,omitempty"`

	Email          string `gorm:"uniqueIndex;size:100;not null" json:"email"`
	HashedPassword string `gorm:"size:255;not null" json:"-"`
	FirstName      string `gorm:"size:50" json:"first_name,omitempty"`
	LastName       string `gorm:"size:50" json:"last_name,omitempty"`
	Language       string `gorm:"size:8;default:en" json:"language"`
	PhoneNumber    string `gorm:"size:50" json:"phone_number,omitempty"`
	PositionID     string `gorm:"size:36" json:"position_id,omitempty"`

	HasAvatar    bool   `json:"has_avatar"`
	AvatarFileID string `gorm:"size:255" json:"-"`

	IsActive   bool `gorm:"default:true" json:"is_active"`
	IsVerified bool `gorm:"default:false" json:"is_verified"`

	PasswordResetRequired bool       `json:"password_reset_required"`
	LastPasswordChange    *time.Time `json:"last_password_change,omitempty"`
	LastLoginAt           *time.Time `json:"last_login_at,omitempty"`
}

func (u *User) BeforeCreate(_ *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

// IsSuperuser — пользователь без компании.
func (u *User) IsSuperuser() bool { return u.CompanyID == "" }
