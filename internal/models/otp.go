package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PasswordResetOTP — одноразовый код сброса пароля.
// Хранится только хэш кода. Жизненный цикл: создан → (использован | просрочен
// | вытеснен более новым запросом | заблокирован после 3 неудачных попыток).
type PasswordResetOTP struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	UserID   string `gorm:"index;size:36;not null" json:"user_id"`
	CodeHash string `gorm:"size:255;not null" json:"-"`
	Attempts int    `gorm:"default:0;not null" json:"attempts"`

	ExpiresAt time.Time  `gorm:"index;not null" json:"expires_at"`
	UsedAt    *time.Time `json:"used_at,omitempty"`
}

func (o *PasswordResetOTP) BeforeCreate(_ *gorm.DB) error {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	return nil
}

// Usable — код ещё можно предъявлять: не использован, не просрочен,
// попытки не исчерпаны.
func (o *PasswordResetOTP) Usable(now time.Time, maxAttempts int) bool {
	return o.UsedAt == nil && now.Before(o.ExpiresAt) && o.Attempts < maxAttempts
}
