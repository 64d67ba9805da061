package repo

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"identity/internal/apperr"
	"identity/internal/models"
)

type UserStore struct{ db *gorm.DB }

func NewUserStore(db *gorm.DB) *UserStore { return &UserStore{db: db} }

func (s *UserStore) Create(ctx context.Context, u *models.User) error {
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	return translate(s.db.WithContext(ctx).Create(u).Error)
}

// GetByID ищет в пределах компании вызывающего. Чужой id — not found,
// существование не раскрываем.
func (s *UserStore) GetByID(ctx context.Context, companyID, id string) (*models.User, error) {
	var u models.User
	err := s.db.WithContext(ctx).Scopes(tenantScope(companyID)).
		Where("id = ?", id).First(&u).Error
	if err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

// GetByEmail — глобальный поиск, нужен до аутентификации
// (verify_password, сброс пароля).
func (s *UserStore) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	err := s.db.WithContext(ctx).
		Where("email = ?", strings.ToLower(strings.TrimSpace(email))).First(&u).Error
	if err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (s *UserStore) List(ctx context.Context, companyID string) ([]models.User, error) {
	var out []models.User
	err := s.db.WithContext(ctx).Scopes(tenantScope(companyID)).
		Order("created_at").Find(&out).Error
	return out, translate(err)
}

func (s *UserStore) ListByPosition(ctx context.Context, companyID, positionID string) ([]models.User, error) {
	var out []models.User
	err := s.db.WithContext(ctx).Scopes(tenantScope(companyID)).
		Where("position_id = ?", positionID).Order("created_at").Find(&out).Error
	return out, translate(err)
}

func (s *UserStore) Update(ctx context.Context, companyID, id string, fields map[string]any) (*models.User, error) {
	res := s.db.WithContext(ctx).Model(&models.User{}).Scopes(tenantScope(companyID)).
		Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return nil, translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, apperr.ErrNotFound
	}
	return s.GetByID(ctx, companyID, id)
}

// Delete удаляет пользователя вместе с его OTP-записями, атомарно.
func (s *UserStore) Delete(ctx context.Context, companyID, id string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Scopes(tenantScope(companyID)).Where("id = ?", id).Delete(&models.User{})
		if res.Error != nil {
			return translate(res.Error)
		}
		if res.RowsAffected == 0 {
			return apperr.ErrNotFound
		}
		return translate(tx.Where("user_id = ?", id).Delete(&models.PasswordResetOTP{}).Error)
	})
}

func (s *UserStore) SetAvatar(ctx context.Context, companyID, id, fileID string) error {
	res := s.db.WithContext(ctx).Model(&models.User{}).Scopes(tenantScope(companyID)).
		Where("id = ?", id).
		Updates(map[string]any{"has_avatar": fileID != "", "avatar_file_id": fileID})
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.ErrNotFound
	}
	return nil
}
