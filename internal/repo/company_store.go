package repo

import (
	"context"

	"gorm.io/gorm"

	"identity/internal/apperr"
	"identity/internal/models"
)

type CompanyStore struct{ db *gorm.DB }

func NewCompanyStore(db *gorm.DB) *CompanyStore { return &CompanyStore{db: db} }

func (s *CompanyStore) Create(ctx context.Context, c *models.Company) error {
	return translate(s.db.WithContext(ctx).Create(c).Error)
}

func (s *CompanyStore) GetByID(ctx context.Context, id string) (*models.Company, error) {
	var c models.Company
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&c).Error
	if err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

func (s *CompanyStore) List(ctx context.Context) ([]models.Company, error) {
	var out []models.Company
	err := s.db.WithContext(ctx).Order("created_at").Find(&out).Error
	return out, translate(err)
}

func (s *CompanyStore) Update(ctx context.Context, id string, fields map[string]any) (*models.Company, error) {
	res := s.db.WithContext(ctx).Model(&models.Company{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return nil, translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, apperr.ErrNotFound
	}
	return s.GetByID(ctx, id)
}

func (s *CompanyStore) Delete(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Company{})
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

// SetLogo обновляет только локальную ссылку, сами байты живут в Storage.
func (s *CompanyStore) SetLogo(ctx context.Context, id, fileID string) error {
	res := s.db.WithContext(ctx).Model(&models.Company{}).Where("id = ?", id).
		Updates(map[string]any{"has_logo": fileID != "", "logo_file_id": fileID})
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.ErrNotFound
	}
	return nil
}
