package repo

import (
	"context"

	"gorm.io/gorm"

	"identity/internal/apperr"
	"identity/internal/models"
)

type CustomerStore struct{ db *gorm.DB }

func NewCustomerStore(db *gorm.DB) *CustomerStore { return &CustomerStore{db: db} }

func (s *CustomerStore) Create(ctx context.Context, c *models.Customer) error {
	return translate(s.db.WithContext(ctx).Create(c).Error)
}

func (s *CustomerStore) GetByID(ctx context.Context, companyID, id string) (*models.Customer, error) {
	var c models.Customer
	err := s.db.WithContext(ctx).Scopes(tenantScope(companyID)).
		Where("id = ?", id).First(&c).Error
	if err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

func (s *CustomerStore) List(ctx context.Context, companyID string) ([]models.Customer, error) {
	var out []models.Customer
	err := s.db.WithContext(ctx).Scopes(tenantScope(companyID)).
		Order("created_at").Find(&out).Error
	return out, translate(err)
}

func (s *CustomerStore) Update(ctx context.Context, companyID, id string, fields map[string]any) (*models.Customer, error) {
	res := s.db.WithContext(ctx).Model(&models.Customer{}).Scopes(tenantScope(companyID)).
		Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return nil, translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, apperr.ErrNotFound
	}
	return s.GetByID(ctx, companyID, id)
}

func (s *CustomerStore) Delete(ctx context.Context, companyID, id string) error {
	res := s.db.WithContext(ctx).Scopes(tenantScope(companyID)).
		Where("id = ?", id).Delete(&models.Customer{})
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

func (s *CustomerStore) SetLogo(ctx context.Context, companyID, id, fileID string) error {
	res := s.db.WithContext(ctx).Model(&models.Customer{}).Scopes(tenantScope(companyID)).
		Where("id = ?", id).
		Updates(map[string]any{"has_logo": fileID != "", "logo_file_id": fileID})
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.ErrNotFound
	}
	return nil
}
