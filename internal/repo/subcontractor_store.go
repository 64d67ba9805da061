package repo

import (
	"context"

	"gorm.io/gorm"

	"identity/internal/apperr"
	"identity/internal/models"
)

type SubcontractorStore struct{ db *gorm.DB }

func NewSubcontractorStore(db *gorm.DB) *SubcontractorStore {
	return &SubcontractorStore{db: db}
}

func (s *SubcontractorStore) Create(ctx context.Context, sc *models.Subcontractor) error {
	return translate(s.db.WithContext(ctx).Create(sc).Error)
}

func (s *SubcontractorStore) GetByID(ctx context.Context, companyID, id string) (*models.Subcontractor, error) {
	var sc models.Subcontractor
	err := s.db.WithContext(ctx).Scopes(tenantScope(companyID)).
		Where("id = ?", id).First(&sc).Error
	if err != nil {
		return nil, translate(err)
	}
	return &sc, nil
}

func (s *SubcontractorStore) List(ctx context.Context, companyID string) ([]models.Subcontractor, error) {
	var out []models.Subcontractor
	err := s.db.WithContext(ctx).Scopes(tenantScope(companyID)).
		Order("created_at").Find(&out).Error
	return out, translate(err)
}

func (s *SubcontractorStore) Update(ctx context.Context, companyID, id string, fields map[string]any) (*models.Subcontractor, error) {
	res := s.db.WithContext(ctx).Model(&models.Subcontractor{}).Scopes(tenantScope(companyID)).
		Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return nil, translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, apperr.ErrNotFound
	}
	return s.GetByID(ctx, companyID, id)
}

func (s *SubcontractorStore) Delete(ctx context.Context, companyID, id string) error {
	res := s.db.WithContext(ctx).Scopes(tenantScope(companyID)).
		Where("id = ?", id).Delete(&models.Subcontractor{})
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

func (s *SubcontractorStore) SetLogo(ctx context.Context, companyID, id, fileID string) error {
	res := s.db.WithContext(ctx).Model(&models.Subcontractor{}).Scopes(tenantScope(companyID)).
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
