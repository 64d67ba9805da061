package repo

import (
	"context"

	"gorm.io/gorm"

	"identity/internal/apperr"
	"identity/internal/models"
)

type PositionStore struct{ db *gorm.DB }

func NewPositionStore(db *gorm.DB) *PositionStore { return &PositionStore{db: db} }

// Create проверяет, что подразделение принадлежит той же компании.
// Чужое или несуществующее — not found.
func (s *PositionStore) Create(ctx context.Context, p *models.Position) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var unit models.OrganizationUnit
		err := tx.Where("id = ? AND company_id = ?", p.OrganizationUnitID, p.CompanyID).
			First(&unit).Error
		if err != nil {
			if translate(err) == apperr.ErrNotFound {
				return apperr.Wrap(apperr.ErrNotFound, "organization unit %s", p.OrganizationUnitID)
			}
			return translate(err)
		}
		return translate(tx.Create(p).Error)
	})
}

func (s *PositionStore) GetByID(ctx context.Context, companyID, id string) (*models.Position, error) {
	var p models.Position
	err := s.db.WithContext(ctx).Scopes(tenantScope(companyID)).
		Where("id = ?", id).First(&p).Error
	if err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

func (s *PositionStore) List(ctx context.Context, companyID string) ([]models.Position, error) {
	var out []models.Position
	err := s.db.WithContext(ctx).Scopes(tenantScope(companyID)).
		Order("created_at").Find(&out).Error
	return out, translate(err)
}

func (s *PositionStore) ListByUnit(ctx context.Context, companyID, unitID string) ([]models.Position, error) {
	var out []models.Position
	err := s.db.WithContext(ctx).Scopes(tenantScope(companyID)).
		Where("organization_unit_id = ?", unitID).Order("created_at").Find(&out).Error
	return out, translate(err)
}

func (s *PositionStore) Update(ctx context.Context, companyID, id string, fields map[string]any) (*models.Position, error) {
	// Смена подразделения тоже обязана остаться внутри компании.
	if unitID, ok := fields["organization_unit_id"].(string); ok && unitID != "" {
		var unit models.OrganizationUnit
		err := s.db.WithContext(ctx).
			Where("id = ? AND company_id = ?", unitID, companyID).First(&unit).Error
		if err != nil {
			if translate(err) == apperr.ErrNotFound {
				return nil, apperr.Wrap(apperr.ErrNotFound, "organization unit %s", unitID)
			}
			return nil, translate(err)
		}
	}
	res := s.db.WithContext(ctx).Model(&models.Position{}).Scopes(tenantScope(companyID)).
		Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return nil, translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, apperr.ErrNotFound
	}
	return s.GetByID(ctx, companyID, id)
}

func (s *PositionStore) Delete(ctx context.Context, companyID, id string) error {
	res := s.db.WithContext(ctx).Scopes(tenantScope(companyID)).
		Where("id = ?", id).Delete(&models.Position{})
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.ErrNotFound
	}
	return nil
}
