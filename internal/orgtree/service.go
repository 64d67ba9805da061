// Package orgtree — менеджер иерархии подразделений.
//
// parent_id — единственный источник правды о структуре; path и level —
// денормализованный кэш, который пересчитывается только здесь и только
// внутри транзакции. Конкурентные перемещения сериализуются блокировками
// FOR UPDATE на затронутом поддереве.
package orgtree

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"identity/internal/apperr"
	"identity/internal/models"
)

type Service struct{ db *gorm.DB }

func New(db *gorm.DB) *Service { return &Service{db: db} }

type CreateInput struct {
	CompanyID   string
	Name        string
	Description string
	ParentID    string
}

// Create добавляет подразделение; у корня level=0, path="/"+id.
// Родитель из чужой компании — not found.
func (s *Service) Create(ctx context.Context, in CreateInput) (*models.OrganizationUnit, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, apperr.Wrap(apperr.ErrValidation, "name is required")
	}
	unit := &models.OrganizationUnit{
		CompanyID:   in.CompanyID,
		Name:        in.Name,
		Description: in.Description,
		ParentID:    in.ParentID,
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if in.ParentID != "" {
			parent, err := lockUnit(tx, in.CompanyID, in.ParentID)
			if err != nil {
				return err
			}
			if err := tx.Create(unit).Error; err != nil {
				return err
			}
			unit.Level = parent.Level + 1
			unit.Path = parent.Path + "/" + unit.ID
		} else {
			if err := tx.Create(unit).Error; err != nil {
				return err
			}
			unit.Level = 0
			unit.Path = "/" + unit.ID
		}
		return tx.Model(&models.OrganizationUnit{}).Where("id = ?", unit.ID).
			Updates(map[string]any{"path": unit.Path, "level": unit.Level}).Error
	})
	if err != nil {
		return nil, err
	}
	return unit, nil
}

func (s *Service) Get(ctx context.Context, companyID, id string) (*models.OrganizationUnit, error) {
	var u models.OrganizationUnit
	q := s.db.WithContext(ctx).Where("id = ?", id)
	if companyID != "" {
		q = q.Where("company_id = ?", companyID)
	}
	if err := q.First(&u).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (s *Service) List(ctx context.Context, companyID string) ([]models.OrganizationUnit, error) {
	var out []models.OrganizationUnit
	q := s.db.WithContext(ctx).Order("level, created_at")
	if companyID != "" {
		q = q.Where("company_id = ?", companyID)
	}
	return out, q.Find(&out).Error
}

func (s *Service) Children(ctx context.Context, companyID, id string) ([]models.OrganizationUnit, error) {
	unit, err := s.Get(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	var out []models.OrganizationUnit
	err = s.db.WithContext(ctx).
		Where("company_id = ? AND parent_id = ?", unit.CompanyID, id).
		Order("created_at").Find(&out).Error
	return out, err
}

// Descendants возвращает всё поддерево (без самого узла),
// упорядоченное по level, затем по времени создания.
func (s *Service) Descendants(ctx context.Context, companyID, id string) ([]models.OrganizationUnit, error) {
	unit, err := s.Get(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	var out []models.OrganizationUnit
	err = s.db.WithContext(ctx).
		Where("company_id = ? AND path LIKE ?", unit.CompanyID, unit.Path+"/%").
		Order("level, created_at").Find(&out).Error
	return out, err
}

// AncestorPath идёт по parent_id от узла к корню; порядок корень→узел.
// Оборванная цепочка — повреждение данных, отвечаем ошибкой, а не
// укороченным результатом.
func (s *Service) AncestorPath(ctx context.Context, companyID, id string) ([]models.OrganizationUnit, error) {
	unit, err := s.Get(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	chain := []models.OrganizationUnit{*unit}
	seen := map[string]bool{unit.ID: true}
	for unit.ParentID != "" {
		parent, err := s.Get(ctx, unit.CompanyID, unit.ParentID)
		if err != nil {
			if apperr.IsNotFound(err) {
				return nil, apperr.Wrap(apperr.ErrNotFound,
					"broken ancestor chain at %s", unit.ParentID)
			}
			return nil, err
		}
		if seen[parent.ID] {
			return nil, apperr.Wrap(apperr.ErrCycle, "ancestor chain loops at %s", parent.ID)
		}
		seen[parent.ID] = true
		chain = append(chain, *parent)
		unit = parent
	}
	// разворот: корень первым
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	return chain, nil
}

// Move переподвешивает узел и пересчитывает path/level всему поддереву
// в одной транзакции. Перенос под себя или под собственного потомка —
// ErrCycle, без каких-либо изменений.
func (s *Service) Move(ctx context.Context, companyID, id, newParentID string) (*models.OrganizationUnit, error) {
	if newParentID == id {
		return nil, apperr.Wrap(apperr.ErrCycle, "unit cannot be its own parent")
	}
	var moved *models.OrganizationUnit
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		unit, err := lockUnit(tx, companyID, id)
		if err != nil {
			return err
		}

		newLevel := 0
		newPrefix := ""
		if newParentID != "" {
			parent, err := lockUnit(tx, unit.CompanyID, newParentID)
			if err != nil {
				return err
			}
			if strings.HasPrefix(parent.Path+"/", unit.Path+"/") {
				return apperr.Wrap(apperr.ErrCycle,
					"new parent %s is a descendant of %s", newParentID, id)
			}
			newLevel = parent.Level + 1
			newPrefix = parent.Path
		}

		oldPath := unit.Path
		newPath := newPrefix + "/" + unit.ID
		delta := newLevel - unit.Level

		var subtree []models.OrganizationUnit
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("company_id = ? AND path LIKE ?", unit.CompanyID, oldPath+"/%").
			Order("level").Find(&subtree).Error; err != nil {
			return err
		}

		if err := tx.Model(&models.OrganizationUnit{}).Where("id = ?", unit.ID).
			Updates(map[string]any{
				"parent_id": newParentID,
				"path":      newPath,
				"level":     newLevel,
			}).Error; err != nil {
			return err
		}
		for i := range subtree {
			d := &subtree[i]
			if err := tx.Model(&models.OrganizationUnit{}).Where("id = ?", d.ID).
				Updates(map[string]any{
					"path":  newPath + strings.TrimPrefix(d.Path, oldPath),
					"level": d.Level + delta,
				}).Error; err != nil {
				return err
			}
		}

		unit.ParentID = newParentID
		unit.Path = newPath
		unit.Level = newLevel
		unit.UpdatedAt = time.Now().UTC()
		moved = unit
		return nil
	})
	if err != nil {
		return nil, err
	}
	return moved, nil
}

// Update меняет простые поля; смена parent_id уходит в Move.
func (s *Service) Update(ctx context.Context, companyID, id string, fields map[string]any) (*models.OrganizationUnit, error) {
	newParent, moveRequested := fields["parent_id"]
	delete(fields, "parent_id")
	// path/level руками не правятся
	delete(fields, "path")
	delete(fields, "level")

	if len(fields) > 0 {
		q := s.db.WithContext(ctx).Model(&models.OrganizationUnit{}).Where("id = ?", id)
		if companyID != "" {
			q = q.Where("company_id = ?", companyID)
		}
		res := q.Updates(fields)
		if res.Error != nil {
			return nil, res.Error
		}
		if res.RowsAffected == 0 {
			return nil, apperr.ErrNotFound
		}
	}
	if moveRequested {
		parentID, _ := newParent.(string)
		return s.Move(ctx, companyID, id, parentID)
	}
	return s.Get(ctx, companyID, id)
}

// Delete: узел с детьми без cascade — конфликт; с cascade удаляются
// все потомки и их позиции одной транзакцией.
func (s *Service) Delete(ctx context.Context, companyID, id string, cascade bool) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		unit, err := lockUnit(tx, companyID, id)
		if err != nil {
			return err
		}

		var children int64
		if err := tx.Model(&models.OrganizationUnit{}).
			Where("parent_id = ?", unit.ID).Count(&children).Error; err != nil {
			return err
		}
		if children > 0 && !cascade {
			return apperr.Wrap(apperr.ErrConflict,
				"unit %s has children; pass cascade to delete the subtree", id)
		}

		ids := []string{unit.ID}
		if cascade {
			var subtree []models.OrganizationUnit
			if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
				Where("company_id = ? AND path LIKE ?", unit.CompanyID, unit.Path+"/%").
				Find(&subtree).Error; err != nil {
				return err
			}
			for _, d := range subtree {
				ids = append(ids, d.ID)
			}
		}

		if err := tx.Where("organization_unit_id IN ?", ids).
			Delete(&models.Position{}).Error; err != nil {
			return err
		}
		return tx.Where("id IN ?", ids).Delete(&models.OrganizationUnit{}).Error
	})
}

// lockUnit читает узел под FOR UPDATE в рамках транзакции.
func lockUnit(tx *gorm.DB, companyID, id string) (*models.OrganizationUnit, error) {
	var u models.OrganizationUnit
	q := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", id)
	if companyID != "" {
		q = q.Where("company_id = ?", companyID)
	}
	if err := q.First(&u).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}
