package repo

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	"identity/internal/apperr"
)

// translate приводит ошибки слоя данных к категориям apperr.
// Сырые ошибки БД наружу не отдаём.
func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.ErrNotFound
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return apperr.Wrap(apperr.ErrConflict, "duplicate entry")
	}
	msg := err.Error()
	if strings.Contains(msg, "UNIQUE constraint") ||
		strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "Duplicate entry") {
		return apperr.Wrap(apperr.ErrConflict, "duplicate entry")
	}
	if strings.Contains(msg, "FOREIGN KEY constraint") ||
		strings.Contains(msg, "foreign key constraint") {
		return apperr.Wrap(apperr.ErrConflict, "integrity violation")
	}
	return err
}

// tenantScope добавляет фильтр по company_id.
// Пустой companyID — суперпользователь, фильтр не применяется.
func tenantScope(companyID string) func(*gorm.DB) *gorm.DB {
	return func(tx *gorm.DB) *gorm.DB {
		if companyID == "" {
			return tx
		}
		return tx.Where("company_id = ?", companyID)
	}
}
