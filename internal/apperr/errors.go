package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Базовые категории ошибок сервиса. Хендлеры маппят их в HTTP-статусы,
// всё остальное (сырая ошибка БД и т.п.) считается внутренней ошибкой.
var (
	ErrValidation = errors.New("validation error")
	ErrAuth       = errors.New("authentication failed")
	ErrForbidden  = errors.New("access denied")
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("conflict")
	ErrCycle      = errors.New("hierarchy cycle")
	ErrUpstream   = errors.New("upstream unavailable")
)

// Wrap добавляет контекст, сохраняя категорию (errors.Is продолжает работать).
func Wrap(category error, format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{category}, args...)...)
}

func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }
func IsConflict(err error) bool { return errors.Is(err, ErrConflict) }
func IsUpstream(err error) bool { return errors.Is(err, ErrUpstream) }

// HTTPStatus возвращает статус-код для категории ошибки.
// Кросс-тенантный доступ маппится в 404, а не 403 — существование чужих
// записей не раскрываем.
func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrAuth):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	case errors.Is(err, ErrCycle):
		return http.StatusConflict
	case errors.Is(err, ErrUpstream):
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// Title — краткое название для problem+json.
func Title(err error) string {
	switch {
	case errors.Is(err, ErrValidation):
		return "Validation Error"
	case errors.Is(err, ErrAuth):
		return "Unauthorized"
	case errors.Is(err, ErrForbidden):
		return "Forbidden"
	case errors.Is(err, ErrNotFound):
		return "Not Found"
	case errors.Is(err, ErrConflict):
		return "Conflict"
	case errors.Is(err, ErrCycle):
		return "Conflict"
	case errors.Is(err, ErrUpstream):
		return "Upstream Unavailable"
	default:
		return "Internal Server Error"
	}
}
