// Package identity — HTTP-слой сервиса: компании, пользователи,
// оргструктура, должности, контрагенты, пароли и делегирование
// ролей/файлов во внешние сервисы.
package identity

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"identity/internal/apperr"
	"identity/internal/guardian"
	"identity/internal/middleware"
	"identity/internal/models"
	"identity/internal/orgtree"
	"identity/internal/password"
	"identity/internal/repo"
)

// Authorizer — контракт Guardian-шлюза, нужный обработчикам.
type Authorizer interface {
	CheckAccess(ctx context.Context, rawToken, resource, action string) (guardian.Decision, error)
	ListRoles(ctx context.Context, rawToken, userID string) ([]map[string]any, error)
	AssignRole(ctx context.Context, rawToken, userID, roleID string) (map[string]any, error)
	RemoveRole(ctx context.Context, rawToken, userID, roleID string) error
	RoleDetails(ctx context.Context, rawToken, roleID string) map[string]any
	ListPolicies(ctx context.Context, rawToken, userID string) ([]map[string]any, error)
	ListPermissions(ctx context.Context, rawToken, userID string) ([]map[string]any, error)
}

// BlobStore — контракт файлового сервиса.
type BlobStore interface {
	MaxBytes() int64
	ValidateImage(contentType string, size int64) error
	Upload(ctx context.Context, rawToken, filename, contentType string, content io.Reader) (string, error)
	Download(ctx context.Context, rawToken, fileID string) (io.ReadCloser, string, error)
	Delete(ctx context.Context, rawToken, fileID string) error
}

type Handler struct {
	companies *repo.CompanyStore
	users     *repo.UserStore
	positions *repo.PositionStore
	customers *repo.CustomerStore
	subs      *repo.SubcontractorStore
	tree      *orgtree.Service
	passwords *password.Service
	guard     Authorizer
	blobs     BlobStore

	publicConfig map[string]any
}

type Deps struct {
	Companies      *repo.CompanyStore
	Users          *repo.UserStore
	Positions      *repo.PositionStore
	Customers      *repo.CustomerStore
	Subcontractors *repo.SubcontractorStore
	Tree           *orgtree.Service
	Passwords      *password.Service
	Guardian       Authorizer
	Storage        BlobStore
	// PublicConfig — то, что можно показать по /config (без секретов).
	PublicConfig map[string]any
}

func NewHandler(d Deps) *Handler {
	return &Handler{
		companies: d.Companies,
		users:     d.Users,
		positions: d.Positions,
		customers: d.Customers,
		subs:      d.Subcontractors,
		tree:      d.Tree,
		passwords: d.Passwords,
		guard:     d.Guardian,
		blobs:     d.Storage,

		publicConfig: d.PublicConfig,
	}
}

// authorize достаёт Identity и спрашивает Guardian. Недоступность
// Guardian — это 5xx, а не отказ в доступе.
func (h *Handler) authorize(w http.ResponseWriter, r *http.Request, resource, action string) (middleware.Identity, bool) {
	id, ok := middleware.GetIdentity(r)
	if !ok {
		models.WriteProblem(w, http.StatusUnauthorized,
			"Unauthorized", "authentication required", nil)
		return id, false
	}
	dec, err := h.guard.CheckAccess(r.Context(), id.RawToken, resource, action)
	if err != nil {
		models.WriteError(w, err, "authorization service unavailable")
		return id, false
	}
	if !dec.Allow {
		models.WriteProblem(w, http.StatusForbidden,
			"Forbidden", "insufficient permissions", nil)
		return id, false
	}
	return id, true
}

// requireIdentity — для операций над самим собой, где Guardian не нужен.
func requireIdentity(w http.ResponseWriter, r *http.Request) (middleware.Identity, bool) {
	id, ok := middleware.GetIdentity(r)
	if !ok {
		models.WriteProblem(w, http.StatusUnauthorized,
			"Unauthorized", "authentication required", nil)
	}
	return id, ok
}

// resolveCompanyID определяет арендатора создаваемой записи.
// Суперпользователь обязан указать company_id в теле; обычный
// пользователь — либо не указывает, либо указывает свой.
func resolveCompanyID(id middleware.Identity, bodyCompanyID string) (string, error) {
	if id.CompanyID == "" {
		if bodyCompanyID == "" {
			return "", apperr.Wrap(apperr.ErrValidation, "company_id is required")
		}
		return bodyCompanyID, nil
	}
	if bodyCompanyID != "" && bodyCompanyID != id.CompanyID {
		return "", apperr.Wrap(apperr.ErrValidation,
			"company_id does not match caller context")
	}
	return id.CompanyID, nil
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		models.WriteProblem(w, http.StatusBadRequest,
			"Validation Error", "malformed JSON body", nil)
		return false
	}
	return true
}

// decodeFields читает тело как карту и оставляет только разрешённые
// поля. Защита от записи служебных колонок через PATCH.
func decodeFields(w http.ResponseWriter, r *http.Request, allowed ...string) (map[string]any, bool) {
	var raw map[string]any
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		models.WriteProblem(w, http.StatusBadRequest,
			"Validation Error", "malformed JSON body", nil)
		return nil, false
	}
	out := map[string]any{}
	for _, k := range allowed {
		if v, ok := raw[k]; ok {
			out[k] = v
		}
	}
	if len(out) == 0 {
		models.WriteProblem(w, http.StatusBadRequest,
			"Validation Error", "no updatable fields in body", nil)
		return nil, false
	}
	return out, true
}
