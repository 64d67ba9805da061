package identity

import (
	"net/http"

	"github.com/gorilla/mux"

	"identity/internal/middleware"
	"identity/internal/models"
)

// lookupUser проверяет, что целевой пользователь виден вызывающему.
// Чужой арендатор отсекается здесь, до похода в Guardian за ролями.
func (h *Handler) lookupUser(w http.ResponseWriter, r *http.Request, id middleware.Identity) (string, bool) {
	userID := mux.Vars(r)["id"]
	if _, err := h.users.GetByID(r.Context(), id.CompanyID, userID); err != nil {
		models.WriteError(w, err, "")
		return "", false
	}
	return userID, true
}

// ListUserRoles отдаёт назначения ролей, обогащённые описаниями ролей
// из Guardian.
func (h *Handler) ListUserRoles(w http.ResponseWriter, r *http.Request) {
	id, ok := h.authorize(w, r, "roles", "read")
	if !ok {
		return
	}
	userID, ok := h.lookupUser(w, r, id)
	if !ok {
		return
	}
	assignments, err := h.guard.ListRoles(r.Context(), id.RawToken, userID)
	if err != nil {
		models.WriteError(w, err, "role service unavailable")
		return
	}
	for _, a := range assignments {
		if roleID, ok := a["role_id"].(string); ok && roleID != "" {
			a["role"] = h.guard.RoleDetails(r.Context(), id.RawToken, roleID)
		}
	}
	models.WriteJSON(w, http.StatusOK, assignments)
}

func (h *Handler) AssignUserRole(w http.ResponseWriter, r *http.Request) {
	id, ok := h.authorize(w, r, "roles", "create")
	if !ok {
		return
	}
	userID, ok := h.lookupUser(w, r, id)
	if !ok {
		return
	}
	var req struct {
		RoleID string `json:"role_id"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.RoleID == "" {
		models.WriteProblem(w, http.StatusBadRequest,
			"Validation Error", "role_id is required", nil)
		return
	}
	out, err := h.guard.AssignRole(r.Context(), id.RawToken, userID, req.RoleID)
	if err != nil {
		models.WriteError(w, err, "")
		return
	}
	models.WriteJSON(w, http.StatusCreated, out)
}

func (h *Handler) RemoveUserRole(w http.ResponseWriter, r *http.Request) {
	id, ok := h.authorize(w, r, "roles", "delete")
	if !ok {
		return
	}
	userID, ok := h.lookupUser(w, r, id)
	if !ok {
		return
	}
	roleID := mux.Vars(r)["roleID"]
	if err := h.guard.RemoveRole(r.Context(), id.RawToken, userID, roleID); err != nil {
		models.WriteError(w, err, "")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListUserPolicies — агрегат политик по всем ролям пользователя.
func (h *Handler) ListUserPolicies(w http.ResponseWriter, r *http.Request) {
	id, ok := h.authorize(w, r, "roles", "read")
	if !ok {
		return
	}
	userID, ok := h.lookupUser(w, r, id)
	if !ok {
		return
	}
	policies, err := h.guard.ListPolicies(r.Context(), id.RawToken, userID)
	if err != nil {
		models.WriteError(w, err, "role service unavailable")
		return
	}
	models.WriteJSON(w, http.StatusOK, map[string]any{
		"user_id":  userID,
		"policies": policies,
	})
}

// ListUserPermissions — полный развёрнутый набор прав пользователя.
func (h *Handler) ListUserPermissions(w http.ResponseWriter, r *http.Request) {
	id, ok := h.authorize(w, r, "roles", "read")
	if !ok {
		return
	}
	userID, ok := h.lookupUser(w, r, id)
	if !ok {
		return
	}
	perms, err := h.guard.ListPermissions(r.Context(), id.RawToken, userID)
	if err != nil {
		models.WriteError(w, err, "role service unavailable")
		return
	}
	models.WriteJSON(w, http.StatusOK, map[string]any{
		"user_id":     userID,
		"permissions": perms,
	})
}
