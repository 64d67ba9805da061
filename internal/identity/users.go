package identity

import (
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"identity/internal/models"
	"identity/internal/password"
)

var userFields = []string{
	"email", "first_name", "last_name", "language",
	"phone_number", "position_id", "is_active", "is_verified",
}

type createUserRequest struct {
	CompanyID   string `json:"company_id"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Language    string `json:"language"`
	PhoneNumber string `json:"phone_number"`
	PositionID  string `json:"position_id"`
}

func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	id, ok := h.authorize(w, r, "users", "create")
	if !ok {
		return
	}
	var req createUserRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Email == "" || !strings.Contains(req.Email, "@") {
		models.WriteProblem(w, http.StatusBadRequest,
			"Validation Error", "valid email is required", nil)
		return
	}
	companyID, err := resolveCompanyID(id, req.CompanyID)
	if err != nil {
		models.WriteError(w, err, "")
		return
	}
	hash, err := password.HashPassword(req.Password)
	if err != nil {
		models.WriteError(w, err, "")
		return
	}
	u := models.User{
		CompanyID:      companyID,
		Email:          req.Email,
		HashedPassword: hash,
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		Language:       req.Language,
		PhoneNumber:    req.PhoneNumber,
		PositionID:     req.PositionID,
		IsActive:       true,
	}
	if err := h.users.Create(r.Context(), &u); err != nil {
		models.WriteError(w, err, "")
		return
	}
	models.WriteJSON(w, http.StatusCreated, u)
}

func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	id, ok := h.authorize(w, r, "users", "read")
	if !ok {
		return
	}
	list, err := h.users.List(r.Context(), id.CompanyID)
	if err != nil {
		models.WriteError(w, err, "")
		return
	}
	models.WriteJSON(w, http.StatusOK, list)
}

func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	id, ok := h.authorize(w, r, "users", "read")
	if !ok {
		return
	}
	u, err := h.users.GetByID(r.Context(), id.CompanyID, mux.Vars(r)["id"])
	if err != nil {
		models.WriteError(w, err, "")
		return
	}
	models.WriteJSON(w, http.StatusOK, u)
}

// GetMe — профиль самого вызывающего, без похода в Guardian.
func (h *Handler) GetMe(w http.ResponseWriter, r *http.Request) {
	id, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	u, err := h.users.GetByID(r.Context(), id.CompanyID, id.UserID)
	if err != nil {
		models.WriteError(w, err, "")
		return
	}
	models.WriteJSON(w, http.StatusOK, u)
}

func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	id, ok := h.authorize(w, r, "users", "update")
	if !ok {
		return
	}
	fields, ok := decodeFields(w, r, userFields...)
	if !ok {
		return
	}
	if email, ok := fields["email"].(string); ok {
		fields["email"] = strings.ToLower(strings.TrimSpace(email))
	}
	u, err := h.users.Update(r.Context(), id.CompanyID, mux.Vars(r)["id"], fields)
	if err != nil {
		models.WriteError(w, err, "")
		return
	}
	models.WriteJSON(w, http.StatusOK, u)
}

func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, ok := h.authorize(w, r, "users", "delete")
	if !ok {
		return
	}
	if err := h.users.Delete(r.Context(), id.CompanyID, mux.Vars(r)["id"]); err != nil {
		models.WriteError(w, err, "")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListUsersByPosition — все пользователи на должности.
func (h *Handler) ListUsersByPosition(w http.ResponseWriter, r *http.Request) {
	id, ok := h.authorize(w, r, "users", "read")
	if !ok {
		return
	}
	positionID := mux.Vars(r)["id"]
	// должность должна существовать в пределах арендатора
	if _, err := h.positions.GetByID(r.Context(), id.CompanyID, positionID); err != nil {
		models.WriteError(w, err, "")
		return
	}
	list, err := h.users.ListByPosition(r.Context(), id.CompanyID, positionID)
	if err != nil {
		models.WriteError(w, err, "")
		return
	}
	models.WriteJSON(w, http.StatusOK, list)
}
