package identity

import (
	"net/http"

	"github.com/gorilla/mux"

	"identity/internal/models"
)

type createPositionRequest struct {
	CompanyID          string `json:"company_id"`
	OrganizationUnitID string `json:"organization_unit_id"`
	Title              string `json:"title"`
	Description        string `json:"description"`
	Level              string `json:"level"`
}

func (h *Handler) CreatePosition(w http.ResponseWriter, r *http.Request) {
	id, ok := h.authorize(w, r, "positions", "create")
	if !ok {
		return
	}
	var req createPositionRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Title == "" || req.OrganizationUnitID == "" {
		models.WriteProblem(w, http.StatusBadRequest,
			"Validation Error", "title and organization_unit_id are required", nil)
		return
	}
	companyID, err := resolveCompanyID(id, req.CompanyID)
	if err != nil {
		models.WriteError(w, err, "")
		return
	}
	p := models.Position{
		CompanyID:          companyID,
		OrganizationUnitID: req.OrganizationUnitID,
		Title:              req.Title,
		Description:        req.Description,
		Level:              req.Level,
	}
	if err := h.positions.Create(r.Context(), &p); err != nil {
		models.WriteError(w, err, "")
		return
	}
	models.WriteJSON(w, http.StatusCreated, p)
}

func (h *Handler) ListPositions(w http.ResponseWriter, r *http.Request) {
	id, ok := h.authorize(w, r, "positions", "read")
	if !ok {
		return
	}
	list, err := h.positions.List(r.Context(), id.CompanyID)
	if err != nil {
		models.WriteError(w, err, "")
		return
	}
	models.WriteJSON(w, http.StatusOK, list)
}

func (h *Handler) GetPosition(w http.ResponseWriter, r *http.Request) {
	id, ok := h.authorize(w, r, "positions", "read")
	if !ok {
		return
	}
	p, err := h.positions.GetByID(r.Context(), id.CompanyID, mux.Vars(r)["id"])
	if err != nil {
		models.WriteError(w, err, "")
		return
	}
	models.WriteJSON(w, http.StatusOK, p)
}

func (h *Handler) UpdatePosition(w http.ResponseWriter, r *http.Request) {
	id, ok := h.authorize(w, r, "positions", "update")
	if !ok {
		return
	}
	fields, ok := decodeFields(w, r, "title", "description", "level", "organization_unit_id")
	if !ok {
		return
	}
	p, err := h.positions.Update(r.Context(), id.CompanyID, mux.Vars(r)["id"], fields)
	if err != nil {
		models.WriteError(w, err, "")
		return
	}
	models.WriteJSON(w, http.StatusOK, p)
}

func (h *Handler) DeletePosition(w http.ResponseWriter, r *http.Request) {
	id, ok := h.authorize(w, r, "positions", "delete")
	if !ok {
		return
	}
	if err := h.positions.Delete(r.Context(), id.CompanyID, mux.Vars(r)["id"]); err != nil {
		models.WriteError(w, err, "")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
