package identity

import (
	"net/http"

	"github.com/gorilla/mux"

	"identity/internal/models"
	"identity/internal/orgtree"
)

type createUnitRequest struct {
	CompanyID   string `json:"company_id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	ParentID    string `json:"parent_id"`
}

func (h *Handler) CreateOrgUnit(w http.ResponseWriter, r *http.Request) {
	id, ok := h.authorize(w, r, "organization_units", "create")
	if !ok {
		return
	}
	var req createUnitRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Name == "" {
		models.WriteProblem(w, http.StatusBadRequest,
			"Validation Error", "name is required", nil)
		return
	}
	companyID, err := resolveCompanyID(id, req.CompanyID)
	if err != nil {
		models.WriteError(w, err, "")
		return
	}
	unit, err := h.tree.Create(r.Context(), orgtree.CreateInput{
		CompanyID:   companyID,
		Name:        req.Name,
		Description: req.Description,
		ParentID:    req.ParentID,
	})
	if err != nil {
		models.WriteError(w, err, "")
		return
	}
	models.WriteJSON(w, http.StatusCreated, unit)
}

func (h *Handler) ListOrgUnits(w http.ResponseWriter, r *http.Request) {
	id, ok := h.authorize(w, r, "organization_units", "read")
	if !ok {
		return
	}
	list, err := h.tree.List(r.Context(), id.CompanyID)
	if err != nil {
		models.WriteError(w, err, "")
		return
	}
	models.WriteJSON(w, http.StatusOK, list)
}

func (h *Handler) GetOrgUnit(w http.ResponseWriter, r *http.Request) {
	id, ok := h.authorize(w, r, "organization_units", "read")
	if !ok {
		return
	}
	unit, err := h.tree.Get(r.Context(), id.CompanyID, mux.Vars(r)["id"])
	if err != nil {
		models.WriteError(w, err, "")
		return
	}
	models.WriteJSON(w, http.StatusOK, unit)
}

// UpdateOrgUnit правит атрибуты; смена parent_id — это перенос поддерева
// с пересчётом path/level, им занимается orgtree.
func (h *Handler) UpdateOrgUnit(w http.ResponseWriter, r *http.Request) {
	id, ok := h.authorize(w, r, "organization_units", "update")
	if !ok {
		return
	}
	fields, ok := decodeFields(w, r, "name", "description", "parent_id")
	if !ok {
		return
	}
	unit, err := h.tree.Update(r.Context(), id.CompanyID, mux.Vars(r)["id"], fields)
	if err != nil {
		models.WriteError(w, err, "")
		return
	}
	models.WriteJSON(w, http.StatusOK, unit)
}

func (h *Handler) DeleteOrgUnit(w http.ResponseWriter, r *http.Request) {
	id, ok := h.authorize(w, r, "organization_units", "delete")
	if !ok {
		return
	}
	cascade := r.URL.Query().Get("cascade") == "true"
	if err := h.tree.Delete(r.Context(), id.CompanyID, mux.Vars(r)["id"], cascade); err != nil {
		models.WriteError(w, err, "")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ListOrgUnitChildren(w http.ResponseWriter, r *http.Request) {
	id, ok := h.authorize(w, r, "organization_units", "read")
	if !ok {
		return
	}
	list, err := h.tree.Children(r.Context(), id.CompanyID, mux.Vars(r)["id"])
	if err != nil {
		models.WriteError(w, err, "")
		return
	}
	models.WriteJSON(w, http.StatusOK, list)
}

func (h *Handler) ListOrgUnitDescendants(w http.ResponseWriter, r *http.Request) {
	id, ok := h.authorize(w, r, "organization_units", "read")
	if !ok {
		return
	}
	list, err := h.tree.Descendants(r.Context(), id.CompanyID, mux.Vars(r)["id"])
	if err != nil {
		models.WriteError(w, err, "")
		return
	}
	models.WriteJSON(w, http.StatusOK, list)
}

// ListOrgUnitAncestors — цепочка от корня до узла включительно.
func (h *Handler) ListOrgUnitAncestors(w http.ResponseWriter, r *http.Request) {
	id, ok := h.authorize(w, r, "organization_units", "read")
	if !ok {
		return
	}
	list, err := h.tree.AncestorPath(r.Context(), id.CompanyID, mux.Vars(r)["id"])
	if err != nil {
		models.WriteError(w, err, "")
		return
	}
	models.WriteJSON(w, http.StatusOK, list)
}

// ListOrgUnitPositions — должности подразделения.
func (h *Handler) ListOrgUnitPositions(w http.ResponseWriter, r *http.Request) {
	id, ok := h.authorize(w, r, "positions", "read")
	if !ok {
		return
	}
	unitID := mux.Vars(r)["id"]
	if _, err := h.tree.Get(r.Context(), id.CompanyID, unitID); err != nil {
		models.WriteError(w, err, "")
		return
	}
	list, err := h.positions.ListByUnit(r.Context(), id.CompanyID, unitID)
	if err != nil {
		models.WriteError(w, err, "")
		return
	}
	models.WriteJSON(w, http.StatusOK, list)
}
