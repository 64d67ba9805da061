package identity

import (
	"net/http"

	"github.com/gorilla/mux"

	"identity/internal/models"
)

func (h *Handler) CreateSubcontractor(w http.ResponseWriter, r *http.Request) {
	id, ok := h.authorize(w, r, "subcontractors", "create")
	if !ok {
		return
	}
	var sc models.Subcontractor
	if !decodeJSON(w, r, &sc) {
		return
	}
	if sc.Name == "" {
		models.WriteProblem(w, http.StatusBadRequest,
			"Validation Error", "name is required", nil)
		return
	}
	companyID, err := resolveCompanyID(id, sc.CompanyID)
	if err != nil {
		models.WriteError(w, err, "")
		return
	}
	sc.CompanyID = companyID
	if err := h.subs.Create(r.Context(), &sc); err != nil {
		models.WriteError(w, err, "")
		return
	}
	models.WriteJSON(w, http.StatusCreated, sc)
}

func (h *Handler) ListSubcontractors(w http.ResponseWriter, r *http.Request) {
	id, ok := h.authorize(w, r, "subcontractors", "read")
	if !ok {
		return
	}
	list, err := h.subs.List(r.Context(), id.CompanyID)
	if err != nil {
		models.WriteError(w, err, "")
		return
	}
	models.WriteJSON(w, http.StatusOK, list)
}

func (h *Handler) GetSubcontractor(w http.ResponseWriter, r *http.Request) {
	id, ok := h.authorize(w, r, "subcontractors", "read")
	if !ok {
		return
	}
	sc, err := h.subs.GetByID(r.Context(), id.CompanyID, mux.Vars(r)["id"])
	if err != nil {
		models.WriteError(w, err, "")
		return
	}
	models.WriteJSON(w, http.StatusOK, sc)
}

func (h *Handler) UpdateSubcontractor(w http.ResponseWriter, r *http.Request) {
	id, ok := h.authorize(w, r, "subcontractors", "update")
	if !ok {
		return
	}
	fields, ok := decodeFields(w, r, contactFields...)
	if !ok {
		return
	}
	sc, err := h.subs.Update(r.Context(), id.CompanyID, mux.Vars(r)["id"], fields)
	if err != nil {
		models.WriteError(w, err, "")
		return
	}
	models.WriteJSON(w, http.StatusOK, sc)
}

func (h *Handler) DeleteSubcontractor(w http.ResponseWriter, r *http.Request) {
	id, ok := h.authorize(w, r, "subcontractors", "delete")
	if !ok {
		return
	}
	if err := h.subs.Delete(r.Context(), id.CompanyID, mux.Vars(r)["id"]); err != nil {
		models.WriteError(w, err, "")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
