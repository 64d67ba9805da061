package identity

import (
	"net/http"

	"github.com/gorilla/mux"

	"identity/internal/models"
)

var companyFields = []string{
	"name", "description", "address", "city", "country",
	"postal_code", "phone", "email", "website",
}

func (h *Handler) CreateCompany(w http.ResponseWriter, r *http.Request) {
	id, ok := h.authorize(w, r, "companies", "create")
	if !ok {
		return
	}
	// новые арендаторы — только суперпользователь
	if id.CompanyID != "" {
		models.WriteProblem(w, http.StatusForbidden,
			"Forbidden", "only a superuser can create companies", nil)
		return
	}
	var c models.Company
	if !decodeJSON(w, r, &c) {
		return
	}
	if c.Name == "" {
		models.WriteProblem(w, http.StatusBadRequest,
			"Validation Error", "name is required", nil)
		return
	}
	if err := h.companies.Create(r.Context(), &c); err != nil {
		models.WriteError(w, err, "")
		return
	}
	models.WriteJSON(w, http.StatusCreated, c)
}

func (h *Handler) ListCompanies(w http.ResponseWriter, r *http.Request) {
	id, ok := h.authorize(w, r, "companies", "read")
	if !ok {
		return
	}
	if id.CompanyID != "" {
		// арендатор видит только свою компанию
		c, err := h.companies.GetByID(r.Context(), id.CompanyID)
		if err != nil {
			models.WriteError(w, err, "")
			return
		}
		models.WriteJSON(w, http.StatusOK, []models.Company{*c})
		return
	}
	list, err := h.companies.List(r.Context())
	if err != nil {
		models.WriteError(w, err, "")
		return
	}
	models.WriteJSON(w, http.StatusOK, list)
}

func (h *Handler) GetCompany(w http.ResponseWriter, r *http.Request) {
	id, ok := h.authorize(w, r, "companies", "read")
	if !ok {
		return
	}
	targetID := mux.Vars(r)["id"]
	if id.CompanyID != "" && id.CompanyID != targetID {
		// чужая компания неотличима от несуществующей
		models.WriteProblem(w, http.StatusNotFound,
			"Not Found", "company not found", nil)
		return
	}
	c, err := h.companies.GetByID(r.Context(), targetID)
	if err != nil {
		models.WriteError(w, err, "")
		return
	}
	models.WriteJSON(w, http.StatusOK, c)
}

func (h *Handler) UpdateCompany(w http.ResponseWriter, r *http.Request) {
	id, ok := h.authorize(w, r, "companies", "update")
	if !ok {
		return
	}
	targetID := mux.Vars(r)["id"]
	if id.CompanyID != "" && id.CompanyID != targetID {
		models.WriteProblem(w, http.StatusNotFound,
			"Not Found", "company not found", nil)
		return
	}
	fields, ok := decodeFields(w, r, companyFields...)
	if !ok {
		return
	}
	c, err := h.companies.Update(r.Context(), targetID, fields)
	if err != nil {
		models.WriteError(w, err, "")
		return
	}
	models.WriteJSON(w, http.StatusOK, c)
}

func (h *Handler) DeleteCompany(w http.ResponseWriter, r *http.Request) {
	id, ok := h.authorize(w, r, "companies", "delete")
	if !ok {
		return
	}
	if id.CompanyID != "" {
		models.WriteProblem(w, http.StatusForbidden,
			"Forbidden", "only a superuser can delete companies", nil)
		return
	}
	if err := h.companies.Delete(r.Context(), mux.Vars(r)["id"]); err != nil {
		models.WriteError(w, err, "")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
