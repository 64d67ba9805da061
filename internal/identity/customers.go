package identity

import (
	"net/http"

	"github.com/gorilla/mux"

	"identity/internal/models"
)

var contactFields = []string{
	"name", "contact_name", "email", "phone",
	"address", "city", "country", "postal_code",
}

func (h *Handler) CreateCustomer(w http.ResponseWriter, r *http.Request) {
	id, ok := h.authorize(w, r, "customers", "create")
	if !ok {
		return
	}
	var c models.Customer
	if !decodeJSON(w, r, &c) {
		return
	}
	if c.Name == "" {
		models.WriteProblem(w, http.StatusBadRequest,
			"Validation Error", "name is required", nil)
		return
	}
	companyID, err := resolveCompanyID(id, c.CompanyID)
	if err != nil {
		models.WriteError(w, err, "")
		return
	}
	c.CompanyID = companyID
	if err := h.customers.Create(r.Context(), &c); err != nil {
		models.WriteError(w, err, "")
		return
	}
	models.WriteJSON(w, http.StatusCreated, c)
}

func (h *Handler) ListCustomers(w http.ResponseWriter, r *http.Request) {
	id, ok := h.authorize(w, r, "customers", "read")
	if !ok {
		return
	}
	list, err := h.customers.List(r.Context(), id.CompanyID)
	if err != nil {
		models.WriteError(w, err, "")
		return
	}
	models.WriteJSON(w, http.StatusOK, list)
}

func (h *Handler) GetCustomer(w http.ResponseWriter, r *http.Request) {
	id, ok := h.authorize(w, r, "customers", "read")
	if !ok {
		return
	}
	c, err := h.customers.GetByID(r.Context(), id.CompanyID, mux.Vars(r)["id"])
	if err != nil {
		models.WriteError(w, err, "")
		return
	}
	models.WriteJSON(w, http.StatusOK, c)
}

func (h *Handler) UpdateCustomer(w http.ResponseWriter, r *http.Request) {
	id, ok := h.authorize(w, r, "customers", "update")
	if !ok {
		return
	}
	fields, ok := decodeFields(w, r, contactFields...)
	if !ok {
		return
	}
	c, err := h.customers.Update(r.Context(), id.CompanyID, mux.Vars(r)["id"], fields)
	if err != nil {
		models.WriteError(w, err, "")
		return
	}
	models.WriteJSON(w, http.StatusOK, c)
}

func (h *Handler) DeleteCustomer(w http.ResponseWriter, r *http.Request) {
	id, ok := h.authorize(w, r, "customers", "delete")
	if !ok {
		return
	}
	if err := h.customers.Delete(r.Context(), id.CompanyID, mux.Vars(r)["id"]); err != nil {
		models.WriteError(w, err, "")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
