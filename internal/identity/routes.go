package identity

import (
	"net/http"

	"github.com/gorilla/mux"

	"identity/internal/middleware"
)

const uuidPattern = "{id:[a-fA-F0-9\\-]{36}}"

// RegisterPublicRoutes — эндпойнты без JWT: проверка пароля для
// auth-шлюза и восстановление пароля по OTP. Последние закрыты
// лимитером, чтобы не перебирали коды и адреса.
func RegisterPublicRoutes(r *mux.Router, h *Handler, limiter *middleware.RateLimiter) {
	r.HandleFunc("/verify_password", h.VerifyPassword).Methods(http.MethodPost)
	r.HandleFunc("/version", h.ServiceVersion).Methods(http.MethodGet)

	reset := r.PathPrefix("/users/password-reset").Subrouter()
	reset.Use(limiter.Middleware)
	reset.HandleFunc("/request", h.RequestPasswordReset).Methods(http.MethodPost)
	reset.HandleFunc("/confirm", h.ConfirmPasswordReset).Methods(http.MethodPost)
}

// RegisterProtectedRoutes — всё остальное, за JWT-кукой.
func RegisterProtectedRoutes(r *mux.Router, h *Handler) {
	r.HandleFunc("/config", h.ServiceConfig).Methods(http.MethodGet)

	// компании
	r.HandleFunc("/companies", h.CreateCompany).Methods(http.MethodPost)
	r.HandleFunc("/companies", h.ListCompanies).Methods(http.MethodGet)
	r.HandleFunc("/companies/"+uuidPattern, h.GetCompany).Methods(http.MethodGet)
	r.HandleFunc("/companies/"+uuidPattern, h.UpdateCompany).Methods(http.MethodPut, http.MethodPatch)
	r.HandleFunc("/companies/"+uuidPattern, h.DeleteCompany).Methods(http.MethodDelete)
	r.HandleFunc("/companies/"+uuidPattern+"/logo", h.UploadCompanyLogo).Methods(http.MethodPost)
	r.HandleFunc("/companies/"+uuidPattern+"/logo", h.DownloadCompanyLogo).Methods(http.MethodGet)
	r.HandleFunc("/companies/"+uuidPattern+"/logo", h.DeleteCompanyLogo).Methods(http.MethodDelete)

	// пользователи
	r.HandleFunc("/users", h.CreateUser).Methods(http.MethodPost)
	r.HandleFunc("/users", h.ListUsers).Methods(http.MethodGet)
	r.HandleFunc("/users/me", h.GetMe).Methods(http.MethodGet)
	r.HandleFunc("/users/me/change-password", h.ChangeMyPassword).Methods(http.MethodPatch)
	r.HandleFunc("/users/"+uuidPattern, h.GetUser).Methods(http.MethodGet)
	r.HandleFunc("/users/"+uuidPattern, h.UpdateUser).Methods(http.MethodPut, http.MethodPatch)
	r.HandleFunc("/users/"+uuidPattern, h.DeleteUser).Methods(http.MethodDelete)
	r.HandleFunc("/users/"+uuidPattern+"/admin-reset-password", h.AdminResetPassword).Methods(http.MethodPost)
	r.HandleFunc("/users/"+uuidPattern+"/avatar", h.UploadUserAvatar).Methods(http.MethodPost)
	r.HandleFunc("/users/"+uuidPattern+"/avatar", h.DownloadUserAvatar).Methods(http.MethodGet)
	r.HandleFunc("/users/"+uuidPattern+"/avatar", h.DeleteUserAvatar).Methods(http.MethodDelete)

	// роли и права (делегируются в Guardian)
	r.HandleFunc("/users/"+uuidPattern+"/roles", h.ListUserRoles).Methods(http.MethodGet)
	r.HandleFunc("/users/"+uuidPattern+"/roles", h.AssignUserRole).Methods(http.MethodPost)
	r.HandleFunc("/users/"+uuidPattern+"/roles/{roleID}", h.RemoveUserRole).Methods(http.MethodDelete)
	r.HandleFunc("/users/"+uuidPattern+"/policies", h.ListUserPolicies).Methods(http.MethodGet)
	r.HandleFunc("/users/"+uuidPattern+"/permissions", h.ListUserPermissions).Methods(http.MethodGet)

	// оргструктура
	r.HandleFunc("/organization_units", h.CreateOrgUnit).Methods(http.MethodPost)
	r.HandleFunc("/organization_units", h.ListOrgUnits).Methods(http.MethodGet)
	r.HandleFunc("/organization_units/"+uuidPattern, h.GetOrgUnit).Methods(http.MethodGet)
	r.HandleFunc("/organization_units/"+uuidPattern, h.UpdateOrgUnit).Methods(http.MethodPut, http.MethodPatch)
	r.HandleFunc("/organization_units/"+uuidPattern, h.DeleteOrgUnit).Methods(http.MethodDelete)
	r.HandleFunc("/organization_units/"+uuidPattern+"/children", h.ListOrgUnitChildren).Methods(http.MethodGet)
	r.HandleFunc("/organization_units/"+uuidPattern+"/descendants", h.ListOrgUnitDescendants).Methods(http.MethodGet)
	r.HandleFunc("/organization_units/"+uuidPattern+"/ancestors", h.ListOrgUnitAncestors).Methods(http.MethodGet)
	r.HandleFunc("/organization_units/"+uuidPattern+"/positions", h.ListOrgUnitPositions).Methods(http.MethodGet)

	// должности
	r.HandleFunc("/positions", h.CreatePosition).Methods(http.MethodPost)
	r.HandleFunc("/positions", h.ListPositions).Methods(http.MethodGet)
	r.HandleFunc("/positions/"+uuidPattern, h.GetPosition).Methods(http.MethodGet)
	r.HandleFunc("/positions/"+uuidPattern, h.UpdatePosition).Methods(http.MethodPut, http.MethodPatch)
	r.HandleFunc("/positions/"+uuidPattern, h.DeletePosition).Methods(http.MethodDelete)
	r.HandleFunc("/positions/"+uuidPattern+"/users", h.ListUsersByPosition).Methods(http.MethodGet)

	// заказчики
	r.HandleFunc("/customers", h.CreateCustomer).Methods(http.MethodPost)
	r.HandleFunc("/customers", h.ListCustomers).Methods(http.MethodGet)
	r.HandleFunc("/customers/"+uuidPattern, h.GetCustomer).Methods(http.MethodGet)
	r.HandleFunc("/customers/"+uuidPattern, h.UpdateCustomer).Methods(http.MethodPut, http.MethodPatch)
	r.HandleFunc("/customers/"+uuidPattern, h.DeleteCustomer).Methods(http.MethodDelete)
	r.HandleFunc("/customers/"+uuidPattern+"/logo", h.UploadCustomerLogo).Methods(http.MethodPost)
	r.HandleFunc("/customers/"+uuidPattern+"/logo", h.DownloadCustomerLogo).Methods(http.MethodGet)
	r.HandleFunc("/customers/"+uuidPattern+"/logo", h.DeleteCustomerLogo).Methods(http.MethodDelete)

	// субподрядчики
	r.HandleFunc("/subcontractors", h.CreateSubcontractor).Methods(http.MethodPost)
	r.HandleFunc("/subcontractors", h.ListSubcontractors).Methods(http.MethodGet)
	r.HandleFunc("/subcontractors/"+uuidPattern, h.GetSubcontractor).Methods(http.MethodGet)
	r.HandleFunc("/subcontractors/"+uuidPattern, h.UpdateSubcontractor).Methods(http.MethodPut, http.MethodPatch)
	r.HandleFunc("/subcontractors/"+uuidPattern, h.DeleteSubcontractor).Methods(http.MethodDelete)
	r.HandleFunc("/subcontractors/"+uuidPattern+"/logo", h.UploadSubcontractorLogo).Methods(http.MethodPost)
	r.HandleFunc("/subcontractors/"+uuidPattern+"/logo", h.DownloadSubcontractorLogo).Methods(http.MethodGet)
	r.HandleFunc("/subcontractors/"+uuidPattern+"/logo", h.DeleteSubcontractorLogo).Methods(http.MethodDelete)
}
