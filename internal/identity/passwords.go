package identity

import (
	"net/http"

	"github.com/gorilla/mux"

	"identity/internal/models"
)

// VerifyPassword — проверка учётных данных для внешних сервисов
// (auth-шлюз логинит через нас). Неизвестный email и неверный пароль
// дают одинаковый ответ.
func (h *Handler) VerifyPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	u, ok := h.passwords.VerifyPassword(r.Context(), req.Email, req.Password)
	if !ok {
		models.WriteJSON(w, http.StatusOK, map[string]any{"valid": false})
		return
	}
	models.WriteJSON(w, http.StatusOK, map[string]any{
		"valid":                   true,
		"user_id":                 u.ID,
		"company_id":              u.CompanyID,
		"is_active":               u.IsActive,
		"password_reset_required": u.PasswordResetRequired,
	})
}

// AdminResetPassword выдаёт временный пароль. Он показывается один раз
// в ответе и нигде не логируется.
func (h *Handler) AdminResetPassword(w http.ResponseWriter, r *http.Request) {
	id, ok := h.authorize(w, r, "users", "update")
	if !ok {
		return
	}
	tempPass, err := h.passwords.AdminReset(r.Context(), id.CompanyID, mux.Vars(r)["id"])
	if err != nil {
		models.WriteError(w, err, "")
		return
	}
	models.WriteJSON(w, http.StatusOK, map[string]any{
		"temporary_password":      tempPass,
		"password_reset_required": true,
	})
}

// ChangeMyPassword — смена собственного пароля с проверкой текущего.
func (h *Handler) ChangeMyPassword(w http.ResponseWriter, r *http.Request) {
	id, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	var req struct {
		CurrentPassword string `json:"current_password"`
		NewPassword     string `json:"new_password"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := h.passwords.SelfChange(r.Context(), id.UserID, req.CurrentPassword, req.NewPassword); err != nil {
		models.WriteError(w, err, "")
		return
	}
	models.WriteJSON(w, http.StatusOK, map[string]string{
		"message": "password changed",
	})
}

// RequestPasswordReset всегда отвечает одинаково: по ответу нельзя
// понять, существует ли адрес.
func (h *Handler) RequestPasswordReset(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	// пустой или кривой email получает тот же ответ: любой вариант
	// запроса неотличим от удачного
	if req.Email != "" {
		h.passwords.RequestReset(r.Context(), req.Email)
	}
	models.WriteJSON(w, http.StatusOK, map[string]string{
		"message": "if the email exists, a reset code has been sent",
	})
}

func (h *Handler) ConfirmPasswordReset(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email       string `json:"email"`
		OTPCode     string `json:"otp_code"`
		NewPassword string `json:"new_password"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Email == "" || req.OTPCode == "" {
		models.WriteProblem(w, http.StatusBadRequest,
			"Validation Error", "email and otp_code are required", nil)
		return
	}
	if err := h.passwords.ConfirmReset(r.Context(), req.Email, req.OTPCode, req.NewPassword); err != nil {
		models.WriteError(w, err, "")
		return
	}
	models.WriteJSON(w, http.StatusOK, map[string]string{
		"message": "password has been reset",
	})
}
