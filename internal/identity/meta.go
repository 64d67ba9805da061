package identity

import (
	"net/http"

	"identity/internal/models"
)

// Version проставляется при сборке через -ldflags.
var Version = "dev"

// ServiceVersion отдаёт имя и версию сервиса.
func (h *Handler) ServiceVersion(w http.ResponseWriter, _ *http.Request) {
	models.WriteJSON(w, http.StatusOK, map[string]string{
		"service": "identity",
		"version": Version,
	})
}

// ServiceConfig — публичная часть конфигурации, без секретов.
func (h *Handler) ServiceConfig(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.authorize(w, r, "config", "read"); !ok {
		return
	}
	models.WriteJSON(w, http.StatusOK, h.publicConfig)
}
