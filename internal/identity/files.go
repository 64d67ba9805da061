package identity

import (
	"io"
	"net/http"

	"github.com/gorilla/mux"

	"identity/internal/logs"
	"identity/internal/middleware"
	"identity/internal/models"
)

// blobTarget описывает, чей файл меняем: текущий file_id и запись
// нового. Сами байты живут в сервисе хранения.
type blobTarget struct {
	currentFileID string
	save          func(fileID string) error
}

func (h *Handler) uploadBlob(w http.ResponseWriter, r *http.Request, id middleware.Identity, t blobTarget) {
	r.Body = http.MaxBytesReader(w, r.Body, h.blobs.MaxBytes()+1024)
	if err := r.ParseMultipartForm(h.blobs.MaxBytes()); err != nil {
		models.WriteProblem(w, http.StatusBadRequest,
			"Validation Error", "multipart form with a file field is required", nil)
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		models.WriteProblem(w, http.StatusBadRequest,
			"Validation Error", "file field is required", nil)
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if err := h.blobs.ValidateImage(contentType, header.Size); err != nil {
		models.WriteError(w, err, "")
		return
	}

	fileID, err := h.blobs.Upload(r.Context(), id.RawToken, header.Filename, contentType, file)
	if err != nil {
		models.WriteError(w, err, "file storage unavailable")
		return
	}
	if err := t.save(fileID); err != nil {
		// запись не удалась — подчищаем осиротевший файл
		if derr := h.blobs.Delete(r.Context(), id.RawToken, fileID); derr != nil {
			logs.Logger.Warnf("orphaned file %s left in storage: %v", fileID, derr)
		}
		models.WriteError(w, err, "")
		return
	}
	// старый файл больше не нужен; неудачное удаление не валит запрос
	if t.currentFileID != "" {
		if err := h.blobs.Delete(r.Context(), id.RawToken, t.currentFileID); err != nil {
			logs.Logger.Warnf("stale file %s not removed: %v", t.currentFileID, err)
		}
	}
	models.WriteJSON(w, http.StatusOK, map[string]string{"message": "file uploaded"})
}

func (h *Handler) downloadBlob(w http.ResponseWriter, r *http.Request, id middleware.Identity, fileID string) {
	if fileID == "" {
		models.WriteProblem(w, http.StatusNotFound,
			"Not Found", "no file attached", nil)
		return
	}
	body, contentType, err := h.blobs.Download(r.Context(), id.RawToken, fileID)
	if err != nil {
		models.WriteError(w, err, "")
		return
	}
	defer body.Close()
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, body); err != nil {
		logs.Logger.Warnf("file %s stream interrupted: %v", fileID, err)
	}
}

func (h *Handler) deleteBlob(w http.ResponseWriter, r *http.Request, id middleware.Identity, t blobTarget) {
	if t.currentFileID == "" {
		models.WriteProblem(w, http.StatusNotFound,
			"Not Found", "no file attached", nil)
		return
	}
	if err := h.blobs.Delete(r.Context(), id.RawToken, t.currentFileID); err != nil {
		models.WriteError(w, err, "file storage unavailable")
		return
	}
	if err := t.save(""); err != nil {
		models.WriteError(w, err, "")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- аватар пользователя ---

func (h *Handler) UploadUserAvatar(w http.ResponseWriter, r *http.Request) {
	id, ok := h.authorize(w, r, "users", "update")
	if !ok {
		return
	}
	userID := mux.Vars(r)["id"]
	u, err := h.users.GetByID(r.Context(), id.CompanyID, userID)
	if err != nil {
		models.WriteError(w, err, "")
		return
	}
	h.uploadBlob(w, r, id, blobTarget{
		currentFileID: u.AvatarFileID,
		save: func(fileID string) error {
			return h.users.SetAvatar(r.Context(), id.CompanyID, userID, fileID)
		},
	})
}

func (h *Handler) DownloadUserAvatar(w http.ResponseWriter, r *http.Request) {
	id, ok := h.authorize(w, r, "users", "read")
	if !ok {
		return
	}
	u, err := h.users.GetByID(r.Context(), id.CompanyID, mux.Vars(r)["id"])
	if err != nil {
		models.WriteError(w, err, "")
		return
	}
	h.downloadBlob(w, r, id, u.AvatarFileID)
}

func (h *Handler) DeleteUserAvatar(w http.ResponseWriter, r *http.Request) {
	id, ok := h.authorize(w, r, "users", "update")
	if !ok {
		return
	}
	userID := mux.Vars(r)["id"]
	u, err := h.users.GetByID(r.Context(), id.CompanyID, userID)
	if err != nil {
		models.WriteError(w, err, "")
		return
	}
	h.deleteBlob(w, r, id, blobTarget{
		currentFileID: u.AvatarFileID,
		save: func(fileID string) error {
			return h.users.SetAvatar(r.Context(), id.CompanyID, userID, fileID)
		},
	})
}

// --- логотип компании ---

func (h *Handler) companyLogoTarget(w http.ResponseWriter, r *http.Request, id middleware.Identity) (blobTarget, bool) {
	targetID := mux.Vars(r)["id"]
	if id.CompanyID != "" && id.CompanyID != targetID {
		models.WriteProblem(w, http.StatusNotFound,
			"Not Found", "company not found", nil)
		return blobTarget{}, false
	}
	c, err := h.companies.GetByID(r.Context(), targetID)
	if err != nil {
		models.WriteError(w, err, "")
		return blobTarget{}, false
	}
	return blobTarget{
		currentFileID: c.LogoFileID,
		save: func(fileID string) error {
			return h.companies.SetLogo(r.Context(), targetID, fileID)
		},
	}, true
}

func (h *Handler) UploadCompanyLogo(w http.ResponseWriter, r *http.Request) {
	id, ok := h.authorize(w, r, "companies", "update")
	if !ok {
		return
	}
	t, ok := h.companyLogoTarget(w, r, id)
	if !ok {
		return
	}
	h.uploadBlob(w, r, id, t)
}

func (h *Handler) DownloadCompanyLogo(w http.ResponseWriter, r *http.Request) {
	id, ok := h.authorize(w, r, "companies", "read")
	if !ok {
		return
	}
	t, ok := h.companyLogoTarget(w, r, id)
	if !ok {
		return
	}
	h.downloadBlob(w, r, id, t.currentFileID)
}

func (h *Handler) DeleteCompanyLogo(w http.ResponseWriter, r *http.Request) {
	id, ok := h.authorize(w, r, "companies", "update")
	if !ok {
		return
	}
	t, ok := h.companyLogoTarget(w, r, id)
	if !ok {
		return
	}
	h.deleteBlob(w, r, id, t)
}

// --- логотип заказчика ---

func (h *Handler) customerLogoTarget(w http.ResponseWriter, r *http.Request, id middleware.Identity) (blobTarget, bool) {
	targetID := mux.Vars(r)["id"]
	c, err := h.customers.GetByID(r.Context(), id.CompanyID, targetID)
	if err != nil {
		models.WriteError(w, err, "")
		return blobTarget{}, false
	}
	return blobTarget{
		currentFileID: c.LogoFileID,
		save: func(fileID string) error {
			return h.customers.SetLogo(r.Context(), id.CompanyID, targetID, fileID)
		},
	}, true
}

func (h *Handler) UploadCustomerLogo(w http.ResponseWriter, r *http.Request) {
	id, ok := h.authorize(w, r, "customers", "update")
	if !ok {
		return
	}
	t, ok := h.customerLogoTarget(w, r, id)
	if !ok {
		return
	}
	h.uploadBlob(w, r, id, t)
}

func (h *Handler) DownloadCustomerLogo(w http.ResponseWriter, r *http.Request) {
	id, ok := h.authorize(w, r, "customers", "read")
	if !ok {
		return
	}
	t, ok := h.customerLogoTarget(w, r, id)
	if !ok {
		return
	}
	h.downloadBlob(w, r, id, t.currentFileID)
}

func (h *Handler) DeleteCustomerLogo(w http.ResponseWriter, r *http.Request) {
	id, ok := h.authorize(w, r, "customers", "update")
	if !ok {
		return
	}
	t, ok := h.customerLogoTarget(w, r, id)
	if !ok {
		return
	}
	h.deleteBlob(w, r, id, t)
}

// --- логотип субподрядчика ---

func (h *Handler) subcontractorLogoTarget(w http.ResponseWriter, r *http.Request, id middleware.Identity) (blobTarget, bool) {
	targetID := mux.Vars(r)["id"]
	sc, err := h.subs.GetByID(r.Context(), id.CompanyID, targetID)
	if err != nil {
		models.WriteError(w, err, "")
		return blobTarget{}, false
	}
	return blobTarget{
		currentFileID: sc.LogoFileID,
		save: func(fileID string) error {
			return h.subs.SetLogo(r.Context(), id.CompanyID, targetID, fileID)
		},
	}, true
}

func (h *Handler) UploadSubcontractorLogo(w http.ResponseWriter, r *http.Request) {
	id, ok := h.authorize(w, r, "subcontractors", "update")
	if !ok {
		return
	}
	t, ok := h.subcontractorLogoTarget(w, r, id)
	if !ok {
		return
	}
	h.uploadBlob(w, r, id, t)
}

func (h *Handler) DownloadSubcontractorLogo(w http.ResponseWriter, r *http.Request) {
	id, ok := h.authorize(w, r, "subcontractors", "read")
	if !ok {
		return
	}
	t, ok := h.subcontractorLogoTarget(w, r, id)
	if !ok {
		return
	}
	h.downloadBlob(w, r, id, t.currentFileID)
}

func (h *Handler) DeleteSubcontractorLogo(w http.ResponseWriter, r *http.Request) {
	id, ok := h.authorize(w, r, "subcontractors", "update")
	if !ok {
		return
	}
	t, ok := h.subcontractorLogoTarget(w, r, id)
	if !ok {
		return
	}
	h.deleteBlob(w, r, id, t)
}
