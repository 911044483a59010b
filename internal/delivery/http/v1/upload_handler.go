package v1

import (
	"net/http"
	"path/filepath"
	"strings"

	"shopflow-backend/internal/domain"
	"shopflow-backend/pkg/logger"
	"shopflow-backend/pkg/storage"
	"shopflow-backend/pkg/utils"
)

var (
	allowedMimeTypes = map[string]bool{
		"image/jpeg":      true,
		"image/jpg":       true,
		"image/png":       true,
		"image/webp":      true,
		"application/pdf": true,
	}
	allowedExtensions = map[string]bool{
		".jpg":  true,
		".jpeg": true,
		".png":  true,
		".webp": true,
		".pdf":  true,
	}
)

// UploadHandler receives delivery-proof files (doorstep photos, signed
// slips) and stores them for linking to an order's delivery assignment.
type UploadHandler struct {
	storage       *storage.ProofStorage
	maxUploadSize int64
}

func NewUploadHandler(s *storage.ProofStorage, maxUploadSizeMB int64) *UploadHandler {
	return &UploadHandler{
		storage:       s,
		maxUploadSize: maxUploadSizeMB << 20, // MB to bytes
	}
}

func (h *UploadHandler) UploadDeliveryProof(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		utils.WriteError(w, http.StatusBadRequest, domain.KindInvalidArgument, "file too large or invalid format")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, domain.KindInvalidArgument, "invalid file")
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if !allowedMimeTypes[contentType] {
		utils.WriteError(w, http.StatusBadRequest, domain.KindInvalidArgument, "invalid file type, allowed: JPEG, PNG, WebP, PDF")
		return
	}
	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !allowedExtensions[ext] {
		utils.WriteError(w, http.StatusBadRequest, domain.KindInvalidArgument, "invalid file extension")
		return
	}

	url, err := h.storage.UploadProof(r.Context(), file, header)
	if err != nil {
		logger.WithContext(r.Context()).Error().Err(err).Msg("Delivery proof upload failed")
		utils.WriteError(w, http.StatusInternalServerError, "Internal", "upload failed")
		return
	}

	utils.WriteJSON(w, http.StatusCreated, domain.Response{
		Success: true,
		Data:    map[string]string{"url": url},
	})
}
