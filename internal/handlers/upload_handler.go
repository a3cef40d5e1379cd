package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/asgtransit/website-api/internal/services"
)

// UploadResponse is returned for a stored attachment
type UploadResponse struct {
	Success bool   `json:"success"`
	Path    string `json:"path"`
}

// UploadHandler handles standalone attachment uploads
type UploadHandler struct {
	uploadService  *services.UploadService
	maxUploadBytes int64
	logger         *logrus.Logger
}

// NewUploadHandler creates a new upload handler
func NewUploadHandler(uploadService *services.UploadService, maxUploadBytes int64, logger *logrus.Logger) *UploadHandler {
	return &UploadHandler{
		uploadService:  uploadService,
		maxUploadBytes: maxUploadBytes,
		logger:         logger,
	}
}

// Upload handles POST /api/v1/admin/uploads
// Form: file (required), folder (general, cards or schedules)
func (h *UploadHandler) Upload(c *gin.Context) {
	if !isMultipart(c) {
		badRequest(c, "expected a multipart/form-data body")
		return
	}

	in, files, err := readPayload(c, h.maxUploadBytes, services.FieldFile)
	if err != nil {
		badRequest(c, err.Error())
		return
	}

	var upload *services.Upload
	if f, ok := files[services.FieldFile]; ok {
		upload = &f
	}
	folder, _ := in["folder"].(string)

	path, err := h.uploadService.Save(c.Request.Context(), folder, upload)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, UploadResponse{Success: true, Path: path})
}
