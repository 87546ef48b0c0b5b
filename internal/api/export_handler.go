package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"ironplan/internal/service"
)

// ExportHandler holds the export service dependency.
type ExportHandler struct {
	exportService service.ExportService
}

// NewExportHandler creates a new ExportHandler.
func NewExportHandler(exportService service.ExportService) *ExportHandler {
	return &ExportHandler{exportService: exportService}
}

// ExportResponse carries the presigned download link for a data export.
type ExportResponse struct {
	DownloadURL string `json:"downloadUrl"`
}

// CreateExport snapshots the user's data to object storage and returns a
// time-limited download URL.
func (h *ExportHandler) CreateExport(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "not authenticated")
		return
	}

	url, err := h.exportService.ExportUserData(c.Request.Context(), userID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to export data.")
		return
	}

	c.JSON(http.StatusOK, ExportResponse{DownloadURL: url})
}
