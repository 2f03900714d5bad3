package handlers

import (
	"log"
	"net/http"

	"github.com/go-authgate/stravaexport/internal/services"

	"github.com/gin-gonic/gin"
)

// exportSuccessMessage is returned with every completed export
const exportSuccessMessage = "Data received!"

// ExportHandler accepts authorization codes and runs the export pipeline
type ExportHandler struct {
	exportService *services.ExportService
}

func NewExportHandler(es *services.ExportService) *ExportHandler {
	return &ExportHandler{exportService: es}
}

type openRequest struct {
	Code string `json:"code"`
}

// Open handles POST /api/open
func (h *ExportHandler) Open(c *gin.Context) {
	var req openRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Code == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing authorization code."})
		return
	}

	h.runExport(c, req.Code)
}

// runExport executes one export and writes the JSON answer shared by
// POST /api/open and the OAuth callback.
func (h *ExportHandler) runExport(c *gin.Context, code string) {
	result, err := h.exportService.Export(c.Request.Context(), code)
	if err != nil {
		log.Printf("[Export] Export failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": services.ProcessingErrorMessage})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":     exportSuccessMessage,
		"accessToken": result.AccessToken,
		"persisted":   result.Persisted,
	})
}
