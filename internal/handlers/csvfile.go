package handlers

import (
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/go-authgate/stravaexport/internal/core"
	"github.com/go-authgate/stravaexport/internal/models"

	"github.com/gin-gonic/gin"
)

const (
	csvContentType      = "text/csv"
	csvDownloadFilename = "csvfile.csv"
	errCSVNotFound      = "CSV file not found for the specified user."
	errCSVFetch         = "An error occurred while fetching the CSV file."
)

// CSVFileHandler serves stored exports
type CSVFileHandler struct {
	sink    core.Sink
	lister  core.Lister // nil when the backend cannot enumerate
	rawGet  bool        // GET /:userId answers with the file instead of JSON
	metrics core.Recorder
}

// NewCSVFileHandler creates a handler reading from sink. lister may be nil.
// With rawGet set, GET /api/csvfiles/:userId returns the CSV as a download
// named after the user, the way the file backend has always served it.
func NewCSVFileHandler(
	sink core.Sink,
	lister core.Lister,
	rawGet bool,
	m core.Recorder,
) *CSVFileHandler {
	return &CSVFileHandler{
		sink:    sink,
		lister:  lister,
		rawGet:  rawGet,
		metrics: m,
	}
}

// CanList reports whether the list route should be registered
func (h *CSVFileHandler) CanList() bool {
	return h.lister != nil
}

// List handles GET /api/csvfiles
func (h *CSVFileHandler) List(c *gin.Context) {
	if h.lister == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Listing is not supported by this backend."})
		return
	}

	files, err := h.lister.List(c.Request.Context())
	if err != nil {
		log.Printf("[Sink] Failed to list CSV files: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	h.metrics.RecordRetrieval("list", true)
	c.JSON(http.StatusOK, files)
}

// Get handles GET /api/csvfiles/:userId
func (h *CSVFileHandler) Get(c *gin.Context) {
	file, ok := h.load(c, "get")
	if !ok {
		return
	}

	if h.rawGet {
		writeCSV(c, fmt.Sprintf("%s.csv", file.UserID), file)
		return
	}
	c.JSON(http.StatusOK, file)
}

// Download handles GET /api/csvfiles/:userId/download
func (h *CSVFileHandler) Download(c *gin.Context) {
	file, ok := h.load(c, "download")
	if !ok {
		return
	}

	writeCSV(c, csvDownloadFilename, file)
}

func (h *CSVFileHandler) load(c *gin.Context, operation string) (*models.CSVFile, bool) {
	userID := c.Param("userId")

	file, err := h.sink.Load(c.Request.Context(), userID)
	if errors.Is(err, core.ErrNotFound) {
		h.metrics.RecordRetrieval(operation, false)
		c.JSON(http.StatusNotFound, gin.H{"error": errCSVNotFound})
		return nil, false
	}
	if err != nil {
		log.Printf("[Sink] Error fetching CSV file for %s: %v", userID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": errCSVFetch})
		return nil, false
	}

	h.metrics.RecordRetrieval(operation, true)
	return file, true
}

func writeCSV(c *gin.Context, filename string, file *models.CSVFile) {
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, csvContentType, []byte(file.CSVData))
}
