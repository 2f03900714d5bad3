package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/go-authgate/stravaexport/internal/models"
	"github.com/go-authgate/stravaexport/internal/services"
	"github.com/go-authgate/stravaexport/internal/store"

	"github.com/gin-gonic/gin"
)

// HistoryHandler exposes recorded export runs
type HistoryHandler struct {
	historyService *services.HistoryService
}

func NewHistoryHandler(hs *services.HistoryService) *HistoryHandler {
	return &HistoryHandler{historyService: hs}
}

type historyPage struct {
	Runs       []models.ExportRun `json:"runs"`
	Pagination paginationResponse `json:"pagination"`
}

type paginationResponse struct {
	Total       int64 `json:"total"`
	TotalPages  int   `json:"totalPages"`
	CurrentPage int   `json:"currentPage"`
	PageSize    int   `json:"pageSize"`
	HasPrev     bool  `json:"hasPrev"`
	HasNext     bool  `json:"hasNext"`
}

// ListRuns handles GET /api/exports
func (h *HistoryHandler) ListRuns(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	params := store.NewPaginationParams(page, pageSize)
	filters := store.ExportRunFilters{
		UserID: c.Query("user_id"),
		Status: models.ExportStatus(c.Query("status")),
		Search: c.Query("search"),
	}

	runs, pagination, err := h.historyService.ListRuns(params, filters)
	if err != nil {
		log.Printf("[Export] Failed to list export runs: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve export history."})
		return
	}
	if runs == nil {
		runs = []models.ExportRun{}
	}

	c.JSON(http.StatusOK, historyPage{
		Runs: runs,
		Pagination: paginationResponse{
			Total:       pagination.Total,
			TotalPages:  pagination.TotalPages,
			CurrentPage: pagination.CurrentPage,
			PageSize:    pagination.PageSize,
			HasPrev:     pagination.HasPrev,
			HasNext:     pagination.HasNext,
		},
	})
}

// GetRun handles GET /api/exports/:id
func (h *HistoryHandler) GetRun(c *gin.Context) {
	run, err := h.historyService.GetRun(c.Param("id"))
	if errors.Is(err, store.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Export run not found."})
		return
	}
	if err != nil {
		log.Printf("[Export] Failed to get export run: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve export run."})
		return
	}

	c.JSON(http.StatusOK, run)
}
