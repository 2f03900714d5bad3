package store

import (
	"github.com/go-authgate/stravaexport/internal/models"
)

// ExportRunFilters narrows the export history listing. Search matches
// athlete IDs and error messages by substring.
type ExportRunFilters struct {
	UserID string              `json:"user_id,omitempty"`
	Status models.ExportStatus `json:"status,omitempty"`
	Search string              `json:"search,omitempty"`
}
