package bootstrap

import (
	"log"

	"github.com/go-authgate/stravaexport/internal/config"
	"github.com/go-authgate/stravaexport/internal/core"
	"github.com/go-authgate/stravaexport/internal/services"
	"github.com/go-authgate/stravaexport/internal/store"
	"github.com/go-authgate/stravaexport/internal/strava"
)

// initializeServices creates the export history recorder and the export pipeline
func initializeServices(
	cfg *config.Config,
	db *store.Store,
	provider *strava.Provider,
	csvSink core.Sink,
	prometheusMetrics core.Recorder,
) (*services.HistoryService, *services.ExportService) {
	historyService := services.NewHistoryService(
		db,
		cfg.ExportHistoryEnabled,
		cfg.ExportHistoryBufferSize,
	)
	if cfg.ExportHistoryEnabled {
		log.Printf("Export history enabled (buffer: %d)", cfg.ExportHistoryBufferSize)
	}

	exportService := services.NewExportService(
		provider,
		csvSink,
		historyService,
		prometheusMetrics,
	)
	return historyService, exportService
}
