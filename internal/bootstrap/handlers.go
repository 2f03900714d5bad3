package bootstrap

import (
	"github.com/go-authgate/stravaexport/internal/core"
	"github.com/go-authgate/stravaexport/internal/handlers"
	"github.com/go-authgate/stravaexport/internal/services"
	"github.com/go-authgate/stravaexport/internal/strava"
)

// handlerSet holds all HTTP handlers
type handlerSet struct {
	export  *handlers.ExportHandler
	oauth   *handlers.OAuthHandler
	csvFile *handlers.CSVFileHandler
	history *handlers.HistoryHandler
}

// initializeHandlers creates all HTTP handlers
func initializeHandlers(
	provider *strava.Provider,
	exportService *services.ExportService,
	historyService *services.HistoryService,
	p persistence,
	prometheusMetrics core.Recorder,
) handlerSet {
	export := handlers.NewExportHandler(exportService)
	return handlerSet{
		export:  export,
		oauth:   handlers.NewOAuthHandler(provider, export),
		csvFile: handlers.NewCSVFileHandler(p.sink, p.lister, p.rawGet, prometheusMetrics),
		history: handlers.NewHistoryHandler(historyService),
	}
}
