package bootstrap

import (
	"fmt"
	"log"

	"github.com/go-authgate/stravaexport/internal/config"
	"github.com/go-authgate/stravaexport/internal/core"
	"github.com/go-authgate/stravaexport/internal/models"
	"github.com/go-authgate/stravaexport/internal/sink"
	"github.com/go-authgate/stravaexport/internal/store"
)

// persistence groups the configured sink with the capabilities of its backend
type persistence struct {
	sink    core.Sink
	lister  core.Lister       // nil when the backend cannot enumerate
	counter core.MetricsStore // source of the stored CSV gauge
	rawGet  bool              // GET /api/csvfiles/:userId downloads the file
}

// initializeSink builds the storage backend selected by STORAGE_BACKEND,
// wrapped in the CSV read cache when one is configured.
func initializeSink(
	cfg *config.Config,
	db *store.Store,
	csvCache core.Cache[models.CSVFile],
) (persistence, error) {
	var p persistence

	switch cfg.StorageBackend {
	case config.StorageBackendFile:
		fs := sink.NewFileSink(cfg.CSVOutputDir)
		p = persistence{sink: fs, counter: fs, rawGet: true}
		log.Printf("Storage backend: file (dir=%s)", fs.Dir())
	case config.StorageBackendDatabase:
		ds := sink.NewDatabaseSink(db)
		p = persistence{sink: ds, lister: ds, counter: db}
		log.Printf("Storage backend: database (driver=%s)", cfg.DatabaseDriver)
	default:
		return persistence{}, fmt.Errorf("unsupported storage backend: %q", cfg.StorageBackend)
	}

	if csvCache != nil {
		p.sink = sink.NewCachedSink(p.sink, csvCache, cfg.CSVCacheTTL)
	}
	return p, nil
}
