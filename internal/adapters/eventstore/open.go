// Package eventstore selects the configured event backend.
package eventstore

import (
	"log/slog"

	"github.com/fr0stylo/ourastream/internal/adapters/sqlite"
	"github.com/fr0stylo/ourastream/internal/adapters/warehouse"
	"github.com/fr0stylo/ourastream/internal/app/ports"
	"github.com/fr0stylo/ourastream/internal/config"
	"github.com/fr0stylo/ourastream/internal/db"
	"github.com/fr0stylo/ourastream/internal/hub"
)

// Open returns the warehouse store when it is selected and fully configured,
// otherwise a sqlite store over database. Both share h for live delivery.
func Open(log *slog.Logger, cfg config.StorageConfig, database *db.Database, h *hub.Hub, opts ...warehouse.StatementOption) ports.EventStore {
	if log == nil {
		log = slog.Default()
	}
	if cfg.Backend == config.BackendWarehouse {
		if cfg.Databricks.Complete() {
			client := warehouse.NewStatementClient(cfg.Databricks.Host, cfg.Databricks.HTTPPath, cfg.Databricks.Token, opts...)
			log.Info("Using warehouse event store", "table", cfg.Databricks.Table)
			return warehouse.NewEventStore(client, cfg.Databricks.Table, h)
		}
		log.Warn("Warehouse backend selected but DATABRICKS_HOST, DATABRICKS_HTTP_PATH or DATABRICKS_TOKEN is missing; falling back to sqlite")
	}
	log.Info("Using sqlite event store")
	return sqlite.NewEventStore(database, h)
}
