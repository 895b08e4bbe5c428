package providers

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/samber/do/v2"

	"github.com/rolodexapp/rolodex-server/internal/config"
	"github.com/rolodexapp/rolodex-server/internal/store/sqlstore"
)

// StoreHandle wraps the store with shutdown capability.
type StoreHandle struct {
	*sqlstore.Store
}

// Shutdown implements do.Shutdownable.
func (h *StoreHandle) Shutdown() error {
	return h.Close()
}

// ProvideStore opens the configured database and applies pending migrations.
func ProvideStore(i do.Injector) (*StoreHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*slog.Logger](i)

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	var (
		db  *sqlstore.Store
		err error
	)
	switch cfg.Database.Driver {
	case config.DriverPostgres:
		db, err = sqlstore.OpenPostgres(ctx, cfg.Database.DSN, log)
	default:
		db, err = sqlstore.Open(ctx, cfg.Database.Path, log)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", cfg.Database.Driver, err)
	}

	log.Info("Database initialized",
		"driver", cfg.Database.Driver,
		"path", cfg.Database.Path,
	)

	return &StoreHandle{Store: db}, nil
}
