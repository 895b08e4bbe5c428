// Package providers contains dependency injection providers for the Rolodex server.
package providers

import (
	"log/slog"

	"github.com/samber/do/v2"

	"github.com/rolodexapp/rolodex-server/internal/config"
	"github.com/rolodexapp/rolodex-server/internal/logger"
	"github.com/rolodexapp/rolodex-server/internal/metrics"
)

// ProvideLogger provides the structured logger.
func ProvideLogger(i do.Injector) (*slog.Logger, error) {
	cfg := do.MustInvoke[*config.Config](i)

	log := logger.ForEnvironment(cfg.App.Environment, cfg.Logger.Level)

	log.Info("Starting Rolodex Server",
		"environment", cfg.App.Environment,
		"log_level", cfg.Logger.Level,
		"database_driver", cfg.Database.Driver,
	)

	return log, nil
}

// ProvideMetrics provides the Prometheus collectors.
func ProvideMetrics(i do.Injector) (*metrics.Metrics, error) {
	return metrics.New(), nil
}
