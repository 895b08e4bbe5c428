package sqlstore

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"log/slog"
	"time"

	"github.com/pressly/goose/v3"
)

//go:embed migrations/sqlite/*.sql migrations/postgres/*.sql
var migrationsFS embed.FS

// MigrationStatus describes one migration and whether it has been applied.
type MigrationStatus struct {
	Version   int64
	Name      string
	Applied   bool
	AppliedAt time.Time
}

// Migrator applies the embedded schema migrations for a dialect.
type Migrator struct {
	db      *sql.DB
	dialect Dialect
	logger  *slog.Logger
}

// Migrator returns a migrator bound to the store's database.
func (s *Store) Migrator() *Migrator {
	return NewMigrator(s.db, s.dialect, s.logger)
}

// NewMigrator creates a migrator for db.
func NewMigrator(db *sql.DB, dialect Dialect, logger *slog.Logger) *Migrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Migrator{db: db, dialect: dialect, logger: logger}
}

func (m *Migrator) provider() (*goose.Provider, error) {
	var (
		gooseDialect goose.Dialect
		dir          string
	)
	switch m.dialect {
	case DialectSQLite:
		gooseDialect, dir = goose.DialectSQLite3, "migrations/sqlite"
	case DialectPostgres:
		gooseDialect, dir = goose.DialectPostgres, "migrations/postgres"
	default:
		return nil, fmt.Errorf("no migrations for dialect %q", m.dialect)
	}

	fsys, err := fs.Sub(migrationsFS, dir)
	if err != nil {
		return nil, fmt.Errorf("load migrations: %w", err)
	}

	p, err := goose.NewProvider(gooseDialect, m.db, fsys)
	if err != nil {
		return nil, fmt.Errorf("create migration provider: %w", err)
	}
	return p, nil
}

// Up applies all pending migrations and returns how many ran.
func (m *Migrator) Up(ctx context.Context) (int, error) {
	p, err := m.provider()
	if err != nil {
		return 0, err
	}

	results, err := p.Up(ctx)
	if err != nil {
		return 0, fmt.Errorf("apply migrations: %w", err)
	}

	for _, r := range results {
		m.logger.Info("applied migration",
			"version", r.Source.Version,
			"duration", r.Duration,
		)
	}
	return len(results), nil
}

// Down rolls back the most recently applied migration.
func (m *Migrator) Down(ctx context.Context) (int64, error) {
	p, err := m.provider()
	if err != nil {
		return 0, err
	}

	r, err := p.Down(ctx)
	if err != nil {
		return 0, fmt.Errorf("roll back migration: %w", err)
	}

	m.logger.Info("rolled back migration", "version", r.Source.Version)
	return r.Source.Version, nil
}

// Status lists every known migration in version order.
func (m *Migrator) Status(ctx context.Context) ([]MigrationStatus, error) {
	p, err := m.provider()
	if err != nil {
		return nil, err
	}

	statuses, err := p.Status(ctx)
	if err != nil {
		return nil, fmt.Errorf("migration status: %w", err)
	}

	out := make([]MigrationStatus, 0, len(statuses))
	for _, st := range statuses {
		out = append(out, MigrationStatus{
			Version:   st.Source.Version,
			Name:      st.Source.Path,
			Applied:   st.State == goose.StateApplied,
			AppliedAt: st.AppliedAt,
		})
	}
	return out, nil
}

// Version returns the current schema version, or 0 before any migration.
func (m *Migrator) Version(ctx context.Context) (int64, error) {
	p, err := m.provider()
	if err != nil {
		return 0, err
	}
	return p.GetDBVersion(ctx)
}
