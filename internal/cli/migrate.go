package cli

import (
	"context"
	"database/sql"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/rolodexapp/rolodex-server/internal/config"
	"github.com/rolodexapp/rolodex-server/internal/store/sqlstore"
)

// NewMigrateCommand creates the migrate command and its subcommands.
func NewMigrateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage database schema migrations",
		Long: `Apply, roll back, or inspect the embedded schema migrations.

The server applies pending migrations on startup; these commands are for
operators who need finer control.`,
		Example: `  # Apply all pending migrations
  rolodexctl migrate up

  # Roll back the latest migration on a PostgreSQL database
  rolodexctl migrate down --db-driver postgres --db-dsn postgres://localhost/rolodex`,
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withMigrator(cmd, func(ctx context.Context, m *sqlstore.Migrator) error {
				n, err := m.Up(ctx)
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Applied %d migration(s)\n", n)
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Roll back the most recent migration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withMigrator(cmd, func(ctx context.Context, m *sqlstore.Migrator) error {
				version, err := m.Down(ctx)
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Rolled back migration %d\n", version)
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "List migrations and whether they are applied",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withMigrator(cmd, func(ctx context.Context, m *sqlstore.Migrator) error {
				statuses, err := m.Status(ctx)
				if err != nil {
					return err
				}
				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
				_, _ = fmt.Fprintln(w, "VERSION\tNAME\tSTATE")
				for _, st := range statuses {
					state := "pending"
					if st.Applied {
						state = "applied " + st.AppliedAt.UTC().Format("2006-01-02 15:04:05")
					}
					_, _ = fmt.Fprintf(w, "%d\t%s\t%s\n", st.Version, st.Name, state)
				}
				return w.Flush()
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the current schema version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withMigrator(cmd, func(ctx context.Context, m *sqlstore.Migrator) error {
				version, err := m.Version(ctx)
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), version)
				return nil
			})
		},
	})

	return cmd
}

// withMigrator opens the configured database without migrating it and hands
// a migrator to fn.
func withMigrator(cmd *cobra.Command, fn func(context.Context, *sqlstore.Migrator) error) error {
	cfg, err := GetConfig(cmd.Context())
	if err != nil {
		return err
	}

	dialect, db, err := openDatabase(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	return fn(cmd.Context(), sqlstore.NewMigrator(db, dialect, commandLogger(cmd, cfg)))
}

func openDatabase(ctx context.Context, cfg *config.Config) (sqlstore.Dialect, *sql.DB, error) {
	dialect, err := sqlstore.ParseDialect(cfg.Database.Driver)
	if err != nil {
		return "", nil, err
	}

	target := cfg.Database.Path
	if dialect == sqlstore.DialectPostgres {
		target = cfg.Database.DSN
	}

	db, err := sqlstore.OpenDB(ctx, dialect, target)
	if err != nil {
		return "", nil, fmt.Errorf("open %s database: %w", dialect, err)
	}
	return dialect, db, nil
}
