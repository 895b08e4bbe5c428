// Package cli provides the rolodexctl command-line interface for managing the
// Rolodex database outside the server process.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/rolodexapp/rolodex-server/internal/config"
	"github.com/rolodexapp/rolodex-server/internal/logger"
)

// Version information (set at build time).
var Version = "0.1.0"

// configKey is used to store config in context.
type configKey struct{}

// NewRootCmd creates and returns the root command.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "rolodexctl",
		Short: "Rolodex administration tool",
		Long: `rolodexctl manages the Rolodex contacts database.

It reads the same configuration as the server: rolodex.yaml, ROLODEX_*
environment variables, and the flags below.`,
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// Skip config loading for help and the top-level version command
			if cmd.Name() == "help" || cmd.Name() == "__complete" {
				return nil
			}
			if cmd.Name() == "version" && cmd.Parent() == cmd.Root() {
				return nil
			}

			cfg, err := config.Load("", cmd.Root().PersistentFlags())
			if err != nil {
				return err
			}

			cmd.SetContext(context.WithValue(cmd.Context(), configKey{}, cfg))
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	config.RegisterFlags(rootCmd.PersistentFlags())

	rootCmd.AddCommand(NewVersionCommand(Version))
	rootCmd.AddCommand(NewMigrateCommand())
	rootCmd.AddCommand(NewSeedCommand())

	return rootCmd
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	rootCmd := NewRootCmd()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}

// GetConfig retrieves the config from the command context.
func GetConfig(ctx context.Context) (*config.Config, error) {
	if c, ok := ctx.Value(configKey{}).(*config.Config); ok {
		return c, nil
	}
	return config.Load("", nil)
}

// commandLogger writes to the command's stderr so stdout stays parseable.
func commandLogger(cmd *cobra.Command, cfg *config.Config) *slog.Logger {
	return logger.New(logger.Config{
		Writer:      cmd.ErrOrStderr(),
		Environment: cfg.App.Environment,
		Level:       logger.ParseLevel(cfg.Logger.Level),
	})
}
