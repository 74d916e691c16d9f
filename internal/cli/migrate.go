package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"qrmenu/internal/config"
	"qrmenu/internal/database"
)

// NewMigrateCommand creates the migrate command with its up and status
// subcommands. Running it bare is the same as "migrate up".
func NewMigrateCommand(_ *RootOptions) *cobra.Command {
	up := func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("load configuration: %w", err)
		}
		db, err := openDB(cfg)
		if err != nil {
			return err
		}
		defer db.Close()
		fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
		return nil
	}

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		Args:  cobra.NoArgs,
		RunE:  up,
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		Args:  cobra.NoArgs,
		RunE:  up,
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Print the state of every migration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load configuration: %w", err)
			}
			db, err := database.Connect(cfg.DSN(), database.DefaultPool)
			if err != nil {
				return err
			}
			defer db.Close()
			return database.MigrationStatus(db)
		},
	})

	return cmd
}
