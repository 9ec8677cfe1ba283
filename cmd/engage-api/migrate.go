package main

import (
	"fmt"

	"engage-api/internal/config"
	"engage-api/internal/database"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database migrations",
	Long:  `Apply pending migrations for campaigns, leads, tickets, bookings and company members. Use --down N to roll back.`,
	RunE:  runMigrate,
}

var migrateDown int

func init() {
	migrateCmd.Flags().IntVar(&migrateDown, "down", 0, "roll back the last N migrations instead of applying")
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if cfg.StoreDriver != config.StoreDriverPostgres {
		return fmt.Errorf("migrate requires STORE_DRIVER=postgres, got %q", cfg.StoreDriver)
	}

	out := cmd.OutOrStdout()
	if migrateDown > 0 {
		fmt.Fprintf(out, "Rolling back %d migration(s)...\n", migrateDown)
		if err := database.RollbackMigrations(cfg.DatabaseURL, migrateDown); err != nil {
			return err
		}
	} else {
		fmt.Fprintln(out, "Running database migrations...")
		if err := database.RunMigrations(cfg.DatabaseURL); err != nil {
			return err
		}
	}

	version, dirty, err := database.MigrationVersion(cfg.DatabaseURL)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "✓ Schema at version %d (dirty=%t)\n", version, dirty)
	return nil
}
