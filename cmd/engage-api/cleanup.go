package main

import (
	"context"
	"fmt"

	"engage-api/internal/config"
	"engage-api/internal/database"
	"engage-api/internal/observability/logger"
	"engage-api/internal/repo"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Cleanup expired idempotency keys",
	Long:  `Remove idempotency keys past their expiry from the database. Meant to run from cron.`,
	RunE:  runCleanup,
}

func init() {
	rootCmd.AddCommand(cleanupCmd)
}

func runCleanup(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if cfg.StoreDriver != config.StoreDriverPostgres {
		return fmt.Errorf("cleanup requires STORE_DRIVER=postgres, got %q", cfg.StoreDriver)
	}

	log, err := logger.New(cfg.OTELServiceName, cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	log.Info(ctx, "starting idempotency keys cleanup", logger.Module("cleanup"))

	pool, err := database.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()

	rowsDeleted, err := repo.NewIdempotencyRepo(pool, 0).CleanupExpired(ctx)
	if err != nil {
		log.Error(ctx, "cleanup failed", logger.Module("cleanup"), zap.Error(err))
		return fmt.Errorf("failed to cleanup expired keys: %w", err)
	}

	log.Info(ctx, "cleanup completed", logger.Module("cleanup"), zap.Int64("rows_deleted", rowsDeleted))
	fmt.Fprintf(cmd.OutOrStdout(), "✓ Cleanup completed: %d expired keys removed\n", rowsDeleted)
	return nil
}
