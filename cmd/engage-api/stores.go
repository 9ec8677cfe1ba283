package main

import (
	"context"
	"fmt"

	"engage-api/internal/config"
	"engage-api/internal/database"
	"engage-api/internal/observability/logger"
	"engage-api/internal/repo"
	"engage-api/internal/repo/memory"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// stores agrupa a camada de persistência escolhida por STORE_DRIVER.
type stores struct {
	Campaigns   repo.CampaignStore
	Tickets     repo.TicketStore
	Bookings    repo.BookingStore
	Members     repo.MemberStore
	Audit       repo.AuditLogger
	Idempotency repo.IdempotencyStore

	// Pool é nil com o driver memory.
	Pool *pgxpool.Pool
}

func (s *stores) Close() {
	if s.Pool != nil {
		s.Pool.Close()
	}
}

// openStores runs migrations and opens the pool for postgres, or builds
// process-local stores for memory.
func openStores(ctx context.Context, cfg *config.Config, log *logger.Logger) (*stores, error) {
	if cfg.StoreDriver == config.StoreDriverMemory {
		log.Warn(ctx, "using in-memory stores, data is lost on restart")
		return &stores{
			Campaigns:   memory.NewCampaignStore(),
			Tickets:     memory.NewTicketStore(),
			Bookings:    memory.NewBookingStore(),
			Members:     memory.NewMemberStore(),
			Audit:       memory.NewAuditStore(),
			Idempotency: memory.NewIdempotencyStore(repo.DefaultIdempotencyTTL),
		}, nil
	}

	log.Info(ctx, "running database migrations")
	if err := database.RunMigrations(cfg.DatabaseURL); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	log.Info(ctx, "connecting to database")
	pool, err := database.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	log.Info(ctx, "database connected", zap.Int32("max_conns", pool.Config().MaxConns))

	return &stores{
		Campaigns:   repo.NewCampaignRepository(pool),
		Tickets:     repo.NewTicketRepository(pool),
		Bookings:    repo.NewBookingRepository(pool),
		Members:     repo.NewMemberRepository(pool),
		Audit:       repo.NewAuditRepo(pool),
		Idempotency: repo.NewIdempotencyRepo(pool, 0),
		Pool:        pool,
	}, nil
}
