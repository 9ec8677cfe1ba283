package repo

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// AuditEntry é uma ação de negócio registrada no audit_log.
type AuditEntry struct {
	CompanyID    string
	ActorID      string
	Action       string
	ResourceType string
	ResourceID   string
	Metadata     map[string]interface{}
	CreatedAt    time.Time
}

type AuditRepo struct {
	pool *pgxpool.Pool
}

func NewAuditRepo(pool *pgxpool.Pool) *AuditRepo {
	return &AuditRepo{pool: pool}
}

// LogAction appends one row to audit_log. Metadata goes as jsonb text so it
// survives the simple protocol.
func (r *AuditRepo) LogAction(ctx context.Context, entry AuditEntry) error {
	var metadata *string
	if len(entry.Metadata) > 0 {
		raw, err := toJSON(entry.Metadata)
		if err != nil {
			return fmt.Errorf("failed to marshal audit metadata: %w", err)
		}
		metadata = &raw
	}

	var resourceID *string
	if entry.ResourceID != "" {
		resourceID = &entry.ResourceID
	}

	createdAt := entry.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err := r.pool.Exec(ctx, `
		INSERT INTO audit_log (company_id, actor_id, action, resource_type, resource_id, metadata, created_at)
		VALUES ($1, $2, $3, $4, $5, $6::jsonb, $7)`,
		entry.CompanyID, entry.ActorID, entry.Action, entry.ResourceType, resourceID, metadata, createdAt,
	)
	if err != nil {
		return fmt.Errorf("failed to write audit entry %s/%s: %w", entry.ResourceType, entry.Action, err)
	}
	return nil
}
