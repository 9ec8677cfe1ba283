package repo

import (
	"context"
	"time"

	"engage-api/internal/domain"
)

// Interfaces consumidas pelos services. Implementadas pelos repositórios
// Postgres deste pacote e pelos stores de repo/memory.

type CampaignStore interface {
	Create(ctx context.Context, c *domain.Campaign) error
	Get(ctx context.Context, companyID, campaignID string) (*domain.Campaign, error)
	List(ctx context.Context, companyID string, filter domain.CampaignFilter) ([]domain.Campaign, error)
	// Transition valida e aplica a mudança de status atomicamente.
	Transition(ctx context.Context, companyID, campaignID string, to domain.CampaignStatus, now time.Time) (*domain.Campaign, error)
	ListLeads(ctx context.Context, companyID, campaignID string, filter domain.LeadFilter) ([]domain.Lead, domain.CampaignMetrics, error)
	UpdateLeadStatus(ctx context.Context, companyID, campaignID, leadID string, status domain.LeadStatus, now time.Time) (*domain.Lead, error)
}

type TicketStore interface {
	Create(ctx context.Context, t *domain.Ticket) error
	Get(ctx context.Context, companyID, ticketID string) (*domain.Ticket, error)
	// Mutate aplica todos os comandos ou nenhum.
	Mutate(ctx context.Context, companyID, ticketID, actor string, cmds []domain.TicketCommand, now time.Time) (*domain.Ticket, error)
	List(ctx context.Context, params domain.ListTicketsParams) ([]domain.Ticket, string, error)
	Stats(ctx context.Context, companyID string) (*domain.TicketStats, error)
}

type BookingStore interface {
	Create(ctx context.Context, b *domain.AutoBooking) error
	Get(ctx context.Context, companyID, bookingID string) (*domain.AutoBooking, error)
	List(ctx context.Context, companyID string, filter domain.BookingFilter) ([]domain.AutoBooking, error)
}

type MemberStore interface {
	GetMemberRole(ctx context.Context, userID, companyID string) (domain.Role, error)
	ListMembers(ctx context.Context, companyID string) ([]domain.CompanyMember, error)
	GetMemberByEmail(ctx context.Context, companyID, email string) (*domain.CompanyMember, error)
	AddMember(ctx context.Context, m *domain.CompanyMember) error
}

type AuditLogger interface {
	LogAction(ctx context.Context, entry AuditEntry) error
}

type IdempotencyStore interface {
	CheckKey(ctx context.Context, companyID, keyHash string) (*CachedResponse, error)
	StoreResult(ctx context.Context, req StoredRequest) error
	CleanupExpired(ctx context.Context) (int64, error)
}

var (
	_ CampaignStore    = &CampaignRepository{}
	_ TicketStore      = &TicketRepository{}
	_ BookingStore     = &BookingRepository{}
	_ MemberStore      = &MemberRepository{}
	_ AuditLogger      = &AuditRepo{}
	_ IdempotencyStore = &IdempotencyRepo{}
)
