// Package dashboard reproduz as regras de estado do painel: o ticket aberto só
// muda depois que o backend confirma, e o roster do time tem estados
// mutuamente exclusivos (loading, ready, empty, error).
package dashboard

import (
	"context"

	"engage-api/internal/domain"
)

// TicketBackend é a camada remota do painel. Implementado por
// integrations/ticketsvc.Client.
type TicketBackend interface {
	CreateTicket(ctx context.Context, companyID string, req *domain.CreateTicketRequest) (*domain.Ticket, error)
	UpdateTicket(ctx context.Context, companyID, ticketID string, req *domain.UpdateTicketRequest) (*domain.Ticket, error)
	AddNote(ctx context.Context, companyID, ticketID string, req *domain.AddNoteRequest) (*domain.Note, error)
	GetTicketDetails(ctx context.Context, companyID, ticketID string) (*domain.Ticket, error)
	GetTeamMembers(ctx context.Context, companyID string) ([]domain.TeamMember, error)
}
