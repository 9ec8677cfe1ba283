package mockbackend

import (
	"context"

	"engage-api/internal/dashboard"
	"engage-api/internal/domain"

	"github.com/stretchr/testify/mock"
)

type TicketBackend struct {
	mock.Mock
}

// Interface compliance check
var _ dashboard.TicketBackend = &TicketBackend{}

func (m *TicketBackend) CreateTicket(ctx context.Context, companyID string, req *domain.CreateTicketRequest) (*domain.Ticket, error) {
	args := m.Called(ctx, companyID, req)
	if v := args.Get(0); v != nil {
		return v.(*domain.Ticket), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *TicketBackend) UpdateTicket(ctx context.Context, companyID, ticketID string, req *domain.UpdateTicketRequest) (*domain.Ticket, error) {
	args := m.Called(ctx, companyID, ticketID, req)
	if v := args.Get(0); v != nil {
		return v.(*domain.Ticket), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *TicketBackend) AddNote(ctx context.Context, companyID, ticketID string, req *domain.AddNoteRequest) (*domain.Note, error) {
	args := m.Called(ctx, companyID, ticketID, req)
	if v := args.Get(0); v != nil {
		return v.(*domain.Note), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *TicketBackend) GetTicketDetails(ctx context.Context, companyID, ticketID string) (*domain.Ticket, error) {
	args := m.Called(ctx, companyID, ticketID)
	if v := args.Get(0); v != nil {
		return v.(*domain.Ticket), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *TicketBackend) GetTeamMembers(ctx context.Context, companyID string) ([]domain.TeamMember, error) {
	args := m.Called(ctx, companyID)
	if v := args.Get(0); v != nil {
		return v.([]domain.TeamMember), args.Error(1)
	}
	return nil, args.Error(1)
}
