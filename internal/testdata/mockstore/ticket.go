package mockstore

import (
	"context"
	"time"

	"engage-api/internal/domain"
	"engage-api/internal/repo"

	"github.com/stretchr/testify/mock"
)

type TicketStore struct {
	mock.Mock
}

var _ repo.TicketStore = &TicketStore{}

func (m *TicketStore) Create(ctx context.Context, t *domain.Ticket) error {
	args := m.Called(ctx, t)
	return args.Error(0)
}

func (m *TicketStore) Get(ctx context.Context, companyID, ticketID string) (*domain.Ticket, error) {
	args := m.Called(ctx, companyID, ticketID)
	if v := args.Get(0); v != nil {
		return v.(*domain.Ticket), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *TicketStore) Mutate(ctx context.Context, companyID, ticketID, actor string, cmds []domain.TicketCommand, now time.Time) (*domain.Ticket, error) {
	args := m.Called(ctx, companyID, ticketID, actor, cmds, now)
	if v := args.Get(0); v != nil {
		return v.(*domain.Ticket), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *TicketStore) List(ctx context.Context, params domain.ListTicketsParams) ([]domain.Ticket, string, error) {
	args := m.Called(ctx, params)
	if v := args.Get(0); v != nil {
		return v.([]domain.Ticket), args.String(1), args.Error(2)
	}
	return nil, args.String(1), args.Error(2)
}

func (m *TicketStore) Stats(ctx context.Context, companyID string) (*domain.TicketStats, error) {
	args := m.Called(ctx, companyID)
	if v := args.Get(0); v != nil {
		return v.(*domain.TicketStats), args.Error(1)
	}
	return nil, args.Error(1)
}
