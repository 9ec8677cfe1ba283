package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"engage-api/internal/domain"
	"engage-api/internal/repo"
)

type TicketStore struct {
	mu      sync.Mutex
	tickets map[string]*domain.Ticket
}

func NewTicketStore() *TicketStore {
	return &TicketStore{tickets: map[string]*domain.Ticket{}}
}

func (s *TicketStore) Create(_ context.Context, t *domain.Ticket) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := t.Clone()
	s.tickets[t.ID] = &stored
	return nil
}

func (s *TicketStore) lookup(companyID, ticketID string) (*domain.Ticket, error) {
	t, ok := s.tickets[ticketID]
	if !ok || t.CompanyID != companyID {
		return nil, repo.ErrTicketNotFound
	}
	return t, nil
}

func (s *TicketStore) Get(_ context.Context, companyID, ticketID string) (*domain.Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, err := s.lookup(companyID, ticketID)
	if err != nil {
		return nil, err
	}
	out := t.Clone()
	return &out, nil
}

// Mutate works on a copy and swaps it in only when every command succeeds.
func (s *TicketStore) Mutate(_ context.Context, companyID, ticketID, actor string, cmds []domain.TicketCommand, now time.Time) (*domain.Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.lookup(companyID, ticketID)
	if err != nil {
		return nil, err
	}

	next := current.Clone()
	for _, cmd := range cmds {
		patch, err := domain.Decide(next, cmd, actor, now)
		if err != nil {
			return nil, err
		}
		patch.Apply(&next)
	}

	s.tickets[ticketID] = &next
	out := next.Clone()
	return &out, nil
}

func (s *TicketStore) sorted(companyID string) []*domain.Ticket {
	out := make([]*domain.Ticket, 0, len(s.tickets))
	for _, t := range s.tickets {
		if t.CompanyID == companyID {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

func (s *TicketStore) List(_ context.Context, params domain.ListTicketsParams) ([]domain.Ticket, string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var cursor *domain.TicketCursor
	if params.Cursor != nil && *params.Cursor != "" {
		c, err := domain.ParseTicketCursor(*params.Cursor)
		if err != nil {
			return nil, "", err
		}
		cursor = &c
	}

	tickets := make([]domain.Ticket, 0, params.Limit)
	for _, t := range s.sorted(params.CompanyID) {
		if cursor != nil && !cursor.Precedes(*t) {
			continue
		}
		if !params.Matches(*t) {
			continue
		}
		item := t.Clone()
		item.Notes, item.History = nil, nil
		tickets = append(tickets, item)
		if len(tickets) > params.Limit {
			break
		}
	}

	var nextCursor string
	if len(tickets) > params.Limit {
		nextCursor = domain.CursorAfter(tickets[params.Limit-1]).String()
		tickets = tickets[:params.Limit]
	}
	return tickets, nextCursor, nil
}

func (s *TicketStore) Stats(_ context.Context, companyID string) (*domain.TicketStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats := domain.NewTicketStats()
	for _, t := range s.tickets {
		if t.CompanyID == companyID {
			stats.Add(*t)
		}
	}
	return &stats, nil
}
