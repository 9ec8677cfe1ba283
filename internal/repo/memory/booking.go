package memory

import (
	"context"
	"sort"
	"sync"

	"engage-api/internal/domain"
	"engage-api/internal/repo"
)

type BookingStore struct {
	mu       sync.RWMutex
	bookings map[string]domain.AutoBooking
}

func NewBookingStore() *BookingStore {
	return &BookingStore{bookings: map[string]domain.AutoBooking{}}
}

func (s *BookingStore) Create(_ context.Context, b *domain.AutoBooking) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.bookings[b.ID]; exists {
		return repo.ErrBookingConflict
	}
	s.bookings[b.ID] = *b
	return nil
}

func (s *BookingStore) Get(_ context.Context, companyID, bookingID string) (*domain.AutoBooking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, ok := s.bookings[bookingID]
	if !ok || b.CompanyID != companyID {
		return nil, repo.ErrBookingNotFound
	}
	return &b, nil
}

func (s *BookingStore) List(_ context.Context, companyID string, filter domain.BookingFilter) ([]domain.AutoBooking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []domain.AutoBooking{}
	for _, b := range s.bookings {
		if b.CompanyID == companyID && filter.Matches(b) {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		ki := out[i].ScheduledDate + " " + out[i].ScheduledTime
		kj := out[j].ScheduledDate + " " + out[j].ScheduledTime
		if ki == kj {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return ki > kj
	})
	return out, nil
}
