package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"engage-api/internal/domain"
	"engage-api/internal/repo"
)

type MemberStore struct {
	mu      sync.RWMutex
	members map[string]map[string]domain.CompanyMember // company -> user -> member
}

func NewMemberStore() *MemberStore {
	return &MemberStore{members: map[string]map[string]domain.CompanyMember{}}
}

func (s *MemberStore) AddMember(_ context.Context, m *domain.CompanyMember) error {
	if !m.Role.IsValid() {
		return repo.ErrInvalidRole
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.members[m.CompanyID] == nil {
		s.members[m.CompanyID] = map[string]domain.CompanyMember{}
	}
	if existing, ok := s.members[m.CompanyID][m.UserID]; ok {
		m.CreatedAt = existing.CreatedAt
	} else if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}
	s.members[m.CompanyID][m.UserID] = *m
	return nil
}

func (s *MemberStore) GetMemberRole(_ context.Context, userID, companyID string) (domain.Role, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, ok := s.members[companyID][userID]
	if !ok {
		return "", repo.ErrMemberNotFound
	}
	return m.Role, nil
}

func (s *MemberStore) ListMembers(_ context.Context, companyID string) ([]domain.CompanyMember, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.CompanyMember, 0, len(s.members[companyID]))
	for _, m := range s.members[companyID] {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool {
		ni, nj := strings.ToLower(out[i].Name), strings.ToLower(out[j].Name)
		if ni == nj {
			return out[i].Email < out[j].Email
		}
		return ni < nj
	})
	return out, nil
}

func (s *MemberStore) GetMemberByEmail(_ context.Context, companyID, email string) (*domain.CompanyMember, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	email = strings.TrimSpace(email)
	for _, m := range s.members[companyID] {
		if strings.EqualFold(m.Email, email) {
			return &m, nil
		}
	}
	return nil, repo.ErrMemberNotFound
}
