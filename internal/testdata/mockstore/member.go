package mockstore

import (
	"context"

	"engage-api/internal/domain"
	"engage-api/internal/repo"

	"github.com/stretchr/testify/mock"
)

type MemberStore struct {
	mock.Mock
}

var _ repo.MemberStore = &MemberStore{}

func (m *MemberStore) GetMemberRole(ctx context.Context, userID, companyID string) (domain.Role, error) {
	args := m.Called(ctx, userID, companyID)
	return args.Get(0).(domain.Role), args.Error(1)
}

func (m *MemberStore) ListMembers(ctx context.Context, companyID string) ([]domain.CompanyMember, error) {
	args := m.Called(ctx, companyID)
	if v := args.Get(0); v != nil {
		return v.([]domain.CompanyMember), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MemberStore) GetMemberByEmail(ctx context.Context, companyID, email string) (*domain.CompanyMember, error) {
	args := m.Called(ctx, companyID, email)
	if v := args.Get(0); v != nil {
		return v.(*domain.CompanyMember), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MemberStore) AddMember(ctx context.Context, member *domain.CompanyMember) error {
	args := m.Called(ctx, member)
	return args.Error(0)
}
