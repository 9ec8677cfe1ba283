package memory

import (
	"context"
	"testing"

	"engage-api/internal/domain"
	"engage-api/internal/repo"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func memberFixture(userID, name, email string) *domain.CompanyMember {
	return &domain.CompanyMember{
		CompanyID: "company-1",
		UserID:    userID,
		Name:      name,
		Email:     email,
		Role:      domain.RoleAgent,
	}
}

func TestMemberStore(t *testing.T) {
	ctx := context.Background()
	s := NewMemberStore()

	require.NoError(t, s.AddMember(ctx, memberFixture("u2", "Zoe", "zoe@acme.com")))
	require.NoError(t, s.AddMember(ctx, memberFixture("u1", "ana", "Ana@Acme.com")))
	assert.ErrorIs(t, s.AddMember(ctx, &domain.CompanyMember{CompanyID: "company-1", UserID: "bad", Role: "owner"}), repo.ErrInvalidRole)

	members, err := s.ListMembers(ctx, "company-1")
	require.NoError(t, err)
	require.Len(t, members, 2)
	assert.Equal(t, "u1", members[0].UserID)

	m, err := s.GetMemberByEmail(ctx, "company-1", " ana@acme.com ")
	require.NoError(t, err)
	assert.Equal(t, "u1", m.UserID)

	_, err = s.GetMemberByEmail(ctx, "company-2", "ana@acme.com")
	assert.ErrorIs(t, err, repo.ErrMemberNotFound)

	_, err = s.GetMemberRole(ctx, "u9", "company-1")
	assert.ErrorIs(t, err, repo.ErrMemberNotFound)
}
