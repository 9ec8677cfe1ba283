package auth

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsJWTToken(t *testing.T) {
	tests := []struct {
		name     string
		token    string
		expected bool
	}{
		{"jwt", "eyJhbGciOiJIUzI1NiJ9.eyJzdWIiOiIxIn0.sig", true},
		{"s2s random string", "s2s-fixed-token-automation-12345", false},
		{"eyJ prefix without dots", "eyJnotajwttoken", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, isJWTToken(tt.token))
		})
	}
}

func TestS2STokenStore(t *testing.T) {
	store := NewS2STokenStore()
	store.RegisterToken("token-web", "engage-web")
	store.RegisterToken("token-automation", "call-automation")
	store.RegisterToken("", "ignored")

	client, ok := store.ValidateToken("token-web")
	assert.True(t, ok)
	assert.Equal(t, "engage-web", client)

	client, ok = store.ValidateToken("token-automation")
	assert.True(t, ok)
	assert.Equal(t, "call-automation", client)

	_, ok = store.ValidateToken("wrong-token")
	assert.False(t, ok)

	_, ok = store.ValidateToken("")
	assert.False(t, ok)
}

func TestS2SIdentity(t *testing.T) {
	t.Run("both headers", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/", nil)
		req.Header.Set(HeaderCompanyID, "company-1")
		req.Header.Set(HeaderActorID, "user-1")

		companyID, actorID, err := s2sIdentity(req)
		require.NoError(t, err)
		assert.Equal(t, "company-1", companyID)
		assert.Equal(t, "user-1", actorID)
	})

	t.Run("no headers", func(t *testing.T) {
		companyID, actorID, err := s2sIdentity(httptest.NewRequest("GET", "/", nil))
		require.NoError(t, err)
		assert.Empty(t, companyID)
		assert.Empty(t, actorID)
	})

	t.Run("blank company header", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/", nil)
		req.Header.Set(HeaderCompanyID, "   ")

		_, _, err := s2sIdentity(req)
		assert.Error(t, err)
	})

	t.Run("blank actor header", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/", nil)
		req.Header.Set(HeaderActorID, " ")

		_, _, err := s2sIdentity(req)
		assert.Error(t, err)
	})
}
