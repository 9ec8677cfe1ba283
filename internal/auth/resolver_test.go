package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newResolver(t *testing.T) *KeyResolver {
	t.Helper()
	resolver := NewKeyResolver([]string{testIssuer}, []string{testAudience})
	resolver.RegisterValidator(testIssuer, newHS256(t))
	return resolver
}

func TestKeyResolver_ValidToken(t *testing.T) {
	token := signHS256(t, testSecret, validClaims(), testIssuer, testAudience, time.Now().Add(time.Hour))

	claims, err := newResolver(t).Resolve(context.Background(), token)

	require.NoError(t, err)
	assert.Equal(t, "company-123", claims.CompanyID)
	assert.Equal(t, "user-456", claims.ActorID)
}

func TestKeyResolver_Rejections(t *testing.T) {
	tests := []struct {
		name   string
		token  string
		reason AuthFailureReason
	}{
		{
			name:   "issuer not allowed",
			token:  signHS256(t, testSecret, validClaims(), "unauthorized-issuer", testAudience, time.Now().Add(time.Hour)),
			reason: AuthFailureInvalidIssuer,
		},
		{
			name:   "wrong audience",
			token:  signHS256(t, testSecret, validClaims(), testIssuer, "other-api", time.Now().Add(time.Hour)),
			reason: AuthFailureInvalidAudience,
		},
		{
			name:   "garbage",
			token:  "eyJ.not.valid",
			reason: AuthFailureMalformed,
		},
		{
			name:   "expired",
			token:  signHS256(t, testSecret, validClaims(), testIssuer, testAudience, time.Now().Add(-time.Hour)),
			reason: AuthFailureTokenExpired,
		},
	}

	resolver := newResolver(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := resolver.Resolve(context.Background(), tt.token)

			require.Error(t, err)
			assert.Nil(t, claims)
			authErr, ok := IsAuthError(err)
			require.True(t, ok)
			assert.Equal(t, tt.reason, authErr.Reason)
		})
	}
}

func TestKeyResolver_AllowedIssuerWithoutValidator(t *testing.T) {
	resolver := NewKeyResolver([]string{testIssuer, "engage-automation"}, []string{testAudience})
	token := signHS256(t, testSecret, validClaims(), "engage-automation", testAudience, time.Now().Add(time.Hour))

	_, err := resolver.Resolve(context.Background(), token)

	authErr, ok := IsAuthError(err)
	require.True(t, ok)
	assert.Equal(t, AuthFailureInvalidIssuer, authErr.Reason)
}

func TestKeyResolver_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newResolver(t).Resolve(ctx, "eyJ.a.b")

	assert.ErrorIs(t, err, context.Canceled)
}
