package auth

import (
	"crypto/subtle"
	"fmt"
	"net/http"
	"strings"
)

// S2S headers
const (
	HeaderCompanyID = "X-Company-Id"
	HeaderActorID   = "X-Actor-Id"
)

// S2STokenStore guarda tokens fixos de serviço (automação de chamadas, web).
type S2STokenStore struct {
	tokens map[string]string // token -> client name
}

// NewS2STokenStore creates a new S2S token store
func NewS2STokenStore() *S2STokenStore {
	return &S2STokenStore{tokens: make(map[string]string)}
}

// RegisterToken registers an S2S token for a client. Empty tokens are ignored.
func (s *S2STokenStore) RegisterToken(token, clientName string) {
	if token != "" {
		s.tokens[token] = clientName
	}
}

// ValidateToken returns the client name for a known token. Comparison is
// constant time per registered token.
func (s *S2STokenStore) ValidateToken(token string) (string, bool) {
	if token == "" {
		return "", false
	}
	for known, client := range s.tokens {
		if subtle.ConstantTimeCompare([]byte(known), []byte(token)) == 1 {
			return client, true
		}
	}
	return "", false
}

// isJWTToken checks if a token looks like a JWT (starts with "eyJ" and has two dots)
func isJWTToken(token string) bool {
	return strings.HasPrefix(token, "eyJ") && strings.Count(token, ".") == 2
}

// s2sIdentity reads the optional X-Company-Id / X-Actor-Id headers. Present
// but blank values are rejected.
func s2sIdentity(r *http.Request) (companyID, actorID string, err error) {
	values := r.Header.Values(HeaderCompanyID)
	if len(values) > 0 {
		companyID = strings.TrimSpace(values[0])
		if companyID == "" {
			return "", "", fmt.Errorf("%s must be non-empty", HeaderCompanyID)
		}
	}

	values = r.Header.Values(HeaderActorID)
	if len(values) > 0 {
		actorID = strings.TrimSpace(values[0])
		if actorID == "" {
			return "", "", fmt.Errorf("%s must be non-empty", HeaderActorID)
		}
	}

	return companyID, actorID, nil
}
