package auth

import (
	"context"

	"github.com/golang-jwt/jwt/v5"
)

type contextKey string

const (
	claimsContextKey contextKey = "claims"
	authContextKey   contextKey = "auth_context"
)

// Actor types
const (
	ActorTypeUser    = "user"
	ActorTypeService = "service"
)

// CustomClaims são as claims emitidas pelo front-end e pelos serviços internos.
type CustomClaims struct {
	CompanyID string `json:"companyId"`
	ActorID   string `json:"actorId"`
	jwt.RegisteredClaims
}

// Validate performs additional validation on custom claims
func (c *CustomClaims) Validate() error {
	if c.CompanyID == "" || c.ActorID == "" {
		return jwt.ErrTokenInvalidClaims
	}
	return nil
}

// AuthContext is the authenticated principal of a request, whatever the
// method (jwt or s2s). CompanyID may be empty for s2s calls without
// X-Company-Id; the company middleware decides whether that is allowed.
type AuthContext struct {
	CompanyID  string
	ActorID    string
	ActorType  string
	AuthMethod string
	Issuer     string
	Client     string
}

// IsService reports whether the caller authenticated with an s2s token.
func (a *AuthContext) IsService() bool {
	return a != nil && a.ActorType == ActorTypeService
}

// GetAuthContext retrieves the AuthContext stored by AuthMiddleware.
func GetAuthContext(ctx context.Context) (*AuthContext, bool) {
	authCtx, ok := ctx.Value(authContextKey).(*AuthContext)
	return authCtx, ok && authCtx != nil
}

// GetClaims retrieves JWT claims from context (absent for s2s requests).
func GetClaims(ctx context.Context) (*CustomClaims, bool) {
	claims, ok := ctx.Value(claimsContextKey).(*CustomClaims)
	return claims, ok && claims != nil
}
