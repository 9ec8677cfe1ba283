package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenValidator validates JWT tokens
type TokenValidator interface {
	Validate(tokenString string, kid string) (*CustomClaims, error)
}

// jwtValidator verifies signature, expiry and claims for one issuer.
// keyFor resolves the verification key for a kid.
type jwtValidator struct {
	issuer    string
	clockSkew time.Duration
	methods   []string
	keyFor    func(kid string) (interface{}, bool)
}

// HS256Validator validates HS256 JWT tokens
type HS256Validator struct{ jwtValidator }

// NewHS256Validator creates a new HS256 validator
func NewHS256Validator(keyStore *KeyStore, issuer string, clockSkew time.Duration) *HS256Validator {
	return &HS256Validator{jwtValidator{
		issuer:    issuer,
		clockSkew: clockSkew,
		methods:   []string{jwt.SigningMethodHS256.Alg()},
		keyFor: func(kid string) (interface{}, bool) {
			return keyStore.GetHS256Key(issuer, kid)
		},
	}}
}

// RS256Validator validates RS256 JWT tokens
type RS256Validator struct{ jwtValidator }

// NewRS256Validator creates a new RS256 validator
func NewRS256Validator(keyStore *KeyStore, issuer string, clockSkew time.Duration) *RS256Validator {
	return &RS256Validator{jwtValidator{
		issuer:    issuer,
		clockSkew: clockSkew,
		methods:   []string{jwt.SigningMethodRS256.Alg()},
		keyFor: func(kid string) (interface{}, bool) {
			return keyStore.GetRS256Key(issuer, kid)
		},
	}}
}

func (v *jwtValidator) Validate(tokenString string, kid string) (*CustomClaims, error) {
	key, ok := v.keyFor(kid)
	if !ok {
		return nil, NewAuthError(AuthFailureInvalidSignature, fmt.Sprintf("key not found for issuer %s and kid %s", v.issuer, kid), nil)
	}

	claims := &CustomClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(*jwt.Token) (interface{}, error) { return key, nil },
		jwt.WithValidMethods(v.methods),
		jwt.WithLeeway(v.clockSkew),
		jwt.WithIssuer(v.issuer),
	)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, NewAuthError(AuthFailureTokenExpired, "token expired", err)
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, NewAuthError(AuthFailureInvalidSignature, "invalid signature", err)
		case errors.Is(err, jwt.ErrTokenInvalidIssuer):
			return nil, NewAuthError(AuthFailureInvalidIssuer, "issuer mismatch", err)
		case errors.Is(err, jwt.ErrTokenMalformed):
			return nil, NewAuthError(AuthFailureMalformed, "malformed token", err)
		}
		return nil, NewAuthError(AuthFailureUnknown, "failed to parse token", err)
	}
	if !token.Valid {
		return nil, NewAuthError(AuthFailureUnknown, "invalid token", nil)
	}

	if err := claims.Validate(); err != nil {
		return nil, NewAuthError(AuthFailureUnknown, "invalid claims", err)
	}

	return claims, nil
}
