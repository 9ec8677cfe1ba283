package auth

import "context"

// SetAuthContextForTesting injects an AuthContext into a context.
// Only for tests simulating authenticated requests.
func SetAuthContextForTesting(ctx context.Context, authCtx *AuthContext) context.Context {
	return context.WithValue(ctx, authContextKey, authCtx)
}
