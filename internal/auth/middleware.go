package auth

import (
	"context"
	"net/http"
	"strings"

	"engage-api/internal/http/httperr"
	"engage-api/internal/observability/logger"

	"go.uber.org/zap"
)

// AuthMiddleware accepts either a JWT (front-end, issuers in the resolver)
// or a fixed s2s token (internal services).
func AuthMiddleware(resolver *KeyResolver, s2sStore *S2STokenStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			log := logger.GetLogger(ctx)

			fail := func(reason AuthFailureReason, authType string, err error) {
				fields := []zap.Field{
					logger.Module("auth"),
					logger.Action("authenticate"),
					zap.String("auth_failure_reason", string(reason)),
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
				}
				if authType != "" {
					fields = append(fields, zap.String("auth_type", authType))
				}
				if err != nil {
					fields = append(fields, zap.Error(err))
				}
				log.Warn(ctx, "authentication failed", fields...)
			}

			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				fail(AuthFailureMissingAuthorization, "", nil)
				httperr.Unauthorized401(w, ctx, httperr.ErrCodeMissingAuthorization, "missing authorization header")
				return
			}

			scheme, tokenString, found := strings.Cut(authHeader, " ")
			if !found || scheme != "Bearer" || tokenString == "" {
				fail(AuthFailureInvalidScheme, "", nil)
				httperr.Unauthorized401(w, ctx, httperr.ErrCodeInvalidScheme, "invalid authorization scheme, expected Bearer")
				return
			}

			var authCtx *AuthContext
			if isJWTToken(tokenString) {
				claims, err := resolver.Resolve(ctx, tokenString)
				if err != nil {
					reason := AuthFailureUnknown
					if authErr, ok := IsAuthError(err); ok {
						reason = authErr.Reason
					}
					fail(reason, "jwt", err)
					httperr.Unauthorized401(w, ctx, errorCode(err), "invalid or expired token")
					return
				}

				authCtx = &AuthContext{
					CompanyID:  claims.CompanyID,
					ActorID:    claims.ActorID,
					ActorType:  ActorTypeUser,
					AuthMethod: "jwt",
					Issuer:     claims.Issuer,
				}
				ctx = context.WithValue(ctx, claimsContextKey, claims)
			} else {
				client, ok := s2sStore.ValidateToken(tokenString)
				if !ok {
					fail(AuthFailureInvalidSignature, "s2s", nil)
					log.Debug(ctx, "rejected s2s token", logger.Module("auth"), logger.Action("authenticate"), zap.String("token_prefix", maskToken(tokenString)))
					httperr.Unauthorized401(w, ctx, httperr.ErrCodeInvalidSignature, "invalid S2S token")
					return
				}

				companyID, actorID, err := s2sIdentity(r)
				if err != nil {
					fail(AuthFailureUnknown, "s2s", err)
					httperr.BadRequest400(w, ctx, httperr.ErrCodeInvalidParameter, "invalid X-Company-Id or X-Actor-Id header")
					return
				}
				if actorID == "" {
					actorID = "service:" + client
				}

				authCtx = &AuthContext{
					CompanyID:  companyID,
					ActorID:    actorID,
					ActorType:  ActorTypeService,
					AuthMethod: "s2s",
					Client:     client,
				}
			}

			ctx = context.WithValue(ctx, authContextKey, authCtx)
			ctx = logger.SetUserIDInContext(ctx, authCtx.ActorID)

			log.Debug(ctx, "authenticated request",
				logger.Module("auth"),
				logger.Action("authenticate"),
				zap.String("auth_method", authCtx.AuthMethod),
				zap.String("actor_type", authCtx.ActorType),
				zap.String("issuer", authCtx.Issuer),
				zap.String("client", authCtx.Client),
			)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
