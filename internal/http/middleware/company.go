package middleware

import (
	"context"
	"errors"
	"net/http"
	"regexp"

	"engage-api/internal/auth"
	"engage-api/internal/http/httperr"
	"engage-api/internal/observability/logger"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type contextKey string

const companyIDKey contextKey = "company_id"

var errCompanyMissing = errors.New("company_id not found in context")

var companyIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

func validateCompanyIDFormat(id string) bool {
	return companyIDPattern.MatchString(id)
}

// CompanyMiddleware isola o tenant: o {companyId} da rota precisa bater com
// a company do token (JWT) ou com X-Company-Id (s2s). Chamadas s2s sem
// X-Company-Id podem agir em qualquer company.
func CompanyMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		log := logger.GetLogger(ctx)

		companyID := chi.URLParam(r, "companyId")
		if !validateCompanyIDFormat(companyID) {
			httperr.BadRequest400(w, ctx, httperr.ErrCodeInvalidCompanyID, "companyId must be 1-64 characters of letters, digits, '-' or '_'")
			return
		}

		authCtx, ok := auth.GetAuthContext(ctx)
		if !ok {
			log.Error(ctx, "auth context missing before company check",
				logger.Module("company"),
				logger.Action("isolate"),
			)
			httperr.Unauthorized401(w, ctx, httperr.ErrCodeInvalidToken, "authentication required")
			return
		}

		if authCtx.CompanyID != "" && authCtx.CompanyID != companyID {
			log.Warn(ctx, "company access denied",
				logger.Module("company"),
				logger.Action("isolate"),
				zap.String("token_company_id", authCtx.CompanyID),
				zap.String("path_company_id", companyID),
				zap.String("auth_method", authCtx.AuthMethod),
			)
			httperr.Forbidden403(w, ctx, httperr.ErrCodeCompanyMismatch, "company access denied")
			return
		}

		trace.SpanFromContext(ctx).SetAttributes(attribute.String("company_id", companyID))

		ctx = context.WithValue(ctx, companyIDKey, companyID)
		ctx = logger.SetCompanyIDInContext(ctx, companyID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetCompanyID returns the company validated by CompanyMiddleware.
func GetCompanyID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(companyIDKey).(string)
	return id, ok && id != ""
}
