package middleware

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"time"

	"engage-api/internal/http/httperr"
	"engage-api/internal/observability/logger"
	"engage-api/internal/ratelimit"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// Limiter decide se a company ainda tem cota na janela atual.
type Limiter interface {
	Allow(ctx context.Context, companyID string) (ratelimit.Decision, error)
}

var _ Limiter = &ratelimit.RedisLimiter{}

// RateLimitMiddleware enforces the per-company limit. It must run after
// CompanyMiddleware.
func RateLimitMiddleware(limiter Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			log := logger.GetLogger(ctx)

			companyID, ok := GetCompanyID(ctx)
			if !ok {
				logger.SetRootError(ctx, errCompanyMissing)
				httperr.InternalError500(w, ctx, "company_id missing for rate limiting")
				return
			}

			decision, err := limiter.Allow(ctx, companyID)
			if err != nil {
				logger.SetRootError(ctx, err)
				httperr.InternalError500(w, ctx, "rate limit check failed")
				return
			}

			h := w.Header()
			h.Set("X-RateLimit-Limit", strconv.Itoa(decision.Limit))
			h.Set("X-RateLimit-Remaining", strconv.Itoa(decision.Remaining))
			h.Set("X-RateLimit-Reset", strconv.FormatInt(decision.ResetAt.Unix(), 10))

			if !decision.Allowed {
				trace.SpanFromContext(ctx).AddEvent("rate_limit_exceeded")
				log.Warn(ctx, "rate limit exceeded",
					logger.Module("ratelimit"),
					logger.Action("allow"),
					zap.Int("limit", decision.Limit),
				)

				retry := int(math.Ceil(time.Until(decision.ResetAt).Seconds()))
				if retry < 1 {
					retry = 1
				}
				h.Set("Retry-After", strconv.Itoa(retry))
				httperr.WriteError(w, ctx, http.StatusTooManyRequests, httperr.ErrCodeRateLimited, "rate limit exceeded")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
