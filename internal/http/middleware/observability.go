package middleware

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"engage-api/internal/http/httperr"
	"engage-api/internal/leadimport"
	"engage-api/internal/observability/logger"
	"engage-api/internal/observability/requestid"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
)

const headerRequestID = "X-Request-Id"

// RequestIDMiddleware propaga X-Request-Id. Valores inválidos ou ausentes
// são trocados por um id novo.
func RequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID, ok := requestid.Normalize(r.Header.Get(headerRequestID))
		if !ok {
			reqID = requestid.NewRequestID()
		}

		w.Header().Set(headerRequestID, reqID)
		next.ServeHTTP(w, r.WithContext(requestid.SetRequestID(r.Context(), reqID)))
	})
}

// RequestLoggingMiddleware logs one line per request when it finishes, plus
// an http_error line with the root cause for 5xx. Bodies and headers are
// never logged.
func RequestLoggingMiddleware(log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			ctx := logger.SetLoggerInContext(r.Context(), log)
			ctx = logger.InitRootErrorContext(ctx)
			r = r.WithContext(ctx)

			sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(sw, r)

			log.Info(ctx, "http request completed",
				logger.Module("http"),
				logger.Action("request"),
				zap.String("method", r.Method),
				zap.String("route", routePattern(r)),
				zap.String("path", r.URL.Path),
				zap.Int("status", sw.status),
				zap.Int("bytes", sw.bytes),
				zap.Float64("latency_ms", float64(time.Since(start).Microseconds())/1000),
				zap.String("remote_ip", remoteIP(r.RemoteAddr)),
				zap.String("user_agent", truncate(r.UserAgent(), 100)),
			)

			if sw.status < http.StatusInternalServerError {
				return
			}

			rootErr := logger.GetRootError(ctx)
			fields := []logger.Field{
				logger.Module("http"),
				logger.Action("http_error"),
				zap.Int("status", sw.status),
				zap.String("method", r.Method),
				zap.String("route", routePattern(r)),
				zap.String("kind", classifyError(rootErr)),
			}
			if rootErr != nil {
				fields = append(fields, zap.String("err", rootErr.Error()))
				var pgErr *pgconn.PgError
				if errors.As(rootErr, &pgErr) {
					fields = append(fields, zap.String("pgcode", pgErr.Code))
				}
			}
			log.Error(ctx, "http_error", fields...)
		})
	}
}

// RecoveryMiddleware turns a panic into a 500 envelope and records it as the
// root error of the request.
func RecoveryMiddleware(log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}

				ctx := r.Context()
				logger.SetRootError(ctx, fmt.Errorf("panic: %v", rec))
				log.Error(ctx, "panic_recovered",
					logger.Module("http"),
					logger.Action("panic_recovery"),
					zap.Any("panic", rec),
					zap.String("stack", string(debug.Stack())),
					zap.String("method", r.Method),
					zap.String("route", routePattern(r)),
				)
				httperr.InternalError(w, ctx)
			}()

			next.ServeHTTP(w, r)
		})
	}
}

type statusWriter struct {
	http.ResponseWriter
	status      int
	bytes       int
	wroteHeader bool
}

func (sw *statusWriter) WriteHeader(code int) {
	if !sw.wroteHeader {
		sw.status = code
		sw.wroteHeader = true
	}
	sw.ResponseWriter.WriteHeader(code)
}

func (sw *statusWriter) Write(b []byte) (int, error) {
	sw.wroteHeader = true
	n, err := sw.ResponseWriter.Write(b)
	sw.bytes += n
	return n, err
}

func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return r.URL.Path
}

func remoteIP(addr string) string {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return addr
	}
	return host
}

func truncate(s string, max int) string {
	if len(s) > max {
		return s[:max] + "..."
	}
	return s
}

// classifyError agrupa a causa raiz para dashboards de erro.
func classifyError(err error) string {
	var pgErr *pgconn.PgError
	switch {
	case err == nil:
		return "unknown"
	case errors.As(err, &pgErr):
		return "db"
	case errors.Is(err, leadimport.ErrMalformedRow), errors.Is(err, leadimport.ErrEmptyCSV):
		return "csv"
	case strings.HasPrefix(err.Error(), "panic:"):
		return "panic"
	default:
		return "unknown"
	}
}
