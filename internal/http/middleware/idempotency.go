package middleware

import (
	"bytes"
	"io"
	"net/http"

	"engage-api/internal/http/httperr"
	"engage-api/internal/observability/logger"
	"engage-api/internal/repo"

	"go.uber.org/zap"
)

const (
	headerIdempotencyKey = "Idempotency-Key"
	maxIdempotencyKeyLen = 255
)

// IdempotencyMiddleware replays the stored 2xx response of a POST/PUT/PATCH
// sent again with the same Idempotency-Key in the same company. Requests
// without the header pass through.
func IdempotencyMiddleware(store repo.IdempotencyStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			log := logger.GetLogger(ctx)

			switch r.Method {
			case http.MethodPost, http.MethodPut, http.MethodPatch:
			default:
				next.ServeHTTP(w, r)
				return
			}

			key := r.Header.Get(headerIdempotencyKey)
			if key == "" {
				next.ServeHTTP(w, r)
				return
			}
			if len(key) > maxIdempotencyKeyLen {
				httperr.BadRequest400(w, ctx, httperr.ErrCodeInvalidParameter, "Idempotency-Key must be 255 characters or less")
				return
			}

			companyID, ok := GetCompanyID(ctx)
			if !ok {
				logger.SetRootError(ctx, errCompanyMissing)
				httperr.InternalError500(w, ctx, "company_id missing for idempotency")
				return
			}

			keyHash := repo.HashKey(key)
			w.Header().Set("X-Idempotency-Key-Hash", keyHash)

			cached, err := store.CheckKey(ctx, companyID, keyHash)
			if err != nil {
				logger.SetRootError(ctx, err)
				httperr.InternalError500(w, ctx, "idempotency lookup failed")
				return
			}
			if cached != nil {
				log.Info(ctx, "replaying idempotent response",
					logger.Module("idempotency"),
					logger.Action("replay"),
					zap.String("key_hash", keyHash),
					zap.Int("status", cached.Status),
				)
				for k, v := range cached.Headers {
					w.Header().Set(k, v)
				}
				w.Header().Set("X-Idempotency-Replay", "true")
				w.WriteHeader(cached.Status)
				_, _ = w.Write(cached.Body)
				return
			}

			var payload []byte
			if r.Body != nil {
				payload, err = io.ReadAll(r.Body)
				if err != nil {
					httperr.BadRequest400(w, ctx, httperr.ErrCodeInvalidFormat, "could not read request body")
					return
				}
				r.Body = io.NopCloser(bytes.NewReader(payload))
			}

			rec := &captureWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)

			if rec.status < 200 || rec.status >= 300 {
				return
			}

			headers := make(map[string]string, 2)
			for _, h := range []string{"Content-Type", "Location"} {
				if v := rec.Header().Get(h); v != "" {
					headers[h] = v
				}
			}

			err = store.StoreResult(ctx, repo.StoredRequest{
				CompanyID:   companyID,
				KeyHash:     keyHash,
				OriginalKey: key,
				Method:      r.Method,
				Path:        r.URL.Path,
				Payload:     payload,
				Response: repo.CachedResponse{
					Status:  rec.status,
					Body:    rec.body.Bytes(),
					Headers: headers,
				},
			})
			if err != nil {
				// a resposta já foi enviada; só registra
				log.Error(ctx, "failed to store idempotency result",
					logger.Module("idempotency"),
					logger.Action("store"),
					zap.Error(err),
				)
			}
		})
	}
}

// captureWriter tees the response so it can be stored after the handler ran.
type captureWriter struct {
	http.ResponseWriter
	status      int
	body        bytes.Buffer
	wroteHeader bool
}

func (c *captureWriter) WriteHeader(code int) {
	if !c.wroteHeader {
		c.status = code
		c.wroteHeader = true
	}
	c.ResponseWriter.WriteHeader(code)
}

func (c *captureWriter) Write(b []byte) (int, error) {
	if !c.wroteHeader {
		c.WriteHeader(http.StatusOK)
	}
	c.body.Write(b)
	return c.ResponseWriter.Write(b)
}
