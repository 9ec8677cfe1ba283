package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"engage-api/internal/auth"
	"engage-api/internal/http/httperr"
	"engage-api/internal/observability/logger"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
)

// Pinger is the part of pgxpool.Pool the debug endpoints need.
type Pinger interface {
	Ping(ctx context.Context) error
}

// DebugHandler expõe endpoints de diagnóstico, só em dev.
type DebugHandler struct {
	appEnv string
	pool   Pinger
}

// NewDebugHandler creates a debug handler. pool may be nil (memory driver).
func NewDebugHandler(appEnv string, pool Pinger) *DebugHandler {
	if appEnv == "" {
		appEnv = "production"
	}
	return &DebugHandler{appEnv: appEnv, pool: pool}
}

// DebugAuthData describes how the request was authenticated.
type DebugAuthData struct {
	AuthMethod           string  `json:"authMethod"`
	ActorID              string  `json:"actorId"`
	ActorType            string  `json:"actorType"`
	Client               *string `json:"client,omitempty"`
	TokenIssuer          *string `json:"tokenIssuer,omitempty"`
	CompanyIDFromToken   *string `json:"companyIdFromToken,omitempty"`
	CompanyIDFromHeader  *string `json:"companyIdFromHeader,omitempty"`
	CompanyIDFromPath    *string `json:"companyIdFromPath,omitempty"`
	CompanyValidationRan bool    `json:"companyValidationRan"`
}

type DebugAuthResponse struct {
	OK   bool           `json:"ok"`
	Data *DebugAuthData `json:"data"`
}

func (h *DebugHandler) enabled(w http.ResponseWriter, r *http.Request) bool {
	if h.appEnv == "dev" || h.appEnv == "development" {
		return true
	}
	ctx := r.Context()
	logger.GetLogger(ctx).Warn(ctx, "debug endpoint accessed outside dev",
		logger.Module("debug"),
		logger.Action("guard"),
		zap.String("app_env", h.appEnv),
	)
	http.NotFound(w, r)
	return false
}

// GetAuthDebug handles GET /debug/auth and GET /debug/auth/companies/{companyId}
func (h *DebugHandler) GetAuthDebug(w http.ResponseWriter, r *http.Request) {
	if !h.enabled(w, r) {
		return
	}
	ctx := r.Context()

	authCtx, ok := auth.GetAuthContext(ctx)
	if !ok {
		httperr.Unauthorized401(w, ctx, httperr.ErrCodeInvalidToken, "authentication required")
		return
	}

	data := &DebugAuthData{
		AuthMethod: authCtx.AuthMethod,
		ActorID:    authCtx.ActorID,
		ActorType:  authCtx.ActorType,
	}
	switch authCtx.AuthMethod {
	case "jwt":
		data.CompanyIDFromToken = optional(authCtx.CompanyID)
		data.TokenIssuer = optional(authCtx.Issuer)
	case "s2s":
		data.CompanyIDFromHeader = optional(authCtx.CompanyID)
		data.Client = optional(authCtx.Client)
	}
	if fromPath := chi.URLParam(r, "companyId"); fromPath != "" {
		data.CompanyIDFromPath = &fromPath
		data.CompanyValidationRan = true
	}

	writeJSON(w, http.StatusOK, DebugAuthResponse{OK: true, Data: data})
}

// PingDB handles GET /debug/db/ping
func (h *DebugHandler) PingDB(w http.ResponseWriter, r *http.Request) {
	if !h.enabled(w, r) {
		return
	}
	ctx := r.Context()

	if h.pool == nil {
		writeJSON(w, http.StatusOK, map[string]interface{}{"ok": true, "driver": "memory"})
		return
	}

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := h.pool.Ping(pingCtx); err != nil {
		fields := []logger.Field{logger.Module("debug"), logger.Action("db_ping"), zap.Error(err)}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			fields = append(fields, zap.String("pgcode", pgErr.Code))
		}
		logger.GetLogger(ctx).Error(ctx, "db_ping_failed", fields...)
		logger.SetRootError(ctx, err)
		httperr.InternalError(w, ctx)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"ok": true, "driver": "postgres"})
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
