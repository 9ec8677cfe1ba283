package main

import (
	"context"
	"net/http"
	"time"

	"engage-api/internal/auth"
	"engage-api/internal/config"
	"engage-api/internal/http/docs"
	"engage-api/internal/http/handler"
	"engage-api/internal/http/middleware"
	"engage-api/internal/observability/logger"
	"engage-api/internal/repo"
	"engage-api/internal/telemetry"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// RouterDeps contém as dependências necessárias para construir o router.
// Campos nil desligam a parte correspondente.
type RouterDeps struct {
	Cfg         *config.Config
	Log         *logger.Logger
	Resolver    *auth.KeyResolver
	S2SStore    *auth.S2STokenStore
	Idempotency repo.IdempotencyStore
	RateLimiter middleware.Limiter
	Metrics     *telemetry.Metrics
	Pinger      handler.Pinger // readiness; nil com STORE_DRIVER=memory

	// Handlers
	CampaignHandler *handler.CampaignHandler
	TicketHandler   *handler.TicketHandler
	BookingHandler  *handler.BookingHandler
	DebugHandler    *handler.DebugHandler
}

// buildRouter constrói o chi.Router com todos os middlewares e rotas.
func buildRouter(deps RouterDeps) chi.Router {
	r := chi.NewRouter()

	// Global middlewares
	r.Use(middleware.RequestIDMiddleware)
	r.Use(middleware.RequestLoggingMiddleware(deps.Log))
	r.Use(middleware.RecoveryMiddleware(deps.Log))
	r.Use(telemetry.OTelMiddleware(deps.Cfg.OTELServiceName))
	if deps.Metrics != nil {
		r.Use(telemetry.MetricsMiddleware(deps.Metrics))
	}

	// Public routes
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/ready", readyHandler(deps))
	r.Method(http.MethodGet, "/metrics", telemetry.PrometheusHandler(deps.Cfg.MetricsToken))
	r.Get("/openapi.yaml", docs.OpenAPIHandler().ServeHTTP)
	r.Get("/docs", docs.ScalarDocsHandler("/openapi.yaml").ServeHTTP)

	// Debug routes (dev-only)
	if deps.DebugHandler != nil && deps.Cfg.IsDev() {
		r.Route("/debug", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				r.Use(auth.AuthMiddleware(deps.Resolver, deps.S2SStore))
				r.Get("/auth", deps.DebugHandler.GetAuthDebug)
				r.Get("/auth/companies/{companyId}", deps.DebugHandler.GetAuthDebug)
			})
			r.Get("/db/ping", deps.DebugHandler.PingDB)
		})
	}

	idem := func(h http.HandlerFunc) http.Handler {
		if deps.Idempotency == nil {
			return h
		}
		return middleware.IdempotencyMiddleware(deps.Idempotency)(h)
	}

	// Protected routes with company isolation
	r.Route("/v1/companies/{companyId}", func(r chi.Router) {
		r.Use(auth.AuthMiddleware(deps.Resolver, deps.S2SStore))
		r.Use(middleware.CompanyMiddleware)
		if deps.RateLimiter != nil {
			r.Use(middleware.RateLimitMiddleware(deps.RateLimiter))
		}

		// Campaigns and leads
		if h := deps.CampaignHandler; h != nil {
			r.Route("/campaigns", func(r chi.Router) {
				r.Get("/", h.ListCampaigns)
				r.Method(http.MethodPost, "/", idem(h.CreateCampaign))
				r.Post("/imports:preview", h.PreviewImport)
				r.Route("/{campaignId}", func(r chi.Router) {
					r.Get("/", h.GetCampaign)
					r.Method(http.MethodPost, "/:start", idem(h.StartCampaign))
					r.Method(http.MethodPost, "/:pause", idem(h.PauseCampaign))
					r.Method(http.MethodPost, "/:complete", idem(h.CompleteCampaign))
					r.Get("/leads", h.ListLeads)
					r.Method(http.MethodPatch, "/leads/{leadId}", idem(h.UpdateLead))
				})
			})
		}

		// Tickets and team roster
		if h := deps.TicketHandler; h != nil {
			r.Route("/tickets", func(r chi.Router) {
				r.Get("/", h.ListTickets)
				r.Method(http.MethodPost, "/", idem(h.CreateTicket))
				r.Get("/stats", h.GetStats)
				r.Route("/{ticketId}", func(r chi.Router) {
					r.Get("/", h.GetTicket)
					r.Method(http.MethodPatch, "/", idem(h.UpdateTicket))
					r.Method(http.MethodPost, "/notes", idem(h.AddNote))
				})
			})
			r.Get("/team-members", h.ListTeamMembers)
		}

		// Bookings
		if h := deps.BookingHandler; h != nil {
			r.Route("/bookings", func(r chi.Router) {
				r.Get("/", h.ListBookings)
				r.Method(http.MethodPost, "/", idem(h.CreateBooking))
				r.Get("/{bookingId}", h.GetBooking)
			})
		}
	})

	return r
}

func readyHandler(deps RouterDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		if deps.Pinger == nil {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`{"status":"ready","store":"memory"}`))
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := deps.Pinger.Ping(ctx); err != nil {
			deps.Log.Error(ctx, "readiness check failed: database unavailable", zap.Error(err))
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"status":"error","message":"database unavailable"}`))
			return
		}

		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ready"}`))
	}
}
