package main

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"slices"
	"syscall"
	"time"

	"engage-api/internal/auth"
	"engage-api/internal/config"
	"engage-api/internal/http/handler"
	"engage-api/internal/http/httperr"
	"engage-api/internal/leadimport"
	"engage-api/internal/observability/logger"
	"engage-api/internal/ratelimit"
	"engage-api/internal/service"
	"engage-api/internal/telemetry"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the API server",
	Long:  `Start the Engage API HTTP server with auth, company isolation, rate limiting, idempotency and observability`,
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	var logOpts []logger.Option
	if cfg.LogFile != "" {
		logOpts = append(logOpts, logger.WithFile(cfg.LogFile, cfg.LogFileMaxMB))
	}
	log, err := logger.New(cfg.OTELServiceName, cfg.LogLevel, logOpts...)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	log.Info(ctx, "starting engage api",
		zap.String("service", cfg.OTELServiceName),
		zap.String("app_env", cfg.AppEnv),
		zap.String("store_driver", cfg.StoreDriver),
		zap.String("csv_mode", cfg.CSVParseMode),
	)

	httperr.ExposeErrorID(cfg.IsDev())

	metrics, shutdownTelemetry := initTelemetry(ctx, cfg, log)
	defer shutdownTelemetry()

	st, err := openStores(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer st.Close()

	if cfg.MemberSeedFile != "" {
		n, err := seedMembers(ctx, st.Members, cfg.MemberSeedFile)
		if err != nil {
			return err
		}
		log.Info(ctx, "company members seeded", zap.Int("count", n), zap.String("file", cfg.MemberSeedFile))
	}

	rateLimiter, closeRedis, err := initRateLimiter(ctx, cfg, log, metrics)
	if err != nil {
		return err
	}
	defer closeRedis()

	resolver, err := initJWT(ctx, cfg, log)
	if err != nil {
		return err
	}
	s2sStore := initS2S(ctx, cfg, log)

	counters, err := telemetry.NewDomainCounters()
	if err != nil {
		return fmt.Errorf("failed to create domain counters: %w", err)
	}

	csvMode, err := leadimport.ParseMode(cfg.CSVParseMode, leadimport.ModePermissive)
	if err != nil {
		return err
	}

	campaignService := service.NewCampaignService(st.Campaigns, st.Members, st.Audit, counters, csvMode, log)
	ticketService := service.NewTicketService(st.Tickets, st.Members, st.Audit, counters, log)
	bookingService := service.NewBookingService(st.Bookings, st.Campaigns, st.Members, st.Audit, log)

	deps := RouterDeps{
		Cfg:             cfg,
		Log:             log,
		Resolver:        resolver,
		S2SStore:        s2sStore,
		Idempotency:     st.Idempotency,
		Metrics:         metrics,
		CampaignHandler: handler.NewCampaignHandler(campaignService, cfg.CSVMaxUploadBytes),
		TicketHandler:   handler.NewTicketHandler(ticketService),
		BookingHandler:  handler.NewBookingHandler(bookingService),
	}
	// interfaces com ponteiro nil tipado não são nil; só atribui quando existe
	if rateLimiter != nil {
		deps.RateLimiter = rateLimiter
	}
	if st.Pool != nil {
		deps.Pinger = st.Pool
		deps.DebugHandler = handler.NewDebugHandler(cfg.AppEnv, st.Pool)
	} else {
		deps.DebugHandler = handler.NewDebugHandler(cfg.AppEnv, nil)
	}

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           buildRouter(deps),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info(ctx, "starting http server", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	sigCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("http server failed: %w", err)
		}
	case <-sigCtx.Done():
		log.Info(ctx, "shutdown signal received, starting graceful shutdown")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 25*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error(shutdownCtx, "server shutdown error", zap.Error(err))
	}

	log.Info(shutdownCtx, "shutdown complete")
	return nil
}

// initTelemetry liga tracer e métricas OTLP quando habilitados. Falhas aqui
// não derrubam o processo.
func initTelemetry(ctx context.Context, cfg *config.Config, log *logger.Logger) (*telemetry.Metrics, func()) {
	if !cfg.TelemetryEnabled() {
		log.Info(ctx, "telemetry disabled (opt-in only or missing endpoint)")
		return nil, func() {}
	}

	log.Info(ctx, "initializing telemetry", zap.String("endpoint", cfg.OTELExporterEndpoint))

	pc := telemetry.ProviderConfig{
		ServiceName:   cfg.OTELServiceName,
		Environment:   cfg.AppEnv,
		Endpoint:      cfg.OTELExporterEndpoint,
		SamplingRatio: cfg.OTELSamplingRatio,
	}
	var shutdowns []func(context.Context) error

	tp, err := telemetry.InitTracer(ctx, pc)
	if err != nil {
		log.Warn(ctx, "failed to initialize tracer, continuing without tracing", zap.Error(err))
	} else {
		shutdowns = append(shutdowns, tp.Shutdown)
	}

	var metrics *telemetry.Metrics
	mp, m, err := telemetry.InitMetrics(ctx, pc)
	if err != nil {
		log.Warn(ctx, "failed to initialize metrics, continuing without metrics", zap.Error(err))
	} else {
		metrics = m
		shutdowns = append(shutdowns, mp.Shutdown)
	}

	log.Info(ctx, "telemetry initialized", zap.Bool("tracing", tp != nil), zap.Bool("metrics", metrics != nil))

	return metrics, func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		for _, shutdown := range shutdowns {
			if err := shutdown(shutdownCtx); err != nil {
				log.Error(shutdownCtx, "failed to shutdown telemetry provider", zap.Error(err))
			}
		}
	}
}

// initRateLimiter conecta no Redis. Sem REDIS_URL o rate limit fica desligado.
func initRateLimiter(ctx context.Context, cfg *config.Config, log *logger.Logger, metrics *telemetry.Metrics) (*ratelimit.RedisLimiter, func(), error) {
	if cfg.RedisURL == "" {
		log.Warn(ctx, "REDIS_URL not set, per-company rate limiting disabled")
		return nil, func() {}, nil
	}

	log.Info(ctx, "connecting to redis")
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}
	client := redis.NewClient(opts)

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	log.Info(ctx, "redis connected", zap.Int("limit_per_min", cfg.RateLimitPerCompanyPerMin))

	var rejections metric.Int64Counter
	if metrics != nil {
		rejections = metrics.RateLimitRejections
	}
	limiter := ratelimit.NewRedisLimiter(client, cfg.RateLimitPerCompanyPerMin, time.Minute, rejections)

	return limiter, func() { _ = client.Close() }, nil
}

// initJWT carrega o segredo HS256 para todos os issuers permitidos e, quando
// configurada, a chave pública RS256 do serviço de automação.
func initJWT(ctx context.Context, cfg *config.Config, log *logger.Logger) (*auth.KeyResolver, error) {
	secret, err := base64.StdEncoding.DecodeString(cfg.JWTHS256Secret)
	if err != nil {
		return nil, fmt.Errorf("JWT_HS256_SECRET must be valid Base64-encoded: %w", err)
	}
	if len(secret) < 32 {
		return nil, fmt.Errorf("JWT_HS256_SECRET decoded bytes must be at least 32 bytes (256 bits), got %d bytes", len(secret))
	}

	issuers := cfg.GetAllowedIssuers()
	clockSkew := time.Duration(cfg.JWTClockSkewSeconds) * time.Second
	keyStore := auth.NewKeyStore()

	hsIssuers := issuers
	if cfg.JWTPublicKeyAutomation != "" {
		if err := keyStore.LoadRS256Key(config.AutomationIssuer, "v1", cfg.JWTPublicKeyAutomation); err != nil {
			return nil, fmt.Errorf("failed to load automation public key: %w", err)
		}
		hsIssuers = slices.DeleteFunc(slices.Clone(issuers), func(iss string) bool { return iss == config.AutomationIssuer })
		if !slices.Contains(issuers, config.AutomationIssuer) {
			issuers = append(issuers, config.AutomationIssuer)
		}
	}

	resolver := auth.NewKeyResolver(issuers, []string{cfg.JWTAudience})
	for _, issuer := range hsIssuers {
		keyStore.LoadHS256Key(issuer, "v1", secret)
		resolver.RegisterValidator(issuer, auth.NewHS256Validator(keyStore, issuer, clockSkew))
	}
	if cfg.JWTPublicKeyAutomation != "" {
		resolver.RegisterValidator(config.AutomationIssuer, auth.NewRS256Validator(keyStore, config.AutomationIssuer, clockSkew))
	}

	log.Info(ctx, "JWT authentication initialized",
		zap.Strings("allowed_issuers", issuers),
		zap.Bool("rs256_automation", cfg.JWTPublicKeyAutomation != ""),
		zap.Int("clock_skew_seconds", cfg.JWTClockSkewSeconds),
	)
	return resolver, nil
}

func initS2S(ctx context.Context, cfg *config.Config, log *logger.Logger) *auth.S2STokenStore {
	store := auth.NewS2STokenStore()
	for client, token := range map[string]string{
		"web":             cfg.S2STokenWeb,
		"call-automation": cfg.S2STokenCallAutomation,
	} {
		if token == "" {
			continue
		}
		store.RegisterToken(token, client)
		log.Info(ctx, "S2S token registered", zap.String("client", client))
	}
	return store
}
