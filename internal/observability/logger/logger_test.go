package logger_test

import (
	"context"
	"path/filepath"
	"testing"

	"engage-api/internal/observability/logger"
	"engage-api/internal/observability/requestid"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newObserved(level zapcore.Level) (*logger.Logger, *observer.ObservedLogs) {
	core, logs := observer.New(level)
	return logger.NewWithCore("test-service", core), logs
}

func TestLogger_RequiresServiceName(t *testing.T) {
	_, err := logger.New("", "info")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "serviceName is required")
}

func TestLogger_BaseFields(t *testing.T) {
	log, logs := newObserved(zapcore.InfoLevel)

	log.Info(context.Background(), "campaign created",
		logger.Module("service"),
		logger.Action("create_campaign"),
	)

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	fields := entry.ContextMap()
	assert.Equal(t, "campaign created", entry.Message)
	assert.Equal(t, "test-service", fields["service"])
	assert.Equal(t, "service", fields["module"])
	assert.Equal(t, "create_campaign", fields["action"])
}

func TestLogger_MandatoryFieldsDefaulted(t *testing.T) {
	log, logs := newObserved(zapcore.InfoLevel)

	log.Info(context.Background(), "no module")

	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "unknown", fields["module"])
	assert.Equal(t, "unknown", fields["action"])
}

func TestLogger_ContextFields(t *testing.T) {
	log, logs := newObserved(zapcore.InfoLevel)

	ctx := context.Background()
	ctx = logger.SetRequestIDInContext(ctx, "test-req-123")
	ctx = logger.SetCompanyIDInContext(ctx, "company-456")
	ctx = logger.SetUserIDInContext(ctx, "user-789")

	log.Info(ctx, "with context", logger.Module("test"), logger.Action("ctx"))

	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "test-req-123", fields["request_id"])
	assert.Equal(t, "company-456", fields["company_id"])
	assert.Equal(t, "user-789", fields["user_id"])

	assert.Equal(t, "test-req-123", logger.GetRequestIDFromContext(ctx))
	assert.Equal(t, "company-456", logger.GetCompanyIDFromContext(ctx))
	assert.Equal(t, "user-789", logger.GetUserIDFromContext(ctx))
}

func TestLogger_SanitizesSecretsAndPII(t *testing.T) {
	log, logs := newObserved(zapcore.InfoLevel)

	log.Info(context.Background(), "sensitive",
		logger.Module("test"),
		logger.Action("sanitize"),
		zap.String("authorization", "Bearer abc"),
		zap.String("Password", "hunter2"),
		zap.String("lead_email", "ana@example.com"),
		zap.String("customer_phone", "+5511999999999"),
		zap.String("campaign_id", "c-1"),
	)

	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "[REDACTED]", fields["authorization"])
	assert.Equal(t, "[REDACTED]", fields["Password"])
	assert.Equal(t, "[REDACTED]", fields["lead_email"])
	assert.Equal(t, "[REDACTED]", fields["customer_phone"])
	assert.Equal(t, "c-1", fields["campaign_id"])
}

func TestLogger_LevelFiltering(t *testing.T) {
	log, logs := newObserved(zapcore.WarnLevel)
	ctx := context.Background()

	log.Debug(ctx, "debug")
	log.Info(ctx, "info")
	log.Warn(ctx, "warn")
	log.Error(ctx, "error")

	assert.Equal(t, 2, logs.Len())
	assert.Equal(t, 1, logs.FilterMessage("warn").Len())
	assert.Equal(t, 1, logs.FilterMessage("error").Len())
}

func TestLogger_LevelParsing(t *testing.T) {
	for _, level := range []string{"debug", "info", "warn", "error", "invalid"} {
		t.Run(level, func(t *testing.T) {
			log, err := logger.New("test-service", level)
			require.NoError(t, err)
			assert.NotNil(t, log)
		})
	}
}

func TestLogger_WithFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "api.log")

	log, err := logger.New("test-service", "info", logger.WithFile(path, 1))
	require.NoError(t, err)

	log.Info(context.Background(), "to file", logger.Module("test"), logger.Action("file"))
	_ = log.Sync()

	assert.FileExists(t, path)
}

func TestLogger_WithContext(t *testing.T) {
	log, logs := newObserved(zapcore.InfoLevel)

	ctx := requestid.SetRequestID(context.Background(), "test-123")
	log.WithContext(ctx).Info(context.Background(), "enriched", logger.Module("test"), logger.Action("with_context"))

	assert.Equal(t, "test-123", logs.All()[0].ContextMap()["request_id"])
	assert.Same(t, log, log.WithContext(context.Background()))
}

func TestLogger_GetLoggerFromContext(t *testing.T) {
	log, _ := newObserved(zapcore.InfoLevel)
	ctx := logger.SetLoggerInContext(context.Background(), log)

	assert.Same(t, log, logger.GetLogger(ctx))
	assert.NotNil(t, logger.GetLogger(context.Background()))
}

func TestLogger_RootError(t *testing.T) {
	ctx := logger.InitRootErrorContext(context.Background())
	assert.Nil(t, logger.GetRootError(ctx))

	logger.SetRootError(ctx, assert.AnError)
	assert.Equal(t, assert.AnError, logger.GetRootError(ctx))

	// sem container, no-op
	logger.SetRootError(context.Background(), assert.AnError)
	assert.Nil(t, logger.GetRootError(context.Background()))
}

func BenchmarkLogger_Info(b *testing.B) {
	core, _ := observer.New(zapcore.InfoLevel)
	log := logger.NewWithCore("bench-service", core)

	ctx := requestid.SetRequestID(context.Background(), "bench-123")

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		log.Info(ctx, "benchmark message",
			logger.Module("bench"),
			logger.Action("bench_action"),
		)
	}
}
