package ratelimit

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Decision is the outcome of one rate limit check.
type Decision struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetAt   time.Time
}

// RedisLimiter aplica janela deslizante por company usando um sorted set
// (score = timestamp em ms).
type RedisLimiter struct {
	client     redis.Cmdable
	limit      int
	window     time.Duration
	rejections metric.Int64Counter
	now        func() time.Time
}

// NewRedisLimiter creates a limiter allowing limit requests per window for
// each company. rejections may be nil.
func NewRedisLimiter(client redis.Cmdable, limit int, window time.Duration, rejections metric.Int64Counter) *RedisLimiter {
	if window <= 0 {
		window = time.Minute
	}
	return &RedisLimiter{
		client:     client,
		limit:      limit,
		window:     window,
		rejections: rejections,
		now:        time.Now,
	}
}

func companyKey(companyID string) string {
	return "ratelimit:company:" + companyID
}

// Allow records the request and reports whether it fits in the window.
// Rejected requests still count, so a client hammering the API stays blocked.
func (l *RedisLimiter) Allow(ctx context.Context, companyID string) (Decision, error) {
	now := l.now()
	key := companyKey(companyID)
	windowStart := now.Add(-l.window)

	pipe := l.client.TxPipeline()
	pipe.ZRemRangeByScore(ctx, key, "0", strconv.FormatInt(windowStart.UnixMilli(), 10))
	pipe.ZAdd(ctx, key, redis.Z{
		Score:  float64(now.UnixMilli()),
		Member: strconv.FormatInt(now.UnixNano(), 10),
	})
	count := pipe.ZCard(ctx, key)
	pipe.Expire(ctx, key, 2*l.window)

	if _, err := pipe.Exec(ctx); err != nil {
		return Decision{}, fmt.Errorf("rate limit pipeline: %w", err)
	}

	n := int(count.Val())
	d := Decision{
		Allowed:   n <= l.limit,
		Limit:     l.limit,
		Remaining: l.limit - n,
		ResetAt:   now.Add(l.window),
	}
	if d.Remaining < 0 {
		d.Remaining = 0
	}

	if !d.Allowed && l.rejections != nil {
		l.rejections.Add(ctx, 1, metric.WithAttributes(attribute.String("company_id", companyID)))
	}
	return d, nil
}
