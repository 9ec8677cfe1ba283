package repo

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DefaultIdempotencyTTL is how long a stored response is replayed.
const DefaultIdempotencyTTL = 24 * time.Hour

// IdempotencyRepo handles idempotency key storage and retrieval
type IdempotencyRepo struct {
	pool *pgxpool.Pool
	ttl  time.Duration
}

// NewIdempotencyRepo creates a new IdempotencyRepo. ttl <= 0 uses DefaultIdempotencyTTL.
func NewIdempotencyRepo(pool *pgxpool.Pool, ttl time.Duration) *IdempotencyRepo {
	if ttl <= 0 {
		ttl = DefaultIdempotencyTTL
	}
	return &IdempotencyRepo{pool: pool, ttl: ttl}
}

// CachedResponse represents a cached response from an idempotent request
type CachedResponse struct {
	Status  int
	Body    json.RawMessage
	Headers map[string]string
}

// StoredRequest is what gets persisted after a successful idempotent request.
type StoredRequest struct {
	CompanyID   string
	KeyHash     string
	OriginalKey string
	Method      string
	Path        string
	Payload     json.RawMessage
	Response    CachedResponse
}

// HashKey generates SHA256 hash of idempotency key
func HashKey(key string) string {
	hash := sha256.Sum256([]byte(key))
	return hex.EncodeToString(hash[:])
}

// CheckKey returns the cached response, or nil when the key is unknown or expired.
func (r *IdempotencyRepo) CheckKey(ctx context.Context, companyID, keyHash string) (*CachedResponse, error) {
	query := `
		SELECT response_status, response_body::text, response_headers::text
		FROM idempotency_keys
		WHERE company_id = $1 AND key_hash = $2 AND expires_at > NOW()
	`

	var status int
	var body, headersJSON *string

	err := r.pool.QueryRow(ctx, query, companyID, keyHash).Scan(&status, &body, &headersJSON)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to check idempotency key: %w", err)
	}

	cached := &CachedResponse{Status: status}
	if body != nil {
		cached.Body = json.RawMessage(*body)
	}
	if headersJSON != nil {
		if err := fromJSON([]byte(*headersJSON), &cached.Headers); err != nil {
			return nil, fmt.Errorf("failed to unmarshal headers: %w", err)
		}
	}
	return cached, nil
}

// StoreResult stores the result of an idempotent request. The first writer wins.
func (r *IdempotencyRepo) StoreResult(ctx context.Context, req StoredRequest) error {
	headersJSON, err := toJSON(req.Response.Headers)
	if err != nil {
		return fmt.Errorf("failed to marshal headers: %w", err)
	}

	query := `
		INSERT INTO idempotency_keys (
			key_hash, company_id, original_key, request_method, request_path,
			request_payload, response_status, response_body, response_headers, expires_at
		) VALUES ($1, $2, $3, $4, $5, $6::jsonb, $7, $8::jsonb, $9::jsonb, $10)
		ON CONFLICT (company_id, key_hash) DO NOTHING
	`

	_, err = r.pool.Exec(ctx, query,
		req.KeyHash, req.CompanyID, req.OriginalKey, req.Method, req.Path,
		jsonOrNull(req.Payload), req.Response.Status, jsonOrNull(req.Response.Body), headersJSON,
		time.Now().Add(r.ttl),
	)
	if err != nil {
		return fmt.Errorf("failed to store idempotency result: %w", err)
	}

	return nil
}

// CleanupExpired removes expired idempotency keys
func (r *IdempotencyRepo) CleanupExpired(ctx context.Context) (int64, error) {
	result, err := r.pool.Exec(ctx, `DELETE FROM idempotency_keys WHERE expires_at <= NOW()`)
	if err != nil {
		return 0, fmt.Errorf("failed to cleanup expired keys: %w", err)
	}

	return result.RowsAffected(), nil
}

// jsonOrNull keeps non-JSON bodies (empty, plain text) out of jsonb columns.
func jsonOrNull(raw json.RawMessage) *string {
	if len(raw) == 0 || !json.Valid(raw) {
		return nil
	}
	s := string(raw)
	return &s
}
