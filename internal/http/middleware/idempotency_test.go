package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"engage-api/internal/repo/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIdempotencyMiddleware(t *testing.T) {
	store := memory.NewIdempotencyStore(time.Hour)

	calls := 0
	h := IdempotencyMiddleware(store)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Location", "/v1/companies/company-1/tickets/t-1")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":"t-1"}`))
	}))

	send := func(companyID, key string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/v1/companies/"+companyID+"/tickets", strings.NewReader(`{"title":"x"}`))
		if key != "" {
			req.Header.Set("Idempotency-Key", key)
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, withCompany(req, companyID))
		return rec
	}

	first := send("company-1", "key-1")
	require.Equal(t, http.StatusCreated, first.Code)
	assert.Empty(t, first.Header().Get("X-Idempotency-Replay"))

	replay := send("company-1", "key-1")
	require.Equal(t, http.StatusCreated, replay.Code)
	assert.Equal(t, "true", replay.Header().Get("X-Idempotency-Replay"))
	assert.Equal(t, "/v1/companies/company-1/tickets/t-1", replay.Header().Get("Location"))
	assert.JSONEq(t, `{"id":"t-1"}`, replay.Body.String())
	assert.Equal(t, 1, calls)

	// a mesma chave em outra company não colide
	other := send("company-2", "key-1")
	assert.Empty(t, other.Header().Get("X-Idempotency-Replay"))
	assert.Equal(t, 2, calls)

	send("company-1", "")
	assert.Equal(t, 3, calls)
}

func TestIdempotencyMiddleware_SkipsFailuresAndReads(t *testing.T) {
	store := memory.NewIdempotencyStore(time.Hour)

	status := http.StatusUnprocessableEntity
	calls := 0
	h := IdempotencyMiddleware(store)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(status)
	}))

	post := func() int {
		req := httptest.NewRequest(http.MethodPatch, "/t", strings.NewReader(`{}`))
		req.Header.Set("Idempotency-Key", "k")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, withCompany(req, "company-1"))
		return rec.Code
	}

	assert.Equal(t, http.StatusUnprocessableEntity, post())
	status = http.StatusOK
	assert.Equal(t, http.StatusOK, post(), "failed responses are not cached")
	assert.Equal(t, 2, calls)

	get := httptest.NewRequest(http.MethodGet, "/t", nil)
	get.Header.Set("Idempotency-Key", "k")
	h.ServeHTTP(httptest.NewRecorder(), get)
	assert.Equal(t, 3, calls, "GET passes through without company lookup")
}

func TestIdempotencyMiddleware_KeyTooLong(t *testing.T) {
	h := IdempotencyMiddleware(memory.NewIdempotencyStore(time.Hour))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run")
	}))

	req := httptest.NewRequest(http.MethodPost, "/t", nil)
	req.Header.Set("Idempotency-Key", strings.Repeat("k", 256))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, withCompany(req, "company-1"))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
