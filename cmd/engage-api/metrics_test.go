package main

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"engage-api/internal/config"
	"engage-api/internal/http/httperr"
	"engage-api/internal/observability/logger"
	"engage-api/internal/telemetry"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zapcore"
)

func TestMetricsEndpoint(t *testing.T) {
	log := logger.NewWithCore("test", zapcore.NewNopCore())

	cases := []struct {
		name     string
		token    string
		headers  map[string]string
		wantCode int
	}{
		{name: "open without configured token", wantCode: http.StatusOK},
		{name: "missing token", token: "scrape-secret", wantCode: http.StatusUnauthorized},
		{
			name:     "wrong header token",
			token:    "scrape-secret",
			headers:  map[string]string{telemetry.MetricsTokenHeader: "guess"},
			wantCode: http.StatusUnauthorized,
		},
		{
			name:     "header token",
			token:    "scrape-secret",
			headers:  map[string]string{telemetry.MetricsTokenHeader: "scrape-secret"},
			wantCode: http.StatusOK,
		},
		{
			name:     "bearer token",
			token:    "scrape-secret",
			headers:  map[string]string{"Authorization": "Bearer scrape-secret"},
			wantCode: http.StatusOK,
		},
		{
			name:     "service token is not a scrape token",
			token:    "scrape-secret",
			headers:  map[string]string{"Authorization": "Bearer " + testS2SToken},
			wantCode: http.StatusUnauthorized,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := buildRouter(RouterDeps{
				Cfg: &config.Config{OTELServiceName: "test", MetricsToken: tc.token},
				Log: log,
			})

			req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
			for k, v := range tc.headers {
				req.Header.Set(k, v)
			}
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)

			assert.Equal(t, tc.wantCode, rec.Code)
			if tc.wantCode == http.StatusOK {
				assert.Contains(t, rec.Header().Get("Content-Type"), "text/plain")
				assert.Contains(t, rec.Body.String(), "go_goroutines")
				return
			}
			assert.Contains(t, rec.Body.String(), httperr.ErrCodeInvalidToken)
		})
	}
}
