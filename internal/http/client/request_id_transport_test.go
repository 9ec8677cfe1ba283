package client_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"engage-api/internal/http/client"
	"engage-api/internal/observability/logger"
	"engage-api/internal/observability/requestid"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestIDTransport(t *testing.T) {
	tests := []struct {
		name   string
		ctx    func() context.Context
		header string
		want   string
	}{
		{
			name: "propagates request id from context",
			ctx:  func() context.Context { return requestid.SetRequestID(context.Background(), "req-1") },
			want: "req-1",
		},
		{
			name: "falls back to logger context key",
			ctx:  func() context.Context { return logger.SetRequestIDInContext(context.Background(), "req-2") },
			want: "req-2",
		},
		{
			name:   "keeps explicit header",
			ctx:    func() context.Context { return requestid.SetRequestID(context.Background(), "req-ctx") },
			header: "req-explicit",
			want:   "req-explicit",
		},
		{
			name: "no header without request id",
			ctx:  context.Background,
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got string
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				got = r.Header.Get("X-Request-Id")
			}))
			defer srv.Close()

			req, err := http.NewRequestWithContext(tt.ctx(), http.MethodGet, srv.URL, nil)
			require.NoError(t, err)
			if tt.header != "" {
				req.Header.Set("X-Request-Id", tt.header)
			}

			resp, err := (&http.Client{Transport: client.NewRequestIDTransport(nil)}).Do(req)
			require.NoError(t, err)
			resp.Body.Close()

			assert.Equal(t, tt.want, got)
			if tt.header == "" {
				assert.Empty(t, req.Header.Get("X-Request-Id"), "original request must not be mutated")
			}
		})
	}
}

func TestHTTPClientTimeouts(t *testing.T) {
	internal := client.NewInternalHTTPClient()
	assert.Equal(t, client.DefaultInternalTimeout, internal.Timeout)
	assert.IsType(t, &client.RequestIDTransport{}, internal.Transport)

	custom := client.NewCustomHTTPClient(5 * time.Second)
	assert.Equal(t, 5*time.Second, custom.Timeout)
}
