package client

import (
	"net/http"

	"engage-api/internal/observability/logger"
	"engage-api/internal/observability/requestid"
)

const requestIDHeader = "X-Request-Id"

// RequestIDTransport copia o request id do contexto para X-Request-Id nas
// chamadas de saída. Um header já definido pelo chamador é preservado.
type RequestIDTransport struct {
	base http.RoundTripper
}

// NewRequestIDTransport wraps base (http.DefaultTransport when nil).
func NewRequestIDTransport(base http.RoundTripper) http.RoundTripper {
	if base == nil {
		base = http.DefaultTransport
	}
	return &RequestIDTransport{base: base}
}

func (t *RequestIDTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Header.Get(requestIDHeader) != "" {
		return t.base.RoundTrip(req)
	}

	ctx := req.Context()
	reqID := logger.GetRequestIDFromContext(ctx)
	if reqID == "" {
		reqID = requestid.GetRequestID(ctx)
	}
	// jobs em background (cleanup, CLI) não têm request id
	if reqID == "" {
		return t.base.RoundTrip(req)
	}

	// RoundTrip não pode alterar o request original
	out := req.Clone(ctx)
	out.Header.Set(requestIDHeader, reqID)
	return t.base.RoundTrip(out)
}
