package client

import (
	"net/http"
	"time"
)

// DefaultInternalTimeout é o timeout de chamadas entre serviços internos.
const DefaultInternalTimeout = 30 * time.Second

// NewInternalHTTPClient returns a client for calls between internal services:
// request id propagation, pooled connections and a bounded timeout.
func NewInternalHTTPClient() *http.Client {
	return NewCustomHTTPClient(DefaultInternalTimeout)
}

// NewCustomHTTPClient is NewInternalHTTPClient with a caller-chosen timeout.
func NewCustomHTTPClient(timeout time.Duration) *http.Client {
	// http.DefaultClient não tem timeout nenhum
	base := http.DefaultTransport.(*http.Transport).Clone()

	return &http.Client{
		Transport: NewRequestIDTransport(base),
		Timeout:   timeout,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= 10 {
				return http.ErrUseLastResponse
			}
			return nil
		},
	}
}
