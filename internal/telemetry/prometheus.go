package telemetry

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"engage-api/internal/http/httperr"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsTokenHeader é o header alternativo ao Bearer para o scrape.
const MetricsTokenHeader = "X-Metrics-Token"

// PrometheusHandler serves the default Prometheus registry (Go runtime and
// process collectors). With a non-empty token the scraper must send it either
// in X-Metrics-Token or as a Bearer token.
func PrometheusHandler(token string) http.Handler {
	h := promhttp.Handler()
	if token == "" {
		return h
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !metricsTokenMatches(r, token) {
			httperr.Unauthorized401(w, r.Context(), httperr.ErrCodeInvalidToken, "unauthorized")
			return
		}
		h.ServeHTTP(w, r)
	})
}

func metricsTokenMatches(r *http.Request, token string) bool {
	got := r.Header.Get(MetricsTokenHeader)
	if got == "" {
		got, _ = strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	}
	return got != "" && subtle.ConstantTimeCompare([]byte(got), []byte(token)) == 1
}
