package main

import (
	"fmt"
	"net/http"
	"regexp"
	"sort"
	"strings"
	"testing"

	"engage-api/internal/config"
	"engage-api/internal/http/docs"
	"engage-api/internal/http/handler"
	"engage-api/internal/observability/logger"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
)

var chiRegexParam = regexp.MustCompile(`\{([^:}]+):[^}]+\}`)

func TestOpenAPIDriftCheck(t *testing.T) {
	log, err := logger.New("test", "error")
	require.NoError(t, err)

	r := buildRouter(RouterDeps{
		Cfg:             &config.Config{OTELServiceName: "test", AppEnv: "dev"},
		Log:             log,
		CampaignHandler: &handler.CampaignHandler{},
		TicketHandler:   &handler.TicketHandler{},
		BookingHandler:  &handler.BookingHandler{},
		DebugHandler:    &handler.DebugHandler{},
	})

	doc, err := openapi3.NewLoader().LoadFromData(docs.GetSpecBytes())
	require.NoError(t, err)

	documented := make(map[string]bool)
	for path, item := range doc.Paths.Map() {
		for method := range item.Operations() {
			documented[strings.ToUpper(method)+" "+path] = true
		}
	}

	implemented := make(map[string]bool)
	err = chi.Walk(r, func(method, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		if strings.HasPrefix(route, "/debug") {
			return nil
		}
		switch method {
		case http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
			implemented[fmt.Sprintf("%s %s", method, normalizeChiPath(route))] = true
		}
		return nil
	})
	require.NoError(t, err)

	var undocumented, stale []string
	for route := range implemented {
		if !documented[route] {
			undocumented = append(undocumented, route)
		}
	}
	for route := range documented {
		if !implemented[route] {
			stale = append(stale, route)
		}
	}
	sort.Strings(undocumented)
	sort.Strings(stale)

	require.Empty(t, undocumented, "routes implemented but not documented in openapi.yaml")
	require.Empty(t, stale, "routes documented in openapi.yaml but not implemented")
}

// normalizeChiPath tira regex dos parâmetros e a barra final.
func normalizeChiPath(path string) string {
	normalized := chiRegexParam.ReplaceAllString(path, "{$1}")
	if len(normalized) > 1 {
		normalized = strings.TrimSuffix(normalized, "/")
	}
	return normalized
}

func TestNormalizeChiPath(t *testing.T) {
	cases := [][2]string{
		{"/v1/companies/{companyId}/tickets/", "/v1/companies/{companyId}/tickets"},
		{"/v1/companies/{companyId}/tickets/{id:[0-9]+}", "/v1/companies/{companyId}/tickets/{id}"},
		{"/", "/"},
		{"/health", "/health"},
	}
	for _, c := range cases {
		require.Equal(t, c[1], normalizeChiPath(c[0]), c[0])
	}
}
