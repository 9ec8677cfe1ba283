// Package docs serve o contrato OpenAPI embutido e a UI de referência.
package docs

import (
	"bytes"
	"crypto/sha256"
	_ "embed"
	"encoding/hex"
	"html/template"
	"net/http"
)

//go:embed openapi.yaml
var openAPISpec []byte

// ETag fixo: o spec só muda com um novo build.
var specETag = func() string {
	sum := sha256.Sum256(openAPISpec)
	return `"` + hex.EncodeToString(sum[:8]) + `"`
}()

// GetSpecBytes returns the embedded openapi.yaml.
func GetSpecBytes() []byte {
	return openAPISpec
}

// OpenAPIHandler serves openapi.yaml, answering 304 to a matching If-None-Match.
func OpenAPIHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("ETag", specETag)
		w.Header().Set("Cache-Control", "no-cache")
		if r.Header.Get("If-None-Match") == specETag {
			w.WriteHeader(http.StatusNotModified)
			return
		}
		w.Header().Set("Content-Type", "application/yaml; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(openAPISpec)
	})
}

var scalarPage = template.Must(template.New("scalar").Parse(`<!doctype html>
<html>
  <head>
    <title>Engage API Reference</title>
    <meta charset="utf-8" />
    <meta name="viewport" content="width=device-width, initial-scale=1" />
  </head>
  <body style="margin: 0">
    <script id="api-reference" data-url="{{.SpecURL}}"></script>
    <script src="https://cdn.jsdelivr.net/npm/@scalar/api-reference"></script>
  </body>
</html>`))

// ScalarDocsHandler renders the Scalar API reference (CDN) pointed at specURL.
func ScalarDocsHandler(specURL string) http.Handler {
	var page bytes.Buffer
	if err := scalarPage.Execute(&page, struct{ SpecURL string }{specURL}); err != nil {
		panic(err)
	}
	body := page.Bytes()

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(body)
	})
}
