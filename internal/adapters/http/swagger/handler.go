// Package swagger serves the OpenAPI document and a ReDoc page for it.
package swagger

import (
	"context"
	"fmt"
	"html/template"
	"net/http"
)

const (
	// redocScript is the public ReDoc bundle used when no asset directory is set.
	redocScript = "https://cdn.redoc.ly/redoc/v2.1.5/bundles/redoc.standalone.js"
	// localScript is where the bundle is served from an asset directory.
	localScript = "/api-docs/redoc.standalone.js"
)

type settings struct {
	assetDir string
}

// Option applies a configuration option to Register.
type Option func(*settings)

// WithAssetDir serves /api-docs/ from dir, which must hold
// redoc.standalone.js. The docs page then works without internet access.
func WithAssetDir(dir string) Option {
	return func(s *settings) {
		s.assetDir = dir
	}
}

// Register attaches the docs routes to mux.
// Routes:
//
//	GET /api-docs                       -> ReDoc HTML
//	GET /openapi.yaml                   -> Embedded OpenAPI document
//	GET /api-docs/redoc.standalone.js   -> ReDoc bundle (only WithAssetDir)
func Register(_ context.Context, mux *http.ServeMux, opts ...Option) {
	if mux == nil {
		panic("mux is nil")
	}
	var s settings
	for _, opt := range opts {
		opt(&s)
	}

	script := redocScript
	if s.assetDir != "" {
		script = localScript
		mux.Handle("/api-docs/", http.StripPrefix("/api-docs/", http.FileServer(http.Dir(s.assetDir))))
	}
	page := fmt.Sprintf(indexHTML, template.HTMLEscapeString(script))

	mux.HandleFunc("/api-docs", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(page))
	})

	mux.HandleFunc("/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/yaml; charset=utf-8")
		_, _ = w.Write(OpenAPI)
	})
}

const indexHTML = `<!doctype html>
<html>
  <head>
    <meta charset="utf-8">
    <title>ImmoEliza API Docs</title>
    <style>body{margin:0;padding:0}</style>
  </head>
  <body>
    <redoc id="redoc-container"></redoc>
    <script src="%s"></script>
    <script>Redoc.init('/openapi.yaml', { suppressWarnings: true }, document.getElementById('redoc-container'));</script>
  </body>
</html>`
