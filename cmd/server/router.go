package main

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/phrazzld/kanji-ink/internal/api"
	apiMiddleware "github.com/phrazzld/kanji-ink/internal/api/middleware"
	"github.com/phrazzld/kanji-ink/internal/ink"
)

// requestTimeout bounds a single request, including synchronous assessment.
const requestTimeout = 60 * time.Second

// setupRouter creates and configures the application router with all routes and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(apiMiddleware.TraceMiddleware(app.logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(requestTimeout))

	api.Handlers{
		Health:    api.NewHealthHandler(app.sessions, app.assessor != nil),
		Reference: api.NewReferenceHandler(app.references, app.referenceWriter(), app.logger),
		Writing:   api.NewWritingHandler(app.references, ink.NewExportRenderer(ink.ExportSize), app.assessor, app.logger),
		Sessions:  api.NewSessionHandler(app.sessions, app.logger),
	}.Mount(r)

	return r
}
