package api

import (
	"github.com/go-chi/chi/v5"
)

// Handlers groups the HTTP handlers mounted by Mount. A nil Reference
// handler leaves the reference routes unmounted.
type Handlers struct {
	Health    *HealthHandler
	Reference *ReferenceHandler
	Writing   *WritingHandler
	Sessions  *SessionHandler
}

// Mount registers every route on r.
func (h Handlers) Mount(r chi.Router) {
	r.Get("/health", h.Health.Health)

	r.Route("/api", func(r chi.Router) {
		if h.Reference != nil {
			r.Get("/characters/{character}/strokes", h.Reference.GetStrokes)
			r.Put("/characters/{character}/strokes", h.Reference.PutStrokes)
		}

		r.Route("/writing", func(r chi.Router) {
			r.Post("/validate", h.Writing.Validate)
			r.Post("/validate/batch", h.Writing.ValidateBatch)
			r.Post("/export", h.Writing.Export)
			r.Post("/assess", h.Writing.Assess)
		})

		r.Route("/sessions", func(r chi.Router) {
			r.Post("/", h.Sessions.Create)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", h.Sessions.Get)
				r.Delete("/", h.Sessions.Delete)
				r.Post("/strokes/begin", h.Sessions.BeginStroke)
				r.Post("/strokes/samples", h.Sessions.AppendSamples)
				r.Post("/strokes/end", h.Sessions.EndStroke)
				r.Post("/strokes/cancel", h.Sessions.CancelStroke)
				r.Delete("/strokes", h.Sessions.Clear)
				r.Post("/undo", h.Sessions.Undo)
				r.Post("/submit", h.Sessions.Submit)
				r.Get("/frame.png", h.Sessions.Frame)
			})
		})
	})
}
