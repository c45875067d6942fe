// Package api exposes the triage workflow as a JSON HTTP surface. The
// handlers are thin: request decoding, session lookup and error mapping;
// all semantics live in the session, selection, swipe, stats and report
// packages.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/opnote/mediatriage/internal/session"
)

// App holds the dependencies shared by all handlers.
type App struct {
	Sessions *session.Manager
}

// NewRouter builds the API router.
func NewRouter(app *App) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/ping", PingHandler)

	r.Route("/api/session", func(r chi.Router) {
		r.Post("/", app.CreateSessionHandler)
		r.Route("/{sessionID}", func(r chi.Router) {
			r.Delete("/", app.DeleteSessionHandler)
			r.Get("/media", app.ListMediaHandler)
			r.Get("/stats", app.StatsHandler)

			r.Get("/selection", app.GetSelectionHandler)
			r.Put("/selection", app.ReplaceSelectionHandler)
			r.Post("/selection/toggle", app.ToggleSelectionHandler)

			r.Post("/swipe/start", app.SwipeStartHandler)
			r.Get("/swipe/current", app.SwipeCurrentHandler)
			r.Post("/swipe/decide", app.SwipeDecideHandler)

			r.Post("/report/generate", app.GenerateReportHandler)
			r.Get("/report", app.ReportStatusHandler)
			r.Put("/report/content", app.EditReportHandler)
			r.Post("/report/export", app.ExportReportHandler)
		})
	})

	return r
}

// PingHandler is the liveness probe.
func PingHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("pong"))
}
