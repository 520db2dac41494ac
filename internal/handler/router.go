package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/passgen/passgen-go/internal/middleware"
)

// RateLimit configures the per-IP limit on action endpoints.
type RateLimit struct {
	RPS   float64
	Burst int
}

// NewRouter mounts the widget page, widget actions and the JSON API.
// ctx bounds background work owned by the router's middleware.
func NewRouter(ctx context.Context, wh *WidgetHandler, gh *GeneratorHandler, limit RateLimit) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	r.Get("/", wh.HandlePage)
	r.Get("/widget", wh.HandleFragment)
	r.Get("/widget/events", wh.HandleEvents)
	r.Get("/api/v1/state", wh.HandleState)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RateLimit(ctx, limit.RPS, limit.Burst))
		r.Post("/widget/length", wh.HandleLength)
		r.Post("/widget/options/{option}", wh.HandleToggleOption)
		r.Post("/widget/generate", wh.HandleGenerate)
		r.Post("/widget/copy", wh.HandleCopy)
		r.Post("/api/v1/generate", gh.HandleGenerate)
	})

	return r
}
