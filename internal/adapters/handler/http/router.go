package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

const welcome = "🤖 Weekly poll bot is running"

// NewHandler wires the routes. metrics may be nil.
func NewHandler(pollHandler *PollHandler, webhookHandler *WebhookHandler, metrics http.Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(welcome))
	})
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	if metrics != nil {
		r.Method(http.MethodGet, "/metrics", metrics)
	}

	r.Post("/webhook/{secret}", webhookHandler.HandleUpdate)

	r.Route("/api", func(r chi.Router) {
		r.Get("/poll", pollHandler.GetPoll)
	})

	return r
}
