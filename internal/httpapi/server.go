// Package httpapi is the JSON surface over the subscription and
// publication services. Privilege is decided here, at the boundary, and
// handed to the services as a plain boolean.
package httpapi

import (
	"log/slog"
	"net/http"

	"pressroom/app"
)

const (
	kilobyte = 1024
	megabyte = 1024 * kilobyte

	maxSubscribeBodySize  = kilobyte / 2
	maxNewsletterBodySize = megabyte
)

type Server struct {
	subs     *app.SubscriptionService
	pubs     *app.PublicationService
	apiToken string
	log      *slog.Logger
}

func New(subs *app.SubscriptionService, pubs *app.PublicationService, apiToken string, log *slog.Logger) *Server {
	return &Server{subs: subs, pubs: pubs, apiToken: apiToken, log: log}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
	})

	mux.HandleFunc("POST /subscribers", s.subscribe)
	mux.HandleFunc("GET /subscribers", s.requireAuth(s.listSubscribers))
	mux.HandleFunc("DELETE /subscribers/{id}", s.requireAuth(s.deleteSubscriber))
	mux.HandleFunc("POST /unsubscribe", s.unsubscribe)

	mux.HandleFunc("GET /newsletters", s.listNewsletters)
	mux.HandleFunc("POST /newsletters", s.requireAuth(s.createNewsletter))
	mux.HandleFunc("GET /newsletters/{id}", s.getNewsletter)
	mux.HandleFunc("PUT /newsletters/{id}", s.requireAuth(s.updateNewsletter))
	mux.HandleFunc("DELETE /newsletters/{id}", s.requireAuth(s.deleteNewsletter))
	mux.HandleFunc("GET /newsletters/slug/{slug}", s.getNewsletterBySlug)

	mux.HandleFunc("GET /admin/stats", s.requireAuth(s.stats))

	return s.logging(mux)
}
