package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"shopping-list/internal/auth"
	"shopping-list/internal/manager"
	"shopping-list/internal/web"
)

type Options struct {
	ForceHTTPS bool
}

// NewRouter собирает REST API, страницу списка и служебные маршруты.
func NewRouter(im *manager.ItemManager, sessions *auth.Sessions, opts Options) *chi.Mux {
	h := &handlers{items: im, sessions: sessions}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(requestLogger)
	r.Use(requestMetrics)
	r.Use(securityHeaders)
	if opts.ForceHTTPS {
		r.Use(redirectHTTPS)
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Post("/login", h.login)

		r.Group(func(r chi.Router) {
			r.Use(h.requireAuth)
			r.Get("/items", h.listItems)
			r.Post("/items", h.addItem)
			r.Delete("/items/clear-completed", h.clearCompleted)
			r.Put("/items/{id:[0-9]+}", h.updateItem)
			r.Put("/items/{id:[0-9]+}/toggle", h.toggleItem)
			r.Delete("/items/{id:[0-9]+}", h.deleteItem)
		})
	})

	web.NewHandler(im, sessions).Mount(r)
	return r
}
