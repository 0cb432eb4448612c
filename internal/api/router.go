package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"happiness.app/happiness-creator/internal/core"
)

func NewRouter(apiHandler *APIHandler, gatherer prometheus.Gatherer) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RequestLogger(&middleware.DefaultLogFormatter{Logger: log.StandardLogger(), NoColor: true}))
	r.Use(middleware.Recoverer)    // Recover from panics
	r.Use(middleware.StripSlashes) // Ensure consistent path handling

	r.Get("/api/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	imageDir := apiHandler.datingService.ImageDir()
	r.Handle(core.ImageURLPrefix+"*", http.StripPrefix(core.ImageURLPrefix, http.FileServer(http.Dir(imageDir))))

	r.Group(func(r chi.Router) {
		r.Use(apiHandler.SessionMiddleware)

		// Public routes
		r.Get("/", apiHandler.IndexHandler)
		r.Post("/login", apiHandler.LoginHandler)

		// Logged-in routes
		r.Group(func(r chi.Router) {
			r.Use(apiHandler.RequireLogin)

			r.Post("/access-code", apiHandler.AccessCodeHandler)

			r.Get("/chat", apiHandler.ChatHandler)
			r.Post("/chat", apiHandler.PostChatHandler)

			r.Get("/community", apiHandler.CommunityHandler)
			r.Post("/community", apiHandler.PostCommunityHandler)

			r.Get("/marketplace", apiHandler.MarketplaceHandler)
			r.Post("/marketplace", apiHandler.CreateListingHandler)
			r.Post("/marketplace/{listingID}/contact", apiHandler.ContactSellerHandler)

			r.Get("/messages", apiHandler.InboxHandler)

			r.Get("/dating", apiHandler.DatingHandler)
			r.Post("/dating", apiHandler.SaveProfileHandler)
		})
	})

	return r
}
