package daemon

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"jotter/internal/logging"
)

// Router builds the daemon's HTTP surface. /health is open; every /v1
// route outside /v1/auth/signup and /v1/auth/signin needs a bearer token.
func (a *API) Router() http.Handler {
	logger := a.Logger
	if logger == nil {
		logger = logging.Nop()
	}
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(LoggingMiddleware(logger))
	if len(a.CORSOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   a.CORSOrigins,
			AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
			AllowedHeaders:   []string{"Authorization", "Content-Type", requestIDHeader},
			ExposedHeaders:   []string{requestIDHeader},
			AllowCredentials: false,
			MaxAge:           300,
		}))
	}
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
	})

	r.Get("/health", a.Health)

	limiter := newKeyedRateLimiter(a.AuthPerMinute, time.Minute, a.AuthPerMinute)
	proxies, invalid := parseTrustedProxies(a.TrustedProxies)
	if len(invalid) > 0 {
		logger.Warn("trusted_proxies_ignored", logging.F("entries", strings.Join(invalid, ",")))
	}
	r.Route("/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(rateLimitMiddleware(limiter, proxies, logger))
			r.Post("/auth/signup", a.SignUp)
			r.Post("/auth/signin", a.SignIn)
		})
		r.Group(func(r chi.Router) {
			r.Use(RequireUser(a.Issuer))
			r.Post("/auth/signout", a.SignOut)
			r.Get("/auth/me", a.Me)
			r.Get("/notes", a.ListNotes)
			r.Post("/notes", a.CreateNote)
			r.Patch("/notes/{id}", a.UpdateNote)
			r.Delete("/notes/{id}", a.DeleteNote)
		})
	})
	return r
}
