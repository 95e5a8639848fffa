package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/ignite/newsletter/internal/pkg/logger"
	"github.com/ignite/newsletter/internal/pkg/metrics"
	"github.com/ignite/newsletter/internal/ratelimit"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// Deps are the collaborators the router hands requests to.
// Limiter guards POST /subscriptions when non-nil. X-Forwarded-For and
// X-Real-IP replace the peer address only when TrustProxy is set.
type Deps struct {
	Subscriptions  Subscriber
	Health         *HealthChecker
	Limiter        ratelimit.Allower
	Logger         zerolog.Logger
	AllowedOrigins []string
	TrustProxy     bool
}

// SetupRoutes configures all routes.
func SetupRoutes(d Deps) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	if d.TrustProxy {
		r.Use(middleware.RealIP)
	}
	r.Use(logger.Middleware(d.Logger))
	r.Use(middleware.Recoverer)
	r.Use(metrics.Middleware)

	origins := d.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health_check", HandleHealthCheck)
	if d.Health != nil {
		r.Get("/health/ready", d.Health.HandleReadiness)
	}
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	subs := NewSubscriptionHandler(d.Subscriptions)
	r.Route("/subscriptions", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			if d.Limiter != nil {
				r.Use(ratelimit.Middleware(d.Limiter))
			}
			r.Post("/", subs.HandleSubscribe)
		})
		r.Get("/confirm", subs.HandleConfirm)
	})

	return r
}
