// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Subscription outcomes.
const (
	OutcomeAccepted     = "accepted"
	OutcomeInvalid      = "invalid"
	OutcomeStorageError = "storage_error"
)

// Confirmation email outcomes.
const (
	OutcomeSent   = "sent"
	OutcomeFailed = "failed"
)

var (
	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "newsletter_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)
	subscriptions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "newsletter_subscriptions_total",
			Help: "Subscription requests by outcome",
		},
		[]string{"outcome"},
	)
	confirmationEmails = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "newsletter_confirmation_emails_total",
			Help: "Confirmation email dispatch attempts by outcome",
		},
		[]string{"outcome"},
	)
)

// Middleware records request duration labelled by the matched chi route
// pattern, so path parameters do not blow up cardinality.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if p := rctx.RoutePattern(); p != "" {
				route = p
			}
		}
		httpRequestDuration.WithLabelValues(r.Method, route, strconv.Itoa(ww.Status())).
			Observe(time.Since(start).Seconds())
	})
}

// RecordSubscription counts one subscription request.
func RecordSubscription(outcome string) {
	subscriptions.WithLabelValues(outcome).Inc()
}

// RecordConfirmationEmail counts one confirmation email attempt.
func RecordConfirmationEmail(outcome string) {
	confirmationEmails.WithLabelValues(outcome).Inc()
}
