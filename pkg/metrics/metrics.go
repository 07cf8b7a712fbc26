// Package metrics exposes Prometheus instrumentation for the HTTP layer.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "metro",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Count of HTTP requests by method, path and status.",
	}, []string{"method", "path", "status"})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "metro",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "path"})

	inFlight = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "metro",
		Subsystem: "http",
		Name:      "in_flight_requests",
		Help:      "Requests currently being served.",
	})

	ordersCreated = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "metro",
		Name:      "orders_created_total",
		Help:      "Orders accepted by the API.",
	})

	paymentIntents = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "metro",
		Name:      "payment_intents_total",
		Help:      "Stripe payment intents by outcome.",
	}, []string{"outcome"})
)

// OrderCreated bumps the order counter.
func OrderCreated() { ordersCreated.Inc() }

// PaymentIntent records one payment intent attempt with its outcome
// ("created" or "error").
func PaymentIntent(outcome string) { paymentIntents.WithLabelValues(outcome).Inc() }

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (sw *statusWriter) WriteHeader(code int) {
	sw.status = code
	sw.ResponseWriter.WriteHeader(code)
}

// Middleware records request count, latency and in-flight gauge.
// The path label uses the raw URL path for unrouted requests; routed
// handlers are low-cardinality because ids live in path params the
// router has already matched.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		inFlight.Inc()
		defer inFlight.Dec()

		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)

		path := routePattern(r)
		requestsTotal.WithLabelValues(r.Method, path, strconv.Itoa(sw.status)).Inc()
		requestDuration.WithLabelValues(r.Method, path).Observe(time.Since(start).Seconds())
	})
}

// routePattern prefers the matched chi pattern ("/api/users/{id}") over
// the raw path so ids do not explode label cardinality.
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return r.URL.Path
}

// Handler serves the /metrics scrape endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
