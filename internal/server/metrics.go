package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	registry       *prometheus.Registry
	requests       *prometheus.CounterVec
	duration       *prometheus.HistogramVec
	stepsGenerated *prometheus.CounterVec
	sessions       prometheus.Gauge
}

// NewMetrics registers the server collectors on a fresh registry so several
// servers can coexist in one process.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "algoviz",
			Name:      "http_requests_total",
			Help:      "HTTP requests by route, method and status code.",
		}, []string{"route", "method", "code"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "algoviz",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
		stepsGenerated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "algoviz",
			Name:      "steps_generated_total",
			Help:      "Animation steps generated, by algorithm.",
		}, []string{"algorithm"}),
		sessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "algoviz",
			Name:      "sessions_active",
			Help:      "Live playback sessions.",
		}),
	}
	m.registry.MustRegister(m.requests, m.duration, m.stepsGenerated, m.sessions)
	return m
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) ObserveSteps(algorithm string, n int) {
	m.stepsGenerated.WithLabelValues(algorithm).Add(float64(n))
}

func (m *Metrics) SetSessions(n int) { m.sessions.Set(float64(n)) }

// Middleware records request counts and latency under the matched route
// pattern, not the raw path.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		code := ww.Status()
		if code == 0 {
			code = http.StatusOK
		}
		m.requests.WithLabelValues(route, r.Method, strconv.Itoa(code)).Inc()
		m.duration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}
