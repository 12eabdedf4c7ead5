// Package server exposes trace generation, stored runs, and live playback
// sessions over HTTP.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/san-kum/algoviz/internal/algo"
	"github.com/san-kum/algoviz/internal/logging"
	"github.com/san-kum/algoviz/internal/playback"
	"github.com/san-kum/algoviz/internal/storage"
)

const (
	shutdownTimeout = 5 * time.Second

	// DefaultMaxInputLen bounds request arrays. Bubble sort emits O(n²)
	// steps, each a full copy of the array.
	DefaultMaxInputLen = 200
)

var ErrInputTooLong = errors.New("server: input too long")

type Server struct {
	router   chi.Router
	registry *algo.Registry
	store    storage.Store
	sessions *Sessions
	metrics  *Metrics
	logger   *slog.Logger
	speed    time.Duration
	maxInput int
}

type Option func(*options)

type options struct {
	scheduler   playback.Scheduler
	maxSessions int
	maxInput    int
	speed       time.Duration
}

// WithScheduler sets the scheduler handed to every session controller.
func WithScheduler(s playback.Scheduler) Option { return func(o *options) { o.scheduler = s } }

func WithMaxSessions(n int) Option { return func(o *options) { o.maxSessions = n } }

// WithMaxInputLen caps the array length accepted by the trace and session
// endpoints. Non-positive values keep DefaultMaxInputLen.
func WithMaxInputLen(n int) Option { return func(o *options) { o.maxInput = n } }

// WithDefaultSpeed sets the delay used when a session request names none.
func WithDefaultSpeed(d time.Duration) Option { return func(o *options) { o.speed = d } }

// New builds the router. store may be nil; the run endpoints then answer 503.
func New(store storage.Store, logger *slog.Logger, opts ...Option) *Server {
	o := options{speed: playback.DefaultSpeed}
	for _, opt := range opts {
		opt(&o)
	}
	if o.maxInput <= 0 {
		o.maxInput = DefaultMaxInputLen
	}
	logger = logging.OrDiscard(logger)

	s := &Server{
		registry: algo.NewRegistry(),
		store:    store,
		sessions: NewSessions(o.maxSessions, o.scheduler, logger),
		metrics:  NewMetrics(),
		logger:   logger,
		speed:    o.speed,
		maxInput: o.maxInput,
	}
	s.sessions.onCount = s.metrics.SetSessions
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(s.metrics.Middleware)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", s.metrics.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/algorithms", s.handleAlgorithms)
		r.Post("/steps", s.handleSteps)

		r.Route("/sessions", func(r chi.Router) {
			r.Post("/", s.handleCreateSession)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleGetSession)
				r.Delete("/", s.handleDeleteSession)
				r.Put("/speed", s.handleSessionSpeed)
				r.Put("/input", s.handleSessionInput)
				r.Put("/algorithm", s.handleSessionAlgorithm)
				r.Get("/steps", s.handleSessionSteps)
				r.Post("/{action}", s.handleSessionAction)
			})
		})

		r.Route("/runs", func(r chi.Router) {
			r.Get("/", s.handleListRuns)
			r.Post("/", s.handleSaveRun)
			r.Get("/{id}", s.handleGetRun)
			r.Delete("/{id}", s.handleDeleteRun)
		})
	})
	return r
}

func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) Sessions() *Sessions { return s.sessions }

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully and tears down every session.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		s.Close()
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	err := srv.Shutdown(shutdownCtx)
	s.Close()
	s.logger.Info("server stopped")
	return err
}

func (s *Server) Close() {
	s.sessions.CloseAll()
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}
