package httpapi

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"photolabel/internal/bootstrap/logging"
	"photolabel/internal/usecase/labeling"
)

// Server is the HTTP front for the labeling service, consumed by the
// annotation UI.
type Server struct {
	svc  *labeling.Service
	http *http.Server
}

func NewServer(addr string, svc *labeling.Service) *Server {
	s := &Server{svc: svc}

	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/tasks/next", s.handleNextTask)
		r.Post("/tasks/{imageID}/release", s.handleReleaseTask)

		r.Route("/images/{imageID}", func(r chi.Router) {
			r.Get("/", s.handleGetImage)
			r.Get("/url", s.handleGetImageURL)
			r.Put("/labels", s.handleSaveLabels)
			r.Post("/confirm", s.handleConfirm)
			r.Post("/revision", s.handleRequestRevision)
		})

		r.Route("/users/{userID}", func(r chi.Router) {
			r.Get("/history", s.handleHistory)
			r.Get("/history/next", s.handleHistoryNext)
			r.Get("/history/prev", s.handleHistoryPrev)
		})
	})
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	s.http = &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler exposes the routed handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.http.Handler
}

// Start serves until the listener fails or Shutdown is called.
func (s *Server) Start(ctx context.Context) error {
	logging.Info(ctx, "http server listening", slog.String("addr", s.http.Addr))
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

// requestID tags every request with a fresh id, carried on the request
// context for the structured logs.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := uuid.NewString()
		w.Header().Set("X-Request-Id", id)
		ctx := logging.WithAttrs(r.Context(), slog.String("request_id", id))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		logging.Info(r.Context(), "http request",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", ww.Status()),
			slog.Duration("duration", time.Since(start)))
	})
}
