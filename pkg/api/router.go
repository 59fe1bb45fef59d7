// Package api serves the practice operations as JSON to the browser popup over a
// local HTTP port.
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/leetrack/leetrack-common/pkg/domain"
	"github.com/leetrack/leetrack-common/pkg/service"
)

// Practice is the service surface exposed over HTTP.
type Practice interface {
	ListProblems(ctx context.Context, forceRefresh bool) ([]*domain.Problem, error)
	ActiveProblem(ctx context.Context, rawURL string) (*domain.Problem, error)
	TrackProblem(ctx context.Context, req service.TrackRequest) (*domain.Problem, error)
	Lookup(ctx context.Context, nameOrURL string) (*domain.Problem, error)
	Rate(ctx context.Context, id string, comfort domain.Comfort) error
	SetIcebox(ctx context.Context, id string, value bool) error
	PickWeak(ctx context.Context, comfort domain.Comfort) (*domain.Problem, error)
	PickByTag(ctx context.Context, tag domain.Tag, mode domain.PickMode) (*domain.Problem, error)
	PickIcebox(ctx context.Context) (*domain.Problem, error)
	Stats(ctx context.Context) (*service.Stats, error)
}

// NewRouter builds the companion API. CORS is only enabled when origins is non-empty.
func NewRouter(svc Practice, origins []string, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(requestLogger(logger))

	if len(origins) > 0 {
		r.Use(corsHandler(origins))
	}

	h := &handler{svc: svc, logger: logger}

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Route("/problems", func(r chi.Router) {
		r.Get("/", h.listProblems)
		r.Post("/", h.trackProblem)
		r.Get("/active", h.activeProblem)
		r.Get("/lookup", h.lookup)
		r.Post("/{id}/rate", h.rate)
		r.Post("/{id}/icebox", h.setIcebox)
	})

	r.Route("/pick", func(r chi.Router) {
		r.Get("/weak", h.pickWeak)
		r.Get("/tag", h.pickByTag)
		r.Get("/icebox", h.pickIcebox)
	})

	r.Get("/stats", h.stats)

	return r
}

func corsHandler(origins []string) func(http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type"},
		ExposedHeaders: []string{"X-Request-Id"},
		MaxAge:         300,
	})
}

func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()

			next.ServeHTTP(ww, r)

			logger.Debug("Request served",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"duration", time.Since(start),
				"request_id", chimw.GetReqID(r.Context()))
		})
	}
}
