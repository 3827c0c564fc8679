package web

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"evalplanner-jobs/internal/infra/redis"
	"evalplanner-jobs/internal/usecase"
)

// Server exposes the job submission/polling API.
type Server struct {
	jobUC        usecase.JobUseCase
	limiter      *redis.RateLimiter
	submitLimit  int
	submitWindow time.Duration
	log          *zerolog.Logger
}

func NewServer(
	jobUC usecase.JobUseCase,
	limiter *redis.RateLimiter,
	submitLimit int,
	submitWindow time.Duration,
	logger *zerolog.Logger,
) *Server {
	return &Server{
		jobUC:        jobUC,
		limiter:      limiter,
		submitLimit:  submitLimit,
		submitWindow: submitWindow,
		log:          logger,
	}
}

// Routes builds the router. The job endpoints carry no auth beyond the
// owner-email check inside the use case.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{
			"status":    "healthy",
			"timestamp": time.Now().Format(time.RFC3339),
		})
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1/jobs", func(r chi.Router) {
		r.Post("/", s.submitJobHandler())
		r.Get("/{id}", s.getJobHandler())
	})

	return r
}
