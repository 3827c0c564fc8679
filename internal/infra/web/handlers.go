package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"evalplanner-jobs/internal/domain"
	"evalplanner-jobs/internal/domain/model"
	"evalplanner-jobs/internal/infra/redis"
)

// The expected JSON request body for submitting a job.
type submitJobRequest struct {
	JobType   string          `json:"job_type"`
	InputData model.JobInput  `json:"input_data"`
	Email     string          `json:"email"`
}

type submitJobResponse struct {
	JobID     int64     `json:"job_id"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// jobProjection is what pollers see: the stored error text verbatim, never
// internals.
type jobProjection struct {
	JobID       int64      `json:"job_id"`
	JobType     string     `json:"job_type"`
	Status      string     `json:"status"`
	Result      string     `json:"result,omitempty"`
	Error       string     `json:"error,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

func (s *Server) submitJobHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var req submitJobRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}

		// Shared fixed-window budget per email. Redis being down must not
		// take submissions down with it, so limiter errors fail open.
		if s.limiter != nil && req.Email != "" {
			allowed, err := s.limiter.Allow(ctx, redis.SubmitKey(req.Email), s.submitLimit, s.submitWindow)
			if err != nil {
				s.log.Warn().Err(err).Msg("rate limiter unavailable, allowing request")
			} else if !allowed {
				http.Error(w, "Too many submissions, try again later", http.StatusTooManyRequests)
				return
			}
		}

		job, err := s.jobUC.Submit(ctx, req.JobType, req.InputData, req.Email)
		if err != nil {
			if errors.Is(err, domain.ErrInvalidArgument) {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			s.log.Error().Err(err).Msg("job submission failed")
			http.Error(w, "Failed to submit job", http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusAccepted, submitJobResponse{
			JobID:     job.ID,
			Status:    string(job.Status),
			CreatedAt: job.CreatedAt,
		})
	}
}

func (s *Server) getJobHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			http.Error(w, "Invalid job id", http.StatusBadRequest)
			return
		}
		email := r.URL.Query().Get("email")

		job, err := s.jobUC.Get(ctx, id, email)
		if err != nil {
			switch {
			case errors.Is(err, domain.ErrNotFound):
				http.NotFound(w, r)
			case errors.Is(err, domain.ErrForbidden):
				http.Error(w, "Forbidden", http.StatusForbidden)
			default:
				s.log.Error().Err(err).Int64("job_id", id).Msg("job lookup failed")
				http.Error(w, "Failed to get job", http.StatusInternalServerError)
			}
			return
		}

		writeJSON(w, http.StatusOK, jobProjection{
			JobID:       job.ID,
			JobType:     string(job.Type),
			Status:      string(job.Status),
			Result:      job.Result,
			Error:       job.Error,
			CreatedAt:   job.CreatedAt,
			CompletedAt: job.CompletedAt,
		})
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
