package jobshandler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"capworks/internal/platform/jobs"
	"capworks/internal/requestctx"
	"capworks/internal/transport/http/api"
	"capworks/internal/transport/http/middleware"
	"capworks/internal/transport/http/shared"
)

type Handler struct {
	Jobs *jobs.Service
}

func NewHandler(svc *jobs.Service) *Handler {
	return &Handler{Jobs: svc}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/jobs", func(r chi.Router) {
		r.Get("/", h.handleTypes)
		r.Get("/runs", h.handleRuns)
		r.Post("/{jobType}/run", h.handleRun)
	})
}

func (h *Handler) handleTypes(w http.ResponseWriter, r *http.Request) {
	api.Success(w, h.Jobs.Types(), middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleRuns(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 && v <= 200 {
			limit = v
		}
	}
	runs, err := h.Jobs.Recent(r.Context(), limit)
	if err != nil {
		shared.WriteError(w, r, err)
		return
	}
	api.Success(w, runs, middleware.GetRequestID(r.Context()))
}

// handleRun executes a job inline, or queues it when async=true.
func (h *Handler) handleRun(w http.ResponseWriter, r *http.Request) {
	jobType := chi.URLParam(r, "jobType")
	requestID := middleware.GetRequestID(r.Context())

	if async, _ := strconv.ParseBool(r.URL.Query().Get("async")); async {
		if err := h.Jobs.Enqueue(jobType); err != nil {
			shared.WriteError(w, r, err)
			return
		}
		api.WriteJSON(w, http.StatusAccepted, api.Envelope{
			Success:   true,
			Data:      map[string]string{"jobType": jobType, "status": "queued"},
			RequestID: requestID,
		})
		return
	}

	details, err := h.Jobs.RunNow(r.Context(), jobType)
	if err != nil {
		if errors.Is(err, jobs.ErrUnknownJob) {
			shared.WriteError(w, r, err)
			return
		}
		requestctx.Logger(r.Context()).Warn("job run failed", zap.String("jobType", jobType), zap.Error(err))
		api.Fail(w, http.StatusInternalServerError, "job_failed", err.Error(), requestID)
		return
	}
	api.Success(w, map[string]any{"jobType": jobType, "status": jobs.StatusCompleted, "details": details}, requestID)
}
