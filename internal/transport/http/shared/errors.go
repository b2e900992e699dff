package shared

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"capworks/internal/domain/customers"
	"capworks/internal/domain/roster"
	"capworks/internal/domain/stock"
	"capworks/internal/domain/validation"
	"capworks/internal/domain/wages"
	"capworks/internal/platform/jobs"
	"capworks/internal/requestctx"
	"capworks/internal/storage"
	"capworks/internal/transport/http/api"
)

var notFound = []error{
	wages.ErrCapTypeNotFound,
	roster.ErrProfileNotFound,
	customers.ErrCustomerNotFound,
	customers.ErrOrderNotFound,
	customers.ErrPaymentNotFound,
	stock.ErrItemNotFound,
	jobs.ErrUnknownJob,
}

var conflicts = []error{
	wages.ErrWorkerExists,
	stock.ErrItemExists,
}

func isAny(err error, targets []error) bool {
	for _, target := range targets {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// WriteError maps a domain or storage error onto the response envelope.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	requestID := requestctx.GetRequestID(r.Context())
	switch {
	case validation.Is(err):
		FailValidation(w, requestID, FromError(err))
	case isAny(err, notFound):
		api.Fail(w, http.StatusNotFound, "not_found", err.Error(), requestID)
	case isAny(err, conflicts):
		api.Fail(w, http.StatusConflict, "conflict", err.Error(), requestID)
	case errors.Is(err, storage.ErrVersionConflict):
		api.Fail(w, http.StatusConflict, "version_conflict", "workshop state changed concurrently, retry", requestID)
	case errors.Is(err, jobs.ErrQueueFull):
		api.Fail(w, http.StatusServiceUnavailable, "queue_full", err.Error(), requestID)
	default:
		requestctx.Logger(r.Context()).Error("request failed", zap.Error(err))
		api.Fail(w, http.StatusInternalServerError, "internal_error", "internal server error", requestID)
	}
}
