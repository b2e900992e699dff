package shared

import (
	"encoding/json"
	"errors"
	"net/http"

	"capworks/internal/requestctx"
	"capworks/internal/transport/http/api"
)

// DecodeJSON decodes the request body into dst and writes the failure
// response itself when it returns false.
func DecodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		requestID := requestctx.GetRequestID(r.Context())
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			api.Fail(w, http.StatusRequestEntityTooLarge, "payload_too_large", "request body too large", requestID)
			return false
		}
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid json payload", requestID)
		return false
	}
	return true
}
