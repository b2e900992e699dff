package shared

import (
	"context"
	"net/http"
)

type Applier interface {
	Apply(ctx context.Context, mutate func() error) error
}

// Apply runs mutate and persists it. On failure it writes the error response
// and returns false; the books are left as they were before the call.
func Apply(w http.ResponseWriter, r *http.Request, a Applier, mutate func() error) bool {
	if err := a.Apply(r.Context(), mutate); err != nil {
		WriteError(w, r, err)
		return false
	}
	return true
}
