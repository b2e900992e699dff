package shared

import (
	"net/http"
	"sort"

	"capworks/internal/domain/validation"
	"capworks/internal/transport/http/api"
)

type ValidationIssue struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// FromError converts a domain validation error into issues, one per field,
// sorted by field name.
func FromError(err error) []ValidationIssue {
	fields := validation.Fields(err)
	if len(fields) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(fields))
	issues := make([]ValidationIssue, 0, len(fields))
	for _, field := range fields {
		if _, dup := seen[field]; dup {
			continue
		}
		seen[field] = struct{}{}
		issues = append(issues, ValidationIssue{Field: field, Reason: "missing or invalid"})
	}
	sort.Slice(issues, func(i, j int) bool { return issues[i].Field < issues[j].Field })
	return issues
}

func FailValidation(w http.ResponseWriter, requestID string, issues []ValidationIssue) {
	api.FailWithDetails(
		w,
		http.StatusBadRequest,
		"validation_error",
		"payload validation failed",
		map[string]any{"fields": issues},
		requestID,
	)
}
