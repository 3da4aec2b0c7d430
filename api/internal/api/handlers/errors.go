// api/internal/api/handlers/errors.go
package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/irgordon/bazaar/api/internal/core/domain"
)

// Use a single instance of Validate, it caches struct info
var validate = newValidator()

// newValidator reports fields by their JSON names so error details match the payload.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

type jsonError struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// partialFailureBody tells the client its money was taken even though a counter
// did not move, so support can reconcile from the purchase id.
type partialFailureBody struct {
	Error      string   `json:"error"`
	Details    string   `json:"details"`
	PurchaseID string   `json:"purchase_id"`
	AppliedIDs []string `json:"applied_ids"`
	SkippedIDs []string `json:"skipped_ids"`
	FailedIDs  []string `json:"failed_ids"`
}

func idStrings(ids []uuid.UUID) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, id.String())
	}
	return out
}

// WriteJSONError writes the uniform {"error", "details"} body.
func WriteJSONError(w http.ResponseWriter, status int, code, details string) {
	writeJSON(w, status, jsonError{Error: code, Details: details})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// HandleError maps domain and validation errors onto HTTP statuses. Internal
// failures are logged with the request id and never echoed to the client.
func HandleError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	// 🛡️ Partial failure first: it unwraps to its per-id causes, which may be ErrNotFound.
	var partial *domain.PartialFailureError
	if errors.As(err, &partial) {
		logger.Error("Purchase recorded but counters incomplete",
			slog.String("request_id", middleware.GetReqID(r.Context())),
			slog.String("purchase_id", partial.Purchase.ID.String()),
			slog.Any("error", err))
		writeJSON(w, http.StatusInternalServerError, partialFailureBody{
			Error:      "partial_failure",
			Details:    "purchase recorded but some sales counters were not updated",
			PurchaseID: partial.Purchase.ID.String(),
			AppliedIDs: idStrings(partial.Applied),
			SkippedIDs: idStrings(partial.Skipped),
			FailedIDs:  idStrings(partial.FailedIDs()),
		})
		return
	}

	var verrs validator.ValidationErrors
	switch {
	case errors.As(err, &verrs):
		WriteJSONError(w, http.StatusBadRequest, "invalid_request", describeValidation(verrs))
	case errors.Is(err, domain.ErrInvalidInput):
		WriteJSONError(w, http.StatusBadRequest, "invalid_request", err.Error())
	case errors.Is(err, domain.ErrNotFound):
		WriteJSONError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, domain.ErrConflict):
		WriteJSONError(w, http.StatusConflict, "conflict", err.Error())
	default:
		logger.Error("Request failed",
			slog.String("request_id", middleware.GetReqID(r.Context())),
			slog.String("path", r.URL.Path),
			slog.Any("error", err))
		WriteJSONError(w, http.StatusInternalServerError, "internal_error", "an unexpected error occurred")
	}
}

func describeValidation(verrs validator.ValidationErrors) string {
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := fe.Field()
		switch fe.Tag() {
		case "required":
			parts = append(parts, field+" is required")
		case "uuid":
			parts = append(parts, field+" must be a valid uuid")
		case "oneof":
			parts = append(parts, field+" must be one of: "+fe.Param())
		case "email":
			parts = append(parts, field+" must be a valid email")
		default:
			parts = append(parts, field+" failed "+fe.Tag())
		}
	}
	return strings.Join(parts, "; ")
}

// decodeJSON answers 400 for bodies that are not valid JSON for dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		WriteJSONError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return false
	}
	return true
}
