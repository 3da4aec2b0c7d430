package domain

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"
)

var (
	// ErrNotFound is returned by repositories instead of driver-specific "no rows" errors.
	ErrNotFound = errors.New("resource not found")

	// ErrInvalidInput marks caller mistakes (missing ids, malformed drafts).
	ErrInvalidInput = errors.New("invalid input")

	// ErrConflict is returned when a unique key (e.g. a listing slug) is already taken.
	ErrConflict = errors.New("resource already exists")

	// ErrPartialFailure matches any *PartialFailureError via errors.Is.
	ErrPartialFailure = errors.New("purchase recorded but counter update incomplete")
)

// PartialFailureError reports a purchase that was durably written while one or more
// sales counter increments failed afterwards. The purchase is never rolled back; the
// outcome sets exist so the counters can be reconciled out of band.
type PartialFailureError struct {
	Purchase *Purchase
	Applied  []uuid.UUID
	Skipped  []uuid.UUID
	Failed   map[uuid.UUID]error
}

func (e *PartialFailureError) Error() string {
	ids := e.FailedIDs()
	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		parts = append(parts, fmt.Sprintf("%s: %v", id, e.Failed[id]))
	}
	return fmt.Sprintf("%v (purchase %s, %d applied, %d failed: %s)",
		ErrPartialFailure, e.Purchase.ID, len(e.Applied), len(e.Failed), strings.Join(parts, "; "))
}

// FailedIDs returns the listing ids whose increment failed, in a stable order.
func (e *PartialFailureError) FailedIDs() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(e.Failed))
	for id := range e.Failed {
		ids = append(ids, id)
	}
	slices.SortFunc(ids, func(a, b uuid.UUID) int { return strings.Compare(a.String(), b.String()) })
	return ids
}

func (e *PartialFailureError) Is(target error) bool { return target == ErrPartialFailure }

func (e *PartialFailureError) Unwrap() []error {
	errs := make([]error, 0, len(e.Failed))
	for _, id := range e.FailedIDs() {
		errs = append(errs, e.Failed[id])
	}
	return errs
}
