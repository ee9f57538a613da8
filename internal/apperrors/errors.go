package apperrors

import (
	"errors"
	"fmt"
)

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrStoreUnavailable indicates that a durable-store call failed or timed out.
// Callers must treat this as a hard stop; the core never guesses a result.
var ErrStoreUnavailable = errors.New("store unavailable")

// ErrQuotaExceeded indicates that an award would push the giver past the daily cap.
var ErrQuotaExceeded = errors.New("daily taco quota exceeded")

// ErrPartialApplication indicates the ledger write succeeded but the aggregate
// effects did not fully apply. The transaction ID carried by the typed error is
// the idempotency key an external reconciler replays with.
var ErrPartialApplication = errors.New("transaction recorded but effects not fully applied")

// ErrNoUsers indicates a ranking computation over an empty comparison set.
var ErrNoUsers = errors.New("no users to rank against")

// QuotaExceededError carries the remaining quota so callers can render
// user-facing messaging. Matches ErrQuotaExceeded via errors.Is.
type QuotaExceededError struct {
	Remaining int64
}

func (e *QuotaExceededError) Error() string {
	return fmt.Sprintf("daily taco quota exceeded: %d remaining", e.Remaining)
}

func (e *QuotaExceededError) Is(target error) bool {
	return target == ErrQuotaExceeded
}

// PartialApplicationError identifies the ledger entry whose side effects need
// reconciliation. Matches ErrPartialApplication via errors.Is.
type PartialApplicationError struct {
	TransactionID string
	Err           error
}

func (e *PartialApplicationError) Error() string {
	return fmt.Sprintf("transaction %s recorded but effects not fully applied: %v", e.TransactionID, e.Err)
}

func (e *PartialApplicationError) Is(target error) bool {
	return target == ErrPartialApplication
}

func (e *PartialApplicationError) Unwrap() error {
	return e.Err
}
