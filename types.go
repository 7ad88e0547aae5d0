package panelsearch

import (
	"time"

	"github.com/cockroachdb/errors"
)

const (
	// DefaultMinSearchLength is the shortest search term that filters anything.
	// Shorter terms match every record.
	DefaultMinSearchLength = 2

	// DefaultDebounceDelay is how long the search term must stay unchanged
	// before it is applied.
	DefaultDebounceDelay = 300 * time.Millisecond
)

// Record is a single entity row as decoded from the admin REST API.
// The engine never mutates records.
type Record = map[string]interface{}

// Predicate reports whether a record passes a custom filter for the
// currently selected value.
type Predicate func(record Record, selected string) bool

// Well known filter keys shared by the built-in descriptors.
const (
	KeyCategory  = "selectedCategory"
	KeyStatus    = "selectedStatus"
	KeyEmbedding = "selectedEmbedding"
	KeyDiet      = "selectedDiet"
	KeyDateRange = "dateRange"
)

// ErrorCode represents specific error codes for search operations.
type ErrorCode int

const (
	// ErrCodeInvalidSnapshot is returned when a filter snapshot cannot be decoded.
	ErrCodeInvalidSnapshot ErrorCode = iota + 1000

	// ErrCodeInvalidDescriptor is returned when a filter descriptor fails validation.
	ErrCodeInvalidDescriptor

	// ErrCodeUnknownEntity is returned when no descriptor exists for an entity.
	ErrCodeUnknownEntity

	// ErrCodeNotFound is returned when a stored snapshot does not exist.
	ErrCodeNotFound

	// ErrCodeCanceled is returned when a search operation is canceled.
	ErrCodeCanceled

	// ErrCodeBackendUnavailable is returned when the search backend is unavailable.
	ErrCodeBackendUnavailable
)

// String returns the human-readable string representation of the error code.
func (e ErrorCode) String() string {
	switch e {
	case ErrCodeInvalidSnapshot:
		return "invalid snapshot"
	case ErrCodeInvalidDescriptor:
		return "invalid descriptor"
	case ErrCodeUnknownEntity:
		return "unknown entity"
	case ErrCodeNotFound:
		return "not found"
	case ErrCodeCanceled:
		return "operation canceled"
	case ErrCodeBackendUnavailable:
		return "backend unavailable"
	default:
		return "unknown error"
	}
}

func newErrorWithCode(code ErrorCode, msg string) error {
	err := errors.New(msg)
	return errors.WithSecondaryError(err, errors.Newf("code: %d", int(code)))
}

var (
	// ErrInvalidSnapshot is returned when a filter snapshot cannot be decoded.
	ErrInvalidSnapshot = newErrorWithCode(ErrCodeInvalidSnapshot, "panelsearch: invalid snapshot")

	// ErrInvalidDescriptor is returned when a filter descriptor fails validation.
	ErrInvalidDescriptor = newErrorWithCode(ErrCodeInvalidDescriptor, "panelsearch: invalid descriptor")

	// ErrUnknownEntity is returned when no descriptor exists for an entity.
	ErrUnknownEntity = newErrorWithCode(ErrCodeUnknownEntity, "panelsearch: unknown entity")

	// ErrNotFound is returned when a stored snapshot does not exist.
	ErrNotFound = newErrorWithCode(ErrCodeNotFound, "panelsearch: not found")

	// ErrCanceled is returned when a search operation is canceled.
	ErrCanceled = newErrorWithCode(ErrCodeCanceled, "panelsearch: operation canceled")

	// ErrBackendUnavailable is returned when the search backend is unavailable.
	ErrBackendUnavailable = newErrorWithCode(ErrCodeBackendUnavailable, "panelsearch: backend unavailable")
)
