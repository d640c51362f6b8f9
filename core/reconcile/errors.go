package reconcile

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrAuthentication means credentials could not be established with a source.
	ErrAuthentication = errors.New("authentication failed")
	// ErrLookup means the organization was not found in a source.
	ErrLookup = errors.New("organization not found")
	// ErrTransport means a network or timeout failure happened mid-fetch.
	ErrTransport = errors.New("transport failure")
	// ErrPartialResult means pagination terminated before the last page.
	ErrPartialResult = errors.New("partial result")
	// ErrIndeterminate marks a comparison that depends on a failed source.
	ErrIndeterminate = errors.New("comparison indeterminate")
	// ErrNoAdapter means a comparison references a source without an adapter.
	ErrNoAdapter = errors.New("no adapter configured for source")
	// ErrEmptyOrganization means the organization filter is blank.
	ErrEmptyOrganization = errors.New("organization is required")
)

// SourceError names the source that failed and wraps the cause.
type SourceError struct {
	Source SourceKind
	Err    error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Source.DisplayName(), e.Err)
}

func (e *SourceError) Unwrap() error {
	return e.Err
}

// Error kinds reported by Classify.
const (
	KindAuthentication = "authentication"
	KindLookup         = "lookup"
	KindTransport      = "transport"
	KindPartialResult  = "partial_result"
	KindUnknown        = "unknown"
)

// Classify maps an adapter error onto the error taxonomy.
// A pagination failure is a partial result whatever its cause.
// Context deadline and cancellation count as transport failures.
func Classify(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrPartialResult):
		return KindPartialResult
	case errors.Is(err, ErrAuthentication):
		return KindAuthentication
	case errors.Is(err, ErrLookup):
		return KindLookup
	case errors.Is(err, ErrTransport),
		errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, context.Canceled):
		return KindTransport
	default:
		return KindUnknown
	}
}
