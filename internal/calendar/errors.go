package calendar

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/api/googleapi"
)

// Sentinel errors returned by Client operations. Callers branch on these
// with errors.Is rather than inspecting Google API error codes.
var (
	// ErrInvalidRange indicates the caller supplied a date that could not
	// be parsed or lies outside a schedulable range.
	ErrInvalidRange = errors.New("invalid date range")

	// ErrUpstreamUnavailable indicates a transient Calendar API failure
	// (rate limiting, server errors, transport failures). Operations
	// failing with this error are safe to retry.
	ErrUpstreamUnavailable = errors.New("calendar upstream unavailable")

	// ErrUpstreamRejected indicates the Calendar API rejected the request
	// outright (authorization, malformed payload). Retrying will not help.
	ErrUpstreamRejected = errors.New("calendar upstream rejected request")
)

// classify maps a raw Calendar API error onto the package taxonomy.
// Rate limits, server-side errors and plain transport failures are
// transient; any other HTTP-level rejection is permanent.
func classify(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.Code == 429 || apiErr.Code == 408 || apiErr.Code >= 500:
			return fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
		case apiErr.Code >= 400:
			return fmt.Errorf("%w: %v", ErrUpstreamRejected, err)
		}
	}

	// Non-HTTP failures (DNS, connection reset, TLS) never reached the
	// API, so treat them as transient.
	return fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
}

// retryable reports whether an already-classified error is worth retrying.
func retryable(err error) bool {
	return errors.Is(err, ErrUpstreamUnavailable)
}
