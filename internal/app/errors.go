package app

import "errors"

// User-facing error taxonomy. Handlers map these onto HTTP statuses; the
// message text is what the client sees.
var (
	// ErrInvalidArgument covers missing or malformed request fields.
	ErrInvalidArgument = errors.New("missing or invalid request field")

	// ErrNotSubscribed is returned when a billing-portal session is requested
	// without an active subscription. Deliberately actionable.
	ErrNotSubscribed = errors.New("no active subscription - subscribe first")

	// ErrInvalidOrExpiredCode collapses wrong, expired, and already-used codes
	// into one message so a caller cannot probe which case applies.
	ErrInvalidOrExpiredCode = errors.New("invalid or expired code")

	// ErrUnsupportedChannel is returned for verification channels this
	// service does not implement.
	ErrUnsupportedChannel = errors.New("unsupported verification channel")

	// ErrTooManyRequests is returned when code sends are throttled.
	ErrTooManyRequests = errors.New("too many verification requests, try again later")
)
