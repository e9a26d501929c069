package store

import "errors"

// Sentinel errors returned by the repositories. The service layer maps these
// onto the user-facing error taxonomy; nothing below leaks to the client as-is.
var (
	// ErrCustomerNotLinked means the user has no billing customer row yet.
	// This is the normal state before the first checkout.
	ErrCustomerNotLinked = errors.New("billing customer not linked")

	// ErrSubscriberNotFound means no subscriber row exists for the user.
	ErrSubscriberNotFound = errors.New("subscriber not found")

	// ErrNoRedeemableCode means no row matched the redemption predicate. The
	// store cannot tell a wrong code from an expired or already-used one; the
	// conditional update collapses all three on purpose.
	ErrNoRedeemableCode = errors.New("no redeemable verification code")
)
