/**
 * @description
 * Domain models for contact-channel verification. Every issued code is its
 * own row; rows are never deleted by this service, they simply expire or
 * get redeemed.
 */
package domain

import "time"

// VerificationChannel identifies the contact channel a code was sent over.
type VerificationChannel string

const (
	// ChannelPhone is currently the only supported verification channel.
	ChannelPhone VerificationChannel = "phone"
)

// SupportedChannel reports whether a channel has a redemption path wired up.
// Adding a channel means extending this set, not touching the redemption logic.
func SupportedChannel(c VerificationChannel) bool {
	switch c {
	case ChannelPhone:
		return true
	default:
		return false
	}
}

// VerificationAttempt is one issued one-time code. The row is redeemable
// while VerifiedAt is nil and ExpiresAt is in the future; redemption is a
// one-way transition that stamps VerifiedAt exactly once.
type VerificationAttempt struct {
	ID         string              `json:"id"`
	UserID     string              `json:"user_id"`
	Channel    VerificationChannel `json:"channel"`
	Contact    string              `json:"contact"`
	Code       string              `json:"code"`
	CreatedAt  time.Time           `json:"created_at"`
	ExpiresAt  time.Time           `json:"expires_at"`
	VerifiedAt *time.Time          `json:"verified_at,omitempty"`
}

// VerificationResult is returned to the client after a successful redemption.
// The code and contact value are deliberately not echoed back.
type VerificationResult struct {
	Channel VerificationChannel `json:"channel"`
	Message string              `json:"message"`
}
