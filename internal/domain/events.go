package domain

// VerificationCodeRequestedEvent is published to the verification_events
// exchange when a new code is issued. The SMS sender service consumes it and
// delivers the code out of band; the code never travels back over HTTP.
type VerificationCodeRequestedEvent struct {
	AttemptID string `json:"attempt_id"`
	UserID    string `json:"user_id"`
	Channel   string `json:"channel"`
	Contact   string `json:"contact"`
	Code      string `json:"code"`
	ExpiresAt string `json:"expires_at"`
}
