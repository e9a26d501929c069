/**
 * @description
 * Business logic for contact-channel verification: issuing one-time codes and
 * redeeming them. Delivery is not done here - issued codes are handed to the
 * SMS sender service over RabbitMQ.
 */
package app

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log"
	"math/big"
	"time"

	"github.com/google/uuid"

	"github.com/Slumerican4Life/linguista-genesis-sub001/internal/domain"
	"github.com/Slumerican4Life/linguista-genesis-sub001/internal/store"
	"github.com/Slumerican4Life/linguista-genesis-sub001/pkg/rabbitmq"
)

const (
	verificationExchange    = "verification_events"
	codeRequestedRoutingKey = "verification.code.requested"
)

// VerificationRepository defines the store operations the verification
// service needs.
type VerificationRepository interface {
	CreateAttempt(ctx context.Context, attempt *domain.VerificationAttempt) error
	CountRecentAttempts(ctx context.Context, userID string, channel domain.VerificationChannel, contact string, since time.Time) (int, error)
	RedeemAttempt(ctx context.Context, userID string, channel domain.VerificationChannel, contact, code string) (*domain.VerificationAttempt, error)
}

// VerificationService issues and redeems one-time verification codes.
type VerificationService struct {
	repo       VerificationRepository
	producer   rabbitmq.Publisher
	codeTTL    time.Duration
	maxPerHour int
}

// NewVerificationService creates a new verification service.
func NewVerificationService(repo VerificationRepository, producer rabbitmq.Publisher, codeTTL time.Duration, maxPerHour int) VerificationService {
	return VerificationService{repo: repo, producer: producer, codeTTL: codeTTL, maxPerHour: maxPerHour}
}

// Redeem marks the newest matching unverified, unexpired code as verified.
// Wrong, expired, and already-used codes are all reported as
// ErrInvalidOrExpiredCode; the distinction never leaves the store layer.
func (s VerificationService) Redeem(ctx context.Context, userID string, channel domain.VerificationChannel, contact, code string) (*domain.VerificationResult, error) {
	if !domain.SupportedChannel(channel) {
		return nil, ErrUnsupportedChannel
	}
	if contact == "" || code == "" {
		return nil, fmt.Errorf("%w: contact and code are required", ErrInvalidArgument)
	}

	_, err := s.repo.RedeemAttempt(ctx, userID, channel, contact, code)
	if err != nil {
		if errors.Is(err, store.ErrNoRedeemableCode) {
			return nil, ErrInvalidOrExpiredCode
		}
		return nil, fmt.Errorf("redeem code: %w", err)
	}

	return &domain.VerificationResult{
		Channel: channel,
		Message: "Phone number verified",
	}, nil
}

// RequestCode issues a new one-time code for the given contact and publishes
// it for out-of-band delivery. The code never appears in the HTTP response.
// Sends are throttled per (user, channel, contact) tuple.
func (s VerificationService) RequestCode(ctx context.Context, userID string, channel domain.VerificationChannel, contact string) (*domain.VerificationResult, error) {
	if !domain.SupportedChannel(channel) {
		return nil, ErrUnsupportedChannel
	}
	if contact == "" {
		return nil, fmt.Errorf("%w: contact is required", ErrInvalidArgument)
	}

	sent, err := s.repo.CountRecentAttempts(ctx, userID, channel, contact, time.Now().Add(-time.Hour))
	if err != nil {
		return nil, fmt.Errorf("count recent sends: %w", err)
	}
	if sent >= s.maxPerHour {
		return nil, ErrTooManyRequests
	}

	code, err := generateCode()
	if err != nil {
		return nil, fmt.Errorf("generate code: %w", err)
	}

	now := time.Now()
	attempt := &domain.VerificationAttempt{
		ID:        uuid.NewString(),
		UserID:    userID,
		Channel:   channel,
		Contact:   contact,
		Code:      code,
		CreatedAt: now,
		ExpiresAt: now.Add(s.codeTTL),
	}
	if err := s.repo.CreateAttempt(ctx, attempt); err != nil {
		return nil, fmt.Errorf("store attempt: %w", err)
	}

	event := domain.VerificationCodeRequestedEvent{
		AttemptID: attempt.ID,
		UserID:    userID,
		Channel:   string(channel),
		Contact:   contact,
		Code:      code,
		ExpiresAt: attempt.ExpiresAt.UTC().Format(time.RFC3339),
	}
	if err := s.producer.Publish(ctx, verificationExchange, codeRequestedRoutingKey, event); err != nil {
		// The attempt row exists but delivery won't happen. The user can
		// re-request once the throttle window allows it.
		log.Printf("CRITICAL: failed to publish code-requested event for attempt %s: %v", attempt.ID, err)
	}

	return &domain.VerificationResult{
		Channel: channel,
		Message: "Verification code sent",
	}, nil
}

// generateCode produces a 6-digit numeric one-time code.
func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
