/**
 * @description
 * Data access layer for verification attempts. Every issued code is one row;
 * redemption is a single conditional UPDATE so that two concurrent attempts
 * on the same row cannot both win.
 */
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Slumerican4Life/linguista-genesis-sub001/internal/domain"
)

// VerificationRepository handles database operations for verification attempts.
type VerificationRepository struct {
	db *pgxpool.Pool
}

// NewVerificationRepository creates a new verification repository.
func NewVerificationRepository(db *pgxpool.Pool) *VerificationRepository {
	return &VerificationRepository{db: db}
}

// CreateAttempt inserts a freshly issued code row.
func (r *VerificationRepository) CreateAttempt(ctx context.Context, attempt *domain.VerificationAttempt) error {
	query := `
        INSERT INTO verification_attempts (id, user_id, channel, contact, code, created_at, expires_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
    `
	_, err := r.db.Exec(ctx, query,
		attempt.ID,
		attempt.UserID,
		string(attempt.Channel),
		attempt.Contact,
		attempt.Code,
		attempt.CreatedAt,
		attempt.ExpiresAt,
	)
	if err != nil {
		return fmt.Errorf("create verification attempt: %w", err)
	}
	return nil
}

// CountRecentAttempts counts issued codes for a (user, channel, contact)
// tuple since the given time. Used for send throttling.
func (r *VerificationRepository) CountRecentAttempts(ctx context.Context, userID string, channel domain.VerificationChannel, contact string, since time.Time) (int, error) {
	var count int
	query := `
        SELECT COUNT(*)
        FROM verification_attempts
        WHERE user_id = $1 AND channel = $2 AND contact = $3 AND created_at >= $4
    `
	err := r.db.QueryRow(ctx, query, userID, string(channel), contact, since).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count recent attempts: %w", err)
	}
	return count, nil
}

// RedeemAttempt stamps verified_at on the newest unverified, unexpired row
// matching the exact (user, channel, contact, code) tuple. The outer
// verified_at IS NULL guard re-checks the row at write time, so of two
// concurrent redemptions exactly one observes an affected row; the loser gets
// ErrNoRedeemableCode, indistinguishable from a wrong or expired code.
func (r *VerificationRepository) RedeemAttempt(ctx context.Context, userID string, channel domain.VerificationChannel, contact, code string) (*domain.VerificationAttempt, error) {
	query := `
        UPDATE verification_attempts
        SET verified_at = NOW()
        WHERE id = (
            SELECT id
            FROM verification_attempts
            WHERE user_id = $1 AND channel = $2 AND contact = $3 AND code = $4
              AND verified_at IS NULL
              AND expires_at > NOW()
            ORDER BY created_at DESC
            LIMIT 1
        )
        AND verified_at IS NULL
        RETURNING id, user_id, channel, contact, code, created_at, expires_at, verified_at
    `
	var attempt domain.VerificationAttempt
	err := r.db.QueryRow(ctx, query, userID, string(channel), contact, code).Scan(
		&attempt.ID,
		&attempt.UserID,
		&attempt.Channel,
		&attempt.Contact,
		&attempt.Code,
		&attempt.CreatedAt,
		&attempt.ExpiresAt,
		&attempt.VerifiedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNoRedeemableCode
		}
		return nil, fmt.Errorf("redeem verification attempt: %w", err)
	}
	return &attempt, nil
}
