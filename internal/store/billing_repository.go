/**
 * @description
 * This file implements the data access layer for billing-customer linkage and
 * subscriber lookups. It contains all the SQL for the billing side of the
 * service.
 */
package store

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Slumerican4Life/linguista-genesis-sub001/internal/domain"
)

// BillingRepository handles database operations for billing customers and
// subscribers.
type BillingRepository struct {
	db *pgxpool.Pool
}

// NewBillingRepository creates a new billing repository.
func NewBillingRepository(db *pgxpool.Pool) *BillingRepository {
	return &BillingRepository{db: db}
}

// GetCustomerID retrieves the stored provider customer id for a user.
// Returns ErrCustomerNotLinked when the user has no linkage row yet.
func (r *BillingRepository) GetCustomerID(ctx context.Context, userID string) (string, error) {
	var customerID string
	query := `
        SELECT customer_id
        FROM billing_customers
        WHERE user_id = $1
    `
	err := r.db.QueryRow(ctx, query, userID).Scan(&customerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrCustomerNotLinked
		}
		return "", fmt.Errorf("get customer id: %w", err)
	}
	return customerID, nil
}

// LinkCustomer persists the provider customer id for a user and returns the
// authoritative stored id. The user_id primary key makes concurrent first
// checkouts safe: the insert is a no-op for the loser of the race, which then
// re-reads and adopts the winner's id instead of erroring.
func (r *BillingRepository) LinkCustomer(ctx context.Context, userID, customerID, email string) (string, error) {
	query := `
        INSERT INTO billing_customers (user_id, customer_id, email)
        VALUES ($1, $2, $3)
        ON CONFLICT (user_id) DO NOTHING
        RETURNING customer_id
    `
	var stored string
	err := r.db.QueryRow(ctx, query, userID, customerID, email).Scan(&stored)
	if err == nil {
		return stored, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return "", fmt.Errorf("link customer: %w", err)
	}

	// Conflict path: another request linked this user first. Adopt its id.
	stored, err = r.GetCustomerID(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("re-read customer id after conflict: %w", err)
	}
	log.Printf("Customer link conflict for user %s: keeping stored id %s", userID, stored)
	return stored, nil
}

// GetSubscriber retrieves the subscriber row for a user. The row is written
// by the billing webhook service; this service never mutates it.
func (r *BillingRepository) GetSubscriber(ctx context.Context, userID string) (*domain.Subscriber, error) {
	var sub domain.Subscriber
	query := `
        SELECT user_id, customer_id, COALESCE(status, ''), current_period_end
        FROM subscribers
        WHERE user_id = $1
    `
	err := r.db.QueryRow(ctx, query, userID).Scan(
		&sub.UserID,
		&sub.CustomerID,
		&sub.Status,
		&sub.CurrentPeriodEnd,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSubscriberNotFound
		}
		return nil, fmt.Errorf("get subscriber: %w", err)
	}
	return &sub, nil
}
