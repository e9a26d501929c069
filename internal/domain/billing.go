/**
 * @description
 * This file defines the core domain models for the billing side of the
 * entitlement service: the link between a Linguista user and their
 * billing-provider customer record, and the subscriber row maintained by
 * the webhook collaborator.
 */
package domain

import "time"

// BillingCustomer links a user to their provider-side customer record.
// At most one row exists per user; once written, the customer id is reused
// for every subsequent billing operation.
type BillingCustomer struct {
	UserID     string    `json:"user_id"`
	CustomerID string    `json:"customer_id"`
	Email      string    `json:"email"`
	CreatedAt  time.Time `json:"created_at"`
}

// Subscriber is the entitlement row written by the billing webhook service.
// This service only reads it; a missing row simply means "not subscribed".
type Subscriber struct {
	UserID           string     `json:"user_id"`
	CustomerID       *string    `json:"customer_id"`
	Status           string     `json:"status"`
	CurrentPeriodEnd *time.Time `json:"current_period_end,omitempty"`
}

// SubscriptionStatus is the DTO returned to the client for status checks.
type SubscriptionStatus struct {
	Subscribed       bool       `json:"subscribed"`
	Status           string     `json:"status,omitempty"`
	CurrentPeriodEnd *time.Time `json:"current_period_end,omitempty"`
}
