/**
 * @description
 * This file contains the core business logic for the billing side of the
 * entitlement service: linking a user to a provider customer exactly once and
 * brokering checkout and billing-portal sessions.
 */
package app

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/Slumerican4Life/linguista-genesis-sub001/internal/domain"
	"github.com/Slumerican4Life/linguista-genesis-sub001/internal/store"
	"github.com/Slumerican4Life/linguista-genesis-sub001/pkg/stripeclient"
)

// BillingRepository defines the store operations the billing service needs.
type BillingRepository interface {
	GetCustomerID(ctx context.Context, userID string) (string, error)
	LinkCustomer(ctx context.Context, userID, customerID, email string) (string, error)
	GetSubscriber(ctx context.Context, userID string) (*domain.Subscriber, error)
}

// BillingProvider defines the provider calls the billing service needs.
// *stripeclient.Client satisfies it.
type BillingProvider interface {
	CreateCustomer(ctx context.Context, email, userID string) (string, error)
	CreateCheckoutSession(ctx context.Context, params stripeclient.CheckoutSessionParams) (string, error)
	CreatePortalSession(ctx context.Context, customerID, returnURL string) (string, error)
}

// BillingService provides checkout and portal-session brokering.
type BillingService struct {
	repo     BillingRepository
	provider BillingProvider
}

// NewBillingService creates a new billing service.
func NewBillingService(repo BillingRepository, provider BillingProvider) BillingService {
	return BillingService{repo: repo, provider: provider}
}

// StartCheckout returns a provider-hosted checkout URL for the given price.
// The user's customer linkage is created on first use and reused afterwards;
// every call creates a fresh checkout session (sessions are not idempotent,
// unused ones expire on the provider side).
func (s BillingService) StartCheckout(ctx context.Context, userID, email, priceID, origin string) (string, error) {
	if priceID == "" {
		return "", fmt.Errorf("%w: priceId", ErrInvalidArgument)
	}

	customerID, err := s.ensureCustomer(ctx, userID, email)
	if err != nil {
		return "", err
	}

	url, err := s.provider.CreateCheckoutSession(ctx, stripeclient.CheckoutSessionParams{
		CustomerID: customerID,
		PriceID:    priceID,
		UserID:     userID,
		SuccessURL: origin + "/?checkout=success",
		CancelURL:  origin + "/?checkout=cancelled",
	})
	if err != nil {
		return "", fmt.Errorf("create checkout session: %w", err)
	}
	return url, nil
}

// ensureCustomer returns the user's provider customer id, creating and
// linking one on first use. The store decides the authoritative id under
// concurrency: if two requests race, both end up with the id that won the
// insert. A persist failure is logged and swallowed so checkout can proceed
// with the in-memory id; the next call self-heals the linkage.
func (s BillingService) ensureCustomer(ctx context.Context, userID, email string) (string, error) {
	customerID, err := s.repo.GetCustomerID(ctx, userID)
	if err == nil {
		return customerID, nil
	}
	if !errors.Is(err, store.ErrCustomerNotLinked) {
		return "", fmt.Errorf("look up customer linkage: %w", err)
	}

	created, err := s.provider.CreateCustomer(ctx, email, userID)
	if err != nil {
		return "", fmt.Errorf("create provider customer: %w", err)
	}

	stored, err := s.repo.LinkCustomer(ctx, userID, created, email)
	if err != nil {
		log.Printf("WARN: failed to persist customer id %s for user %s: %v", created, userID, err)
		return created, nil
	}
	return stored, nil
}

// OpenManagementPortal returns a provider-hosted billing-portal URL for an
// active subscriber. Users without a subscription get ErrNotSubscribed and no
// provider call is made.
func (s BillingService) OpenManagementPortal(ctx context.Context, userID, origin string) (string, error) {
	sub, err := s.repo.GetSubscriber(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrSubscriberNotFound) {
			return "", ErrNotSubscribed
		}
		return "", fmt.Errorf("look up subscriber: %w", err)
	}
	if sub.CustomerID == nil || *sub.CustomerID == "" {
		return "", ErrNotSubscribed
	}

	url, err := s.provider.CreatePortalSession(ctx, *sub.CustomerID, origin)
	if err != nil {
		return "", fmt.Errorf("create portal session: %w", err)
	}
	return url, nil
}

// SubscriptionStatus reports whether the user currently has an active billing
// linkage. A missing subscriber row is a normal state, not an error.
func (s BillingService) SubscriptionStatus(ctx context.Context, userID string) (*domain.SubscriptionStatus, error) {
	sub, err := s.repo.GetSubscriber(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrSubscriberNotFound) {
			return &domain.SubscriptionStatus{Subscribed: false}, nil
		}
		return nil, fmt.Errorf("look up subscriber: %w", err)
	}
	if sub.CustomerID == nil || *sub.CustomerID == "" {
		return &domain.SubscriptionStatus{Subscribed: false}, nil
	}

	return &domain.SubscriptionStatus{
		Subscribed:       true,
		Status:           sub.Status,
		CurrentPeriodEnd: sub.CurrentPeriodEnd,
	}, nil
}
