package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Slumerican4Life/linguista-genesis-sub001/internal/domain"
	"github.com/Slumerican4Life/linguista-genesis-sub001/internal/store"
	"github.com/Slumerican4Life/linguista-genesis-sub001/pkg/stripeclient"
)

// fakeBillingRepo is an in-memory BillingRepository. LinkCustomer emulates
// the ON CONFLICT DO NOTHING insert: first writer wins, later writers adopt
// the stored id.
type fakeBillingRepo struct {
	mu          sync.Mutex
	customers   map[string]string
	subscribers map[string]*domain.Subscriber
	linkErr     error
	getErr      error
}

func newFakeBillingRepo() *fakeBillingRepo {
	return &fakeBillingRepo{
		customers:   make(map[string]string),
		subscribers: make(map[string]*domain.Subscriber),
	}
}

func (r *fakeBillingRepo) GetCustomerID(ctx context.Context, userID string) (string, error) {
	if r.getErr != nil {
		return "", r.getErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	id, ok := r.customers[userID]
	if !ok {
		return "", store.ErrCustomerNotLinked
	}
	return id, nil
}

func (r *fakeBillingRepo) LinkCustomer(ctx context.Context, userID, customerID, email string) (string, error) {
	if r.linkErr != nil {
		return "", r.linkErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.customers[userID]; ok {
		return existing, nil
	}
	r.customers[userID] = customerID
	return customerID, nil
}

func (r *fakeBillingRepo) GetSubscriber(ctx context.Context, userID string) (*domain.Subscriber, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	sub, ok := r.subscribers[userID]
	if !ok {
		return nil, store.ErrSubscriberNotFound
	}
	return sub, nil
}

// fakeProvider is an in-memory BillingProvider that records every call.
type fakeProvider struct {
	mu               sync.Mutex
	customersCreated int
	sessions         []stripeclient.CheckoutSessionParams
	portalCustomers  []string
	customerErr      error
	sessionErr       error
	portalErr        error
}

func (p *fakeProvider) CreateCustomer(ctx context.Context, email, userID string) (string, error) {
	if p.customerErr != nil {
		return "", p.customerErr
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.customersCreated++
	return fmt.Sprintf("cus_%03d", p.customersCreated), nil
}

func (p *fakeProvider) CreateCheckoutSession(ctx context.Context, params stripeclient.CheckoutSessionParams) (string, error) {
	if p.sessionErr != nil {
		return "", p.sessionErr
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sessions = append(p.sessions, params)
	return fmt.Sprintf("https://provider.example/checkout/%s/%s", params.CustomerID, params.PriceID), nil
}

func (p *fakeProvider) CreatePortalSession(ctx context.Context, customerID, returnURL string) (string, error) {
	if p.portalErr != nil {
		return "", p.portalErr
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.portalCustomers = append(p.portalCustomers, customerID)
	return "https://provider.example/portal/" + customerID, nil
}

// fakeVerificationRepo is an in-memory VerificationRepository implementing
// the same redemption predicate as the SQL: newest matching unverified,
// unexpired row, checked and stamped under one lock.
type fakeVerificationRepo struct {
	mu       sync.Mutex
	attempts []*domain.VerificationAttempt
}

func (r *fakeVerificationRepo) CreateAttempt(ctx context.Context, attempt *domain.VerificationAttempt) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *attempt
	r.attempts = append(r.attempts, &copied)
	return nil
}

func (r *fakeVerificationRepo) CountRecentAttempts(ctx context.Context, userID string, channel domain.VerificationChannel, contact string, since time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	count := 0
	for _, a := range r.attempts {
		if a.UserID == userID && a.Channel == channel && a.Contact == contact && !a.CreatedAt.Before(since) {
			count++
		}
	}
	return count, nil
}

func (r *fakeVerificationRepo) RedeemAttempt(ctx context.Context, userID string, channel domain.VerificationChannel, contact, code string) (*domain.VerificationAttempt, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	var newest *domain.VerificationAttempt
	for _, a := range r.attempts {
		if a.UserID != userID || a.Channel != channel || a.Contact != contact || a.Code != code {
			continue
		}
		if a.VerifiedAt != nil || !a.ExpiresAt.After(now) {
			continue
		}
		if newest == nil || a.CreatedAt.After(newest.CreatedAt) {
			newest = a
		}
	}
	if newest == nil {
		return nil, store.ErrNoRedeemableCode
	}
	verified := now
	newest.VerifiedAt = &verified
	copied := *newest
	return &copied, nil
}

// fakePublisher records published events.
type fakePublisher struct {
	mu         sync.Mutex
	published  []publishedEvent
	publishErr error
}

type publishedEvent struct {
	exchange   string
	routingKey string
	body       interface{}
}

func (p *fakePublisher) Publish(ctx context.Context, exchange, routingKey string, body interface{}) error {
	if p.publishErr != nil {
		return p.publishErr
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.published = append(p.published, publishedEvent{exchange: exchange, routingKey: routingKey, body: body})
	return nil
}

func (p *fakePublisher) Close() {}
