/**
 * @description
 * This package provides a client for the Stripe REST API. It encapsulates the
 * logic for making authenticated form-encoded requests, decoding responses,
 * and surfacing provider failures as typed errors.
 *
 * @notes
 * - Only the three calls this service needs are implemented: customer
 *   creation, checkout sessions, and billing-portal sessions.
 * - The client carries a default HTTP client with a timeout so provider calls
 *   cannot hang a request handler indefinitely.
 * - Provider failures come back as *APIError holding Stripe's message but not
 *   its full payload; handlers surface only the message.
 */
package stripeclient

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultAPIURL is the public Stripe API base. Overridable for tests and
// mock servers.
const DefaultAPIURL = "https://api.stripe.com"

// Client is a client for the Stripe API.
type Client struct {
	BaseURL    string
	APIKey     string
	httpClient *http.Client
}

// APIError represents a non-2xx response from Stripe.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("stripe: %s (status %d)", e.Message, e.StatusCode)
}

// NewClient creates a new Stripe API client. An empty baseURL selects the
// public API.
func NewClient(baseURL, apiKey string) *Client {
	if baseURL == "" {
		baseURL = DefaultAPIURL
	}
	return &Client{
		BaseURL: baseURL,
		APIKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// CheckoutSessionParams holds the inputs for a subscription checkout session.
type CheckoutSessionParams struct {
	CustomerID string
	PriceID    string
	UserID     string
	SuccessURL string
	CancelURL  string
}

// CreateCustomer creates a provider customer carrying the user id as
// reconciliation metadata and returns the new customer id.
func (c *Client) CreateCustomer(ctx context.Context, email, userID string) (string, error) {
	form := url.Values{}
	form.Set("email", email)
	form.Set("metadata[userId]", userID)

	var resp struct {
		ID string `json:"id"`
	}
	if err := c.post(ctx, "/v1/customers", form, &resp); err != nil {
		return "", err
	}
	return resp.ID, nil
}

// CreateCheckoutSession creates a subscription-mode checkout session and
// returns the hosted redirect URL.
func (c *Client) CreateCheckoutSession(ctx context.Context, params CheckoutSessionParams) (string, error) {
	form := url.Values{}
	form.Set("customer", params.CustomerID)
	form.Set("mode", "subscription")
	form.Set("line_items[0][price]", params.PriceID)
	form.Set("line_items[0][quantity]", "1")
	form.Set("success_url", params.SuccessURL)
	form.Set("cancel_url", params.CancelURL)
	form.Set("metadata[userId]", params.UserID)

	var resp struct {
		URL string `json:"url"`
	}
	if err := c.post(ctx, "/v1/checkout/sessions", form, &resp); err != nil {
		return "", err
	}
	return resp.URL, nil
}

// CreatePortalSession creates a billing-portal session for an existing
// customer and returns the hosted redirect URL.
func (c *Client) CreatePortalSession(ctx context.Context, customerID, returnURL string) (string, error) {
	form := url.Values{}
	form.Set("customer", customerID)
	form.Set("return_url", returnURL)

	var resp struct {
		URL string `json:"url"`
	}
	if err := c.post(ctx, "/v1/billing_portal/sessions", form, &resp); err != nil {
		return "", err
	}
	return resp.URL, nil
}

// post sends a form-encoded POST and decodes the JSON response into out.
func (c *Client) post(ctx context.Context, path string, form url.Values, out interface{}) error {
	endpoint := fmt.Sprintf("%s%s", c.BaseURL, path)
	httpReq, err := http.NewRequestWithContext(ctx, "POST", endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("failed to create stripe request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	httpReq.Header.Set("Authorization", "Bearer "+c.APIKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("failed to send request to stripe: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return c.handleErrorResponse(resp)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode stripe response: %w", err)
	}
	return nil
}

// handleErrorResponse turns a non-2xx Stripe response into an *APIError.
func (c *Client) handleErrorResponse(resp *http.Response) error {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &APIError{StatusCode: resp.StatusCode, Message: "unreadable error response"}
	}

	var stripeErr struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &stripeErr); err == nil && stripeErr.Error.Message != "" {
		return &APIError{StatusCode: resp.StatusCode, Message: stripeErr.Error.Message}
	}
	return &APIError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(body))}
}
