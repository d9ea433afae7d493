package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/keyvanfa/tableside/internal/fault"
)

// Client is the HTTP implementation of Provider. It speaks the
// provider's JSON API with bearer authentication and a bounded request
// timeout, and maps transport failures to fault.ErrUpstreamUnavailable
// so the checkout core can treat them as retryable.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

// NewClient returns a Client for the given provider base URL and API
// key. A zero timeout defaults to 10 seconds.
func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    &http.Client{Timeout: timeout},
	}
}

// CreateSession implements Provider.
func (c *Client) CreateSession(ctx context.Context, amountCents int64, currency string, metadata map[string]string) (*Session, error) {
	payload := map[string]interface{}{
		"amount_cents": amountCents,
		"currency":     currency,
		"metadata":     metadata,
	}
	var sess Session
	if err := c.do(ctx, http.MethodPost, "/v1/checkout/sessions", payload, &sess); err != nil {
		return nil, err
	}
	return &sess, nil
}

// RetrieveSession implements Provider.
func (c *Client) RetrieveSession(ctx context.Context, sessionID string) (*Session, error) {
	var sess Session
	if err := c.do(ctx, http.MethodGet, "/v1/checkout/sessions/"+sessionID, nil, &sess); err != nil {
		return nil, err
	}
	return &sess, nil
}

// Refund implements Provider.
func (c *Client) Refund(ctx context.Context, paymentRef string) (string, error) {
	payload := map[string]interface{}{"payment_ref": paymentRef}
	var out struct {
		RefundStatus string `json:"refund_status"`
	}
	if err := c.do(ctx, http.MethodPost, "/v1/refunds", payload, &out); err != nil {
		return "", err
	}
	return out.RefundStatus, nil
}

// do performs one JSON request against the provider API and decodes
// the response into out. 404 maps to fault.ErrUnknownSession, 5xx and
// transport errors to fault.ErrUpstreamUnavailable.
func (c *Client) do(ctx context.Context, method, path string, payload, out interface{}) error {
	var body *bytes.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = bytes.NewReader(raw)
	} else {
		body = bytes.NewReader(nil)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", fault.ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return fault.ErrUnknownSession
	case resp.StatusCode >= 500:
		return fmt.Errorf("%w: provider returned %d", fault.ErrUpstreamUnavailable, resp.StatusCode)
	case resp.StatusCode >= 400:
		return fmt.Errorf("%w: provider returned %d", fault.ErrValidation, resp.StatusCode)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode response: %v", fault.ErrUpstreamUnavailable, err)
	}
	return nil
}
