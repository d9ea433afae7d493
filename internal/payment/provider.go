// Package payment wraps the external payment provider behind a small
// interface: session creation at checkout, session retrieval and
// refunds at confirmation and cancellation, and webhook signature
// verification at the HTTP boundary. The provider holds checkout
// session state; this system only stores the opaque session id.
package payment

import "context"

// Session statuses reported by the provider.
const (
	StatusPaid    = "paid"
	StatusUnpaid  = "unpaid"
	StatusExpired = "expired"
)

// Session is the provider-held checkout session, referenced by its
// opaque id. Metadata carries enough to reconstruct the transaction on
// confirmation (customer id, order number, idempotency key).
type Session struct {
	ID            string            `json:"id"`
	RedirectURL   string            `json:"redirect_url"`
	PaymentStatus string            `json:"payment_status"`
	AmountCents   int64             `json:"amount_cents"`
	Currency      string            `json:"currency"`
	PaymentRef    string            `json:"payment_ref,omitempty"`
	Metadata      map[string]string `json:"metadata,omitempty"`
}

// Provider is the payment collaborator consumed by the checkout core.
// All calls are blocking I/O with bounded timeouts supplied by the
// implementation; transient failures surface as
// fault.ErrUpstreamUnavailable so callers can distinguish retryable
// conditions.
type Provider interface {
	// CreateSession opens a payment session for the exact quoted
	// amount. The customer completes payment out of band via the
	// session's redirect URL.
	CreateSession(ctx context.Context, amountCents int64, currency string, metadata map[string]string) (*Session, error)
	// RetrieveSession re-fetches the session so confirmation can check
	// the real payment status and captured amount rather than trusting
	// the callback payload.
	RetrieveSession(ctx context.Context, sessionID string) (*Session, error)
	// Refund reverses a captured payment and returns the provider's
	// refund status.
	Refund(ctx context.Context, paymentRef string) (string, error)
}
