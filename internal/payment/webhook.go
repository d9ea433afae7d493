package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrInvalidSignature is returned when a webhook payload fails HMAC
// verification. Handlers translate it into 401 so the provider retries
// with a correct signature or not at all.
var ErrInvalidSignature = errors.New("invalid webhook signature")

// Event is the decoded webhook payload. Only events the core acts on
// carry a session id; everything else is acknowledged and dropped.
type Event struct {
	Type      string `json:"type"`
	SessionID string `json:"session_id"`
}

// Sign computes the hex HMAC-SHA256 of the payload with the shared
// webhook secret. Exposed so tests and local tooling can produce valid
// signatures.
func Sign(payload []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifyWebhook checks the payload signature and decodes the event.
// Verification happens before any payload field is trusted; a bad
// signature fails closed.
func VerifyWebhook(payload []byte, signature, secret string) (*Event, error) {
	expected := Sign(payload, secret)
	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return nil, ErrInvalidSignature
	}
	var ev Event
	if err := json.Unmarshal(payload, &ev); err != nil {
		return nil, fmt.Errorf("decode webhook event: %w", err)
	}
	return &ev, nil
}
