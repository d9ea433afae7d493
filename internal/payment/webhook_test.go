package payment

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerifyWebhook(t *testing.T) {
	payload := []byte(`{"type":"checkout.session.completed","session_id":"cs_123"}`)
	sig := Sign(payload, "whsec_test")

	ev, err := VerifyWebhook(payload, sig, "whsec_test")
	require.NoError(t, err)
	assert.Equal(t, "checkout.session.completed", ev.Type)
	assert.Equal(t, "cs_123", ev.SessionID)
}

func TestVerifyWebhookRejectsTamperedPayload(t *testing.T) {
	payload := []byte(`{"type":"checkout.session.completed","session_id":"cs_123"}`)
	sig := Sign(payload, "whsec_test")

	tampered := []byte(`{"type":"checkout.session.completed","session_id":"cs_999"}`)
	_, err := VerifyWebhook(tampered, sig, "whsec_test")
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestVerifyWebhookRejectsWrongSecret(t *testing.T) {
	payload := []byte(`{"type":"checkout.session.completed","session_id":"cs_123"}`)
	sig := Sign(payload, "whsec_other")
	_, err := VerifyWebhook(payload, sig, "whsec_test")
	assert.ErrorIs(t, err, ErrInvalidSignature)
}
