package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/keyvanfa/tableside/internal/checkout"
	"github.com/keyvanfa/tableside/internal/fault"
	"github.com/keyvanfa/tableside/internal/payment"
)

// eventSessionCompleted is the only webhook event type the core acts
// on; everything else is acknowledged so the provider stops redelivering
// it.
const eventSessionCompleted = "checkout.session.completed"

// WebhookHandler receives the payment provider's asynchronous callbacks.
// The signature is verified before any payload field is trusted, and
// confirmation itself is idempotent, so redeliveries are always safe to
// accept.
type WebhookHandler struct {
	Confirmer *checkout.Confirmer
	Secret    string
}

// NewWebhookHandler constructs a WebhookHandler.
func NewWebhookHandler(confirmer *checkout.Confirmer, secret string) *WebhookHandler {
	if confirmer == nil || secret == "" {
		panic("nil confirmer or empty secret passed to NewWebhookHandler")
	}
	return &WebhookHandler{Confirmer: confirmer, Secret: secret}
}

// Handle processes POST /v1/payments/webhook.  Response codes steer the
// provider's redelivery: 2xx acknowledges, 4xx drops the event, 5xx and
// 409 make it retry later.
func (h *WebhookHandler) Handle(c echo.Context) error {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unreadable body"})
	}
	sig := c.Request().Header.Get("X-Payment-Signature")
	ev, err := payment.VerifyWebhook(body, sig, h.Secret)
	if err != nil {
		if errors.Is(err, payment.ErrInvalidSignature) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid signature"})
		}
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "malformed event"})
	}
	if ev.Type != eventSessionCompleted {
		// Unhandled event types are acknowledged, not retried.
		return c.NoContent(http.StatusOK)
	}
	if ev.SessionID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "missing session id"})
	}

	ord, err := h.Confirmer.Confirm(c.Request().Context(), ev.SessionID)
	if err != nil {
		if errors.Is(err, fault.ErrSlotAlreadyBooked) {
			// Losing the slot race is a terminal resolution: the payment
			// was refunded, so the event must not be redelivered.
			return c.JSON(http.StatusOK, echo.Map{"result": "slot lost, payment refunded"})
		}
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"order_id": ord.ID,
		"number":   ord.Number,
		"status":   ord.Status,
	})
}
