package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/keyvanfa/tableside/internal/checkout"
	"github.com/keyvanfa/tableside/internal/model"
)

// CheckoutHandler serves the two checkout initiation endpoints.  Both
// price the request authoritatively, open a payment session for the
// exact quoted amount and persist the pending record atomically; the
// response carries the redirect URL for the provider's payment page.
type CheckoutHandler struct {
	Initiator *checkout.Initiator
}

// NewCheckoutHandler constructs a CheckoutHandler.
func NewCheckoutHandler(init *checkout.Initiator) *CheckoutHandler {
	if init == nil {
		panic("nil initiator passed to NewCheckoutHandler")
	}
	return &CheckoutHandler{Initiator: init}
}

// Cart handles POST /v1/checkout/cart.  The body optionally carries a
// promo code and the delivery coordinates.
func (h *CheckoutHandler) Cart(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var body struct {
		OfferCode string            `json:"offer_code"`
		DeliverTo model.Coordinates `json:"deliver_to"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	res, err := h.Initiator.InitiateCart(c.Request().Context(), checkout.CartCheckoutRequest{
		UserID:    userID,
		OfferCode: body.OfferCode,
		DeliverTo: body.DeliverTo,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, res)
}

// Booking handles POST /v1/checkout/booking.  The slot must be an
// RFC 3339 timestamp in the future; losing the reservation-lock race
// surfaces as 409 before any payment session exists.
func (h *CheckoutHandler) Booking(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var body struct {
		RestaurantID uint64 `json:"restaurant_id"`
		SlotAt       string `json:"slot_at"`
		PartySize    uint32 `json:"party_size"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if body.RestaurantID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "restaurant_id is required"})
	}
	slotAt, err := time.Parse(time.RFC3339, body.SlotAt)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "slot_at must be RFC 3339"})
	}
	res, err := h.Initiator.InitiateBooking(c.Request().Context(), checkout.BookingRequest{
		UserID:       userID,
		RestaurantID: body.RestaurantID,
		SlotAt:       slotAt,
		PartySize:    body.PartySize,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, res)
}
