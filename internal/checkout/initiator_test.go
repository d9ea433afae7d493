package checkout

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keyvanfa/tableside/internal/fault"
	"github.com/keyvanfa/tableside/internal/model"
)

func TestInitiateCartQuoteMatchesSessionAmount(t *testing.T) {
	w := newTestWorld()
	res, err := w.initiator().InitiateCart(context.Background(), CartCheckoutRequest{
		UserID:    5,
		DeliverTo: model.Coordinates{Lat: 0.01, Lng: 0}, // ~1.1 km, inside free radius
	})
	require.NoError(t, err)

	// Subtotal 25.00, handling 10% -> 2.50, free delivery radius.
	assert.Equal(t, int64(2500), res.Quote.SubtotalCents)
	assert.Equal(t, int64(250), res.Quote.HandlingCents)
	assert.Equal(t, int64(2750), res.Quote.TotalCents)

	// The session was opened for exactly the quoted total.
	sess := w.provider.sessions[res.SessionID]
	require.NotNil(t, sess)
	assert.Equal(t, res.Quote.TotalCents, sess.AmountCents)
	assert.NotEmpty(t, res.RedirectURL)

	ord, err := w.store.BySession(context.Background(), res.SessionID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusPending, ord.Status)
	assert.Equal(t, model.PaymentUnpaid, ord.PaymentStatus)
	assert.NotEmpty(t, ord.IdempotencyKey)
	// The cart survives until confirmation.
	assert.NotEmpty(t, w.store.carts[5])
}

func TestInitiateCartWithOffer(t *testing.T) {
	w := newTestWorld()
	res, err := w.initiator().InitiateCart(context.Background(), CartCheckoutRequest{
		UserID:    5,
		OfferCode: "SAVE20",
		DeliverTo: model.Coordinates{Lat: 0.01, Lng: 0},
	})
	require.NoError(t, err)
	// 20% of 25.00 = 5.00 discount.
	assert.Equal(t, int64(500), res.Quote.DiscountCents)
	assert.Equal(t, int64(2250), res.Quote.TotalCents)
	assert.Equal(t, res.Quote.TotalCents, w.provider.sessions[res.SessionID].AmountCents)
}

func TestInitiateCartOfferBelowMinimum(t *testing.T) {
	w := newTestWorld()
	w.catalog.offers[1].MinOrderCents = 99999
	_, err := w.initiator().InitiateCart(context.Background(), CartCheckoutRequest{
		UserID:    5,
		OfferCode: "SAVE20",
		DeliverTo: model.Coordinates{Lat: 0.01, Lng: 0},
	})
	assert.ErrorIs(t, err, fault.ErrOfferNotEligible)
	assert.Empty(t, w.provider.sessions, "no payment session on rejected offer")
}

func TestInitiateCartEmptyCart(t *testing.T) {
	w := newTestWorld()
	_, err := w.initiator().InitiateCart(context.Background(), CartCheckoutRequest{
		UserID:    999,
		DeliverTo: model.Coordinates{Lat: 0.01, Lng: 0},
	})
	assert.ErrorIs(t, err, fault.ErrEmptyCart)
	assert.Empty(t, w.provider.sessions)
}

func TestInitiateCartOutOfDeliveryRange(t *testing.T) {
	w := newTestWorld()
	_, err := w.initiator().InitiateCart(context.Background(), CartCheckoutRequest{
		UserID:    5,
		DeliverTo: model.Coordinates{Lat: 1, Lng: 0}, // ~111 km
	})
	assert.ErrorIs(t, err, fault.ErrOutOfRange)
	assert.Empty(t, w.provider.sessions, "failed initiation never charges the customer")
}

func TestInitiateBookingSlotContended(t *testing.T) {
	w := newTestWorld()
	slot := time.Now().UTC().Add(24 * time.Hour).Truncate(time.Hour)
	first, err := w.initiator().InitiateBooking(context.Background(), BookingRequest{
		UserID: 5, RestaurantID: 10, SlotAt: slot, PartySize: 2,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(3000), first.Quote.TotalCents)

	// A concurrent attempt on the same slot loses the lock race and
	// never reaches the payment provider.
	_, err = w.initiator().InitiateBooking(context.Background(), BookingRequest{
		UserID: 6, RestaurantID: 10, SlotAt: slot, PartySize: 4,
	})
	assert.ErrorIs(t, err, fault.ErrSlotContended)
	assert.Len(t, w.provider.sessions, 1)
}

func TestInitiateBookingSessionFailureRollsBackLock(t *testing.T) {
	w := newTestWorld()
	slot := time.Now().UTC().Add(24 * time.Hour).Truncate(time.Hour)

	w.provider.createErr = fault.ErrUpstreamUnavailable
	_, err := w.initiator().InitiateBooking(context.Background(), BookingRequest{
		UserID: 5, RestaurantID: 10, SlotAt: slot, PartySize: 2,
	})
	require.ErrorIs(t, err, fault.ErrUpstreamUnavailable)

	// The lock acquisition rolled back with the transaction; the slot
	// is immediately available again.
	w.provider.createErr = nil
	_, err = w.initiator().InitiateBooking(context.Background(), BookingRequest{
		UserID: 6, RestaurantID: 10, SlotAt: slot, PartySize: 2,
	})
	assert.NoError(t, err)
}

func TestInitiateBookingValidation(t *testing.T) {
	w := newTestWorld()
	_, err := w.initiator().InitiateBooking(context.Background(), BookingRequest{
		UserID: 5, RestaurantID: 10, SlotAt: time.Now().UTC().Add(time.Hour), PartySize: 0,
	})
	assert.ErrorIs(t, err, fault.ErrValidation)

	_, err = w.initiator().InitiateBooking(context.Background(), BookingRequest{
		UserID: 5, RestaurantID: 10, SlotAt: time.Now().UTC().Add(-time.Hour), PartySize: 2,
	})
	assert.ErrorIs(t, err, fault.ErrValidation)
	assert.Empty(t, w.provider.sessions)
}
