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

func confirmedBooking(t *testing.T, w *testWorld, leadTime time.Duration) *model.Order {
	t.Helper()
	slot := time.Now().UTC().Add(leadTime).Truncate(time.Minute)
	res, err := w.initiator().InitiateBooking(context.Background(), BookingRequest{
		UserID: 5, RestaurantID: 10, SlotAt: slot, PartySize: 2,
	})
	require.NoError(t, err)
	w.provider.markPaid(res.SessionID)
	ord, err := w.confirmer().Confirm(context.Background(), res.SessionID)
	require.NoError(t, err)
	return ord
}

func TestCancelByPayerRefunds(t *testing.T) {
	w := newTestWorld()
	ord := confirmedBooking(t, w, 48*time.Hour)

	refundStatus, err := w.canceller().Cancel(context.Background(), ord.ID, Actor{UserID: 5, Role: RoleCustomer})
	require.NoError(t, err)
	assert.Equal(t, "refunded", refundStatus)

	got, err := w.store.ByID(context.Background(), ord.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusCancelledByUser, got.Status)
	assert.Equal(t, model.PaymentRefunded, got.PaymentStatus)
	assert.Equal(t, []string{*ord.PaymentRef}, w.provider.refunds)
	assert.Len(t, w.notifier.cancelled, 1)
}

func TestCancelInsideLeadTimeIsPolicyViolation(t *testing.T) {
	w := newTestWorld() // policy requires 5 hours' notice
	ord := confirmedBooking(t, w, 2*time.Hour)

	_, err := w.canceller().Cancel(context.Background(), ord.ID, Actor{UserID: 5, Role: RoleCustomer})
	assert.ErrorIs(t, err, fault.ErrPolicyViolation)

	got, err := w.store.ByID(context.Background(), ord.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusConfirmed, got.Status, "record remains confirmed")
	assert.Empty(t, w.provider.refunds, "no refund issued")
}

func TestCancelByOwnerIgnoresLeadTime(t *testing.T) {
	w := newTestWorld()
	ord := confirmedBooking(t, w, 2*time.Hour)

	_, err := w.canceller().Cancel(context.Background(), ord.ID, Actor{UserID: 77, Role: RoleOwner})
	require.NoError(t, err)
	got, err := w.store.ByID(context.Background(), ord.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusCancelledByOwner, got.Status)
}

func TestCancelForbiddenForStrangers(t *testing.T) {
	w := newTestWorld()
	ord := confirmedBooking(t, w, 48*time.Hour)

	_, err := w.canceller().Cancel(context.Background(), ord.ID, Actor{UserID: 6, Role: RoleCustomer})
	assert.ErrorIs(t, err, fault.ErrForbidden)

	// Owner of a different restaurant.
	w.store.owners[11] = 88
	_, err = w.canceller().Cancel(context.Background(), ord.ID, Actor{UserID: 88, Role: RoleOwner})
	assert.ErrorIs(t, err, fault.ErrForbidden)
}

func TestCancelRefundFailureAbortsCancellation(t *testing.T) {
	w := newTestWorld()
	ord := confirmedBooking(t, w, 48*time.Hour)

	w.provider.refundErr = fault.ErrUpstreamUnavailable
	_, err := w.canceller().Cancel(context.Background(), ord.ID, Actor{UserID: 5, Role: RoleCustomer})
	require.ErrorIs(t, err, fault.ErrUpstreamUnavailable)

	// Status flip and refund are one unit: nothing changed, retryable.
	got, err := w.store.ByID(context.Background(), ord.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusConfirmed, got.Status)

	w.provider.refundErr = nil
	_, err = w.canceller().Cancel(context.Background(), ord.ID, Actor{UserID: 5, Role: RoleCustomer})
	assert.NoError(t, err)
}

func TestCancelPendingIsPolicyViolation(t *testing.T) {
	w := newTestWorld()
	slot := time.Now().UTC().Add(48 * time.Hour)
	res, err := w.initiator().InitiateBooking(context.Background(), BookingRequest{
		UserID: 5, RestaurantID: 10, SlotAt: slot, PartySize: 2,
	})
	require.NoError(t, err)

	_, err = w.canceller().Cancel(context.Background(), res.OrderID, Actor{UserID: 5, Role: RoleCustomer})
	assert.ErrorIs(t, err, fault.ErrPolicyViolation)
}

func TestRejectByOwner(t *testing.T) {
	w := newTestWorld()
	ord := confirmedBooking(t, w, 48*time.Hour)

	_, err := w.canceller().Reject(context.Background(), ord.ID, Actor{UserID: 5, Role: RoleCustomer})
	assert.ErrorIs(t, err, fault.ErrForbidden)

	refundStatus, err := w.canceller().Reject(context.Background(), ord.ID, Actor{UserID: 77, Role: RoleOwner})
	require.NoError(t, err)
	assert.Equal(t, "refunded", refundStatus)
	got, err := w.store.ByID(context.Background(), ord.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusRejected, got.Status)
}

func TestCancelledSlotBecomesBookableAgain(t *testing.T) {
	w := newTestWorld()
	ord := confirmedBooking(t, w, 48*time.Hour)
	_, err := w.canceller().Cancel(context.Background(), ord.ID, Actor{UserID: 5, Role: RoleCustomer})
	require.NoError(t, err)

	// The slot claim was released with the cancellation.
	res, err := w.initiator().InitiateBooking(context.Background(), BookingRequest{
		UserID: 6, RestaurantID: 10, SlotAt: *ord.SlotAt, PartySize: 2,
	})
	require.NoError(t, err)
	w.provider.markPaid(res.SessionID)
	got, err := w.confirmer().Confirm(context.Background(), res.SessionID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusConfirmed, got.Status)
}
