package checkout

import (
	"context"
	"fmt"
	"time"

	"github.com/keyvanfa/tableside/internal/fault"
	"github.com/keyvanfa/tableside/internal/model"
	"github.com/keyvanfa/tableside/internal/payment"
)

// Canceller reverses a confirmed order or booking under policy and
// issues a refund against the original payment. The status flip and
// the refund are one unit: when the provider cannot be reached the
// whole cancellation fails and may be retried, so a record is never
// marked cancelled while the customer silently keeps being charged.
type Canceller struct {
	store    Store
	provider payment.Provider
	notifier Notifier
	cfg      Config
	now      func() time.Time
}

// NewCanceller constructs a Canceller. notifier may be nil.
func NewCanceller(store Store, provider payment.Provider, notifier Notifier, cfg Config) *Canceller {
	if store == nil || provider == nil {
		panic("nil dependency passed to NewCanceller")
	}
	return &Canceller{
		store:    store,
		provider: provider,
		notifier: notifier,
		cfg:      cfg,
		now:      time.Now,
	}
}

// Cancel cancels a confirmed record on behalf of the actor. Customers
// may only cancel their own records; owners only records of their own
// restaurant. Booking cancellations by the customer must respect the
// minimum lead time before the slot. Returns the provider's refund
// status.
func (c *Canceller) Cancel(ctx context.Context, orderID uint64, actor Actor) (string, error) {
	status := model.StatusCancelledByUser
	if actor.Role == RoleOwner {
		status = model.StatusCancelledByOwner
	}
	return c.cancel(ctx, orderID, actor, status)
}

// Reject is the owner-side terminal refusal of a confirmed order. It
// shares the refund semantics of Cancel but lands on REJECTED.
func (c *Canceller) Reject(ctx context.Context, orderID uint64, actor Actor) (string, error) {
	if actor.Role != RoleOwner {
		return "", fault.ErrForbidden
	}
	return c.cancel(ctx, orderID, actor, model.StatusRejected)
}

func (c *Canceller) cancel(ctx context.Context, orderID uint64, actor Actor, status string) (string, error) {
	ord, err := c.store.ByID(ctx, orderID)
	if err != nil {
		return "", err
	}
	if err := c.authorize(ctx, ord, actor); err != nil {
		return "", err
	}
	if ord.Status != model.StatusConfirmed {
		// Records past CONFIRMED (delivered, already cancelled) or not
		// yet paid cannot be cancelled through this path.
		return "", fmt.Errorf("%w: order is %s", fault.ErrPolicyViolation, ord.Status)
	}
	if actor.Role == RoleCustomer && ord.Kind == model.KindBooking && ord.SlotAt != nil {
		if ord.SlotAt.Sub(c.now().UTC()) < c.cfg.CancelMinLead {
			return "", fmt.Errorf("%w: bookings require %s notice to cancel", fault.ErrPolicyViolation, c.cfg.CancelMinLead)
		}
	}

	var refundStatus string
	err = c.store.CancelConfirmed(ctx, ord.ID, status, func(ctx context.Context) (string, error) {
		if ord.PaymentStatus != model.PaymentPaid || ord.PaymentRef == nil {
			return "", nil
		}
		rs, err := c.provider.Refund(ctx, *ord.PaymentRef)
		if err != nil {
			return "", err
		}
		refundStatus = rs
		return rs, nil
	})
	if err != nil {
		return "", err
	}
	ord.Status = status
	if refundStatus != "" {
		ord.PaymentStatus = model.PaymentRefunded
		ord.RefundStatus = &refundStatus
	}
	if c.notifier != nil {
		c.notifier.OrderCancelled(ctx, ord, actor.Role)
	}
	return refundStatus, nil
}

// authorize checks that the actor may act on the record: the paying
// customer, or the owner of the restaurant it targets.
func (c *Canceller) authorize(ctx context.Context, ord *model.Order, actor Actor) error {
	switch actor.Role {
	case RoleCustomer:
		if ord.UserID != actor.UserID {
			return fault.ErrForbidden
		}
	case RoleOwner:
		ownerID, err := c.store.OwnerID(ctx, ord.RestaurantID)
		if err != nil {
			return err
		}
		if ownerID != actor.UserID {
			return fault.ErrForbidden
		}
	default:
		return fault.ErrForbidden
	}
	return nil
}
