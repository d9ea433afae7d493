// Package checkout implements the consistency core of the ordering
// platform: initiating a payment session for a cart or table slot,
// confirming it exactly once from the provider's asynchronous
// callback, and reversing it under policy with a refund.
//
// The package depends on small interfaces rather than the concrete
// MySQL repositories so every invariant can be exercised in unit tests
// with fakes; the repository layer implements Store with one storage
// transaction per method, keeping all cross-record invariants inside
// the database where concurrent service instances can see them.
package checkout

import (
	"context"
	"time"

	"github.com/keyvanfa/tableside/internal/model"
	"github.com/keyvanfa/tableside/internal/payment"
)

// SessionOpener opens the external payment session once validation,
// pricing and (for bookings) reservation-lock acquisition have
// succeeded inside the storage transaction. If it fails, the
// transaction rolls back, so a lock is never left behind without a
// pending record and the customer is never charged for a failed
// initiation.
type SessionOpener func(ctx context.Context) (*payment.Session, error)

// RefundFunc issues a refund against the original payment. It runs
// inside the cancellation transaction; an error aborts the whole
// cancellation so a record is never marked cancelled while the
// customer keeps being charged.
type RefundFunc func(ctx context.Context) (refundStatus string, err error)

// Store is the transactional storage surface of the checkout core.
// Implementations must enforce the uniqueness invariants (reservation
// lock per slot, confirmed booking per slot, idempotency key per
// session) with storage-level constraints, not check-then-act reads.
type Store interface {
	// CartLines returns the customer's current cart lines.
	CartLines(ctx context.Context, userID uint64) ([]model.CartLine, error)

	// CreatePending inserts the pending order and its line snapshots
	// in one transaction. When acquireLock is set (slot bookings), the
	// reservation lock for (restaurant, slot) is acquired first within
	// the same transaction; fault.ErrSlotContended aborts before open
	// is ever called. open runs inside the transaction and its session
	// id is persisted with the record before commit.
	CreatePending(ctx context.Context, ord *model.Order, acquireLock bool, open SessionOpener) (*payment.Session, error)

	// BySession returns the order referencing the payment session,
	// whatever its status, or fault.ErrUnknownSession.
	BySession(ctx context.Context, sessionID string) (*model.Order, error)

	// ByID returns the order by primary key, or fault.ErrNotFound.
	ByID(ctx context.Context, orderID uint64) (*model.Order, error)

	// Confirm transitions PENDING -> CONFIRMED in one transaction. For
	// bookings it claims the confirmed slot (fault.ErrSlotAlreadyBooked
	// when a concurrent confirmation won) and releases the reservation
	// lock; for cart orders it clears the originating cart. The stored
	// pricing snapshot is replaced by the re-derived quote.
	Confirm(ctx context.Context, orderID uint64, paymentRef string, quote model.Quote) error

	// MarkCancelled flips the order into a terminal state and records
	// the refund status, releasing any slot claim and reservation lock.
	MarkCancelled(ctx context.Context, orderID uint64, status, refundStatus string) error

	// CancelConfirmed cancels a confirmed order: the refund callback
	// runs inside the transaction and any refund error rolls the whole
	// cancellation back, leaving the record CONFIRMED for retry.
	CancelConfirmed(ctx context.Context, orderID uint64, status string, refund RefundFunc) error

	// OwnerID returns the owner of a restaurant for cancellation
	// authorization.
	OwnerID(ctx context.Context, restaurantID uint64) (uint64, error)
}

// Notifier delivers best-effort notifications after state changes.
// Implementations log failures and never propagate them; the checkout
// flow must not depend on the notification path.
type Notifier interface {
	OrderConfirmed(ctx context.Context, ord *model.Order)
	OrderCancelled(ctx context.Context, ord *model.Order, actor string)
}

// Config carries the knobs of the checkout core, read once at startup
// and injected explicitly so behavior is deterministic per instance.
type Config struct {
	Currency            string
	SlotLockTTL         time.Duration
	SlotLockingEnabled  bool
	PriceToleranceCents int64
	CancelMinLead       time.Duration
}

// Actor identifies the authenticated principal requesting a
// cancellation. Role values match the JWT role claim.
type Actor struct {
	UserID uint64
	Role   string
}

// Roles accepted on cancellation paths.
const (
	RoleCustomer = "CUSTOMER"
	RoleOwner    = "OWNER"
)
