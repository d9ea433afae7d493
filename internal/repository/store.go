package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/keyvanfa/tableside/internal/checkout"
	"github.com/keyvanfa/tableside/internal/fault"
	"github.com/keyvanfa/tableside/internal/model"
	"github.com/keyvanfa/tableside/internal/payment"
)

// Store composes the repositories into the transactional surface the
// checkout core consumes. Every method that mutates state opens one
// transaction, so the cross-record invariants (lock plus pending
// record, claim plus confirmation, refund plus cancellation) commit or
// roll back as a unit and hold across concurrent service instances.
type Store struct {
	db          *sql.DB
	orders      *OrderRepo
	carts       *CartRepo
	locks       *SlotLockRepo
	slots       *BookingSlotRepo
	catalog     *CatalogRepo
	slotLockTTL time.Duration
}

// NewStore wires the repositories over a shared database handle.
func NewStore(db *sql.DB, slotLockTTL time.Duration) *Store {
	return &Store{
		db:          db,
		orders:      NewOrderRepo(db),
		carts:       NewCartRepo(db),
		locks:       NewSlotLockRepo(db),
		slots:       NewBookingSlotRepo(db),
		catalog:     NewCatalogRepo(db),
		slotLockTTL: slotLockTTL,
	}
}

// CartLines returns the customer's current cart lines.
func (s *Store) CartLines(ctx context.Context, userID uint64) ([]model.CartLine, error) {
	return s.carts.LinesByUser(ctx, userID)
}

// CreatePending persists a pending order in one transaction. For slot
// bookings the reservation lock is acquired first; contention aborts
// before the payment session is ever opened. The open callback runs
// inside the transaction so a provider failure rolls everything back,
// lock included.
func (s *Store) CreatePending(ctx context.Context, ord *model.Order, acquireLock bool, open checkout.SessionOpener) (*payment.Session, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if acquireLock && ord.SlotAt != nil {
		if err := s.locks.AcquireTx(ctx, tx, ord.RestaurantID, ord.UserID, *ord.SlotAt, s.slotLockTTL); err != nil {
			return nil, err
		}
	}

	sess, err := open(ctx)
	if err != nil {
		return nil, err
	}
	ord.SessionID = sess.ID

	if err := s.orders.CreateTx(ctx, tx, ord); err != nil {
		return nil, err
	}
	if ord.Kind == model.KindOrder {
		if err := s.orders.InsertLinesTx(ctx, tx, ord.ID, ord.Lines); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true
	return sess, nil
}

// BySession returns the order referencing the payment session.
func (s *Store) BySession(ctx context.Context, sessionID string) (*model.Order, error) {
	return s.orders.GetBySession(ctx, sessionID)
}

// ByID returns the order by primary key.
func (s *Store) ByID(ctx context.Context, orderID uint64) (*model.Order, error) {
	return s.orders.GetByID(ctx, orderID)
}

// ListByUser returns a user's order history, newest first.
func (s *Store) ListByUser(ctx context.Context, userID uint64) ([]model.Order, error) {
	return s.orders.ListByUser(ctx, userID)
}

// Confirm transitions a pending order to CONFIRMED in one transaction.
// Bookings claim the confirmed slot and drop their reservation lock;
// cart orders clear the originating cart. A replayed confirmation of an
// already confirmed record is a no-op.
func (s *Store) Confirm(ctx context.Context, orderID uint64, paymentRef string, quote model.Quote) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	ord, err := s.orders.GetForUpdateTx(ctx, tx, orderID)
	if err != nil {
		return err
	}
	if ord.Status == model.StatusConfirmed {
		return nil
	}
	if ord.Status != model.StatusPending {
		return fault.ErrPolicyViolation
	}

	if ord.Kind == model.KindBooking && ord.SlotAt != nil {
		if err := s.slots.ClaimTx(ctx, tx, ord.RestaurantID, *ord.SlotAt, ord.ID); err != nil {
			return err
		}
		if err := s.locks.ReleaseTx(ctx, tx, ord.RestaurantID, *ord.SlotAt); err != nil {
			return err
		}
	} else {
		if err := s.carts.ClearTx(ctx, tx, ord.UserID); err != nil {
			return err
		}
	}

	if err := s.orders.ConfirmTx(ctx, tx, orderID, paymentRef, quote); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// MarkCancelled flips an order into a terminal state and releases any
// slot claim and reservation lock it still holds.
func (s *Store) MarkCancelled(ctx context.Context, orderID uint64, status, refundStatus string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	ord, err := s.orders.GetForUpdateTx(ctx, tx, orderID)
	if err != nil {
		return err
	}
	if err := s.orders.MarkCancelledTx(ctx, tx, orderID, status, refundStatus); err != nil {
		return err
	}
	if ord.Kind == model.KindBooking && ord.SlotAt != nil {
		if err := s.slots.ReleaseTx(ctx, tx, ord.ID); err != nil {
			return err
		}
		if err := s.locks.ReleaseTx(ctx, tx, ord.RestaurantID, *ord.SlotAt); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// CancelConfirmed cancels a confirmed order with its refund inside the
// same transaction. The refund callback failing rolls the whole
// cancellation back, so the record stays CONFIRMED and the operation
// can be retried.
func (s *Store) CancelConfirmed(ctx context.Context, orderID uint64, status string, refund checkout.RefundFunc) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	ord, err := s.orders.GetForUpdateTx(ctx, tx, orderID)
	if err != nil {
		return err
	}
	if ord.Status != model.StatusConfirmed {
		return fault.ErrPolicyViolation
	}

	refundStatus, err := refund(ctx)
	if err != nil {
		return err
	}
	if err := s.orders.MarkCancelledTx(ctx, tx, orderID, status, refundStatus); err != nil {
		return err
	}
	if ord.Kind == model.KindBooking && ord.SlotAt != nil {
		if err := s.slots.ReleaseTx(ctx, tx, ord.ID); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// OwnerID returns the owner of a restaurant for cancellation
// authorization.
func (s *Store) OwnerID(ctx context.Context, restaurantID uint64) (uint64, error) {
	return s.catalog.OwnerID(ctx, restaurantID)
}

// Catalog exposes the read-only catalog view for cart materialization
// and handler-level lookups.
func (s *Store) Catalog() *CatalogRepo { return s.catalog }

// Carts exposes the cart repository for the cart management endpoints.
func (s *Store) Carts() *CartRepo { return s.carts }
