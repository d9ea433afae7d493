package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/keyvanfa/tableside/internal/fault"
)

// BookingSlotRepo records which confirmed booking occupies a slot. The
// booking_slots table carries UNIQUE(restaurant_id, slot_at) and only
// ever holds rows for confirmed bookings, which makes it the
// storage-level equivalent of a partial uniqueness constraint over
// confirmed records: the second line of defense behind the reservation
// lock, protecting against lock-bypass bugs and TTL expiry races.
type BookingSlotRepo struct {
	db *sql.DB
}

// NewBookingSlotRepo returns a BookingSlotRepo bound to the database.
func NewBookingSlotRepo(db *sql.DB) *BookingSlotRepo { return &BookingSlotRepo{db: db} }

// ClaimTx inserts the confirmed-slot claim for an order within the
// provided transaction. When another order already holds the slot it
// returns fault.ErrSlotAlreadyBooked; a replayed claim by the same
// order is idempotent and succeeds.
func (r *BookingSlotRepo) ClaimTx(ctx context.Context, tx *sql.Tx, restaurantID uint64, slotAt time.Time, orderID uint64) error {
	slot := slotAt.UTC().Format(dbTime)
	_, err := tx.ExecContext(ctx,
		`INSERT INTO booking_slots (restaurant_id, slot_at, order_id) VALUES (?, ?, ?)`,
		restaurantID, slot, orderID,
	)
	if err == nil {
		return nil
	}
	if !isDuplicateKey(err) {
		return fmt.Errorf("claim booking slot: %w", err)
	}
	// The key is taken; only a conflict with a different order loses.
	var holder uint64
	if err := tx.QueryRowContext(ctx,
		`SELECT order_id FROM booking_slots WHERE restaurant_id = ? AND slot_at = ?`,
		restaurantID, slot,
	).Scan(&holder); err != nil {
		return err
	}
	if holder != orderID {
		return fault.ErrSlotAlreadyBooked
	}
	return nil
}

// ReleaseTx removes the claim held by orderID, freeing the slot for
// new bookings after a cancellation. Removing an absent claim is not
// an error.
func (r *BookingSlotRepo) ReleaseTx(ctx context.Context, tx *sql.Tx, orderID uint64) error {
	_, err := tx.ExecContext(ctx, `DELETE FROM booking_slots WHERE order_id = ?`, orderID)
	return err
}
