package repository

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/keyvanfa/tableside/internal/fault"
)

// SlotLockRepo provides the short-lived exclusive claims that
// serialize concurrent checkout attempts on the same table slot before
// payment completes. A lock is a row in slot_locks guarded by
// UNIQUE(restaurant_id, slot_at); acquisition is an insert, so two
// concurrent attempts race on the constraint rather than on an
// application-level check. Expiry is enforced in-transaction by
// deleting rows whose expires_at has passed, never by a background
// sweep that could itself race.
type SlotLockRepo struct {
	db *sql.DB
}

// NewSlotLockRepo returns a SlotLockRepo bound to the given database.
func NewSlotLockRepo(db *sql.DB) *SlotLockRepo { return &SlotLockRepo{db: db} }

// randomToken generates a random hexadecimal string of n bytes. The
// lock token is opaque and only used for log correlation.
func randomToken(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// AcquireTx claims the lock for (restaurantID, slotAt) within the
// provided transaction. Any expired lock on the key is removed first,
// then a fresh row is inserted; a duplicate-key violation means a live
// lock exists and the attempt fails with fault.ErrSlotContended. The
// caller commits or rolls back the transaction — rolling back undoes
// the acquisition, so a failed checkout never leaves a lock behind.
func (r *SlotLockRepo) AcquireTx(ctx context.Context, tx *sql.Tx, restaurantID, userID uint64, slotAt time.Time, ttl time.Duration) error {
	slot := slotAt.UTC().Format(dbTime)
	// Clear an expired claim on this key so an abandoned checkout
	// cannot block the slot past its TTL.
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM slot_locks WHERE restaurant_id = ? AND slot_at = ? AND expires_at <= UTC_TIMESTAMP()`,
		restaurantID, slot,
	); err != nil {
		return err
	}
	token, err := randomToken(16)
	if err != nil {
		return err
	}
	expires := time.Now().UTC().Add(ttl).Format(dbTime)
	_, err = tx.ExecContext(ctx,
		`INSERT INTO slot_locks (restaurant_id, slot_at, user_id, lock_token, expires_at) VALUES (?, ?, ?, ?, ?)`,
		restaurantID, slot, userID, token, expires,
	)
	if err != nil {
		if isDuplicateKey(err) {
			return fault.ErrSlotContended
		}
		return fmt.Errorf("acquire slot lock: %w", err)
	}
	return nil
}

// ReleaseTx removes the lock for (restaurantID, slotAt) within the
// provided transaction. Releasing an absent lock is not an error, so
// release is safe to call on every terminal path.
func (r *SlotLockRepo) ReleaseTx(ctx context.Context, tx *sql.Tx, restaurantID uint64, slotAt time.Time) error {
	_, err := tx.ExecContext(ctx,
		`DELETE FROM slot_locks WHERE restaurant_id = ? AND slot_at = ?`,
		restaurantID, slotAt.UTC().Format(dbTime),
	)
	return err
}
