package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/keyvanfa/tableside/internal/fault"
	"github.com/keyvanfa/tableside/internal/model"
)

// OrderRepo provides CRUD operations for orders and their line
// snapshots. Orders are the durable terminal records of checkout; the
// idempotency_key and number columns carry UNIQUE keys so at most one
// record can ever exist per payment session. All timestamps are stored
// in UTC.
type OrderRepo struct {
	db *sql.DB
}

// NewOrderRepo returns an OrderRepo bound to the given database.
func NewOrderRepo(db *sql.DB) *OrderRepo { return &OrderRepo{db: db} }

const orderColumns = `id, number, user_id, restaurant_id, kind, slot_at, party_size,
	status, payment_status, session_id, idempotency_key, offer_id,
	deliver_lat, deliver_lng,
	subtotal_cents, handling_cents, delivery_fee_cents, discount_cents, total_cents,
	payment_ref, refund_status, created_at, updated_at`

// CreateTx inserts a new pending order within the scope of an
// existing transaction and populates the generated id and timestamps
// on the record. The caller commits or rolls back.
func (r *OrderRepo) CreateTx(ctx context.Context, tx *sql.Tx, ord *model.Order) error {
	var slotAt interface{}
	if ord.SlotAt != nil {
		slotAt = ord.SlotAt.UTC().Format(dbTime)
	}
	var offerID interface{}
	if ord.OfferID != nil {
		offerID = *ord.OfferID
	}
	var lat, lng interface{}
	if ord.DeliverTo != nil {
		lat, lng = ord.DeliverTo.Lat, ord.DeliverTo.Lng
	}
	const q = `INSERT INTO orders
		(number, user_id, restaurant_id, kind, slot_at, party_size,
		 status, payment_status, session_id, idempotency_key, offer_id,
		 deliver_lat, deliver_lng,
		 subtotal_cents, handling_cents, delivery_fee_cents, discount_cents, total_cents)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := tx.ExecContext(ctx, q,
		ord.Number, ord.UserID, ord.RestaurantID, string(ord.Kind), slotAt, ord.PartySize,
		ord.Status, ord.PaymentStatus, ord.SessionID, ord.IdempotencyKey, offerID,
		lat, lng,
		ord.Pricing.SubtotalCents, ord.Pricing.HandlingCents, ord.Pricing.DeliveryFeeCents,
		ord.Pricing.DiscountCents, ord.Pricing.TotalCents,
	)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	ord.ID = uint64(id)
	// Read back DB-populated timestamps.
	return tx.QueryRowContext(ctx,
		`SELECT created_at, updated_at FROM orders WHERE id = ?`, ord.ID,
	).Scan(&ord.CreatedAt, &ord.UpdatedAt)
}

// InsertLinesTx bulk-inserts the priced line snapshots of an order in
// a single statement within the provided transaction. Passing an empty
// slice has no effect and returns nil.
func (r *OrderRepo) InsertLinesTx(ctx context.Context, tx *sql.Tx, orderID uint64, lines []model.PricedLine) error {
	if len(lines) == 0 {
		return nil
	}
	query := `INSERT INTO order_items (order_id, item_id, name, unit_price_cents, quantity, line_total_cents, selection) VALUES `
	args := make([]interface{}, 0, len(lines)*7)
	for i, l := range lines {
		if i > 0 {
			query += ","
		}
		query += "(?, ?, ?, ?, ?, ?, ?)"
		sel, err := json.Marshal(l.Selection)
		if err != nil {
			return err
		}
		args = append(args, orderID, l.ItemID, l.Name, l.UnitPriceCents, l.Quantity, l.LineTotalCents, string(sel))
	}
	_, err := tx.ExecContext(ctx, query, args...)
	return err
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

// scanOrder populates an Order from a row selected with orderColumns.
func scanOrder(row rowScanner) (*model.Order, error) {
	var ord model.Order
	var kind string
	var slotAt sql.NullTime
	var offerID sql.NullInt64
	var lat, lng sql.NullFloat64
	var paymentRef, refundStatus sql.NullString
	err := row.Scan(
		&ord.ID, &ord.Number, &ord.UserID, &ord.RestaurantID, &kind, &slotAt, &ord.PartySize,
		&ord.Status, &ord.PaymentStatus, &ord.SessionID, &ord.IdempotencyKey, &offerID,
		&lat, &lng,
		&ord.Pricing.SubtotalCents, &ord.Pricing.HandlingCents, &ord.Pricing.DeliveryFeeCents,
		&ord.Pricing.DiscountCents, &ord.Pricing.TotalCents,
		&paymentRef, &refundStatus, &ord.CreatedAt, &ord.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	ord.Kind = model.OrderKind(kind)
	if slotAt.Valid {
		utc := slotAt.Time.UTC()
		ord.SlotAt = &utc
	}
	if offerID.Valid {
		v := uint64(offerID.Int64)
		ord.OfferID = &v
	}
	if lat.Valid && lng.Valid {
		ord.DeliverTo = &model.Coordinates{Lat: lat.Float64, Lng: lng.Float64}
	}
	if paymentRef.Valid {
		v := paymentRef.String
		ord.PaymentRef = &v
	}
	if refundStatus.Valid {
		v := refundStatus.String
		ord.RefundStatus = &v
	}
	return &ord, nil
}

// linesByOrder loads the priced line snapshots of an order.
func (r *OrderRepo) linesByOrder(ctx context.Context, orderID uint64) ([]model.PricedLine, error) {
	const q = `SELECT item_id, name, unit_price_cents, quantity, line_total_cents, selection
	           FROM order_items WHERE order_id = ? ORDER BY id`
	rows, err := r.db.QueryContext(ctx, q, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var lines []model.PricedLine
	for rows.Next() {
		var l model.PricedLine
		var sel sql.NullString
		if err := rows.Scan(&l.ItemID, &l.Name, &l.UnitPriceCents, &l.Quantity, &l.LineTotalCents, &sel); err != nil {
			return nil, err
		}
		if sel.Valid && sel.String != "" {
			if err := json.Unmarshal([]byte(sel.String), &l.Selection); err != nil {
				return nil, fmt.Errorf("decode selection for order %d: %w", orderID, err)
			}
		}
		lines = append(lines, l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return lines, nil
}

// GetBySession returns the order referencing the payment session,
// whatever its status, with line snapshots attached. Absence maps to
// fault.ErrUnknownSession because the only callers are the payment
// confirmation paths.
func (r *OrderRepo) GetBySession(ctx context.Context, sessionID string) (*model.Order, error) {
	ord, err := scanOrder(r.db.QueryRowContext(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE session_id = ?`, sessionID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fault.ErrUnknownSession
		}
		return nil, err
	}
	if ord.Kind == model.KindOrder {
		if ord.Lines, err = r.linesByOrder(ctx, ord.ID); err != nil {
			return nil, err
		}
	}
	return ord, nil
}

// GetByID returns an order by primary key with line snapshots
// attached, or fault.ErrNotFound.
func (r *OrderRepo) GetByID(ctx context.Context, orderID uint64) (*model.Order, error) {
	ord, err := scanOrder(r.db.QueryRowContext(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE id = ?`, orderID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fault.ErrNotFound
		}
		return nil, err
	}
	if ord.Kind == model.KindOrder {
		if ord.Lines, err = r.linesByOrder(ctx, ord.ID); err != nil {
			return nil, err
		}
	}
	return ord, nil
}

// GetForUpdateTx loads an order inside a transaction with a row lock,
// serializing concurrent confirmations and cancellations of the same
// record.
func (r *OrderRepo) GetForUpdateTx(ctx context.Context, tx *sql.Tx, orderID uint64) (*model.Order, error) {
	ord, err := scanOrder(tx.QueryRowContext(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE id = ? FOR UPDATE`, orderID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fault.ErrNotFound
		}
		return nil, err
	}
	return ord, nil
}

// ListByUser returns all orders of a user, newest first, without line
// snapshots (detail lookups load them).
func (r *OrderRepo) ListByUser(ctx context.Context, userID uint64) ([]model.Order, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE user_id = ? ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	orders := make([]model.Order, 0)
	for rows.Next() {
		ord, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, *ord)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return orders, nil
}

// ConfirmTx transitions a pending order to CONFIRMED within the
// provided transaction, recording the provider's capture reference and
// the re-derived pricing snapshot. The UPDATE is conditional on the
// PENDING status so a lost race is visible as zero affected rows.
func (r *OrderRepo) ConfirmTx(ctx context.Context, tx *sql.Tx, orderID uint64, paymentRef string, quote model.Quote) error {
	const q = `UPDATE orders SET status = ?, payment_status = ?, payment_ref = ?,
		subtotal_cents = ?, handling_cents = ?, delivery_fee_cents = ?, discount_cents = ?, total_cents = ?
		WHERE id = ? AND status = ?`
	res, err := tx.ExecContext(ctx, q,
		model.StatusConfirmed, model.PaymentPaid, paymentRef,
		quote.SubtotalCents, quote.HandlingCents, quote.DeliveryFeeCents, quote.DiscountCents, quote.TotalCents,
		orderID, model.StatusPending,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fault.ErrNotFound
	}
	return nil
}

// MarkCancelledTx flips an order into a terminal state within the
// provided transaction, recording the refund outcome when a refund was
// issued.
func (r *OrderRepo) MarkCancelledTx(ctx context.Context, tx *sql.Tx, orderID uint64, status, refundStatus string) error {
	if refundStatus != "" {
		_, err := tx.ExecContext(ctx,
			`UPDATE orders SET status = ?, payment_status = ?, refund_status = ? WHERE id = ?`,
			status, model.PaymentRefunded, refundStatus, orderID,
		)
		return err
	}
	_, err := tx.ExecContext(ctx, `UPDATE orders SET status = ? WHERE id = ?`, status, orderID)
	return err
}
