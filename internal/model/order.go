package model

import "time"

// OrderKind distinguishes a cart checkout from a table booking. Both
// share the orders table and lifecycle; bookings additionally carry a
// slot and participate in slot exclusivity.
type OrderKind string

const (
	KindOrder   OrderKind = "ORDER"
	KindBooking OrderKind = "BOOKING"
)

// Lifecycle states of an order or booking. Transitions are
// one-directional: PENDING -> CONFIRMED -> a terminal state. No
// terminal state ever re-enters PENDING or CONFIRMED.
const (
	StatusPending          = "PENDING"
	StatusConfirmed        = "CONFIRMED"
	StatusCancelledByUser  = "CANCELLED_BY_USER"
	StatusCancelledByOwner = "CANCELLED_BY_OWNER"
	StatusCompleted        = "COMPLETED"
	StatusRejected         = "REJECTED"
)

// Payment states tracked alongside the lifecycle.
const (
	PaymentUnpaid   = "UNPAID"
	PaymentPaid     = "PAID"
	PaymentRefunded = "REFUNDED"
)

// Quote is the priced breakdown of an order, computed by the pricing
// engine and snapshotted onto the order. All amounts are in cents.
type Quote struct {
	SubtotalCents    int64 `json:"subtotal_cents"`
	HandlingCents    int64 `json:"handling_cents"`
	DeliveryFeeCents int64 `json:"delivery_fee_cents"`
	DiscountCents    int64 `json:"discount_cents"`
	TotalCents       int64 `json:"total_cents"`
}

// Order is the durable record created by checkout, unique per payment
// session. For kind BOOKING, SlotAt and PartySize are set and Lines is
// empty; for kind ORDER it is the reverse.
//
// Fields:
//  ID             – primary key identifier.
//  Number         – unique human-facing order/booking number.
//  UserID         – paying customer.
//  RestaurantID   – restaurant the order or booking targets.
//  Kind           – ORDER or BOOKING.
//  SlotAt         – booked table slot (bookings only).
//  PartySize      – number of guests (bookings only).
//  Status         – lifecycle state, see Status constants.
//  PaymentStatus  – UNPAID, PAID or REFUNDED.
//  SessionID      – external payment session reference.
//  IdempotencyKey – unique key derived from the session; guarantees at
//                   most one record per payment session.
//  OfferID        – promotional offer applied, if any.
//  DeliverTo      – delivery coordinates (orders only).
//  Pricing        – quote snapshot taken at initiation.
//  Lines          – priced line snapshots (orders only).
//  PaymentRef     – provider capture reference, set at confirmation.
//  RefundStatus   – provider refund status, set on cancellation.
//  CreatedAt      – creation timestamp.
//  UpdatedAt      – last update timestamp.
type Order struct {
	ID             uint64       `json:"id"`
	Number         string       `json:"number"`
	UserID         uint64       `json:"user_id"`
	RestaurantID   uint64       `json:"restaurant_id"`
	Kind           OrderKind    `json:"kind"`
	SlotAt         *time.Time   `json:"slot_at,omitempty"`
	PartySize      uint32       `json:"party_size,omitempty"`
	Status         string       `json:"status"`
	PaymentStatus  string       `json:"payment_status"`
	SessionID      string       `json:"session_id"`
	IdempotencyKey string       `json:"-"`
	OfferID        *uint64      `json:"offer_id,omitempty"`
	DeliverTo      *Coordinates `json:"deliver_to,omitempty"`
	Pricing        Quote        `json:"pricing"`
	Lines          []PricedLine `json:"lines,omitempty"`
	PaymentRef     *string      `json:"payment_ref,omitempty"`
	RefundStatus   *string      `json:"refund_status,omitempty"`
	CreatedAt      time.Time    `json:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at"`
}

// Terminal reports whether the order has left the PENDING/CONFIRMED
// portion of the lifecycle.
func (o *Order) Terminal() bool {
	switch o.Status {
	case StatusPending, StatusConfirmed:
		return false
	}
	return true
}
