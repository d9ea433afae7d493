// Package queue defines message payloads exchanged over the message broker.
package queue

// Queue and event type names shared by the publisher and the consumer.
const (
	OrderEventsQueue   = "order.events"
	TypeOrderConfirmed = "order.confirmed"
	TypeOrderCancelled = "order.cancelled"
)

// OrderEvent is published when an order or booking reaches a terminal
// payment state.  It contains enough information for downstream consumers
// to log, notify, or trigger analytics without querying the primary
// database.
type OrderEvent struct {
	Type         string `json:"type"`
	OrderID      uint64 `json:"order_id"`
	Number       string `json:"number"`
	UserID       uint64 `json:"user_id"`
	RestaurantID uint64 `json:"restaurant_id"`
	Kind         string `json:"kind"`
	SlotAt       string `json:"slot_at,omitempty"`
	PartySize    uint32 `json:"party_size,omitempty"`
	Status       string `json:"status"`
	TotalCents   int64  `json:"total_cents"`
	Actor        string `json:"actor,omitempty"`
	OccurredAt   string `json:"occurred_at"`
}
