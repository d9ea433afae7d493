// Package service provides the RabbitMQ publisher behind the checkout
// notifier.  Errors are logged and swallowed so a broker outage never
// interrupts the main request flow.
package service

import (
	"context"
	"encoding/json"
	"log"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/keyvanfa/tableside/internal/model"
	"github.com/keyvanfa/tableside/internal/queue"
)

// EventPublisher publishes order lifecycle events to the order.events
// queue.  A zero URL disables publishing entirely, which is how local
// development runs without a broker.
type EventPublisher struct {
	url string
}

// NewEventPublisher returns a publisher bound to the AMQP url.
func NewEventPublisher(url string) *EventPublisher {
	return &EventPublisher{url: url}
}

// OrderConfirmed publishes an order.confirmed event.
func (p *EventPublisher) OrderConfirmed(ctx context.Context, ord *model.Order) {
	p.publish(ctx, eventFor(queue.TypeOrderConfirmed, ord, ""))
}

// OrderCancelled publishes an order.cancelled event carrying the actor
// that requested the cancellation.
func (p *EventPublisher) OrderCancelled(ctx context.Context, ord *model.Order, actor string) {
	p.publish(ctx, eventFor(queue.TypeOrderCancelled, ord, actor))
}

func eventFor(typ string, ord *model.Order, actor string) queue.OrderEvent {
	ev := queue.OrderEvent{
		Type:         typ,
		OrderID:      ord.ID,
		Number:       ord.Number,
		UserID:       ord.UserID,
		RestaurantID: ord.RestaurantID,
		Kind:         string(ord.Kind),
		PartySize:    ord.PartySize,
		Status:       ord.Status,
		TotalCents:   ord.Pricing.TotalCents,
		Actor:        actor,
		OccurredAt:   time.Now().UTC().Format(time.RFC3339),
	}
	if ord.SlotAt != nil {
		ev.SlotAt = ord.SlotAt.UTC().Format(time.RFC3339)
	}
	return ev
}

// publish declares the durable queue and sends one persistent message.
// The connection is short-lived; checkout publishes at human rates, so
// dialing per event keeps the publisher free of connection state.
func (p *EventPublisher) publish(ctx context.Context, ev queue.OrderEvent) {
	if p.url == "" {
		return
	}
	conn, err := amqp.Dial(p.url)
	if err != nil {
		log.Printf("rabbitmq: dial failed: %v", err)
		return
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		log.Printf("rabbitmq: channel open failed: %v", err)
		return
	}
	defer func() { _ = ch.Close() }()

	// Ensure the queue exists (idempotent). Durable so messages survive broker restarts.
	if _, err := ch.QueueDeclare(queue.OrderEventsQueue, true, false, false, false, nil); err != nil {
		log.Printf("rabbitmq: queue declare failed: %v", err)
		return
	}

	body, err := json.Marshal(ev)
	if err != nil {
		log.Printf("rabbitmq: marshal event failed: %v", err)
		return
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent, // store on disk
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}

	if err := ch.PublishWithContext(ctx,
		"",                     // default exchange
		queue.OrderEventsQueue, // routing key = queue name
		false,                  // mandatory
		false,                  // immediate
		pub,
	); err != nil {
		log.Printf("rabbitmq: publish failed: %v", err)
	}
}
