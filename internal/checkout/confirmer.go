package checkout

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/keyvanfa/tableside/internal/cart"
	"github.com/keyvanfa/tableside/internal/fault"
	"github.com/keyvanfa/tableside/internal/model"
	"github.com/keyvanfa/tableside/internal/payment"
	"github.com/keyvanfa/tableside/internal/pricing"
)

// confirmedCacheTTL bounds the Redis replay fast-path entries. The
// database idempotency check remains the authority; the cache only
// spares a provider round-trip on webhook redeliveries.
const confirmedCacheTTL = 24 * time.Hour

// Confirmer is the idempotent entry point invoked once the payment
// provider reports success for a session. It re-derives the
// authoritative price from current catalog state, verifies it against
// the amount actually captured, and commits the order or booking in a
// single storage transaction. It is safe to invoke any number of times
// for the same session: at most one record is ever confirmed.
type Confirmer struct {
	store    Store
	catalog  cart.Catalog
	mat      *cart.Materializer
	provider payment.Provider
	notifier Notifier
	cache    *redis.Client
	cfg      Config
}

// NewConfirmer constructs a Confirmer. notifier and cache may be nil;
// both paths degrade gracefully.
func NewConfirmer(store Store, catalog cart.Catalog, provider payment.Provider, notifier Notifier, cache *redis.Client, cfg Config) *Confirmer {
	if store == nil || catalog == nil || provider == nil {
		panic("nil dependency passed to NewConfirmer")
	}
	return &Confirmer{
		store:    store,
		catalog:  catalog,
		mat:      cart.NewMaterializer(catalog),
		provider: provider,
		notifier: notifier,
		cache:    cache,
		cfg:      cfg,
	}
}

func confirmedKey(sessionID string) string { return "tableside:confirmed:" + sessionID }

// Confirm processes a payment-completed callback for a session.
// Replays return the already-committed record without side effects.
// Any transient failure leaves the record PENDING and returns an
// error; the provider's redelivery retries the callback safely.
func (c *Confirmer) Confirm(ctx context.Context, sessionID string) (*model.Order, error) {
	// Redelivery fast path: a session seen before skips the provider
	// round-trip. Cache errors are ignored; the DB check below decides.
	if c.cache != nil {
		if hit, err := c.cache.Exists(ctx, confirmedKey(sessionID)).Result(); err == nil && hit > 0 {
			if ord, err := c.store.BySession(ctx, sessionID); err == nil {
				return ord, nil
			}
		}
	}

	ord, err := c.store.BySession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if ord.Status != model.StatusPending {
		// Already confirmed (or already resolved as a losing race):
		// idempotent replay, no side effects.
		return ord, nil
	}

	sess, err := c.provider.RetrieveSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if sess.PaymentStatus != payment.StatusPaid {
		return nil, fault.ErrPaymentNotCompleted
	}

	quote, err := c.rederive(ctx, ord)
	if err != nil {
		return nil, err
	}
	diff := quote.TotalCents - sess.AmountCents
	if diff < 0 {
		diff = -diff
	}
	if diff > c.cfg.PriceToleranceCents {
		log.Printf("checkout: price mismatch on session %s: derived=%d captured=%d (order %s); escalating for reconciliation",
			sessionID, quote.TotalCents, sess.AmountCents, ord.Number)
		return nil, fmt.Errorf("%w: derived %d, captured %d", fault.ErrPriceMismatch, quote.TotalCents, sess.AmountCents)
	}

	if err := c.store.Confirm(ctx, ord.ID, sess.PaymentRef, quote); err != nil {
		if errors.Is(err, fault.ErrSlotAlreadyBooked) {
			return nil, c.loseSlotRace(ctx, ord, sess)
		}
		return nil, err
	}

	ord.Status = model.StatusConfirmed
	ord.PaymentStatus = model.PaymentPaid
	ord.Pricing = quote
	ref := sess.PaymentRef
	ord.PaymentRef = &ref

	if c.cache != nil {
		if err := c.cache.Set(ctx, confirmedKey(sessionID), ord.ID, confirmedCacheTTL).Err(); err != nil {
			log.Printf("checkout: cache confirmed session %s: %v", sessionID, err)
		}
	}
	if c.notifier != nil {
		c.notifier.OrderConfirmed(ctx, ord)
	}
	return ord, nil
}

// loseSlotRace resolves a confirmation that lost against a concurrent
// booking on the same slot: the captured payment is refunded and the
// pending record is closed out. If the refund fails the record stays
// PENDING and the callback redelivery retries the whole flow.
func (c *Confirmer) loseSlotRace(ctx context.Context, ord *model.Order, sess *payment.Session) error {
	refundStatus, err := c.provider.Refund(ctx, sess.PaymentRef)
	if err != nil {
		return fmt.Errorf("refund after losing slot race: %w", err)
	}
	if err := c.store.MarkCancelled(ctx, ord.ID, model.StatusCancelledByOwner, refundStatus); err != nil {
		return err
	}
	log.Printf("checkout: booking %s lost slot race, payment %s refunded (%s)", ord.Number, sess.PaymentRef, refundStatus)
	return fault.ErrSlotAlreadyBooked
}

// rederive recomputes the authoritative price from current catalog and
// restaurant state. The quote stored at initiation is never trusted:
// catalog prices or settings may have changed while the customer was
// paying, and a divergence must surface as a price mismatch.
func (c *Confirmer) rederive(ctx context.Context, ord *model.Order) (model.Quote, error) {
	settings, err := c.catalog.Settings(ctx, ord.RestaurantID)
	if err != nil {
		return model.Quote{}, err
	}
	if ord.Kind == model.KindBooking {
		return pricing.BookingQuote(*settings, ord.PartySize), nil
	}

	lines := make([]model.CartLine, 0, len(ord.Lines))
	for _, l := range ord.Lines {
		lines = append(lines, model.CartLine{
			UserID:    ord.UserID,
			ItemID:    l.ItemID,
			Quantity:  l.Quantity,
			Selection: l.Selection,
		})
	}
	_, priced, err := c.mat.Materialize(ctx, lines)
	if err != nil {
		return model.Quote{}, err
	}

	var offer *model.Offer
	if ord.OfferID != nil {
		offer, err = c.catalog.Offer(ctx, *ord.OfferID)
		if err != nil && !errors.Is(err, fault.ErrNotFound) {
			return model.Quote{}, err
		}
		if offer != nil && (!offer.Active || !pricing.OfferApplies(offer, pricing.Subtotal(priced))) {
			// A withdrawn offer makes the derived price diverge from
			// the quote; the tolerance check surfaces it as a mismatch.
			offer = nil
		}
	}

	var deliveryFee int64
	if ord.DeliverTo != nil {
		deliveryFee, err = pricing.DeliveryFee(settings.Location, *ord.DeliverTo, settings.Delivery)
		if err != nil {
			return model.Quote{}, err
		}
	}
	return pricing.Compute(priced, *settings, offer, deliveryFee), nil
}
