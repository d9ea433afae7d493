package checkout

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/keyvanfa/tableside/internal/cart"
	"github.com/keyvanfa/tableside/internal/fault"
	"github.com/keyvanfa/tableside/internal/model"
	"github.com/keyvanfa/tableside/internal/payment"
	"github.com/keyvanfa/tableside/internal/pricing"
)

// CartCheckoutRequest starts checkout of the customer's cart.
type CartCheckoutRequest struct {
	UserID    uint64
	OfferCode string
	DeliverTo model.Coordinates
}

// BookingRequest starts checkout of a table slot.
type BookingRequest struct {
	UserID       uint64
	RestaurantID uint64
	SlotAt       time.Time
	PartySize    uint32
}

// InitiateResult is returned to the client so it can redirect the
// customer to the provider's payment page. The quoted total always
// equals the amount the payment session was opened with.
type InitiateResult struct {
	OrderID     uint64      `json:"order_id"`
	Number      string      `json:"number"`
	SessionID   string      `json:"session_id"`
	RedirectURL string      `json:"redirect_url"`
	Quote       model.Quote `json:"quote"`
}

// Initiator validates and prices a cart or booking request, opens the
// external payment session for the exact quoted amount, and persists
// the pending record — all before the customer is ever charged. A
// failed initiation never creates a payment session.
type Initiator struct {
	store        Store
	catalog      cart.Catalog
	materializer *cart.Materializer
	provider     payment.Provider
	cfg          Config
	now          func() time.Time
}

// NewInitiator constructs an Initiator. All dependencies must be
// non-nil.
func NewInitiator(store Store, catalog cart.Catalog, provider payment.Provider, cfg Config) *Initiator {
	if store == nil || catalog == nil || provider == nil {
		panic("nil dependency passed to NewInitiator")
	}
	return &Initiator{
		store:        store,
		catalog:      catalog,
		materializer: cart.NewMaterializer(catalog),
		provider:     provider,
		cfg:          cfg,
		now:          time.Now,
	}
}

// newNumber generates a human-facing unique order/booking number.
func newNumber(prefix string) string {
	return prefix + "-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:12])
}

// InitiateCart prices the customer's cart authoritatively and opens a
// payment session for it. The pending order snapshot carries the
// priced lines, the delivery coordinates and the applied offer so the
// confirmation path can re-derive the price from current catalog
// state.
func (i *Initiator) InitiateCart(ctx context.Context, req CartCheckoutRequest) (*InitiateResult, error) {
	lines, err := i.store.CartLines(ctx, req.UserID)
	if err != nil {
		return nil, err
	}
	restaurantID, priced, err := i.materializer.Materialize(ctx, lines)
	if err != nil {
		return nil, err
	}
	settings, err := i.catalog.Settings(ctx, restaurantID)
	if err != nil {
		return nil, err
	}

	var offer *model.Offer
	if req.OfferCode != "" {
		offer, err = i.catalog.OfferByCode(ctx, restaurantID, req.OfferCode)
		if err != nil {
			return nil, err
		}
		if !offer.Active {
			return nil, fmt.Errorf("%w: offer %s is not active", fault.ErrValidation, offer.Code)
		}
		if !pricing.OfferApplies(offer, pricing.Subtotal(priced)) {
			return nil, fault.ErrOfferNotEligible
		}
	}

	deliveryFee, err := pricing.DeliveryFee(settings.Location, req.DeliverTo, settings.Delivery)
	if err != nil {
		return nil, err
	}
	quote := pricing.Compute(priced, *settings, offer, deliveryFee)

	ord := &model.Order{
		Number:         newNumber("ORD"),
		UserID:         req.UserID,
		RestaurantID:   restaurantID,
		Kind:           model.KindOrder,
		Status:         model.StatusPending,
		PaymentStatus:  model.PaymentUnpaid,
		IdempotencyKey: uuid.NewString(),
		DeliverTo:      &req.DeliverTo,
		Pricing:        quote,
		Lines:          priced,
	}
	if offer != nil {
		id := offer.ID
		ord.OfferID = &id
	}
	return i.open(ctx, ord, false)
}

// InitiateBooking prices a table booking deposit and opens a payment
// session for it. The reservation lock for the slot is acquired inside
// the same storage transaction as the pending record; losing the lock
// race returns fault.ErrSlotContended before any session is created.
func (i *Initiator) InitiateBooking(ctx context.Context, req BookingRequest) (*InitiateResult, error) {
	if req.PartySize == 0 {
		return nil, fmt.Errorf("%w: party size must be at least 1", fault.ErrValidation)
	}
	if !req.SlotAt.After(i.now().UTC()) {
		return nil, fmt.Errorf("%w: slot must be in the future", fault.ErrValidation)
	}
	settings, err := i.catalog.Settings(ctx, req.RestaurantID)
	if err != nil {
		return nil, err
	}
	quote := pricing.BookingQuote(*settings, req.PartySize)

	slot := req.SlotAt.UTC()
	ord := &model.Order{
		Number:         newNumber("BKG"),
		UserID:         req.UserID,
		RestaurantID:   req.RestaurantID,
		Kind:           model.KindBooking,
		SlotAt:         &slot,
		PartySize:      req.PartySize,
		Status:         model.StatusPending,
		PaymentStatus:  model.PaymentUnpaid,
		IdempotencyKey: uuid.NewString(),
		Pricing:        quote,
	}
	return i.open(ctx, ord, i.cfg.SlotLockingEnabled)
}

// open persists the pending record and opens the payment session in
// one storage transaction. Any failure rolls both back together.
func (i *Initiator) open(ctx context.Context, ord *model.Order, acquireLock bool) (*InitiateResult, error) {
	sess, err := i.store.CreatePending(ctx, ord, acquireLock, func(ctx context.Context) (*payment.Session, error) {
		return i.provider.CreateSession(ctx, ord.Pricing.TotalCents, i.cfg.Currency, map[string]string{
			"user_id":         fmt.Sprintf("%d", ord.UserID),
			"number":          ord.Number,
			"kind":            string(ord.Kind),
			"idempotency_key": ord.IdempotencyKey,
		})
	})
	if err != nil {
		return nil, err
	}
	return &InitiateResult{
		OrderID:     ord.ID,
		Number:      ord.Number,
		SessionID:   sess.ID,
		RedirectURL: sess.RedirectURL,
		Quote:       ord.Pricing,
	}, nil
}
