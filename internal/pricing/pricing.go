// Package pricing computes the priced breakdown of an order or booking.
// Every function here is pure: no I/O, no clock, no globals. The same
// inputs always produce byte-identical output, which the confirmation
// path relies on when it re-derives the authoritative price and
// compares it against the amount the provider actually captured.
//
// All amounts are integer cents. Where a fractional rate applies
// (handling, percentage discounts, per-km fees) the result is rounded
// half-up to whole cents once, at the derived field, and never
// re-rounded from already-rounded intermediates.
package pricing

import (
	"math"

	"github.com/keyvanfa/tableside/internal/model"
)

// roundHalfUpCents rounds a fractional cent amount half-up to a whole
// number of cents.
func roundHalfUpCents(v float64) int64 {
	return int64(math.Floor(v + 0.5))
}

// Subtotal sums the line totals of the priced lines.
func Subtotal(lines []model.PricedLine) int64 {
	var sum int64
	for _, l := range lines {
		sum += l.LineTotalCents
	}
	return sum
}

// OfferApplies reports whether the offer's minimum order value is met
// by the given subtotal. Callers must reject an inapplicable offer
// outright instead of applying a zero discount.
func OfferApplies(offer *model.Offer, subtotalCents int64) bool {
	if offer == nil {
		return false
	}
	return subtotalCents >= offer.MinOrderCents
}

// Discount computes the discount in cents for an offer against a
// subtotal and delivery fee. It assumes the caller has already checked
// OfferApplies. The returned value is clamped so it never exceeds
// subtotal + handling, except for FREE_DELIVERY which discounts exactly
// the delivery fee.
func Discount(offer *model.Offer, subtotalCents, handlingCents, deliveryFeeCents int64) int64 {
	if offer == nil {
		return 0
	}
	var d int64
	switch offer.Type {
	case model.OfferPercentage:
		d = roundHalfUpCents(float64(subtotalCents) * offer.Percent / 100)
		if offer.MaxDiscountCents > 0 && d > offer.MaxDiscountCents {
			d = offer.MaxDiscountCents
		}
	case model.OfferFlat:
		d = offer.AmountCents
	case model.OfferFreeDelivery:
		// The delivery fee itself is credited back; no clamp against
		// subtotal applies to a fee-only discount.
		return deliveryFeeCents
	default:
		return 0
	}
	if max := subtotalCents + handlingCents; d > max {
		d = max
	}
	if d < 0 {
		d = 0
	}
	return d
}

// Compute derives the full quote for a set of priced lines. The
// delivery fee is precomputed by the caller (zero for bookings and
// pickup). A nil offer means no discount. The total is never negative.
func Compute(lines []model.PricedLine, settings model.RestaurantSettings, offer *model.Offer, deliveryFeeCents int64) model.Quote {
	subtotal := Subtotal(lines)
	handling := roundHalfUpCents(float64(subtotal) * settings.HandlingRate)
	discount := Discount(offer, subtotal, handling, deliveryFeeCents)
	total := subtotal + handling + deliveryFeeCents - discount
	if total < 0 {
		total = 0
	}
	return model.Quote{
		SubtotalCents:    subtotal,
		HandlingCents:    handling,
		DeliveryFeeCents: deliveryFeeCents,
		DiscountCents:    discount,
		TotalCents:       total,
	}
}

// BookingQuote prices a table booking: a per-guest deposit with no
// handling, delivery or discount components.
func BookingQuote(settings model.RestaurantSettings, partySize uint32) model.Quote {
	total := settings.BookingDepositCents * int64(partySize)
	return model.Quote{
		SubtotalCents: total,
		TotalCents:    total,
	}
}
