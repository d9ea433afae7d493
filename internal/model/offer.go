package model

// OfferType enumerates the supported promotional offer kinds. The
// discount computation differs per kind; see the pricing package.
type OfferType string

const (
	// OfferPercentage discounts a percentage of the subtotal, capped by
	// an optional maximum discount ceiling.
	OfferPercentage OfferType = "PERCENTAGE"
	// OfferFlat discounts a fixed amount.
	OfferFlat OfferType = "FLAT"
	// OfferFreeDelivery zeroes the delivery fee and credits its value
	// as the discount.
	OfferFreeDelivery OfferType = "FREE_DELIVERY"
)

// Offer is a promotional offer attached to a restaurant. An offer only
// applies when the cart subtotal reaches MinOrderCents; below that the
// caller rejects the offer rather than silently applying zero discount.
//
// Fields:
//  ID               – primary key identifier.
//  RestaurantID     – restaurant the offer belongs to.
//  Code             – customer-facing promo code.
//  Type             – PERCENTAGE, FLAT or FREE_DELIVERY.
//  Percent          – percentage for PERCENTAGE offers (0–100).
//  AmountCents      – flat discount for FLAT offers.
//  MaxDiscountCents – optional ceiling for PERCENTAGE offers; 0 = none.
//  MinOrderCents    – minimum subtotal for the offer to apply.
//  Active           – whether the offer can currently be used.
type Offer struct {
	ID               uint64
	RestaurantID     uint64
	Code             string
	Type             OfferType
	Percent          float64
	AmountCents      int64
	MaxDiscountCents int64
	MinOrderCents    int64
	Active           bool
}
