// Package fault defines the sentinel errors shared by the ordering and
// booking core. Handlers and services compare against these values with
// errors.Is and translate them into HTTP responses, so every expected
// business outcome is an explicit error kind rather than control flow
// hidden in a panic or a distant recover. Wrapping with fmt.Errorf("%w")
// is encouraged to attach detail while keeping the kind matchable.
package fault

import "errors"

// ErrValidation is returned for malformed or missing input that the
// client can correct and resubmit. Handlers should translate this into
// an HTTP 400 response.
var ErrValidation = errors.New("validation failed")

// ErrEmptyCart is returned when a checkout is attempted on a cart with
// no lines.
var ErrEmptyCart = errors.New("cart is empty")

// ErrItemUnavailable is returned when a cart references an item that is
// no longer available in the catalog. Checkout must fail fast rather
// than silently drop the line.
var ErrItemUnavailable = errors.New("item unavailable")

// ErrInvalidSelection is returned when a cart line references a variant
// or addon id that does not exist on the item.
var ErrInvalidSelection = errors.New("invalid variant or addon selection")

// ErrMixedRestaurants is returned when cart lines span more than one
// restaurant. Mixed carts are a hard validation error, never split.
var ErrMixedRestaurants = errors.New("cart spans multiple restaurants")

// ErrOfferNotEligible is returned when a promotional offer is requested
// but the cart subtotal is below the offer's minimum order value. The
// offer is rejected outright instead of silently applying zero discount.
var ErrOfferNotEligible = errors.New("offer minimum order value not met")

// ErrOutOfRange is returned by the delivery fee calculator when the
// delivery address lies beyond the restaurant's maximum radius.
var ErrOutOfRange = errors.New("address outside delivery radius")

// ErrSlotContended is returned when another checkout already holds the
// reservation lock for the same table and time. The client should retry
// with a different slot; no payment session was created.
var ErrSlotContended = errors.New("slot is being checked out by someone else")

// ErrSlotAlreadyBooked is returned when a confirmed booking already
// occupies the slot at confirmation time. The losing payment is
// refunded automatically.
var ErrSlotAlreadyBooked = errors.New("slot already booked")

// ErrUnknownSession is returned when a payment callback references a
// session id with no pending or confirmed record behind it.
var ErrUnknownSession = errors.New("unknown payment session")

// ErrPaymentNotCompleted is returned when the provider reports the
// session as unpaid at confirmation time. Nothing is committed.
var ErrPaymentNotCompleted = errors.New("payment not completed")

// ErrPriceMismatch is an integrity fault: the amount captured by the
// provider diverges from the re-derived authoritative price beyond the
// rounding tolerance. It is never auto-resolved and requires manual
// reconciliation.
var ErrPriceMismatch = errors.New("captured amount does not match derived price")

// ErrPolicyViolation is returned when a cancellation is requested
// outside the allowed window or past the cancellable lifecycle states.
var ErrPolicyViolation = errors.New("operation violates policy")

// ErrForbidden is returned when the caller is neither the payer nor the
// owner of the resource being acted on. Handlers should translate this
// into an HTTP 403 response.
var ErrForbidden = errors.New("forbidden")

// ErrNotFound is returned when the referenced record does not exist.
var ErrNotFound = errors.New("not found")

// ErrUpstreamUnavailable is returned when the payment provider or the
// datastore fails transiently. The operation is safe to retry; for
// payment callbacks the provider's own redelivery performs the retry.
var ErrUpstreamUnavailable = errors.New("upstream unavailable")
