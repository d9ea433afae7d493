package handler // declare the package name; contains HTTP handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/keyvanfa/tableside/internal/checkout"
	"github.com/keyvanfa/tableside/internal/fault"
)

// getUserID extracts the authenticated user's id from the Echo context.
// JWTAuth stores it as a uint64; a missing or mistyped value means the
// route was registered without the middleware, which is a server error
// surfaced as unauthorized.
func getUserID(c echo.Context) (uint64, error) {
	id, ok := c.Get("user_id").(uint64)
	if !ok || id == 0 {
		return 0, echo.ErrUnauthorized
	}
	return id, nil
}

// getActor builds the checkout actor from the JWT claims stored in
// context.
func getActor(c echo.Context) (checkout.Actor, error) {
	id, err := getUserID(c)
	if err != nil {
		return checkout.Actor{}, err
	}
	role, _ := c.Get("role").(string)
	return checkout.Actor{UserID: id, Role: role}, nil
}

// faultStatus maps the business error kinds onto HTTP status codes.
// Anything unmatched is an internal error; its detail stays out of the
// response body.
func faultStatus(err error) int {
	switch {
	case errors.Is(err, fault.ErrValidation),
		errors.Is(err, fault.ErrEmptyCart),
		errors.Is(err, fault.ErrItemUnavailable),
		errors.Is(err, fault.ErrInvalidSelection),
		errors.Is(err, fault.ErrMixedRestaurants),
		errors.Is(err, fault.ErrOutOfRange):
		return http.StatusBadRequest
	case errors.Is(err, fault.ErrOfferNotEligible),
		errors.Is(err, fault.ErrPolicyViolation):
		return http.StatusUnprocessableEntity
	case errors.Is(err, fault.ErrSlotContended),
		errors.Is(err, fault.ErrSlotAlreadyBooked),
		errors.Is(err, fault.ErrPriceMismatch),
		errors.Is(err, fault.ErrPaymentNotCompleted):
		return http.StatusConflict
	case errors.Is(err, fault.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, fault.ErrNotFound),
		errors.Is(err, fault.ErrUnknownSession):
		return http.StatusNotFound
	case errors.Is(err, fault.ErrUpstreamUnavailable):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes the standard error envelope for a business error.
func respondError(c echo.Context, err error) error {
	status := faultStatus(err)
	if status == http.StatusInternalServerError {
		c.Logger().Errorf("internal error: %v", err)
		return c.JSON(status, echo.Map{"error": "internal error"})
	}
	return c.JSON(status, echo.Map{"error": err.Error()})
}
