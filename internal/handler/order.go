package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/keyvanfa/tableside/internal/checkout"
	"github.com/keyvanfa/tableside/internal/fault"
	"github.com/keyvanfa/tableside/internal/model"
	"github.com/keyvanfa/tableside/internal/repository"
)

// OrderHandler serves order and booking retrieval plus the cancellation
// endpoints.  Retrieval is scoped to the caller: customers see their own
// records, owners the records of their restaurant.
type OrderHandler struct {
	Store     *repository.Store
	Canceller *checkout.Canceller
}

// NewOrderHandler constructs an OrderHandler.  All dependencies must be
// non-nil.
func NewOrderHandler(store *repository.Store, canceller *checkout.Canceller) *OrderHandler {
	if store == nil || canceller == nil {
		panic("nil dependency passed to NewOrderHandler")
	}
	return &OrderHandler{Store: store, Canceller: canceller}
}

func orderIDParam(c echo.Context) (uint64, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, fault.ErrValidation
	}
	return id, nil
}

// List handles GET /v1/orders and returns the caller's order history,
// newest first.
func (h *OrderHandler) List(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	orders, err := h.Store.ListByUser(c.Request().Context(), userID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"orders": orders})
}

// Get handles GET /v1/orders/:id.  The record is returned to its payer
// or to the owner of the restaurant it targets; everyone else sees 404
// so record ids cannot be probed.
func (h *OrderHandler) Get(c echo.Context) error {
	actor, err := getActor(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	orderID, err := orderIDParam(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid order id"})
	}
	ctx := c.Request().Context()
	ord, err := h.Store.ByID(ctx, orderID)
	if err != nil {
		return respondError(c, err)
	}
	if !h.visible(c, ord, actor) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
	}
	return c.JSON(http.StatusOK, ord)
}

// visible reports whether the actor may read the record.
func (h *OrderHandler) visible(c echo.Context, ord *model.Order, actor checkout.Actor) bool {
	if actor.Role == checkout.RoleCustomer {
		return ord.UserID == actor.UserID
	}
	if actor.Role == checkout.RoleOwner {
		ownerID, err := h.Store.OwnerID(c.Request().Context(), ord.RestaurantID)
		return err == nil && ownerID == actor.UserID
	}
	return false
}

// Cancel handles POST /v1/orders/:id/cancel.  Both roles use this
// endpoint; the refund is issued inside the cancellation transaction, so
// a provider outage leaves the record confirmed and the call retryable.
func (h *OrderHandler) Cancel(c echo.Context) error {
	actor, err := getActor(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	orderID, err := orderIDParam(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid order id"})
	}
	refundStatus, err := h.Canceller.Cancel(c.Request().Context(), orderID, actor)
	if err != nil {
		return respondError(c, err)
	}
	resp := echo.Map{"result": "cancelled"}
	if refundStatus != "" {
		resp["refund_status"] = refundStatus
	}
	return c.JSON(http.StatusOK, resp)
}

// Reject handles POST /v1/orders/:id/reject, the owner-side refusal of
// a confirmed order.  Routing restricts it to the OWNER role.
func (h *OrderHandler) Reject(c echo.Context) error {
	actor, err := getActor(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	orderID, err := orderIDParam(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid order id"})
	}
	refundStatus, err := h.Canceller.Reject(c.Request().Context(), orderID, actor)
	if err != nil {
		return respondError(c, err)
	}
	resp := echo.Map{"result": "rejected"}
	if refundStatus != "" {
		resp["refund_status"] = refundStatus
	}
	return c.JSON(http.StatusOK, resp)
}
