package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/keyvanfa/tableside/internal/cart"
	"github.com/keyvanfa/tableside/internal/fault"
	"github.com/keyvanfa/tableside/internal/model"
	"github.com/keyvanfa/tableside/internal/pricing"
	"github.com/keyvanfa/tableside/internal/repository"
)

// CartHandler serves the cart management endpoints.  Carts store only
// references (item, quantity, selection); every read prices them against
// the current catalog so a stale price can never be displayed, let alone
// charged.
type CartHandler struct {
	Carts        *repository.CartRepo
	Materializer *cart.Materializer
}

// NewCartHandler constructs a CartHandler.  All dependencies must be
// non-nil.
func NewCartHandler(carts *repository.CartRepo, mat *cart.Materializer) *CartHandler {
	if carts == nil || mat == nil {
		panic("nil dependency passed to NewCartHandler")
	}
	return &CartHandler{Carts: carts, Materializer: mat}
}

// View handles GET /v1/cart.  It returns the cart lines priced against
// the current catalog together with the running subtotal.  An empty cart
// returns an empty list rather than an error.
func (h *CartHandler) View(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ctx := c.Request().Context()
	lines, err := h.Carts.LinesByUser(ctx, userID)
	if err != nil {
		return respondError(c, err)
	}
	if len(lines) == 0 {
		return c.JSON(http.StatusOK, echo.Map{"lines": []model.PricedLine{}, "subtotal_cents": 0})
	}
	restaurantID, priced, err := h.Materializer.Materialize(ctx, lines)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"restaurant_id":  restaurantID,
		"lines":          priced,
		"subtotal_cents": pricing.Subtotal(priced),
	})
}

// AddLine handles POST /v1/cart/items.  The body carries the item id,
// quantity and option selection.  The line is validated by pricing it in
// isolation, so an unknown item, a foreign variant or a dead addon id is
// rejected before it ever pollutes the cart.
func (h *CartHandler) AddLine(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var body struct {
		ItemID    uint64   `json:"item_id"`
		Quantity  uint32   `json:"quantity"`
		VariantID *uint64  `json:"variant_id"`
		AddonIDs  []uint64 `json:"addon_ids"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if body.ItemID == 0 || body.Quantity == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "item_id and quantity are required"})
	}
	line := model.CartLine{
		UserID:   userID,
		ItemID:   body.ItemID,
		Quantity: body.Quantity,
		Selection: model.Selection{
			VariantID: body.VariantID,
			AddonIDs:  body.AddonIDs,
		},
	}
	ctx := c.Request().Context()
	if _, _, err := h.Materializer.Materialize(ctx, []model.CartLine{line}); err != nil {
		if errors.Is(err, fault.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "item not found"})
		}
		return respondError(c, err)
	}
	if err := h.Carts.AddLine(ctx, &line); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"line_id": line.ID})
}

// UpdateLine handles PATCH /v1/cart/items/:id to change a line's
// quantity.  A quantity of zero removes the line.
func (h *CartHandler) UpdateLine(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	lineID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || lineID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid line id"})
	}
	var body struct {
		Quantity uint32 `json:"quantity"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	ctx := c.Request().Context()
	if body.Quantity == 0 {
		err = h.Carts.RemoveLine(ctx, userID, lineID)
	} else {
		err = h.Carts.SetQuantity(ctx, userID, lineID, body.Quantity)
	}
	if err != nil {
		if errors.Is(err, fault.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "cart line not found"})
		}
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// RemoveLine handles DELETE /v1/cart/items/:id.
func (h *CartHandler) RemoveLine(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	lineID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || lineID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid line id"})
	}
	if err := h.Carts.RemoveLine(c.Request().Context(), userID, lineID); err != nil {
		if errors.Is(err, fault.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "cart line not found"})
		}
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// Clear handles DELETE /v1/cart and empties the cart.
func (h *CartHandler) Clear(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	if err := h.Carts.Clear(c.Request().Context(), userID); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
