package router

import (
	"github.com/labstack/echo/v4"

	"github.com/keyvanfa/tableside/internal/handler"
	"github.com/keyvanfa/tableside/internal/middleware"
)

// RegisterCustomer registers customer-scoped endpoints under /v1.  All
// routes require a valid JWT and the CUSTOMER role.  Customers manage
// their cart, start cart and booking checkouts, and view or cancel
// their own orders.
func RegisterCustomer(e *echo.Echo, carts *handler.CartHandler, co *handler.CheckoutHandler, orders *handler.OrderHandler, jwtSecret string) {
	g := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole("CUSTOMER"),
	)

	// Cart management.  Lines store references only; prices are derived
	// from the catalog on every read.
	g.GET("/cart", carts.View)
	g.POST("/cart/items", carts.AddLine)
	g.PATCH("/cart/items/:id", carts.UpdateLine)
	g.DELETE("/cart/items/:id", carts.RemoveLine)
	g.DELETE("/cart", carts.Clear)

	// Checkout initiation.  Both endpoints answer with the payment
	// redirect URL; nothing is committed until the provider's webhook
	// confirms the session.
	g.POST("/checkout/cart", co.Cart)
	g.POST("/checkout/booking", co.Booking)

	// Order history and customer-side cancellation.
	g.GET("/orders", orders.List)
	g.GET("/orders/:id", orders.Get)
	g.POST("/orders/:id/cancel", orders.Cancel)
}
