package router

import (
	"github.com/labstack/echo/v4"

	"github.com/keyvanfa/tableside/internal/handler"
	"github.com/keyvanfa/tableside/internal/middleware"
)

// RegisterOwner registers owner-scoped endpoints under /v1/owner.  All
// routes require a valid JWT and the OWNER role; per-restaurant
// authorization happens in the handlers against the restaurant's
// owner_id.
func RegisterOwner(e *echo.Echo, orders *handler.OrderHandler, jwtSecret string) {
	g := e.Group(
		"/v1/owner",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole("OWNER"),
	)

	// Owners inspect and act on orders placed against their restaurant.
	g.GET("/orders/:id", orders.Get)
	g.POST("/orders/:id/cancel", orders.Cancel)
	g.POST("/orders/:id/reject", orders.Reject)
}
