package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // import the Echo web framework to handle routing

	"github.com/keyvanfa/tableside/internal/handler" // import the handlers that implement business logic
)

// RegisterRoutes registers routes that do not require authentication on
// the provided Echo instance: the health check and the payment
// provider's webhook.  The webhook authenticates itself with an HMAC
// signature instead of a JWT, so it must stay outside the auth groups.
func RegisterRoutes(e *echo.Echo, wh *handler.WebhookHandler) {
	// Used by load balancers and monitoring systems to verify that the
	// service is up and running.
	e.GET("/healthz", handler.Health)
	// The provider's asynchronous payment-completed callback.
	e.POST("/v1/payments/webhook", wh.Handle)
}
