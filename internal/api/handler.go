package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// RegisterRoutes wires the HTTP surface onto e. requireAuth guards the
// /orders group; it is the only authorization gate in the system.
func RegisterRoutes(e *echo.Echo, users *UserHandler, orders *OrderHandler, requireAuth echo.MiddlewareFunc) {
	e.HTTPErrorHandler = errorHandler

	auth := e.Group("/auth")
	auth.POST("/register", users.Register)
	auth.POST("/login", users.Login)

	g := e.Group("/orders", requireAuth)
	g.GET("/", orders.ListOrders)
	g.POST("/", orders.CreateOrder)

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]interface{}{
			"status":  "ok",
			"service": "order-management-service",
			"time":    time.Now().Format(time.RFC3339),
		})
	})
}

// errorHandler renders every unhandled error as {"error": <message>}.
// Internal failures collapse to a generic message.
func errorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	message := "Internal Server Error"

	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		code = httpErr.Code
		switch code {
		case http.StatusBadRequest:
			message = "Bad Request"
		case http.StatusNotFound:
			message = "Resource Not Found"
		case http.StatusInternalServerError:
			message = "Internal Server Error"
		default:
			if m, ok := httpErr.Message.(string); ok {
				message = m
			}
		}
	}

	_ = c.JSON(code, map[string]string{"error": message})
}
