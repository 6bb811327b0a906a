package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"order-management-service/internal/entity"
	"order-management-service/internal/repository"
	"order-management-service/internal/service"
)

type UserHandler struct {
	userService *service.UserService
}

// NewUserHandler creates a new instance of UserHandler
func NewUserHandler(userService *service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Register creates a new user --> POST /auth/register
func (h *UserHandler) Register(c echo.Context) error {
	creds := credentials{}
	if err := c.Bind(&creds); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request payload"})
	}

	_, err := h.userService.Register(c.Request().Context(), creds.Username, creds.Password)
	if err != nil {
		return serviceError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]string{"message": "User registered successfully"})
}

// Login logs in a user --> POST /auth/login
func (h *UserHandler) Login(c echo.Context) error {
	creds := credentials{}
	if err := c.Bind(&creds); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request payload"})
	}

	tkn, err := h.userService.Login(c.Request().Context(), creds.Username, creds.Password)
	if err != nil {
		return serviceError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]string{"token": tkn})
}

type OrderHandler struct {
	orderService *service.OrderService
}

func NewOrderHandler(orderService *service.OrderService) *OrderHandler {
	return &OrderHandler{orderService: orderService}
}

// CreateOrder creates an order owned by the authenticated user
// --> POST /orders/
func (h *OrderHandler) CreateOrder(c echo.Context) error {
	req := entity.CreateOrderRequest{}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request payload"})
	}
	req.IdempotentKey = c.Request().Header.Get("Idempotent-Key")

	order, err := h.orderService.Create(c.Request().Context(), UserID(c), &req)
	if err != nil {
		return serviceError(c, err)
	}

	return c.JSON(http.StatusCreated, map[string]interface{}{
		"message": "Order created successfully",
		"order":   order.Response(),
	})
}

// ListOrders lists the authenticated user's orders --> GET /orders/
func (h *OrderHandler) ListOrders(c echo.Context) error {
	orders, err := h.orderService.List(c.Request().Context(), UserID(c))
	if err != nil {
		return serviceError(c, err)
	}

	responses := make([]entity.OrderResponse, 0, len(orders))
	for i := range orders {
		responses = append(responses, orders[i].Response())
	}

	return c.JSON(http.StatusOK, responses)
}

// serviceError maps service failures onto the wire error shape. Unknown
// errors collapse to a bare 500 so no internal detail leaks.
func serviceError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, service.ErrMissingField),
		errors.Is(err, service.ErrInvalidQuantity),
		errors.Is(err, service.ErrUserExists):
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidCredentials):
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": err.Error()})
	case errors.Is(err, service.ErrDuplicateRequest):
		return c.JSON(http.StatusConflict, map[string]string{"error": err.Error()})
	case errors.Is(err, repository.ErrNotFound):
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Resource Not Found"})
	default:
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal Server Error"})
	}
}
