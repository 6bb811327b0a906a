package service

import (
	"context"
	"errors"

	"order-management-service/internal/entity"
)

var (
	ErrInvalidQuantity  = errors.New("quantity must be a positive integer")
	ErrDuplicateRequest = errors.New("duplicate request")
)

// OrderRepository is the persistence surface the order service needs.
type OrderRepository interface {
	CreateOrder(ctx context.Context, order *entity.Order) (*entity.Order, error)
	ListOrdersByUser(ctx context.Context, userID int) ([]entity.Order, error)
}

// EventPublisher announces order lifecycle events.
type EventPublisher interface {
	PublishOrderCreated(ctx context.Context, order *entity.Order) error
}

// IdempotencyGuard claims request idempotency keys. Claim reports false
// when the key was already claimed within its window.
type IdempotencyGuard interface {
	Claim(ctx context.Context, key string) (bool, error)
}

// OrderService is a service that provides order-related operations.
type OrderService struct {
	repo      OrderRepository
	publisher EventPublisher   // optional
	guard     IdempotencyGuard // optional
}

// NewOrderService creates a new instance of OrderService. publisher and
// guard may be nil, which disables event publishing and the idempotency
// guard respectively.
func NewOrderService(repo OrderRepository, publisher EventPublisher, guard IdempotencyGuard) *OrderService {
	return &OrderService{repo: repo, publisher: publisher, guard: guard}
}

// Create validates the request and persists an order owned by userID.
// When the client supplied an Idempotent-Key header, a replay of the same
// key within the guard's window is rejected without touching the store.
func (s *OrderService) Create(ctx context.Context, userID int, req *entity.CreateOrderRequest) (*entity.Order, error) {
	if req.Item == "" || req.Quantity == nil {
		return nil, ErrMissingField
	}
	if *req.Quantity <= 0 {
		return nil, ErrInvalidQuantity
	}

	if s.guard != nil && req.IdempotentKey != "" {
		claimed, err := s.guard.Claim(ctx, req.IdempotentKey)
		if err != nil {
			return nil, err
		}
		if !claimed {
			return nil, ErrDuplicateRequest
		}
	}

	order := &entity.Order{
		UserID:   userID,
		Item:     req.Item,
		Quantity: *req.Quantity,
	}

	createdOrder, err := s.repo.CreateOrder(ctx, order)
	if err != nil {
		logger.Error().Err(err).Msg("Error creating order")
		return nil, err
	}

	if s.publisher != nil {
		// The order exists at this point; a broker hiccup must not fail
		// the request.
		if err := s.publisher.PublishOrderCreated(ctx, createdOrder); err != nil {
			logger.Warn().Err(err).Int("order_id", createdOrder.ID).Msg("Failed to publish order event")
		}
	}

	return createdOrder, nil
}

// List returns the orders owned by userID, oldest first.
func (s *OrderService) List(ctx context.Context, userID int) ([]entity.Order, error) {
	orders, err := s.repo.ListOrdersByUser(ctx, userID)
	if err != nil {
		logger.Error().Err(err).Msgf("Error listing orders for user %d", userID)
		return nil, err
	}

	return orders, nil
}
