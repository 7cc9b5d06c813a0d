package service

import (
	"context"
	"fmt"

	"storefront-service/internal/core/domain"
	"storefront-service/internal/obs"
	"storefront-service/internal/port"
)

type OrderService struct {
	db      port.DatabaseRepository
	guard   port.IdempotencyGuard
	metrics port.MetricsObserver
}

// NewOrderService wires the order placement flow. guard may be nil, in which
// case duplicate submissions are not detected.
func NewOrderService(db port.DatabaseRepository, guard port.IdempotencyGuard, metrics port.MetricsObserver) *OrderService {
	return &OrderService{db: db, guard: guard, metrics: metrics}
}

// PlaceOrder validates the request and delegates the atomic insert-and-decrement
// to the repository. idempotencyKey is optional; when present and already seen,
// the placement is rejected before touching stock.
func (s *OrderService) PlaceOrder(ctx context.Context, productID int64, quantity int, idempotencyKey string) (*domain.Order, error) {
	if productID <= 0 {
		return nil, fmt.Errorf("%w: product_id must be positive", domain.ErrInvalidRequest)
	}
	if quantity <= 0 {
		return nil, fmt.Errorf("%w: quantity must be positive", domain.ErrInvalidRequest)
	}

	if s.guard != nil && idempotencyKey != "" {
		ok, err := s.guard.SetIdempotency(ctx, idempotencyKey)
		if err != nil {
			return nil, fmt.Errorf("idempotency check: %w", err)
		}
		if !ok {
			return nil, domain.ErrDuplicateOrder
		}
	}

	order, err := s.db.PlaceOrder(ctx, productID, quantity)
	if err != nil {
		return nil, err
	}

	s.metrics.OrderPlaced(order.TotalPrice)
	obs.Logger.Info("order_placed",
		"order_id", order.ID,
		"product_id", order.ProductID,
		"quantity", order.Quantity,
		"total_price", order.TotalPrice,
	)
	return order, nil
}
