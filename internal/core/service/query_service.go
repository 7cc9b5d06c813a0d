package service

import (
	"context"

	"storefront-service/internal/core/domain"
	"storefront-service/internal/port"
)

// QueryService serves the read-only projections. It never mutates stored data;
// its only side effects are metrics observations.
type QueryService struct {
	db      port.DatabaseRepository
	metrics port.MetricsObserver
}

func NewQueryService(db port.DatabaseRepository, metrics port.MetricsObserver) *QueryService {
	return &QueryService{db: db, metrics: metrics}
}

func (s *QueryService) ListProducts(ctx context.Context) ([]domain.Product, error) {
	s.metrics.ProductRequest("/products")

	products, err := s.db.ListProducts(ctx)
	if err != nil {
		return nil, err
	}

	lowStock := 0
	for _, p := range products {
		if p.Stock < domain.LowStockThreshold {
			lowStock++
		}
	}
	if lowStock > 0 {
		s.metrics.LowStockObserved(lowStock)
	}
	return products, nil
}

func (s *QueryService) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	s.metrics.ProductRequest("/products/{id}")
	return s.db.GetProduct(ctx, id)
}

func (s *QueryService) ListOrders(ctx context.Context) ([]domain.OrderWithProduct, error) {
	return s.db.ListOrders(ctx)
}

func (s *QueryService) Stats(ctx context.Context) (*domain.Stats, error) {
	return s.db.Stats(ctx)
}
