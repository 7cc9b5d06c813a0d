package port

import (
	"context"

	"storefront-service/internal/core/domain"
)

type DatabaseRepository interface {
	// PlaceOrder inserts an order and decrements the product's stock as a
	// single transaction. The product row is re-read inside the transaction,
	// so the price used for the total is never stale.
	PlaceOrder(ctx context.Context, productID int64, quantity int) (*domain.Order, error)

	// GetProduct returns the product or domain.ErrProductNotFound.
	GetProduct(ctx context.Context, id int64) (*domain.Product, error)

	// ListProducts returns all products in id order.
	ListProducts(ctx context.Context) ([]domain.Product, error)

	// ListOrders returns all orders joined with their product name,
	// newest first.
	ListOrders(ctx context.Context) ([]domain.OrderWithProduct, error)

	// Stats aggregates counts and revenue across both tables.
	Stats(ctx context.Context) (*domain.Stats, error)
}
