package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"storefront-service/internal/core/domain"
)

type MySQLAdapter struct {
	db *sql.DB
}

func NewMySQLAdapter(db *sql.DB) *MySQLAdapter {
	return &MySQLAdapter{db: db}
}

// Migrate creates the products and orders tables if they do not exist.
func (m *MySQLAdapter) Migrate(ctx context.Context) error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS products (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			price DOUBLE NOT NULL,
			stock INT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS orders (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			product_id BIGINT NOT NULL,
			quantity INT NOT NULL,
			total_price DOUBLE NOT NULL,
			order_date DATETIME(6) NOT NULL,
			INDEX idx_orders_product_id (product_id),
			INDEX idx_orders_order_date (order_date)
		)`,
	}

	for _, migration := range migrations {
		if _, err := m.db.ExecContext(ctx, migration); err != nil {
			return fmt.Errorf("run migration: %w", err)
		}
	}
	return nil
}

// Seed inserts the initial catalog once, if the products table is empty.
func (m *MySQLAdapter) Seed(ctx context.Context) error {
	var count int64
	if err := m.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM products`).Scan(&count); err != nil {
		return fmt.Errorf("count products: %w", err)
	}
	if count > 0 {
		return nil
	}

	seed := []struct {
		name  string
		price float64
		stock int
	}{
		{"Laptop", 15000, 50},
		{"Phone", 8000, 100},
		{"Headphones", 500, 200},
		{"Mouse", 150, 300},
		{"Keyboard", 800, 150},
	}

	for _, p := range seed {
		_, err := m.db.ExecContext(ctx,
			`INSERT INTO products (name, price, stock) VALUES (?, ?, ?)`,
			p.name, p.price, p.stock,
		)
		if err != nil {
			return fmt.Errorf("seed product %q: %w", p.name, err)
		}
	}
	return nil
}

// PlaceOrder runs the order insert and stock decrement in one transaction.
// The product row is locked and re-read inside the transaction so the stock
// check and the price used for the total cannot be stale; the decrement is
// additionally conditional on remaining stock so it can never go negative.
func (m *MySQLAdapter) PlaceOrder(ctx context.Context, productID int64, quantity int) (*domain.Order, error) {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var price float64
	var stock int
	err = tx.QueryRowContext(ctx,
		`SELECT price, stock FROM products WHERE id = ? FOR UPDATE`, productID,
	).Scan(&price, &stock)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrProductNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("lock product: %w", err)
	}

	if stock < quantity {
		return nil, domain.ErrInsufficientStock
	}

	order := domain.Order{
		ProductID:  productID,
		Quantity:   quantity,
		TotalPrice: price * float64(quantity),
		OrderDate:  time.Now().UTC(),
	}

	result, err := tx.ExecContext(ctx, `
		INSERT INTO orders (product_id, quantity, total_price, order_date)
		VALUES (?, ?, ?, ?)`,
		order.ProductID, order.Quantity, order.TotalPrice, order.OrderDate,
	)
	if err != nil {
		return nil, fmt.Errorf("insert order: %w", err)
	}
	order.ID, err = result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("order id: %w", err)
	}

	result, err = tx.ExecContext(ctx, `
		UPDATE products
		SET stock = stock - ?
		WHERE id = ? AND stock >= ?`,
		quantity, productID, quantity,
	)
	if err != nil {
		return nil, fmt.Errorf("decrement stock: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return nil, domain.ErrInsufficientStock
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return &order, nil
}

func (m *MySQLAdapter) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	var p domain.Product
	err := m.db.QueryRowContext(ctx,
		`SELECT id, name, price, stock FROM products WHERE id = ?`, id,
	).Scan(&p.ID, &p.Name, &p.Price, &p.Stock)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrProductNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query product: %w", err)
	}
	return &p, nil
}

func (m *MySQLAdapter) ListProducts(ctx context.Context) ([]domain.Product, error) {
	rows, err := m.db.QueryContext(ctx,
		`SELECT id, name, price, stock FROM products ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}
	defer rows.Close()

	var products []domain.Product
	for rows.Next() {
		var p domain.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Price, &p.Stock); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

func (m *MySQLAdapter) ListOrders(ctx context.Context) ([]domain.OrderWithProduct, error) {
	rows, err := m.db.QueryContext(ctx, `
		SELECT o.id, o.product_id, o.quantity, o.total_price, o.order_date, p.name
		FROM orders o
		JOIN products p ON o.product_id = p.id
		ORDER BY o.order_date DESC, o.id DESC`)
	if err != nil {
		return nil, fmt.Errorf("query orders: %w", err)
	}
	defer rows.Close()

	var orders []domain.OrderWithProduct
	for rows.Next() {
		var o domain.OrderWithProduct
		if err := rows.Scan(&o.ID, &o.ProductID, &o.Quantity, &o.TotalPrice, &o.OrderDate, &o.ProductName); err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

func (m *MySQLAdapter) Stats(ctx context.Context) (*domain.Stats, error) {
	var s domain.Stats

	if err := m.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM products`).Scan(&s.TotalProducts); err != nil {
		return nil, fmt.Errorf("count products: %w", err)
	}
	if err := m.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(SUM(total_price), 0) FROM orders`).Scan(&s.TotalOrders, &s.TotalRevenue); err != nil {
		return nil, fmt.Errorf("aggregate orders: %w", err)
	}
	if err := m.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM products WHERE stock < ?`, domain.LowStockThreshold).Scan(&s.LowStockProducts); err != nil {
		return nil, fmt.Errorf("count low stock: %w", err)
	}
	return &s, nil
}
