package domain

import "time"

type Order struct {
	ID         int64     `json:"id"`
	ProductID  int64     `json:"product_id"`
	Quantity   int       `json:"quantity"`
	TotalPrice float64   `json:"total_price"`
	OrderDate  time.Time `json:"order_date"`
}

// OrderWithProduct annotates an order with its product's name at query time.
// The name is joined, not denormalized onto the order row.
type OrderWithProduct struct {
	Order
	ProductName string `json:"product_name"`
}
