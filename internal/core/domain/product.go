package domain

// LowStockThreshold is the stock level below which a product is flagged
// for observability.
const LowStockThreshold = 10

type Product struct {
	ID    int64   `json:"id"`
	Name  string  `json:"name"`
	Price float64 `json:"price"`
	Stock int     `json:"stock"`
}
