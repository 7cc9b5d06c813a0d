package domain

type Stats struct {
	TotalProducts    int64   `json:"total_products"`
	TotalOrders      int64   `json:"total_orders"`
	TotalRevenue     float64 `json:"total_revenue"`
	LowStockProducts int64   `json:"low_stock_products"`
}
