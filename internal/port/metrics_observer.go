package port

// MetricsObserver receives observability events from the services. Business
// logic never touches counters directly; it reports through this interface.
type MetricsObserver interface {
	// OrderPlaced records a successful placement and its revenue.
	OrderPlaced(total float64)

	// ProductRequest records a read against the product catalog.
	ProductRequest(endpoint string)

	// LowStockObserved records how many products sat below the low-stock
	// threshold during a catalog listing.
	LowStockObserved(count int)
}
