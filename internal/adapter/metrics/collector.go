// Package metrics holds process-wide observability counters, updated via
// atomic operations and read out as a JSON snapshot.
package metrics

import (
	"math"
	"sync"
	"sync/atomic"
)

type Collector struct {
	ordersTotal      int64
	revenueBits      uint64
	lowStockObserved int64

	mu              sync.Mutex
	productRequests map[string]int64
}

func NewCollector() *Collector {
	return &Collector{productRequests: make(map[string]int64)}
}

func (c *Collector) OrderPlaced(total float64) {
	atomic.AddInt64(&c.ordersTotal, 1)
	for {
		old := atomic.LoadUint64(&c.revenueBits)
		next := math.Float64bits(math.Float64frombits(old) + total)
		if atomic.CompareAndSwapUint64(&c.revenueBits, old, next) {
			return
		}
	}
}

func (c *Collector) ProductRequest(endpoint string) {
	c.mu.Lock()
	c.productRequests[endpoint]++
	c.mu.Unlock()
}

func (c *Collector) LowStockObserved(count int) {
	atomic.AddInt64(&c.lowStockObserved, int64(count))
}

func (c *Collector) OrdersTotal() int64 {
	return atomic.LoadInt64(&c.ordersTotal)
}

func (c *Collector) RevenueTotal() float64 {
	return math.Float64frombits(atomic.LoadUint64(&c.revenueBits))
}

type Snapshot struct {
	OrdersTotal      int64            `json:"orders_total"`
	RevenueTotal     float64          `json:"revenue_total"`
	LowStockObserved int64            `json:"low_stock_observed_total"`
	ProductRequests  map[string]int64 `json:"product_requests_total"`
}

func (c *Collector) Snapshot() Snapshot {
	c.mu.Lock()
	requests := make(map[string]int64, len(c.productRequests))
	for k, v := range c.productRequests {
		requests[k] = v
	}
	c.mu.Unlock()

	return Snapshot{
		OrdersTotal:      c.OrdersTotal(),
		RevenueTotal:     c.RevenueTotal(),
		LowStockObserved: atomic.LoadInt64(&c.lowStockObserved),
		ProductRequests:  requests,
	}
}
