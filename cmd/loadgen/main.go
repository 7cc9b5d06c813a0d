// loadgen fires concurrent order placements against a running server and
// verifies that stock is never oversold.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

func main() {
	baseURL := flag.String("url", "http://localhost:8080", "server base URL")
	productID := flag.Int64("product", 1, "product id to order")
	totalRequests := flag.Int("n", 50, "number of concurrent orders")
	flag.Parse()

	client := &http.Client{Timeout: 10 * time.Second}

	before, err := fetchStock(client, *baseURL, *productID)
	if err != nil {
		log.Fatalf("failed to read initial stock: %v", err)
	}

	var successCount atomic.Int32
	var stockFailCount atomic.Int32
	var otherFailCount atomic.Int32

	var wg sync.WaitGroup
	start := time.Now()

	for i := 0; i < *totalRequests; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			body, _ := json.Marshal(map[string]interface{}{
				"product_id": *productID,
				"quantity":   1,
			})
			req, err := http.NewRequest(http.MethodPost, *baseURL+"/orders", bytes.NewReader(body))
			if err != nil {
				otherFailCount.Add(1)
				return
			}
			req.Header.Set("Content-Type", "application/json")
			req.Header.Set("Idempotency-Key", uuid.NewString())

			resp, err := client.Do(req)
			if err != nil {
				otherFailCount.Add(1)
				return
			}
			resp.Body.Close()

			switch resp.StatusCode {
			case http.StatusCreated:
				successCount.Add(1)
			case http.StatusBadRequest:
				stockFailCount.Add(1)
			default:
				otherFailCount.Add(1)
			}
		}()
	}

	wg.Wait()
	elapsed := time.Since(start)

	after, err := fetchStock(client, *baseURL, *productID)
	if err != nil {
		log.Fatalf("failed to read final stock: %v", err)
	}

	success := int(successCount.Load())
	expected := *totalRequests
	if before < expected {
		expected = before
	}

	fmt.Println("========== LOAD TEST RESULTS ==========")
	fmt.Printf("Initial Stock:    %d\n", before)
	fmt.Printf("Total Requests:   %d\n", *totalRequests)
	fmt.Printf("Successful:       %d\n", success)
	fmt.Printf("Out of Stock:     %d\n", stockFailCount.Load())
	fmt.Printf("Other Failures:   %d\n", otherFailCount.Load())
	fmt.Printf("Final Stock:      %d\n", after)
	fmt.Printf("Duration:         %v\n", elapsed)
	fmt.Println("=======================================")

	if success == expected && after == before-success {
		fmt.Printf("PASS: %d orders succeeded, stock %d -> %d\n", success, before, after)
	} else {
		fmt.Printf("FAIL: expected %d successes and stock %d, got %d successes and stock %d\n",
			expected, before-expected, success, after)
	}
	if after < 0 {
		fmt.Println("FAIL: stock went negative")
	}
}

func fetchStock(client *http.Client, baseURL string, productID int64) (int, error) {
	resp, err := client.Get(fmt.Sprintf("%s/products/%d", baseURL, productID))
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var product struct {
		Stock int `json:"stock"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&product); err != nil {
		return 0, err
	}
	return product.Stock, nil
}
