package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"
)

const (
	targetURL   = "http://localhost:8080/api/v1/workdays/clock-in"
	total       = 1000
	concurrency = 50
)

type clockInRequest struct {
	EmployeeID string `json:"employeeId"`
}

func main() {
	client := &http.Client{Timeout: 10 * time.Second}

	var success, failed int64
	var wg sync.WaitGroup
	sem := make(chan struct{}, concurrency)

	start := time.Now()
	for i := 0; i < total; i++ {
		wg.Add(1)
		sem <- struct{}{}
		go func(n int) {
			defer wg.Done()
			defer func() { <-sem }()

			payload, _ := json.Marshal(clockInRequest{
				EmployeeID: fmt.Sprintf("load-emp-%d", n),
			})
			resp, err := client.Post(targetURL, "application/json", bytes.NewReader(payload))
			if err != nil {
				atomic.AddInt64(&failed, 1)
				return
			}
			resp.Body.Close()
			if resp.StatusCode >= 200 && resp.StatusCode < 300 {
				atomic.AddInt64(&success, 1)
			} else {
				atomic.AddInt64(&failed, 1)
			}
		}(i)
	}
	wg.Wait()

	elapsed := time.Since(start)
	fmt.Printf("Sent %d clock-in requests in %s\n", total, elapsed)
	fmt.Printf("Success: %d, Failed: %d\n", success, failed)
	fmt.Printf("Throughput: %.2f req/s\n", float64(total)/elapsed.Seconds())
}
