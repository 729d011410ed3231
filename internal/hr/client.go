// Package hr talks to the HR configuration service, which owns the
// employee directory and the per-role overtime threshold table.
package hr

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/sony/gobreaker"
)

// ThresholdProvider supplies the monthly overtime threshold (in hours)
// that applies to an employee, based on their role category.
type ThresholdProvider interface {
	OvertimeThreshold(ctx context.Context, employeeID string) (float64, error)
}

// HTTPClient fetches thresholds from the HR API. The HR system is an aging
// shared service, so calls run through a circuit breaker to avoid
// hammering it when it is struggling.
type HTTPClient struct {
	client  *http.Client
	baseURL string
	cb      *gobreaker.CircuitBreaker
}

// NewHTTPClient creates an HR API client with its circuit breaker.
func NewHTTPClient(baseURL string) *HTTPClient {
	settings := gobreaker.Settings{
		Name:        "HR-API",
		MaxRequests: 5,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			// Trip if the failure rate exceeds 50% after at least 10 requests
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 10 && failureRatio >= 0.5
		},
	}

	return &HTTPClient{
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		baseURL: baseURL,
		cb:      gobreaker.NewCircuitBreaker(settings),
	}
}

type thresholdResponse struct {
	EmployeeID     string  `json:"employeeId"`
	RoleCategory   string  `json:"roleCategory"`
	ThresholdHours float64 `json:"thresholdHours"`
}

// OvertimeThreshold asks the HR API for the threshold applying to the
// employee's role.
func (c *HTTPClient) OvertimeThreshold(ctx context.Context, employeeID string) (float64, error) {
	result, err := c.cb.Execute(func() (interface{}, error) {
		return c.fetchThreshold(ctx, employeeID)
	})
	if err != nil {
		return 0, fmt.Errorf("hr api threshold lookup: %w", err)
	}
	return result.(float64), nil
}

func (c *HTTPClient) fetchThreshold(ctx context.Context, employeeID string) (float64, error) {
	url := fmt.Sprintf("%semployees/%s/overtime-threshold", c.baseURL, employeeID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to create hr api request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("failed to call hr api: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return 0, fmt.Errorf("hr api returned non-successful status code: %d", resp.StatusCode)
	}

	var payload thresholdResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return 0, fmt.Errorf("failed to decode hr api response: %w", err)
	}
	return payload.ThresholdHours, nil
}

// StaticProvider serves a fixed threshold table, used in local development
// and tests where no HR API is reachable.
type StaticProvider struct {
	Thresholds map[string]float64
	Default    float64
}

func (p *StaticProvider) OvertimeThreshold(_ context.Context, employeeID string) (float64, error) {
	if t, ok := p.Thresholds[employeeID]; ok {
		return t, nil
	}
	return p.Default, nil
}
