package hr_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Landa5/SEL-CONTROL-HORARIO-sub000/internal/hr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOvertimeThresholdLookup(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/employees/emp-1/overtime-threshold", r.URL.Path)
		fmt.Fprint(w, `{"employeeId":"emp-1","roleCategory":"driver","thresholdHours":160}`)
	}))
	defer srv.Close()

	client := hr.NewHTTPClient(srv.URL + "/")
	threshold, err := client.OvertimeThreshold(context.Background(), "emp-1")
	require.NoError(t, err)
	assert.Equal(t, 160.0, threshold)
}

func TestOvertimeThresholdServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := hr.NewHTTPClient(srv.URL + "/")
	_, err := client.OvertimeThreshold(context.Background(), "emp-1")
	assert.Error(t, err)
}

func TestCircuitBreakerOpensOnRepeatedFailures(t *testing.T) {
	var hits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	client := hr.NewHTTPClient(srv.URL + "/")
	for i := 0; i < 15; i++ {
		_, err := client.OvertimeThreshold(context.Background(), "emp-1")
		require.Error(t, err)
	}

	// Once open, the breaker fails fast without reaching the server.
	assert.Less(t, hits, 15)
}

func TestStaticProviderFallsBackToDefault(t *testing.T) {
	p := &hr.StaticProvider{
		Thresholds: map[string]float64{"emp-1": 152},
		Default:    160,
	}

	threshold, err := p.OvertimeThreshold(context.Background(), "emp-1")
	require.NoError(t, err)
	assert.Equal(t, 152.0, threshold)

	threshold, err = p.OvertimeThreshold(context.Background(), "emp-x")
	require.NoError(t, err)
	assert.Equal(t, 160.0, threshold)
}
