package main

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"
)

// Serves the per-role overtime threshold lookups made by the API and the
// payroll worker during local development.

type thresholdResponse struct {
	EmployeeID     string  `json:"employeeId"`
	RoleCategory   string  `json:"roleCategory"`
	ThresholdHours float64 `json:"thresholdHours"`
}

func thresholdHandler(w http.ResponseWriter, r *http.Request) {
	// /employees/{id}/overtime-threshold
	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	if len(parts) != 3 || parts[0] != "employees" || parts[2] != "overtime-threshold" {
		http.NotFound(w, r)
		return
	}
	employeeID := parts[1]

	role := "driver"
	threshold := 160.0
	if strings.HasPrefix(employeeID, "admin-") {
		role = "office"
		threshold = 152.0
	}

	log.Printf("Threshold lookup for EmployeeID: %s (role %s)", employeeID, role)
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(thresholdResponse{
		EmployeeID:     employeeID,
		RoleCategory:   role,
		ThresholdHours: threshold,
	})
}

func main() {
	http.HandleFunc("/", thresholdHandler)
	log.Println("HR config mock server starting on port 8081...")
	log.Fatal(http.ListenAndServe(":8081", nil))
}
