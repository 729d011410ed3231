package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/Landa5/SEL-CONTROL-HORARIO-sub000/internal/core"
	"github.com/Landa5/SEL-CONTROL-HORARIO-sub000/internal/core/model"
	"github.com/Landa5/SEL-CONTROL-HORARIO-sub000/internal/ports/messaging"
	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
)

// PayrollHandler serves the payroll generation and administration surface.
type PayrollHandler struct {
	Service  *core.PayrollService
	Producer messaging.QueueProducer
}

type GenerateRequest struct {
	EmployeeIDs []string                             `json:"employeeIds"`
	Year        int                                  `json:"year"`
	Month       int                                  `json:"month"`
	Fixed       map[string][]model.FixedConcept      `json:"fixed,omitempty"`
}

// Generate runs the batch synchronously and reports the per-employee
// outcomes; one employee failing never fails the request.
func (h *PayrollHandler) Generate(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeGenerateRequest(w, r)
	if !ok {
		return
	}

	results := h.Service.Generate(r.Context(), req.EmployeeIDs, req.Year, req.Month, req.Fixed)
	writeJSON(w, http.StatusOK, map[string]any{"results": results})
}

// GenerateAsync queues the batch for the payroll worker instead of running
// it in-request, for scheduled month-end runs over the whole workforce.
func (h *PayrollHandler) GenerateAsync(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeGenerateRequest(w, r)
	if !ok {
		return
	}

	event := messaging.GenerationRequestedEvent{
		EmployeeIDs: req.EmployeeIDs,
		Year:        req.Year,
		Month:       req.Month,
		RequestedAt: time.Now().UTC(),
	}
	if err := h.Producer.PublishGeneration(r.Context(), event); err != nil {
		http.Error(w, "Failed to queue generation run", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"message": "Generation run queued."})
}

func decodeGenerateRequest(w http.ResponseWriter, r *http.Request) (GenerateRequest, bool) {
	var req GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return req, false
	}
	if len(req.EmployeeIDs) == 0 {
		http.Error(w, "employeeIds is required", http.StatusBadRequest)
		return req, false
	}
	if req.Month < 1 || req.Month > 12 {
		http.Error(w, "Invalid month", http.StatusBadRequest)
		return req, false
	}
	return req, true
}

func (h *PayrollHandler) GetPayroll(w http.ResponseWriter, r *http.Request) {
	employeeID := mux.Vars(r)["employeeId"]
	year, month, ok := pathYearMonth(w, r)
	if !ok {
		return
	}

	payroll, err := h.Service.GetPayroll(r.Context(), employeeID, year, month)
	if err != nil {
		writeError(w, err)
		return
	}
	if payroll == nil {
		http.Error(w, "Payroll not generated yet", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, payroll)
}

type EditLineRequest struct {
	Amount string `json:"amount"`
	Notes  string `json:"notes,omitempty"`
}

func (h *PayrollHandler) EditLine(w http.ResponseWriter, r *http.Request) {
	lineID, ok := pathID(w, r, "lineId")
	if !ok {
		return
	}
	var req EditLineRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		http.Error(w, "Invalid amount", http.StatusBadRequest)
		return
	}

	line, err := h.Service.EditLine(r.Context(), lineID, amount, req.Notes)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, line)
}

func (h *PayrollHandler) Close(w http.ResponseWriter, r *http.Request) {
	payrollID, ok := pathID(w, r, "payrollId")
	if !ok {
		return
	}

	payroll, err := h.Service.Close(r.Context(), payrollID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, payroll)
}
