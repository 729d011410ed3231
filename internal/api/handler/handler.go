package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/Landa5/SEL-CONTROL-HORARIO-sub000/internal/core"
	"github.com/Landa5/SEL-CONTROL-HORARIO-sub000/internal/core/model"
	"github.com/Landa5/SEL-CONTROL-HORARIO-sub000/internal/ports/evidence"
	"github.com/gorilla/mux"
)

// TrackingHandler serves the workday and vehicle-shift operations.
type TrackingHandler struct {
	Workdays *core.WorkdayService
	Shifts   *core.ShiftService
	Activity *core.ActivityService
	Evidence evidence.Store
}

type ClockInRequest struct {
	EmployeeID string `json:"employeeId"`
	At         string `json:"at,omitempty"`
}

func (h *TrackingHandler) ClockIn(w http.ResponseWriter, r *http.Request) {
	var req ClockInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.EmployeeID == "" {
		http.Error(w, "employeeId is required", http.StatusBadRequest)
		return
	}
	at, ok := parseAt(w, req.At)
	if !ok {
		return
	}

	workday, err := h.Workdays.ClockIn(r.Context(), req.EmployeeID, at)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, workday)
}

type ClockOutRequest struct {
	At    string `json:"at,omitempty"`
	Notes string `json:"notes,omitempty"`
}

func (h *TrackingHandler) ClockOut(w http.ResponseWriter, r *http.Request) {
	workdayID, ok := pathID(w, r, "workdayId")
	if !ok {
		return
	}
	var req ClockOutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	at, ok := parseAt(w, req.At)
	if !ok {
		return
	}

	workday, err := h.Workdays.ClockOut(r.Context(), workdayID, at, req.Notes)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, workday)
}

func (h *TrackingHandler) CurrentOpen(w http.ResponseWriter, r *http.Request) {
	employeeID := mux.Vars(r)["employeeId"]
	date := time.Now().UTC()
	if d := r.URL.Query().Get("date"); d != "" {
		parsed, err := time.Parse("2006-01-02", d)
		if err != nil {
			http.Error(w, "Invalid date, expected YYYY-MM-DD", http.StatusBadRequest)
			return
		}
		date = parsed
	}

	workday, err := h.Workdays.CurrentOpen(r.Context(), employeeID, date)
	if err != nil {
		writeError(w, err)
		return
	}
	if workday == nil {
		http.Error(w, "No open workday", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, workday)
}

type StartShiftRequest struct {
	WorkdayID     int64  `json:"workdayId"`
	VehicleID     string `json:"vehicleId"`
	At            string `json:"at,omitempty"`
	StartOdometer int64  `json:"startOdometer"`
	EvidenceURI   string `json:"evidenceUri,omitempty"`
}

func (h *TrackingHandler) StartShift(w http.ResponseWriter, r *http.Request) {
	var req StartShiftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.VehicleID == "" {
		http.Error(w, "vehicleId is required", http.StatusBadRequest)
		return
	}
	at, ok := parseAt(w, req.At)
	if !ok {
		return
	}

	result, err := h.Shifts.StartShift(r.Context(), req.WorkdayID, req.VehicleID, at, req.StartOdometer)
	if err != nil {
		writeError(w, err)
		return
	}
	if result.Conflict != nil {
		// Distinguished result: the client retries with a corrected
		// reading or confirms with evidence.
		writeJSON(w, http.StatusConflict, result)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

func (h *TrackingHandler) ConfirmConflict(w http.ResponseWriter, r *http.Request) {
	var req StartShiftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	at, ok := parseAt(w, req.At)
	if !ok {
		return
	}

	shift, err := h.Shifts.ConfirmConflict(r.Context(), req.WorkdayID, req.VehicleID, at, req.StartOdometer, req.EvidenceURI)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, shift)
}

type EndShiftRequest struct {
	At          string  `json:"at,omitempty"`
	EndOdometer int64   `json:"endOdometer"`
	Trips       int     `json:"trips,omitempty"`
	Unloads     int     `json:"unloads,omitempty"`
	FuelLiters  float64 `json:"fuelLiters,omitempty"`
}

func (h *TrackingHandler) EndShift(w http.ResponseWriter, r *http.Request) {
	shiftID, ok := pathID(w, r, "shiftId")
	if !ok {
		return
	}
	var req EndShiftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	at, ok := parseAt(w, req.At)
	if !ok {
		return
	}

	shift, err := h.Shifts.EndShift(r.Context(), shiftID, at, req.EndOdometer, req.Trips, req.Unloads, req.FuelLiters)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, shift)
}

type CounterRequest struct {
	Delta  int     `json:"delta,omitempty"`
	Liters float64 `json:"liters,omitempty"`
}

func (h *TrackingHandler) RecordTrip(w http.ResponseWriter, r *http.Request) {
	h.recordCounter(w, r, func(r *http.Request, shiftID int64, req CounterRequest) error {
		return h.Shifts.RecordTrip(r.Context(), shiftID, req.Delta)
	})
}

func (h *TrackingHandler) RecordUnload(w http.ResponseWriter, r *http.Request) {
	h.recordCounter(w, r, func(r *http.Request, shiftID int64, req CounterRequest) error {
		return h.Shifts.RecordUnload(r.Context(), shiftID, req.Delta)
	})
}

func (h *TrackingHandler) RecordFuel(w http.ResponseWriter, r *http.Request) {
	h.recordCounter(w, r, func(r *http.Request, shiftID int64, req CounterRequest) error {
		return h.Shifts.RecordFuel(r.Context(), shiftID, req.Liters)
	})
}

func (h *TrackingHandler) recordCounter(w http.ResponseWriter, r *http.Request, apply func(*http.Request, int64, CounterRequest) error) {
	shiftID, ok := pathID(w, r, "shiftId")
	if !ok {
		return
	}
	var req CounterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := apply(r, shiftID, req); err != nil {
		writeError(w, err)
		return
	}
	shift, err := h.Shifts.GetShift(r.Context(), shiftID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, shift)
}

// UploadEvidence stores an odometer photo and returns its opaque URI for a
// subsequent ConfirmConflict call.
func (h *TrackingHandler) UploadEvidence(w http.ResponseWriter, r *http.Request) {
	file, header, err := r.FormFile("photo")
	if err != nil {
		http.Error(w, "photo file is required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	uri, err := h.Evidence.Put(r.Context(), file, contentType)
	if err != nil {
		http.Error(w, "Failed to store evidence", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"evidenceUri": uri})
}

func (h *TrackingHandler) GetActivity(w http.ResponseWriter, r *http.Request) {
	employeeID := mux.Vars(r)["employeeId"]
	year, month, ok := pathYearMonth(w, r)
	if !ok {
		return
	}

	totals, err := h.Activity.Aggregate(r.Context(), employeeID, year, month)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, totals)
}

func parseAt(w http.ResponseWriter, raw string) (time.Time, bool) {
	if raw == "" {
		return time.Now().UTC(), true
	}
	at, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		http.Error(w, "Invalid at timestamp, expected RFC3339", http.StatusBadRequest)
		return time.Time{}, false
	}
	return at, true
}

func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)[name], 10, 64)
	if err != nil {
		http.Error(w, "Invalid "+name, http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

func pathYearMonth(w http.ResponseWriter, r *http.Request) (int, int, bool) {
	vars := mux.Vars(r)
	year, err := strconv.Atoi(vars["year"])
	if err != nil {
		http.Error(w, "Invalid year", http.StatusBadRequest)
		return 0, 0, false
	}
	month, err := strconv.Atoi(vars["month"])
	if err != nil || month < 1 || month > 12 {
		http.Error(w, "Invalid month", http.StatusBadRequest)
		return 0, 0, false
	}
	return year, month, true
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// writeError maps the failure taxonomy to HTTP statuses: missing records
// to 404, precondition violations to 409, bad intervals/readings to 422.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, model.ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, model.ErrWorkdayAlreadyOpen),
		errors.Is(err, model.ErrWorkdayClosed),
		errors.Is(err, model.ErrVehicleAlreadyInUse),
		errors.Is(err, model.ErrShiftClosed),
		errors.Is(err, model.ErrPayrollClosed),
		errors.Is(err, model.ErrPayrollAlreadyClosed):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, model.ErrInvalidInterval),
		errors.Is(err, model.ErrInvalidOdometer),
		errors.Is(err, model.ErrEvidenceRequired):
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
	default:
		http.Error(w, "Service error processing request", http.StatusInternalServerError)
	}
}
