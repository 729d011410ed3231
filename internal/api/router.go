package api

import (
	"net/http"

	"github.com/Landa5/SEL-CONTROL-HORARIO-sub000/internal/api/handler"
	"github.com/gorilla/mux"
)

// NewRouter sets up the gorilla/mux router and defines all API routes.
func NewRouter(tracking *handler.TrackingHandler, payroll *handler.PayrollHandler) *mux.Router {
	r := mux.NewRouter()

	api := r.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/workdays/clock-in", tracking.ClockIn).Methods(http.MethodPost)
	api.HandleFunc("/workdays/{workdayId:[0-9]+}/clock-out", tracking.ClockOut).Methods(http.MethodPost)
	api.HandleFunc("/workdays/open/{employeeId}", tracking.CurrentOpen).Methods(http.MethodGet)

	api.HandleFunc("/shifts/start", tracking.StartShift).Methods(http.MethodPost)
	api.HandleFunc("/shifts/confirm-conflict", tracking.ConfirmConflict).Methods(http.MethodPost)
	api.HandleFunc("/shifts/{shiftId:[0-9]+}/end", tracking.EndShift).Methods(http.MethodPost)
	api.HandleFunc("/shifts/{shiftId:[0-9]+}/trips", tracking.RecordTrip).Methods(http.MethodPost)
	api.HandleFunc("/shifts/{shiftId:[0-9]+}/unloads", tracking.RecordUnload).Methods(http.MethodPost)
	api.HandleFunc("/shifts/{shiftId:[0-9]+}/fuel", tracking.RecordFuel).Methods(http.MethodPost)

	api.HandleFunc("/evidence", tracking.UploadEvidence).Methods(http.MethodPost)
	api.HandleFunc("/activity/{employeeId}/{year:[0-9]+}/{month:[0-9]+}", tracking.GetActivity).Methods(http.MethodGet)

	api.HandleFunc("/payrolls/generate", payroll.Generate).Methods(http.MethodPost)
	api.HandleFunc("/payrolls/generate-async", payroll.GenerateAsync).Methods(http.MethodPost)
	api.HandleFunc("/payrolls/lines/{lineId:[0-9]+}", payroll.EditLine).Methods(http.MethodPut)
	api.HandleFunc("/payrolls/{payrollId:[0-9]+}/close", payroll.Close).Methods(http.MethodPost)
	api.HandleFunc("/payrolls/{employeeId}/{year:[0-9]+}/{month:[0-9]+}", payroll.GetPayroll).Methods(http.MethodGet)

	api.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("Service is operational."))
	}).Methods(http.MethodGet)

	return r
}
