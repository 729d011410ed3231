package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// PayrollStatus is the lifecycle state of a monthly payroll record.
type PayrollStatus string

const (
	PayrollDraft  PayrollStatus = "DRAFT"
	PayrollClosed PayrollStatus = "CLOSED"
)

// EmailStatus defines the state of the payslip notification processing.
type EmailStatus string

const (
	StatusEmailPending   EmailStatus = "PENDING"
	StatusEmailCompleted EmailStatus = "COMPLETED"
	StatusEmailFailed    EmailStatus = "FAILED"
)

// ConceptKind tells the payroll engine how a concept's amount is computed.
type ConceptKind string

const (
	// KindQuantity lines compute amount = quantity * rate.
	KindQuantity ConceptKind = "QUANTITY"
	// KindFlag lines pay the flat rate once when the triggering activity
	// happened at all during the month (e.g. the driver incentive).
	KindFlag ConceptKind = "FLAG"
	// KindFixed lines carry an externally supplied flat amount.
	KindFixed ConceptKind = "FIXED"
)

// Concept codes produced by the generation run. The rate table may carry
// more codes than these; unknown codes are simply never auto-generated.
const (
	ConceptOvertime        = "OVERTIME"
	ConceptDistance        = "DISTANCE_ALLOWANCE"
	ConceptTrips           = "PRODUCTIVITY_TRIPS"
	ConceptUnloads         = "PRODUCTIVITY_UNLOADS"
	ConceptDriverIncentive = "DRIVER_INCENTIVE"
)

// Workday is one employee's daily attendance record. A nil ClockOut means
// the workday is still open; at most one open workday exists per employee.
type Workday struct {
	ID         int64      `json:"id"`
	EmployeeID string     `json:"employeeId"`
	Date       time.Time  `json:"date"`
	ClockIn    time.Time  `json:"clockIn"`
	ClockOut   *time.Time `json:"clockOut,omitempty"`
	Hours      float64    `json:"hours,omitempty"`
	Notes      string     `json:"notes,omitempty"`
}

// Open reports whether the workday has not been clocked out yet.
func (w *Workday) Open() bool { return w.ClockOut == nil }

// VehicleShift is a vehicle-usage interval nested inside a workday.
// A nil EndTime means the shift is active; at most one active shift exists
// per vehicle across all employees.
type VehicleShift struct {
	ID                  int64      `json:"id"`
	WorkdayID           int64      `json:"workdayId"`
	VehicleID           string     `json:"vehicleId"`
	StartTime           time.Time  `json:"startTime"`
	EndTime             *time.Time `json:"endTime,omitempty"`
	StartOdometer       int64      `json:"startOdometer"`
	EndOdometer         *int64     `json:"endOdometer,omitempty"`
	TripCount           int        `json:"tripCount"`
	UnloadCount         int        `json:"unloadCount"`
	FuelLiters          float64    `json:"fuelLiters"`
	ConflictEvidenceURI string     `json:"conflictEvidenceUri,omitempty"`
}

// Active reports whether the shift has not ended yet.
func (s *VehicleShift) Active() bool { return s.EndTime == nil }

// Distance returns the kilometers covered by the shift. A shift that never
// closed contributes zero.
func (s *VehicleShift) Distance() int64 {
	if s.EndOdometer == nil {
		return 0
	}
	return *s.EndOdometer - s.StartOdometer
}

// ActivityTotals is the reduction of one employee's workdays and shifts
// over a month. Incomplete flags that at least one workday was still open
// at aggregation time and contributed zero hours.
type ActivityTotals struct {
	EmployeeID    string  `json:"employeeId"`
	Year          int     `json:"year"`
	Month         int     `json:"month"`
	Hours         float64 `json:"hours"`
	OvertimeHours float64 `json:"overtimeHours"`
	Kilometers    int64   `json:"kilometers"`
	Trips         int     `json:"trips"`
	Unloads       int     `json:"unloads"`
	FuelLiters    float64 `json:"fuelLiters"`
	Incomplete    bool    `json:"incomplete"`
}

// ConceptRate is one entry of the externally configured rate table.
type ConceptRate struct {
	Code  string          `json:"code"`
	Label string          `json:"label"`
	Rate  decimal.Decimal `json:"rate"`
	Kind  ConceptKind     `json:"kind"`
}

// FixedConcept is an externally supplied flat line (e.g. a stipend) handed
// to a generation run alongside the aggregated activity.
type FixedConcept struct {
	Code   string          `json:"code"`
	Label  string          `json:"label"`
	Amount decimal.Decimal `json:"amount"`
}

// Payroll is the monthly variable-compensation record for one employee.
// There is exactly one per (employee, year, month).
type Payroll struct {
	ID              int64           `json:"id"`
	EmployeeID      string          `json:"employeeId"`
	Year            int             `json:"year"`
	Month           int             `json:"month"`
	Status          PayrollStatus   `json:"status"`
	Total           decimal.Decimal `json:"total"`
	Lines           []PayrollLine   `json:"lines"`
	EmailStatus     EmailStatus     `json:"emailStatus,omitempty"`
	EmailRetryCount int             `json:"emailRetryCount,omitempty"`
}

// Editable reports whether administrators may still change the payroll.
func (p *Payroll) Editable() bool { return p.Status == PayrollDraft }

// Line returns the line for the given concept code, or nil.
func (p *Payroll) Line(conceptCode string) *PayrollLine {
	for i := range p.Lines {
		if p.Lines[i].ConceptCode == conceptCode {
			return &p.Lines[i]
		}
	}
	return nil
}

// PayrollLine is one priced concept inside a payroll. Amount is
// authoritative; quantity*rate is advisory for auto-generated lines.
// IsManualOverride protects the line from automatic recomputation.
type PayrollLine struct {
	ID               int64           `json:"id"`
	PayrollID        int64           `json:"payrollId"`
	ConceptCode      string          `json:"conceptCode"`
	ConceptLabel     string          `json:"conceptLabel"`
	Quantity         decimal.Decimal `json:"quantity"`
	Rate             decimal.Decimal `json:"rate"`
	Amount           decimal.Decimal `json:"amount"`
	Notes            string          `json:"notes,omitempty"`
	IsManualOverride bool            `json:"isManualOverride"`
}

// GenerationOutcome is the per-employee result of a payroll generation run.
type GenerationOutcome string

const (
	OutcomeCreated GenerationOutcome = "CREATED"
	OutcomeUpdated GenerationOutcome = "UPDATED"
	OutcomeSkipped GenerationOutcome = "SKIPPED"
	OutcomeFailed  GenerationOutcome = "FAILED"
)

// GenerationResult reports what happened to one employee during a batch
// generation run. One employee failing never aborts the batch.
type GenerationResult struct {
	EmployeeID string            `json:"employeeId"`
	Outcome    GenerationOutcome `json:"outcome"`
	Reason     string            `json:"reason,omitempty"`
	PayrollID  int64             `json:"payrollId,omitempty"`
	Err        error             `json:"-"`
}
