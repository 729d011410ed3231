package messaging

import "time"

// GenerationRequestedEvent is the JSON payload sent via SQS to ask the
// payroll worker to run a generation batch.
type GenerationRequestedEvent struct {
	EmployeeIDs []string  `json:"employeeIds"`
	Year        int       `json:"year"`
	Month       int       `json:"month"`
	RequestedAt time.Time `json:"requestedAt"`
}

// PayslipEmailEvent is the JSON payload sent via SQS for the payslip
// notification queue.
type PayslipEmailEvent struct {
	PayrollID  int64     `json:"payrollId"`
	EmployeeID string    `json:"employeeId"`
	Year       int       `json:"year"`
	Month      int       `json:"month"`
	Total      string    `json:"total"`
	Closed     bool      `json:"closed"`
	OccurredAt time.Time `json:"occurredAt"`
}
