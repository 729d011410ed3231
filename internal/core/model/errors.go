package model

import (
	"errors"
	"fmt"
)

// Sentinel errors for precondition violations. Callers match them with
// errors.Is; they are returned as typed failures and never auto-corrected.
var (
	// ErrNotFound is returned when a referenced record doesn't exist.
	ErrNotFound = errors.New("record not found")

	// ErrWorkdayAlreadyOpen is returned by ClockIn when the employee
	// already has an open workday.
	ErrWorkdayAlreadyOpen = errors.New("employee already has an open workday")

	// ErrWorkdayClosed is returned when an operation requires an open
	// workday (clock-out a second time, start a shift on a closed day).
	ErrWorkdayClosed = errors.New("workday already closed")

	// ErrInvalidInterval is returned when a clock-out precedes the clock-in.
	ErrInvalidInterval = errors.New("clock-out before clock-in")

	// ErrVehicleAlreadyInUse is returned when the vehicle has an active
	// shift under any employee.
	ErrVehicleAlreadyInUse = errors.New("vehicle already has an active shift")

	// ErrShiftClosed is returned by counter updates and EndShift on a
	// shift that already ended.
	ErrShiftClosed = errors.New("shift already closed")

	// ErrInvalidOdometer is returned when an end reading is below the
	// start reading.
	ErrInvalidOdometer = errors.New("end odometer below start odometer")

	// ErrEvidenceRequired blocks conflict confirmation without a photo URI.
	ErrEvidenceRequired = errors.New("odometer conflict requires photographic evidence")

	// ErrPayrollClosed is returned by EditLine when the parent payroll is
	// closed; closed payrolls are immutable.
	ErrPayrollClosed = errors.New("payroll is closed")

	// ErrPayrollAlreadyClosed is returned by Close on a closed payroll.
	ErrPayrollAlreadyClosed = errors.New("payroll already closed")
)

// OdometerConflict is the distinguished StartShift result returned when the
// asserted start reading disagrees with the vehicle's last known reading.
// It is not a failure: the caller is expected to retry with a corrected
// reading or proceed through ConfirmConflict with evidence.
type OdometerConflict struct {
	VehicleID        string `json:"vehicleId"`
	ExpectedOdometer int64  `json:"expectedOdometer"`
	AssertedOdometer int64  `json:"assertedOdometer"`
}

func (c *OdometerConflict) String() string {
	return fmt.Sprintf("odometer conflict on vehicle %s: expected %d, asserted %d",
		c.VehicleID, c.ExpectedOdometer, c.AssertedOdometer)
}
