package repository

import (
	"context"
	"errors"
	"time"

	"github.com/Landa5/SEL-CONTROL-HORARIO-sub000/internal/core/model"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
)

// WorkdayRepository persists daily attendance records. Lookups that find
// nothing return (nil, nil); the single-open-workday invariant is enforced
// by a partial unique index inside the insert transaction.
type WorkdayRepository interface {
	CreateWorkday(ctx context.Context, employeeID string, date, clockIn time.Time) (*model.Workday, error)
	GetWorkday(ctx context.Context, id int64) (*model.Workday, error)
	CloseWorkday(ctx context.Context, id int64, clockOut time.Time, hours float64, notes string) error
	FindOpenWorkday(ctx context.Context, employeeID string, date time.Time) (*model.Workday, error)
	ListWorkdaysInRange(ctx context.Context, employeeID string, from, to time.Time) ([]model.Workday, error)
}

// ShiftRepository persists vehicle-usage intervals. StartShift runs the
// expected-odometer check and the insert in one transaction; the
// single-active-shift-per-vehicle invariant is a partial unique index.
type ShiftRepository interface {
	// StartShift creates an active shift. When requireContinuity is true
	// and the asserted start reading disagrees with the vehicle's last
	// known reading, no shift is created and the expected reading is
	// returned instead.
	StartShift(ctx context.Context, workdayID int64, vehicleID string, at time.Time, startOdometer int64, evidenceURI string, requireContinuity bool) (*model.VehicleShift, *int64, error)
	GetShift(ctx context.Context, id int64) (*model.VehicleShift, error)
	EndShift(ctx context.Context, id int64, at time.Time, endOdometer int64, trips, unloads int, fuelLiters float64) error
	AddCounters(ctx context.Context, id int64, trips, unloads int, fuelLiters float64) error
	ListShiftsInRange(ctx context.Context, employeeID string, from, to time.Time) ([]model.VehicleShift, error)
	ListVehicleShifts(ctx context.Context, vehicleID string) ([]model.VehicleShift, error)
}

// PayrollRepository persists monthly payroll records. The generation merge
// and both edit operations check the Draft status inside the same
// transaction as their mutation.
type PayrollRepository interface {
	GetPayroll(ctx context.Context, employeeID string, year, month int) (*model.Payroll, error)
	GetPayrollByID(ctx context.Context, id int64) (*model.Payroll, error)
	// UpsertGenerated merges candidate auto lines into the payroll for
	// (employee, year, month) in one transaction, preserving manual
	// overrides, and recomputes the total. A closed payroll is left
	// untouched and reported as OutcomeSkipped.
	UpsertGenerated(ctx context.Context, employeeID string, year, month int, candidates []model.PayrollLine) (*model.Payroll, model.GenerationOutcome, error)
	UpdateLine(ctx context.Context, lineID int64, amount decimal.Decimal, notes string) (*model.PayrollLine, error)
	ClosePayroll(ctx context.Context, id int64) (*model.Payroll, error)
	UpdateEmailStatus(ctx context.Context, id int64, status model.EmailStatus, retryCount int) error
}

// isUniqueViolation reports whether err is a unique-constraint violation
// from either supported driver.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.Code == sqlite3.ErrConstraint
	}
	return false
}
