package core

import (
	"context"
	"fmt"
	"time"

	"github.com/Landa5/SEL-CONTROL-HORARIO-sub000/internal/core/model"
	"github.com/Landa5/SEL-CONTROL-HORARIO-sub000/internal/hr"
	"github.com/Landa5/SEL-CONTROL-HORARIO-sub000/internal/ports/repository"
)

// ActivityService reduces an employee's workdays and shifts for a month
// into normalized totals. The reduction is pure and idempotent: calling it
// twice with no intervening writes yields identical results.
type ActivityService struct {
	workdays   repository.WorkdayRepository
	shifts     repository.ShiftRepository
	thresholds hr.ThresholdProvider
}

func NewActivityService(workdays repository.WorkdayRepository, shifts repository.ShiftRepository, thresholds hr.ThresholdProvider) *ActivityService {
	return &ActivityService{workdays: workdays, shifts: shifts, thresholds: thresholds}
}

// Aggregate computes the employee's activity totals for a month. Workdays
// still open at aggregation time contribute zero hours and flag the result
// incomplete so callers can warn. Overtime is the excess over the
// employee's per-role threshold, supplied by HR configuration.
func (s *ActivityService) Aggregate(ctx context.Context, employeeID string, year, month int) (*model.ActivityTotals, error) {
	from := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0)

	totals := &model.ActivityTotals{
		EmployeeID: employeeID,
		Year:       year,
		Month:      month,
	}

	workdays, err := s.workdays.ListWorkdaysInRange(ctx, employeeID, from, to)
	if err != nil {
		return nil, fmt.Errorf("listing workdays: %w", err)
	}
	for _, w := range workdays {
		if w.Open() {
			totals.Incomplete = true
			continue
		}
		totals.Hours += w.ClockOut.Sub(w.ClockIn).Hours()
	}

	shifts, err := s.shifts.ListShiftsInRange(ctx, employeeID, from, to)
	if err != nil {
		return nil, fmt.Errorf("listing shifts: %w", err)
	}
	for _, sh := range shifts {
		totals.Kilometers += sh.Distance()
		totals.Trips += sh.TripCount
		totals.Unloads += sh.UnloadCount
		totals.FuelLiters += sh.FuelLiters
	}

	threshold, err := s.thresholds.OvertimeThreshold(ctx, employeeID)
	if err != nil {
		return nil, fmt.Errorf("fetching overtime threshold: %w", err)
	}
	if totals.Hours > threshold {
		totals.OvertimeHours = totals.Hours - threshold
	}

	return totals, nil
}
