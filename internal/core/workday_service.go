package core

import (
	"context"
	"fmt"
	"time"

	"github.com/Landa5/SEL-CONTROL-HORARIO-sub000/internal/core/model"
	"github.com/Landa5/SEL-CONTROL-HORARIO-sub000/internal/ports/repository"
)

// WorkdayService owns the open/close lifecycle of daily attendance
// records. A workday is opened on clock-in and mutated exactly once, on
// clock-out; a new day is always a new record.
type WorkdayService struct {
	repo repository.WorkdayRepository
}

func NewWorkdayService(repo repository.WorkdayRepository) *WorkdayService {
	return &WorkdayService{repo: repo}
}

// ClockIn opens a new workday for the employee. Fails with
// ErrWorkdayAlreadyOpen when one is already open; the storage-level
// uniqueness check makes this safe under concurrent clock-ins.
func (s *WorkdayService) ClockIn(ctx context.Context, employeeID string, at time.Time) (*model.Workday, error) {
	if employeeID == "" {
		return nil, fmt.Errorf("%w: empty employee id", model.ErrNotFound)
	}

	at = at.UTC()
	w, err := s.repo.CreateWorkday(ctx, employeeID, dayOf(at), at)
	if err != nil {
		return nil, err
	}
	return w, nil
}

// ClockOut closes an open workday and caches the derived hours value used
// by reporting. Fails with ErrWorkdayClosed on a second clock-out and with
// ErrInvalidInterval when at precedes the clock-in.
func (s *WorkdayService) ClockOut(ctx context.Context, workdayID int64, at time.Time, notes string) (*model.Workday, error) {
	w, err := s.repo.GetWorkday(ctx, workdayID)
	if err != nil {
		return nil, err
	}
	if !w.Open() {
		return nil, model.ErrWorkdayClosed
	}

	at = at.UTC()
	if at.Before(w.ClockIn) {
		return nil, model.ErrInvalidInterval
	}

	hours := at.Sub(w.ClockIn).Hours()
	if err := s.repo.CloseWorkday(ctx, workdayID, at, hours, notes); err != nil {
		return nil, err
	}

	w.ClockOut = &at
	w.Hours = hours
	w.Notes = notes
	return w, nil
}

// CurrentOpen returns the employee's open workday for the given date, or
// nil when there is none. Pure lookup, no side effects.
func (s *WorkdayService) CurrentOpen(ctx context.Context, employeeID string, date time.Time) (*model.Workday, error) {
	return s.repo.FindOpenWorkday(ctx, employeeID, dayOf(date.UTC()))
}

// dayOf truncates a timestamp to its calendar day in UTC.
func dayOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
