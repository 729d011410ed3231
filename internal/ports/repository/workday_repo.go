package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/Landa5/SEL-CONTROL-HORARIO-sub000/internal/core/model"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// WorkdayRepo is the SQL implementation of WorkdayRepository.
type WorkdayRepo struct {
	DB *sql.DB
}

// NewWorkdayRepo creates a new instance.
func NewWorkdayRepo(db *sql.DB) WorkdayRepository {
	return &WorkdayRepo{DB: db}
}

const workdayColumns = `id, employee_id, work_date, clock_in, clock_out, hours, notes`

// CreateWorkday inserts a new open workday. The partial unique index on
// open workdays rejects a second open record for the same employee.
func (r *WorkdayRepo) CreateWorkday(ctx context.Context, employeeID string, date, clockIn time.Time) (*model.Workday, error) {
	trace.SpanFromContext(ctx).SetAttributes(attribute.String("app.employeeId", employeeID))

	query := `INSERT INTO workdays (employee_id, work_date, clock_in)
              VALUES ($1, $2, $3) RETURNING id`

	w := &model.Workday{EmployeeID: employeeID, Date: date, ClockIn: clockIn}
	err := r.DB.QueryRowContext(ctx, query, employeeID, date, clockIn).Scan(&w.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, model.ErrWorkdayAlreadyOpen
		}
		return nil, err
	}

	return w, nil
}

// GetWorkday fetches a workday by id.
func (r *WorkdayRepo) GetWorkday(ctx context.Context, id int64) (*model.Workday, error) {
	query := `SELECT ` + workdayColumns + ` FROM workdays WHERE id = $1`

	w, err := scanWorkday(r.DB.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, model.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return w, nil
}

// CloseWorkday sets the clock-out on a still-open workday. The open guard
// in the WHERE clause makes a concurrent double clock-out lose cleanly.
func (r *WorkdayRepo) CloseWorkday(ctx context.Context, id int64, clockOut time.Time, hours float64, notes string) error {
	query := `UPDATE workdays
              SET clock_out = $1,
                  hours = $2,
                  notes = $3
              WHERE id = $4 AND clock_out IS NULL`

	res, err := r.DB.ExecContext(ctx, query, clockOut, hours, notes, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return model.ErrWorkdayClosed
	}
	return nil
}

// FindOpenWorkday returns the employee's open workday for the given date,
// or nil when there is none.
func (r *WorkdayRepo) FindOpenWorkday(ctx context.Context, employeeID string, date time.Time) (*model.Workday, error) {
	trace.SpanFromContext(ctx).SetAttributes(attribute.String("app.employeeId", employeeID))

	query := `SELECT ` + workdayColumns + `
              FROM workdays
              WHERE employee_id = $1 AND work_date = $2 AND clock_out IS NULL
              ORDER BY clock_in DESC
              LIMIT 1`

	w, err := scanWorkday(r.DB.QueryRowContext(ctx, query, employeeID, date))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return w, nil
}

// ListWorkdaysInRange returns the employee's workdays with
// from <= work_date < to, ordered by date.
func (r *WorkdayRepo) ListWorkdaysInRange(ctx context.Context, employeeID string, from, to time.Time) ([]model.Workday, error) {
	query := `SELECT ` + workdayColumns + `
              FROM workdays
              WHERE employee_id = $1 AND work_date >= $2 AND work_date < $3
              ORDER BY work_date, clock_in`

	rows, err := r.DB.QueryContext(ctx, query, employeeID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Workday
	for rows.Next() {
		w, err := scanWorkday(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *w)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanWorkday(row rowScanner) (*model.Workday, error) {
	w := &model.Workday{}
	var clockOut sql.NullTime
	err := row.Scan(&w.ID, &w.EmployeeID, &w.Date, &w.ClockIn, &clockOut, &w.Hours, &w.Notes)
	if err != nil {
		return nil, err
	}
	if clockOut.Valid {
		t := clockOut.Time
		w.ClockOut = &t
	}
	return w, nil
}
