package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/Landa5/SEL-CONTROL-HORARIO-sub000/internal/core/model"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// ShiftRepo is the SQL implementation of ShiftRepository.
type ShiftRepo struct {
	DB *sql.DB
}

// NewShiftRepo creates a new instance.
func NewShiftRepo(db *sql.DB) ShiftRepository {
	return &ShiftRepo{DB: db}
}

const shiftColumns = `id, workday_id, vehicle_id, start_time, end_time,
	start_odometer, end_odometer, trip_count, unload_count, fuel_liters,
	conflict_evidence_uri`

// StartShift checks the workday, compares the asserted start reading with
// the vehicle's last known reading and inserts the shift, all inside one
// transaction. The partial unique index on active shifts turns a
// concurrent start for the same vehicle into ErrVehicleAlreadyInUse.
func (r *ShiftRepo) StartShift(ctx context.Context, workdayID int64, vehicleID string, at time.Time, startOdometer int64, evidenceURI string, requireContinuity bool) (*model.VehicleShift, *int64, error) {
	trace.SpanFromContext(ctx).SetAttributes(attribute.String("app.vehicleId", vehicleID))

	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, nil, err
	}
	defer tx.Rollback()

	// The workday must exist and still be open.
	var clockOut sql.NullTime
	err = tx.QueryRowContext(ctx,
		`SELECT clock_out FROM workdays WHERE id = $1`, workdayID).Scan(&clockOut)
	if err == sql.ErrNoRows {
		return nil, nil, model.ErrNotFound
	}
	if err != nil {
		return nil, nil, err
	}
	if clockOut.Valid {
		return nil, nil, model.ErrWorkdayClosed
	}

	// Last known reading for the vehicle: the end odometer of its most
	// recent shift. A prior shift without an end reading leaves the
	// expected value unknown and any asserted reading is accepted.
	var lastEnd sql.NullInt64
	var lastStart int64
	expectedKnown := false
	var expected int64
	err = tx.QueryRowContext(ctx,
		`SELECT start_odometer, end_odometer
         FROM vehicle_shifts
         WHERE vehicle_id = $1
         ORDER BY start_time DESC, id DESC
         LIMIT 1`, vehicleID).Scan(&lastStart, &lastEnd)
	if err != nil && err != sql.ErrNoRows {
		return nil, nil, err
	}
	if err == nil && lastEnd.Valid {
		expectedKnown = true
		expected = lastEnd.Int64
	}

	if requireContinuity && expectedKnown && startOdometer != expected {
		return nil, &expected, nil
	}

	s := &model.VehicleShift{
		WorkdayID:           workdayID,
		VehicleID:           vehicleID,
		StartTime:           at,
		StartOdometer:       startOdometer,
		ConflictEvidenceURI: evidenceURI,
	}
	err = tx.QueryRowContext(ctx,
		`INSERT INTO vehicle_shifts (workday_id, vehicle_id, start_time, start_odometer, conflict_evidence_uri)
         VALUES ($1, $2, $3, $4, $5) RETURNING id`,
		workdayID, vehicleID, at, startOdometer, evidenceURI).Scan(&s.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, nil, model.ErrVehicleAlreadyInUse
		}
		return nil, nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, nil, err
	}
	return s, nil, nil
}

// GetShift fetches a shift by id.
func (r *ShiftRepo) GetShift(ctx context.Context, id int64) (*model.VehicleShift, error) {
	query := `SELECT ` + shiftColumns + ` FROM vehicle_shifts WHERE id = $1`

	s, err := scanShift(r.DB.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, model.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}

// EndShift closes an active shift, applying any final counter deltas in
// the same statement. The active guard makes a concurrent double end lose.
func (r *ShiftRepo) EndShift(ctx context.Context, id int64, at time.Time, endOdometer int64, trips, unloads int, fuelLiters float64) error {
	query := `UPDATE vehicle_shifts
              SET end_time = $1,
                  end_odometer = $2,
                  trip_count = trip_count + $3,
                  unload_count = unload_count + $4,
                  fuel_liters = fuel_liters + $5
              WHERE id = $6 AND end_time IS NULL`

	res, err := r.DB.ExecContext(ctx, query, at, endOdometer, trips, unloads, fuelLiters, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return model.ErrShiftClosed
	}
	return nil
}

// AddCounters applies additive deltas to an active shift's running totals.
func (r *ShiftRepo) AddCounters(ctx context.Context, id int64, trips, unloads int, fuelLiters float64) error {
	query := `UPDATE vehicle_shifts
              SET trip_count = trip_count + $1,
                  unload_count = unload_count + $2,
                  fuel_liters = fuel_liters + $3
              WHERE id = $4 AND end_time IS NULL`

	res, err := r.DB.ExecContext(ctx, query, trips, unloads, fuelLiters, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return model.ErrShiftClosed
	}
	return nil
}

// ListShiftsInRange returns the shifts whose workday belongs to the
// employee and falls inside [from, to), ordered by start time.
func (r *ShiftRepo) ListShiftsInRange(ctx context.Context, employeeID string, from, to time.Time) ([]model.VehicleShift, error) {
	query := `SELECT s.id, s.workday_id, s.vehicle_id, s.start_time, s.end_time,
                     s.start_odometer, s.end_odometer, s.trip_count, s.unload_count,
                     s.fuel_liters, s.conflict_evidence_uri
              FROM vehicle_shifts s
              JOIN workdays w ON w.id = s.workday_id
              WHERE w.employee_id = $1 AND w.work_date >= $2 AND w.work_date < $3
              ORDER BY s.start_time, s.id`

	return r.queryShifts(ctx, query, employeeID, from, to)
}

// ListVehicleShifts returns every shift of one vehicle ordered by start time.
func (r *ShiftRepo) ListVehicleShifts(ctx context.Context, vehicleID string) ([]model.VehicleShift, error) {
	query := `SELECT ` + shiftColumns + `
              FROM vehicle_shifts
              WHERE vehicle_id = $1
              ORDER BY start_time, id`

	return r.queryShifts(ctx, query, vehicleID)
}

func (r *ShiftRepo) queryShifts(ctx context.Context, query string, args ...any) ([]model.VehicleShift, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.VehicleShift
	for rows.Next() {
		s, err := scanShift(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *s)
	}
	return out, rows.Err()
}

func scanShift(row rowScanner) (*model.VehicleShift, error) {
	s := &model.VehicleShift{}
	var endTime sql.NullTime
	var endOdometer sql.NullInt64
	err := row.Scan(&s.ID, &s.WorkdayID, &s.VehicleID, &s.StartTime, &endTime,
		&s.StartOdometer, &endOdometer, &s.TripCount, &s.UnloadCount,
		&s.FuelLiters, &s.ConflictEvidenceURI)
	if err != nil {
		return nil, err
	}
	if endTime.Valid {
		t := endTime.Time
		s.EndTime = &t
	}
	if endOdometer.Valid {
		v := endOdometer.Int64
		s.EndOdometer = &v
	}
	return s, nil
}
