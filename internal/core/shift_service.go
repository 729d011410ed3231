package core

import (
	"context"
	"time"

	"github.com/Landa5/SEL-CONTROL-HORARIO-sub000/internal/core/model"
	"github.com/Landa5/SEL-CONTROL-HORARIO-sub000/internal/ports/repository"
	"github.com/rs/zerolog/log"
)

// ShiftService owns the lifecycle of vehicle-usage intervals nested inside
// workdays. It enforces odometer continuity between consecutive shifts of
// a vehicle and the single-active-driver-per-vehicle invariant, and runs
// the conflict-resolution path when a start reading disagrees with the
// vehicle's last known reading.
type ShiftService struct {
	repo repository.ShiftRepository
}

func NewShiftService(repo repository.ShiftRepository) *ShiftService {
	return &ShiftService{repo: repo}
}

// StartShiftResult is the outcome of a start attempt: either the created
// active shift, or a conflict the caller must resolve through
// ConfirmConflict. Exactly one of the two fields is set.
type StartShiftResult struct {
	Shift    *model.VehicleShift     `json:"shift,omitempty"`
	Conflict *model.OdometerConflict `json:"conflict,omitempty"`
}

// StartShift opens a shift on an open workday. The asserted start reading
// must exactly match the vehicle's last known reading (no tolerance band);
// a mismatch returns a Conflict result carrying the expected value and
// creates nothing. A vehicle with an active shift under any employee fails
// with ErrVehicleAlreadyInUse.
func (s *ShiftService) StartShift(ctx context.Context, workdayID int64, vehicleID string, at time.Time, startOdometer int64) (*StartShiftResult, error) {
	shift, expected, err := s.repo.StartShift(ctx, workdayID, vehicleID, at.UTC(), startOdometer, "", true)
	if err != nil {
		return nil, err
	}
	if expected != nil {
		log.Ctx(ctx).Info().
			Str("vehicle_id", vehicleID).
			Int64("expected", *expected).
			Int64("asserted", startOdometer).
			Msg("Odometer conflict, evidence required to proceed")
		return &StartShiftResult{Conflict: &model.OdometerConflict{
			VehicleID:        vehicleID,
			ExpectedOdometer: *expected,
			AssertedOdometer: startOdometer,
		}}, nil
	}
	return &StartShiftResult{Shift: shift}, nil
}

// ConfirmConflict creates the shift a previous StartShift refused,
// recording the operator-asserted reading as ground truth. It requires a
// non-empty evidence URI (the photographic proof of the reading); once the
// evidence is attached the system does not second-guess the value.
func (s *ShiftService) ConfirmConflict(ctx context.Context, workdayID int64, vehicleID string, at time.Time, startOdometer int64, evidenceURI string) (*model.VehicleShift, error) {
	if evidenceURI == "" {
		return nil, model.ErrEvidenceRequired
	}

	shift, _, err := s.repo.StartShift(ctx, workdayID, vehicleID, at.UTC(), startOdometer, evidenceURI, false)
	if err != nil {
		return nil, err
	}
	log.Ctx(ctx).Info().
		Str("vehicle_id", vehicleID).
		Int64("start_odometer", startOdometer).
		Str("evidence_uri", evidenceURI).
		Msg("Shift started with conflict evidence")
	return shift, nil
}

// EndShift closes an active shift. Any counters passed here are applied as
// final additive deltas. Fails with ErrInvalidOdometer when the end
// reading is below the start reading.
func (s *ShiftService) EndShift(ctx context.Context, shiftID int64, at time.Time, endOdometer int64, trips, unloads int, fuelLiters float64) (*model.VehicleShift, error) {
	shift, err := s.repo.GetShift(ctx, shiftID)
	if err != nil {
		return nil, err
	}
	if !shift.Active() {
		return nil, model.ErrShiftClosed
	}
	if endOdometer < shift.StartOdometer {
		return nil, model.ErrInvalidOdometer
	}

	at = at.UTC()
	if at.Before(shift.StartTime) {
		return nil, model.ErrInvalidInterval
	}

	if err := s.repo.EndShift(ctx, shiftID, at, endOdometer, trips, unloads, fuelLiters); err != nil {
		return nil, err
	}
	return s.repo.GetShift(ctx, shiftID)
}

// RecordTrip adds completed trips to an active shift's running total.
// Called once per delivery; only the total matters.
func (s *ShiftService) RecordTrip(ctx context.Context, shiftID int64, delta int) error {
	return s.repo.AddCounters(ctx, shiftID, delta, 0, 0)
}

// RecordUnload adds unloads to an active shift's running total.
func (s *ShiftService) RecordUnload(ctx context.Context, shiftID int64, delta int) error {
	return s.repo.AddCounters(ctx, shiftID, 0, delta, 0)
}

// RecordFuel adds refueled liters to an active shift's running total.
func (s *ShiftService) RecordFuel(ctx context.Context, shiftID int64, liters float64) error {
	return s.repo.AddCounters(ctx, shiftID, 0, 0, liters)
}

// GetShift fetches one shift.
func (s *ShiftService) GetShift(ctx context.Context, shiftID int64) (*model.VehicleShift, error) {
	return s.repo.GetShift(ctx, shiftID)
}
