package core_test

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/Landa5/SEL-CONTROL-HORARIO-sub000/internal/core"
	"github.com/Landa5/SEL-CONTROL-HORARIO-sub000/internal/core/model"
	"github.com/Landa5/SEL-CONTROL-HORARIO-sub000/internal/hr"
	"github.com/Landa5/SEL-CONTROL-HORARIO-sub000/internal/ports/messaging"
	"github.com/Landa5/SEL-CONTROL-HORARIO-sub000/internal/ports/repository"
	"github.com/Landa5/SEL-CONTROL-HORARIO-sub000/internal/rates"
	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

// The services run against a real in-memory SQLite database so the
// partial unique indexes and transactional merges behave exactly as they
// do in production.
func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	// One in-memory database per connection otherwise.
	db.SetMaxOpenConns(1)
	require.NoError(t, repository.Migrate(db, "sqlite3"))
	t.Cleanup(func() { db.Close() })
	return db
}

// env wires the full service stack over one test database.
type env struct {
	workdays core.WorkdayService
	shifts   core.ShiftService
	activity core.ActivityService
	payroll  core.PayrollService

	payrollRepo repository.PayrollRepository
	producer    *capturingProducer
}

func newEnv(t *testing.T) *env {
	return newEnvWith(t, &hr.StaticProvider{Default: 160})
}

func newEnvWith(t *testing.T, thresholds hr.ThresholdProvider) *env {
	t.Helper()
	db := newTestDB(t)
	workdayRepo := repository.NewWorkdayRepo(db)
	shiftRepo := repository.NewShiftRepo(db)
	payrollRepo := repository.NewPayrollRepo(db)

	activity := core.NewActivityService(workdayRepo, shiftRepo, thresholds)
	producer := &capturingProducer{}
	payroll := core.NewPayrollService(payrollRepo, activity, &rates.StaticProvider{Table: testRates()}, producer)

	return &env{
		workdays:    *core.NewWorkdayService(workdayRepo),
		shifts:      *core.NewShiftService(shiftRepo),
		activity:    *activity,
		payroll:     *payroll,
		payrollRepo: payrollRepo,
		producer:    producer,
	}
}

func testRates() map[string]model.ConceptRate {
	return map[string]model.ConceptRate{
		model.ConceptOvertime:        {Code: model.ConceptOvertime, Label: "Horas extra", Rate: dec("12.50"), Kind: model.KindQuantity},
		model.ConceptDistance:        {Code: model.ConceptDistance, Label: "Plus distancia", Rate: dec("0.09"), Kind: model.KindQuantity},
		model.ConceptTrips:           {Code: model.ConceptTrips, Label: "Plus productividad viajes", Rate: dec("3.00"), Kind: model.KindQuantity},
		model.ConceptUnloads:         {Code: model.ConceptUnloads, Label: "Plus descargas", Rate: dec("1.50"), Kind: model.KindQuantity},
		model.ConceptDriverIncentive: {Code: model.ConceptDriverIncentive, Label: "Incentivo conductor", Rate: dec("30.00"), Kind: model.KindFlag},
	}
}

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func at(day, hour int) time.Time {
	return time.Date(2026, time.March, day, hour, 0, 0, 0, time.UTC)
}

// workedDay clocks an employee in and out for one day and returns the
// closed workday.
func (e *env) workedDay(t *testing.T, employeeID string, day, fromHour, toHour int) *model.Workday {
	t.Helper()
	ctx := context.Background()
	w, err := e.workdays.ClockIn(ctx, employeeID, at(day, fromHour))
	require.NoError(t, err)
	w, err = e.workdays.ClockOut(ctx, w.ID, at(day, toHour), "")
	require.NoError(t, err)
	return w
}

// drivenShift starts and ends a shift on the given workday, producing the
// requested counters.
func (e *env) drivenShift(t *testing.T, workdayID int64, vehicleID string, day int, startOdo, endOdo int64, trips, unloads int, fuel float64) *model.VehicleShift {
	t.Helper()
	ctx := context.Background()
	res, err := e.shifts.StartShift(ctx, workdayID, vehicleID, at(day, 8), startOdo)
	require.NoError(t, err)
	require.Nil(t, res.Conflict, "unexpected odometer conflict at %d", startOdo)
	s, err := e.shifts.EndShift(ctx, res.Shift.ID, at(day, 16), endOdo, trips, unloads, fuel)
	require.NoError(t, err)
	return s
}

// capturingProducer records published events instead of talking to SQS.
type capturingProducer struct {
	mu     sync.Mutex
	emails []messaging.PayslipEmailEvent
	fail   bool
}

func (p *capturingProducer) PublishGeneration(_ context.Context, _ interface{}) error {
	return nil
}

func (p *capturingProducer) PublishEmail(_ context.Context, body interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.fail {
		return fmt.Errorf("queue unavailable")
	}
	event, ok := body.(messaging.PayslipEmailEvent)
	if !ok {
		return fmt.Errorf("unexpected event type %T", body)
	}
	p.emails = append(p.emails, event)
	return nil
}

func (p *capturingProducer) Emails() []messaging.PayslipEmailEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]messaging.PayslipEmailEvent, len(p.emails))
	copy(out, p.emails)
	return out
}

// failingThresholds errors for selected employees, simulating an HR API
// outage mid-batch.
type failingThresholds struct {
	fail map[string]bool
}

func (p *failingThresholds) OvertimeThreshold(_ context.Context, employeeID string) (float64, error) {
	if p.fail[employeeID] {
		return 0, fmt.Errorf("hr api unreachable")
	}
	return 160, nil
}
