package core_test

import (
	"context"
	"testing"

	"github.com/Landa5/SEL-CONTROL-HORARIO-sub000/internal/core/model"
	"github.com/Landa5/SEL-CONTROL-HORARIO-sub000/internal/hr"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func assertDec(t *testing.T, expected string, actual decimal.Decimal) {
	t.Helper()
	assert.True(t, dec(expected).Equal(actual), "expected %s, got %s", expected, actual)
}

// driverMonth produces the reference scenario: one 9h day driving 120 km
// with 2 trips and 1 unload, against an 8h overtime threshold.
func driverMonth(t *testing.T, e *env, employeeID string) {
	t.Helper()
	w := e.workedDay(t, employeeID, 2, 8, 17)
	e.drivenShift(t, w.ID, "truck-"+employeeID, 2, 1000, 1120, 2, 1, 35)
}

func driverEnv(t *testing.T) *env {
	return newEnvWith(t, &hr.StaticProvider{Default: 8})
}

func TestGenerateCreatesDraftPayroll(t *testing.T) {
	e := driverEnv(t)
	driverMonth(t, e, "emp-1")

	results := e.payroll.Generate(context.Background(), []string{"emp-1"}, 2026, 3, nil)
	require.Len(t, results, 1)
	require.Equal(t, model.OutcomeCreated, results[0].Outcome)

	p, err := e.payroll.GetPayroll(context.Background(), "emp-1", 2026, 3)
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, model.PayrollDraft, p.Status)
	require.Len(t, p.Lines, 5)

	// 1h overtime, 120 km, 2 trips, 1 unload, plus the driver incentive.
	assertDec(t, "12.50", p.Line(model.ConceptOvertime).Amount)
	assertDec(t, "10.80", p.Line(model.ConceptDistance).Amount)
	assertDec(t, "6.00", p.Line(model.ConceptTrips).Amount)
	assertDec(t, "1.50", p.Line(model.ConceptUnloads).Amount)
	assertDec(t, "30.00", p.Line(model.ConceptDriverIncentive).Amount)
	assertDec(t, "60.80", p.Total)

	emails := e.producer.Emails()
	require.Len(t, emails, 1)
	assert.Equal(t, p.ID, emails[0].PayrollID)
	assert.False(t, emails[0].Closed)
}

func TestGenerateOmitsZeroQuantityConcepts(t *testing.T) {
	e := newEnv(t) // default 160h threshold, no overtime
	e.workedDay(t, "emp-1", 2, 8, 16)

	results := e.payroll.Generate(context.Background(), []string{"emp-1"}, 2026, 3, nil)
	require.Len(t, results, 1)
	require.Equal(t, model.OutcomeCreated, results[0].Outcome)

	p, err := e.payroll.GetPayroll(context.Background(), "emp-1", 2026, 3)
	require.NoError(t, err)
	assert.Empty(t, p.Lines, "no activity above thresholds, no lines")
	assertDec(t, "0", p.Total)
}

func TestGenerateUpdatesExistingDraft(t *testing.T) {
	e := driverEnv(t)
	driverMonth(t, e, "emp-1")
	ctx := context.Background()

	results := e.payroll.Generate(ctx, []string{"emp-1"}, 2026, 3, nil)
	require.Equal(t, model.OutcomeCreated, results[0].Outcome)

	// More activity lands after the first run.
	w := e.workedDay(t, "emp-1", 3, 8, 16)
	e.drivenShift(t, w.ID, "truck-emp-1", 3, 1120, 1150, 1, 0, 10)

	results = e.payroll.Generate(ctx, []string{"emp-1"}, 2026, 3, nil)
	require.Equal(t, model.OutcomeUpdated, results[0].Outcome)

	p, err := e.payroll.GetPayroll(ctx, "emp-1", 2026, 3)
	require.NoError(t, err)
	assertDec(t, "13.50", p.Line(model.ConceptDistance).Amount) // 150 km
	assertDec(t, "9.00", p.Line(model.ConceptTrips).Amount)     // 3 trips
}

func TestManualOverrideSurvivesRegeneration(t *testing.T) {
	e := driverEnv(t)
	driverMonth(t, e, "emp-1")
	ctx := context.Background()

	e.payroll.Generate(ctx, []string{"emp-1"}, 2026, 3, nil)
	p, err := e.payroll.GetPayroll(ctx, "emp-1", 2026, 3)
	require.NoError(t, err)

	line, err := e.payroll.EditLine(ctx, p.Line(model.ConceptOvertime).ID, dec("50.00"), "negotiated flat rate")
	require.NoError(t, err)
	assert.True(t, line.IsManualOverride)
	assertDec(t, "50.00", line.Amount)

	// The edit shifts the total immediately.
	p, err = e.payroll.GetPayroll(ctx, "emp-1", 2026, 3)
	require.NoError(t, err)
	assertDec(t, "98.30", p.Total)

	// New activity, new run: the override keeps exactly its edited value
	// while every other line is recomputed.
	w := e.workedDay(t, "emp-1", 3, 8, 16)
	e.drivenShift(t, w.ID, "truck-emp-1", 3, 1120, 1150, 1, 0, 10)
	results := e.payroll.Generate(ctx, []string{"emp-1"}, 2026, 3, nil)
	require.Equal(t, model.OutcomeUpdated, results[0].Outcome)

	p, err = e.payroll.GetPayroll(ctx, "emp-1", 2026, 3)
	require.NoError(t, err)
	overtime := p.Line(model.ConceptOvertime)
	assert.True(t, overtime.IsManualOverride)
	assertDec(t, "50.00", overtime.Amount)
	assert.Equal(t, "negotiated flat rate", overtime.Notes)
	assertDec(t, "13.50", p.Line(model.ConceptDistance).Amount)
}

func TestClosedPayrollIsImmutable(t *testing.T) {
	e := driverEnv(t)
	driverMonth(t, e, "emp-1")
	ctx := context.Background()

	e.payroll.Generate(ctx, []string{"emp-1"}, 2026, 3, nil)
	p, err := e.payroll.GetPayroll(ctx, "emp-1", 2026, 3)
	require.NoError(t, err)

	closed, err := e.payroll.Close(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, model.PayrollClosed, closed.Status)
	assert.False(t, closed.Editable())

	// One-way door.
	_, err = e.payroll.Close(ctx, p.ID)
	assert.ErrorIs(t, err, model.ErrPayrollAlreadyClosed)

	_, err = e.payroll.EditLine(ctx, p.Line(model.ConceptOvertime).ID, dec("99.99"), "")
	assert.ErrorIs(t, err, model.ErrPayrollClosed)

	// A later generation run reports the skip and changes nothing.
	results := e.payroll.Generate(ctx, []string{"emp-1"}, 2026, 3, nil)
	require.Equal(t, model.OutcomeSkipped, results[0].Outcome)
	assert.Equal(t, "closed", results[0].Reason)

	after, err := e.payroll.GetPayroll(ctx, "emp-1", 2026, 3)
	require.NoError(t, err)
	assert.True(t, after.Total.Equal(p.Total))
	assert.Equal(t, model.PayrollClosed, after.Status)
}

func TestGenerateBatchIsolatesFailures(t *testing.T) {
	e := newEnvWith(t, &failingThresholds{fail: map[string]bool{"emp-bad": true}})
	e.workedDay(t, "emp-a", 2, 8, 16)
	e.workedDay(t, "emp-c", 2, 8, 16)

	results := e.payroll.Generate(context.Background(), []string{"emp-a", "emp-bad", "emp-c"}, 2026, 3, nil)
	require.Len(t, results, 3)

	assert.Equal(t, model.OutcomeCreated, results[0].Outcome)
	assert.Equal(t, model.OutcomeFailed, results[1].Outcome)
	assert.Error(t, results[1].Err)
	assert.Equal(t, model.OutcomeCreated, results[2].Outcome, "failure must not abort the rest of the batch")
}

func TestGenerateStopsBetweenEmployeesOnCancel(t *testing.T) {
	e := driverEnv(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results := e.payroll.Generate(ctx, []string{"emp-a", "emp-b"}, 2026, 3, nil)
	require.Len(t, results, 2)
	for _, r := range results {
		assert.Equal(t, model.OutcomeSkipped, r.Outcome)
		assert.Equal(t, "batch cancelled", r.Reason)
	}

	p, err := e.payroll.GetPayroll(context.Background(), "emp-a", 2026, 3)
	require.NoError(t, err)
	assert.Nil(t, p)
}

func TestGenerateAppendsFixedConcepts(t *testing.T) {
	e := driverEnv(t)
	driverMonth(t, e, "emp-1")

	fixed := map[string][]model.FixedConcept{
		"emp-1": {{Code: "NIGHT_STIPEND", Label: "Plus nocturnidad", Amount: dec("75.00")}},
	}
	results := e.payroll.Generate(context.Background(), []string{"emp-1"}, 2026, 3, fixed)
	require.Equal(t, model.OutcomeCreated, results[0].Outcome)

	p, err := e.payroll.GetPayroll(context.Background(), "emp-1", 2026, 3)
	require.NoError(t, err)
	stipend := p.Line("NIGHT_STIPEND")
	require.NotNil(t, stipend)
	assertDec(t, "75.00", stipend.Amount)
	assertDec(t, "135.80", p.Total)
}

func TestGetPayrollReturnsNilWhenMissing(t *testing.T) {
	e := newEnv(t)

	p, err := e.payroll.GetPayroll(context.Background(), "emp-1", 2026, 3)
	require.NoError(t, err)
	assert.Nil(t, p)
}

func TestPayslipEmailLifecycle(t *testing.T) {
	e := driverEnv(t)
	driverMonth(t, e, "emp-1")
	ctx := context.Background()

	e.payroll.Generate(ctx, []string{"emp-1"}, 2026, 3, nil)
	p, err := e.payroll.GetPayroll(ctx, "emp-1", 2026, 3)
	require.NoError(t, err)
	assert.Equal(t, model.StatusEmailPending, p.EmailStatus)

	// The email worker marks the payslip sent; the next payroll change
	// re-arms the notification.
	require.NoError(t, e.payrollRepo.UpdateEmailStatus(ctx, p.ID, model.StatusEmailCompleted, 0))

	e.payroll.Generate(ctx, []string{"emp-1"}, 2026, 3, nil)
	p, err = e.payrollRepo.GetPayrollByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusEmailPending, p.EmailStatus)

	require.NoError(t, e.payrollRepo.UpdateEmailStatus(ctx, p.ID, model.StatusEmailCompleted, 0))
	closed, err := e.payroll.Close(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusEmailPending, closed.EmailStatus)

	emails := e.producer.Emails()
	require.Len(t, emails, 3)
	assert.False(t, emails[0].Closed)
	assert.False(t, emails[1].Closed)
	assert.True(t, emails[2].Closed)
}

func TestNotifyFailureDoesNotFailGeneration(t *testing.T) {
	e := driverEnv(t)
	driverMonth(t, e, "emp-1")
	e.producer.fail = true

	results := e.payroll.Generate(context.Background(), []string{"emp-1"}, 2026, 3, nil)
	require.Equal(t, model.OutcomeCreated, results[0].Outcome, "publish failure is best effort")
}
