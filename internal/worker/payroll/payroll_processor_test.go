package payroll_test

import (
	"context"
	"database/sql"
	"encoding/json"
	"testing"
	"time"

	"github.com/Landa5/SEL-CONTROL-HORARIO-sub000/internal/core"
	"github.com/Landa5/SEL-CONTROL-HORARIO-sub000/internal/core/model"
	"github.com/Landa5/SEL-CONTROL-HORARIO-sub000/internal/hr"
	"github.com/Landa5/SEL-CONTROL-HORARIO-sub000/internal/ports/messaging"
	"github.com/Landa5/SEL-CONTROL-HORARIO-sub000/internal/ports/repository"
	"github.com/Landa5/SEL-CONTROL-HORARIO-sub000/internal/rates"
	"github.com/Landa5/SEL-CONTROL-HORARIO-sub000/internal/worker/payroll"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	service  *core.PayrollService
	payrolls repository.PayrollRepository
}

func newFixture(t *testing.T, thresholds hr.ThresholdProvider) *fixture {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	require.NoError(t, repository.Migrate(db, "sqlite3"))
	t.Cleanup(func() { db.Close() })

	workdayRepo := repository.NewWorkdayRepo(db)
	shiftRepo := repository.NewShiftRepo(db)
	payrollRepo := repository.NewPayrollRepo(db)

	// One 9h day on 2026-03-02 for emp-1.
	clockIn := time.Date(2026, time.March, 2, 8, 0, 0, 0, time.UTC)
	w, err := workdayRepo.CreateWorkday(context.Background(), "emp-1",
		time.Date(2026, time.March, 2, 0, 0, 0, 0, time.UTC), clockIn)
	require.NoError(t, err)
	require.NoError(t, workdayRepo.CloseWorkday(context.Background(), w.ID, clockIn.Add(9*time.Hour), 9, ""))

	activity := core.NewActivityService(workdayRepo, shiftRepo, thresholds)
	table := &rates.StaticProvider{Table: map[string]model.ConceptRate{
		model.ConceptOvertime: {Code: model.ConceptOvertime, Label: "Horas extra", Rate: decimal.RequireFromString("12.50"), Kind: model.KindQuantity},
	}}
	return &fixture{
		service:  core.NewPayrollService(payrollRepo, activity, table, nil),
		payrolls: payrollRepo,
	}
}

func generationMessage(t *testing.T, employeeIDs ...string) types.Message {
	t.Helper()
	body, err := json.Marshal(messaging.GenerationRequestedEvent{
		EmployeeIDs: employeeIDs,
		Year:        2026,
		Month:       3,
		RequestedAt: time.Now().UTC(),
	})
	require.NoError(t, err)
	return types.Message{Body: aws.String(string(body))}
}

func TestProcessRunsGenerationBatch(t *testing.T) {
	f := newFixture(t, &hr.StaticProvider{Default: 8})
	p := payroll.NewProcessor(f.service)

	retry, _, err := p.Process(context.Background(), generationMessage(t, "emp-1"))
	require.NoError(t, err)
	assert.False(t, retry)

	record, err := f.payrolls.GetPayroll(context.Background(), "emp-1", 2026, 3)
	require.NoError(t, err)
	require.NotNil(t, record)
	assert.True(t, record.Total.Equal(decimal.RequireFromString("12.50")))
}

func TestProcessRetriesWhenEmployeesFail(t *testing.T) {
	f := newFixture(t, &brokenThresholds{})
	p := payroll.NewProcessor(f.service)

	retry, delay, err := p.Process(context.Background(), generationMessage(t, "emp-1"))
	assert.Error(t, err)
	assert.True(t, retry, "storage or HR outages make the batch replayable")
	assert.Positive(t, delay)
}

func TestProcessDropsMalformedMessage(t *testing.T) {
	f := newFixture(t, &hr.StaticProvider{Default: 8})
	p := payroll.NewProcessor(f.service)

	retry, _, err := p.Process(context.Background(), types.Message{Body: aws.String("{not json")})
	assert.Error(t, err)
	assert.False(t, retry)
}

type brokenThresholds struct{}

func (brokenThresholds) OvertimeThreshold(context.Context, string) (float64, error) {
	return 0, assert.AnError
}
