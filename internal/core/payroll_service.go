package core

import (
	"context"
	"time"

	"github.com/Landa5/SEL-CONTROL-HORARIO-sub000/internal/core/model"
	"github.com/Landa5/SEL-CONTROL-HORARIO-sub000/internal/ports/messaging"
	"github.com/Landa5/SEL-CONTROL-HORARIO-sub000/internal/ports/repository"
	"github.com/Landa5/SEL-CONTROL-HORARIO-sub000/internal/rates"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// PayrollService maps aggregated activity into priced payroll lines,
// merges them into the monthly payroll record without touching manual
// overrides, and enforces the Draft/Closed state machine.
type PayrollService struct {
	payrolls repository.PayrollRepository
	activity *ActivityService
	rates    rates.Provider
	producer messaging.QueueProducer
}

func NewPayrollService(payrolls repository.PayrollRepository, activity *ActivityService, ratesProvider rates.Provider, producer messaging.QueueProducer) *PayrollService {
	return &PayrollService{
		payrolls: payrolls,
		activity: activity,
		rates:    ratesProvider,
		producer: producer,
	}
}

// Generate runs a payroll generation batch. Employees are processed
// independently: one employee's failure is reported as a Failed result and
// never aborts the rest. Cancelling the context stops the batch between
// employees; a per-employee transaction already started runs to
// completion. fixed carries externally supplied flat concepts (stipends)
// keyed by employee id.
func (s *PayrollService) Generate(ctx context.Context, employeeIDs []string, year, month int, fixed map[string][]model.FixedConcept) []model.GenerationResult {
	results := make([]model.GenerationResult, 0, len(employeeIDs))

	for _, employeeID := range employeeIDs {
		if err := ctx.Err(); err != nil {
			results = append(results, model.GenerationResult{
				EmployeeID: employeeID,
				Outcome:    model.OutcomeSkipped,
				Reason:     "batch cancelled",
			})
			continue
		}
		results = append(results, s.generateOne(ctx, employeeID, year, month, fixed[employeeID]))
	}

	return results
}

func (s *PayrollService) generateOne(ctx context.Context, employeeID string, year, month int, fixed []model.FixedConcept) model.GenerationResult {
	fail := func(err error) model.GenerationResult {
		log.Ctx(ctx).Error().Err(err).
			Str("employee_id", employeeID).
			Int("year", year).Int("month", month).
			Msg("Payroll generation failed for employee")
		return model.GenerationResult{
			EmployeeID: employeeID,
			Outcome:    model.OutcomeFailed,
			Reason:     err.Error(),
			Err:        err,
		}
	}

	totals, err := s.activity.Aggregate(ctx, employeeID, year, month)
	if err != nil {
		return fail(err)
	}

	table, err := s.rates.Rates(ctx)
	if err != nil {
		return fail(err)
	}

	candidates := buildCandidates(totals, table, fixed)

	payroll, outcome, err := s.payrolls.UpsertGenerated(ctx, employeeID, year, month, candidates)
	if err != nil {
		return fail(err)
	}
	if outcome == model.OutcomeSkipped {
		return model.GenerationResult{
			EmployeeID: employeeID,
			Outcome:    model.OutcomeSkipped,
			Reason:     "closed",
			PayrollID:  payroll.ID,
		}
	}

	s.notify(ctx, payroll, false)

	return model.GenerationResult{
		EmployeeID: employeeID,
		Outcome:    outcome,
		PayrollID:  payroll.ID,
	}
}

// buildCandidates prices the aggregated totals against the rate table.
// A quantity concept yields a line only when its quantity is non-zero;
// flag concepts pay the flat rate once when the triggering activity
// happened at all during the month.
func buildCandidates(totals *model.ActivityTotals, table map[string]model.ConceptRate, fixed []model.FixedConcept) []model.PayrollLine {
	var candidates []model.PayrollLine

	quantityLine := func(code string, quantity decimal.Decimal) {
		rate, ok := table[code]
		if !ok || rate.Kind != model.KindQuantity || quantity.IsZero() {
			return
		}
		candidates = append(candidates, model.PayrollLine{
			ConceptCode:  code,
			ConceptLabel: rate.Label,
			Quantity:     quantity,
			Rate:         rate.Rate,
			Amount:       quantity.Mul(rate.Rate).Round(2),
		})
	}

	quantityLine(model.ConceptOvertime, decimal.NewFromFloat(totals.OvertimeHours).Round(2))
	quantityLine(model.ConceptDistance, decimal.NewFromInt(totals.Kilometers))
	quantityLine(model.ConceptTrips, decimal.NewFromInt(int64(totals.Trips)))
	quantityLine(model.ConceptUnloads, decimal.NewFromInt(int64(totals.Unloads)))

	if rate, ok := table[model.ConceptDriverIncentive]; ok && rate.Kind == model.KindFlag && totals.Kilometers > 0 {
		candidates = append(candidates, model.PayrollLine{
			ConceptCode:  model.ConceptDriverIncentive,
			ConceptLabel: rate.Label,
			Quantity:     decimal.NewFromInt(1),
			Rate:         rate.Rate,
			Amount:       rate.Rate,
		})
	}

	for _, f := range fixed {
		candidates = append(candidates, model.PayrollLine{
			ConceptCode:  f.Code,
			ConceptLabel: f.Label,
			Amount:       f.Amount,
		})
	}

	return candidates
}

// EditLine applies an administrator edit to a line of a Draft payroll. The
// edit is sticky: the line is flagged as a manual override and later
// generation runs will not overwrite it.
func (s *PayrollService) EditLine(ctx context.Context, lineID int64, amount decimal.Decimal, notes string) (*model.PayrollLine, error) {
	return s.payrolls.UpdateLine(ctx, lineID, amount, notes)
}

// Close performs the one-way Draft -> Closed transition. Nothing in this
// service reopens a closed payroll.
func (s *PayrollService) Close(ctx context.Context, payrollID int64) (*model.Payroll, error) {
	payroll, err := s.payrolls.ClosePayroll(ctx, payrollID)
	if err != nil {
		return nil, err
	}

	s.notify(ctx, payroll, true)
	return payroll, nil
}

// GetPayroll fetches the payroll for (employee, year, month), or nil.
func (s *PayrollService) GetPayroll(ctx context.Context, employeeID string, year, month int) (*model.Payroll, error) {
	return s.payrolls.GetPayroll(ctx, employeeID, year, month)
}

// notify publishes a payslip notification event. Delivery is best effort;
// a publish failure is logged and never fails the payroll operation.
func (s *PayrollService) notify(ctx context.Context, payroll *model.Payroll, closed bool) {
	if s.producer == nil {
		return
	}
	event := messaging.PayslipEmailEvent{
		PayrollID:  payroll.ID,
		EmployeeID: payroll.EmployeeID,
		Year:       payroll.Year,
		Month:      payroll.Month,
		Total:      payroll.Total.String(),
		Closed:     closed,
		OccurredAt: time.Now().UTC(),
	}
	if err := s.producer.PublishEmail(ctx, event); err != nil {
		log.Ctx(ctx).Warn().Err(err).
			Int64("payroll_id", payroll.ID).
			Msg("Failed to publish payslip email event")
	}
}
