package email

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Landa5/SEL-CONTROL-HORARIO-sub000/internal/core"
	"github.com/Landa5/SEL-CONTROL-HORARIO-sub000/internal/core/model"
	"github.com/Landa5/SEL-CONTROL-HORARIO-sub000/internal/ports/messaging"
	"github.com/Landa5/SEL-CONTROL-HORARIO-sub000/internal/ports/repository"
	"github.com/Landa5/SEL-CONTROL-HORARIO-sub000/internal/worker"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/rs/zerolog/log"
)

// Processor handles payslip notification jobs from the email queue.
// Idempotence comes from the email status tracked on the payroll row:
// publishing resets it to pending, sending completes it.
type Processor struct {
	emailService core.PayslipEmailService
	repo         repository.PayrollRepository
	emailDomain  string
}

func NewProcessor(emailService core.PayslipEmailService, repo repository.PayrollRepository, emailDomain string) *Processor {
	return &Processor{
		emailService: emailService,
		repo:         repo,
		emailDomain:  emailDomain,
	}
}

// Process sends one payslip notification email, telling the worker to
// retry with backoff when sending fails.
func (p *Processor) Process(ctx context.Context, msg types.Message) (bool, int32, error) {
	var event messaging.PayslipEmailEvent
	if err := json.Unmarshal([]byte(*msg.Body), &event); err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("Failed to unmarshal payslip email event")
		return false, 0, err // Do not retry on malformed message
	}

	record, err := p.repo.GetPayrollByID(ctx, event.PayrollID)
	if err != nil {
		return true, 10, fmt.Errorf("failed to get payroll for email processing: %w", err)
	}

	if record.EmailStatus == model.StatusEmailCompleted {
		log.Ctx(ctx).Info().Int64("payroll_id", event.PayrollID).Msg("Payslip email already sent. Skipping.")
		return false, 0, nil
	}

	to := event.EmployeeID + "@" + p.emailDomain
	err = p.emailService.SendPayslipNotification(ctx, to, event.Year, event.Month, event.Total, event.Closed)
	if err != nil {
		newCount := record.EmailRetryCount + 1
		_ = p.repo.UpdateEmailStatus(ctx, event.PayrollID, model.StatusEmailPending, newCount)

		return true, worker.Backoff(newCount), err
	}

	err = p.repo.UpdateEmailStatus(ctx, event.PayrollID, model.StatusEmailCompleted, 0)
	return false, 0, err
}
