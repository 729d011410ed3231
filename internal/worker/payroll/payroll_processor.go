package payroll

import (
	"context"
	"encoding/json"

	"github.com/Landa5/SEL-CONTROL-HORARIO-sub000/internal/core"
	"github.com/Landa5/SEL-CONTROL-HORARIO-sub000/internal/core/model"
	"github.com/Landa5/SEL-CONTROL-HORARIO-sub000/internal/ports/messaging"
	"github.com/Landa5/SEL-CONTROL-HORARIO-sub000/internal/worker"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/rs/zerolog/log"
)

// Processor handles generation requests from the payroll queue. A
// scheduled job (or an administrator) enqueues the employee ids for a
// month; generation itself is idempotent, so a failed batch is safe to
// retry with backoff.
type Processor struct {
	service *core.PayrollService
}

func NewProcessor(service *core.PayrollService) *Processor {
	return &Processor{service: service}
}

// Process runs one generation batch. Employees that failed on a storage
// error make the message retry; skipped and succeeded employees are simply
// reported, matching the partial-failure contract of the batch.
func (p *Processor) Process(ctx context.Context, msg types.Message) (bool, int32, error) {
	var event messaging.GenerationRequestedEvent
	if err := json.Unmarshal([]byte(*msg.Body), &event); err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("Failed to unmarshal generation event")
		return false, 0, err // Do not retry on malformed message
	}

	results := p.service.Generate(ctx, event.EmployeeIDs, event.Year, event.Month, nil)

	var failed int
	for _, r := range results {
		evt := log.Ctx(ctx).Info()
		if r.Outcome == model.OutcomeFailed {
			failed++
			evt = log.Ctx(ctx).Error().Err(r.Err)
		}
		evt.Str("employee_id", r.EmployeeID).
			Str("outcome", string(r.Outcome)).
			Str("reason", r.Reason).
			Int("year", event.Year).Int("month", event.Month).
			Msg("Generation result")
	}

	if failed > 0 {
		// Regeneration only touches non-overridden lines, so the whole
		// batch can be replayed for the employees that failed.
		return true, worker.Backoff(1), lastError(results)
	}
	return false, 0, nil
}

func lastError(results []model.GenerationResult) error {
	var err error
	for _, r := range results {
		if r.Err != nil {
			err = r.Err
		}
	}
	return err
}
