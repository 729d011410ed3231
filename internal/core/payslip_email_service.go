package core

import (
	"context"
	"fmt"

	"github.com/Landa5/SEL-CONTROL-HORARIO-sub000/pkg/telemetry"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// PayslipEmailService notifies an employee that their monthly payroll was
// generated or closed.
type PayslipEmailService interface {
	SendPayslipNotification(ctx context.Context, to string, year, month int, total string, closed bool) error
}

type SESEmailService struct {
	client *ses.Client
	sender string
}

func NewSESEmailService(client *ses.Client, sender string) *SESEmailService {
	return &SESEmailService{client: client, sender: sender}
}

func (s *SESEmailService) SendPayslipNotification(ctx context.Context, to string, year, month int, total string, closed bool) error {
	tracer := otel.Tracer("ses-email-service")
	ctx, span := tracer.Start(ctx, "send_email", trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	if empID := telemetry.GetEmployeeIDFromContext(ctx); empID != "" {
		span.SetAttributes(attribute.String("app.employeeId", empID))
	}

	subject := fmt.Sprintf("Payroll draft updated for %d/%02d", year, month)
	body := fmt.Sprintf("Hello,\n\nYour variable-compensation draft for %d/%02d has been updated. Current total: %s EUR.", year, month, total)
	if closed {
		subject = fmt.Sprintf("Payroll closed for %d/%02d", year, month)
		body = fmt.Sprintf("Hello,\n\nYour payroll for %d/%02d has been closed. Final total: %s EUR.", year, month, total)
	}

	input := &ses.SendEmailInput{
		Source: aws.String(s.sender),
		Destination: &types.Destination{
			ToAddresses: []string{to},
		},
		Message: &types.Message{
			Subject: &types.Content{
				Data: aws.String(subject),
			},
			Body: &types.Body{
				Text: &types.Content{
					Data: aws.String(body),
				},
			},
		},
	}

	_, err := s.client.SendEmail(ctx, input)
	return err
}
