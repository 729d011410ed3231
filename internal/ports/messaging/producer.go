package messaging

import (
	"context"
	"encoding/json"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Producer publishes domain events through a MessageSender, one queue for
// generation requests and one for payslip notifications.
type Producer struct {
	sender           MessageSender
	generationQueURL string
	emailQueueURL    string
}

func NewProducer(sender MessageSender, generationQueueURL, emailQueueURL string) *Producer {
	return &Producer{
		sender:           sender,
		generationQueURL: generationQueueURL,
		emailQueueURL:    emailQueueURL,
	}
}

// NewSQSProducer creates a Producer backed by an AWS SQS sender.
func NewSQSProducer(client SQSClient, generationQueueURL, emailQueueURL string) *Producer {
	return NewProducer(&SQSSender{client: client}, generationQueueURL, emailQueueURL)
}

func (p *Producer) PublishGeneration(ctx context.Context, body interface{}) error {
	return p.publish(ctx, p.generationQueURL, body)
}

func (p *Producer) PublishEmail(ctx context.Context, body interface{}) error {
	return p.publish(ctx, p.emailQueueURL, body)
}

func (p *Producer) publish(ctx context.Context, destination string, body interface{}) error {
	b, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal body: %w", err)
	}

	// Enrich the current span with employee_id if available
	span := trace.SpanFromContext(ctx)
	if span.IsRecording() {
		var payload struct {
			EmployeeID string `json:"employeeId"`
		}
		if err := json.Unmarshal(b, &payload); err == nil && payload.EmployeeID != "" {
			span.SetAttributes(attribute.String("app.employeeId", payload.EmployeeID))
		}
	}

	if err := p.sender.SendMessage(ctx, destination, b); err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}
	return nil
}
