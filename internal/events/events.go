// Package events defines the pipeline's outbound event payloads and the
// publisher that puts them on the bus. Publishing is best-effort: failures
// are logged and swallowed so event delivery never gates verification or
// payment decisions.
package events

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/taskhive/backend/internal/clients"
	"github.com/taskhive/backend/internal/models"
)

// Subjects for pipeline events.
const (
	SubjectVerificationCompleted = "taskhive.verification.completed"
	SubjectPaymentInitiated      = "taskhive.payment.initiated"
)

// VerificationCompletedEvent emitted after a submission has been classified
// and persisted.
type VerificationCompletedEvent struct {
	SubmissionID          string                    `json:"submission_id"`
	TaskID                string                    `json:"task_id"`
	UserID                string                    `json:"user_id"`
	Status                models.VerificationStatus `json:"status"`
	AutoVerificationScore int                       `json:"auto_verification_score"`
	FraudScore            int                       `json:"fraud_score"`
	QualityScore          int                       `json:"quality_score"`
	OccurredAt            time.Time                 `json:"occurred_at"`
}

// PaymentInitiatedEvent emitted when a payout has been handed to the
// processor or settled directly.
type PaymentInitiatedEvent struct {
	SubmissionID  string    `json:"submission_id"`
	TransactionID string    `json:"transaction_id"`
	UserID        string    `json:"user_id"`
	Amount        string    `json:"amount"`
	PlatformFee   string    `json:"platform_fee"`
	NetAmount     string    `json:"net_amount"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// Publisher wraps the NATS client with pipeline-specific publish helpers.
// A nil Publisher is valid and drops every event, which keeps the bus
// strictly optional at runtime.
type Publisher struct {
	client *clients.NATSClient
	logger *logrus.Logger
}

// NewPublisher creates an event publisher. client may be nil.
func NewPublisher(client *clients.NATSClient, logger *logrus.Logger) *Publisher {
	return &Publisher{client: client, logger: logger}
}

// VerificationCompleted publishes a verification outcome event.
func (p *Publisher) VerificationCompleted(evt VerificationCompletedEvent) {
	p.publish(SubjectVerificationCompleted, evt)
}

// PaymentInitiated publishes a payment initiation event.
func (p *Publisher) PaymentInitiated(evt PaymentInitiatedEvent) {
	p.publish(SubjectPaymentInitiated, evt)
}

func (p *Publisher) publish(subject string, payload interface{}) {
	if p == nil || p.client == nil {
		return
	}
	if err := p.client.Publish(subject, payload); err != nil {
		p.logger.WithFields(logrus.Fields{
			"subject": subject,
			"error":   err.Error(),
		}).Warn("failed to publish event")
	}
}
