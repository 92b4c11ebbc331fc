package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/taskhive/backend/internal/clients"
	"github.com/taskhive/backend/internal/errs"
	"github.com/taskhive/backend/internal/events"
	"github.com/taskhive/backend/internal/metrics"
	"github.com/taskhive/backend/internal/models"
	"github.com/taskhive/backend/internal/payments"
	"github.com/taskhive/backend/internal/repository"
	"github.com/taskhive/backend/internal/verification"
)

// PaymentProcessor is the slice of the external processor the pipeline
// needs. Satisfied by clients.PaymentProcessorClient.
type PaymentProcessor interface {
	CreatePayout(ctx context.Context, req clients.PayoutRequest) (*clients.PayoutResponse, error)
}

// SubmissionInput is the evidence payload for one completion submission,
// already bound and field-validated by the handler layer.
type SubmissionInput struct {
	TaskID               string
	ParticipantID        string
	UserID               string
	VerificationMethods  []string
	Photos               []models.PhotoEvidence
	VideoURLs            []string
	VideoDurationSeconds int
	ReceiptURLs          []string
	SocialProofURLs      []string
	GPSCoordinates       []models.GPSPoint
	LocationHistory      []models.GPSPoint
	StartTime            *time.Time
	EndTime              *time.Time
	TimeIntervals        []models.TimeInterval
}

// SubmissionResult is what the caller gets back from the pipeline.
type SubmissionResult struct {
	SubmissionID          string                    `json:"submission_id"`
	VerificationStatus    models.VerificationStatus `json:"verification_status"`
	AutoVerificationScore int                       `json:"auto_verification_score"`
	FraudDetectionScore   int                       `json:"fraud_detection_score"`
	QualityScore          int                       `json:"quality_score"`
	PaymentReleased       bool                      `json:"payment_released"`
	NextSteps             string                    `json:"next_steps"`
	PaymentError          string                    `json:"payment_error,omitempty"`
}

// VerificationService is the pipeline coordinator: it runs the pure scoring
// core over a submission, persists the decided record, and gates money
// movement on the outcome. The stored decision is authoritative the moment
// the submission row is written; payment follow-through is eventually
// consistent and never rolls the decision back.
type VerificationService struct {
	taskRepo        repository.TaskRepository
	participantRepo repository.ParticipantRepository
	submissionRepo  repository.SubmissionRepository
	transactionRepo repository.TransactionRepository
	historyRepo     repository.HistoryRepository
	participants    *ParticipantService
	calculator      *payments.Calculator
	processor       PaymentProcessor
	policy          verification.Policy
	publisher       *events.Publisher
	logger          *logrus.Logger
	now             func() time.Time
}

// NewVerificationService wires the pipeline coordinator.
func NewVerificationService(
	taskRepo repository.TaskRepository,
	participantRepo repository.ParticipantRepository,
	submissionRepo repository.SubmissionRepository,
	transactionRepo repository.TransactionRepository,
	historyRepo repository.HistoryRepository,
	participants *ParticipantService,
	calculator *payments.Calculator,
	processor PaymentProcessor,
	policy verification.Policy,
	publisher *events.Publisher,
	logger *logrus.Logger,
) *VerificationService {
	return &VerificationService{
		taskRepo:        taskRepo,
		participantRepo: participantRepo,
		submissionRepo:  submissionRepo,
		transactionRepo: transactionRepo,
		historyRepo:     historyRepo,
		participants:    participants,
		calculator:      calculator,
		processor:       processor,
		policy:          policy,
		publisher:       publisher,
		logger:          logger,
		now:             time.Now,
	}
}

// Submit runs one submission through the whole pipeline.
func (s *VerificationService) Submit(ctx context.Context, in SubmissionInput) (*SubmissionResult, error) {
	started := s.now()
	defer func() {
		metrics.SubmissionDuration.Observe(time.Since(started).Seconds())
	}()

	task, err := s.taskRepo.GetByID(ctx, in.TaskID)
	if err != nil {
		return nil, err
	}
	requirements, err := s.taskRepo.GetRequirements(ctx, in.TaskID)
	if err != nil {
		return nil, err
	}
	participant, err := s.participantRepo.GetByID(ctx, in.ParticipantID)
	if err != nil {
		return nil, err
	}
	if participant.TaskID != in.TaskID || participant.UserID != in.UserID {
		return nil, errs.ErrNotParticipant
	}
	if participant.Status != models.ParticipantStatusAccepted && participant.Status != models.ParticipantStatusCompleted {
		return nil, errs.ErrInvalidTransition
	}

	submittedAt := s.now()
	sub := buildSubmission(in, submittedAt)

	// Pure core: score, fraud, decide. No I/O from here to the decision.
	modalityScores := verification.ScoreEvidence(sub, requirements, submittedAt)
	autoScore := verification.CombineScores(modalityScores, requirements.RequiredMethods)
	qualityScore := autoScore
	fraudScore, fraudFlags := verification.EvaluateFraud(sub, requirements.RequiredMethods)

	status, rule := verification.DecideWithRule(verification.DecisionInput{
		AutoVerificationScore: autoScore,
		FraudScore:            fraudScore,
		QualityScore:          qualityScore,
		TaskType:              task.Type,
		EarningPotential:      task.EarningPotential,
		Criteria:              requirements.AutoApproval,
	}, s.policy)

	sub.AutoVerificationScore = autoScore
	sub.QualityScore = qualityScore
	sub.FraudDetectionScore = fraudScore
	sub.FraudFlags = models.StringList(fraudFlags)
	sub.VerificationStatus = status
	sub.IdempotencyToken = payoutIdempotencyToken(sub.ID)

	// The unique (task_id, participant_id) index rejects a second decided
	// submission for the same participant.
	if err := s.submissionRepo.Create(ctx, sub); err != nil {
		return nil, err
	}

	metrics.VerificationDecisions.WithLabelValues(string(status), string(task.Type)).Inc()
	for _, flag := range fraudFlags {
		metrics.FraudFlagsRaised.WithLabelValues(flag).Inc()
	}

	s.logger.WithFields(logrus.Fields{
		"submission_id": sub.ID,
		"task_id":       task.ID,
		"status":        status,
		"rule":          rule,
		"auto_score":    autoScore,
		"fraud_score":   fraudScore,
	}).Info("submission classified")

	// Best-effort audit trail; failure is logged, never fatal.
	s.appendHistory(ctx, sub, status)

	result := &SubmissionResult{
		SubmissionID:          sub.ID,
		VerificationStatus:    status,
		AutoVerificationScore: autoScore,
		FraudDetectionScore:   fraudScore,
		QualityScore:          qualityScore,
		NextSteps:             NextSteps(status),
	}

	if status == models.VerificationStatusAutoVerified {
		s.releasePayment(ctx, task, sub, participant, result)
	}

	s.publisher.VerificationCompleted(events.VerificationCompletedEvent{
		SubmissionID:          sub.ID,
		TaskID:                task.ID,
		UserID:                sub.UserID,
		Status:                status,
		AutoVerificationScore: autoScore,
		FraudScore:            fraudScore,
		QualityScore:          qualityScore,
		OccurredAt:            s.now(),
	})

	return result, nil
}

// releasePayment advances the participant, prices the payout, and moves
// money. Platform-funded earnings settle directly; peer-to-peer and
// corporate payouts go through the external processor and stay pending
// until reconciled. A processor failure is captured on the result and the
// ledger; the stored verification decision stands.
func (s *VerificationService) releasePayment(ctx context.Context, task *models.Task, sub *models.TaskCompletionSubmission, participant *models.TaskParticipant, result *SubmissionResult) {
	fee := s.calculator.ComputeFee(task.EarningPotential, task.Type)

	// A submission can arrive while the participant is still in accepted
	// state; fold the completion transition in before verifying.
	if participant.Status == models.ParticipantStatusAccepted {
		if _, err := s.participantRepo.Complete(ctx, participant.ID, "", ""); err != nil {
			s.logger.WithError(err).Error("failed to complete participant before verification")
		}
	}

	if err := s.participants.Verify(ctx, participant.ID, fee.NetAmount); err != nil {
		s.logger.WithFields(logrus.Fields{
			"participant_id": participant.ID,
			"error":          err.Error(),
		}).Error("failed to advance participant to verified")
	}

	txRecord := &models.Transaction{
		ID:        uuid.NewString(),
		UserID:    sub.UserID,
		TaskID:    task.ID,
		Type:      models.TransactionTypeTaskEarning,
		Amount:    fee.NetAmount,
		Reference: transactionReference(sub.ID),
		Metadata: models.TransactionMetadata{
			SubmissionID:   sub.ID,
			FeePolicy:      fee.Policy,
			FeeRatePercent: fee.RatePercent.String(),
			PlatformFee:    fee.PlatformFee.String(),
			NetAmount:      fee.NetAmount.String(),
		},
	}

	switch task.Type {
	case models.TaskTypePlatformFunded:
		// The platform pays directly; nothing external to wait on.
		txRecord.Status = models.TransactionStatusCompleted
		if err := s.transactionRepo.Create(ctx, txRecord); err != nil {
			s.logger.WithError(err).Error("failed to write earning transaction")
			result.PaymentError = errs.ErrPaymentInitiation.Error()
			metrics.PaymentInitiations.WithLabelValues("failed").Inc()
			return
		}
		s.markReleased(ctx, sub.ID, result)
		metrics.PaymentInitiations.WithLabelValues("settled").Inc()

	default:
		payout, err := s.processor.CreatePayout(ctx, clients.PayoutRequest{
			IdempotencyKey: sub.IdempotencyToken,
			Amount:         fee.NetAmount.StringFixed(2),
			Currency:       "USD",
			RecipientID:    sub.UserID,
			Description:    fmt.Sprintf("Task earning for task %s", task.ID),
			Metadata:       map[string]string{"submission_id": sub.ID},
		})
		if err != nil {
			// Surfaced, not fatal: the decision is already persisted and a
			// reconciliation pass retries with the same idempotency token.
			s.logger.WithFields(logrus.Fields{
				"submission_id": sub.ID,
				"error":         err.Error(),
			}).Error("payment initiation failed")
			txRecord.Status = models.TransactionStatusFailed
			txRecord.Metadata.FailureReason = err.Error()
			if createErr := s.transactionRepo.Create(ctx, txRecord); createErr != nil {
				s.logger.WithError(createErr).Error("failed to record failed payment transaction")
			}
			result.PaymentError = errs.ErrPaymentInitiation.Error()
			metrics.PaymentInitiations.WithLabelValues("failed").Inc()
			return
		}

		txRecord.Status = models.TransactionStatusPending
		txRecord.Metadata.ProcessorReference = payout.Reference
		if err := s.transactionRepo.Create(ctx, txRecord); err != nil {
			s.logger.WithError(err).Error("failed to write pending payment transaction")
		}
		s.markReleased(ctx, sub.ID, result)
		metrics.PaymentInitiations.WithLabelValues("initiated").Inc()
	}

	s.publisher.PaymentInitiated(events.PaymentInitiatedEvent{
		SubmissionID:  sub.ID,
		TransactionID: txRecord.ID,
		UserID:        sub.UserID,
		Amount:        task.EarningPotential.StringFixed(2),
		PlatformFee:   fee.PlatformFee.StringFixed(2),
		NetAmount:     fee.NetAmount.StringFixed(2),
		OccurredAt:    s.now(),
	})
}

func (s *VerificationService) markReleased(ctx context.Context, submissionID string, result *SubmissionResult) {
	if err := s.submissionRepo.MarkPaymentReleased(ctx, submissionID); err != nil {
		s.logger.WithError(err).Error("failed to mark payment released")
		return
	}
	result.PaymentReleased = true
}

func (s *VerificationService) appendHistory(ctx context.Context, sub *models.TaskCompletionSubmission, status models.VerificationStatus) {
	record := &models.UserVerificationHistory{
		ID:                  uuid.NewString(),
		UserID:              sub.UserID,
		SubmissionID:        sub.ID,
		VerificationOutcome: status,
		QualityScore:        sub.QualityScore,
		FraudScore:          sub.FraudDetectionScore,
		Timeliness:          sub.AutoVerificationScore,
		AccuracyScore:       sub.AutoVerificationScore,
		ImpactOnReputation:  reputationDelta(status),
	}
	if err := s.historyRepo.Append(ctx, record); err != nil {
		s.logger.WithFields(logrus.Fields{
			"submission_id": sub.ID,
			"error":         err.Error(),
		}).Warn("failed to append verification history")
	}
}

// GetSubmission returns a submission visible to the calling user.
func (s *VerificationService) GetSubmission(ctx context.Context, submissionID, userID string) (*models.TaskCompletionSubmission, error) {
	sub, err := s.submissionRepo.GetByID(ctx, submissionID)
	if err != nil {
		return nil, err
	}
	if sub.UserID != userID {
		return nil, errs.ErrNotFound
	}
	return sub, nil
}

// ListTaskSubmissions returns the caller's submissions for a task.
func (s *VerificationService) ListTaskSubmissions(ctx context.Context, taskID, userID string) ([]*models.TaskCompletionSubmission, error) {
	return s.submissionRepo.ListByTaskAndUser(ctx, taskID, userID)
}

// NextSteps returns the user-facing follow-up message for an outcome.
func NextSteps(status models.VerificationStatus) string {
	switch status {
	case models.VerificationStatusAutoVerified:
		return "Your submission was verified automatically. Payment is being processed."
	case models.VerificationStatusManualReview:
		return "Your submission is queued for manual review. Expect a decision within 24 hours."
	case models.VerificationStatusRequiresProof:
		return "More evidence is needed. Please submit additional proof of completion."
	case models.VerificationStatusRejected:
		return "Your submission was rejected. Contact support if you believe this is an error."
	default:
		return "Your submission was received."
	}
}

func buildSubmission(in SubmissionInput, submittedAt time.Time) *models.TaskCompletionSubmission {
	return &models.TaskCompletionSubmission{
		ID:                   uuid.NewString(),
		TaskID:               in.TaskID,
		ParticipantID:        in.ParticipantID,
		UserID:               in.UserID,
		VerificationMethods:  models.StringList(in.VerificationMethods),
		Photos:               models.PhotoList(in.Photos),
		VideoURLs:            models.StringList(in.VideoURLs),
		VideoDurationSeconds: in.VideoDurationSeconds,
		ReceiptURLs:          models.StringList(in.ReceiptURLs),
		SocialProofURLs:      models.StringList(in.SocialProofURLs),
		GPSCoordinates:       models.GPSPointList(in.GPSCoordinates),
		LocationHistory:      models.GPSPointList(in.LocationHistory),
		StartTime:            in.StartTime,
		EndTime:              in.EndTime,
		TimeIntervals:        models.TimeIntervalList(in.TimeIntervals),
		CreatedAt:            submittedAt,
	}
}

// payoutIdempotencyToken derives the stable processor idempotency key for a
// submission. Retries for the same submission always produce the same key.
func payoutIdempotencyToken(submissionID string) string {
	return "payout-" + submissionID
}

func transactionReference(submissionID string) string {
	return "TXN-" + submissionID
}

func reputationDelta(status models.VerificationStatus) int {
	switch status {
	case models.VerificationStatusAutoVerified:
		return 1
	case models.VerificationStatusRejected:
		return -1
	default:
		return 0
	}
}
