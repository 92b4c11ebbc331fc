package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/taskhive/backend/internal/config"
	"github.com/taskhive/backend/internal/errs"
	"github.com/taskhive/backend/internal/models"
	"github.com/taskhive/backend/internal/payments"
	"github.com/taskhive/backend/internal/verification"
)

type pipelineFixture struct {
	svc             *VerificationService
	taskRepo        *fakeTaskRepo
	participantRepo *fakeParticipantRepo
	submissionRepo  *fakeSubmissionRepo
	transactionRepo *fakeTransactionRepo
	historyRepo     *fakeHistoryRepo
	processor       *fakeProcessor
}

func newPipelineFixture() *pipelineFixture {
	defaults := config.Defaults()
	taskRepo := newFakeTaskRepo()
	participantRepo := newFakeParticipantRepo()
	submissionRepo := newFakeSubmissionRepo()
	transactionRepo := newFakeTransactionRepo()
	historyRepo := newFakeHistoryRepo()
	processor := &fakeProcessor{}
	logger := testLogger()

	participantService := NewParticipantService(taskRepo, participantRepo, logger)
	svc := NewVerificationService(
		taskRepo,
		participantRepo,
		submissionRepo,
		transactionRepo,
		historyRepo,
		participantService,
		payments.NewCalculator(defaults.Payments),
		processor,
		verification.PolicyFromConfig(defaults.Verification),
		nil, // events disabled
		logger,
	)

	return &pipelineFixture{
		svc:             svc,
		taskRepo:        taskRepo,
		participantRepo: participantRepo,
		submissionRepo:  submissionRepo,
		transactionRepo: transactionRepo,
		historyRepo:     historyRepo,
		processor:       processor,
	}
}

// seed creates a task with photo requirements and a completed participant.
func (f *pipelineFixture) seed(taskType models.TaskType, earning int64) (*models.Task, *models.TaskParticipant) {
	ctx := context.Background()
	task := &models.Task{
		ID:               "task-1",
		Title:            "flyer photos",
		Type:             taskType,
		EarningPotential: decimal.NewFromInt(earning),
		MaxParticipants:  3,
		CreatorID:        "creator-1",
		Status:           models.TaskStatusOpen,
	}
	_ = f.taskRepo.Create(ctx, task)
	_ = f.taskRepo.CreateRequirements(ctx, &models.VerificationRequirements{
		ID:                      "req-1",
		TaskID:                  task.ID,
		RequiredMethods:         models.StringList{models.MethodPhoto, models.MethodTimeTracking},
		PhotoCount:              1,
		PhotoRequiresTimestamp:  true,
		TimestampFreshnessHours: 24,
		MinDurationSeconds:      300,
	})
	participant := &models.TaskParticipant{
		ID:     "part-1",
		TaskID: task.ID,
		UserID: "user-1",
		Status: models.ParticipantStatusCompleted,
	}
	_ = f.participantRepo.Create(ctx, participant)
	return task, participant
}

// strongEvidence is an input that scores high enough to auto verify with the
// default thresholds.
func strongEvidence(now time.Time) SubmissionInput {
	start := now.Add(-time.Hour)
	end := now.Add(-10 * time.Minute)
	taken := now.Add(-30 * time.Minute)
	return SubmissionInput{
		TaskID:        "task-1",
		ParticipantID: "part-1",
		UserID:        "user-1",
		VerificationMethods: []string{
			models.MethodPhoto,
			models.MethodTimeTracking,
		},
		Photos: []models.PhotoEvidence{{
			URL:     "https://cdn.example.com/a.jpg",
			TakenAt: &taken,
		}},
		StartTime: &start,
		EndTime:   &end,
		TimeIntervals: []models.TimeInterval{
			{Start: start, End: end},
		},
	}
}

func TestSubmitAutoVerifiesAndSettlesPlatformFunded(t *testing.T) {
	f := newPipelineFixture()
	f.seed(models.TaskTypePlatformFunded, 20)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	f.svc.now = func() time.Time { return now }

	result, err := f.svc.Submit(context.Background(), strongEvidence(now))
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}

	if result.VerificationStatus != models.VerificationStatusAutoVerified {
		t.Fatalf("status = %s, want auto_verified", result.VerificationStatus)
	}
	if !result.PaymentReleased {
		t.Error("PaymentReleased = false, want true")
	}
	if result.PaymentError != "" {
		t.Errorf("PaymentError = %q, want empty", result.PaymentError)
	}

	// Platform funded settles without touching the processor.
	if len(f.processor.requests) != 0 {
		t.Errorf("processor called %d times, want 0", len(f.processor.requests))
	}
	txn := f.transactionRepo.last()
	if txn == nil {
		t.Fatal("no transaction recorded")
	}
	if txn.Status != models.TransactionStatusCompleted {
		t.Errorf("transaction status = %s, want completed", txn.Status)
	}
	if !txn.Amount.Equal(decimal.NewFromInt(20)) {
		t.Errorf("transaction amount = %s, want 20 (no platform fee)", txn.Amount)
	}
	if txn.Metadata.FeePolicy != payments.PolicyTaskType {
		t.Errorf("fee policy = %s, want %s", txn.Metadata.FeePolicy, payments.PolicyTaskType)
	}

	participant, _ := f.participantRepo.GetByID(context.Background(), "part-1")
	if participant.Status != models.ParticipantStatusVerified {
		t.Errorf("participant status = %s, want verified", participant.Status)
	}
	if participant.EarnedAmount == nil || !participant.EarnedAmount.Equal(decimal.NewFromInt(20)) {
		t.Errorf("EarnedAmount = %v, want 20", participant.EarnedAmount)
	}
}

func TestSubmitPeerToPeerPaysThroughProcessor(t *testing.T) {
	f := newPipelineFixture()
	f.seed(models.TaskTypePeerToPeer, 30)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	f.svc.now = func() time.Time { return now }

	result, err := f.svc.Submit(context.Background(), strongEvidence(now))
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if result.VerificationStatus != models.VerificationStatusAutoVerified {
		t.Fatalf("status = %s, want auto_verified", result.VerificationStatus)
	}

	if len(f.processor.requests) != 1 {
		t.Fatalf("processor called %d times, want 1", len(f.processor.requests))
	}
	req := f.processor.requests[0]
	if req.IdempotencyKey != "payout-"+result.SubmissionID {
		t.Errorf("IdempotencyKey = %s, want payout-%s", req.IdempotencyKey, result.SubmissionID)
	}
	// 30 gross minus 7 percent platform fee.
	if req.Amount != "27.90" {
		t.Errorf("payout amount = %s, want 27.90", req.Amount)
	}

	txn := f.transactionRepo.last()
	if txn == nil || txn.Status != models.TransactionStatusPending {
		t.Fatalf("transaction = %+v, want pending", txn)
	}
	if txn.Metadata.ProcessorReference == "" {
		t.Error("ProcessorReference not recorded")
	}
}

func TestSubmitProcessorFailureKeepsDecision(t *testing.T) {
	f := newPipelineFixture()
	f.seed(models.TaskTypePeerToPeer, 30)
	f.processor.err = errors.New("processor unavailable")
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	f.svc.now = func() time.Time { return now }

	result, err := f.svc.Submit(context.Background(), strongEvidence(now))
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}

	// The decision stands even though the payout failed.
	if result.VerificationStatus != models.VerificationStatusAutoVerified {
		t.Errorf("status = %s, want auto_verified", result.VerificationStatus)
	}
	if result.PaymentReleased {
		t.Error("PaymentReleased = true, want false")
	}
	if result.PaymentError == "" {
		t.Error("PaymentError empty, want populated")
	}

	txn := f.transactionRepo.last()
	if txn == nil || txn.Status != models.TransactionStatusFailed {
		t.Fatalf("transaction = %+v, want failed", txn)
	}
	if txn.Metadata.FailureReason != "processor unavailable" {
		t.Errorf("FailureReason = %q", txn.Metadata.FailureReason)
	}

	stored, _ := f.submissionRepo.GetByID(context.Background(), result.SubmissionID)
	if stored.PaymentReleased {
		t.Error("stored submission marked released despite failure")
	}
}

func TestSubmitHighFraudRejects(t *testing.T) {
	f := newPipelineFixture()
	f.seed(models.TaskTypePlatformFunded, 20)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	f.svc.now = func() time.Time { return now }

	// No time evidence and a missing required method push fraud past the
	// rejection threshold together with the photo marker.
	in := SubmissionInput{
		TaskID:              "task-1",
		ParticipantID:       "part-1",
		UserID:              "user-1",
		VerificationMethods: []string{models.MethodPhoto},
		Photos: []models.PhotoEvidence{{
			URL: "https://cdn.example.com/a.jpg",
		}},
	}

	result, err := f.svc.Submit(context.Background(), in)
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if result.VerificationStatus != models.VerificationStatusRejected {
		t.Errorf("status = %s, want rejected", result.VerificationStatus)
	}
	if result.FraudDetectionScore != 55 {
		t.Errorf("fraud score = %d, want 55", result.FraudDetectionScore)
	}
	if result.PaymentReleased {
		t.Error("payment released for rejected submission")
	}
	if f.transactionRepo.last() != nil {
		t.Error("transaction recorded for rejected submission")
	}
}

func TestSubmitManualReviewReleasesNothing(t *testing.T) {
	f := newPipelineFixture()
	// Earning above the peer-to-peer ceiling forces review regardless of
	// evidence quality.
	f.seed(models.TaskTypePeerToPeer, 60)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	f.svc.now = func() time.Time { return now }

	result, err := f.svc.Submit(context.Background(), strongEvidence(now))
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if result.VerificationStatus != models.VerificationStatusManualReview {
		t.Errorf("status = %s, want manual_review", result.VerificationStatus)
	}
	if result.PaymentReleased || f.transactionRepo.last() != nil {
		t.Error("payment moved for a submission under review")
	}

	participant, _ := f.participantRepo.GetByID(context.Background(), "part-1")
	if participant.Status != models.ParticipantStatusCompleted {
		t.Errorf("participant status = %s, want completed (unchanged)", participant.Status)
	}
}

func TestSubmitDuplicateRejected(t *testing.T) {
	f := newPipelineFixture()
	f.seed(models.TaskTypePeerToPeer, 60)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	f.svc.now = func() time.Time { return now }

	if _, err := f.svc.Submit(context.Background(), strongEvidence(now)); err != nil {
		t.Fatalf("first Submit() error = %v", err)
	}
	if _, err := f.svc.Submit(context.Background(), strongEvidence(now)); !errors.Is(err, errs.ErrDuplicateSubmission) {
		t.Errorf("second Submit() error = %v, want ErrDuplicateSubmission", err)
	}
}

func TestSubmitConcurrentDuplicates(t *testing.T) {
	f := newPipelineFixture()
	f.seed(models.TaskTypePlatformFunded, 20)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	f.svc.now = func() time.Time { return now }

	const callers = 8
	var wg sync.WaitGroup
	results := make([]error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, results[i] = f.svc.Submit(context.Background(), strongEvidence(now))
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for i, err := range results {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, errs.ErrDuplicateSubmission):
		default:
			t.Errorf("Submit() %d error = %v, want nil or ErrDuplicateSubmission", i, err)
		}
	}
	if succeeded != 1 {
		t.Errorf("successful submissions = %d, want exactly 1", succeeded)
	}

	stored, _ := f.submissionRepo.ListByTaskAndUser(context.Background(), "task-1", "user-1")
	if len(stored) != 1 {
		t.Errorf("stored submissions = %d, want 1", len(stored))
	}
	if got := len(f.transactionRepo.transactions); got != 1 {
		t.Errorf("ledger entries = %d, want 1", got)
	}
}

func TestSubmitGuards(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("wrong user is not the participant", func(t *testing.T) {
		f := newPipelineFixture()
		f.seed(models.TaskTypePeerToPeer, 30)
		in := strongEvidence(now)
		in.UserID = "impostor"
		if _, err := f.svc.Submit(context.Background(), in); !errors.Is(err, errs.ErrNotParticipant) {
			t.Errorf("Submit() error = %v, want ErrNotParticipant", err)
		}
	})

	t.Run("applied participant cannot submit", func(t *testing.T) {
		f := newPipelineFixture()
		f.seed(models.TaskTypePeerToPeer, 30)
		ctx := context.Background()
		p, _ := f.participantRepo.GetByID(ctx, "part-1")
		p.Status = models.ParticipantStatusApplied
		f.participantRepo.participants["part-1"] = p

		if _, err := f.svc.Submit(ctx, strongEvidence(now)); !errors.Is(err, errs.ErrInvalidTransition) {
			t.Errorf("Submit() error = %v, want ErrInvalidTransition", err)
		}
	})

	t.Run("unknown task", func(t *testing.T) {
		f := newPipelineFixture()
		in := strongEvidence(now)
		if _, err := f.svc.Submit(context.Background(), in); !errors.Is(err, errs.ErrNotFound) {
			t.Errorf("Submit() error = %v, want ErrNotFound", err)
		}
	})
}

func TestSubmitAcceptedParticipantIsFoldedThrough(t *testing.T) {
	f := newPipelineFixture()
	f.seed(models.TaskTypePlatformFunded, 20)
	ctx := context.Background()
	p, _ := f.participantRepo.GetByID(ctx, "part-1")
	p.Status = models.ParticipantStatusAccepted
	f.participantRepo.participants["part-1"] = p

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	f.svc.now = func() time.Time { return now }

	result, err := f.svc.Submit(ctx, strongEvidence(now))
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if result.VerificationStatus != models.VerificationStatusAutoVerified {
		t.Fatalf("status = %s, want auto_verified", result.VerificationStatus)
	}

	participant, _ := f.participantRepo.GetByID(ctx, "part-1")
	if participant.Status != models.ParticipantStatusVerified {
		t.Errorf("participant status = %s, want verified", participant.Status)
	}
}

func TestSubmitAppendsHistory(t *testing.T) {
	f := newPipelineFixture()
	f.seed(models.TaskTypePlatformFunded, 20)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	f.svc.now = func() time.Time { return now }

	result, err := f.svc.Submit(context.Background(), strongEvidence(now))
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}

	entries, _ := f.historyRepo.ListByUser(context.Background(), "user-1", 10)
	if len(entries) != 1 {
		t.Fatalf("history entries = %d, want 1", len(entries))
	}
	entry := entries[0]
	if entry.SubmissionID != result.SubmissionID {
		t.Errorf("SubmissionID = %s, want %s", entry.SubmissionID, result.SubmissionID)
	}
	if entry.VerificationOutcome != models.VerificationStatusAutoVerified {
		t.Errorf("VerificationOutcome = %s", entry.VerificationOutcome)
	}
	if entry.ImpactOnReputation != 1 {
		t.Errorf("ImpactOnReputation = %d, want 1", entry.ImpactOnReputation)
	}
}

func TestGetSubmissionScopedToOwner(t *testing.T) {
	f := newPipelineFixture()
	f.seed(models.TaskTypePeerToPeer, 60)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	f.svc.now = func() time.Time { return now }
	ctx := context.Background()

	result, err := f.svc.Submit(ctx, strongEvidence(now))
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}

	if _, err := f.svc.GetSubmission(ctx, result.SubmissionID, "user-1"); err != nil {
		t.Errorf("owner GetSubmission() error = %v", err)
	}
	if _, err := f.svc.GetSubmission(ctx, result.SubmissionID, "someone-else"); !errors.Is(err, errs.ErrNotFound) {
		t.Errorf("foreign GetSubmission() error = %v, want ErrNotFound", err)
	}
}
