package services

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/taskhive/backend/internal/clients"
	"github.com/taskhive/backend/internal/errs"
	"github.com/taskhive/backend/internal/models"
)

// In-memory repository fakes mirroring the conditional-update contracts of
// the real Postgres implementations.

type fakeTaskRepo struct {
	mu           sync.Mutex
	tasks        map[string]*models.Task
	requirements map[string]*models.VerificationRequirements
}

func newFakeTaskRepo() *fakeTaskRepo {
	return &fakeTaskRepo{
		tasks:        make(map[string]*models.Task),
		requirements: make(map[string]*models.VerificationRequirements),
	}
}

func (r *fakeTaskRepo) Create(_ context.Context, task *models.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *task
	r.tasks[task.ID] = &cp
	return nil
}

func (r *fakeTaskRepo) GetByID(_ context.Context, id string) (*models.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tasks[id]
	if !ok {
		return nil, errs.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (r *fakeTaskRepo) UpdateStatus(_ context.Context, id string, status models.TaskStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if t, ok := r.tasks[id]; ok {
		t.Status = status
	}
	return nil
}

func (r *fakeTaskRepo) ReserveSlot(_ context.Context, taskID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tasks[taskID]
	if !ok || t.CurrentParticipants >= t.MaxParticipants {
		return false, nil
	}
	t.CurrentParticipants++
	return true, nil
}

func (r *fakeTaskRepo) ReleaseSlot(_ context.Context, taskID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if t, ok := r.tasks[taskID]; ok && t.CurrentParticipants > 0 {
		t.CurrentParticipants--
	}
	return nil
}

func (r *fakeTaskRepo) ReserveAcceptedSlot(_ context.Context, taskID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tasks[taskID]
	if !ok || t.AcceptedCount >= t.MaxParticipants {
		return false, nil
	}
	t.AcceptedCount++
	return true, nil
}

func (r *fakeTaskRepo) ReleaseAcceptedSlot(_ context.Context, taskID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if t, ok := r.tasks[taskID]; ok && t.AcceptedCount > 0 {
		t.AcceptedCount--
	}
	return nil
}

func (r *fakeTaskRepo) CreateRequirements(_ context.Context, req *models.VerificationRequirements) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *req
	r.requirements[req.TaskID] = &cp
	return nil
}

func (r *fakeTaskRepo) GetRequirements(_ context.Context, taskID string) (*models.VerificationRequirements, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	req, ok := r.requirements[taskID]
	if !ok {
		return nil, errs.ErrNotFound
	}
	cp := *req
	return &cp, nil
}

type fakeParticipantRepo struct {
	mu           sync.Mutex
	participants map[string]*models.TaskParticipant
	createErr    error
	beforeAccept func()
}

func newFakeParticipantRepo() *fakeParticipantRepo {
	return &fakeParticipantRepo{participants: make(map[string]*models.TaskParticipant)}
}

func (r *fakeParticipantRepo) Create(_ context.Context, p *models.TaskParticipant) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	for _, existing := range r.participants {
		if existing.TaskID == p.TaskID && existing.UserID == p.UserID {
			return errs.ErrAlreadyApplied
		}
	}
	cp := *p
	r.participants[p.ID] = &cp
	return nil
}

func (r *fakeParticipantRepo) GetByID(_ context.Context, id string) (*models.TaskParticipant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.participants[id]
	if !ok {
		return nil, errs.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *fakeParticipantRepo) GetByTaskAndUser(_ context.Context, taskID, userID string) (*models.TaskParticipant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.participants {
		if p.TaskID == taskID && p.UserID == userID {
			cp := *p
			return &cp, nil
		}
	}
	return nil, errs.ErrNotFound
}

func (r *fakeParticipantRepo) ListByTask(_ context.Context, taskID string) ([]*models.TaskParticipant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.TaskParticipant
	for _, p := range r.participants {
		if p.TaskID == taskID {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeParticipantRepo) Accept(_ context.Context, participantID string) (bool, error) {
	if r.beforeAccept != nil {
		r.beforeAccept()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.participants[participantID]
	if !ok || p.Status != models.ParticipantStatusApplied {
		return false, nil
	}
	p.Status = models.ParticipantStatusAccepted
	return true, nil
}

func (r *fakeParticipantRepo) Reject(_ context.Context, participantID, reason string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.participants[participantID]
	if !ok || p.Status != models.ParticipantStatusApplied {
		return false, nil
	}
	p.Status = models.ParticipantStatusCancelled
	p.RejectionReason = &reason
	return true, nil
}

func (r *fakeParticipantRepo) Complete(_ context.Context, participantID, notes, photoURL string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.participants[participantID]
	if !ok || p.Status != models.ParticipantStatusAccepted {
		return false, nil
	}
	p.Status = models.ParticipantStatusCompleted
	p.CompletionNotes = notes
	p.CompletionPhotoURL = photoURL
	return true, nil
}

func (r *fakeParticipantRepo) Verify(_ context.Context, participantID string, earned decimal.Decimal) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.participants[participantID]
	if !ok || p.Status != models.ParticipantStatusCompleted {
		return false, nil
	}
	p.Status = models.ParticipantStatusVerified
	p.EarnedAmount = &earned
	return true, nil
}

func (r *fakeParticipantRepo) CountByTaskAndStatus(_ context.Context, taskID string, status models.ParticipantStatus) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, p := range r.participants {
		if p.TaskID == taskID && p.Status == status {
			n++
		}
	}
	return n, nil
}

type fakeSubmissionRepo struct {
	mu          sync.Mutex
	submissions map[string]*models.TaskCompletionSubmission
}

func newFakeSubmissionRepo() *fakeSubmissionRepo {
	return &fakeSubmissionRepo{submissions: make(map[string]*models.TaskCompletionSubmission)}
}

func (r *fakeSubmissionRepo) Create(_ context.Context, sub *models.TaskCompletionSubmission) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.submissions {
		if existing.TaskID == sub.TaskID && existing.ParticipantID == sub.ParticipantID {
			return errs.ErrDuplicateSubmission
		}
	}
	cp := *sub
	r.submissions[sub.ID] = &cp
	return nil
}

func (r *fakeSubmissionRepo) GetByID(_ context.Context, id string) (*models.TaskCompletionSubmission, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.submissions[id]
	if !ok {
		return nil, errs.ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (r *fakeSubmissionRepo) GetByParticipant(_ context.Context, taskID, participantID string) (*models.TaskCompletionSubmission, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.submissions {
		if s.TaskID == taskID && s.ParticipantID == participantID {
			cp := *s
			return &cp, nil
		}
	}
	return nil, errs.ErrNotFound
}

func (r *fakeSubmissionRepo) ListByTaskAndUser(_ context.Context, taskID, userID string) ([]*models.TaskCompletionSubmission, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.TaskCompletionSubmission
	for _, s := range r.submissions {
		if s.TaskID == taskID && s.UserID == userID {
			cp := *s
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeSubmissionRepo) MarkPaymentReleased(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.submissions[id]
	if !ok {
		return errs.ErrNotFound
	}
	now := time.Now()
	s.PaymentReleased = true
	s.PaymentReleasedAt = &now
	return nil
}

type fakeTransactionRepo struct {
	mu           sync.Mutex
	transactions []*models.Transaction
}

func newFakeTransactionRepo() *fakeTransactionRepo {
	return &fakeTransactionRepo{}
}

func (r *fakeTransactionRepo) Create(_ context.Context, txn *models.Transaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *txn
	r.transactions = append(r.transactions, &cp)
	return nil
}

func (r *fakeTransactionRepo) GetByID(_ context.Context, id string) (*models.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.transactions {
		if t.ID == id {
			cp := *t
			return &cp, nil
		}
	}
	return nil, errs.ErrNotFound
}

func (r *fakeTransactionRepo) GetByReference(_ context.Context, ref string) (*models.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.transactions {
		if t.Reference == ref {
			cp := *t
			return &cp, nil
		}
	}
	return nil, errs.ErrNotFound
}

func (r *fakeTransactionRepo) ListByUser(_ context.Context, userID string, limit int) ([]*models.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Transaction
	for _, t := range r.transactions {
		if t.UserID == userID {
			cp := *t
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeTransactionRepo) Settle(_ context.Context, id string, status models.TransactionStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.transactions {
		if t.ID == id && t.Status == models.TransactionStatusPending {
			t.Status = status
		}
	}
	return nil
}

func (r *fakeTransactionRepo) last() *models.Transaction {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.transactions) == 0 {
		return nil
	}
	cp := *r.transactions[len(r.transactions)-1]
	return &cp
}

type fakeHistoryRepo struct {
	mu      sync.Mutex
	entries []*models.UserVerificationHistory
}

func newFakeHistoryRepo() *fakeHistoryRepo { return &fakeHistoryRepo{} }

func (r *fakeHistoryRepo) Append(_ context.Context, entry *models.UserVerificationHistory) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *entry
	r.entries = append(r.entries, &cp)
	return nil
}

func (r *fakeHistoryRepo) ListByUser(_ context.Context, userID string, limit int) ([]*models.UserVerificationHistory, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.UserVerificationHistory
	for _, e := range r.entries {
		if e.UserID == userID {
			cp := *e
			out = append(out, &cp)
		}
	}
	return out, nil
}

type fakeProcessor struct {
	mu       sync.Mutex
	requests []clients.PayoutRequest
	err      error
}

func (p *fakeProcessor) CreatePayout(_ context.Context, req clients.PayoutRequest) (*clients.PayoutResponse, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.requests = append(p.requests, req)
	if p.err != nil {
		return nil, p.err
	}
	return &clients.PayoutResponse{Reference: "proc-" + req.IdempotencyKey, Status: "pending"}, nil
}
