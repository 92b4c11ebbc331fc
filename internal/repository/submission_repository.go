package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/taskhive/backend/internal/errs"
	"github.com/taskhive/backend/internal/models"
)

// SubmissionRepository defines data access for completion submissions.
// Duplicate protection relies on the DB unique index over
// (task_id, participant_id), not an application-level check-then-insert.
type SubmissionRepository interface {
	Create(ctx context.Context, sub *models.TaskCompletionSubmission) error
	GetByID(ctx context.Context, id string) (*models.TaskCompletionSubmission, error)
	GetByParticipant(ctx context.Context, taskID, participantID string) (*models.TaskCompletionSubmission, error)
	ListByTaskAndUser(ctx context.Context, taskID, userID string) ([]*models.TaskCompletionSubmission, error)
	MarkPaymentReleased(ctx context.Context, id string) error
}

type submissionRepository struct {
	db *gorm.DB
}

// NewSubmissionRepository creates a new SubmissionRepository instance
func NewSubmissionRepository(db *gorm.DB) SubmissionRepository {
	return &submissionRepository{db: db}
}

func (r *submissionRepository) Create(ctx context.Context, sub *models.TaskCompletionSubmission) error {
	err := r.db.WithContext(ctx).Create(sub).Error
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return errs.ErrDuplicateSubmission
		}
		return err
	}
	return nil
}

func (r *submissionRepository) GetByID(ctx context.Context, id string) (*models.TaskCompletionSubmission, error) {
	var sub models.TaskCompletionSubmission
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&sub).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.ErrNotFound
		}
		return nil, err
	}
	return &sub, nil
}

func (r *submissionRepository) GetByParticipant(ctx context.Context, taskID, participantID string) (*models.TaskCompletionSubmission, error) {
	var sub models.TaskCompletionSubmission
	err := r.db.WithContext(ctx).
		Where("task_id = ? AND participant_id = ?", taskID, participantID).
		First(&sub).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.ErrNotFound
		}
		return nil, err
	}
	return &sub, nil
}

func (r *submissionRepository) ListByTaskAndUser(ctx context.Context, taskID, userID string) ([]*models.TaskCompletionSubmission, error) {
	var subs []*models.TaskCompletionSubmission
	err := r.db.WithContext(ctx).
		Where("task_id = ? AND user_id = ?", taskID, userID).
		Order("created_at DESC").
		Find(&subs).Error
	return subs, err
}

func (r *submissionRepository) MarkPaymentReleased(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Model(&models.TaskCompletionSubmission{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"payment_released":    true,
			"payment_released_at": time.Now(),
		}).Error
}
