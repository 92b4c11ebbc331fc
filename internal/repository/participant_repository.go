package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/taskhive/backend/internal/errs"
	"github.com/taskhive/backend/internal/models"
)

// ParticipantRepository defines data access for task participants. All
// status transitions are conditional single-row updates checked by
// rows-affected; the accepted-count capacity limit lives on the task row
// (see TaskRepository.ReserveAcceptedSlot), not here, so that concurrent
// accepts of different participants still contend on one lock.
type ParticipantRepository interface {
	Create(ctx context.Context, p *models.TaskParticipant) error
	GetByID(ctx context.Context, id string) (*models.TaskParticipant, error)
	GetByTaskAndUser(ctx context.Context, taskID, userID string) (*models.TaskParticipant, error)
	ListByTask(ctx context.Context, taskID string) ([]*models.TaskParticipant, error)

	// Accept transitions applied → accepted. Returns false when the
	// participant was not in applied state. Callers must hold a reserved
	// accepted slot on the task before transitioning.
	Accept(ctx context.Context, participantID string) (bool, error)
	// Reject transitions applied → cancelled with a reason. Returns false when
	// the participant was not in applied state.
	Reject(ctx context.Context, participantID, reason string) (bool, error)
	// Complete transitions accepted → completed. Returns false when the
	// participant was not in accepted state.
	Complete(ctx context.Context, participantID, notes, photoURL string) (bool, error)
	// Verify transitions completed → verified and records the earned amount.
	Verify(ctx context.Context, participantID string, earned decimal.Decimal) (bool, error)

	CountByTaskAndStatus(ctx context.Context, taskID string, status models.ParticipantStatus) (int64, error)
}

type participantRepository struct {
	db *gorm.DB
}

// NewParticipantRepository creates a new ParticipantRepository instance
func NewParticipantRepository(db *gorm.DB) ParticipantRepository {
	return &participantRepository{db: db}
}

func (r *participantRepository) Create(ctx context.Context, p *models.TaskParticipant) error {
	err := r.db.WithContext(ctx).Create(p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return errs.ErrAlreadyApplied
		}
		return err
	}
	return nil
}

func (r *participantRepository) GetByID(ctx context.Context, id string) (*models.TaskParticipant, error) {
	var p models.TaskParticipant
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *participantRepository) GetByTaskAndUser(ctx context.Context, taskID, userID string) (*models.TaskParticipant, error) {
	var p models.TaskParticipant
	err := r.db.WithContext(ctx).Where("task_id = ? AND user_id = ?", taskID, userID).First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *participantRepository) ListByTask(ctx context.Context, taskID string) ([]*models.TaskParticipant, error) {
	var participants []*models.TaskParticipant
	err := r.db.WithContext(ctx).
		Where("task_id = ?", taskID).
		Order("applied_at ASC").
		Find(&participants).Error
	return participants, err
}

func (r *participantRepository) Accept(ctx context.Context, participantID string) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.TaskParticipant{}).
		Where("id = ? AND status = ?", participantID, models.ParticipantStatusApplied).
		Updates(map[string]interface{}{
			"status":      models.ParticipantStatusAccepted,
			"accepted_at": time.Now(),
		})
	if result.Error != nil {
		return false, fmt.Errorf("failed to accept participant: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}

func (r *participantRepository) Reject(ctx context.Context, participantID, reason string) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.TaskParticipant{}).
		Where("id = ? AND status = ?", participantID, models.ParticipantStatusApplied).
		Updates(map[string]interface{}{
			"status":           models.ParticipantStatusCancelled,
			"rejection_reason": reason,
		})
	if result.Error != nil {
		return false, fmt.Errorf("failed to reject participant: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}

func (r *participantRepository) Complete(ctx context.Context, participantID, notes, photoURL string) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.TaskParticipant{}).
		Where("id = ? AND status = ?", participantID, models.ParticipantStatusAccepted).
		Updates(map[string]interface{}{
			"status":               models.ParticipantStatusCompleted,
			"completed_at":         time.Now(),
			"completion_notes":     notes,
			"completion_photo_url": photoURL,
		})
	if result.Error != nil {
		return false, fmt.Errorf("failed to complete participant: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}

func (r *participantRepository) Verify(ctx context.Context, participantID string, earned decimal.Decimal) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.TaskParticipant{}).
		Where("id = ? AND status = ?", participantID, models.ParticipantStatusCompleted).
		Updates(map[string]interface{}{
			"status":        models.ParticipantStatusVerified,
			"verified_at":   time.Now(),
			"earned_amount": earned,
		})
	if result.Error != nil {
		return false, fmt.Errorf("failed to verify participant: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}

func (r *participantRepository) CountByTaskAndStatus(ctx context.Context, taskID string, status models.ParticipantStatus) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.TaskParticipant{}).
		Where("task_id = ? AND status = ?", taskID, status).
		Count(&count).Error
	return count, err
}
