package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/taskhive/backend/internal/errs"
	"github.com/taskhive/backend/internal/models"
)

// TaskRepository defines data access for tasks and their verification
// requirements. The slot methods form the capacity guard: both counters on
// the task row only move through conditional updates checked by
// rows-affected, never through read-then-write arithmetic. Because every
// reservation targets the same task row, concurrent callers serialize on
// the row lock and at most max_participants reservations of each kind can
// ever succeed.
type TaskRepository interface {
	Create(ctx context.Context, task *models.Task) error
	GetByID(ctx context.Context, id string) (*models.Task, error)
	UpdateStatus(ctx context.Context, id string, status models.TaskStatus) error

	// ReserveSlot atomically increments current_participants if and only if
	// the task is below its participant limit. Returns false when the task
	// is full.
	ReserveSlot(ctx context.Context, taskID string) (bool, error)
	// ReleaseSlot decrements current_participants, flooring at zero.
	ReleaseSlot(ctx context.Context, taskID string) error

	// ReserveAcceptedSlot atomically increments accepted_count if and only
	// if it is below max_participants. Returns false when the accepted
	// limit is reached.
	ReserveAcceptedSlot(ctx context.Context, taskID string) (bool, error)
	// ReleaseAcceptedSlot decrements accepted_count, flooring at zero.
	ReleaseAcceptedSlot(ctx context.Context, taskID string) error

	CreateRequirements(ctx context.Context, req *models.VerificationRequirements) error
	GetRequirements(ctx context.Context, taskID string) (*models.VerificationRequirements, error)
}

type taskRepository struct {
	db *gorm.DB
}

// NewTaskRepository creates a new TaskRepository instance
func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &taskRepository{db: db}
}

func (r *taskRepository) Create(ctx context.Context, task *models.Task) error {
	return r.db.WithContext(ctx).Create(task).Error
}

func (r *taskRepository) GetByID(ctx context.Context, id string) (*models.Task, error) {
	var task models.Task
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&task).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.ErrNotFound
		}
		return nil, err
	}
	return &task, nil
}

func (r *taskRepository) UpdateStatus(ctx context.Context, id string, status models.TaskStatus) error {
	return r.db.WithContext(ctx).
		Model(&models.Task{}).
		Where("id = ?", id).
		Update("status", status).Error
}

func (r *taskRepository) ReserveSlot(ctx context.Context, taskID string) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Task{}).
		Where("id = ? AND current_participants < max_participants", taskID).
		Update("current_participants", gorm.Expr("current_participants + 1"))
	if result.Error != nil {
		return false, fmt.Errorf("failed to reserve participant slot: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}

func (r *taskRepository) ReleaseSlot(ctx context.Context, taskID string) error {
	result := r.db.WithContext(ctx).
		Model(&models.Task{}).
		Where("id = ? AND current_participants > 0", taskID).
		Update("current_participants", gorm.Expr("current_participants - 1"))
	if result.Error != nil {
		return fmt.Errorf("failed to release participant slot: %w", result.Error)
	}
	return nil
}

func (r *taskRepository) ReserveAcceptedSlot(ctx context.Context, taskID string) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Task{}).
		Where("id = ? AND accepted_count < max_participants", taskID).
		Update("accepted_count", gorm.Expr("accepted_count + 1"))
	if result.Error != nil {
		return false, fmt.Errorf("failed to reserve accepted slot: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}

func (r *taskRepository) ReleaseAcceptedSlot(ctx context.Context, taskID string) error {
	result := r.db.WithContext(ctx).
		Model(&models.Task{}).
		Where("id = ? AND accepted_count > 0", taskID).
		Update("accepted_count", gorm.Expr("accepted_count - 1"))
	if result.Error != nil {
		return fmt.Errorf("failed to release accepted slot: %w", result.Error)
	}
	return nil
}

func (r *taskRepository) CreateRequirements(ctx context.Context, req *models.VerificationRequirements) error {
	return r.db.WithContext(ctx).Create(req).Error
}

func (r *taskRepository) GetRequirements(ctx context.Context, taskID string) (*models.VerificationRequirements, error) {
	var req models.VerificationRequirements
	err := r.db.WithContext(ctx).Where("task_id = ?", taskID).First(&req).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.ErrNotFound
		}
		return nil, err
	}
	return &req, nil
}
