package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/taskhive/backend/internal/models"
)

// HistoryRepository appends verification outcomes to the per-user audit
// trail. The trail is write-only from the pipeline's point of view; it never
// feeds back into scoring.
type HistoryRepository interface {
	Append(ctx context.Context, record *models.UserVerificationHistory) error
	ListByUser(ctx context.Context, userID string, limit int) ([]*models.UserVerificationHistory, error)
}

type historyRepository struct {
	db *gorm.DB
}

// NewHistoryRepository creates a new HistoryRepository instance
func NewHistoryRepository(db *gorm.DB) HistoryRepository {
	return &historyRepository{db: db}
}

func (r *historyRepository) Append(ctx context.Context, record *models.UserVerificationHistory) error {
	return r.db.WithContext(ctx).Create(record).Error
}

func (r *historyRepository) ListByUser(ctx context.Context, userID string, limit int) ([]*models.UserVerificationHistory, error) {
	if limit <= 0 {
		limit = 50
	}
	var records []*models.UserVerificationHistory
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&records).Error
	return records, err
}
