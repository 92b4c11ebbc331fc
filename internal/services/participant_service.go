// Package services contains the stateful core of the marketplace: the
// participant lifecycle manager and the verification pipeline coordinator.
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/taskhive/backend/internal/errs"
	"github.com/taskhive/backend/internal/metrics"
	"github.com/taskhive/backend/internal/models"
	"github.com/taskhive/backend/internal/repository"
)

// ParticipantService enforces the application/acceptance/completion state
// machine and the capacity invariant. All counter movement goes through the
// repository's conditional updates; this layer sequences them and
// compensates when a later step fails.
type ParticipantService struct {
	taskRepo        repository.TaskRepository
	participantRepo repository.ParticipantRepository
	logger          *logrus.Logger
}

// NewParticipantService creates a new ParticipantService
func NewParticipantService(taskRepo repository.TaskRepository, participantRepo repository.ParticipantRepository, logger *logrus.Logger) *ParticipantService {
	return &ParticipantService{
		taskRepo:        taskRepo,
		participantRepo: participantRepo,
		logger:          logger,
	}
}

// Apply creates a participant in applied state and reserves a capacity slot.
// Order matters: the slot is reserved with a conditional update first, and
// released again if the insert loses a duplicate race.
func (s *ParticipantService) Apply(ctx context.Context, taskID, userID, message string) (*models.TaskParticipant, error) {
	task, err := s.taskRepo.GetByID(ctx, taskID)
	if err != nil {
		return nil, err
	}

	if task.CreatorID == userID {
		return nil, errs.ErrSelfApplication
	}

	if _, err := s.participantRepo.GetByTaskAndUser(ctx, taskID, userID); err == nil {
		return nil, errs.ErrAlreadyApplied
	} else if !errors.Is(err, errs.ErrNotFound) {
		return nil, fmt.Errorf("failed to check existing application: %w", err)
	}

	reserved, err := s.taskRepo.ReserveSlot(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if !reserved {
		metrics.CapacityRejections.Inc()
		return nil, errs.ErrTaskFull
	}

	now := time.Now()
	participant := &models.TaskParticipant{
		ID:                 uuid.NewString(),
		TaskID:             taskID,
		UserID:             userID,
		Status:             models.ParticipantStatusApplied,
		ApplicationMessage: message,
		AppliedAt:          now,
	}

	if err := s.participantRepo.Create(ctx, participant); err != nil {
		// The slot was reserved but the insert lost a concurrent duplicate
		// race; hand the slot back before reporting the business error.
		if releaseErr := s.taskRepo.ReleaseSlot(ctx, taskID); releaseErr != nil {
			s.logger.WithFields(logrus.Fields{
				"task_id": taskID,
				"user_id": userID,
				"error":   releaseErr.Error(),
			}).Error("failed to release reserved slot after apply failure")
		}
		return nil, err
	}

	metrics.ParticipantTransitions.WithLabelValues(string(models.ParticipantStatusApplied)).Inc()
	s.logger.WithFields(logrus.Fields{
		"task_id":        taskID,
		"user_id":        userID,
		"participant_id": participant.ID,
	}).Info("participant applied")

	return participant, nil
}

// ReviewAction what a creator does with an application
type ReviewAction string

const (
	ReviewActionAccept ReviewAction = "accept"
	ReviewActionReject ReviewAction = "reject"
)

// Review accepts or rejects an application. Creator-only. Accept reserves
// an accepted slot on the task row before transitioning the participant, so
// concurrent accepts of different participants serialize on the same row;
// reject cancels the application with a reason.
func (s *ParticipantService) Review(ctx context.Context, taskID, participantID, callerID string, action ReviewAction, rejectionReason string) (*models.TaskParticipant, error) {
	task, err := s.taskRepo.GetByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if task.CreatorID != callerID {
		return nil, errs.ErrNotCreator
	}

	participant, err := s.participantRepo.GetByID(ctx, participantID)
	if err != nil {
		return nil, err
	}
	if participant.TaskID != taskID {
		return nil, errs.ErrNotFound
	}
	if participant.Status != models.ParticipantStatusApplied {
		return nil, errs.ErrInvalidTransition
	}

	switch action {
	case ReviewActionAccept:
		reserved, err := s.taskRepo.ReserveAcceptedSlot(ctx, taskID)
		if err != nil {
			return nil, err
		}
		if !reserved {
			metrics.CapacityRejections.Inc()
			return nil, errs.ErrCapacityExceeded
		}
		ok, err := s.participantRepo.Accept(ctx, participantID)
		if err == nil && !ok {
			// A concurrent transition moved this participant out of applied
			// between the status check above and the update.
			err = errs.ErrInvalidTransition
		}
		if err != nil {
			// The slot was reserved but the transition did not happen; hand
			// the slot back before reporting the error.
			if releaseErr := s.taskRepo.ReleaseAcceptedSlot(ctx, taskID); releaseErr != nil {
				s.logger.WithFields(logrus.Fields{
					"task_id":        taskID,
					"participant_id": participantID,
					"error":          releaseErr.Error(),
				}).Error("failed to release accepted slot after accept failure")
			}
			return nil, err
		}
		metrics.ParticipantTransitions.WithLabelValues(string(models.ParticipantStatusAccepted)).Inc()

	case ReviewActionReject:
		ok, err := s.participantRepo.Reject(ctx, participantID, rejectionReason)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, errs.ErrInvalidTransition
		}
		metrics.ParticipantTransitions.WithLabelValues(string(models.ParticipantStatusCancelled)).Inc()

	default:
		return nil, fmt.Errorf("%w: unknown review action %q", errs.ErrValidation, action)
	}

	return s.participantRepo.GetByID(ctx, participantID)
}

// Complete marks the caller's accepted participation as completed. The photo
// reference is stored with the participant; approval itself always flows
// through the verification pipeline.
func (s *ParticipantService) Complete(ctx context.Context, taskID, participantID, userID, notes, photoURL string) (*models.TaskParticipant, error) {
	participant, err := s.participantRepo.GetByTaskAndUser(ctx, taskID, userID)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return nil, errs.ErrNotParticipant
		}
		return nil, err
	}
	if participantID != "" && participant.ID != participantID {
		return nil, errs.ErrNotParticipant
	}

	if participant.Status != models.ParticipantStatusAccepted {
		return nil, errs.ErrInvalidTransition
	}

	ok, err := s.participantRepo.Complete(ctx, participant.ID, notes, photoURL)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errs.ErrInvalidTransition
	}

	metrics.ParticipantTransitions.WithLabelValues(string(models.ParticipantStatusCompleted)).Inc()
	s.logger.WithFields(logrus.Fields{
		"task_id":        taskID,
		"participant_id": participant.ID,
	}).Info("participant completed task")

	return s.participantRepo.GetByID(ctx, participant.ID)
}

// Verify advances a completed participant to verified and records earnings.
// Driven exclusively by an auto_verified pipeline outcome or an operator
// approval; never called directly by task participants.
func (s *ParticipantService) Verify(ctx context.Context, participantID string, earnedAmount decimal.Decimal) error {
	ok, err := s.participantRepo.Verify(ctx, participantID, earnedAmount)
	if err != nil {
		return err
	}
	if !ok {
		return errs.ErrInvalidTransition
	}
	metrics.ParticipantTransitions.WithLabelValues(string(models.ParticipantStatusVerified)).Inc()
	return nil
}
