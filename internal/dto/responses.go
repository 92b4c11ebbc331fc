package dto

import (
	"time"

	"github.com/taskhive/backend/internal/models"
)

// ErrorResponse is the uniform error envelope.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// TaskResponse public view of a task
type TaskResponse struct {
	ID                  string    `json:"id"`
	CreatorID           string    `json:"creator_id"`
	Title               string    `json:"title"`
	Description         string    `json:"description,omitempty"`
	Type                string    `json:"type"`
	Status              string    `json:"status"`
	EarningPotential    string    `json:"earning_potential"`
	MaxParticipants     int       `json:"max_participants"`
	CurrentParticipants int       `json:"current_participants"`
	CreatedAt           time.Time `json:"created_at"`
}

// NewTaskResponse maps a model task to the wire form.
func NewTaskResponse(t *models.Task) TaskResponse {
	return TaskResponse{
		ID:                  t.ID,
		CreatorID:           t.CreatorID,
		Title:               t.Title,
		Description:         t.Description,
		Type:                string(t.Type),
		Status:              string(t.Status),
		EarningPotential:    t.EarningPotential.StringFixed(2),
		MaxParticipants:     t.MaxParticipants,
		CurrentParticipants: t.CurrentParticipants,
		CreatedAt:           t.CreatedAt,
	}
}

// ParticipantResponse public view of a participation record
type ParticipantResponse struct {
	ID              string     `json:"id"`
	TaskID          string     `json:"task_id"`
	UserID          string     `json:"user_id"`
	Status          string     `json:"status"`
	AppliedAt       time.Time  `json:"applied_at"`
	AcceptedAt      *time.Time `json:"accepted_at,omitempty"`
	CompletedAt     *time.Time `json:"completed_at,omitempty"`
	VerifiedAt      *time.Time `json:"verified_at,omitempty"`
	RejectionReason *string    `json:"rejection_reason,omitempty"`
	EarnedAmount    *string    `json:"earned_amount,omitempty"`
}

// NewParticipantResponse maps a model participant to the wire form.
func NewParticipantResponse(p *models.TaskParticipant) ParticipantResponse {
	resp := ParticipantResponse{
		ID:              p.ID,
		TaskID:          p.TaskID,
		UserID:          p.UserID,
		Status:          string(p.Status),
		AppliedAt:       p.AppliedAt,
		AcceptedAt:      p.AcceptedAt,
		CompletedAt:     p.CompletedAt,
		VerifiedAt:      p.VerifiedAt,
		RejectionReason: p.RejectionReason,
	}
	if p.EarnedAmount != nil {
		s := p.EarnedAmount.StringFixed(2)
		resp.EarnedAmount = &s
	}
	return resp
}

// SubmissionDetailResponse full stored submission view
type SubmissionDetailResponse struct {
	ID                    string     `json:"id"`
	TaskID                string     `json:"task_id"`
	ParticipantID         string     `json:"participant_id"`
	UserID                string     `json:"user_id"`
	VerificationStatus    string     `json:"verification_status"`
	AutoVerificationScore int        `json:"auto_verification_score"`
	FraudDetectionScore   int        `json:"fraud_detection_score"`
	QualityScore          int        `json:"quality_score"`
	FraudFlags            []string   `json:"fraud_flags,omitempty"`
	PaymentReleased       bool       `json:"payment_released"`
	PaymentReleasedAt     *time.Time `json:"payment_released_at,omitempty"`
	SubmittedAt           time.Time  `json:"submitted_at"`
}

// NewSubmissionDetailResponse maps a stored submission to the wire form.
func NewSubmissionDetailResponse(s *models.TaskCompletionSubmission) SubmissionDetailResponse {
	return SubmissionDetailResponse{
		ID:                    s.ID,
		TaskID:                s.TaskID,
		ParticipantID:         s.ParticipantID,
		UserID:                s.UserID,
		VerificationStatus:    string(s.VerificationStatus),
		AutoVerificationScore: s.AutoVerificationScore,
		FraudDetectionScore:   s.FraudDetectionScore,
		QualityScore:          s.QualityScore,
		FraudFlags:            s.FraudFlags,
		PaymentReleased:       s.PaymentReleased,
		PaymentReleasedAt:     s.PaymentReleasedAt,
		SubmittedAt:           s.CreatedAt,
	}
}
