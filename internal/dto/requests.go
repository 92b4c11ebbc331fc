package dto

import (
	"time"

	"github.com/taskhive/backend/internal/models"
)

// ==================== Task DTOs ====================

// CreateTaskRequest body for POST /api/v1/tasks
type CreateTaskRequest struct {
	Title            string                    `json:"title" binding:"required,max=200"`
	Description      string                    `json:"description"`
	Type             string                    `json:"type" binding:"required,oneof=platform_funded peer_to_peer corporate_sponsored"`
	EarningPotential float64                   `json:"earning_potential" binding:"required,gt=0"`
	MaxParticipants  int                       `json:"max_participants" binding:"required,min=1"`
	Requirements     *VerificationRequirements `json:"requirements"`
}

// VerificationRequirements declared evidence demands for a task
type VerificationRequirements struct {
	RequiredMethods         []string `json:"required_methods" binding:"required,min=1,dive,oneof=photo video gps_tracking time_tracking community_verification receipt_upload social_proof"`
	PhotoCount              int      `json:"photo_count"`
	PhotoRequiresGPS        bool     `json:"photo_requires_gps"`
	PhotoRequiresTimestamp  bool     `json:"photo_requires_timestamp"`
	TimestampFreshnessHours int      `json:"timestamp_freshness_hours"`
	VideoMinDurationSeconds int      `json:"video_min_duration_seconds"`
	VideoMaxDurationSeconds int      `json:"video_max_duration_seconds"`
	GPSRadiusMeters         float64  `json:"gps_radius_meters"`
	MinDurationSeconds      int      `json:"min_duration_seconds"`
	GPSAccuracyMin          int      `json:"gps_accuracy_min"`
	PhotoQualityMin         int      `json:"photo_quality_min"`
	TimeComplianceMin       int      `json:"time_compliance_min"`
	FraudScoreMax           int      `json:"fraud_score_max"`
}

// ==================== Participant DTOs ====================

// ApplyRequest body for POST /api/v1/tasks/:id/apply
type ApplyRequest struct {
	Message string `json:"message" binding:"max=2000"`
}

// ReviewRequest body for POST /api/v1/tasks/:id/participants/:pid/review
type ReviewRequest struct {
	Action          string `json:"action" binding:"required,oneof=accept reject"`
	RejectionReason string `json:"rejection_reason" binding:"max=2000"`
}

// CompleteRequest body for POST /api/v1/tasks/:id/participants/:pid/complete
type CompleteRequest struct {
	Notes    string `json:"notes" binding:"max=4000"`
	PhotoURL string `json:"photo_url" binding:"omitempty,url"`
}

// ==================== Verification DTOs ====================

// PhotoEvidence one photo plus upload metadata
type PhotoEvidence struct {
	URL       string     `json:"url" binding:"required,url"`
	TakenAt   *time.Time `json:"taken_at"`
	Latitude  *float64   `json:"latitude"`
	Longitude *float64   `json:"longitude"`
}

// GPSPoint one coordinate sample
type GPSPoint struct {
	Latitude  float64    `json:"latitude" binding:"required"`
	Longitude float64    `json:"longitude" binding:"required"`
	Accuracy  float64    `json:"accuracy"`
	Timestamp *time.Time `json:"timestamp"`
}

// TimeInterval one tracked work interval
type TimeInterval struct {
	Start time.Time `json:"start" binding:"required"`
	End   time.Time `json:"end" binding:"required"`
}

// SubmitVerificationRequest body for POST /api/v1/verification/submit.
// Unknown or missing fields are rejected at binding before any scoring runs.
type SubmitVerificationRequest struct {
	TaskID               string          `json:"task_id" binding:"required,uuid"`
	ParticipantID        string          `json:"participant_id" binding:"required,uuid"`
	VerificationMethods  []string        `json:"verification_methods" binding:"required,min=1,dive,oneof=photo video gps_tracking time_tracking community_verification receipt_upload social_proof"`
	Photos               []PhotoEvidence `json:"photos" binding:"dive"`
	VideoURLs            []string        `json:"video_urls" binding:"dive,url"`
	VideoDurationSeconds int             `json:"video_duration_seconds" binding:"min=0"`
	ReceiptURLs          []string        `json:"receipt_urls" binding:"dive,url"`
	SocialProofURLs      []string        `json:"social_proof_urls" binding:"dive,url"`
	GPSCoordinates       []GPSPoint      `json:"gps_coordinates" binding:"dive"`
	LocationHistory      []GPSPoint      `json:"location_history" binding:"dive"`
	StartTime            *time.Time      `json:"start_time"`
	EndTime              *time.Time      `json:"end_time"`
	TimeIntervals        []TimeInterval  `json:"time_intervals" binding:"dive"`
}

// ModelPhotos converts DTO photos to model evidence.
func (r *SubmitVerificationRequest) ModelPhotos() []models.PhotoEvidence {
	out := make([]models.PhotoEvidence, 0, len(r.Photos))
	for _, p := range r.Photos {
		out = append(out, models.PhotoEvidence{
			URL:       p.URL,
			TakenAt:   p.TakenAt,
			Latitude:  p.Latitude,
			Longitude: p.Longitude,
		})
	}
	return out
}

// ModelGPSPoints converts DTO coordinates to model points.
func ModelGPSPoints(points []GPSPoint) []models.GPSPoint {
	out := make([]models.GPSPoint, 0, len(points))
	for _, p := range points {
		out = append(out, models.GPSPoint{
			Latitude:  p.Latitude,
			Longitude: p.Longitude,
			Accuracy:  p.Accuracy,
			Timestamp: p.Timestamp,
		})
	}
	return out
}

// ModelIntervals converts DTO intervals to model intervals.
func ModelIntervals(intervals []TimeInterval) []models.TimeInterval {
	out := make([]models.TimeInterval, 0, len(intervals))
	for _, iv := range intervals {
		out = append(out, models.TimeInterval{Start: iv.Start, End: iv.End})
	}
	return out
}
