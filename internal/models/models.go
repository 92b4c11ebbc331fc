package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TaskType determines both the verification policy and the fee schedule
// applied when a submission is approved.
type TaskType string

const (
	TaskTypePlatformFunded     TaskType = "platform_funded"
	TaskTypePeerToPeer         TaskType = "peer_to_peer"
	TaskTypeCorporateSponsored TaskType = "corporate_sponsored"
)

// TaskStatus lifecycle of a task posting
type TaskStatus string

const (
	TaskStatusOpen       TaskStatus = "open"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusCompleted  TaskStatus = "completed"
	TaskStatusCancelled  TaskStatus = "cancelled"
)

// ParticipantStatus state machine: applied → accepted → completed → verified,
// with cancelled (creator rejection) and expired as terminal side exits.
type ParticipantStatus string

const (
	ParticipantStatusApplied   ParticipantStatus = "applied"
	ParticipantStatusAccepted  ParticipantStatus = "accepted"
	ParticipantStatusCompleted ParticipantStatus = "completed"
	ParticipantStatusVerified  ParticipantStatus = "verified"
	ParticipantStatusCancelled ParticipantStatus = "cancelled"
	ParticipantStatusExpired   ParticipantStatus = "expired"
)

// VerificationStatus outcome assigned by the decision engine
type VerificationStatus string

const (
	VerificationStatusAutoVerified  VerificationStatus = "auto_verified"
	VerificationStatusManualReview  VerificationStatus = "manual_review"
	VerificationStatusRejected      VerificationStatus = "rejected"
	VerificationStatusRequiresProof VerificationStatus = "requires_additional_proof"
)

// Verification method names accepted in verification_methods
const (
	MethodPhoto                 = "photo"
	MethodVideo                 = "video"
	MethodGPSTracking           = "gps_tracking"
	MethodTimeTracking          = "time_tracking"
	MethodCommunityVerification = "community_verification"
	MethodReceiptUpload         = "receipt_upload"
	MethodSocialProof           = "social_proof"
)

// TransactionType ledger entry classification
type TransactionType string

const (
	TransactionTypeTaskEarning  TransactionType = "task_earning"
	TransactionTypeTaskPayment  TransactionType = "task_payment"
	TransactionTypeSubscription TransactionType = "subscription"
)

// TransactionStatus ledger entry state; rows are never mutated after
// reaching completed or failed.
type TransactionStatus string

const (
	TransactionStatusPending   TransactionStatus = "pending"
	TransactionStatusCompleted TransactionStatus = "completed"
	TransactionStatusFailed    TransactionStatus = "failed"
)

// SubscriptionTier payer tier used by the tier-based fee schedule
type SubscriptionTier string

const (
	TierFree    SubscriptionTier = "free"
	TierPro     SubscriptionTier = "pro"
	TierPremium SubscriptionTier = "premium"
)

// Task is a posted real-world task. Neither current_participants nor
// accepted_count ever exceeds max_participants; both counters are only
// moved by conditional updates (see repository.TaskRepository.ReserveSlot
// and ReserveAcceptedSlot).
type Task struct {
	ID                  string          `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Title               string          `json:"title" gorm:"type:varchar(200);not null"`
	Description         string          `json:"description" gorm:"type:text"`
	Type                TaskType        `json:"type" gorm:"type:varchar(32);not null;index"`
	EarningPotential    decimal.Decimal `json:"earning_potential" gorm:"type:decimal(15,2);not null"`
	MaxParticipants     int             `json:"max_participants" gorm:"not null;default:1"`
	CurrentParticipants int             `json:"current_participants" gorm:"not null;default:0"`
	AcceptedCount       int             `json:"accepted_count" gorm:"not null;default:0"`
	CreatorID           string          `json:"creator_id" gorm:"type:varchar(36);not null;index"`
	Status              TaskStatus      `json:"status" gorm:"type:varchar(16);not null;default:'open'"`
	CreatedAt           time.Time       `json:"created_at"`
	UpdatedAt           time.Time       `json:"updated_at"`
}

// TaskParticipant is one user's engagement with a task. One row per
// (task, user), enforced by a unique index.
type TaskParticipant struct {
	ID                 string            `json:"id" gorm:"primaryKey;type:varchar(36)"`
	TaskID             string            `json:"task_id" gorm:"type:varchar(36);not null;uniqueIndex:idx_task_user"`
	UserID             string            `json:"user_id" gorm:"type:varchar(36);not null;uniqueIndex:idx_task_user"`
	Status             ParticipantStatus `json:"status" gorm:"type:varchar(16);not null;index"`
	ApplicationMessage string            `json:"application_message" gorm:"type:text"`
	AppliedAt          time.Time         `json:"applied_at"`
	AcceptedAt         *time.Time        `json:"accepted_at,omitempty"`
	CompletedAt        *time.Time        `json:"completed_at,omitempty"`
	VerifiedAt         *time.Time        `json:"verified_at,omitempty"`
	RejectionReason    *string           `json:"rejection_reason,omitempty" gorm:"type:text"`
	EarnedAmount       *decimal.Decimal  `json:"earned_amount,omitempty" gorm:"type:decimal(15,2)"`
	CompletionNotes    string            `json:"completion_notes" gorm:"type:text"`
	CompletionPhotoURL string            `json:"completion_photo_url" gorm:"type:varchar(500)"`
	CreatedAt          time.Time         `json:"created_at"`
	UpdatedAt          time.Time         `json:"updated_at"`
}

// AutoApprovalCriteria per-task thresholds for automatic approval.
// Zero values mean "use the configured policy defaults".
type AutoApprovalCriteria struct {
	GPSAccuracyMin    int `json:"gps_accuracy_min"`
	PhotoQualityMin   int `json:"photo_quality_min"`
	TimeComplianceMin int `json:"time_compliance_min"`
	FraudScoreMax     int `json:"fraud_score_max"`
}

// VerificationRequirements declares what evidence a task demands.
// Immutable once the task has received its first submission.
type VerificationRequirements struct {
	ID                      string               `json:"id" gorm:"primaryKey;type:varchar(36)"`
	TaskID                  string               `json:"task_id" gorm:"type:varchar(36);not null;uniqueIndex"`
	RequiredMethods         StringList           `json:"required_methods" gorm:"type:jsonb"`
	PhotoCount              int                  `json:"photo_count" gorm:"default:1"`
	PhotoRequiresGPS        bool                 `json:"photo_requires_gps"`
	PhotoRequiresTimestamp  bool                 `json:"photo_requires_timestamp"`
	TimestampFreshnessHours int                  `json:"timestamp_freshness_hours" gorm:"default:24"`
	VideoMinDurationSeconds int                  `json:"video_min_duration_seconds" gorm:"default:30"`
	VideoMaxDurationSeconds int                  `json:"video_max_duration_seconds" gorm:"default:300"`
	GPSRadiusMeters         float64              `json:"gps_radius_meters"`
	MinDurationSeconds      int                  `json:"min_duration_seconds"`
	AutoApproval            AutoApprovalCriteria `json:"auto_approval" gorm:"embedded;embeddedPrefix:auto_approval_"`
	CreatedAt               time.Time            `json:"created_at"`
	UpdatedAt               time.Time            `json:"updated_at"`
}

// GPSPoint a single coordinate sample
type GPSPoint struct {
	Latitude  float64    `json:"latitude"`
	Longitude float64    `json:"longitude"`
	Accuracy  float64    `json:"accuracy,omitempty"`
	Timestamp *time.Time `json:"timestamp,omitempty"`
}

// PhotoEvidence one uploaded photo plus whatever metadata survived upload
type PhotoEvidence struct {
	URL       string     `json:"url"`
	TakenAt   *time.Time `json:"taken_at,omitempty"`
	Latitude  *float64   `json:"latitude,omitempty"`
	Longitude *float64   `json:"longitude,omitempty"`
}

// TimeInterval one tracked work interval
type TimeInterval struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// TaskCompletionSubmission is the evidence bundle for one apply-then-complete
// cycle. Evidence fields are immutable after creation; status and payment
// fields are mutated only by the verification pipeline. The unique index on
// (task_id, participant_id) is the duplicate-submission guard.
type TaskCompletionSubmission struct {
	ID            string `json:"id" gorm:"primaryKey;type:varchar(36)"`
	TaskID        string `json:"task_id" gorm:"type:varchar(36);not null;uniqueIndex:idx_task_participant"`
	ParticipantID string `json:"participant_id" gorm:"type:varchar(36);not null;uniqueIndex:idx_task_participant"`
	UserID        string `json:"user_id" gorm:"type:varchar(36);not null;index"`

	VerificationMethods  StringList       `json:"verification_methods" gorm:"type:jsonb"`
	Photos               PhotoList        `json:"photos" gorm:"type:jsonb"`
	VideoURLs            StringList       `json:"video_urls" gorm:"type:jsonb"`
	VideoDurationSeconds int              `json:"video_duration_seconds"`
	ReceiptURLs          StringList       `json:"receipt_urls" gorm:"type:jsonb"`
	SocialProofURLs      StringList       `json:"social_proof_urls" gorm:"type:jsonb"`
	GPSCoordinates       GPSPointList     `json:"gps_coordinates" gorm:"type:jsonb"`
	LocationHistory      GPSPointList     `json:"location_history" gorm:"type:jsonb"`
	StartTime            *time.Time       `json:"start_time,omitempty"`
	EndTime              *time.Time       `json:"end_time,omitempty"`
	TimeIntervals        TimeIntervalList `json:"time_intervals" gorm:"type:jsonb"`

	AutoVerificationScore int                `json:"auto_verification_score"`
	FraudDetectionScore   int                `json:"fraud_detection_score"`
	QualityScore          int                `json:"quality_score"`
	FraudFlags            StringList         `json:"fraud_flags" gorm:"type:jsonb"`
	VerificationStatus    VerificationStatus `json:"verification_status" gorm:"type:varchar(32);not null;index"`

	PaymentReleased   bool       `json:"payment_released" gorm:"default:false"`
	PaymentReleasedAt *time.Time `json:"payment_released_at,omitempty"`
	IdempotencyToken  string     `json:"idempotency_token" gorm:"type:varchar(64)"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Transaction is an append-only ledger entry. Never mutated after reaching
// completed or failed.
type Transaction struct {
	ID        string              `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserID    string              `json:"user_id" gorm:"type:varchar(36);not null;index"`
	TaskID    string              `json:"task_id" gorm:"type:varchar(36);index"`
	Type      TransactionType     `json:"type" gorm:"type:varchar(32);not null"`
	Amount    decimal.Decimal     `json:"amount" gorm:"type:decimal(15,2);not null"`
	Status    TransactionStatus   `json:"status" gorm:"type:varchar(16);not null;default:'pending'"`
	Reference string              `json:"reference" gorm:"type:varchar(64);uniqueIndex"`
	Metadata  TransactionMetadata `json:"metadata" gorm:"type:jsonb"`
	CreatedAt time.Time           `json:"created_at"`
	UpdatedAt time.Time           `json:"updated_at"`
}

// TransactionMetadata audit detail stored alongside a ledger entry
type TransactionMetadata struct {
	SubmissionID       string `json:"submission_id,omitempty"`
	FeePolicy          string `json:"fee_policy,omitempty"`
	FeeRatePercent     string `json:"fee_rate_percent,omitempty"`
	PlatformFee        string `json:"platform_fee,omitempty"`
	NetAmount          string `json:"net_amount,omitempty"`
	ProcessorReference string `json:"processor_reference,omitempty"`
	FailureReason      string `json:"failure_reason,omitempty"`
}

// UserVerificationHistory append-only audit trail of verification outcomes.
// Written best-effort by the pipeline; never read back into scoring.
type UserVerificationHistory struct {
	ID                  string             `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserID              string             `json:"user_id" gorm:"type:varchar(36);not null;index"`
	SubmissionID        string             `json:"submission_id" gorm:"type:varchar(36);not null"`
	VerificationOutcome VerificationStatus `json:"verification_outcome" gorm:"type:varchar(32);not null"`
	QualityScore        int                `json:"quality_score"`
	FraudScore          int                `json:"fraud_score"`
	Timeliness          int                `json:"timeliness"`
	AccuracyScore       int                `json:"accuracy_score"`
	ImpactOnReputation  int                `json:"impact_on_reputation"`
	CreatedAt           time.Time          `json:"created_at"`
}
