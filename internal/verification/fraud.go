package verification

import (
	"github.com/taskhive/backend/internal/models"
)

// Fraud heuristic rule weights. Rules are additive and independent; the
// total is intentionally not capped so new rules can raise the ceiling.
const (
	fraudPhotoMarkerPoints     = 5
	fraudTooQuickPoints        = 20
	fraudMissingMethodsPoints  = 30
	fraudTooQuickThresholdSecs = 60
)

// Fraud flag strings recorded on the submission and in history.
const (
	FlagCompletedTooQuickly = "completed too quickly"
	FlagMissingMethods      = "missing required verification methods"
)

// EvaluateFraud runs the fraud heuristics over a submission and returns the
// additive risk score plus the flags that fired.
func EvaluateFraud(sub *models.TaskCompletionSubmission, requiredMethods models.StringList) (int, []string) {
	score := 0
	var flags []string

	if len(sub.Photos) > 0 {
		score += fraudPhotoMarkerPoints
	}

	if totalDurationSeconds(sub) < fraudTooQuickThresholdSecs {
		score += fraudTooQuickPoints
		flags = append(flags, FlagCompletedTooQuickly)
	}

	if len(sub.VerificationMethods) < len(requiredMethods) {
		score += fraudMissingMethodsPoints
		flags = append(flags, FlagMissingMethods)
	}

	return score, flags
}
