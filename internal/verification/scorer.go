// Package verification contains the pure scoring and classification core of
// the completion pipeline: evidence scoring, fraud heuristics, and the
// decision engine. Nothing in this package performs I/O; every function is
// deterministic for a given input.
package verification

import (
	"math"
	"time"

	"github.com/taskhive/backend/internal/models"
)

// ModalityScores per-modality evidence scores, each 0-100 before combination.
type ModalityScores struct {
	Photo    int `json:"photo"`
	Video    int `json:"video"`
	Location int `json:"location"`
	Time     int `json:"time"`
}

// Modality score point values. Absent evidence simply earns no points; the
// scorer never errors.
const (
	photoCountPoints     = 30
	photoGPSPoints       = 25
	photoTimestampPoints = 20
	photoFreshnessPoints = 15
	photoBasePoints      = 10

	videoDurationPoints = 40
	videoBasePoints     = 30

	locationRadiusPoints  = 50
	locationHistoryPoints = 30
	locationBasePoints    = 20

	timeRequiredPoints  = 40
	timePlausiblePoints = 30
	timeIntervalPoints  = 30

	defaultVideoMinSeconds = 30
	defaultVideoMaxSeconds = 300

	plausibleMinSeconds = 60
	plausibleMaxSeconds = 86400

	minLocationHistoryPoints = 5
)

// ScoreEvidence scores each evidence modality against the task requirements.
// submittedAt anchors timestamp-freshness checks.
func ScoreEvidence(sub *models.TaskCompletionSubmission, req *models.VerificationRequirements, submittedAt time.Time) ModalityScores {
	return ModalityScores{
		Photo:    scorePhoto(sub, req, submittedAt),
		Video:    scoreVideo(sub, req),
		Location: scoreLocation(sub, req),
		Time:     scoreTime(sub, req),
	}
}

func scorePhoto(sub *models.TaskCompletionSubmission, req *models.VerificationRequirements, submittedAt time.Time) int {
	if len(sub.Photos) == 0 {
		return 0
	}

	score := photoBasePoints

	requiredCount := req.PhotoCount
	if requiredCount < 1 {
		requiredCount = 1
	}
	if len(sub.Photos) >= requiredCount {
		score += photoCountPoints
	}

	if req.PhotoRequiresGPS && photosHaveGPS(sub.Photos) {
		score += photoGPSPoints
	}

	if req.PhotoRequiresTimestamp {
		if takenAt := latestPhotoTimestamp(sub.Photos); takenAt != nil {
			score += photoTimestampPoints

			freshness := req.TimestampFreshnessHours
			if freshness <= 0 {
				freshness = 24
			}
			age := submittedAt.Sub(*takenAt)
			if age >= 0 && age <= time.Duration(freshness)*time.Hour {
				score += photoFreshnessPoints
			}
		}
	}

	if score > 100 {
		score = 100
	}
	return score
}

func scoreVideo(sub *models.TaskCompletionSubmission, req *models.VerificationRequirements) int {
	if len(sub.VideoURLs) == 0 {
		return 0
	}

	score := videoBasePoints

	minDur := req.VideoMinDurationSeconds
	if minDur <= 0 {
		minDur = defaultVideoMinSeconds
	}
	maxDur := req.VideoMaxDurationSeconds
	if maxDur <= 0 {
		maxDur = defaultVideoMaxSeconds
	}
	if sub.VideoDurationSeconds >= minDur && sub.VideoDurationSeconds <= maxDur {
		score += videoDurationPoints
	}

	return score
}

func scoreLocation(sub *models.TaskCompletionSubmission, req *models.VerificationRequirements) int {
	if len(sub.GPSCoordinates) == 0 && len(sub.LocationHistory) == 0 {
		return 0
	}

	score := locationBasePoints

	if len(sub.GPSCoordinates) > 0 && req.GPSRadiusMeters > 0 {
		score += locationRadiusPoints
	}
	if len(sub.LocationHistory) > minLocationHistoryPoints {
		score += locationHistoryPoints
	}

	return score
}

func scoreTime(sub *models.TaskCompletionSubmission, req *models.VerificationRequirements) int {
	duration := totalDurationSeconds(sub)
	score := 0

	if req.MinDurationSeconds > 0 && duration >= int64(req.MinDurationSeconds) {
		score += timeRequiredPoints
	}
	if duration >= plausibleMinSeconds && duration <= plausibleMaxSeconds {
		score += timePlausiblePoints
	}
	if len(sub.TimeIntervals) > 0 {
		score += timeIntervalPoints
	}

	return score
}

// CombineScores folds modality scores into the composite auto-verification
// score: each modality in the task's required set is clamped to [0,100] and
// the result is earned/possible x 100, rounded. Modalities the task does not
// require are ignored. The quality score currently equals the composite.
func CombineScores(scores ModalityScores, requiredMethods models.StringList) int {
	type entry struct {
		method string
		score  int
	}
	entries := []entry{
		{models.MethodPhoto, scores.Photo},
		{models.MethodVideo, scores.Video},
		{models.MethodGPSTracking, scores.Location},
		{models.MethodTimeTracking, scores.Time},
	}

	earned := 0
	possible := 0
	for _, e := range entries {
		if !requiredMethods.Contains(e.method) {
			continue
		}
		s := e.score
		if s < 0 {
			s = 0
		}
		if s > 100 {
			s = 100
		}
		earned += s
		possible += 100
	}

	if possible == 0 {
		return 0
	}
	return int(math.Round(float64(earned) / float64(possible) * 100))
}

func photosHaveGPS(photos models.PhotoList) bool {
	for _, p := range photos {
		if p.Latitude != nil && p.Longitude != nil {
			return true
		}
	}
	return false
}

func latestPhotoTimestamp(photos models.PhotoList) *time.Time {
	var latest *time.Time
	for i := range photos {
		t := photos[i].TakenAt
		if t == nil {
			continue
		}
		if latest == nil || t.After(*latest) {
			latest = t
		}
	}
	return latest
}

func totalDurationSeconds(sub *models.TaskCompletionSubmission) int64 {
	if sub.StartTime == nil || sub.EndTime == nil {
		return 0
	}
	d := sub.EndTime.Sub(*sub.StartTime)
	if d < 0 {
		return 0
	}
	return int64(d.Seconds())
}
