package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/taskhive/backend/internal/dto"
	"github.com/taskhive/backend/internal/middleware"
	"github.com/taskhive/backend/internal/services"
)

// VerificationHandler serves evidence submission and submission lookups.
type VerificationHandler struct {
	verification *services.VerificationService
	logger       *logrus.Logger
}

// NewVerificationHandler creates a new VerificationHandler instance
func NewVerificationHandler(verification *services.VerificationService, logger *logrus.Logger) *VerificationHandler {
	return &VerificationHandler{verification: verification, logger: logger}
}

// Submit handles POST /api/v1/verification/submit
func (h *VerificationHandler) Submit(c *gin.Context) {
	var req dto.SubmitVerificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	result, err := h.verification.Submit(c.Request.Context(), services.SubmissionInput{
		TaskID:               req.TaskID,
		ParticipantID:        req.ParticipantID,
		UserID:               middleware.UserID(c),
		VerificationMethods:  req.VerificationMethods,
		Photos:               req.ModelPhotos(),
		VideoURLs:            req.VideoURLs,
		VideoDurationSeconds: req.VideoDurationSeconds,
		ReceiptURLs:          req.ReceiptURLs,
		SocialProofURLs:      req.SocialProofURLs,
		GPSCoordinates:       dto.ModelGPSPoints(req.GPSCoordinates),
		LocationHistory:      dto.ModelGPSPoints(req.LocationHistory),
		StartTime:            req.StartTime,
		EndTime:              req.EndTime,
		TimeIntervals:        dto.ModelIntervals(req.TimeIntervals),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// GetSubmission handles GET /api/v1/verification/submissions/:id
func (h *VerificationHandler) GetSubmission(c *gin.Context) {
	sub, err := h.verification.GetSubmission(c.Request.Context(), c.Param("id"), middleware.UserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewSubmissionDetailResponse(sub))
}

// ListTaskSubmissions handles GET /api/v1/tasks/:id/submissions
func (h *VerificationHandler) ListTaskSubmissions(c *gin.Context) {
	subs, err := h.verification.ListTaskSubmissions(c.Request.Context(), c.Param("id"), middleware.UserID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	out := make([]dto.SubmissionDetailResponse, 0, len(subs))
	for _, s := range subs {
		out = append(out, dto.NewSubmissionDetailResponse(s))
	}
	c.JSON(http.StatusOK, gin.H{"submissions": out, "count": len(out)})
}
