package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/taskhive/backend/internal/dto"
	"github.com/taskhive/backend/internal/middleware"
	"github.com/taskhive/backend/internal/services"
)

// ParticipantHandler serves the apply/review/complete lifecycle.
type ParticipantHandler struct {
	participants *services.ParticipantService
	logger       *logrus.Logger
}

// NewParticipantHandler creates a new ParticipantHandler instance
func NewParticipantHandler(participants *services.ParticipantService, logger *logrus.Logger) *ParticipantHandler {
	return &ParticipantHandler{participants: participants, logger: logger}
}

// Apply handles POST /api/v1/tasks/:id/apply
func (h *ParticipantHandler) Apply(c *gin.Context) {
	var req dto.ApplyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	participant, err := h.participants.Apply(c.Request.Context(), c.Param("id"), middleware.UserID(c), req.Message)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.NewParticipantResponse(participant))
}

// Review handles POST /api/v1/tasks/:id/participants/:pid/review
func (h *ParticipantHandler) Review(c *gin.Context) {
	var req dto.ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	participant, err := h.participants.Review(
		c.Request.Context(),
		c.Param("id"),
		c.Param("pid"),
		middleware.UserID(c),
		services.ReviewAction(req.Action),
		req.RejectionReason,
	)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewParticipantResponse(participant))
}

// Complete handles POST /api/v1/tasks/:id/participants/:pid/complete
func (h *ParticipantHandler) Complete(c *gin.Context) {
	var req dto.CompleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	participant, err := h.participants.Complete(c.Request.Context(), c.Param("id"), c.Param("pid"), middleware.UserID(c), req.Notes, req.PhotoURL)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewParticipantResponse(participant))
}
