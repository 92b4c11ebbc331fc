package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/taskhive/backend/internal/dto"
	"github.com/taskhive/backend/internal/middleware"
	"github.com/taskhive/backend/internal/models"
	"github.com/taskhive/backend/internal/repository"
)

// TaskHandler serves task creation and lookup. It is deliberately thin;
// the interesting behavior lives in the participant and verification
// pipelines.
type TaskHandler struct {
	taskRepo repository.TaskRepository
	logger   *logrus.Logger
}

// NewTaskHandler creates a new TaskHandler instance
func NewTaskHandler(taskRepo repository.TaskRepository, logger *logrus.Logger) *TaskHandler {
	return &TaskHandler{taskRepo: taskRepo, logger: logger}
}

// Create handles POST /api/v1/tasks
func (h *TaskHandler) Create(c *gin.Context) {
	var req dto.CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	task := &models.Task{
		ID:               uuid.NewString(),
		Title:            req.Title,
		Description:      req.Description,
		Type:             models.TaskType(req.Type),
		EarningPotential: decimal.NewFromFloat(req.EarningPotential).Round(2),
		MaxParticipants:  req.MaxParticipants,
		CreatorID:        middleware.UserID(c),
		Status:           models.TaskStatusOpen,
	}
	if err := h.taskRepo.Create(c.Request.Context(), task); err != nil {
		h.logger.WithError(err).Error("failed to create task")
		respondError(c, err)
		return
	}

	if req.Requirements != nil {
		vr := &models.VerificationRequirements{
			ID:                      uuid.NewString(),
			TaskID:                  task.ID,
			RequiredMethods:         models.StringList(req.Requirements.RequiredMethods),
			PhotoCount:              req.Requirements.PhotoCount,
			PhotoRequiresGPS:        req.Requirements.PhotoRequiresGPS,
			PhotoRequiresTimestamp:  req.Requirements.PhotoRequiresTimestamp,
			TimestampFreshnessHours: req.Requirements.TimestampFreshnessHours,
			VideoMinDurationSeconds: req.Requirements.VideoMinDurationSeconds,
			VideoMaxDurationSeconds: req.Requirements.VideoMaxDurationSeconds,
			GPSRadiusMeters:         req.Requirements.GPSRadiusMeters,
			MinDurationSeconds:      req.Requirements.MinDurationSeconds,
			AutoApproval: models.AutoApprovalCriteria{
				GPSAccuracyMin:    req.Requirements.GPSAccuracyMin,
				PhotoQualityMin:   req.Requirements.PhotoQualityMin,
				TimeComplianceMin: req.Requirements.TimeComplianceMin,
				FraudScoreMax:     req.Requirements.FraudScoreMax,
			},
		}
		if err := h.taskRepo.CreateRequirements(c.Request.Context(), vr); err != nil {
			h.logger.WithError(err).WithField("task_id", task.ID).Error("failed to create verification requirements")
			respondError(c, err)
			return
		}
	}

	c.JSON(http.StatusCreated, dto.NewTaskResponse(task))
}

// Get handles GET /api/v1/tasks/:id
func (h *TaskHandler) Get(c *gin.Context) {
	task, err := h.taskRepo.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewTaskResponse(task))
}
