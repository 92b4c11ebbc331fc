package app

import (
	"sync"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/taskhive/backend/internal/clients"
	"github.com/taskhive/backend/internal/config"
	"github.com/taskhive/backend/internal/events"
	"github.com/taskhive/backend/internal/handlers"
	"github.com/taskhive/backend/internal/payments"
	"github.com/taskhive/backend/internal/repository"
	"github.com/taskhive/backend/internal/services"
	"github.com/taskhive/backend/internal/verification"
)

// ServiceContainer holds all wired repositories, services and handlers.
// Built once at startup; safe for concurrent use afterwards.
type ServiceContainer struct {
	TaskRepo        repository.TaskRepository
	ParticipantRepo repository.ParticipantRepository
	SubmissionRepo  repository.SubmissionRepository
	TransactionRepo repository.TransactionRepository
	HistoryRepo     repository.HistoryRepository

	ParticipantService  *services.ParticipantService
	VerificationService *services.VerificationService

	TaskHandler         *handlers.TaskHandler
	ParticipantHandler  *handlers.ParticipantHandler
	VerificationHandler *handlers.VerificationHandler

	NATS *clients.NATSClient
}

var (
	container     *ServiceContainer
	containerOnce sync.Once
)

// NewServiceContainer wires the full dependency graph. NATS is optional:
// with no URL configured, events are dropped and everything else works.
func NewServiceContainer(database *gorm.DB, cfg *config.Config, logger *logrus.Logger) *ServiceContainer {
	containerOnce.Do(func() {
		taskRepo := repository.NewTaskRepository(database)
		participantRepo := repository.NewParticipantRepository(database)
		submissionRepo := repository.NewSubmissionRepository(database)
		transactionRepo := repository.NewTransactionRepository(database)
		historyRepo := repository.NewHistoryRepository(database)

		var natsClient *clients.NATSClient
		if cfg.NATS.URL != "" {
			nc, err := clients.NewNATSClient(cfg.NATS, logger)
			if err != nil {
				logger.WithError(err).Warn("NATS unavailable, events disabled")
			} else {
				natsClient = nc
			}
		}
		publisher := events.NewPublisher(natsClient, logger)

		participantService := services.NewParticipantService(taskRepo, participantRepo, logger)
		verificationService := services.NewVerificationService(
			taskRepo,
			participantRepo,
			submissionRepo,
			transactionRepo,
			historyRepo,
			participantService,
			payments.NewCalculator(cfg.Payments),
			clients.NewPaymentProcessorClient(cfg.Payments),
			verification.PolicyFromConfig(cfg.Verification),
			publisher,
			logger,
		)

		container = &ServiceContainer{
			TaskRepo:        taskRepo,
			ParticipantRepo: participantRepo,
			SubmissionRepo:  submissionRepo,
			TransactionRepo: transactionRepo,
			HistoryRepo:     historyRepo,

			ParticipantService:  participantService,
			VerificationService: verificationService,

			TaskHandler:         handlers.NewTaskHandler(taskRepo, logger),
			ParticipantHandler:  handlers.NewParticipantHandler(participantService, logger),
			VerificationHandler: handlers.NewVerificationHandler(verificationService, logger),

			NATS: natsClient,
		}
	})
	return container
}

// Close releases external connections held by the container.
func (c *ServiceContainer) Close() {
	if c.NATS != nil {
		c.NATS.Close()
	}
}
