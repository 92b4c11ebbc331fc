package db

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/taskhive/backend/internal/models"
)

// InitDB opens the Postgres connection and migrates the schema.
// TranslateError is required: duplicate-key detection in the repositories
// relies on gorm.ErrDuplicatedKey.
func InitDB(dsn string, logger *logrus.Logger) (*gorm.DB, error) {
	database, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := database.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to access underlying connection pool: %w", err)
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	if err := database.AutoMigrate(
		&models.Task{},
		&models.TaskParticipant{},
		&models.VerificationRequirements{},
		&models.TaskCompletionSubmission{},
		&models.Transaction{},
		&models.UserVerificationHistory{},
	); err != nil {
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}

	logger.Info("database connected and schema migrated")
	return database, nil
}
