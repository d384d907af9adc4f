package psql

import (
	"context"
	"fmt"

	"dlh/dlh/config"
	"dlh/dlh/sources/psql/models"
	"dlh/dlh/utils/logging"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type Database struct {
	DB *gorm.DB
}

func NewDatabase(ctx context.Context, cfg config.Config) (*Database, error) {
	connStr := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.DBHost,
		cfg.DBPort,
		cfg.DBUser,
		cfg.DBPassword,
		cfg.DBName,
		cfg.DBSSLMode,
	)

	logging.AppLogger.Info("connecting to database",
		zap.String("host", cfg.DBHost), zap.String("db", cfg.DBName))

	return NewDatabaseWithDialector(ctx, postgres.Open(connStr))
}

// NewDatabaseWithDialector opens any gorm dialector and migrates the schema. Tests pass sqlite here.
func NewDatabaseWithDialector(ctx context.Context, dialector gorm.Dialector) (*Database, error) {
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	err = db.WithContext(ctx).
		AutoMigrate(
			&models.Profile{},
			&models.UserRole{},
			&models.Course{},
			&models.ChatSession{},
			&models.ChatMessage{},
			&models.GeneratedImage{},
			&models.AdminSetting{},
		)
	if err != nil {
		logging.ErrorLogger.Error("auto-migrate failed", zap.Error(err))
		return nil, fmt.Errorf("failed to auto-migrate: %w", err)
	}

	return &Database{DB: db}, nil
}

func (db *Database) Close() {
	sqlDB, err := db.DB.DB()
	if err != nil {
		return
	}
	sqlDB.Close()
}
