// Package database opens the PostgreSQL/TimescaleDB handle used by the
// database-backed sample source.
package database

import (
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/chrissnell/oysterdash/internal/log"
	"go.uber.org/zap"
)

// CreateConnection opens a GORM handle with the standard logger configuration
func CreateConnection(connectionString string) (*gorm.DB, error) {
	if connectionString == "" {
		return nil, fmt.Errorf("no TimescaleDB connection string configured")
	}

	dbLogger := logger.New(
		zap.NewStdLog(log.GetZapLogger()),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	log.Info("connecting to TimescaleDB...")
	db, err := gorm.Open(postgres.Open(connectionString), &gorm.Config{Logger: dbLogger})
	if err != nil {
		log.Warn("warning: unable to create a TimescaleDB connection:", err)
		return nil, err
	}
	log.Info("TimescaleDB connection successful")

	return db, nil
}

// Close releases the connection pool behind a GORM handle
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
