package database

import (
	"fmt"
	"time"

	"github.com/justsurfingit/careerhub/internal/config"
	"github.com/justsurfingit/careerhub/internal/models"
	"github.com/justsurfingit/careerhub/internal/store"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Connect opens the Postgres database named by dsn.
func Connect(dsn string, log *zap.Logger) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Warn),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(20)
	sqlDB.SetConnMaxIdleTime(5 * time.Minute)

	log.Info("database connection established")
	return db, nil
}

// Migrate creates or updates the tables.
func Migrate(db *gorm.DB, log *zap.Logger) error {
	log.Info("running migrations")
	return db.AutoMigrate(
		&models.User{},
		&models.Session{},
		&models.Company{},
		&models.Job{},
		&models.JobEvent{},
		&models.CV{},
		&models.Onboarding{},
	)
}

// Open builds the Store selected by cfg. The Postgres store is migrated on open.
func Open(cfg *config.Config, log *zap.Logger) (store.Store, error) {
	switch cfg.Database.Driver {
	case config.DriverMemory:
		log.Warn("using in-memory store; data is lost on restart")
		return store.NewMemStore()
	case config.DriverPostgres:
		db, err := Connect(cfg.Database.DSN, log)
		if err != nil {
			return nil, err
		}
		if err := Migrate(db, log); err != nil {
			return nil, fmt.Errorf("migrating: %w", err)
		}
		return store.NewGormStore(db), nil
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Database.Driver)
	}
}
