package database

import (
	"fmt"
	"time"

	"github.com/vladimiradmaev/health-tracker/internal/config"
	"github.com/vladimiradmaev/health-tracker/internal/database/migrations"
	"github.com/vladimiradmaev/health-tracker/internal/domain"
	"github.com/vladimiradmaev/health-tracker/internal/logger"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// HealthLog is the table row behind domain.HealthLog. Rows are hard-deleted.
type HealthLog struct {
	ID           uint      `gorm:"primaryKey"`
	ActivityType string    `gorm:"size:32;not null;index"`
	Value        float64   `gorm:"not null"`
	Unit         string    `gorm:"size:32"`
	Note         string    `gorm:"type:text"`
	OccurredAt   time.Time `gorm:"not null;index"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ToDomain converts the row into the domain entity
func (h HealthLog) ToDomain() domain.HealthLog {
	return domain.HealthLog{
		ID:           h.ID,
		ActivityType: domain.ActivityType(h.ActivityType),
		Value:        h.Value,
		Unit:         h.Unit,
		Note:         h.Note,
		OccurredAt:   h.OccurredAt,
		CreatedAt:    h.CreatedAt,
		UpdatedAt:    h.UpdatedAt,
	}
}

// FromDomain builds a row from the domain entity
func FromDomain(log domain.HealthLog) HealthLog {
	return HealthLog{
		ID:           log.ID,
		ActivityType: string(log.ActivityType),
		Value:        log.Value,
		Unit:         log.Unit,
		Note:         log.Note,
		OccurredAt:   log.OccurredAt,
		CreatedAt:    log.CreatedAt,
		UpdatedAt:    log.UpdatedAt,
	}
}

func NewPostgresDB(cfg config.DBConfig) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}

	logger.Info("Database connection established and migrations completed",
		"host", cfg.Host, "database", cfg.DBName)
	return db, nil
}

// Migrate creates the schema and then applies the embedded SQL migrations,
// which rely on the tables AutoMigrate creates.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&HealthLog{}); err != nil {
		return fmt.Errorf("failed to auto-migrate database: %w", err)
	}

	registry, err := migrations.Embedded()
	if err != nil {
		return fmt.Errorf("failed to load migrations: %w", err)
	}
	if err := registry.Run(db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}
