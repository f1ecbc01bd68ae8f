package store

import (
	"fmt"
	"log"
	"os"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/KonSprin/ztbd/internal/config"
	"github.com/KonSprin/ztbd/internal/platform/logger"
)

// NewPostgres connects to PostgreSQL via gorm.
func NewPostgres(dsn string, logg *logger.Logger) (*SQLStore, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
		Logger: newGormLogger(),
	})
	if err != nil {
		return nil, fmt.Errorf("store: postgres: connect: %w", err)
	}
	return &SQLStore{
		name: config.BackendPostgres,
		db:   db,
		dial: sqlDialect{
			quote:     func(s string) string { return `"` + s + `"` },
			jsonType:  "JSONB",
			floatType: "DOUBLE PRECISION",
			timeType:  "TIMESTAMP",
			jsonParam: "?::jsonb",
		},
		log: logg.With("service", "PostgresStore"),
	}, nil
}

func newGormLogger() gormLogger.Interface {
	return gormLogger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		gormLogger.Config{
			SlowThreshold:             1 * time.Second,
			LogLevel:                  gormLogger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)
}
