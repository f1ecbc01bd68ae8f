package store

import (
	"fmt"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"github.com/KonSprin/ztbd/internal/config"
	"github.com/KonSprin/ztbd/internal/platform/logger"
)

// NewMySQL connects to MySQL via gorm. The DSN must carry parseTime=true so
// TIMESTAMP columns scan back into time.Time.
func NewMySQL(dsn string, logg *logger.Logger) (*SQLStore, error) {
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
		Logger: newGormLogger(),
	})
	if err != nil {
		return nil, fmt.Errorf("store: mysql: connect: %w", err)
	}
	return &SQLStore{
		name: config.BackendMySQL,
		db:   db,
		dial: sqlDialect{
			quote:     func(s string) string { return "`" + s + "`" },
			jsonType:  "JSON",
			floatType: "DOUBLE",
			timeType:  "DATETIME",
			jsonParam: "?",
		},
		log: logg.With("service", "MySQLStore"),
	}, nil
}
