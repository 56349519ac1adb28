package database

import (
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/sousamj2/explicolivais/internal/config"
	"github.com/sousamj2/explicolivais/internal/domain/entity"
)

// Models lists every table owned by the application
func Models() []interface{} {
	return []interface{}{
		&entity.User{},
		&entity.PersonalData{},
		&entity.Question{},
		&entity.QuizHistory{},
		&entity.BlacklistedEmail{},
		&entity.BlacklistedIP{},
	}
}

// Open connects to the configured database and sets up the connection pool
func Open(cfg config.DatabaseConfig, logger *zap.Logger) (*gorm.DB, error) {
	dsn, err := cfg.DSN()
	if err != nil {
		return nil, err
	}

	var dialector gorm.Dialector
	switch cfg.Driver {
	case "mysql":
		dialector = mysql.Open(dsn)
	case "postgres":
		dialector = postgres.Open(dsn)
	case "sqlite":
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver: %q", cfg.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Warn),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s database: %w", cfg.Driver, err)
	}

	sqlDB, err := GetSQLDB(db)
	if err != nil {
		return nil, err
	}
	if cfg.Driver == "sqlite" {
		// sqlite allows a single writer
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxOpenConns(25)
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetConnMaxLifetime(time.Hour)
	}

	if logger != nil {
		logger.Info("Database connected", zap.String("driver", cfg.Driver))
	}
	return db, nil
}

// AutoMigrate creates or updates the schema from the entity definitions.
// Used for sqlite, where no SQL migrations are shipped.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("auto migration failed: %w", err)
	}
	return nil
}

// GetSQLDB returns the underlying *sql.DB of a *gorm.DB
func GetSQLDB(gormDB *gorm.DB) (*sql.DB, error) {
	sqlDB, err := gormDB.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}
	return sqlDB, nil
}
