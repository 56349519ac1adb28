package database

import (
	"errors"
	"fmt"

	migrateV4 "github.com/golang-migrate/migrate/v4"
	migrateDB "github.com/golang-migrate/migrate/v4/database"
	migrateMySQL "github.com/golang-migrate/migrate/v4/database/mysql"
	migratePostgres "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/sousamj2/explicolivais/migrations"
)

// Migrate brings the schema up to date. MySQL and Postgres run the embedded
// SQL migrations; sqlite falls back to AutoMigrate.
func Migrate(db *gorm.DB, driverName string, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	if driverName == "sqlite" {
		logger.Info("Running gorm auto migration")
		return AutoMigrate(db)
	}

	sqlDB, err := GetSQLDB(db)
	if err != nil {
		return err
	}
	if err := sqlDB.Ping(); err != nil {
		return fmt.Errorf("database ping before migration failed: %w", err)
	}

	var driver migrateDB.Driver
	switch driverName {
	case "mysql":
		driver, err = migrateMySQL.WithInstance(sqlDB, &migrateMySQL.Config{})
	case "postgres":
		driver, err = migratePostgres.WithInstance(sqlDB, &migratePostgres.Config{})
	default:
		return fmt.Errorf("no migrations for driver %q", driverName)
	}
	if err != nil {
		return fmt.Errorf("could not create %s migrate driver: %w", driverName, err)
	}

	source, err := iofs.New(migrations.FS, driverName)
	if err != nil {
		return fmt.Errorf("could not open embedded migrations: %w", err)
	}

	m, err := migrateV4.NewWithInstance("iofs", source, driverName, driver)
	if err != nil {
		return fmt.Errorf("could not create migrate instance: %w", err)
	}

	logger.Info("Applying database migrations", zap.String("driver", driverName))
	err = m.Up()
	switch {
	case errors.Is(err, migrateV4.ErrNoChange):
		logger.Info("No new migrations, schema is up to date")
	case err != nil:
		return fmt.Errorf("applying migrations failed: %w", err)
	default:
		logger.Info("Migrations applied")
	}
	return nil
}
