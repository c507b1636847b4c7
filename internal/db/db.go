package db

import (
	"fmt"
	"strings"

	"github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	applog "github.com/sujalbistaa/suara/internal/logger"
	"github.com/sujalbistaa/suara/internal/models"
)

// Init opens a GORM connection for databaseURL, which must start with
// postgres:// (or postgresql://) or sqlite://.
func Init(databaseURL string) (*gorm.DB, error) {
	var (
		dialector gorm.Dialector
		isSQLite  bool
	)

	switch {
	case strings.HasPrefix(databaseURL, "postgres://"), strings.HasPrefix(databaseURL, "postgresql://"):
		// pgx understands the URL form directly.
		dialector = postgres.Open(databaseURL)
		applog.Log.Info("Connecting to PostgreSQL database")
	case strings.HasPrefix(databaseURL, "sqlite://"):
		dsn := strings.TrimPrefix(databaseURL, "sqlite://")
		dialector = sqlite.Open(dsn)
		isSQLite = true
		applog.Log.Info("Connecting to SQLite database", zap.String("dsn", dsn))
	default:
		return nil, fmt.Errorf("invalid DATABASE_URL prefix: must start with postgres:// or sqlite://")
	}

	database, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
		// Unique violations surface as gorm.ErrDuplicatedKey on both dialects.
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	sqlDB, err := database.DB()
	if err != nil {
		return nil, err
	}
	if isSQLite {
		// SQLite allows a single writer; one connection also keeps
		// in-memory databases alive for the lifetime of the pool.
		sqlDB.SetMaxOpenConns(1)
		sqlDB.SetMaxIdleConns(1)
	} else {
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetMaxOpenConns(100)
	}

	applog.Log.Info("Database connection established")
	return database, nil
}

// Migrate creates or updates every table.
func Migrate(database *gorm.DB) error {
	if err := database.AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}
	return nil
}

// Close releases the underlying pool.
func Close(database *gorm.DB) error {
	sqlDB, err := database.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
