package db

import (
	"database/sql"
	"fmt"
	"log"

	"talent_flow_app_go/config"

	_ "github.com/tursodatabase/libsql-client-go/libsql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

// Initialize sets up the database connection. When TURSO_DATABASE_URL is set
// the connection goes to a remote libsql database; otherwise a local sqlite
// file with WAL mode is used.
func Initialize(cfg *config.Config) error {
	var err error

	// Determine log level based on environment
	logLevel := logger.Info
	if cfg.Environment == "production" {
		logLevel = logger.Warn
	}

	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	}

	if cfg.TursoDatabaseURL != "" {
		url := cfg.TursoDatabaseURL
		if cfg.TursoAuthToken != "" {
			url += "?authToken=" + cfg.TursoAuthToken
		}

		sqlDB, openErr := sql.Open("libsql", url)
		if openErr != nil {
			return fmt.Errorf("failed to open libsql connection: %w", openErr)
		}

		DB, err = gorm.Open(sqlite.Dialector{Conn: sqlDB}, gormConfig)
		if err != nil {
			return fmt.Errorf("failed to connect to libsql database: %w", err)
		}

		log.Println("Database connection established (libsql/Turso)")
		return nil
	}

	// Enable WAL mode for better concurrency support
	dsn := cfg.DBPath + "?_journal_mode=WAL"

	DB, err = gorm.Open(sqlite.Open(dsn), gormConfig)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	log.Println("Database connection established (WAL mode enabled)")
	return nil
}

// AutoMigrate runs database migrations for the provided models
func AutoMigrate(models ...interface{}) error {
	if DB == nil {
		return fmt.Errorf("database not initialized")
	}

	err := DB.AutoMigrate(models...)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	log.Println("Database migrations completed")
	return nil
}

// Close closes the database connection
func Close() error {
	if DB == nil {
		return nil
	}

	sqlDB, err := DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}

	return sqlDB.Close()
}
