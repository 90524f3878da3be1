package db

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"parkkean-backend/config"
	"parkkean-backend/internal/model"
)

// sqlitePrefix selects the embedded SQLite driver, e.g. "sqlite:./data/parkkean.db".
const sqlitePrefix = "sqlite:"

// Init initializes the database connection and runs migrations.
func Init(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	dialector, err := dialectorFor(cfg.DSN)
	if err != nil {
		return nil, err
	}

	level := logger.Warn
	if cfg.LogSQL {
		level = logger.Info
	}
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(level),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetimeMinutes) * time.Minute)

	if err := Migrate(db); err != nil {
		return nil, err
	}

	log.Println("Database initialization complete.")
	return db, nil
}

// Migrate creates or updates the schema.
func Migrate(db *gorm.DB) error {
	log.Println("Running database migrations...")
	if err := db.AutoMigrate(
		&model.Lot{},
		&model.User{},
		&model.Report{},
		&model.PushSubscription{},
	); err != nil {
		return fmt.Errorf("automigrate failed: %w", err)
	}

	if err := applyIndexDDL(db); err != nil {
		log.Printf("Warning: failed to apply some index DDL: %v. Continuing without them.", err)
	}
	return nil
}

func dialectorFor(dsn string) (gorm.Dialector, error) {
	if !strings.HasPrefix(dsn, sqlitePrefix) {
		return postgres.Open(dsn), nil
	}

	path := strings.TrimPrefix(dsn, sqlitePrefix)
	if path == "" {
		return nil, fmt.Errorf("sqlite DSN %q has no path", dsn)
	}
	if !strings.Contains(path, ":memory:") && !strings.Contains(path, "mode=memory") {
		file := strings.TrimPrefix(strings.SplitN(path, "?", 2)[0], "file:")
		if dir := filepath.Dir(file); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("failed to create database directory %s: %w", dir, err)
			}
		}
	}
	return sqlite.Open(path), nil
}

// applyIndexDDL adds the composite index behind "latest report per lot".
// The statement is valid on both SQLite and PostgreSQL.
func applyIndexDDL(db *gorm.DB) error {
	ddls := []string{
		"CREATE INDEX IF NOT EXISTS idx_reports_lot_id_created_at ON reports (lot_id, created_at DESC);",
	}

	for _, ddl := range ddls {
		if err := db.Exec(ddl).Error; err != nil {
			return fmt.Errorf("DDL failed on %q: %w", ddl, err)
		}
	}
	return nil
}
