package database

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/cardfolio/cardfolio/internal/models"
)

// Open connects to the sqlite database at path and migrates the schema.
// The connection pool is capped at one connection: sqlite has a single
// writer and a single pool connection also makes in-memory test databases
// behave like a file.
func Open(path string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("access connection pool: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.Exec("PRAGMA foreign_keys = ON").Error; err != nil {
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	if err := db.AutoMigrate(&models.Card{}, &models.Sale{}, &models.ValueSnapshot{}); err != nil {
		return nil, fmt.Errorf("migrate schema: %w", err)
	}

	slog.Info("database ready", slog.String("path", path))
	return db, nil
}

// Backup copies the live database file at srcPath to destPath byte for
// byte. The WAL is checkpointed first so the copy is self-contained.
func Backup(db *gorm.DB, srcPath, destPath string) error {
	if err := db.Exec("PRAGMA wal_checkpoint(TRUNCATE)").Error; err != nil {
		return fmt.Errorf("checkpoint database: %w", err)
	}

	src, err := os.Open(srcPath)
	if err != nil {
		return fmt.Errorf("open database file: %w", err)
	}
	defer src.Close()

	if dir := filepath.Dir(destPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create backup directory: %w", err)
		}
	}

	dest, err := os.Create(destPath)
	if err != nil {
		return fmt.Errorf("create backup file: %w", err)
	}
	defer dest.Close()

	if _, err := io.Copy(dest, src); err != nil {
		return fmt.Errorf("copy database file: %w", err)
	}
	if err := dest.Sync(); err != nil {
		return fmt.Errorf("sync backup file: %w", err)
	}

	slog.Info("database backed up", slog.String("dest", destPath))
	return nil
}
