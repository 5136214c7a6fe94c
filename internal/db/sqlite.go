package db

import (
	"fmt"

	"github.com/fsdevblog/shortkit/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func NewSQLite(dbPath string) (*gorm.DB, error) {
	conn, connErr := connectSQLite(dbPath)
	if connErr != nil {
		return nil, fmt.Errorf("init database error: %w", connErr)
	}
	if migrateErr := migrateSchema(conn); migrateErr != nil {
		return nil, fmt.Errorf("migrate database error: %w", migrateErr)
	}
	return conn, nil
}

func connectSQLite(dbPath string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, fmt.Errorf("connect database with path %s error: %w", dbPath, err)
	}
	return db, nil
}

func migrateSchema(db *gorm.DB) error {
	// да да, знаю что нужно миграции прикрутить людские). Обязательно сделаю.
	if err := db.AutoMigrate(&models.Link{}, &models.Visit{}); err != nil {
		return fmt.Errorf("migrating sql: %w", err)
	}
	return nil
}
