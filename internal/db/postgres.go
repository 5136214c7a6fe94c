package db

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// NewPostgres создает подключение к PostgreSQL.
//
// Параметры:
//   - dsn: строка подключения к базе данных (Data Source Name)
//
// Возвращает:
//   - *gorm.DB: подключение к PostgreSQL
//   - error: ошибка создания подключения
func NewPostgres(dsn string) (*gorm.DB, error) {
	conn, connErr := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if connErr != nil {
		return nil, fmt.Errorf("connect database error: %w", connErr)
	}
	if migrateErr := migrateSchema(conn); migrateErr != nil {
		return nil, fmt.Errorf("migrate database error: %w", migrateErr)
	}
	return conn, nil
}
