// Package sql предоставляет реализацию репозиториев ссылок и событий поверх gorm
// (sqlite или postgres — подключение выбирает фабрика).
//
// Все методы преобразуют ошибки драйвера в общие ошибки уровня репозитория
// с помощью convertErrorType:
//   - gorm.ErrDuplicatedKey -> repositories.ErrDuplicateKey
//   - gorm.ErrRecordNotFound -> repositories.ErrNotFound
//   - ошибки контекста -> repositories.ErrTimeout
//   - другие ошибки -> repositories.ErrUnknown
package sql
