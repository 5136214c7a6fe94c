// Package memstore реализация репозиториев поверх хранилища в памяти.
// Используется как тестовый/dev бекенд и как fake в юнит-тестах сервисного слоя;
// контракт ошибок тот же, что у sql бекенда.
package memstore
