package repositories

import "errors"

var (
	ErrNotFound     = errors.New("[repository]: record not found")
	ErrDuplicateKey = errors.New("[repository]: duplicate key")
	ErrTimeout      = errors.New("[repository]: operation timed out")
	ErrUnknown      = errors.New("[repository]: unknown error")
)
