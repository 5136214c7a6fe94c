package repositories

// BatchResult результат одной операции в пакете.
type BatchResult[T any] struct {
	Value T
	Err   error
}
