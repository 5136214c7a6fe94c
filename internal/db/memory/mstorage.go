package memory

import (
	"context"
	"sync"

	"github.com/goccy/go-json"
	"github.com/pkg/errors"
)

// MStorage потокобезопасное key/value хранилище в памяти. Значения хранятся
// сериализованными, чтобы наружу не утекали ссылки на внутреннее состояние.
type MStorage struct {
	data map[string][]byte
	m    sync.RWMutex
}

func NewMemStorage() *MStorage {
	return &MStorage{
		data: make(map[string][]byte),
	}
}

type SetOptions struct {
	Overwrite bool
}

// WithOverwrite разрешает перезапись существующего ключа.
func WithOverwrite() func(*SetOptions) {
	return func(o *SetOptions) {
		o.Overwrite = true
	}
}

func (m *MStorage) Len() int {
	m.m.RLock()
	defer m.m.RUnlock()

	return len(m.data)
}

// Get возвращает значение по ключу или ErrNotFound.
func Get[T any](ctx context.Context, key string, m *MStorage) (*T, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(err, "context error")
	}
	m.m.RLock()
	defer m.m.RUnlock()

	val, ok := m.data[key]
	if !ok {
		return nil, ErrNotFound
	}
	var result T
	if err := json.Unmarshal(val, &result); err != nil {
		return nil, errors.Wrapf(err, "failed to unmarshal json by key `%s`", key)
	}
	return &result, nil
}

// Set сохраняет пару ключ/значение. Ключ обязан быть уникальным, иначе вернется
// ошибка ErrDuplicateKey (если не задана опция WithOverwrite). Проверка ключа и
// вставка выполняются под одной блокировкой — именно на этом держится
// констрейнт уникальности коротких кодов у memstore бекенда.
func Set[T any](ctx context.Context, key string, val *T, m *MStorage, opts ...func(*SetOptions)) error {
	if err := ctx.Err(); err != nil {
		return errors.Wrap(err, "context error")
	}
	var options SetOptions
	for _, opt := range opts {
		opt(&options)
	}

	m.m.Lock()
	defer m.m.Unlock()

	if _, ok := m.data[key]; ok && !options.Overwrite {
		return ErrDuplicateKey
	}

	bytes, err := json.Marshal(val)
	if err != nil {
		return errors.Wrapf(err, "failed to marshal json for object `%+v`", val)
	}
	m.data[key] = bytes
	return nil
}

// Delete удаляет ключ. Отсутствующий ключ — ErrNotFound.
func Delete(ctx context.Context, key string, m *MStorage) error {
	if err := ctx.Err(); err != nil {
		return errors.Wrap(err, "context error")
	}
	m.m.Lock()
	defer m.m.Unlock()

	if _, ok := m.data[key]; !ok {
		return ErrNotFound
	}
	delete(m.data, key)
	return nil
}

// FilterAll возвращает все значения, для которых fn вернула true.
func FilterAll[T any](ctx context.Context, m *MStorage, fn func(val T) bool) ([]T, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(err, "context error")
	}
	m.m.RLock()
	defer m.m.RUnlock()

	var result = make([]T, 0)

	for key, bytes := range m.data {
		var val T
		if err := json.Unmarshal(bytes, &val); err != nil {
			return nil, errors.Wrapf(err, "failed to unmarshal json by key `%s`", key)
		}
		if fn(val) {
			result = append(result, val)
		}
	}
	return result, nil
}
