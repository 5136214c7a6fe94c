package db

import (
	"github.com/fsdevblog/shortkit/internal/db/memory"
)

// MemoryStorage обертка над generic хранилищем. Ссылки и события живут в
// отдельных инстансах, чтобы не пересекались пространства ключей.
type MemoryStorage struct {
	Links  *memory.MStorage
	Visits *memory.MStorage
}

func NewMemStorage() *MemoryStorage {
	return &MemoryStorage{
		Links:  memory.NewMemStorage(),
		Visits: memory.NewMemStorage(),
	}
}
