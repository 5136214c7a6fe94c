package services

import (
	"errors"
	"fmt"

	"github.com/fsdevblog/shortkit/internal/db"
	"github.com/fsdevblog/shortkit/internal/repositories/memstore"
	"github.com/fsdevblog/shortkit/internal/repositories/sql"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type ServiceType string

const (
	ServiceTypeSQLite   ServiceType = "sqlite"
	ServiceTypePostgres ServiceType = "postgres"
	ServiceTypeInMemory ServiceType = "inMemory"
)

// Services сервисный слой приложения целиком.
type Services struct {
	LinkService *LinkService
	Resolver    *Resolver
	Pipeline    *VisitPipeline
	Stats       *StatsService
}

// Close гасит фоновые части. Сейчас это только конвейер событий.
func (s *Services) Close() {
	s.Pipeline.Close()
}

// Factory собирает сервисный слой под выбранный бекенд хранилища.
func Factory(conn any, sType ServiceType, pipeCfg VisitPipelineConfig, logger *logrus.Logger) (*Services, error) {
	var linkRepo LinkRepository
	var visitRepo VisitRepository

	switch sType {
	case ServiceTypeSQLite, ServiceTypePostgres:
		gormDB, ok := conn.(*gorm.DB)
		if !ok {
			return nil, errors.New("invalid connection type. expected *gorm.DB")
		}
		linkRepo = sql.NewLinkRepo(gormDB, logger)
		visitRepo = sql.NewVisitRepo(gormDB, logger)
	case ServiceTypeInMemory:
		store, ok := conn.(*db.MemoryStorage)
		if !ok {
			return nil, errors.New("invalid connection type. expected *db.MemoryStorage")
		}
		linkRepo = memstore.NewLinkRepo(store)
		visitRepo = memstore.NewVisitRepo(store)
	default:
		return nil, fmt.Errorf("unknown service type: %s", sType)
	}

	pipeline := NewVisitPipeline(pipeCfg, visitRepo, logger)

	return &Services{
		LinkService: NewLinkService(linkRepo, visitRepo, logger),
		Resolver:    NewResolver(linkRepo, pipeline, logger),
		Pipeline:    pipeline,
		Stats:       NewStatsService(linkRepo, visitRepo, logger),
	}, nil
}
