package services

import (
	"context"

	"productsim/embedding"
)

// EmbeddingStatus состояние движка эмбеддингов
type EmbeddingStatus struct {
	Enabled bool             `json:"enabled"`
	Stats   *embedding.Stats `json:"stats,omitempty"`
}

// EmbeddingService сервис состояния семантических эмбеддингов
type EmbeddingService struct {
	engine *embedding.Engine
}

// NewEmbeddingService создает сервис. engine равен nil, если эмбеддинги отключены.
func NewEmbeddingService(engine *embedding.Engine) *EmbeddingService {
	return &EmbeddingService{engine: engine}
}

// Status возвращает статистику движка; загрузка бэкендов выполняется один раз
func (s *EmbeddingService) Status(ctx context.Context) *EmbeddingStatus {
	if s.engine == nil {
		return &EmbeddingStatus{Enabled: false}
	}
	s.engine.Load(ctx)
	stats := s.engine.Stats()
	return &EmbeddingStatus{Enabled: true, Stats: &stats}
}
