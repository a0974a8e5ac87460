package container

import (
	"fmt"
	"log/slog"

	"productsim/database"
	"productsim/embedding"
	"productsim/features"
	"productsim/internal/config"
	"productsim/normalization"
	"productsim/server/services"
	"productsim/similarity"
	"productsim/training"
)

// Container контейнер зависимостей движка
// Управляет жизненным циклом всех компонентов приложения
type Container struct {
	// Конфигурация
	Config *config.Config
	Logger *slog.Logger

	// Хранилище обучающего корпуса (nil, если путь не задан)
	TrainingDB *database.TrainingDB

	// Компоненты движка
	Normalizer *normalization.ProductNormalizer
	Extractor  *features.Extractor
	Embedding  *embedding.Engine
	Calculator *similarity.Calculator
	Trainer    *training.Trainer

	// Сервисы (бизнес-логика)
	MatchingService      *services.MatchingService
	SimilarityService    *services.SimilarityService
	NormalizationService *services.NormalizationService
	TrainingService      *services.TrainingService
	EmbeddingService     *services.EmbeddingService
}

// NewContainer создает контейнер и инициализирует все компоненты.
// При ошибке уже открытые ресурсы закрываются.
func NewContainer(cfg *config.Config, logger *slog.Logger) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	c := &Container{
		Config: cfg,
		Logger: logger,
	}

	steps := []struct {
		name string
		init func() error
	}{
		{"training database", c.initTrainingDB},
		{"similarity engine", c.initEngine},
		{"trainer", c.initTrainer},
		{"services", c.initServices},
	}
	for _, step := range steps {
		if err := step.init(); err != nil {
			c.Close()
			return nil, fmt.Errorf("failed to initialize %s: %w", step.name, err)
		}
	}

	logger.Info("container initialized",
		"embeddings_enabled", c.Embedding != nil,
		"training_store", cfg.TrainingDatabasePath,
		"training_examples", c.Trainer.ExampleCount())
	return c, nil
}

// Close освобождает ресурсы контейнера
func (c *Container) Close() error {
	if c.TrainingDB != nil {
		if err := c.TrainingDB.Close(); err != nil {
			return fmt.Errorf("failed to close training database: %w", err)
		}
		c.TrainingDB = nil
	}
	return nil
}
