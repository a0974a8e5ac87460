package container

import (
	"productsim/internal/config"
	"productsim/matching"
	"productsim/server/services"
	"productsim/similarity"
)

// initServices создает сервисы поверх компонентов движка
func (c *Container) initServices() error {
	cfg := c.Config

	kind, err := cfg.ModelKind()
	if err != nil {
		return err
	}

	// Интерфейс Warmer задается только при включенных эмбеддингах,
	// иначе в него попал бы типизированный nil
	var warmer matching.Warmer
	if c.Embedding != nil {
		warmer = c.Embedding
	}

	c.MatchingService = services.NewMatchingService(cfg.MatcherConfig(), cfg.MinFrequency, cfg.SampleSize,
		c.Calculator, warmer, c.Logger)
	c.SimilarityService = services.NewSimilarityService(c.Calculator)
	c.NormalizationService = services.NewNormalizationService(c.Normalizer)
	c.TrainingService = services.NewTrainingService(c.Trainer, c.Calculator, c.MatchingService,
		kind, modelMode(cfg.ModelMode), cfg.ModelBlendAlpha, c.Logger)
	c.EmbeddingService = services.NewEmbeddingService(c.Embedding)
	return nil
}

func modelMode(mode string) similarity.ModelMode {
	if mode == config.ModelModeBlend {
		return similarity.ModelBlend
	}
	return similarity.ModelReplace
}
