package config

import (
	"fmt"
	"strconv"
	"strings"

	"productsim/embedding"
	"productsim/normalization/algorithms"
	"productsim/training"
)

// Validate проверяет корректность конфигурации. Все найденные проблемы
// возвращаются одной ошибкой CONFIGURATION.
func (c *Config) Validate() error {
	var errors []string

	// Валидация порта
	if c.Port == "" {
		errors = append(errors, "port is required")
	} else {
		port, err := strconv.Atoi(c.Port)
		if err != nil {
			errors = append(errors, fmt.Sprintf("invalid port: %s", c.Port))
		} else if port < 1 || port > 65535 {
			errors = append(errors, fmt.Sprintf("port must be between 1 and 65535, got %d", port))
		}
	}

	// Валидация уровня логирования
	validLogLevels := []string{"DEBUG", "INFO", "WARN", "ERROR"}
	if c.LogLevel != "" && !contains(validLogLevels, strings.ToUpper(c.LogLevel)) {
		errors = append(errors, fmt.Sprintf("invalid log level: %s (valid: %s)",
			c.LogLevel, strings.Join(validLogLevels, ", ")))
	}

	// Пороги
	if err := algorithms.ValidateTiers(c.DuplicateThreshold, c.SimilarThreshold); err != nil {
		errors = append(errors, err.Error())
	}
	if err := algorithms.ValidateThreshold("similarity_threshold", c.SimilarityThreshold); err != nil {
		errors = append(errors, err.Error())
	}

	if c.MinFrequency < 1 {
		errors = append(errors, fmt.Sprintf("min_frequency must be at least 1, got %d", c.MinFrequency))
	}
	if c.SampleSize < 0 {
		errors = append(errors, fmt.Sprintf("sample_size must not be negative, got %d", c.SampleSize))
	}
	if c.Workers < 1 {
		errors = append(errors, fmt.Sprintf("workers must be at least 1, got %d", c.Workers))
	}
	if c.MaxBucketSize < 2 {
		errors = append(errors, fmt.Sprintf("max_bucket_size must be at least 2, got %d", c.MaxBucketSize))
	}
	if c.NormalizerCacheSize < 1 {
		errors = append(errors, "normalizer cache size must be at least 1")
	}
	if c.Stemming && !contains(algorithms.StemmerLanguages(), strings.ToLower(c.StemmerLanguage)) {
		errors = append(errors, fmt.Sprintf("invalid stemmer language: %s (valid: %s)",
			c.StemmerLanguage, strings.Join(algorithms.StemmerLanguages(), ", ")))
	}

	// Обучение
	if _, err := training.ParseModelKind(c.ModelType); err != nil {
		errors = append(errors, err.Error())
	}
	if c.MinTrainingExamples < 2 {
		errors = append(errors, fmt.Sprintf("min_training_examples must be at least 2, got %d", c.MinTrainingExamples))
	}
	if c.ValidationFraction < 0 || c.ValidationFraction >= 1 {
		errors = append(errors, fmt.Sprintf("validation_fraction must be in [0, 1), got %.2f", c.ValidationFraction))
	}
	if c.ModelMode != ModelModeReplace && c.ModelMode != ModelModeBlend {
		errors = append(errors, fmt.Sprintf("invalid model mode: %s (valid: %s, %s)",
			c.ModelMode, ModelModeReplace, ModelModeBlend))
	}
	if c.ModelBlendAlpha < 0 || c.ModelBlendAlpha > 1 {
		errors = append(errors, fmt.Sprintf("model_blend_alpha must be in [0, 1], got %.2f", c.ModelBlendAlpha))
	}

	// Эмбеддинги
	if c.EmbeddingEnabled {
		errors = append(errors, validateEmbedding(&c.Embedding)...)
	}

	if len(errors) > 0 {
		return algorithms.NewSimilarityError(algorithms.ErrCodeConfiguration,
			fmt.Sprintf("validation errors: %s", strings.Join(errors, "; ")), nil).
			WithDetail("problems", errors)
	}
	return nil
}

func validateEmbedding(e *embedding.Config) []string {
	var errors []string
	validKinds := []string{string(embedding.KindHashing), string(embedding.KindOllama), string(embedding.KindHuggingFace)}

	check := func(name string, b *embedding.BackendConfig) {
		if !contains(validKinds, string(b.Kind)) {
			errors = append(errors, fmt.Sprintf("invalid %s embedding backend: %q (valid: %s)",
				name, b.Kind, strings.Join(validKinds, ", ")))
		}
		if b.Dimension < 0 {
			errors = append(errors, fmt.Sprintf("%s embedding dimension must not be negative", name))
		}
		if b.RateLimit < 0 {
			errors = append(errors, fmt.Sprintf("%s embedding rate limit must not be negative", name))
		}
	}
	check("primary", &e.Primary)

	sum := e.PrimaryWeight
	if e.PrimaryWeight < 0 {
		errors = append(errors, "embedding primary weight must not be negative")
	}
	if e.Secondary != nil {
		check("secondary", e.Secondary)
		if e.SecondaryWeight < 0 {
			errors = append(errors, "embedding secondary weight must not be negative")
		}
		sum += e.SecondaryWeight
		if sum <= 0 {
			errors = append(errors, "embedding ensemble weights must sum to a positive value")
		}
	}

	if e.CacheSize < 1 {
		errors = append(errors, "embedding cache size must be at least 1")
	}
	if e.Concurrency < 1 {
		errors = append(errors, "embedding concurrency must be at least 1")
	}
	return errors
}

func contains(values []string, v string) bool {
	for _, s := range values {
		if s == v {
			return true
		}
	}
	return false
}
