package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"productsim/embedding"
	"productsim/matching"
	"productsim/normalization/algorithms"
	"productsim/training"
)

// Config конфигурация движка и сервера
type Config struct {
	// Сервер
	Port     string `json:"port" yaml:"port"`
	LogLevel string `json:"log_level" yaml:"log_level"`

	// Хранилище обучающего корпуса
	TrainingDatabasePath string `json:"training_database_path" yaml:"training_database_path"`

	// Сопоставление
	SimilarityThreshold float64 `json:"similarity_threshold" yaml:"similarity_threshold"`
	DuplicateThreshold  float64 `json:"duplicate_threshold" yaml:"duplicate_threshold"`
	SimilarThreshold    float64 `json:"similar_threshold" yaml:"similar_threshold"`
	MinFrequency        int     `json:"min_frequency" yaml:"min_frequency"`
	SampleSize          int     `json:"sample_size" yaml:"sample_size"`
	Workers             int     `json:"workers" yaml:"workers"`
	MaxBucketSize       int     `json:"max_bucket_size" yaml:"max_bucket_size"`

	// Нормализация
	NormalizerCacheSize int    `json:"normalizer_cache_size" yaml:"normalizer_cache_size"`
	Stemming            bool   `json:"stemming" yaml:"stemming"`
	StemmerLanguage     string `json:"stemmer_language" yaml:"stemmer_language"`

	// Обучение
	ModelType           string  `json:"model_type" yaml:"model_type"`
	MinTrainingExamples int     `json:"min_training_examples" yaml:"min_training_examples"`
	ValidationFraction  float64 `json:"validation_fraction" yaml:"validation_fraction"`
	ModelMode           string  `json:"model_mode" yaml:"model_mode"`
	ModelBlendAlpha     float64 `json:"model_blend_alpha" yaml:"model_blend_alpha"`

	// Эмбеддинги
	EmbeddingEnabled bool             `json:"embedding_enabled" yaml:"embedding_enabled"`
	Embedding        embedding.Config `json:"embedding" yaml:"embedding"`
}

// Режимы подключения обученной модели к калькулятору
const (
	ModelModeReplace = "replace"
	ModelModeBlend   = "blend"
)

// GetDefaults возвращает конфигурацию по умолчанию
func GetDefaults() *Config {
	m := matching.DefaultConfig()
	return &Config{
		Port:                 "9999",
		LogLevel:             "INFO",
		TrainingDatabasePath: "training.db",
		SimilarityThreshold:  m.SimilarityThreshold,
		DuplicateThreshold:   m.DuplicateThreshold,
		SimilarThreshold:     m.SimilarThreshold,
		MinFrequency:         1,
		SampleSize:           0,
		Workers:              m.Workers,
		MaxBucketSize:        m.MaxBucketSize,
		NormalizerCacheSize:  10000,
		StemmerLanguage:      algorithms.DefaultStemmerLanguage,
		ModelType:            string(training.KindRandomForest),
		MinTrainingExamples:  training.DefaultMinExamples,
		ValidationFraction:   training.DefaultValidationFraction,
		ModelMode:            ModelModeReplace,
		ModelBlendAlpha:      0.5,
		EmbeddingEnabled:     true,
		Embedding: embedding.Config{
			Primary:         embedding.BackendConfig{Kind: embedding.KindHashing, Dimension: 256},
			PrimaryWeight:   0.6,
			SecondaryWeight: 0.4,
			CacheSize:       embedding.DefaultCacheSize,
			Concurrency:     embedding.DefaultConcurrency,
		},
	}
}

// LoadConfig загружает конфигурацию: значения по умолчанию, затем YAML-файл
// (если path не пуст), затем переменные окружения. Результат валидируется.
func LoadConfig(path string) (*Config, error) {
	cfg := GetDefaults()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to decode config file: %w", err)
		}
		cfg.Embedding.Primary.APIKey = os.ExpandEnv(cfg.Embedding.Primary.APIKey)
		if cfg.Embedding.Secondary != nil {
			cfg.Embedding.Secondary.APIKey = os.ExpandEnv(cfg.Embedding.Secondary.APIKey)
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv переопределяет значения заданными переменными окружения
func (c *Config) applyEnv() {
	c.Port = getEnv("SERVER_PORT", c.Port)
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
	c.TrainingDatabasePath = getEnv("TRAINING_DATABASE_PATH", c.TrainingDatabasePath)

	c.SimilarityThreshold = getEnvFloat("SIMILARITY_THRESHOLD", c.SimilarityThreshold)
	c.DuplicateThreshold = getEnvFloat("DUPLICATE_THRESHOLD", c.DuplicateThreshold)
	c.SimilarThreshold = getEnvFloat("SIMILAR_THRESHOLD", c.SimilarThreshold)
	c.MinFrequency = getEnvInt("MIN_FREQUENCY", c.MinFrequency)
	c.SampleSize = getEnvInt("SAMPLE_SIZE", c.SampleSize)
	c.Workers = getEnvInt("MATCH_WORKERS", c.Workers)
	c.MaxBucketSize = getEnvInt("MATCH_MAX_BUCKET_SIZE", c.MaxBucketSize)

	c.NormalizerCacheSize = getEnvInt("NORMALIZER_CACHE_SIZE", c.NormalizerCacheSize)
	c.Stemming = getEnvBool("NORMALIZER_STEMMING", c.Stemming)
	c.StemmerLanguage = getEnv("NORMALIZER_STEMMER_LANGUAGE", c.StemmerLanguage)

	c.ModelType = getEnv("MODEL_TYPE", c.ModelType)
	c.MinTrainingExamples = getEnvInt("MIN_TRAINING_EXAMPLES", c.MinTrainingExamples)
	c.ValidationFraction = getEnvFloat("VALIDATION_FRACTION", c.ValidationFraction)
	c.ModelMode = getEnv("MODEL_MODE", c.ModelMode)
	c.ModelBlendAlpha = getEnvFloat("MODEL_BLEND_ALPHA", c.ModelBlendAlpha)

	c.EmbeddingEnabled = getEnvBool("EMBEDDING_ENABLED", c.EmbeddingEnabled)
	applyBackendEnv("EMBEDDING_PRIMARY", &c.Embedding.Primary)
	if kind := os.Getenv("EMBEDDING_SECONDARY_KIND"); kind != "" && c.Embedding.Secondary == nil {
		c.Embedding.Secondary = &embedding.BackendConfig{}
	}
	if c.Embedding.Secondary != nil {
		applyBackendEnv("EMBEDDING_SECONDARY", c.Embedding.Secondary)
	}
	c.Embedding.PrimaryWeight = getEnvFloat("EMBEDDING_PRIMARY_WEIGHT", c.Embedding.PrimaryWeight)
	c.Embedding.SecondaryWeight = getEnvFloat("EMBEDDING_SECONDARY_WEIGHT", c.Embedding.SecondaryWeight)
	c.Embedding.CacheSize = getEnvInt("EMBEDDING_CACHE_SIZE", c.Embedding.CacheSize)
	c.Embedding.Concurrency = getEnvInt("EMBEDDING_CONCURRENCY", c.Embedding.Concurrency)
}

func applyBackendEnv(prefix string, b *embedding.BackendConfig) {
	b.Kind = embedding.Kind(getEnv(prefix+"_KIND", string(b.Kind)))
	b.Model = getEnv(prefix+"_MODEL", b.Model)
	b.BaseURL = getEnv(prefix+"_BASE_URL", b.BaseURL)
	b.APIKey = getEnv(prefix+"_API_KEY", b.APIKey)
	b.Dimension = getEnvInt(prefix+"_DIMENSION", b.Dimension)
	b.RateLimit = getEnvFloat(prefix+"_RATE_LIMIT", b.RateLimit)
	b.Timeout = getEnvDuration(prefix+"_TIMEOUT", b.Timeout)
}

// MatcherConfig настройки сопоставителя
func (c *Config) MatcherConfig() matching.Config {
	return matching.Config{
		DuplicateThreshold:  c.DuplicateThreshold,
		SimilarThreshold:    c.SimilarThreshold,
		SimilarityThreshold: c.SimilarityThreshold,
		Workers:             c.Workers,
		MaxBucketSize:       c.MaxBucketSize,
	}
}

// ModelKind семейство классификатора из model_type
func (c *Config) ModelKind() (training.ModelKind, error) {
	return training.ParseModelKind(c.ModelType)
}

// SlogLevel уровень логирования
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToUpper(c.LogLevel) {
	case "DEBUG":
		return slog.LevelDebug
	case "WARN":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// getEnv получает переменную окружения или возвращает значение по умолчанию
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt получает переменную окружения как int или возвращает значение по умолчанию
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvFloat получает переменную окружения как float64 или возвращает значение по умолчанию
func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

// getEnvBool получает переменную окружения как bool или возвращает значение по умолчанию
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

// getEnvDuration получает переменную окружения как Duration или возвращает значение по умолчанию
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
