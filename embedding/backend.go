package embedding

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"productsim/normalization/algorithms"
)

// Backend модель эмбеддингов
type Backend interface {
	// Name возвращает идентификатор бэкенда (kind:model)
	Name() string
	// Load выполняет однократную инициализацию и проверку доступности
	Load(ctx context.Context) error
	// Embed возвращает по вектору на каждый текст в том же порядке
	Embed(ctx context.Context, texts []string) ([][]float64, error)
}

// Kind тип бэкенда
type Kind string

const (
	KindHashing     Kind = "hashing"
	KindOllama      Kind = "ollama"
	KindHuggingFace Kind = "huggingface"
)

// BackendConfig настройки одного бэкенда
type BackendConfig struct {
	Kind        Kind          `json:"kind" yaml:"kind"`
	Model       string        `json:"model" yaml:"model"`
	BaseURL     string        `json:"base_url" yaml:"base_url"`
	APIKey      string        `json:"-" yaml:"api_key"`
	Dimension   int           `json:"dimension" yaml:"dimension"`
	QueryPrefix string        `json:"query_prefix" yaml:"query_prefix"`
	RateLimit   float64       `json:"rate_limit" yaml:"rate_limit"`
	Timeout     time.Duration `json:"timeout" yaml:"timeout"`
}

// RetryConfig конфигурация повторных попыток для удаленных бэкендов
type RetryConfig struct {
	MaxRetries        int
	InitialDelay      time.Duration
	MaxDelay          time.Duration
	BackoffMultiplier float64
}

// DefaultRetryConfig возвращает конфигурацию повторных попыток по умолчанию
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:        3,
		InitialDelay:      500 * time.Millisecond,
		MaxDelay:          10 * time.Second,
		BackoffMultiplier: 2.0,
	}
}

// NewBackend создает бэкенд по конфигурации
func NewBackend(cfg BackendConfig, logger *slog.Logger) (Backend, error) {
	if logger == nil {
		logger = slog.Default()
	}
	switch cfg.Kind {
	case KindHashing, "":
		return NewHashingBackend(cfg.Dimension), nil
	case KindOllama:
		return NewOllamaBackend(cfg, logger), nil
	case KindHuggingFace:
		return NewHuggingFaceBackend(cfg, logger), nil
	default:
		return nil, algorithms.NewSimilarityError(algorithms.ErrCodeConfiguration,
			fmt.Sprintf("unknown embedding backend kind %q", cfg.Kind), nil).
			WithDetail("kind", cfg.Kind)
	}
}

// newLimiter создает ограничитель частоты запросов; 0 означает без ограничения
func newLimiter(perSecond float64) *rate.Limiter {
	if perSecond <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Limit(perSecond), 1)
}

// newHTTPClient HTTP клиент с пулом соединений
func newHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	transport := &http.Transport{
		MaxIdleConns:        10,
		MaxConnsPerHost:     5,
		MaxIdleConnsPerHost: 5,
		IdleConnTimeout:     90 * time.Second,
	}
	return &http.Client{
		Timeout:   timeout,
		Transport: transport,
	}
}

// withRetry выполняет attempt с экспоненциальной задержкой.
// attempt возвращает retry = false для ошибок, которые не стоит повторять.
func withRetry(ctx context.Context, cfg RetryConfig, logger *slog.Logger, name string,
	attempt func() (retry bool, err error)) error {
	var lastErr error
	delay := cfg.InitialDelay

	for i := 0; i <= cfg.MaxRetries; i++ {
		if i > 0 {
			logger.Debug("retrying embedding request",
				"backend", name,
				"attempt", i,
				"max_retries", cfg.MaxRetries,
				"delay", delay)
			select {
			case <-ctx.Done():
				return fmt.Errorf("context cancelled: %w", ctx.Err())
			case <-time.After(delay):
			}
			delay = time.Duration(float64(delay) * cfg.BackoffMultiplier)
			if delay > cfg.MaxDelay {
				delay = cfg.MaxDelay
			}
		}

		retry, err := attempt()
		if err == nil {
			return nil
		}
		lastErr = err
		if !retry {
			break
		}
	}
	return fmt.Errorf("all retry attempts failed for %s: %w", name, lastErr)
}
