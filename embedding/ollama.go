package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"golang.org/x/time/rate"
)

// OllamaBackend эмбеддинги через локальный сервер Ollama (/api/embeddings)
type OllamaBackend struct {
	baseURL     string
	model       string
	prefix      string
	client      *http.Client
	limiter     *rate.Limiter
	retryConfig RetryConfig
	logger      *slog.Logger
}

type ollamaEmbedRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

type ollamaEmbedResponse struct {
	Embedding []float64 `json:"embedding"`
}

// NewOllamaBackend создает бэкенд Ollama
func NewOllamaBackend(cfg BackendConfig, logger *slog.Logger) *OllamaBackend {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	model := cfg.Model
	if model == "" {
		model = "nomic-embed-text"
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &OllamaBackend{
		baseURL:     baseURL,
		model:       model,
		prefix:      cfg.QueryPrefix,
		client:      newHTTPClient(cfg.Timeout),
		limiter:     newLimiter(cfg.RateLimit),
		retryConfig: DefaultRetryConfig(),
		logger:      logger,
	}
}

// Name возвращает идентификатор бэкенда
func (o *OllamaBackend) Name() string {
	return fmt.Sprintf("%s:%s", KindOllama, o.model)
}

// Load проверяет, что сервер отвечает и модель выдает вектор
func (o *OllamaBackend) Load(ctx context.Context) error {
	vec, err := o.embedOne(ctx, "teste")
	if err != nil {
		return err
	}
	if len(vec) == 0 {
		return fmt.Errorf("ollama model %s returned an empty embedding", o.model)
	}
	return nil
}

// Embed вычисляет эмбеддинги последовательно, соблюдая ограничение частоты
func (o *OllamaBackend) Embed(ctx context.Context, texts []string) ([][]float64, error) {
	out := make([][]float64, len(texts))
	for i, text := range texts {
		vec, err := o.embedOne(ctx, o.prefix+text)
		if err != nil {
			return nil, fmt.Errorf("embedding text %d: %w", i, err)
		}
		out[i] = vec
	}
	return out, nil
}

func (o *OllamaBackend) embedOne(ctx context.Context, text string) ([]float64, error) {
	body, err := json.Marshal(ollamaEmbedRequest{Model: o.model, Prompt: text})
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	var result []float64
	err = withRetry(ctx, o.retryConfig, o.logger, o.Name(), func() (bool, error) {
		if err := o.limiter.Wait(ctx); err != nil {
			return false, err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+"/api/embeddings", bytes.NewReader(body))
		if err != nil {
			return false, fmt.Errorf("creating request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := o.client.Do(req)
		if err != nil {
			return ctx.Err() == nil, fmt.Errorf("calling ollama: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
			return resp.StatusCode >= 500, fmt.Errorf("ollama returned status %d: %s", resp.StatusCode, msg)
		}

		var embedResp ollamaEmbedResponse
		if err := json.NewDecoder(resp.Body).Decode(&embedResp); err != nil {
			return false, fmt.Errorf("decoding response: %w", err)
		}
		result = embedResp.Embedding
		return false, nil
	})
	return result, err
}
