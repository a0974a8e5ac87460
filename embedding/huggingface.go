package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"golang.org/x/time/rate"
)

const defaultHuggingFaceURL = "https://api-inference.huggingface.co"

// HuggingFaceBackend эмбеддинги через Hugging Face Inference API (feature-extraction)
type HuggingFaceBackend struct {
	apiKey      string
	baseURL     string
	model       string
	prefix      string
	client      *http.Client
	limiter     *rate.Limiter
	retryConfig RetryConfig
	logger      *slog.Logger
}

type hfFeatureRequest struct {
	Inputs  []string         `json:"inputs"`
	Options hfFeatureOptions `json:"options"`
}

type hfFeatureOptions struct {
	WaitForModel bool `json:"wait_for_model"`
}

// NewHuggingFaceBackend создает бэкенд Hugging Face
func NewHuggingFaceBackend(cfg BackendConfig, logger *slog.Logger) *HuggingFaceBackend {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultHuggingFaceURL
	}
	model := cfg.Model
	if model == "" {
		model = "intfloat/multilingual-e5-small"
	}
	prefix := cfg.QueryPrefix
	if prefix == "" && strings.Contains(model, "e5") {
		prefix = "query: "
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &HuggingFaceBackend{
		apiKey:      cfg.APIKey,
		baseURL:     baseURL,
		model:       model,
		prefix:      prefix,
		client:      newHTTPClient(cfg.Timeout),
		limiter:     newLimiter(cfg.RateLimit),
		retryConfig: DefaultRetryConfig(),
		logger:      logger,
	}
}

// Name возвращает идентификатор бэкенда
func (h *HuggingFaceBackend) Name() string {
	return fmt.Sprintf("%s:%s", KindHuggingFace, h.model)
}

// Load проверяет наличие ключа и отвечающую модель
func (h *HuggingFaceBackend) Load(ctx context.Context) error {
	if h.apiKey == "" {
		return fmt.Errorf("huggingface api key is not configured")
	}
	vecs, err := h.Embed(ctx, []string{"teste"})
	if err != nil {
		return err
	}
	if len(vecs) != 1 || len(vecs[0]) == 0 {
		return fmt.Errorf("huggingface model %s returned an empty embedding", h.model)
	}
	return nil
}

// Embed отправляет все тексты одним запросом
func (h *HuggingFaceBackend) Embed(ctx context.Context, texts []string) ([][]float64, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	inputs := make([]string, len(texts))
	for i, text := range texts {
		inputs[i] = h.prefix + text
	}
	body, err := json.Marshal(hfFeatureRequest{
		Inputs:  inputs,
		Options: hfFeatureOptions{WaitForModel: true},
	})
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	url := fmt.Sprintf("%s/pipeline/feature-extraction/%s", h.baseURL, h.model)
	var result [][]float64

	err = withRetry(ctx, h.retryConfig, h.logger, h.Name(), func() (bool, error) {
		if err := h.limiter.Wait(ctx); err != nil {
			return false, err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
		if err != nil {
			return false, fmt.Errorf("creating request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+h.apiKey)

		resp, err := h.client.Do(req)
		if err != nil {
			return ctx.Err() == nil, fmt.Errorf("sending request: %w", err)
		}
		defer resp.Body.Close()

		raw, err := io.ReadAll(resp.Body)
		if err != nil {
			return true, fmt.Errorf("reading response: %w", err)
		}

		if resp.StatusCode != http.StatusOK {
			// 5xx и 503 (модель загружается) повторяем, 4xx нет
			return resp.StatusCode >= 500, fmt.Errorf("huggingface API error (status %d): %s",
				resp.StatusCode, truncate(string(raw), 512))
		}

		vecs, err := decodeFeatures(raw)
		if err != nil {
			return false, err
		}
		if len(vecs) != len(texts) {
			return false, fmt.Errorf("huggingface returned %d embeddings for %d inputs", len(vecs), len(texts))
		}
		result = vecs
		return false, nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// decodeFeatures принимает как уже агрегированные векторы [n][d],
// так и векторы токенов [n][tokens][d], которые усредняются
func decodeFeatures(raw []byte) ([][]float64, error) {
	var pooled [][]float64
	if err := json.Unmarshal(raw, &pooled); err == nil {
		return pooled, nil
	}

	var tokens [][][]float64
	if err := json.Unmarshal(raw, &tokens); err != nil {
		return nil, fmt.Errorf("decoding feature-extraction response: %w", err)
	}
	out := make([][]float64, len(tokens))
	for i, seq := range tokens {
		out[i] = meanPool(seq)
	}
	return out, nil
}

func meanPool(seq [][]float64) []float64 {
	if len(seq) == 0 {
		return nil
	}
	mean := make([]float64, len(seq[0]))
	for _, tok := range seq {
		for j := range mean {
			if j < len(tok) {
				mean[j] += tok[j]
			}
		}
	}
	for j := range mean {
		mean[j] /= float64(len(seq))
	}
	return mean
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
