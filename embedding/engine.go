package embedding

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"productsim/normalization/algorithms"
)

const (
	// DefaultCacheSize размер кэша эмбеддингов по умолчанию
	DefaultCacheSize = 50000
	// DefaultConcurrency число параллельных вычислений в EmbedBatch
	DefaultConcurrency = 4
	// maxConsecutiveFailures после стольких ошибок подряд бэкенд исключается из ансамбля
	maxConsecutiveFailures = 3
	loadTimeout            = 2 * time.Minute
	embedTimeout           = time.Minute
)

// Config настройки движка эмбеддингов
type Config struct {
	Primary         BackendConfig  `json:"primary" yaml:"primary"`
	Secondary       *BackendConfig `json:"secondary,omitempty" yaml:"secondary"`
	PrimaryWeight   float64        `json:"primary_weight" yaml:"primary_weight"`
	SecondaryWeight float64        `json:"secondary_weight" yaml:"secondary_weight"`
	CacheSize       int            `json:"cache_size" yaml:"cache_size"`
	Concurrency     int            `json:"concurrency" yaml:"concurrency"`
}

// BackendStatus состояние бэкенда в ансамбле
type BackendStatus struct {
	Name      string  `json:"name"`
	Weight    float64 `json:"weight"`
	Available bool    `json:"available"`
	Calls     int64   `json:"calls"`
	Failures  int64   `json:"failures"`
	LoadError string  `json:"load_error,omitempty"`
}

// Stats статистика движка
type Stats struct {
	Loaded      bool            `json:"loaded"`
	Available   bool            `json:"available"`
	CacheSize   int             `json:"cache_size"`
	CacheHits   int64           `json:"cache_hits"`
	CacheMisses int64           `json:"cache_misses"`
	Generation  uint64          `json:"generation"`
	Backends    []BackendStatus `json:"backends"`
}

// cachedVector вектор с номером состава ансамбля, в котором он вычислен
type cachedVector struct {
	vec        []float64
	generation uint64
}

type slot struct {
	backend     Backend
	weight      float64
	available   atomic.Bool
	calls       atomic.Int64
	failures    atomic.Int64
	consecutive atomic.Int64
	loadErr     error
}

// Engine ансамбль моделей эмбеддингов с ленивой загрузкой и кэшем.
// Безопасен для конкурентного использования.
type Engine struct {
	slots       []*slot
	concurrency int
	logger      *slog.Logger

	loadOnce sync.Once
	loaded   atomic.Bool

	cache      *lru.Cache[string, cachedVector]
	group      singleflight.Group
	generation atomic.Uint64
	hits       atomic.Int64
	misses     atomic.Int64
}

// NewEngine создает движок по конфигурации
func NewEngine(cfg Config, logger *slog.Logger) (*Engine, error) {
	if logger == nil {
		logger = slog.Default()
	}
	primary, err := NewBackend(cfg.Primary, logger)
	if err != nil {
		return nil, err
	}
	backends := []Backend{primary}
	weights := []float64{cfg.PrimaryWeight}

	if cfg.Secondary != nil {
		secondary, err := NewBackend(*cfg.Secondary, logger)
		if err != nil {
			return nil, err
		}
		backends = append(backends, secondary)
		weights = append(weights, cfg.SecondaryWeight)
	} else if cfg.PrimaryWeight == 0 {
		weights[0] = 1
	}

	return NewEngineWithBackends(backends, weights, cfg.CacheSize, cfg.Concurrency, logger)
}

// NewEngineWithBackends создает движок из готовых бэкендов.
// Веса неотрицательны, их сумма положительна; они нормируются к 1.
func NewEngineWithBackends(backends []Backend, weights []float64, cacheSize, concurrency int, logger *slog.Logger) (*Engine, error) {
	if len(backends) == 0 {
		return nil, algorithms.NewSimilarityError(algorithms.ErrCodeConfiguration,
			"at least one embedding backend is required", nil)
	}
	if len(weights) != len(backends) {
		return nil, algorithms.NewSimilarityError(algorithms.ErrCodeConfiguration,
			"one weight per embedding backend is required", nil).
			WithDetail("backends", len(backends)).
			WithDetail("weights", len(weights))
	}
	normalized, err := normalizeWeights(weights)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	if cacheSize <= 0 {
		cacheSize = DefaultCacheSize
	}
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	cache, err := lru.New[string, cachedVector](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("creating embedding cache: %w", err)
	}

	e := &Engine{
		concurrency: concurrency,
		logger:      logger,
		cache:       cache,
	}
	for i, b := range backends {
		e.slots = append(e.slots, &slot{backend: b, weight: normalized[i]})
	}
	return e, nil
}

func normalizeWeights(weights []float64) ([]float64, error) {
	var sum float64
	for _, w := range weights {
		if w < 0 || math.IsNaN(w) || math.IsInf(w, 0) {
			return nil, algorithms.NewSimilarityError(algorithms.ErrCodeConfiguration,
				"embedding weights must be non-negative", nil).
				WithDetail("weights", weights)
		}
		sum += w
	}
	if sum <= 0 {
		return nil, algorithms.NewSimilarityError(algorithms.ErrCodeConfiguration,
			"embedding weights must sum to a positive value", nil).
			WithDetail("weights", weights)
	}
	out := make([]float64, len(weights))
	for i, w := range weights {
		out[i] = w / sum
	}
	return out, nil
}

// Load однократно загружает все бэкенды. Повторные вызовы ничего не делают.
// Ошибка загрузки отдельного бэкенда не фатальна: он просто недоступен.
func (e *Engine) Load(ctx context.Context) {
	e.loadOnce.Do(func() {
		// Загрузка разделяется всеми вызывающими, поэтому не зависит от отмены первого
		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), loadTimeout)
		defer cancel()

		for _, s := range e.slots {
			if s.weight == 0 {
				continue
			}
			if err := s.backend.Load(loadCtx); err != nil {
				s.loadErr = err
				e.logger.Warn("embedding backend unavailable",
					"backend", s.backend.Name(),
					"error", err)
				continue
			}
			s.available.Store(true)
			e.logger.Info("embedding backend loaded",
				"backend", s.backend.Name(),
				"weight", s.weight)
		}
		e.loaded.Store(true)
	})
}

// Available сообщает, может ли движок выдавать эмбеддинги
func (e *Engine) Available() bool {
	e.Load(context.Background())
	for _, s := range e.slots {
		if s.available.Load() {
			return true
		}
	}
	return false
}

// Embed возвращает L2-нормированный эмбеддинг ансамбля для текста
func (e *Engine) Embed(ctx context.Context, text string) ([]float64, error) {
	vec, _, err := e.embed(ctx, text)
	return vec, err
}

// embed возвращает вектор и номер состава ансамбля. Вычисление разделяется
// конкурентными вызовами с тем же текстом и не зависит от отмены контекста
// отдельного вызывающего: каждый ждет результата под своим ctx.
func (e *Engine) embed(ctx context.Context, text string) ([]float64, uint64, error) {
	e.Load(ctx)

	gen := e.generation.Load()
	if cv, ok := e.cache.Get(text); ok {
		if cv.generation == gen {
			e.hits.Add(1)
			return cv.vec, cv.generation, nil
		}
		e.cache.Remove(text)
	}
	e.misses.Add(1)

	key := strconv.FormatUint(gen, 10) + "\x00" + text
	ch := e.group.DoChan(key, func() (interface{}, error) {
		if cv, ok := e.cache.Peek(text); ok && cv.generation == e.generation.Load() {
			return cv, nil
		}
		computeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), embedTimeout)
		defer cancel()
		return e.computeCurrent(computeCtx, text)
	})

	select {
	case <-ctx.Done():
		return nil, 0, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, 0, res.Err
		}
		cv := res.Val.(cachedVector)
		return cv.vec, cv.generation, nil
	}
}

// computeCurrent вычисляет вектор и кэширует его, только если состав
// ансамбля не изменился за время вычисления
func (e *Engine) computeCurrent(ctx context.Context, text string) (cachedVector, error) {
	for attempt := 0; attempt <= len(e.slots); attempt++ {
		gen := e.generation.Load()
		vec, err := e.compute(ctx, text)
		if err != nil {
			return cachedVector{}, err
		}
		if e.generation.Load() != gen {
			continue
		}
		cv := cachedVector{vec: vec, generation: gen}
		e.cache.Add(text, cv)
		return cv, nil
	}
	return cachedVector{}, algorithms.NewSimilarityError(algorithms.ErrCodeComputation,
		"embedding ensemble kept changing during computation", nil)
}

// EmbedBatch вычисляет эмбеддинги параллельно; порядок результата совпадает с входом
func (e *Engine) EmbedBatch(ctx context.Context, texts []string) ([][]float64, error) {
	out := make([][]float64, len(texts))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.concurrency)

	for i, text := range texts {
		g.Go(func() error {
			vec, err := e.Embed(gctx, text)
			if err != nil {
				return err
			}
			out[i] = vec
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// TextSimilarity косинусная близость эмбеддингов, ограниченная [0, 1]
func (e *Engine) TextSimilarity(ctx context.Context, text1, text2 string) (float64, error) {
	if text1 == text2 {
		return 1, nil
	}
	v1, g1, err := e.embed(ctx, text1)
	if err != nil {
		return 0, err
	}
	v2, g2, err := e.embed(ctx, text2)
	if err != nil {
		return 0, err
	}
	if g1 == g2 && len(v1) == len(v2) {
		return Similarity(v1, v2), nil
	}

	// Бэкенд исключен между вычислениями: оба вектора пересчитываются в текущем составе
	if v1, g1, err = e.embed(ctx, text1); err != nil {
		return 0, err
	}
	if v2, g2, err = e.embed(ctx, text2); err != nil {
		return 0, err
	}
	if g1 != g2 || len(v1) != len(v2) {
		return 0, algorithms.NewSimilarityError(algorithms.ErrCodeComputation,
			"embeddings come from different ensemble compositions", nil).
			WithDetail("dimensions", []int{len(v1), len(v2)}).
			WithDetail("generations", []uint64{g1, g2})
	}
	return Similarity(v1, v2), nil
}

// Similarity косинусная близость двух векторов, ограниченная [0, 1]
func Similarity(v1, v2 []float64) float64 {
	return algorithms.ClampedCosine(v1, v2)
}

// compute опрашивает доступные бэкенды и объединяет векторы
func (e *Engine) compute(ctx context.Context, text string) ([]float64, error) {
	var (
		vectors [][]float64
		weights []float64
	)
	for _, s := range e.slots {
		if !s.available.Load() {
			continue
		}
		s.calls.Add(1)
		vecs, err := s.backend.Embed(ctx, []string{text})
		if err == nil && (len(vecs) != 1 || len(vecs[0]) == 0) {
			err = fmt.Errorf("backend returned no vector")
		}
		if err != nil {
			s.failures.Add(1)
			if ctx.Err() == nil && s.consecutive.Add(1) >= maxConsecutiveFailures {
				e.disable(s, err)
			}
			return nil, algorithms.NewSimilarityError(algorithms.ErrCodeComputation,
				"embedding failed", err).
				WithDetail("backend", s.backend.Name())
		}
		s.consecutive.Store(0)
		vectors = append(vectors, vecs[0])
		weights = append(weights, s.weight)
	}

	if len(vectors) == 0 {
		return nil, algorithms.NewSimilarityError(algorithms.ErrCodeBackendUnavailable,
			"no embedding backend is available", nil)
	}
	return Combine(vectors, weights), nil
}

// disable исключает бэкенд из ансамбля и начинает новый состав.
// Векторы прежнего состава несравнимы с новыми.
func (e *Engine) disable(s *slot, err error) {
	if !s.available.CompareAndSwap(true, false) {
		return
	}
	gen := e.generation.Add(1)
	e.cache.Purge()
	e.logger.Error("embedding backend disabled after repeated failures",
		"backend", s.backend.Name(),
		"generation", gen,
		"failures", s.failures.Load(),
		"error", err)
}

// Combine объединяет векторы нескольких моделей.
// При равной размерности берется взвешенная сумма нормированных векторов,
// иначе конкатенация с коэффициентами sqrt(w), сохраняющая вклад косинуса
// пропорциональным весу. Результат L2-нормирован.
func Combine(vectors [][]float64, weights []float64) []float64 {
	if len(vectors) == 1 {
		return algorithms.Normalize(vectors[0])
	}

	var sum float64
	for _, w := range weights {
		sum += w
	}

	sameDim := true
	for _, v := range vectors[1:] {
		if len(v) != len(vectors[0]) {
			sameDim = false
			break
		}
	}

	if sameDim {
		out := make([]float64, len(vectors[0]))
		for i, v := range vectors {
			nv := algorithms.Normalize(v)
			w := weights[i] / sum
			for j := range out {
				out[j] += w * nv[j]
			}
		}
		return algorithms.Normalize(out)
	}

	var out []float64
	for i, v := range vectors {
		nv := algorithms.Normalize(v)
		scale := math.Sqrt(weights[i] / sum)
		for _, x := range nv {
			out = append(out, scale*x)
		}
	}
	return algorithms.Normalize(out)
}

// Stats возвращает статистику движка
func (e *Engine) Stats() Stats {
	st := Stats{
		Loaded:      e.loaded.Load(),
		CacheSize:   e.cache.Len(),
		CacheHits:   e.hits.Load(),
		CacheMisses: e.misses.Load(),
		Generation:  e.generation.Load(),
	}
	for _, s := range e.slots {
		bs := BackendStatus{
			Name:      s.backend.Name(),
			Weight:    s.weight,
			Available: s.available.Load(),
			Calls:     s.calls.Load(),
			Failures:  s.failures.Load(),
		}
		if st.Loaded && s.loadErr != nil {
			bs.LoadError = s.loadErr.Error()
		}
		if bs.Available {
			st.Available = true
		}
		st.Backends = append(st.Backends, bs)
	}
	return st
}
