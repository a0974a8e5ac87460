package similarity

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"

	"productsim/features"
	"productsim/normalization/algorithms"
)

// LexicalMetric метрика пересечения токенов
type LexicalMetric string

const (
	MetricJaccard LexicalMetric = "jaccard"
	MetricDice    LexicalMetric = "dice"
)

// Weights веса компонентов итоговой оценки
type Weights struct {
	Lexical    float64 `json:"lexical" yaml:"lexical"`
	Edit       float64 `json:"edit" yaml:"edit"`
	Structural float64 `json:"structural" yaml:"structural"`
	Embedding  float64 `json:"embedding" yaml:"embedding"`
	BrandBonus float64 `json:"brand_bonus" yaml:"brand_bonus"`
}

// DefaultWeights возвращает веса по умолчанию
func DefaultWeights() Weights {
	return Weights{
		Lexical:    0.45,
		Edit:       0.25,
		Structural: 0.30,
		Embedding:  0.30,
		BrandBonus: 0.10,
	}
}

// Validate проверяет веса
func (w Weights) Validate() error {
	if w.Lexical < 0 || w.Edit < 0 || w.Structural < 0 || w.Embedding < 0 || w.BrandBonus < 0 {
		return algorithms.NewSimilarityError(algorithms.ErrCodeConfiguration,
			"similarity weights must be non-negative", nil).
			WithDetail("weights", w)
	}
	if w.Lexical+w.Edit <= 0 {
		return algorithms.NewSimilarityError(algorithms.ErrCodeConfiguration,
			"lexical and edit weights must not both be zero", nil).
			WithDetail("weights", w)
	}
	return nil
}

// SimilarityScore разложение оценки схожести пары
type SimilarityScore struct {
	Lexical          float64 `json:"lexical"`
	Edit             float64 `json:"edit"`
	Structural       float64 `json:"structural"`
	HasStructural    bool    `json:"has_structural"`
	Embedding        float64 `json:"embedding"`
	EmbeddingUsed    bool    `json:"embedding_used"`
	BrandBonus       float64 `json:"brand_bonus"`
	Heuristic        float64 `json:"heuristic"`
	ModelProbability float64 `json:"model_probability"`
	ModelUsed        bool    `json:"model_used"`
	Final            float64 `json:"final"`
}

// EmbeddingSource источник семантической близости текстов
type EmbeddingSource interface {
	Available() bool
	TextSimilarity(ctx context.Context, text1, text2 string) (float64, error)
}

// PairModel обученная модель, оценивающая вероятность схожести пары.
// Реализация обязана быть симметричной по (a, b).
type PairModel interface {
	PredictProbability(a, b *features.FeatureVector, s SimilarityScore) (float64, error)
}

// ModelMode способ учета модели в итоговой оценке
type ModelMode int

const (
	// ModelReplace итоговая оценка равна вероятности модели
	ModelReplace ModelMode = iota
	// ModelBlend итоговая оценка - смесь эвристики и вероятности модели
	ModelBlend
)

type modelBinding struct {
	model PairModel
	mode  ModelMode
	alpha float64
}

// Calculator вычисляет оценку схожести двух векторов признаков
type Calculator struct {
	weights   Weights
	metric    LexicalMetric
	dl        *algorithms.DamerauLevenshtein
	extractor *features.Extractor
	embedding EmbeddingSource
	model     atomic.Pointer[modelBinding]
	logger    *slog.Logger
}

// Option настраивает Calculator
type Option func(*Calculator)

// WithWeights задает веса компонентов
func WithWeights(w Weights) Option {
	return func(c *Calculator) { c.weights = w }
}

// WithLexicalMetric выбирает метрику пересечения токенов
func WithLexicalMetric(m LexicalMetric) Option {
	return func(c *Calculator) { c.metric = m }
}

// WithExtractor задает экстрактор для Compare
func WithExtractor(e *features.Extractor) Option {
	return func(c *Calculator) { c.extractor = e }
}

// WithEmbedding подключает компонент семантической близости
func WithEmbedding(src EmbeddingSource) Option {
	return func(c *Calculator) { c.embedding = src }
}

// WithLogger задает логгер
func WithLogger(logger *slog.Logger) Option {
	return func(c *Calculator) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewCalculator создает калькулятор схожести
func NewCalculator(opts ...Option) (*Calculator, error) {
	c := &Calculator{
		weights: DefaultWeights(),
		metric:  MetricJaccard,
		dl:      algorithms.NewDamerauLevenshtein(),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if err := c.weights.Validate(); err != nil {
		return nil, err
	}
	if c.metric != MetricJaccard && c.metric != MetricDice {
		return nil, algorithms.NewSimilarityError(algorithms.ErrCodeConfiguration,
			fmt.Sprintf("unknown lexical metric %q", c.metric), nil)
	}
	if c.extractor == nil {
		c.extractor = features.NewExtractor(nil, features.WithLogger(c.logger))
	}
	return c, nil
}

// Weights возвращает веса калькулятора
func (c *Calculator) Weights() Weights {
	return c.weights
}

// Extractor возвращает экстрактор калькулятора
func (c *Calculator) Extractor() *features.Extractor {
	return c.extractor
}

// UsesEmbeddings сообщает, доступен ли компонент эмбеддингов
func (c *Calculator) UsesEmbeddings() bool {
	return c.embedding != nil && c.weights.Embedding > 0 && c.embedding.Available()
}

// SetModel подключает обученную модель. alpha используется только в режиме ModelBlend.
// nil отключает модель.
func (c *Calculator) SetModel(model PairModel, mode ModelMode, alpha float64) {
	if model == nil {
		c.model.Store(nil)
		return
	}
	c.model.Store(&modelBinding{model: model, mode: mode, alpha: algorithms.Clamp01(alpha)})
	c.logger.Debug("similarity model attached", "mode", int(mode), "alpha", alpha)
}

// HasModel сообщает, подключена ли модель
func (c *Calculator) HasModel() bool {
	return c.model.Load() != nil
}

// Score вычисляет оценку схожести. Оценка симметрична, лежит в [0, 1],
// для одинаковых векторов равна 1.0.
func (c *Calculator) Score(ctx context.Context, a, b *features.FeatureVector) (SimilarityScore, error) {
	if a == nil || b == nil {
		return SimilarityScore{}, algorithms.NewSimilarityError(algorithms.ErrCodeInputValidation,
			"feature vectors must not be nil", nil)
	}

	if a.SameContent(b) {
		return identicalScore(a), nil
	}

	s, err := c.Components(ctx, a, b)
	if err != nil {
		return SimilarityScore{}, err
	}

	if binding := c.model.Load(); binding != nil {
		p, err := binding.model.PredictProbability(a, b, s)
		if err != nil {
			return SimilarityScore{}, algorithms.NewSimilarityError(algorithms.ErrCodeComputation,
				"model prediction failed", err)
		}
		s.ModelProbability = algorithms.Clamp01(p)
		s.ModelUsed = true
		if binding.mode == ModelReplace {
			s.Final = s.ModelProbability
		} else {
			s.Final = (1-binding.alpha)*s.Heuristic + binding.alpha*s.ModelProbability
		}
	}

	s.Final = algorithms.Clamp01(s.Final)
	return s, nil
}

// Components вычисляет компоненты и эвристическую оценку без учета модели
func (c *Calculator) Components(ctx context.Context, a, b *features.FeatureVector) (SimilarityScore, error) {
	if a == nil || b == nil {
		return SimilarityScore{}, algorithms.NewSimilarityError(algorithms.ErrCodeInputValidation,
			"feature vectors must not be nil", nil)
	}
	if a.SameContent(b) {
		return identicalScore(a), nil
	}

	s := c.Heuristic(a, b)

	if c.UsesEmbeddings() && !a.Empty && !b.Empty {
		sim, err := c.embedding.TextSimilarity(ctx, a.Normalized, b.Normalized)
		if err != nil {
			return SimilarityScore{}, algorithms.NewSimilarityError(algorithms.ErrCodeComputation,
				"embedding similarity failed", err).
				WithDetail("text1", a.Original).
				WithDetail("text2", b.Original)
		}
		s.Embedding = algorithms.Clamp01(sim)
		s.EmbeddingUsed = true
		s.Heuristic = c.combine(s)
		s.Final = s.Heuristic
	}
	return s, nil
}

// Heuristic вычисляет компоненты без эмбеддингов и модели
func (c *Calculator) Heuristic(a, b *features.FeatureVector) SimilarityScore {
	var s SimilarityScore

	switch c.metric {
	case MetricDice:
		s.Lexical = algorithms.Dice(tokenSet(a), tokenSet(b))
	default:
		s.Lexical = algorithms.Jaccard(tokenSet(a), tokenSet(b))
	}
	s.Edit = c.dl.Similarity(a.Normalized, b.Normalized)

	var parts, sum float64
	if q, ok := features.Agreement(a.Quantity, b.Quantity); ok {
		sum += q
		parts++
	}
	if a.Code != "" && b.Code != "" {
		if a.Code == b.Code {
			sum++
		}
		parts++
	}
	if parts > 0 {
		s.Structural = sum / parts
		s.HasStructural = true
	}

	if a.Brand != "" && a.Brand == b.Brand {
		s.BrandBonus = c.weights.BrandBonus
	}

	s.Heuristic = c.combine(s)
	s.Final = s.Heuristic
	return s
}

// combine взвешенное среднее присутствующих компонентов плюс бонус марки
func (c *Calculator) combine(s SimilarityScore) float64 {
	w := c.weights
	num := w.Lexical*s.Lexical + w.Edit*s.Edit
	den := w.Lexical + w.Edit
	if s.HasStructural {
		num += w.Structural * s.Structural
		den += w.Structural
	}
	if s.EmbeddingUsed {
		num += w.Embedding * s.Embedding
		den += w.Embedding
	}
	return algorithms.Clamp01(num/den + s.BrandBonus)
}

// Compare нормализует два текста и вычисляет их схожесть
func (c *Calculator) Compare(ctx context.Context, text1, text2 string) (SimilarityScore, error) {
	a := c.extractor.FromText(text1, "")
	b := c.extractor.FromText(text2, "")
	return c.Score(ctx, &a, &b)
}

func identicalScore(fv *features.FeatureVector) SimilarityScore {
	return SimilarityScore{
		Lexical:       1,
		Edit:          1,
		Structural:    1,
		HasStructural: fv.Quantity != nil || fv.Code != "",
		Heuristic:     1,
		Final:         1,
	}
}

func tokenSet(fv *features.FeatureVector) algorithms.TokenSet {
	if fv.TokenSet != nil {
		return fv.TokenSet
	}
	return algorithms.NewTokenSet(fv.Tokens)
}
