package matching

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sort"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"productsim/features"
	"productsim/normalization/algorithms"
	"productsim/similarity"
)

const (
	DefaultDuplicateThreshold  = 0.85
	DefaultSimilarThreshold    = 0.65
	DefaultSimilarityThreshold = 0.6
	DefaultMaxBucketSize       = 200
)

// Config настройки сопоставителя
type Config struct {
	DuplicateThreshold  float64 `json:"duplicate_threshold" yaml:"duplicate_threshold"`
	SimilarThreshold    float64 `json:"similar_threshold" yaml:"similar_threshold"`
	SimilarityThreshold float64 `json:"similarity_threshold" yaml:"similarity_threshold"`
	Workers             int     `json:"workers" yaml:"workers"`
	MaxBucketSize       int     `json:"max_bucket_size" yaml:"max_bucket_size"`
}

// DefaultConfig возвращает настройки по умолчанию
func DefaultConfig() Config {
	return Config{
		DuplicateThreshold:  DefaultDuplicateThreshold,
		SimilarThreshold:    DefaultSimilarThreshold,
		SimilarityThreshold: DefaultSimilarityThreshold,
		Workers:             runtime.NumCPU(),
		MaxBucketSize:       DefaultMaxBucketSize,
	}
}

// Validate проверяет пороги
func (c Config) Validate() error {
	if err := algorithms.ValidateThreshold("duplicate_threshold", c.DuplicateThreshold); err != nil {
		return err
	}
	if err := algorithms.ValidateThreshold("similar_threshold", c.SimilarThreshold); err != nil {
		return err
	}
	if err := algorithms.ValidateTiers(c.DuplicateThreshold, c.SimilarThreshold); err != nil {
		return err
	}
	if c.SimilarityThreshold != 0 {
		if err := algorithms.ValidateThreshold("similarity_threshold", c.SimilarityThreshold); err != nil {
			return err
		}
	}
	if c.Workers < 0 || c.MaxBucketSize < 0 {
		return algorithms.NewSimilarityError(algorithms.ErrCodeConfiguration,
			"workers and max_bucket_size must not be negative", nil).
			WithDetail("workers", c.Workers).
			WithDetail("max_bucket_size", c.MaxBucketSize)
	}
	return nil
}

// Scorer вычисляет оценку схожести пары векторов признаков
type Scorer interface {
	Score(ctx context.Context, a, b *features.FeatureVector) (similarity.SimilarityScore, error)
	Extractor() *features.Extractor
	UsesEmbeddings() bool
}

// Warmer заранее вычисляет эмбеддинги набора текстов
type Warmer interface {
	EmbedBatch(ctx context.Context, texts []string) ([][]float64, error)
}

// Matcher группирует записи на дубликаты, похожие и одиночные
type Matcher struct {
	cfg    Config
	scorer Scorer
	warmer Warmer
	logger *slog.Logger
}

// Option настраивает Matcher
type Option func(*Matcher)

// WithLogger задает логгер
func WithLogger(logger *slog.Logger) Option {
	return func(m *Matcher) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithWarmer подключает прогрев кэша эмбеддингов перед оценкой пар
func WithWarmer(w Warmer) Option {
	return func(m *Matcher) { m.warmer = w }
}

// NewMatcher создает сопоставитель. Ошибка CONFIGURATION, если
// duplicate_threshold <= similar_threshold или пороги вне (0, 1].
func NewMatcher(cfg Config, scorer Scorer, opts ...Option) (*Matcher, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if scorer == nil {
		return nil, algorithms.NewSimilarityError(algorithms.ErrCodeConfiguration,
			"matcher requires a scorer", nil)
	}
	if cfg.Workers == 0 {
		cfg.Workers = runtime.NumCPU()
	}
	if cfg.SimilarityThreshold == 0 {
		cfg.SimilarityThreshold = cfg.SimilarThreshold
	}
	m := &Matcher{
		cfg:    cfg,
		scorer: scorer,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// Config возвращает действующие настройки
func (m *Matcher) Config() Config {
	return m.cfg
}

// scoredPair оценка пары кандидатов
type scoredPair struct {
	pair  Pair
	score float64
}

// Match выполняет сопоставление. Результат детерминирован для одинакового
// входа и порогов. При отмене ctx возвращается ошибка и никакого частичного результата.
func (m *Matcher) Match(ctx context.Context, records []ProductRecord) (*MatchingResult, error) {
	start := time.Now()
	runID := uuid.New().String()
	logger := m.logger.With("run_id", runID)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	fvs, invalid := m.extract(records, logger)
	pairs, buckets := candidatePairs(fvs, m.cfg.MaxBucketSize)

	logger.Info("matching started",
		"records", len(records),
		"invalid_records", invalid,
		"buckets", buckets,
		"candidate_pairs", len(pairs),
		"workers", m.cfg.Workers)

	usesEmbeddings := m.scorer.UsesEmbeddings()
	if usesEmbeddings && m.warmer != nil {
		m.warmup(ctx, fvs, logger)
	}

	scored, failed, err := m.scorePairs(ctx, fvs, pairs, logger)
	if err != nil {
		logger.Warn("matching cancelled", "error", err)
		return nil, err
	}

	result := m.cluster(records, fvs, scored)
	result.RunID = runID
	result.CreatedAt = start
	result.Stats = RunStats{
		CandidatePairs: len(pairs),
		FailedPairs:    failed,
		InvalidRecords: invalid,
		Buckets:        buckets,
		EmbeddingsUsed: usesEmbeddings,
		ModelUsed:      m.modelUsed(),
		DurationMs:     time.Since(start).Milliseconds(),
	}

	logger.Info("matching completed",
		"total_groups", result.TotalGroups,
		"duplicate_groups", len(result.DuplicateGroups),
		"similar_groups", len(result.SimilarGroups),
		"singletons", len(result.SingletonProducts),
		"deduplication_ratio", result.DeduplicationRatio,
		"failed_pairs", failed,
		"duration", time.Since(start))

	return result, nil
}

func (m *Matcher) modelUsed() bool {
	type modelAware interface{ HasModel() bool }
	if ma, ok := m.scorer.(modelAware); ok {
		return ma.HasModel()
	}
	return false
}

// extract нормализует записи. Пустые описания не прерывают прогон:
// они получают пустой вектор и становятся одиночками.
func (m *Matcher) extract(records []ProductRecord, logger *slog.Logger) ([]features.FeatureVector, int) {
	extractor := m.scorer.Extractor()
	fvs := make([]features.FeatureVector, len(records))
	var invalid int
	for i, r := range records {
		fvs[i] = extractor.FromText(r.Description, r.Code)
		if fvs[i].Empty {
			invalid++
			logger.Warn("record has empty or invalid description",
				"index", i,
				"context_id", r.ContextID,
				"error", algorithms.ErrCodeInputValidation)
		}
	}
	return fvs, invalid
}

// warmup прогревает кэш эмбеддингов. Ошибка не фатальна: пары будут
// досчитаны по одной, а отказавшие получат 0.
func (m *Matcher) warmup(ctx context.Context, fvs []features.FeatureVector, logger *slog.Logger) {
	seen := make(map[string]struct{}, len(fvs))
	texts := make([]string, 0, len(fvs))
	for i := range fvs {
		if fvs[i].Empty {
			continue
		}
		if _, ok := seen[fvs[i].Normalized]; ok {
			continue
		}
		seen[fvs[i].Normalized] = struct{}{}
		texts = append(texts, fvs[i].Normalized)
	}
	if _, err := m.warmer.EmbedBatch(ctx, texts); err != nil {
		logger.Warn("embedding warm-up failed", "texts", len(texts), "error", err)
	}
}

// scorePairs оценивает пары в ограниченном пуле воркеров. Результаты пишутся
// по индексу пары, поэтому порядок завершения воркеров не влияет на итог.
func (m *Matcher) scorePairs(ctx context.Context, fvs []features.FeatureVector, pairs []Pair,
	logger *slog.Logger) ([]scoredPair, int, error) {
	scored := make([]scoredPair, len(pairs))
	var failed atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(m.cfg.Workers)

	for i, p := range pairs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			score, err := m.scoreOrDefault(gctx, &fvs[p.I], &fvs[p.J])
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				failed.Add(1)
				logger.Warn("pair scoring failed, treating as unrelated",
					"left", fvs[p.I].Original,
					"right", fvs[p.J].Original,
					"error", err)
			}
			scored[i] = scoredPair{pair: p, score: score}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, 0, err
	}
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}
	return scored, int(failed.Load()), nil
}

// scoreOrDefault возвращает итоговую оценку пары либо 0 и ошибку COMPUTATION.
// Паника внутри оценки тоже превращается в ошибку.
func (m *Matcher) scoreOrDefault(ctx context.Context, a, b *features.FeatureVector) (score float64, err error) {
	defer func() {
		if r := recover(); r != nil {
			score = 0
			err = algorithms.NewSimilarityError(algorithms.ErrCodeComputation,
				fmt.Sprintf("panic while scoring pair: %v", r), nil)
		}
	}()

	s, err := m.scorer.Score(ctx, a, b)
	if err != nil {
		if algorithms.CodeOf(err) != algorithms.ErrCodeComputation {
			err = algorithms.NewSimilarityError(algorithms.ErrCodeComputation, "pair scoring failed", err)
		}
		return 0, err
	}
	return algorithms.Clamp01(s.Final), nil
}

// cluster строит группы двухуровневым union-find: компоненты по рёбрам
// similar-уровня, дубликатом считается компонента, целиком связанная
// рёбрами duplicate-уровня
func (m *Matcher) cluster(records []ProductRecord, fvs []features.FeatureVector, scored []scoredPair) *MatchingResult {
	n := len(records)
	similarUF := algorithms.NewUnionFind(n)
	duplicateUF := algorithms.NewUnionFind(n)

	var edges []scoredPair
	for _, sp := range scored {
		if sp.score < m.cfg.SimilarThreshold {
			continue
		}
		edges = append(edges, sp)
		similarUF.Union(sp.pair.I, sp.pair.J)
		if sp.score >= m.cfg.DuplicateThreshold {
			duplicateUF.Union(sp.pair.I, sp.pair.J)
		}
	}

	edgeScores := make(map[int][]float64)
	for _, e := range edges {
		root := similarUF.Find(e.pair.I)
		edgeScores[root] = append(edgeScores[root], e.score)
	}

	result := &MatchingResult{
		Thresholds: Thresholds{
			Duplicate: m.cfg.DuplicateThreshold,
			Similar:   m.cfg.SimilarThreshold,
		},
		TotalProducts:     n,
		DuplicateGroups:   []Group{},
		SimilarGroups:     []Group{},
		SingletonProducts: []string{},
	}

	for _, members := range similarUF.Components() {
		if len(members) == 1 {
			result.SingletonProducts = append(result.SingletonProducts, records[members[0]].Description)
			continue
		}

		kind := KindDuplicate
		dupRoot := duplicateUF.Find(members[0])
		for _, idx := range members[1:] {
			if duplicateUF.Find(idx) != dupRoot {
				kind = KindSimilar
				break
			}
		}

		g := buildGroup(kind, members, records, fvs, edgeScores[similarUF.Find(members[0])])
		if kind == KindDuplicate {
			result.DuplicateGroups = append(result.DuplicateGroups, g)
		} else {
			result.SimilarGroups = append(result.SimilarGroups, g)
		}
	}

	sortGroups(result.DuplicateGroups)
	sortGroups(result.SimilarGroups)
	for i := range result.DuplicateGroups {
		result.DuplicateGroups[i].ID = fmt.Sprintf("dup-%d", i+1)
	}
	for i := range result.SimilarGroups {
		result.SimilarGroups[i].ID = fmt.Sprintf("sim-%d", i+1)
	}

	nonSingleton := len(result.DuplicateGroups) + len(result.SimilarGroups)
	result.TotalGroups = nonSingleton + len(result.SingletonProducts)
	if n > 0 {
		result.DeduplicationRatio = float64(n-result.TotalGroups) / float64(n)
	}
	if nonSingleton > 0 {
		var total int
		for _, groups := range [][]Group{result.DuplicateGroups, result.SimilarGroups} {
			for _, g := range groups {
				total += g.Size
				if g.Size > result.LargestGroupSize {
					result.LargestGroupSize = g.Size
				}
			}
		}
		result.AvgGroupSize = float64(total) / float64(nonSingleton)
	}
	return result
}

func buildGroup(kind GroupKind, members []int, records []ProductRecord, fvs []features.FeatureVector, scores []float64) Group {
	g := Group{
		Kind:             kind,
		Size:             len(members),
		Members:          make([]string, len(members)),
		Records:          make([]ProductRecord, len(members)),
		SimilarityScores: append([]float64(nil), scores...),
		indices:          members,
	}
	for i, idx := range members {
		g.Members[i] = records[idx].Description
		g.Records[i] = records[idx]
		g.TotalFrequency += records[idx].EffectiveFrequency()
	}
	sort.Sort(sort.Reverse(sort.Float64Slice(g.SimilarityScores)))
	if len(scores) > 0 {
		var sum float64
		for _, s := range scores {
			sum += s
		}
		g.AvgSimilarity = sum / float64(len(scores))
	}
	g.Representative = records[representative(members, records, fvs)].Description
	return g
}

// representative самая частая запись; далее самый короткий нормализованный текст,
// лексикографический порядок нормализованного, затем исходного текста и индекс
func representative(members []int, records []ProductRecord, fvs []features.FeatureVector) int {
	best := members[0]
	for _, idx := range members[1:] {
		if betterRepresentative(idx, best, records, fvs) {
			best = idx
		}
	}
	return best
}

func betterRepresentative(a, b int, records []ProductRecord, fvs []features.FeatureVector) bool {
	fa, fb := records[a].EffectiveFrequency(), records[b].EffectiveFrequency()
	if fa != fb {
		return fa > fb
	}
	na, nb := fvs[a].Normalized, fvs[b].Normalized
	if len(na) != len(nb) {
		return len(na) < len(nb)
	}
	if na != nb {
		return na < nb
	}
	if records[a].Description != records[b].Description {
		return records[a].Description < records[b].Description
	}
	return a < b
}

func sortGroups(groups []Group) {
	sort.SliceStable(groups, func(i, j int) bool {
		if groups[i].Size != groups[j].Size {
			return groups[i].Size > groups[j].Size
		}
		if groups[i].Representative != groups[j].Representative {
			return groups[i].Representative < groups[j].Representative
		}
		return groups[i].indices[0] < groups[j].indices[0]
	})
}
