package training

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"productsim/features"
	"productsim/normalization/algorithms"
	"productsim/similarity"
)

const (
	DefaultMinExamples        = 10
	DefaultValidationFraction = 0.2
	DefaultSeed               = 42
	DefaultWorkingThreshold   = 0.6
	DefaultCVFolds            = 5

	// decisionBoundary порог решения обученной модели
	decisionBoundary = 0.5
)

// State состояние тренера
type State int

const (
	StateUntrained State = iota
	StateTrained
)

func (s State) String() string {
	if s == StateTrained {
		return "TRAINED"
	}
	return "UNTRAINED"
}

// MarshalText сериализует состояние строкой
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// ClassifierModel обученная модель. После построения не изменяется,
// переобучение создает новую модель.
type ClassifierModel struct {
	ID        string            `json:"id"`
	Version   string            `json:"version"`
	Kind      ModelKind         `json:"kind"`
	TrainedAt time.Time         `json:"trained_at"`
	Report    PerformanceReport `json:"report"`

	classifier       Classifier
	scaler           *Scaler
	validationProbs  []float64
	validationLabels []bool
}

// Predict вероятность того, что пара похожа
func (m *ClassifierModel) Predict(a, b *features.FeatureVector, s similarity.SimilarityScore) float64 {
	return algorithms.Clamp01(m.classifier.PredictProba(m.scaler.Transform(pairFeatures(a, b, s))))
}

// Trainer собирает размеченные пары, обучает классификатор и
// подбирает пары для следующей разметки
type Trainer struct {
	calc               *similarity.Calculator
	minExamples        int
	validationFraction float64
	seed               int64
	workingThreshold   float64
	folds              int
	store              ExampleStore
	logger             *slog.Logger

	mu       sync.Mutex
	examples []TrainingExample
	labeled  map[string]struct{}
	history  []PerformanceReport
	versions map[ModelKind]int

	model atomic.Pointer[ClassifierModel]
}

// TrainerOption настраивает Trainer
type TrainerOption func(*Trainer)

// WithMinExamples минимальное число примеров для обучения
func WithMinExamples(n int) TrainerOption {
	return func(t *Trainer) { t.minExamples = n }
}

// WithValidationFraction доля примеров, откладываемых на валидацию
func WithValidationFraction(f float64) TrainerOption {
	return func(t *Trainer) { t.validationFraction = f }
}

// WithSeed зерно разбиения и случайных лесов
func WithSeed(seed int64) TrainerOption {
	return func(t *Trainer) { t.seed = seed }
}

// WithWorkingThreshold рабочий порог эвристики до обучения модели
func WithWorkingThreshold(threshold float64) TrainerOption {
	return func(t *Trainer) { t.workingThreshold = threshold }
}

// WithCrossValidationFolds число фолдов кросс-валидации
func WithCrossValidationFolds(k int) TrainerOption {
	return func(t *Trainer) { t.folds = k }
}

// WithStore подключает хранилище примеров
func WithStore(store ExampleStore) TrainerOption {
	return func(t *Trainer) { t.store = store }
}

// WithLogger задает логгер
func WithLogger(logger *slog.Logger) TrainerOption {
	return func(t *Trainer) {
		if logger != nil {
			t.logger = logger
		}
	}
}

// NewTrainer создает тренер поверх калькулятора схожести
func NewTrainer(calc *similarity.Calculator, opts ...TrainerOption) (*Trainer, error) {
	if calc == nil {
		return nil, algorithms.NewSimilarityError(algorithms.ErrCodeConfiguration,
			"trainer requires a similarity calculator", nil)
	}
	t := &Trainer{
		calc:               calc,
		minExamples:        DefaultMinExamples,
		validationFraction: DefaultValidationFraction,
		seed:               DefaultSeed,
		workingThreshold:   DefaultWorkingThreshold,
		folds:              DefaultCVFolds,
		logger:             slog.Default(),
		labeled:            make(map[string]struct{}),
		versions:           make(map[ModelKind]int),
	}
	for _, opt := range opts {
		opt(t)
	}

	if t.minExamples < 2 {
		return nil, algorithms.NewSimilarityError(algorithms.ErrCodeConfiguration,
			"min_training_examples must be at least 2", nil).
			WithDetail("min_training_examples", t.minExamples)
	}
	if t.validationFraction < 0 || t.validationFraction >= 1 {
		return nil, algorithms.NewSimilarityError(algorithms.ErrCodeConfiguration,
			fmt.Sprintf("validation fraction must be in [0, 1), got %.2f", t.validationFraction), nil)
	}
	if err := algorithms.ValidateThreshold("working_threshold", t.workingThreshold); err != nil {
		return nil, err
	}
	return t, nil
}

// State текущее состояние
func (t *Trainer) State() State {
	if t.model.Load() != nil {
		return StateTrained
	}
	return StateUntrained
}

// Model активная модель или nil
func (t *Trainer) Model() *ClassifierModel {
	return t.model.Load()
}

// History отчеты всех успешных обучений
func (t *Trainer) History() []PerformanceReport {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]PerformanceReport(nil), t.history...)
}

// Examples копия корпуса примеров
func (t *Trainer) Examples() []TrainingExample {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]TrainingExample(nil), t.examples...)
}

// ExampleCount число размеченных примеров
func (t *Trainer) ExampleCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.examples)
}

// AddTrainingExample добавляет размеченную пару. Признаки извлекаются из
// текстов, если не переданы. confidence используется как вес примера.
func (t *Trainer) AddTrainingExample(ctx context.Context, text1, text2 string, f1, f2 *features.FeatureVector, similar bool, confidence float64) (*TrainingExample, error) {
	if strings.TrimSpace(text1) == "" || strings.TrimSpace(text2) == "" {
		return nil, algorithms.NewSimilarityError(algorithms.ErrCodeInputValidation,
			"both texts of a training example must be non-empty", nil)
	}
	if math.IsNaN(confidence) || confidence <= 0 || confidence > 1 {
		return nil, algorithms.NewSimilarityError(algorithms.ErrCodeInputValidation,
			fmt.Sprintf("confidence must be in (0, 1], got %v", confidence), nil).
			WithDetail("confidence", confidence)
	}

	if f1 == nil {
		fv := t.calc.Extractor().FromText(text1, "")
		f1 = &fv
	}
	if f2 == nil {
		fv := t.calc.Extractor().FromText(text2, "")
		f2 = &fv
	}

	ex := &TrainingExample{
		ID:              uuid.New().String(),
		Text1:           text1,
		Text2:           text2,
		Features1:       *f1,
		Features2:       *f2,
		Scores:          t.components(ctx, f1, f2),
		UserSaysSimilar: similar,
		Confidence:      confidence,
		CreatedAt:       time.Now(),
	}

	if err := t.append(ex); err != nil {
		return nil, err
	}
	t.logger.Debug("training example added",
		"id", ex.ID,
		"similar", similar,
		"confidence", confidence,
		"heuristic", ex.Scores.Final)
	return ex, nil
}

// components оценки пары без модели; при сбое эмбеддингов берется эвристика
func (t *Trainer) components(ctx context.Context, a, b *features.FeatureVector) similarity.SimilarityScore {
	s, err := t.calc.Components(ctx, a, b)
	if err != nil {
		t.logger.Warn("component scoring failed, using heuristic",
			"text1", a.Original,
			"text2", b.Original,
			"error", err)
		return t.calc.Heuristic(a, b)
	}
	return s
}

// append сохраняет пример в хранилище и добавляет в корпус
func (t *Trainer) append(ex *TrainingExample) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.store != nil {
		if err := t.store.SaveExample(ex); err != nil {
			return fmt.Errorf("failed to save training example: %w", err)
		}
	}
	t.examples = append(t.examples, *ex)
	t.labeled[pairKey(ex.Text1, ex.Text2)] = struct{}{}
	return nil
}

// AddExamples добавляет готовые примеры (импорт). Примеры с уже известным ID пропускаются.
func (t *Trainer) AddExamples(examples []TrainingExample) (int, error) {
	t.mu.Lock()
	known := make(map[string]struct{}, len(t.examples))
	for _, ex := range t.examples {
		known[ex.ID] = struct{}{}
	}
	t.mu.Unlock()

	added := 0
	for i := range examples {
		ex := examples[i]
		if strings.TrimSpace(ex.Text1) == "" || strings.TrimSpace(ex.Text2) == "" ||
			math.IsNaN(ex.Confidence) || ex.Confidence <= 0 || ex.Confidence > 1 {
			return added, algorithms.NewSimilarityError(algorithms.ErrCodeInputValidation,
				"invalid training example", nil).
				WithDetail("index", i).
				WithDetail("id", ex.ID)
		}
		if ex.ID == "" {
			ex.ID = uuid.New().String()
		}
		if _, ok := known[ex.ID]; ok {
			continue
		}
		if ex.CreatedAt.IsZero() {
			ex.CreatedAt = time.Now()
		}
		if err := t.append(&ex); err != nil {
			return added, err
		}
		known[ex.ID] = struct{}{}
		added++
	}
	return added, nil
}

// LoadFromStore загружает корпус из хранилища
func (t *Trainer) LoadFromStore() (int, error) {
	if t.store == nil {
		return 0, nil
	}
	examples, err := t.store.LoadExamples()
	if err != nil {
		return 0, fmt.Errorf("failed to load training examples: %w", err)
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	known := make(map[string]struct{}, len(t.examples))
	for _, ex := range t.examples {
		known[ex.ID] = struct{}{}
	}
	added := 0
	for _, ex := range examples {
		if _, ok := known[ex.ID]; ok {
			continue
		}
		t.examples = append(t.examples, ex)
		t.labeled[pairKey(ex.Text1, ex.Text2)] = struct{}{}
		added++
	}
	t.logger.Info("training examples loaded from store", "count", added)
	return added, nil
}

// dataset матрица признаков, метки и веса корпуса
type dataset struct {
	x      [][]float64
	y      []float64
	w      []float64
	labels []bool
}

func newDataset(examples []TrainingExample) dataset {
	d := dataset{
		x:      make([][]float64, len(examples)),
		y:      make([]float64, len(examples)),
		w:      make([]float64, len(examples)),
		labels: make([]bool, len(examples)),
	}
	for i := range examples {
		ex := &examples[i]
		d.x[i] = pairFeatures(&ex.Features1, &ex.Features2, ex.Scores)
		d.w[i] = ex.Confidence
		d.labels[i] = ex.UserSaysSimilar
		if ex.UserSaysSimilar {
			d.y[i] = 1
		}
	}
	return d
}

func (d dataset) subset(idx []int) dataset {
	s := dataset{
		x:      make([][]float64, len(idx)),
		y:      make([]float64, len(idx)),
		w:      make([]float64, len(idx)),
		labels: make([]bool, len(idx)),
	}
	for k, i := range idx {
		s.x[k], s.y[k], s.w[k], s.labels[k] = d.x[i], d.y[i], d.w[i], d.labels[i]
	}
	return s
}

// classIndices индексы положительных и отрицательных примеров
func classIndices(labels []bool) (pos, neg []int) {
	for i, l := range labels {
		if l {
			pos = append(pos, i)
		} else {
			neg = append(neg, i)
		}
	}
	return pos, neg
}

// stratifiedSplit детерминированно делит индексы с сохранением долей классов.
// В обучении остается хотя бы один пример каждого класса.
func stratifiedSplit(labels []bool, fraction float64, rng *rand.Rand) (train, validation []int) {
	pos, neg := classIndices(labels)
	for _, class := range [][]int{pos, neg} {
		idx := append([]int(nil), class...)
		rng.Shuffle(len(idx), func(i, j int) { idx[i], idx[j] = idx[j], idx[i] })

		n := len(idx)
		nVal := int(math.Round(fraction * float64(n)))
		if fraction > 0 && nVal == 0 && n > 1 {
			nVal = 1
		}
		if nVal > n-1 {
			nVal = n - 1
		}
		validation = append(validation, idx[:nVal]...)
		train = append(train, idx[nVal:]...)
	}
	sort.Ints(train)
	sort.Ints(validation)
	return train, validation
}

// fit обучает масштабирование и классификатор на выборке
func (t *Trainer) fit(kind ModelKind, d dataset) (Classifier, *Scaler, error) {
	clf, err := newClassifier(kind, t.seed)
	if err != nil {
		return nil, nil, err
	}
	scaler := FitScaler(d.x)
	if err := clf.Fit(scaler.TransformAll(d.x), d.y, d.w); err != nil {
		return nil, nil, err
	}
	return clf, scaler, nil
}

func predictAll(clf Classifier, scaler *Scaler, x [][]float64) []float64 {
	probs := make([]float64, len(x))
	for i, row := range x {
		probs[i] = algorithms.Clamp01(clf.PredictProba(scaler.Transform(row)))
	}
	return probs
}

// TrainModel обучает классификатор выбранного семейства. При ошибке
// активной остается предыдущая модель.
func (t *Trainer) TrainModel(ctx context.Context, kind ModelKind, validate bool) (*PerformanceReport, error) {
	if _, err := newClassifier(kind, t.seed); err != nil {
		return nil, err
	}
	examples := t.Examples()
	if len(examples) < t.minExamples {
		return nil, algorithms.NewSimilarityError(algorithms.ErrCodeInsufficientTrainingData,
			fmt.Sprintf("need at least %d training examples, have %d", t.minExamples, len(examples)), nil).
			WithDetail("required", t.minExamples).
			WithDetail("available", len(examples))
	}

	data := newDataset(examples)
	pos, neg := classIndices(data.labels)
	if len(pos) == 0 || len(neg) == 0 {
		return nil, algorithms.NewSimilarityError(algorithms.ErrCodeTrainingFailed,
			"training examples contain a single class", nil).
			WithDetail("positive", len(pos)).
			WithDetail("negative", len(neg))
	}

	start := time.Now()
	rng := rand.New(rand.NewSource(t.seed))
	trainIdx, valIdx := stratifiedSplit(data.labels, t.validationFraction, rng)
	train := data.subset(trainIdx)

	clf, scaler, err := t.fit(kind, train)
	if err != nil {
		return nil, algorithms.NewSimilarityError(algorithms.ErrCodeTrainingFailed,
			"classifier fit failed", err).
			WithDetail("model_type", kind)
	}

	eval := train
	if len(valIdx) > 0 {
		eval = data.subset(valIdx)
	}
	probs := predictAll(clf, scaler, eval.x)
	report := newReport(probs, eval.labels)
	report.TrainingExamples = len(trainIdx)

	if validate {
		scores, err := t.crossValidate(ctx, kind, data, rng)
		if err != nil {
			return nil, err
		}
		if len(scores) > 0 {
			report.CrossValidationF1 = scores
			var sum float64
			for _, f := range scores {
				sum += f
			}
			report.MeanCVF1 = sum / float64(len(scores))
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	t.mu.Lock()
	t.versions[kind]++
	version := fmt.Sprintf("%s_v%d", kind, t.versions[kind])
	model := &ClassifierModel{
		ID:               uuid.New().String(),
		Version:          version,
		Kind:             kind,
		TrainedAt:        time.Now(),
		classifier:       clf,
		scaler:           scaler,
		validationProbs:  probs,
		validationLabels: eval.labels,
	}
	report.ModelID = model.ID
	report.ModelVersion = version
	report.ModelType = kind
	report.Timestamp = model.TrainedAt
	model.Report = report
	t.model.Store(model)
	t.history = append(t.history, report)
	t.mu.Unlock()

	if t.store != nil {
		if err := t.store.SaveReport(&report); err != nil {
			t.logger.Warn("failed to save performance report", "version", version, "error", err)
		}
	}

	t.logger.Info("model trained",
		"version", version,
		"examples", len(examples),
		"accuracy", report.Accuracy,
		"f1", report.F1,
		"auc", report.AUC,
		"duration_ms", time.Since(start).Milliseconds())
	return &report, nil
}

// crossValidate стратифицированная k-fold кросс-валидация, F1 каждого фолда
func (t *Trainer) crossValidate(ctx context.Context, kind ModelKind, data dataset, rng *rand.Rand) ([]float64, error) {
	pos, neg := classIndices(data.labels)
	k := t.folds
	if k > len(pos) {
		k = len(pos)
	}
	if k > len(neg) {
		k = len(neg)
	}
	if k < 2 {
		t.logger.Debug("cross-validation skipped", "positive", len(pos), "negative", len(neg))
		return nil, nil
	}

	fold := make([]int, len(data.labels))
	for _, class := range [][]int{pos, neg} {
		idx := append([]int(nil), class...)
		rng.Shuffle(len(idx), func(i, j int) { idx[i], idx[j] = idx[j], idx[i] })
		for n, i := range idx {
			fold[i] = n % k
		}
	}

	scores := make([]float64, 0, k)
	for f := 0; f < k; f++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		var trainIdx, testIdx []int
		for i := range fold {
			if fold[i] == f {
				testIdx = append(testIdx, i)
			} else {
				trainIdx = append(trainIdx, i)
			}
		}
		test := data.subset(testIdx)
		clf, scaler, err := t.fit(kind, data.subset(trainIdx))
		if err != nil {
			return nil, algorithms.NewSimilarityError(algorithms.ErrCodeTrainingFailed,
				"cross-validation fit failed", err).
				WithDetail("fold", f)
		}
		m := algorithms.EvaluateAt(predictAll(clf, scaler, test.x), test.labels, decisionBoundary)
		scores = append(scores, m.F1Score())
	}
	return scores, nil
}

func notTrained() error {
	return algorithms.NewSimilarityError(algorithms.ErrCodeNotTrained,
		"model is not trained", nil)
}

// PredictProbability вероятность схожести пары по активной модели.
// Позволяет подключить тренер к калькулятору схожести.
func (t *Trainer) PredictProbability(a, b *features.FeatureVector, s similarity.SimilarityScore) (float64, error) {
	model := t.model.Load()
	if model == nil {
		return 0, notTrained()
	}
	return model.Predict(a, b, s), nil
}

// PredictSimilarity решение и вероятность обученной модели для пары
func (t *Trainer) PredictSimilarity(ctx context.Context, f1, f2 *features.FeatureVector) (bool, float64, error) {
	model := t.model.Load()
	if model == nil {
		return false, 0, notTrained()
	}
	if f1 == nil || f2 == nil {
		return false, 0, algorithms.NewSimilarityError(algorithms.ErrCodeInputValidation,
			"feature vectors must not be nil", nil)
	}
	s, err := t.calc.Components(ctx, f1, f2)
	if err != nil {
		return false, 0, err
	}
	p := model.Predict(f1, f2, s)
	return p >= decisionBoundary, p, nil
}

// GetOptimalThreshold порог с максимальным F1 на сетке 0.05..0.95.
// Для обученной модели перебираются вероятности валидационной выборки,
// до обучения - эвристические оценки всех примеров.
func (t *Trainer) GetOptimalThreshold() (float64, *algorithms.EvaluationMetrics) {
	var scores []float64
	var labels []bool
	if model := t.model.Load(); model != nil {
		scores, labels = model.validationProbs, model.validationLabels
	} else {
		for _, ex := range t.Examples() {
			scores = append(scores, ex.Scores.Final)
			labels = append(labels, ex.UserSaysSimilar)
		}
	}
	if len(scores) == 0 {
		return t.workingThreshold, algorithms.NewEvaluationMetrics()
	}
	best := algorithms.BestF1Threshold(scores, labels, algorithms.ThresholdGrid(0.05, 0.95, 0.05))
	return best.Threshold, best.Metrics
}

// SuggestTrainingExamples выбирает n пар с максимальной неопределенностью.
// Обученная модель: расстояние вероятности до 0.5; до обучения - расстояние
// эвристической оценки до рабочего порога. Уже размеченные пары пропускаются.
func (t *Trainer) SuggestTrainingExamples(ctx context.Context, pairs []CandidatePair, n int) ([]Suggestion, error) {
	if n <= 0 {
		return nil, algorithms.NewSimilarityError(algorithms.ErrCodeInputValidation,
			fmt.Sprintf("number of suggestions must be positive, got %d", n), nil)
	}

	t.mu.Lock()
	labeled := make(map[string]struct{}, len(t.labeled))
	for k := range t.labeled {
		labeled[k] = struct{}{}
	}
	t.mu.Unlock()

	model := t.model.Load()
	suggestions := make([]Suggestion, 0, len(pairs))
	for _, p := range pairs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if _, ok := labeled[pairKey(p.Text1, p.Text2)]; ok {
			continue
		}

		f1, f2 := p.Features1, p.Features2
		if f1 == nil {
			fv := t.calc.Extractor().FromText(p.Text1, "")
			f1 = &fv
		}
		if f2 == nil {
			fv := t.calc.Extractor().FromText(p.Text2, "")
			f2 = &fv
		}
		s := t.components(ctx, f1, f2)

		sg := Suggestion{Text1: p.Text1, Text2: p.Text2, Scores: s}
		if model != nil {
			sg.Confidence = model.Predict(f1, f2, s)
			sg.Boundary = decisionBoundary
			sg.Source = SourceModel
		} else {
			sg.Confidence = s.Final
			sg.Boundary = t.workingThreshold
			sg.Source = SourceHeuristic
		}
		sg.Uncertainty = math.Abs(sg.Confidence - sg.Boundary)
		suggestions = append(suggestions, sg)
	}

	sort.SliceStable(suggestions, func(i, j int) bool {
		return suggestions[i].Uncertainty < suggestions[j].Uncertainty
	})
	if len(suggestions) > n {
		suggestions = suggestions[:n]
	}
	return suggestions, nil
}
