package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"productsim/matching"
	"productsim/normalization/algorithms"
	"productsim/server/middleware"
	"productsim/similarity"
	"productsim/training"
)

// LabelRequest разметка пары пользователем
type LabelRequest struct {
	Text1      string  `json:"text1"`
	Text2      string  `json:"text2"`
	Similar    bool    `json:"similar"`
	Confidence float64 `json:"confidence"`
}

// TrainRequest запрос на обучение модели
type TrainRequest struct {
	ModelType string `json:"model_type,omitempty"`
	Validate  bool   `json:"validate"`
}

// PredictResponse решение обученной модели для пары
type PredictResponse struct {
	Text1        string  `json:"text1"`
	Text2        string  `json:"text2"`
	Similar      bool    `json:"similar"`
	Probability  float64 `json:"probability"`
	ModelVersion string  `json:"model_version"`
}

// SuggestRequest запрос подсказок для разметки. Пары берутся либо явно,
// либо строятся блокировкой по набору записей.
type SuggestRequest struct {
	Pairs   []training.CandidatePair `json:"pairs,omitempty"`
	Records []matching.ProductRecord `json:"records,omitempty"`
	N       int                      `json:"n"`
}

// ThresholdResponse оптимальный порог и метрики на нем
type ThresholdResponse struct {
	Threshold float64                       `json:"threshold"`
	State     training.State                `json:"state"`
	Precision float64                       `json:"precision"`
	Recall    float64                       `json:"recall"`
	F1        float64                       `json:"f1"`
	Accuracy  float64                       `json:"accuracy"`
	Metrics   *algorithms.EvaluationMetrics `json:"metrics"`
}

// TrainingStatus состояние тренера
type TrainingStatus struct {
	State         training.State               `json:"state"`
	Examples      int                          `json:"examples"`
	ModelVersion  string                       `json:"model_version,omitempty"`
	ModelType     training.ModelKind           `json:"model_type,omitempty"`
	ModelAttached bool                         `json:"model_attached"`
	History       []training.PerformanceReport `json:"history"`
}

// TrainingService сервис разметки, обучения и активного обучения
type TrainingService struct {
	trainer     *training.Trainer
	calc        *similarity.Calculator
	matching    *MatchingService
	defaultKind training.ModelKind
	mode        similarity.ModelMode
	alpha       float64
	logger      *slog.Logger
}

// NewTrainingService создает сервис обучения. После успешного обучения
// модель подключается к калькулятору в режиме mode.
func NewTrainingService(trainer *training.Trainer, calc *similarity.Calculator, matchingService *MatchingService,
	defaultKind training.ModelKind, mode similarity.ModelMode, alpha float64, logger *slog.Logger) *TrainingService {
	if logger == nil {
		logger = slog.Default()
	}
	s := &TrainingService{
		trainer:     trainer,
		calc:        calc,
		matching:    matchingService,
		defaultKind: defaultKind,
		mode:        mode,
		alpha:       alpha,
		logger:      logger,
	}
	if matchingService != nil {
		matchingService.SetCalibrator(s)
	}
	return s
}

// AddExample добавляет размеченную пару в корпус
func (s *TrainingService) AddExample(ctx context.Context, req LabelRequest) (*training.TrainingExample, error) {
	return s.trainer.AddTrainingExample(ctx, req.Text1, req.Text2, nil, nil, req.Similar, req.Confidence)
}

// Train обучает модель и подключает ее к калькулятору схожести
func (s *TrainingService) Train(ctx context.Context, req TrainRequest) (*training.PerformanceReport, error) {
	kind := s.defaultKind
	if req.ModelType != "" {
		k, err := training.ParseModelKind(req.ModelType)
		if err != nil {
			return nil, err
		}
		kind = k
	}

	report, err := s.trainer.TrainModel(ctx, kind, req.Validate)
	if err != nil {
		return nil, err
	}

	s.calc.SetModel(s.trainer, s.mode, s.alpha)
	middleware.Logger(ctx, s.logger).Info("model attached to similarity calculator",
		"version", report.ModelVersion,
		"mode", modeName(s.mode))
	return report, nil
}

// Predict решение обученной модели для пары описаний
func (s *TrainingService) Predict(ctx context.Context, text1, text2 string) (*PredictResponse, error) {
	if strings.TrimSpace(text1) == "" || strings.TrimSpace(text2) == "" {
		return nil, algorithms.NewSimilarityError(algorithms.ErrCodeInputValidation,
			"both descriptions are required", nil)
	}
	extractor := s.calc.Extractor()
	f1 := extractor.FromText(text1, "")
	f2 := extractor.FromText(text2, "")

	similar, p, err := s.trainer.PredictSimilarity(ctx, &f1, &f2)
	if err != nil {
		return nil, err
	}
	resp := &PredictResponse{Text1: text1, Text2: text2, Similar: similar, Probability: p}
	if model := s.trainer.Model(); model != nil {
		resp.ModelVersion = model.Version
	}
	return resp, nil
}

// Suggest выбирает пары, которые полезнее всего разметить следующими
func (s *TrainingService) Suggest(ctx context.Context, req SuggestRequest) ([]training.Suggestion, error) {
	pairs := req.Pairs
	if len(req.Records) > 0 {
		m, err := s.matching.Matcher()
		if err != nil {
			return nil, err
		}
		for _, cp := range m.CandidatePairs(req.Records) {
			f1, f2 := cp.LeftFeatures, cp.RightFeatures
			pairs = append(pairs, training.CandidatePair{
				Text1:     cp.Left.Description,
				Text2:     cp.Right.Description,
				Features1: &f1,
				Features2: &f2,
			})
		}
	}
	if len(pairs) == 0 {
		return nil, algorithms.NewSimilarityError(algorithms.ErrCodeInputValidation,
			"pairs or records are required", nil)
	}
	return s.trainer.SuggestTrainingExamples(ctx, pairs, req.N)
}

// Threshold оптимальный по F1 порог
func (s *TrainingService) Threshold() *ThresholdResponse {
	threshold, m := s.trainer.GetOptimalThreshold()
	return &ThresholdResponse{
		Threshold: threshold,
		State:     s.trainer.State(),
		Precision: m.Precision(),
		Recall:    m.Recall(),
		F1:        m.F1Score(),
		Accuracy:  m.Accuracy(),
		Metrics:   m,
	}
}

// CalibratedThreshold оптимальный по F1 порог подключенной модели
func (s *TrainingService) CalibratedThreshold() (float64, bool) {
	if s.trainer.State() != training.StateTrained || !s.calc.HasModel() {
		return 0, false
	}
	threshold, _ := s.trainer.GetOptimalThreshold()
	return threshold, true
}

// Status состояние тренера и история моделей
func (s *TrainingService) Status() *TrainingStatus {
	st := &TrainingStatus{
		State:         s.trainer.State(),
		Examples:      s.trainer.ExampleCount(),
		ModelAttached: s.calc.HasModel(),
		History:       s.trainer.History(),
	}
	if model := s.trainer.Model(); model != nil {
		st.ModelVersion = model.Version
		st.ModelType = model.Kind
	}
	if st.History == nil {
		st.History = []training.PerformanceReport{}
	}
	return st
}

// Export выгружает корпус в потоковом формате (JSON Lines или CSV)
func (s *TrainingService) Export(w io.Writer, format training.ExportFormat) error {
	return s.trainer.Export(w, format)
}

// ExportXLSX сохраняет корпус и историю моделей в файл Excel
func (s *TrainingService) ExportXLSX(filename string) error {
	return s.trainer.ExportXLSX(filename)
}

// Import загружает примеры из JSON Lines
func (s *TrainingService) Import(r io.Reader) (int, error) {
	n, err := s.trainer.ImportJSONL(r)
	if err != nil {
		return n, err
	}
	s.logger.Info("training examples imported", "count", n)
	return n, nil
}

func modeName(mode similarity.ModelMode) string {
	switch mode {
	case similarity.ModelReplace:
		return "replace"
	case similarity.ModelBlend:
		return "blend"
	default:
		return fmt.Sprintf("mode(%d)", int(mode))
	}
}
