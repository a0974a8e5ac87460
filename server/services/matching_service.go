package services

import (
	"context"
	"fmt"
	"log/slog"

	"productsim/matching"
	"productsim/normalization/algorithms"
	"productsim/server/middleware"
)

// MatchRequest запрос на сопоставление набора записей.
// Незаданные пороги и параметры выборки берутся из конфигурации.
// UseCalibratedThreshold строит уровни от оптимального по F1 порога
// обученной модели; явно заданные пороги имеют приоритет.
type MatchRequest struct {
	Records                []matching.ProductRecord `json:"records"`
	DuplicateThreshold     *float64                 `json:"duplicate_threshold,omitempty"`
	SimilarThreshold       *float64                 `json:"similar_threshold,omitempty"`
	MinFrequency           *int                     `json:"min_frequency,omitempty"`
	SampleSize             *int                     `json:"sample_size,omitempty"`
	UseCalibratedThreshold bool                     `json:"use_calibrated_threshold,omitempty"`
}

// MatchResponse результат сопоставления с рекомендациями.
// CalibratedThreshold заполняется, если уровни построены от порога модели.
type MatchResponse struct {
	Result              *matching.MatchingResult `json:"result"`
	Recommendations     []string                 `json:"recommendations"`
	InputRecords        int                      `json:"input_records"`
	SelectedRecords     int                      `json:"selected_records"`
	CalibratedThreshold *float64                 `json:"calibrated_threshold,omitempty"`
}

// SearchRequest запрос поиска похожих записей
type SearchRequest struct {
	Target  string                   `json:"target"`
	Records []matching.ProductRecord `json:"records"`
	Limit   int                      `json:"limit"`
}

// ThresholdCalibrator источник откалиброванного порога схожести.
// ok == false, если модель не обучена.
type ThresholdCalibrator interface {
	CalibratedThreshold() (threshold float64, ok bool)
}

// MatchingService сервис группировки дубликатов и похожих товаров
type MatchingService struct {
	cfg          matching.Config
	minFrequency int
	sampleSize   int
	scorer       matching.Scorer
	warmer       matching.Warmer
	calibrator   ThresholdCalibrator
	logger       *slog.Logger
}

// NewMatchingService создает сервис сопоставления. warmer может быть nil.
func NewMatchingService(cfg matching.Config, minFrequency, sampleSize int, scorer matching.Scorer, warmer matching.Warmer, logger *slog.Logger) *MatchingService {
	if logger == nil {
		logger = slog.Default()
	}
	return &MatchingService{
		cfg:          cfg,
		minFrequency: minFrequency,
		sampleSize:   sampleSize,
		scorer:       scorer,
		warmer:       warmer,
		logger:       logger,
	}
}

// SetCalibrator подключает источник откалиброванного порога
func (s *MatchingService) SetCalibrator(c ThresholdCalibrator) {
	s.calibrator = c
}

// calibratedTiers переносит пороги уровней на шкалу модели: similar равен
// откалиброванному порогу, duplicate сохраняет относительный зазор до 1
func calibratedTiers(threshold float64, cfg matching.Config) (duplicate, similar float64) {
	gap := 0.5
	if cfg.SimilarThreshold < 1 {
		gap = (cfg.DuplicateThreshold - cfg.SimilarThreshold) / (1 - cfg.SimilarThreshold)
	}
	return threshold + (1-threshold)*gap, threshold
}

func (s *MatchingService) matcher(cfg matching.Config) (*matching.Matcher, error) {
	opts := []matching.Option{matching.WithLogger(s.logger)}
	if s.warmer != nil {
		opts = append(opts, matching.WithWarmer(s.warmer))
	}
	return matching.NewMatcher(cfg, s.scorer, opts...)
}

// Matcher сопоставитель с настройками из конфигурации
func (s *MatchingService) Matcher() (*matching.Matcher, error) {
	return s.matcher(s.cfg)
}

// Match отбирает записи по частоте и группирует их
func (s *MatchingService) Match(ctx context.Context, req MatchRequest) (*MatchResponse, error) {
	cfg := s.cfg
	var calibrated *float64
	if req.UseCalibratedThreshold {
		if s.calibrator == nil {
			return nil, algorithms.NewSimilarityError(algorithms.ErrCodeConfiguration,
				"threshold calibration is not configured", nil)
		}
		threshold, ok := s.calibrator.CalibratedThreshold()
		if !ok {
			return nil, algorithms.NewSimilarityError(algorithms.ErrCodeNotTrained,
				"calibrated threshold requires a trained model", nil)
		}
		cfg.DuplicateThreshold, cfg.SimilarThreshold = calibratedTiers(threshold, s.cfg)
		calibrated = &threshold
	}
	if req.DuplicateThreshold != nil {
		cfg.DuplicateThreshold = *req.DuplicateThreshold
	}
	if req.SimilarThreshold != nil {
		cfg.SimilarThreshold = *req.SimilarThreshold
	}
	minFrequency, sampleSize := s.minFrequency, s.sampleSize
	if req.MinFrequency != nil {
		minFrequency = *req.MinFrequency
	}
	if req.SampleSize != nil {
		sampleSize = *req.SampleSize
	}
	if minFrequency < 1 {
		return nil, algorithms.NewSimilarityError(algorithms.ErrCodeInputValidation,
			fmt.Sprintf("min_frequency must be at least 1, got %d", minFrequency), nil)
	}
	if sampleSize < 0 {
		return nil, algorithms.NewSimilarityError(algorithms.ErrCodeInputValidation,
			fmt.Sprintf("sample_size must not be negative, got %d", sampleSize), nil)
	}

	m, err := s.matcher(cfg)
	if err != nil {
		return nil, err
	}

	selected := matching.SelectRecords(req.Records, minFrequency, sampleSize)
	result, err := m.Match(ctx, selected)
	if err != nil {
		return nil, err
	}

	middleware.Logger(ctx, s.logger).Info("matching completed",
		"run_id", result.RunID,
		"input_records", len(req.Records),
		"selected_records", len(selected),
		"duplicate_groups", len(result.DuplicateGroups),
		"similar_groups", len(result.SimilarGroups),
		"duplicate_threshold", cfg.DuplicateThreshold,
		"similar_threshold", cfg.SimilarThreshold)

	return &MatchResponse{
		Result:              result,
		Recommendations:     matching.Recommendations(result),
		InputRecords:        len(req.Records),
		SelectedRecords:     len(selected),
		CalibratedThreshold: calibrated,
	}, nil
}

// FindSimilar ищет записи, похожие на целевое описание
func (s *MatchingService) FindSimilar(ctx context.Context, req SearchRequest) ([]matching.Neighbor, error) {
	m, err := s.matcher(s.cfg)
	if err != nil {
		return nil, err
	}
	return m.FindSimilar(ctx, req.Target, req.Records, req.Limit)
}
