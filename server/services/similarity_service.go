package services

import (
	"context"
	"strings"

	"productsim/features"
	"productsim/normalization/algorithms"
	"productsim/similarity"
)

// CompareResult результат сравнения двух описаний
type CompareResult struct {
	Text1     string                     `json:"text1"`
	Text2     string                     `json:"text2"`
	Features1 features.FeatureVector     `json:"features1"`
	Features2 features.FeatureVector     `json:"features2"`
	Score     similarity.SimilarityScore `json:"score"`
	Weights   similarity.Weights         `json:"weights"`
}

// SimilarityService сервис попарного сравнения описаний
type SimilarityService struct {
	calc *similarity.Calculator
}

// NewSimilarityService создает новый сервис схожести
func NewSimilarityService(calc *similarity.Calculator) *SimilarityService {
	return &SimilarityService{calc: calc}
}

// Compare сравнивает два описания и возвращает разложение оценки
func (ss *SimilarityService) Compare(ctx context.Context, text1, text2 string) (*CompareResult, error) {
	if strings.TrimSpace(text1) == "" || strings.TrimSpace(text2) == "" {
		return nil, algorithms.NewSimilarityError(algorithms.ErrCodeInputValidation,
			"both descriptions are required", nil)
	}

	extractor := ss.calc.Extractor()
	f1 := extractor.FromText(text1, "")
	f2 := extractor.FromText(text2, "")
	score, err := ss.calc.Score(ctx, &f1, &f2)
	if err != nil {
		return nil, err
	}

	return &CompareResult{
		Text1:     text1,
		Text2:     text2,
		Features1: f1,
		Features2: f2,
		Score:     score,
		Weights:   ss.calc.Weights(),
	}, nil
}
