package services

import (
	"context"
	"strings"

	"productsim/matching"
	"productsim/normalization"
	"productsim/normalization/algorithms"
)

// LearnBrandsRequest корпус для частотного поиска марок.
// Описания берутся из Corpus и из Records.
type LearnBrandsRequest struct {
	Corpus         []string                 `json:"corpus,omitempty"`
	Records        []matching.ProductRecord `json:"records,omitempty"`
	MinOccurrences int                      `json:"min_occurrences"`
	DryRun         bool                     `json:"dry_run"`
}

// LearnBrandsResponse найденные кандидаты и добавленные в лексикон марки
type LearnBrandsResponse struct {
	Candidates []normalization.BrandCandidate `json:"candidates"`
	Learned    []string                       `json:"learned"`
	Total      []string                       `json:"total_learned"`
}

// NormalizationService сервис нормализации наименований и лексикона марок
type NormalizationService struct {
	normalizer *normalization.ProductNormalizer
}

// NewNormalizationService создает сервис нормализации
func NewNormalizationService(normalizer *normalization.ProductNormalizer) *NormalizationService {
	return &NormalizationService{normalizer: normalizer}
}

// Normalize нормализует одно наименование
func (s *NormalizationService) Normalize(ctx context.Context, text string) (*normalization.NormalizedProduct, error) {
	if strings.TrimSpace(text) == "" {
		return nil, algorithms.NewSimilarityError(algorithms.ErrCodeInputValidation, "text is empty", nil).
			WithDetail("field", "text")
	}
	result := s.normalizer.Normalize(text)
	return &result, nil
}

// LearnBrands ищет марки в корпусе; без DryRun добавляет их в лексикон
func (s *NormalizationService) LearnBrands(ctx context.Context, req LearnBrandsRequest) (*LearnBrandsResponse, error) {
	corpus := make([]string, 0, len(req.Corpus)+len(req.Records))
	corpus = append(corpus, req.Corpus...)
	for _, r := range req.Records {
		corpus = append(corpus, r.Description)
	}
	if len(corpus) == 0 {
		return nil, algorithms.NewSimilarityError(algorithms.ErrCodeInputValidation, "corpus is empty", nil)
	}
	if req.MinOccurrences < 0 {
		return nil, algorithms.NewSimilarityError(algorithms.ErrCodeInputValidation, "min_occurrences must be non-negative", nil).
			WithDetail("min_occurrences", req.MinOccurrences)
	}

	resp := &LearnBrandsResponse{
		Candidates: s.normalizer.DiscoverBrands(corpus, req.MinOccurrences),
		Learned:    []string{},
	}
	if resp.Candidates == nil {
		resp.Candidates = []normalization.BrandCandidate{}
	}
	if !req.DryRun {
		if learned := s.normalizer.LearnBrands(corpus, req.MinOccurrences); learned != nil {
			resp.Learned = learned
		}
	}
	resp.Total = s.normalizer.LearnedBrands()
	return resp, nil
}

// Stats статистика нормализатора
func (s *NormalizationService) Stats() normalization.NormalizerStats {
	return s.normalizer.Stats()
}
