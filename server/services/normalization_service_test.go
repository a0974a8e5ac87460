package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"productsim/matching"
	"productsim/normalization"
	"productsim/normalization/algorithms"
)

func TestNormalizationServiceNormalize(t *testing.T) {
	s := NewNormalizationService(normalization.NewProductNormalizer(16, nil))

	result, err := s.Normalize(context.Background(), "COCA COLA LATA 350ML")
	require.NoError(t, err)
	assert.Equal(t, "coca-cola", result.Brand)
	assert.False(t, result.Empty)

	_, err = s.Normalize(context.Background(), "   ")
	assert.True(t, algorithms.IsInputValidation(err))
}

func TestNormalizationServiceLearnBrands(t *testing.T) {
	s := NewNormalizationService(normalization.NewProductNormalizer(16, nil))
	req := LearnBrandsRequest{
		Corpus: []string{
			"ARROZ BROTO LEGAL TIPO 1 5KG",
			"FEIJAO BROTO CARIOCA 1KG",
		},
		Records: []matching.ProductRecord{
			{Description: "ACUCAR BROTO REFINADO 1KG"},
			{Description: "ARROZ CAMIL TIPO 1 5KG"},
		},
		MinOccurrences: 3,
		DryRun:         true,
	}

	resp, err := s.LearnBrands(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, resp.Candidates, 1)
	assert.Equal(t, "broto", resp.Candidates[0].Token)
	assert.Empty(t, resp.Learned)
	assert.Empty(t, resp.Total)
	assert.Equal(t, 0, s.Stats().LearnedBrands)

	req.DryRun = false
	resp, err = s.LearnBrands(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, []string{"broto"}, resp.Learned)
	assert.Equal(t, []string{"broto"}, resp.Total)
	assert.Equal(t, 1, s.Stats().LearnedBrands)

	_, err = s.LearnBrands(context.Background(), LearnBrandsRequest{})
	assert.True(t, algorithms.IsInputValidation(err))
}
