package similarity

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"productsim/features"
	"productsim/normalization/algorithms"
)

type stubEmbedding struct {
	available bool
	sim       float64
	err       error
}

func (s stubEmbedding) Available() bool { return s.available }

func (s stubEmbedding) TextSimilarity(ctx context.Context, text1, text2 string) (float64, error) {
	return s.sim, s.err
}

type stubModel struct {
	p   float64
	err error
}

func (m stubModel) PredictProbability(a, b *features.FeatureVector, s SimilarityScore) (float64, error) {
	return m.p, m.err
}

func newTestCalculator(t *testing.T, opts ...Option) *Calculator {
	t.Helper()
	c, err := NewCalculator(opts...)
	require.NoError(t, err)
	return c
}

func TestScoreComponents(t *testing.T) {
	c := newTestCalculator(t)
	ctx := context.Background()

	s, err := c.Compare(ctx, "COCA COLA LATA 350ML", "COCA-COLA REFRIGERANTE LATA 350ML")
	require.NoError(t, err)

	assert.InDelta(t, 2.0/3.0, s.Lexical, 1e-9)
	assert.InDelta(t, 1-13.0/33.0, s.Edit, 1e-9)
	assert.True(t, s.HasStructural)
	assert.Equal(t, 1.0, s.Structural)
	assert.Equal(t, 0.10, s.BrandBonus)
	assert.False(t, s.EmbeddingUsed)
	assert.False(t, s.ModelUsed)

	expected := 0.45*(2.0/3.0) + 0.25*(1-13.0/33.0) + 0.30 + 0.10
	assert.InDelta(t, expected, s.Final, 1e-9)
	assert.Greater(t, s.Final, 0.75, "coca-cola variants are duplicates at 0.75")
}

func TestScoreRiceVariants(t *testing.T) {
	c := newTestCalculator(t)
	s, err := c.Compare(context.Background(), "ARROZ CAMIL TIPO 1 5KG", "ARROZ CAMIL AGULHINHA TIPO1 5000G")
	require.NoError(t, err)

	assert.Equal(t, 0.75, s.Lexical)
	assert.Equal(t, 1.0, s.Structural, "5kg and 5000g are the same quantity")
	assert.Greater(t, s.Final, 0.75)
}

func TestScoreUnrelated(t *testing.T) {
	c := newTestCalculator(t)
	s, err := c.Compare(context.Background(), "COCA COLA LATA 350ML", "SABAO EM PO OMO 1KG")
	require.NoError(t, err)

	assert.Equal(t, 0.0, s.Lexical)
	assert.Equal(t, 0.0, s.Structural, "volume and mass never agree")
	assert.Equal(t, 0.0, s.BrandBonus)
	assert.Less(t, s.Final, 0.5)
}

func TestScoreWithoutStructuralSignal(t *testing.T) {
	c := newTestCalculator(t)
	s, err := c.Compare(context.Background(), "BANANA PRATA", "BANANA NANICA")
	require.NoError(t, err)

	assert.False(t, s.HasStructural)
	expected := (0.45*s.Lexical + 0.25*s.Edit) / 0.70
	assert.InDelta(t, expected, s.Final, 1e-9)
}

func TestScoreReflexive(t *testing.T) {
	c := newTestCalculator(t)
	ctx := context.Background()

	for _, text := range []string{"OMO 1KG", "", "LEITE ITALAC 1L", "banana"} {
		fv := c.Extractor().FromText(text, "")
		s, err := c.Score(ctx, &fv, &fv)
		require.NoError(t, err)
		assert.Equal(t, 1.0, s.Final, "score(a, a) must be 1 for %q", text)
	}
}

func TestScoreCode(t *testing.T) {
	c := newTestCalculator(t)
	a := c.Extractor().FromText("LEITE ITALAC INTEGRAL", "7898080640017")
	b := c.Extractor().FromText("LEITE ITALAC", "7898080640017")
	d := c.Extractor().FromText("LEITE ITALAC", "7898080640024")

	same, err := c.Score(context.Background(), &a, &b)
	require.NoError(t, err)
	diff, err := c.Score(context.Background(), &a, &d)
	require.NoError(t, err)

	assert.Equal(t, 1.0, same.Structural)
	assert.Equal(t, 0.0, diff.Structural)
	assert.Greater(t, same.Final, diff.Final)
}

func TestScoreProperties(t *testing.T) {
	c := newTestCalculator(t, WithLexicalMetric(MetricDice))
	faker := gofakeit.New(42)
	ctx := context.Background()

	texts := make([]string, 60)
	for i := range texts {
		texts[i] = fakeDescription(faker)
	}

	for i := 0; i < len(texts); i++ {
		a := c.Extractor().FromText(texts[i], "")
		for j := i; j < len(texts); j++ {
			b := c.Extractor().FromText(texts[j], "")

			ab, err := c.Score(ctx, &a, &b)
			require.NoError(t, err)
			ba, err := c.Score(ctx, &b, &a)
			require.NoError(t, err)

			if ab.Final < 0 || ab.Final > 1 || math.IsNaN(ab.Final) {
				t.Fatalf("score out of range for %q / %q: %f", texts[i], texts[j], ab.Final)
			}
			if ab.Final != ba.Final {
				t.Fatalf("score not symmetric for %q / %q: %f vs %f", texts[i], texts[j], ab.Final, ba.Final)
			}
			if i == j && ab.Final != 1.0 {
				t.Fatalf("score not reflexive for %q: %f", texts[i], ab.Final)
			}
		}
	}
}

func TestScoreEmbedding(t *testing.T) {
	ctx := context.Background()

	used := newTestCalculator(t, WithEmbedding(stubEmbedding{available: true, sim: 0.9}))
	s, err := used.Compare(ctx, "BANANA PRATA", "BANANA NANICA")
	require.NoError(t, err)
	assert.True(t, s.EmbeddingUsed)
	assert.Equal(t, 0.9, s.Embedding)
	expected := (0.45*s.Lexical + 0.25*s.Edit + 0.30*0.9) / 1.0
	assert.InDelta(t, expected, s.Final, 1e-9)

	fallback := newTestCalculator(t, WithEmbedding(stubEmbedding{available: false, sim: 0.9}))
	s, err = fallback.Compare(ctx, "BANANA PRATA", "BANANA NANICA")
	require.NoError(t, err)
	assert.False(t, s.EmbeddingUsed, "unavailable backend falls back to heuristics")

	failing := newTestCalculator(t, WithEmbedding(stubEmbedding{available: true, err: errors.New("boom")}))
	_, err = failing.Compare(ctx, "BANANA PRATA", "BANANA NANICA")
	require.Error(t, err)
	assert.True(t, errors.Is(err, algorithms.ErrComputation))
}

func TestScoreModel(t *testing.T) {
	ctx := context.Background()
	c := newTestCalculator(t)

	c.SetModel(stubModel{p: 0.2}, ModelReplace, 0)
	assert.True(t, c.HasModel())
	s, err := c.Compare(ctx, "OMO 1KG", "OMO LIQUIDO 1L")
	require.NoError(t, err)
	assert.True(t, s.ModelUsed)
	assert.Equal(t, 0.2, s.Final)

	c.SetModel(stubModel{p: 1.0}, ModelBlend, 0.5)
	s, err = c.Compare(ctx, "OMO 1KG", "OMO LIQUIDO 1L")
	require.NoError(t, err)
	assert.InDelta(t, 0.5*s.Heuristic+0.5, s.Final, 1e-9)

	// Одинаковые товары остаются равными 1 независимо от модели
	c.SetModel(stubModel{p: 0.1}, ModelReplace, 0)
	s, err = c.Compare(ctx, "OMO 1KG", "omo 1 kg")
	require.NoError(t, err)
	assert.Equal(t, 1.0, s.Final)

	c.SetModel(stubModel{err: errors.New("broken")}, ModelReplace, 0)
	_, err = c.Compare(ctx, "OMO 1KG", "OMO LIQUIDO 1L")
	assert.True(t, errors.Is(err, algorithms.ErrComputation))

	c.SetModel(nil, ModelReplace, 0)
	assert.False(t, c.HasModel())
}

func TestNewCalculatorValidation(t *testing.T) {
	_, err := NewCalculator(WithWeights(Weights{Lexical: -1, Edit: 1}))
	assert.True(t, errors.Is(err, algorithms.ErrConfiguration))

	_, err = NewCalculator(WithWeights(Weights{Structural: 1}))
	assert.True(t, errors.Is(err, algorithms.ErrConfiguration))

	_, err = NewCalculator(WithLexicalMetric("cosine"))
	assert.True(t, errors.Is(err, algorithms.ErrConfiguration))

	_, err = newTestCalculator(t).Score(context.Background(), nil, nil)
	assert.True(t, errors.Is(err, algorithms.ErrInputValidation))
}

var (
	fakeTypes  = []string{"ARROZ", "FEIJAO", "LEITE", "REFRI", "SABAO", "BISC", "CAFE", "OLEO", "AGUA"}
	fakeBrands = []string{"CAMIL", "OMO", "COCA COLA", "ITALAC", "PILAO", "SOYA", "NESTLE", "TIO JOAO", ""}
	fakeExtras = []string{"INTEGRAL", "TIPO 1", "ZERO", "LATA", "PET", "PO", "", ""}
	fakeUnits  = []string{"ML", "L", "G", "KG", "UN", " ML", ""}
)

func fakeDescription(faker *gofakeit.Faker) string {
	return faker.RandomString(fakeTypes) + " " +
		faker.RandomString(fakeBrands) + " " +
		faker.RandomString(fakeExtras) + " " +
		faker.Numerify("##") + faker.RandomString(fakeUnits)
}
