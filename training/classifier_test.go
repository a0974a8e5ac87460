package training

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"productsim/features"
	"productsim/normalization/algorithms"
	"productsim/similarity"
)

// separableData две группы точек, разделимые прямой x0 + x1 = 0
func separableData(seed int64, n int) ([][]float64, []float64, []float64) {
	faker := gofakeit.New(seed)
	x := make([][]float64, 0, n)
	y := make([]float64, 0, n)
	w := make([]float64, 0, n)
	for len(x) < n {
		a, b := faker.Float64Range(-1, 1), faker.Float64Range(-1, 1)
		if a+b > -0.1 && a+b < 0.1 {
			continue
		}
		label := 0.0
		if a+b > 0 {
			label = 1
		}
		x = append(x, []float64{a, b, faker.Float64Range(-1, 1)})
		y = append(y, label)
		w = append(w, 1)
	}
	return x, y, w
}

func TestClassifiersSeparableData(t *testing.T) {
	x, y, w := separableData(7, 120)
	for _, kind := range ModelKinds() {
		t.Run(string(kind), func(t *testing.T) {
			clf, err := newClassifier(kind, 42)
			require.NoError(t, err)
			assert.Equal(t, kind, clf.Kind())
			require.NoError(t, clf.Fit(x, y, w))

			correct := 0
			for i, row := range x {
				p := clf.PredictProba(row)
				assert.GreaterOrEqual(t, p, 0.0)
				assert.LessOrEqual(t, p, 1.0)
				if (p >= 0.5) == (y[i] == 1) {
					correct++
				}
			}
			assert.GreaterOrEqual(t, float64(correct)/float64(len(x)), 0.9)
		})
	}
}

func TestClassifierRejectsInconsistentSet(t *testing.T) {
	for _, kind := range ModelKinds() {
		clf, err := newClassifier(kind, 1)
		require.NoError(t, err)
		assert.Error(t, clf.Fit(nil, nil, nil), kind)
		assert.Error(t, clf.Fit([][]float64{{1}}, []float64{1, 0}, []float64{1}), kind)
	}
}

func TestSampleWeights(t *testing.T) {
	// Два противоречивых примера в одной точке: побеждает более уверенный
	x := [][]float64{{0}, {0}}
	y := []float64{1, 0}
	w := []float64{0.9, 0.1}

	lr := NewLogisticRegression()
	require.NoError(t, lr.Fit(x, y, w))
	assert.Greater(t, lr.PredictProba([]float64{0}), 0.5)

	rf := NewRandomForest(3)
	require.NoError(t, rf.Fit(x, y, w))
	assert.Greater(t, rf.PredictProba([]float64{0}), 0.5)
}

func TestParseModelKind(t *testing.T) {
	tests := []struct {
		in   string
		want ModelKind
	}{
		{"logistic_regression", KindLogisticRegression},
		{"LR", KindLogisticRegression},
		{" random_forest ", KindRandomForest},
		{"rf", KindRandomForest},
		{"gradient_boosting", KindGradientBoosting},
		{"boosting", KindGradientBoosting},
	}
	for _, tt := range tests {
		got, err := ParseModelKind(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}

	_, err := ParseModelKind("svm")
	require.Error(t, err)
	assert.True(t, errors.Is(err, algorithms.ErrConfiguration))
}

func TestScaler(t *testing.T) {
	x := [][]float64{{1, 5}, {3, 5}}
	s := FitScaler(x)
	assert.Equal(t, []float64{2, 5}, s.Mean)
	assert.Equal(t, []float64{1, 1}, s.Std)
	assert.Equal(t, []float64{-1, 0}, s.Transform(x[0]))
	assert.Equal(t, []float64{1, 0}, s.Transform(x[1]))
}

func TestPairFeaturesSymmetric(t *testing.T) {
	calc, err := similarity.NewCalculator()
	require.NoError(t, err)
	ext := calc.Extractor()

	pairs := [][2]string{
		{"COCA COLA LATA 350ML", "COCA-COLA REFRIGERANTE LATA 350ML"},
		{"ARROZ CAMIL TIPO 1 5KG", "SABAO EM PO OMO 1KG"},
		{"LEITE ITALAC 1L", "LEITE"},
	}
	for _, p := range pairs {
		a, b := ext.FromText(p[0], ""), ext.FromText(p[1], "")
		s := calc.Heuristic(&a, &b)
		ab := pairFeatures(&a, &b, s)
		ba := pairFeatures(&b, &a, s)
		assert.Len(t, ab, len(FeatureNames))
		assert.Equal(t, ab, ba, p)
	}
}

func TestPairFeaturesUnknownAgreement(t *testing.T) {
	a := features.FeatureVector{Normalized: "leite", Tokens: []string{"leite"}}
	b := features.FeatureVector{Normalized: "cafe", Tokens: []string{"cafe"}}
	f := pairFeatures(&a, &b, similarity.SimilarityScore{})
	assert.Equal(t, unknownAgreement, f[2])
	assert.Equal(t, 0.0, f[3])
	assert.Equal(t, unknownAgreement, f[4])
	assert.Equal(t, unknownAgreement, f[5])
}

func TestStratifiedSplit(t *testing.T) {
	labels := []bool{true, true, true, true, true, true, true, false, false, false, false, false}

	train, val := stratifiedSplit(labels, 0.2, rand.New(rand.NewSource(42)))
	assert.Len(t, val, 2)
	assert.Len(t, train, 10)

	var valPos, trainPos int
	for _, i := range val {
		if labels[i] {
			valPos++
		}
	}
	for _, i := range train {
		if labels[i] {
			trainPos++
		}
	}
	assert.Equal(t, 1, valPos)
	assert.Equal(t, 6, trainPos)

	train2, val2 := stratifiedSplit(labels, 0.2, rand.New(rand.NewSource(42)))
	assert.Equal(t, train, train2)
	assert.Equal(t, val, val2)

	// Класс из одного примера целиком остается в обучении
	train, val = stratifiedSplit([]bool{true, false, false, false}, 0.5, rand.New(rand.NewSource(1)))
	assert.Contains(t, train, 0)
	assert.NotContains(t, val, 0)
}
