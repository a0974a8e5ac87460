package training

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"math"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"productsim/normalization/algorithms"
	"productsim/similarity"
)

var positivePairs = [][2]string{
	{"COCA COLA LATA 350ML", "COCA-COLA REFRIGERANTE LATA 350ML"},
	{"ARROZ CAMIL TIPO 1 5KG", "ARROZ CAMIL AGULHINHA TIPO1 5000G"},
	{"LEITE INTEGRAL ITALAC 1L", "LEITE ITALAC INTEGRAL 1000ML"},
	{"CAFE PILAO 500G", "CAFE PILAO TRADICIONAL 500G"},
	{"SABAO EM PO OMO 1KG", "SABAO PO OMO 1KG"},
	{"FEIJAO CARIOCA KICALDO 1KG", "FEIJAO KICALDO CARIOCA 1KG"},
	{"ACUCAR UNIAO 1KG", "ACUCAR REFINADO UNIAO 1KG"},
}

var negativePairs = [][2]string{
	{"COCA COLA LATA 350ML", "SABAO EM PO OMO 1KG"},
	{"ARROZ CAMIL TIPO 1 5KG", "CAFE PILAO 500G"},
	{"LEITE INTEGRAL ITALAC 1L", "FEIJAO CARIOCA KICALDO 1KG"},
	{"ACUCAR UNIAO 1KG", "DETERGENTE YPE 500ML"},
	{"BISCOITO NESTLE 200G", "ARROZ TIO JOAO 1KG"},
}

type memoryStore struct {
	examples []TrainingExample
	reports  []PerformanceReport
}

func (s *memoryStore) SaveExample(ex *TrainingExample) error {
	s.examples = append(s.examples, *ex)
	return nil
}

func (s *memoryStore) LoadExamples() ([]TrainingExample, error) {
	return append([]TrainingExample(nil), s.examples...), nil
}

func (s *memoryStore) SaveReport(r *PerformanceReport) error {
	s.reports = append(s.reports, *r)
	return nil
}

func newTestTrainer(t *testing.T, opts ...TrainerOption) *Trainer {
	t.Helper()
	calc, err := similarity.NewCalculator()
	require.NoError(t, err)
	tr, err := NewTrainer(calc, opts...)
	require.NoError(t, err)
	return tr
}

func addLabeled(t *testing.T, tr *Trainer) {
	t.Helper()
	ctx := context.Background()
	for _, p := range positivePairs {
		_, err := tr.AddTrainingExample(ctx, p[0], p[1], nil, nil, true, 1.0)
		require.NoError(t, err)
	}
	for _, p := range negativePairs {
		_, err := tr.AddTrainingExample(ctx, p[0], p[1], nil, nil, false, 0.8)
		require.NoError(t, err)
	}
}

func TestTrainModel(t *testing.T) {
	for _, kind := range ModelKinds() {
		t.Run(string(kind), func(t *testing.T) {
			store := &memoryStore{}
			tr := newTestTrainer(t, WithStore(store))
			addLabeled(t, tr)
			assert.Equal(t, StateUntrained, tr.State())

			report, err := tr.TrainModel(context.Background(), kind, true)
			require.NoError(t, err)

			assert.Equal(t, StateTrained, tr.State())
			assert.GreaterOrEqual(t, report.Accuracy, 0.0)
			assert.LessOrEqual(t, report.Accuracy, 1.0)
			assert.Equal(t, 10, report.TrainingExamples)
			assert.Equal(t, 2, report.ValidationExamples)
			assert.Equal(t, kind, report.ModelType)
			assert.Equal(t, string(kind)+"_v1", report.ModelVersion)
			assert.Len(t, report.CrossValidationF1, 5)

			cm := report.ConfusionMatrix
			assert.Equal(t, 2, cm[0][0]+cm[0][1]+cm[1][0]+cm[1][1])

			assert.Len(t, store.examples, 12)
			require.Len(t, store.reports, 1)
			assert.Equal(t, report.ModelVersion, store.reports[0].ModelVersion)
			assert.Equal(t, report.ModelVersion, tr.Model().Version)
		})
	}
}

func TestRetrainingCreatesNewModel(t *testing.T) {
	tr := newTestTrainer(t)
	addLabeled(t, tr)
	ctx := context.Background()

	_, err := tr.TrainModel(ctx, KindLogisticRegression, false)
	require.NoError(t, err)
	first := tr.Model()

	report, err := tr.TrainModel(ctx, KindLogisticRegression, false)
	require.NoError(t, err)
	assert.Equal(t, "logistic_regression_v2", report.ModelVersion)
	assert.NotSame(t, first, tr.Model())
	assert.Equal(t, "logistic_regression_v1", first.Version)
	assert.Len(t, tr.History(), 2)
}

func TestPredictBeforeTraining(t *testing.T) {
	tr := newTestTrainer(t)
	ext := tr.calc.Extractor()
	a, b := ext.FromText("CAFE PILAO 500G", ""), ext.FromText("CAFE PILAO 1KG", "")

	_, _, err := tr.PredictSimilarity(context.Background(), &a, &b)
	require.Error(t, err)
	assert.True(t, errors.Is(err, algorithms.ErrNotTrained))

	_, err = tr.PredictProbability(&a, &b, similarity.SimilarityScore{})
	assert.True(t, errors.Is(err, algorithms.ErrNotTrained))
}

func TestPredictSimilarity(t *testing.T) {
	tr := newTestTrainer(t)
	addLabeled(t, tr)
	_, err := tr.TrainModel(context.Background(), KindLogisticRegression, false)
	require.NoError(t, err)

	ext := tr.calc.Extractor()
	a, b := ext.FromText("CAFE PILAO 500G", ""), ext.FromText("CAFE PILAO TRADICIONAL 500G", "")
	similar, p, err := tr.PredictSimilarity(context.Background(), &a, &b)
	require.NoError(t, err)
	assert.Equal(t, p >= 0.5, similar)
	assert.GreaterOrEqual(t, p, 0.0)
	assert.LessOrEqual(t, p, 1.0)

	_, pr, err := tr.PredictSimilarity(context.Background(), &b, &a)
	require.NoError(t, err)
	assert.InDelta(t, p, pr, 1e-12)
}

func TestTrainerAsCalculatorModel(t *testing.T) {
	tr := newTestTrainer(t)
	addLabeled(t, tr)
	_, err := tr.TrainModel(context.Background(), KindGradientBoosting, false)
	require.NoError(t, err)

	tr.calc.SetModel(tr, similarity.ModelReplace, 0)
	s, err := tr.calc.Compare(context.Background(), "LEITE ITALAC 1L", "LEITE ITALAC INTEGRAL 1L")
	require.NoError(t, err)
	assert.True(t, s.ModelUsed)
	assert.Equal(t, s.ModelProbability, s.Final)

	same, err := tr.calc.Compare(context.Background(), "LEITE ITALAC 1L", "LEITE ITALAC 1L")
	require.NoError(t, err)
	assert.Equal(t, 1.0, same.Final)
}

func TestInsufficientTrainingData(t *testing.T) {
	tr := newTestTrainer(t)
	_, err := tr.AddTrainingExample(context.Background(), "CAFE PILAO 500G", "CAFE PILAO 1KG", nil, nil, true, 1)
	require.NoError(t, err)

	_, err = tr.TrainModel(context.Background(), KindRandomForest, false)
	require.Error(t, err)
	assert.True(t, errors.Is(err, algorithms.ErrInsufficientTrainingData))
	assert.Equal(t, StateUntrained, tr.State())
}

func TestSingleClassTraining(t *testing.T) {
	tr := newTestTrainer(t)
	ctx := context.Background()
	for i := 0; i < 2; i++ {
		for _, p := range positivePairs {
			_, err := tr.AddTrainingExample(ctx, p[0], p[1], nil, nil, true, 1)
			require.NoError(t, err)
		}
	}

	_, err := tr.TrainModel(ctx, KindRandomForest, true)
	require.Error(t, err)
	assert.True(t, errors.Is(err, algorithms.ErrTrainingFailed))
	assert.Equal(t, StateUntrained, tr.State())
	assert.Empty(t, tr.History())
}

func TestFailedRetrainingKeepsModel(t *testing.T) {
	tr := newTestTrainer(t)
	addLabeled(t, tr)
	_, err := tr.TrainModel(context.Background(), KindLogisticRegression, false)
	require.NoError(t, err)
	active := tr.Model()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = tr.TrainModel(ctx, KindRandomForest, true)
	require.ErrorIs(t, err, context.Canceled)
	assert.Same(t, active, tr.Model())

	_, err = tr.TrainModel(context.Background(), ModelKind("svm"), false)
	assert.True(t, errors.Is(err, algorithms.ErrConfiguration))
	assert.Same(t, active, tr.Model())
	assert.Len(t, tr.History(), 1)
}

func TestAddTrainingExampleValidation(t *testing.T) {
	tr := newTestTrainer(t)
	ctx := context.Background()

	tests := []struct {
		name       string
		text1      string
		text2      string
		confidence float64
	}{
		{"empty text", "", "CAFE", 1},
		{"blank text", "CAFE", "   ", 1},
		{"zero confidence", "CAFE", "LEITE", 0},
		{"negative confidence", "CAFE", "LEITE", -0.2},
		{"confidence above one", "CAFE", "LEITE", 1.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tr.AddTrainingExample(ctx, tt.text1, tt.text2, nil, nil, true, tt.confidence)
			require.Error(t, err)
			assert.True(t, errors.Is(err, algorithms.ErrInputValidation))
		})
	}
	assert.Zero(t, tr.ExampleCount())

	ex, err := tr.AddTrainingExample(ctx, "COCA COLA LATA 350ML", "COCA-COLA LATA 350ML", nil, nil, true, 0.7)
	require.NoError(t, err)
	assert.NotEmpty(t, ex.ID)
	assert.Equal(t, "coca-cola", ex.Features1.Brand)
	assert.Greater(t, ex.Scores.Final, 0.5)
	assert.False(t, ex.Scores.ModelUsed)
}

func TestNewTrainerValidation(t *testing.T) {
	_, err := NewTrainer(nil)
	assert.True(t, errors.Is(err, algorithms.ErrConfiguration))

	calc, err := similarity.NewCalculator()
	require.NoError(t, err)
	_, err = NewTrainer(calc, WithValidationFraction(1))
	assert.True(t, errors.Is(err, algorithms.ErrConfiguration))
	_, err = NewTrainer(calc, WithMinExamples(1))
	assert.True(t, errors.Is(err, algorithms.ErrConfiguration))
	_, err = NewTrainer(calc, WithWorkingThreshold(0))
	assert.True(t, errors.Is(err, algorithms.ErrConfiguration))
}

func candidatePairs() []CandidatePair {
	texts := []string{
		"COCA COLA LATA 350ML",
		"COCA-COLA ZERO LATA 350ML",
		"COCA COLA PET 2L",
		"GUARANA ANTARCTICA LATA 350ML",
		"ARROZ CAMIL TIPO 1 5KG",
		"ARROZ TIO JOAO TIPO 1 5KG",
	}
	var pairs []CandidatePair
	for i := range texts {
		for j := i + 1; j < len(texts); j++ {
			pairs = append(pairs, CandidatePair{Text1: texts[i], Text2: texts[j]})
		}
	}
	return pairs
}

func assertUncertaintyOrder(t *testing.T, suggestions []Suggestion) {
	t.Helper()
	assert.True(t, sort.SliceIsSorted(suggestions, func(i, j int) bool {
		return suggestions[i].Uncertainty < suggestions[j].Uncertainty
	}))
	for _, s := range suggestions {
		assert.InDelta(t, math.Abs(s.Confidence-s.Boundary), s.Uncertainty, 1e-12)
	}
}

func TestSuggestTrainingExamplesUntrained(t *testing.T) {
	tr := newTestTrainer(t, WithWorkingThreshold(0.7))
	ctx := context.Background()
	_, err := tr.AddTrainingExample(ctx, "COCA-COLA ZERO LATA 350ML", "COCA COLA LATA 350ML", nil, nil, true, 1)
	require.NoError(t, err)

	suggestions, err := tr.SuggestTrainingExamples(ctx, candidatePairs(), 4)
	require.NoError(t, err)
	require.Len(t, suggestions, 4)
	assertUncertaintyOrder(t, suggestions)

	for _, s := range suggestions {
		assert.Equal(t, SourceHeuristic, s.Source)
		assert.Equal(t, 0.7, s.Boundary)
		assert.NotEqual(t, pairKey("COCA COLA LATA 350ML", "COCA-COLA ZERO LATA 350ML"), pairKey(s.Text1, s.Text2))
	}

	all, err := tr.SuggestTrainingExamples(ctx, candidatePairs(), 100)
	require.NoError(t, err)
	assert.Len(t, all, len(candidatePairs())-1)

	_, err = tr.SuggestTrainingExamples(ctx, candidatePairs(), 0)
	assert.True(t, errors.Is(err, algorithms.ErrInputValidation))
}

func TestSuggestTrainingExamplesTrained(t *testing.T) {
	tr := newTestTrainer(t)
	addLabeled(t, tr)
	_, err := tr.TrainModel(context.Background(), KindRandomForest, false)
	require.NoError(t, err)

	suggestions, err := tr.SuggestTrainingExamples(context.Background(), candidatePairs(), 5)
	require.NoError(t, err)
	require.Len(t, suggestions, 5)
	assertUncertaintyOrder(t, suggestions)
	for _, s := range suggestions {
		assert.Equal(t, SourceModel, s.Source)
		assert.Equal(t, 0.5, s.Boundary)
	}
}

func TestGetOptimalThreshold(t *testing.T) {
	tr := newTestTrainer(t, WithWorkingThreshold(0.65))

	threshold, metrics := tr.GetOptimalThreshold()
	assert.Equal(t, 0.65, threshold)
	assert.Zero(t, metrics.Total())

	addLabeled(t, tr)
	threshold, metrics = tr.GetOptimalThreshold()
	assert.GreaterOrEqual(t, threshold, 0.05)
	assert.LessOrEqual(t, threshold, 0.95)
	assert.Equal(t, 12, metrics.Total())

	_, err := tr.TrainModel(context.Background(), KindLogisticRegression, false)
	require.NoError(t, err)
	threshold, metrics = tr.GetOptimalThreshold()
	assert.GreaterOrEqual(t, threshold, 0.05)
	assert.LessOrEqual(t, threshold, 0.95)
	assert.Equal(t, 2, metrics.Total())
}

func TestExportImportJSONL(t *testing.T) {
	src := newTestTrainer(t)
	addLabeled(t, src)

	var buf bytes.Buffer
	require.NoError(t, src.Export(&buf, FormatJSONL))

	dst := newTestTrainer(t)
	added, err := dst.ImportJSONL(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, 12, added)

	want, got := src.Examples(), dst.Examples()
	require.Len(t, got, len(want))
	for i := range want {
		assert.Equal(t, want[i].ID, got[i].ID)
		assert.Equal(t, want[i].Text1, got[i].Text1)
		assert.Equal(t, want[i].UserSaysSimilar, got[i].UserSaysSimilar)
		assert.Equal(t, want[i].Confidence, got[i].Confidence)
		assert.Equal(t, want[i].Scores, got[i].Scores)
		assert.Equal(t, want[i].Features1.Tokens, got[i].Features1.Tokens)
	}

	added, err = dst.ImportJSONL(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	assert.Zero(t, added)

	_, err = dst.TrainModel(context.Background(), KindLogisticRegression, false)
	require.NoError(t, err)
}

func TestImportJSONLInvalid(t *testing.T) {
	tr := newTestTrainer(t)

	_, err := tr.ImportJSONL(bytes.NewBufferString("{\"text1\":\"a\"\n"))
	assert.True(t, errors.Is(err, algorithms.ErrImportFailed))

	_, err = tr.ImportJSONL(bytes.NewBufferString(`{"id":"x","text1":"CAFE","text2":"LEITE","confidence":0}` + "\n"))
	assert.True(t, errors.Is(err, algorithms.ErrImportFailed))
	assert.Zero(t, tr.ExampleCount())
}

func TestExportCSV(t *testing.T) {
	tr := newTestTrainer(t)
	addLabeled(t, tr)

	var buf bytes.Buffer
	require.NoError(t, tr.Export(&buf, FormatCSV))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 13)
	assert.Equal(t, csvHeader, rows[0])
	assert.Equal(t, positivePairs[0][0], rows[1][1])
	assert.Equal(t, "true", rows[1][3])
	assert.Equal(t, "false", rows[12][3])

	err = tr.Export(&buf, FormatXLSX)
	assert.True(t, errors.Is(err, algorithms.ErrExportFailed))
}

func TestExportXLSX(t *testing.T) {
	tr := newTestTrainer(t)
	addLabeled(t, tr)
	_, err := tr.TrainModel(context.Background(), KindRandomForest, false)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "training.xlsx")
	require.NoError(t, tr.ExportXLSX(path))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	v, err := f.GetCellValue("Examples", "B2")
	require.NoError(t, err)
	assert.Equal(t, positivePairs[0][0], v)

	v, err = f.GetCellValue("Models", "A2")
	require.NoError(t, err)
	assert.Equal(t, "random_forest_v1", v)
}

func TestLoadFromStore(t *testing.T) {
	store := &memoryStore{}
	src := newTestTrainer(t, WithStore(store))
	addLabeled(t, src)

	dst := newTestTrainer(t, WithStore(store))
	n, err := dst.LoadFromStore()
	require.NoError(t, err)
	assert.Equal(t, 12, n)

	n, err = dst.LoadFromStore()
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestParseExportFormat(t *testing.T) {
	f, err := ParseExportFormat("JSONL")
	require.NoError(t, err)
	assert.Equal(t, FormatJSONL, f)

	f, err = ParseExportFormat("ndjson")
	require.NoError(t, err)
	assert.Equal(t, FormatJSONL, f)

	_, err = ParseExportFormat("parquet")
	assert.True(t, errors.Is(err, algorithms.ErrInputValidation))
}
