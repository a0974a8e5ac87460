package training

import (
	"fmt"
	"math"
	"strings"

	"productsim/normalization/algorithms"
)

// ModelKind семейство классификатора
type ModelKind string

const (
	KindLogisticRegression ModelKind = "logistic_regression"
	KindRandomForest       ModelKind = "random_forest"
	KindGradientBoosting   ModelKind = "gradient_boosting"
)

// ModelKinds все поддерживаемые семейства
func ModelKinds() []ModelKind {
	return []ModelKind{KindLogisticRegression, KindRandomForest, KindGradientBoosting}
}

// ParseModelKind разбирает значение model_type
func ParseModelKind(s string) (ModelKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "logistic_regression", "logistic", "lr":
		return KindLogisticRegression, nil
	case "random_forest", "forest", "rf":
		return KindRandomForest, nil
	case "gradient_boosting", "boosting", "gb":
		return KindGradientBoosting, nil
	default:
		return "", algorithms.NewSimilarityError(algorithms.ErrCodeConfiguration,
			fmt.Sprintf("unknown model type %q", s), nil).
			WithDetail("supported", ModelKinds())
	}
}

// Classifier бинарный классификатор над масштабированными признаками пары
type Classifier interface {
	Kind() ModelKind
	// Fit обучает модель; w - веса примеров (уверенность разметки)
	Fit(x [][]float64, y []float64, w []float64) error
	// PredictProba возвращает вероятность класса "похожи"
	PredictProba(x []float64) float64
}

// newClassifier создает классификатор выбранного семейства
func newClassifier(kind ModelKind, seed int64) (Classifier, error) {
	switch kind {
	case KindLogisticRegression:
		return NewLogisticRegression(), nil
	case KindRandomForest:
		return NewRandomForest(seed), nil
	case KindGradientBoosting:
		return NewGradientBoosting(), nil
	default:
		_, err := ParseModelKind(string(kind))
		return nil, err
	}
}

func sigmoid(z float64) float64 {
	if z >= 0 {
		return 1 / (1 + math.Exp(-z))
	}
	ez := math.Exp(z)
	return ez / (1 + ez)
}

func checkTrainingSet(x [][]float64, y, w []float64) error {
	if len(x) == 0 || len(x) != len(y) || len(y) != len(w) {
		return fmt.Errorf("inconsistent training set: %d rows, %d labels, %d weights", len(x), len(y), len(w))
	}
	return nil
}
