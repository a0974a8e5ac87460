package training

import (
	"math"

	"productsim/features"
	"productsim/normalization/algorithms"
	"productsim/similarity"
)

// FeatureNames имена признаков представления пары в порядке вектора
var FeatureNames = []string{
	"lexical",
	"edit",
	"quantity_agreement",
	"quantity_known",
	"code_agreement",
	"brand_agreement",
	"category_overlap",
	"heuristic",
	"embedding",
	"length_ratio",
	"min_length",
	"max_length",
	"token_count_diff",
	"same_core",
	"same_variant",
}

// unknownAgreement значение признака согласия, когда сравнивать нечего
const unknownAgreement = 0.5

// pairFeatures строит симметричное представление пары:
// перестановка a и b не меняет вектор
func pairFeatures(a, b *features.FeatureVector, s similarity.SimilarityScore) []float64 {
	quantity, quantityKnown := unknownAgreement, 0.0
	if q, ok := features.Agreement(a.Quantity, b.Quantity); ok {
		quantity, quantityKnown = q, 1
	}

	code := unknownAgreement
	if a.Code != "" && b.Code != "" {
		code = boolFloat(a.Code == b.Code)
	}

	brand := unknownAgreement
	if a.Brand != "" && b.Brand != "" {
		brand = boolFloat(a.Brand == b.Brand)
	}

	categories := unknownAgreement
	if len(a.Categories) > 0 && len(b.Categories) > 0 {
		categories = algorithms.JaccardStrings(a.Categories, b.Categories)
	}

	la, lb := float64(len([]rune(a.Normalized))), float64(len([]rune(b.Normalized)))
	minLen, maxLen := math.Min(la, lb), math.Max(la, lb)
	lengthRatio := 1.0
	if maxLen > 0 {
		lengthRatio = minLen / maxLen
	}

	embedding := 0.0
	if s.EmbeddingUsed {
		embedding = s.Embedding
	}

	return []float64{
		s.Lexical,
		s.Edit,
		quantity,
		quantityKnown,
		code,
		brand,
		categories,
		s.Heuristic,
		embedding,
		lengthRatio,
		math.Log1p(minLen),
		math.Log1p(maxLen),
		math.Abs(float64(len(a.Tokens) - len(b.Tokens))),
		boolFloat(a.CoreKey != "" && a.CoreKey == b.CoreKey),
		boolFloat(a.VariantKey == b.VariantKey),
	}
}

func boolFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

// Scaler стандартизация признаков по обучающей выборке
type Scaler struct {
	Mean []float64 `json:"mean"`
	Std  []float64 `json:"std"`
}

// FitScaler вычисляет среднее и стандартное отклонение каждого признака
func FitScaler(x [][]float64) *Scaler {
	d := len(x[0])
	s := &Scaler{Mean: make([]float64, d), Std: make([]float64, d)}
	n := float64(len(x))
	for _, row := range x {
		for j, v := range row {
			s.Mean[j] += v / n
		}
	}
	for _, row := range x {
		for j, v := range row {
			diff := v - s.Mean[j]
			s.Std[j] += diff * diff / n
		}
	}
	for j := range s.Std {
		s.Std[j] = math.Sqrt(s.Std[j])
		if s.Std[j] < 1e-9 {
			s.Std[j] = 1
		}
	}
	return s
}

// Transform возвращает масштабированную копию вектора
func (s *Scaler) Transform(row []float64) []float64 {
	out := make([]float64, len(row))
	for j, v := range row {
		out[j] = (v - s.Mean[j]) / s.Std[j]
	}
	return out
}

// TransformAll масштабирует матрицу
func (s *Scaler) TransformAll(x [][]float64) [][]float64 {
	out := make([][]float64, len(x))
	for i, row := range x {
		out[i] = s.Transform(row)
	}
	return out
}
