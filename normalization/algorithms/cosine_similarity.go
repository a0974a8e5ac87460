package algorithms

import (
	"math"
)

// CosineVectors вычисляет косинусную близость двух плотных векторов
// Для векторов разной длины или нулевых векторов возвращает 0
func CosineVectors(a, b []float64) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0.0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0.0
	}

	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// ClampedCosine возвращает косинусную близость, ограниченную отрезком [0, 1]
func ClampedCosine(a, b []float64) float64 {
	return Clamp01(CosineVectors(a, b))
}

// Normalize приводит вектор к единичной длине (L2) и возвращает копию
func Normalize(v []float64) []float64 {
	out := make([]float64, len(v))
	var norm float64
	for _, x := range v {
		norm += x * x
	}
	if norm == 0 {
		copy(out, v)
		return out
	}
	norm = math.Sqrt(norm)
	for i, x := range v {
		out[i] = x / norm
	}
	return out
}

// Clamp01 ограничивает значение отрезком [0, 1]; NaN превращается в 0
func Clamp01(x float64) float64 {
	if math.IsNaN(x) || x < 0 {
		return 0.0
	}
	if x > 1 {
		return 1.0
	}
	return x
}
