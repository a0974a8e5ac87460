package algorithms

import (
	"fmt"
	"sort"
)

// EvaluationMetrics метрики оценки бинарного классификатора похожих пар
type EvaluationMetrics struct {
	TruePositives  int `json:"true_positives"`  // Правильно найденные похожие пары (TP)
	FalsePositives int `json:"false_positives"` // Ложные срабатывания (FP)
	FalseNegatives int `json:"false_negatives"` // Пропущенные похожие пары (FN)
	TrueNegatives  int `json:"true_negatives"`  // Правильно отвергнутые пары (TN)
}

// NewEvaluationMetrics создает новые метрики оценки
func NewEvaluationMetrics() *EvaluationMetrics {
	return &EvaluationMetrics{}
}

// AddResult добавляет результат классификации
func (em *EvaluationMetrics) AddResult(predicted, actual bool) {
	switch {
	case predicted && actual:
		em.TruePositives++
	case predicted && !actual:
		em.FalsePositives++
	case !predicted && actual:
		em.FalseNegatives++
	default:
		em.TrueNegatives++
	}
}

// Precision = TP / (TP + FP)
func (em *EvaluationMetrics) Precision() float64 {
	total := em.TruePositives + em.FalsePositives
	if total == 0 {
		return 0.0
	}
	return float64(em.TruePositives) / float64(total)
}

// Recall = TP / (TP + FN)
func (em *EvaluationMetrics) Recall() float64 {
	total := em.TruePositives + em.FalseNegatives
	if total == 0 {
		return 0.0
	}
	return float64(em.TruePositives) / float64(total)
}

// F1Score гармоническое среднее точности и полноты
func (em *EvaluationMetrics) F1Score() float64 {
	precision := em.Precision()
	recall := em.Recall()
	if precision+recall == 0 {
		return 0.0
	}
	return 2 * (precision * recall) / (precision + recall)
}

// Accuracy = (TP + TN) / total
func (em *EvaluationMetrics) Accuracy() float64 {
	total := em.Total()
	if total == 0 {
		return 0.0
	}
	return float64(em.TruePositives+em.TrueNegatives) / float64(total)
}

// Total возвращает общее количество проверенных пар
func (em *EvaluationMetrics) Total() int {
	return em.TruePositives + em.FalsePositives + em.FalseNegatives + em.TrueNegatives
}

// ConfusionMatrix возвращает матрицу ошибок [[TN, FP], [FN, TP]]
// Строки - истинный класс, столбцы - предсказанный
func (em *EvaluationMetrics) ConfusionMatrix() [2][2]int {
	return [2][2]int{
		{em.TrueNegatives, em.FalsePositives},
		{em.FalseNegatives, em.TruePositives},
	}
}

// String возвращает строковое представление метрик
func (em *EvaluationMetrics) String() string {
	return fmt.Sprintf("Precision: %.4f, Recall: %.4f, F1: %.4f, Accuracy: %.4f",
		em.Precision(), em.Recall(), em.F1Score(), em.Accuracy())
}

// EvaluateAt строит метрики для порога: пара похожа, если score >= threshold
func EvaluateAt(scores []float64, labels []bool, threshold float64) *EvaluationMetrics {
	em := NewEvaluationMetrics()
	for i, s := range scores {
		em.AddResult(s >= threshold, labels[i])
	}
	return em
}

// AUC вычисляет площадь под ROC-кривой через статистику Манна-Уитни.
// Связанные оценки получают средний ранг. Если один из классов пуст, возвращает 0.5.
func AUC(scores []float64, labels []bool) float64 {
	n := len(scores)
	if n == 0 || len(labels) != n {
		return 0.5
	}

	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool { return scores[idx[a]] < scores[idx[b]] })

	ranks := make([]float64, n)
	for i := 0; i < n; {
		j := i
		for j+1 < n && scores[idx[j+1]] == scores[idx[i]] {
			j++
		}
		avg := float64(i+j)/2 + 1
		for k := i; k <= j; k++ {
			ranks[idx[k]] = avg
		}
		i = j + 1
	}

	var positives, negatives int
	var rankSum float64
	for i, l := range labels {
		if l {
			positives++
			rankSum += ranks[i]
		} else {
			negatives++
		}
	}
	if positives == 0 || negatives == 0 {
		return 0.5
	}

	u := rankSum - float64(positives*(positives+1))/2
	return u / float64(positives*negatives)
}

// ThresholdPoint результат оценки одного порога
type ThresholdPoint struct {
	Threshold float64            `json:"threshold"`
	Metrics   *EvaluationMetrics `json:"metrics"`
}

// BestF1Threshold перебирает пороги из сетки и возвращает порог с максимальным F1.
// При равенстве выигрывает меньший порог.
func BestF1Threshold(scores []float64, labels []bool, grid []float64) ThresholdPoint {
	best := ThresholdPoint{Threshold: 0.5, Metrics: EvaluateAt(scores, labels, 0.5)}
	bestF1 := -1.0
	for _, t := range grid {
		m := EvaluateAt(scores, labels, t)
		if f1 := m.F1Score(); f1 > bestF1 {
			bestF1 = f1
			best = ThresholdPoint{Threshold: t, Metrics: m}
		}
	}
	return best
}

// ThresholdGrid возвращает сетку порогов от from до to с шагом step
func ThresholdGrid(from, to, step float64) []float64 {
	var grid []float64
	for i := 0; ; i++ {
		t := from + float64(i)*step
		if t > to+1e-9 {
			break
		}
		// Округляем, чтобы не копить ошибку сложения
		grid = append(grid, float64(int(t*1000+0.5))/1000)
	}
	return grid
}
