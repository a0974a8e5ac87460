package training

import (
	"fmt"
	"strings"
	"time"

	"productsim/normalization/algorithms"
)

// PerformanceReport качество модели на отложенной выборке
type PerformanceReport struct {
	ModelID            string    `json:"model_id"`
	ModelVersion       string    `json:"model_version"`
	ModelType          ModelKind `json:"model_type"`
	Accuracy           float64   `json:"accuracy"`
	Precision          float64   `json:"precision"`
	Recall             float64   `json:"recall"`
	F1                 float64   `json:"f1"`
	AUC                float64   `json:"auc"`
	ConfusionMatrix    [2][2]int `json:"confusion_matrix"`
	TrainingExamples   int       `json:"training_examples"`
	ValidationExamples int       `json:"validation_examples"`
	CrossValidationF1  []float64 `json:"cross_validation_f1,omitempty"`
	MeanCVF1           float64   `json:"mean_cv_f1,omitempty"`
	Timestamp          time.Time `json:"timestamp"`
}

// newReport считает метрики по вероятностям при пороге 0.5
func newReport(probs []float64, labels []bool) PerformanceReport {
	m := algorithms.EvaluateAt(probs, labels, 0.5)
	return PerformanceReport{
		Accuracy:           m.Accuracy(),
		Precision:          m.Precision(),
		Recall:             m.Recall(),
		F1:                 m.F1Score(),
		AUC:                algorithms.AUC(probs, labels),
		ConfusionMatrix:    m.ConfusionMatrix(),
		ValidationExamples: len(labels),
	}
}

// String краткое описание отчета для логов и CLI
func (r PerformanceReport) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: accuracy=%.3f precision=%.3f recall=%.3f f1=%.3f auc=%.3f",
		r.ModelVersion, r.Accuracy, r.Precision, r.Recall, r.F1, r.AUC)
	if len(r.CrossValidationF1) > 0 {
		fmt.Fprintf(&b, " cv_f1=%.3f", r.MeanCVF1)
	}
	fmt.Fprintf(&b, " (train=%d, validation=%d)", r.TrainingExamples, r.ValidationExamples)
	return b.String()
}
