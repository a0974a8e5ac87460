package training

import (
	"time"

	"productsim/features"
	"productsim/similarity"
)

// TrainingExample размеченная пользователем пара
type TrainingExample struct {
	ID              string                     `json:"id"`
	Text1           string                     `json:"text1"`
	Text2           string                     `json:"text2"`
	Features1       features.FeatureVector     `json:"features1"`
	Features2       features.FeatureVector     `json:"features2"`
	Scores          similarity.SimilarityScore `json:"scores"`
	UserSaysSimilar bool                       `json:"user_says_similar"`
	Confidence      float64                    `json:"confidence"`
	SessionID       string                     `json:"session_id,omitempty"`
	CreatedAt       time.Time                  `json:"created_at"`
}

// pairKey ключ пары, не зависящий от порядка текстов
func pairKey(text1, text2 string) string {
	if text1 > text2 {
		text1, text2 = text2, text1
	}
	return text1 + "\x00" + text2
}

// CandidatePair неразмеченная пара для активного обучения
type CandidatePair struct {
	Text1     string                  `json:"text1"`
	Text2     string                  `json:"text2"`
	Features1 *features.FeatureVector `json:"features1,omitempty"`
	Features2 *features.FeatureVector `json:"features2,omitempty"`
}

// SuggestionSource источник уверенности в подсказке
type SuggestionSource string

const (
	SourceModel     SuggestionSource = "model"
	SourceHeuristic SuggestionSource = "heuristic"
)

// Suggestion пара, которую полезнее всего разметить следующей
type Suggestion struct {
	Text1       string                     `json:"text1"`
	Text2       string                     `json:"text2"`
	Confidence  float64                    `json:"confidence"`
	Boundary    float64                    `json:"boundary"`
	Uncertainty float64                    `json:"uncertainty"`
	Source      SuggestionSource           `json:"source"`
	Scores      similarity.SimilarityScore `json:"scores"`
}

// ExampleStore хранилище корпуса примеров и истории моделей
type ExampleStore interface {
	SaveExample(ex *TrainingExample) error
	LoadExamples() ([]TrainingExample, error)
	SaveReport(report *PerformanceReport) error
}
