package algorithms

import (
	"errors"
	"fmt"
)

// SimilarityError ошибка движка схожести
type SimilarityError struct {
	Code    string
	Message string
	Details map[string]interface{}
	Err     error
}

// Error реализует интерфейс error
func (e *SimilarityError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap возвращает вложенную ошибку
func (e *SimilarityError) Unwrap() error {
	return e.Err
}

// Is сравнивает ошибки по коду, чтобы работал errors.Is с сентинелами
func (e *SimilarityError) Is(target error) bool {
	var se *SimilarityError
	if !errors.As(target, &se) {
		return false
	}
	return se.Code == e.Code && se.Message == ""
}

// Коды ошибок
const (
	ErrCodeInputValidation          = "INPUT_VALIDATION"
	ErrCodeBackendUnavailable       = "BACKEND_UNAVAILABLE"
	ErrCodeInsufficientTrainingData = "INSUFFICIENT_TRAINING_DATA"
	ErrCodeComputation              = "COMPUTATION"
	ErrCodeConfiguration            = "CONFIGURATION"
	ErrCodeTrainingFailed           = "TRAINING_FAILED"
	ErrCodeNotTrained               = "NOT_TRAINED"
	ErrCodeExportFailed             = "EXPORT_FAILED"
	ErrCodeImportFailed             = "IMPORT_FAILED"
)

// Сентинелы для errors.Is. Совпадение определяется только кодом.
var (
	ErrInputValidation          = &SimilarityError{Code: ErrCodeInputValidation}
	ErrBackendUnavailable       = &SimilarityError{Code: ErrCodeBackendUnavailable}
	ErrInsufficientTrainingData = &SimilarityError{Code: ErrCodeInsufficientTrainingData}
	ErrComputation              = &SimilarityError{Code: ErrCodeComputation}
	ErrConfiguration            = &SimilarityError{Code: ErrCodeConfiguration}
	ErrTrainingFailed           = &SimilarityError{Code: ErrCodeTrainingFailed}
	ErrNotTrained               = &SimilarityError{Code: ErrCodeNotTrained}
	ErrExportFailed             = &SimilarityError{Code: ErrCodeExportFailed}
	ErrImportFailed             = &SimilarityError{Code: ErrCodeImportFailed}
)

// NewSimilarityError создает новую ошибку
func NewSimilarityError(code, message string, err error) *SimilarityError {
	return &SimilarityError{
		Code:    code,
		Message: message,
		Err:     err,
		Details: make(map[string]interface{}),
	}
}

// WithDetail добавляет детали к ошибке
func (e *SimilarityError) WithDetail(key string, value interface{}) *SimilarityError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// CodeOf возвращает код ошибки или пустую строку для чужих ошибок
func CodeOf(err error) string {
	var se *SimilarityError
	if errors.As(err, &se) {
		return se.Code
	}
	return ""
}

// IsInputValidation проверяет, является ли ошибка ошибкой входных данных
func IsInputValidation(err error) bool {
	return CodeOf(err) == ErrCodeInputValidation
}

// IsConfiguration проверяет, является ли ошибка ошибкой конфигурации
func IsConfiguration(err error) bool {
	return CodeOf(err) == ErrCodeConfiguration
}

// IsTrainingFailed проверяет, является ли ошибка ошибкой обучения
func IsTrainingFailed(err error) bool {
	return CodeOf(err) == ErrCodeTrainingFailed
}

// ValidateThreshold проверяет валидность порога
func ValidateThreshold(name string, threshold float64) error {
	if threshold <= 0 || threshold > 1 {
		return NewSimilarityError(ErrCodeConfiguration,
			fmt.Sprintf("%s must be in (0, 1], got %.2f", name, threshold), nil).
			WithDetail(name, threshold)
	}
	return nil
}

// ValidateTiers проверяет, что порог дублей строго выше порога похожих
func ValidateTiers(duplicate, similar float64) error {
	if err := ValidateThreshold("duplicate_threshold", duplicate); err != nil {
		return err
	}
	if err := ValidateThreshold("similar_threshold", similar); err != nil {
		return err
	}
	if duplicate <= similar {
		return NewSimilarityError(ErrCodeConfiguration,
			fmt.Sprintf("duplicate_threshold (%.2f) must be greater than similar_threshold (%.2f)", duplicate, similar), nil).
			WithDetail("duplicate_threshold", duplicate).
			WithDetail("similar_threshold", similar)
	}
	return nil
}
