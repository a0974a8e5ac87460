package handlers

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"

	"productsim/server/services"
	"productsim/training"
)

// PredictRequest пара описаний для обученной модели
type PredictRequest struct {
	Text1 string `json:"text1"`
	Text2 string `json:"text2"`
}

// TrainingHandler обработчик разметки и обучения
type TrainingHandler struct {
	trainingService *services.TrainingService
}

// NewTrainingHandler создает обработчик обучения
func NewTrainingHandler(trainingService *services.TrainingService) *TrainingHandler {
	return &TrainingHandler{trainingService: trainingService}
}

// HandleAddExample добавляет размеченную пару
// @Summary Добавить размеченную пару
// @Tags training
// @Accept json
// @Produce json
// @Param request body services.LabelRequest true "Пара и решение пользователя"
// @Success 201 {object} training.TrainingExample
// @Failure 400 {object} ErrorResponse "Пустой текст или уверенность вне (0, 1]"
// @Router /training/examples [post]
func (h *TrainingHandler) HandleAddExample(c *gin.Context) {
	var req services.LabelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		SendJSONError(c, http.StatusBadRequest, fmt.Sprintf("Invalid request body: %s", err.Error()))
		return
	}

	ex, err := h.trainingService.AddExample(c.Request.Context(), req)
	if err != nil {
		SendError(c, err)
		return
	}
	SendJSONResponse(c, http.StatusCreated, ex)
}

// HandleTrain обучает модель на накопленных примерах
// @Summary Обучить модель
// @Description Обучает классификатор; при успехе модель подключается к оценке схожести
// @Tags training
// @Accept json
// @Produce json
// @Param request body services.TrainRequest false "Тип модели и кросс-валидация"
// @Success 200 {object} training.PerformanceReport
// @Failure 400 {object} ErrorResponse "Неизвестный тип модели"
// @Failure 422 {object} ErrorResponse "Недостаточно примеров или один класс"
// @Router /training/train [post]
func (h *TrainingHandler) HandleTrain(c *gin.Context) {
	// Пустое тело означает обучение с настройками по умолчанию
	var req services.TrainRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		SendJSONError(c, http.StatusBadRequest, fmt.Sprintf("Invalid request body: %s", err.Error()))
		return
	}

	report, err := h.trainingService.Train(c.Request.Context(), req)
	if err != nil {
		SendError(c, err)
		return
	}
	SendJSONResponse(c, http.StatusOK, report)
}

// HandlePredict решение обученной модели для пары
// @Summary Предсказать схожесть пары
// @Tags training
// @Accept json
// @Produce json
// @Param request body PredictRequest true "Пара описаний"
// @Success 200 {object} services.PredictResponse
// @Failure 409 {object} ErrorResponse "Модель не обучена"
// @Router /training/predict [post]
func (h *TrainingHandler) HandlePredict(c *gin.Context) {
	var req PredictRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		SendJSONError(c, http.StatusBadRequest, fmt.Sprintf("Invalid request body: %s", err.Error()))
		return
	}

	resp, err := h.trainingService.Predict(c.Request.Context(), req.Text1, req.Text2)
	if err != nil {
		SendError(c, err)
		return
	}
	SendJSONResponse(c, http.StatusOK, resp)
}

// HandleSuggest пары для следующей разметки
// @Summary Подсказать пары для разметки
// @Description Выбирает пары с максимальной неопределенностью из явного списка или из блокировки набора записей
// @Tags training
// @Accept json
// @Produce json
// @Param request body services.SuggestRequest true "Пары или записи и число подсказок"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} ErrorResponse "Нет пар или n <= 0"
// @Router /training/suggest [post]
func (h *TrainingHandler) HandleSuggest(c *gin.Context) {
	var req services.SuggestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		SendJSONError(c, http.StatusBadRequest, fmt.Sprintf("Invalid request body: %s", err.Error()))
		return
	}

	suggestions, err := h.trainingService.Suggest(c.Request.Context(), req)
	if err != nil {
		SendError(c, err)
		return
	}
	SendJSONResponse(c, http.StatusOK, gin.H{
		"suggestions": suggestions,
		"count":       len(suggestions),
	})
}

// HandleThreshold оптимальный по F1 порог
// @Summary Оптимальный порог
// @Tags training
// @Produce json
// @Success 200 {object} services.ThresholdResponse
// @Router /training/threshold [get]
func (h *TrainingHandler) HandleThreshold(c *gin.Context) {
	SendJSONResponse(c, http.StatusOK, h.trainingService.Threshold())
}

// HandleStatus состояние тренера
// @Summary Состояние обучения
// @Tags training
// @Produce json
// @Success 200 {object} services.TrainingStatus
// @Router /training/status [get]
func (h *TrainingHandler) HandleStatus(c *gin.Context) {
	SendJSONResponse(c, http.StatusOK, h.trainingService.Status())
}

// HandleExport выгружает корпус примеров
// @Summary Экспорт обучающего корпуса
// @Tags training
// @Produce application/x-ndjson,text/csv,application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param format query string false "jsonl, csv или xlsx" default(jsonl)
// @Success 200 {file} file
// @Failure 400 {object} ErrorResponse "Неизвестный формат"
// @Router /training/export [get]
func (h *TrainingHandler) HandleExport(c *gin.Context) {
	format, err := training.ParseExportFormat(c.DefaultQuery("format", string(training.FormatJSONL)))
	if err != nil {
		SendError(c, err)
		return
	}

	stamp := time.Now().Format("20060102_150405")
	if format == training.FormatXLSX {
		h.exportXLSX(c, fmt.Sprintf("training_examples_%s.xlsx", stamp))
		return
	}

	var buf bytes.Buffer
	if err := h.trainingService.Export(&buf, format); err != nil {
		SendError(c, err)
		return
	}

	contentType := "application/x-ndjson"
	if format == training.FormatCSV {
		contentType = "text/csv; charset=utf-8"
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="training_examples_%s.%s"`, stamp, format))
	c.Data(http.StatusOK, contentType, buf.Bytes())
}

func (h *TrainingHandler) exportXLSX(c *gin.Context, name string) {
	dir, err := os.MkdirTemp("", "training-export-*")
	if err != nil {
		SendJSONError(c, http.StatusInternalServerError, fmt.Sprintf("Failed to create export directory: %s", err.Error()))
		return
	}
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, name)
	if err := h.trainingService.ExportXLSX(path); err != nil {
		SendError(c, err)
		return
	}
	c.FileAttachment(path, name)
}

// HandleImport загружает примеры из JSON Lines
// @Summary Импорт обучающего корпуса
// @Tags training
// @Accept application/x-ndjson
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} ErrorResponse "Некорректная строка JSON Lines"
// @Router /training/import [post]
func (h *TrainingHandler) HandleImport(c *gin.Context) {
	n, err := h.trainingService.Import(c.Request.Body)
	if err != nil {
		SendError(c, err)
		return
	}
	SendJSONResponse(c, http.StatusOK, gin.H{
		"imported": n,
		"total":    h.trainingService.Status().Examples,
	})
}
