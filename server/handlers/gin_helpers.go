package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"productsim/normalization/algorithms"
	"productsim/server/middleware"
)

// ErrorResponse тело ответа с ошибкой
type ErrorResponse struct {
	Error     bool                   `json:"error"`
	Code      string                 `json:"code,omitempty"`
	Message   string                 `json:"message"`
	Details   map[string]interface{} `json:"details,omitempty"`
	RequestID string                 `json:"request_id,omitempty"`
}

// SendJSONResponse отправляет JSON ответ через Gin context
func SendJSONResponse(c *gin.Context, statusCode int, data interface{}) {
	c.JSON(statusCode, data)
}

// SendJSONError отправляет JSON ошибку через Gin context и логирует её
func SendJSONError(c *gin.Context, statusCode int, message string) {
	sendError(c, statusCode, ErrorResponse{Error: true, Message: message})
}

// SendError отправляет ошибку движка; HTTP статус определяется кодом ошибки
func SendError(c *gin.Context, err error) {
	resp := ErrorResponse{Error: true, Message: err.Error()}
	var se *algorithms.SimilarityError
	if errors.As(err, &se) {
		resp.Code = se.Code
		resp.Details = se.Details
	}
	sendError(c, StatusForError(err), resp)
}

func sendError(c *gin.Context, statusCode int, resp ErrorResponse) {
	resp.RequestID = middleware.GetRequestIDFromGin(c)

	level := slog.LevelWarn
	if statusCode >= http.StatusInternalServerError {
		level = slog.LevelError
	}
	slog.Log(c.Request.Context(), level, "Gin HTTP error",
		"error", resp.Message,
		"code", resp.Code,
		"status_code", statusCode,
		"request_id", resp.RequestID,
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
	)

	c.JSON(statusCode, resp)
}

// StatusForError HTTP статус для ошибки движка
func StatusForError(err error) int {
	switch {
	case errors.Is(err, context.Canceled):
		return statusClientClosedRequest
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	}

	switch algorithms.CodeOf(err) {
	case algorithms.ErrCodeInputValidation, algorithms.ErrCodeConfiguration, algorithms.ErrCodeImportFailed:
		return http.StatusBadRequest
	case algorithms.ErrCodeInsufficientTrainingData, algorithms.ErrCodeTrainingFailed:
		return http.StatusUnprocessableEntity
	case algorithms.ErrCodeNotTrained:
		return http.StatusConflict
	case algorithms.ErrCodeBackendUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// statusClientClosedRequest клиент закрыл соединение до ответа
const statusClientClosedRequest = 499
