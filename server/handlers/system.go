package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"productsim/server/services"
)

// HealthChecker проверка доступности зависимости
type HealthChecker interface {
	Ping() error
}

// SystemHandler обработчик служебных маршрутов
type SystemHandler struct {
	embeddingService *services.EmbeddingService
	store            HealthChecker
	startedAt        time.Time
}

// NewSystemHandler создает обработчик. store может быть nil.
func NewSystemHandler(embeddingService *services.EmbeddingService, store HealthChecker) *SystemHandler {
	return &SystemHandler{
		embeddingService: embeddingService,
		store:            store,
		startedAt:        time.Now(),
	}
}

// HandleHealth проверка состояния сервиса
// @Summary Проверка состояния
// @Tags system
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 503 {object} map[string]interface{}
// @Router /health [get]
func (h *SystemHandler) HandleHealth(c *gin.Context) {
	status := http.StatusOK
	resp := gin.H{
		"status":         "ok",
		"uptime_seconds": int64(time.Since(h.startedAt).Seconds()),
	}
	if h.store != nil {
		if err := h.store.Ping(); err != nil {
			status = http.StatusServiceUnavailable
			resp["status"] = "degraded"
			resp["training_store"] = err.Error()
		} else {
			resp["training_store"] = "ok"
		}
	}
	SendJSONResponse(c, status, resp)
}

// HandleEmbeddingStatus состояние бэкендов эмбеддингов
// @Summary Состояние эмбеддингов
// @Description Загружает бэкенды при первом обращении и возвращает статистику кэша и ансамбля
// @Tags embedding
// @Produce json
// @Success 200 {object} services.EmbeddingStatus
// @Router /embedding/status [get]
func (h *SystemHandler) HandleEmbeddingStatus(c *gin.Context) {
	SendJSONResponse(c, http.StatusOK, h.embeddingService.Status(c.Request.Context()))
}
