package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"productsim/server/services"
)

// MatchingHandler обработчик группировки товаров
type MatchingHandler struct {
	matchingService *services.MatchingService
}

// NewMatchingHandler создает обработчик сопоставления
func NewMatchingHandler(matchingService *services.MatchingService) *MatchingHandler {
	return &MatchingHandler{matchingService: matchingService}
}

// HandleMatch группирует записи на дубликаты, похожие и одиночные
// @Summary Сопоставить набор товаров
// @Description Отбирает записи по частоте и группирует их на дубликаты, похожие и одиночные
// @Tags matching
// @Accept json
// @Produce json
// @Param request body services.MatchRequest true "Записи и переопределения порогов"
// @Success 200 {object} services.MatchResponse
// @Failure 400 {object} ErrorResponse "Неверный запрос или пороги"
// @Failure 409 {object} ErrorResponse "Откалиброванный порог запрошен без обученной модели"
// @Failure 500 {object} ErrorResponse "Внутренняя ошибка сервера"
// @Router /match [post]
func (h *MatchingHandler) HandleMatch(c *gin.Context) {
	var req services.MatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		SendJSONError(c, http.StatusBadRequest, fmt.Sprintf("Invalid request body: %s", err.Error()))
		return
	}

	resp, err := h.matchingService.Match(c.Request.Context(), req)
	if err != nil {
		SendError(c, err)
		return
	}
	SendJSONResponse(c, http.StatusOK, resp)
}

// HandleSearch ищет записи, похожие на целевое описание
// @Summary Найти похожие товары
// @Tags matching
// @Accept json
// @Produce json
// @Param request body services.SearchRequest true "Целевое описание и записи"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} ErrorResponse "Неверный запрос"
// @Router /match/search [post]
func (h *MatchingHandler) HandleSearch(c *gin.Context) {
	var req services.SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		SendJSONError(c, http.StatusBadRequest, fmt.Sprintf("Invalid request body: %s", err.Error()))
		return
	}

	neighbors, err := h.matchingService.FindSimilar(c.Request.Context(), req)
	if err != nil {
		SendError(c, err)
		return
	}
	SendJSONResponse(c, http.StatusOK, gin.H{
		"target":    req.Target,
		"neighbors": neighbors,
		"count":     len(neighbors),
	})
}
