package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"productsim/server/services"
)

// NormalizeRequest наименование для нормализации
type NormalizeRequest struct {
	Text string `json:"text"`
}

// NormalizationHandler обработчик нормализации и лексикона марок
type NormalizationHandler struct {
	normalizationService *services.NormalizationService
}

// NewNormalizationHandler создает новый обработчик нормализации
func NewNormalizationHandler(normalizationService *services.NormalizationService) *NormalizationHandler {
	return &NormalizationHandler{normalizationService: normalizationService}
}

// HandleNormalize нормализует одно наименование
// @Summary Нормализовать наименование
// @Description Возвращает канонический текст, токены, марку и категории
// @Tags normalization
// @Accept json
// @Produce json
// @Param request body NormalizeRequest true "Наименование"
// @Success 200 {object} normalization.NormalizedProduct
// @Failure 400 {object} ErrorResponse "Пустое наименование"
// @Router /normalization/normalize [post]
func (h *NormalizationHandler) HandleNormalize(c *gin.Context) {
	var req NormalizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		SendJSONError(c, http.StatusBadRequest, fmt.Sprintf("Invalid request body: %s", err.Error()))
		return
	}

	result, err := h.normalizationService.Normalize(c.Request.Context(), req.Text)
	if err != nil {
		SendError(c, err)
		return
	}
	SendJSONResponse(c, http.StatusOK, result)
}

// HandleLearnBrands ищет марки в корпусе и добавляет их в лексикон
// @Summary Выучить марки по корпусу
// @Description Частотная эвристика: первый значимый токен, встретившийся не менее min_occurrences раз. dry_run только показывает кандидатов.
// @Tags normalization
// @Accept json
// @Produce json
// @Param request body services.LearnBrandsRequest true "Корпус"
// @Success 200 {object} services.LearnBrandsResponse
// @Failure 400 {object} ErrorResponse "Пустой корпус"
// @Router /normalization/brands/learn [post]
func (h *NormalizationHandler) HandleLearnBrands(c *gin.Context) {
	var req services.LearnBrandsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		SendJSONError(c, http.StatusBadRequest, fmt.Sprintf("Invalid request body: %s", err.Error()))
		return
	}

	resp, err := h.normalizationService.LearnBrands(c.Request.Context(), req)
	if err != nil {
		SendError(c, err)
		return
	}
	SendJSONResponse(c, http.StatusOK, resp)
}

// HandleStats возвращает статистику нормализатора
// @Summary Статистика нормализатора
// @Tags normalization
// @Produce json
// @Success 200 {object} normalization.NormalizerStats
// @Router /normalization/stats [get]
func (h *NormalizationHandler) HandleStats(c *gin.Context) {
	SendJSONResponse(c, http.StatusOK, h.normalizationService.Stats())
}
