package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"productsim/server/services"
)

// CompareRequest пара описаний для сравнения
type CompareRequest struct {
	Text1 string `json:"text1"`
	Text2 string `json:"text2"`
}

// SimilarityHandler обработчик попарного сравнения
type SimilarityHandler struct {
	similarityService *services.SimilarityService
}

// NewSimilarityHandler создает новый обработчик схожести
func NewSimilarityHandler(similarityService *services.SimilarityService) *SimilarityHandler {
	return &SimilarityHandler{similarityService: similarityService}
}

// HandleCompare сравнивает два описания
// @Summary Сравнить два описания
// @Description Возвращает признаки обоих описаний и разложение оценки схожести
// @Tags similarity
// @Accept json
// @Produce json
// @Param request body CompareRequest true "Пара описаний"
// @Success 200 {object} services.CompareResult
// @Failure 400 {object} ErrorResponse "Пустое описание"
// @Router /similarity/compare [post]
func (h *SimilarityHandler) HandleCompare(c *gin.Context) {
	var req CompareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		SendJSONError(c, http.StatusBadRequest, fmt.Sprintf("Invalid request body: %s", err.Error()))
		return
	}

	result, err := h.similarityService.Compare(c.Request.Context(), req.Text1, req.Text2)
	if err != nil {
		SendError(c, err)
		return
	}
	SendJSONResponse(c, http.StatusOK, result)
}
