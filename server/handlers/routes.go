package handlers

import (
	"github.com/gin-gonic/gin"
)

// Handlers набор обработчиков API
type Handlers struct {
	Matching      *MatchingHandler
	Similarity    *SimilarityHandler
	Normalization *NormalizationHandler
	Training      *TrainingHandler
	System        *SystemHandler
}

// RegisterRoutes регистрирует маршруты API под APIBasePath
func RegisterRoutes(router *gin.Engine, h *Handlers) {
	api := router.Group(APIBasePath)

	api.GET("/health", h.System.HandleHealth)
	api.GET("/embedding/status", h.System.HandleEmbeddingStatus)

	api.POST("/match", h.Matching.HandleMatch)
	api.POST("/match/search", h.Matching.HandleSearch)

	api.POST("/similarity/compare", h.Similarity.HandleCompare)

	normalizationGroup := api.Group("/normalization")
	{
		normalizationGroup.POST("/normalize", h.Normalization.HandleNormalize)
		normalizationGroup.POST("/brands/learn", h.Normalization.HandleLearnBrands)
		normalizationGroup.GET("/stats", h.Normalization.HandleStats)
	}

	trainingGroup := api.Group("/training")
	{
		trainingGroup.POST("/examples", h.Training.HandleAddExample)
		trainingGroup.POST("/train", h.Training.HandleTrain)
		trainingGroup.POST("/predict", h.Training.HandlePredict)
		trainingGroup.POST("/suggest", h.Training.HandleSuggest)
		trainingGroup.GET("/threshold", h.Training.HandleThreshold)
		trainingGroup.GET("/status", h.Training.HandleStatus)
		trainingGroup.GET("/export", h.Training.HandleExport)
		trainingGroup.POST("/import", h.Training.HandleImport)
	}
}
