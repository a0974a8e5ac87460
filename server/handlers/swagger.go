package handlers

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"productsim/docs"
)

// APIBasePath префикс маршрутов API
const APIBasePath = "/api"

// RegisterSwaggerRoutes публикует документ OpenAPI (/swagger/doc.json) и Swagger UI.
// Пустой host оставляет выбор хоста клиенту.
func RegisterSwaggerRoutes(router *gin.Engine, host string) {
	docs.SwaggerInfo.Host = host
	docs.SwaggerInfo.BasePath = APIBasePath

	// Модели свернуты: схемы результатов сопоставления слишком объемны
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler,
		ginSwagger.URL("/swagger/doc.json"),
		ginSwagger.DocExpansion("list"),
		ginSwagger.DefaultModelsExpandDepth(-1)))
}
