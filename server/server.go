package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"

	"productsim/internal/container"
	"productsim/server/handlers"
	"productsim/server/middleware"
)

// Server HTTP сервер API движка схожести
type Server struct {
	container  *container.Container
	logger     *slog.Logger
	router     *gin.Engine
	httpServer *http.Server
}

// NewServer создает сервер поверх контейнера зависимостей
func NewServer(c *container.Container) *Server {
	s := &Server{
		container: c,
		logger:    c.Logger,
	}
	s.router = s.buildRouter()
	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%s", c.Config.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 5 * time.Minute, // обучение и сопоставление больших наборов
		IdleTimeout:  120 * time.Second,
	}
	return s
}

func (s *Server) buildRouter() *gin.Engine {
	// Режим Gin можно переопределить через GIN_MODE
	if ginMode := os.Getenv("GIN_MODE"); ginMode == "" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(middleware.GinRequestIDMiddleware())
	router.Use(middleware.GinRecoveryMiddleware(s.logger))
	router.Use(middleware.GinGzipMiddleware())
	router.Use(middleware.GinLoggerMiddleware(s.logger))

	handlers.RegisterSwaggerRoutes(router, "localhost:"+s.container.Config.Port)

	// Интерфейс HealthChecker задается только при открытом хранилище
	var store handlers.HealthChecker
	if s.container.TrainingDB != nil {
		store = s.container.TrainingDB
	}

	handlers.RegisterRoutes(router, &handlers.Handlers{
		Matching:      handlers.NewMatchingHandler(s.container.MatchingService),
		Similarity:    handlers.NewSimilarityHandler(s.container.SimilarityService),
		Normalization: handlers.NewNormalizationHandler(s.container.NormalizationService),
		Training:      handlers.NewTrainingHandler(s.container.TrainingService),
		System:        handlers.NewSystemHandler(s.container.EmbeddingService, store),
	})
	return router
}

// ServeHTTP реализует http.Handler для тестов и вспомогательных утилит
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Start запускает HTTP сервер и блокируется до его остановки
func (s *Server) Start() error {
	addr := s.httpServer.Addr
	s.logger.Info("starting HTTP server", "addr", addr)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start HTTP server on %s: %w", addr, err)
	}
	return nil
}

// Shutdown останавливает HTTP сервер gracefully
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("initiating graceful shutdown")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown HTTP server: %w", err)
	}
	s.logger.Info("graceful shutdown completed")
	return nil
}
