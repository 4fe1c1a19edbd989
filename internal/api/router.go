package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/gaitlab/gait-backend-go/internal/config"
	"github.com/gaitlab/gait-backend-go/internal/database"
	"github.com/gaitlab/gait-backend-go/internal/handler"
	"github.com/gaitlab/gait-backend-go/internal/middleware"
	"github.com/gaitlab/gait-backend-go/internal/repository"
	"github.com/gaitlab/gait-backend-go/internal/service"
)

// SetupRouter wires repositories, services and handlers onto the HTTP routes.
func SetupRouter(cfg *config.Config) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.Logger())
	r.Use(middleware.RateLimit(120, time.Minute))

	// CORS
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	})

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "Gait Backend API is running",
		})
	})

	db := database.GetDB()
	trialRepo := repository.NewTrialRepository(db)
	eventRepo := repository.NewEventRepository(db)
	metricsRepo := repository.NewMetricsRepository(db)

	trialService := service.NewTrialService(trialRepo)
	analysisService := service.NewAnalysisService(trialRepo, eventRepo, metricsRepo, cfg)

	trialHandler := handler.NewTrialHandler(trialService)
	analysisHandler := handler.NewAnalysisHandler(analysisService)
	authHandler := handler.NewAuthHandler(cfg.JWTSecret)

	api := r.Group("/api/v1")
	{
		api.POST("/auth/token", authHandler.IssueToken)

		trials := api.Group("/trials")
		{
			trials.GET("", trialHandler.GetTrials)
			trials.GET("/:id", trialHandler.GetTrialByID)
			trials.GET("/:id/events", analysisHandler.GetEvents)
			trials.GET("/:id/metrics", analysisHandler.GetMetrics)
			trials.GET("/:id/emg/:channel", analysisHandler.GetEMGChannel)

			// Mutating routes require a bearer token.
			auth := trials.Group("", middleware.Auth(cfg.JWTSecret))
			{
				auth.POST("", trialHandler.CreateTrial)
				auth.POST("/:id/analyze", analysisHandler.AnalyzeTrial)
				auth.DELETE("/:id", trialHandler.DeleteTrial)
			}
		}
	}

	return r
}
