package server

import (
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/findyourside/findyourside-backend/internal/handlers"
	"github.com/findyourside/findyourside-backend/internal/logger"
	"github.com/findyourside/findyourside-backend/internal/middleware"
	"github.com/findyourside/findyourside-backend/internal/utils"
)

type RouterConfig struct {
	Log               *logger.Logger
	GenerationHandler *handlers.GenerationHandler
	SubmissionHandler *handlers.SubmissionHandler
	LimitsHandler     *handlers.LimitsHandler
	EmailHandler      *handlers.EmailHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.ClientIPResolver())
	router.Use(middleware.RequestLogger(cfg.Log))

	// Cors
	allowOrigins := strings.Split(utils.GetEnv("CORS_ALLOW_ORIGINS",
		"http://localhost:3000,http://localhost:5173,https://findyourside.io", cfg.Log), ",")
	router.Use(cors.New(cors.Config{
		AllowOrigins:     allowOrigins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))

	router.GET("/healthcheck", handlers.HealthCheck)

	api := router.Group("/api")
	{
		api.POST("/generate-ideas", cfg.GenerationHandler.GenerateIdeas)
		api.POST("/generate-playbook", cfg.GenerationHandler.GeneratePlaybook)
		api.POST("/save-data", cfg.SubmissionHandler.SaveData)
		api.POST("/check-limits", cfg.LimitsHandler.CheckLimits)
		api.POST("/send-email", cfg.EmailHandler.SendPlaybook)
	}

	return router
}
