package app

import (
	"github.com/gin-gonic/gin"

	"github.com/findyourside/findyourside-backend/internal/logger"
	"github.com/findyourside/findyourside-backend/internal/server"
)

func wireRouter(log *logger.Logger, handlerset Handlers) *gin.Engine {
	return server.NewRouter(server.RouterConfig{
		Log:               log,
		GenerationHandler: handlerset.Generation,
		SubmissionHandler: handlerset.Submission,
		LimitsHandler:     handlerset.Limits,
		EmailHandler:      handlerset.Email,
	})
}
