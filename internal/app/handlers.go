package app

import (
	"github.com/findyourside/findyourside-backend/internal/handlers"
	"github.com/findyourside/findyourside-backend/internal/logger"
)

type Handlers struct {
	Generation *handlers.GenerationHandler
	Submission *handlers.SubmissionHandler
	Limits     *handlers.LimitsHandler
	Email      *handlers.EmailHandler
}

func wireHandlers(log *logger.Logger, serviceset Services) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Generation: handlers.NewGenerationHandler(serviceset.Generation),
		Submission: handlers.NewSubmissionHandler(serviceset.Submission),
		Limits:     handlers.NewLimitsHandler(serviceset.Limits),
		Email:      handlers.NewEmailHandler(serviceset.Email),
	}
}
