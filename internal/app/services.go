package app

import (
	"fmt"

	"github.com/findyourside/findyourside-backend/internal/clients/anthropic"
	"github.com/findyourside/findyourside-backend/internal/clients/brevo"
	"github.com/findyourside/findyourside-backend/internal/clients/redisq"
	"github.com/findyourside/findyourside-backend/internal/logger"
	"github.com/findyourside/findyourside-backend/internal/quota"
	"github.com/findyourside/findyourside-backend/internal/services"
	"github.com/findyourside/findyourside-backend/internal/utils"
)

type Services struct {
	Quota          *quota.Service
	Generation     services.GenerationService
	Limits         services.LimitsService
	Submission     services.SubmissionService
	Email          services.EmailService
	ReminderWorker *services.ReminderWorker
}

func wireServices(log *logger.Logger, reposet Repos) (Services, error) {
	log.Info("Wiring services...")

	store, err := counterStore(log)
	if err != nil {
		return Services{}, err
	}

	quotaSvc := quota.NewService(
		log,
		quota.LimitsFromEnv(log),
		store,
		reposet.UserGenerationLimit,
		reposet.APIUsage,
		reposet.IPRateLimit,
	)

	llm, err := anthropic.NewFromEnv(log)
	if err != nil {
		return Services{}, fmt.Errorf("init anthropic client: %w", err)
	}
	mailer, err := brevo.NewFromEnv(log)
	if err != nil {
		return Services{}, fmt.Errorf("init brevo client: %w", err)
	}

	generation := services.NewGenerationService(
		log, quotaSvc, llm,
		reposet.Playbook, reposet.IdeaGeneration, reposet.UserGenerationLimit,
	)
	limits := services.NewLimitsService(
		log, quotaSvc,
		reposet.UserGenerationLimit, reposet.IPRateLimit,
	)
	submission := services.NewSubmissionService(log, reposet.Submission)
	email := services.NewEmailService(log, mailer, reposet.Playbook)
	reminder := services.NewReminderWorker(log, reposet.Playbook, email)

	return Services{
		Quota:          quotaSvc,
		Generation:     generation,
		Limits:         limits,
		Submission:     submission,
		Email:          email,
		ReminderWorker: reminder,
	}, nil
}

// counterStore picks the quota counter backend: Redis when QUOTA_STORE is
// "redis" (the default for deployments), process-local memory otherwise.
func counterStore(log *logger.Logger) (quota.CounterStore, error) {
	backend := utils.GetEnv("QUOTA_STORE", "redis", log)
	switch backend {
	case "redis":
		store, err := redisq.New(log)
		if err != nil {
			return nil, fmt.Errorf("init redis counter store: %w", err)
		}
		return store, nil
	case "memory":
		log.Warn("Using in-memory quota counters, limits are per-instance only")
		return quota.NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown QUOTA_STORE %q", backend)
	}
}
