package app

import (
	"gorm.io/gorm"

	"github.com/findyourside/findyourside-backend/internal/logger"
	"github.com/findyourside/findyourside-backend/internal/repos"
)

type Repos struct {
	IPRateLimit         repos.IPRateLimitRepo
	UserGenerationLimit repos.UserGenerationLimitRepo
	APIUsage            repos.APIUsageRepo
	Playbook            repos.PlaybookRepo
	IdeaGeneration      repos.IdeaGenerationRepo
	Submission          repos.SubmissionRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		IPRateLimit:         repos.NewIPRateLimitRepo(db, log),
		UserGenerationLimit: repos.NewUserGenerationLimitRepo(db, log),
		APIUsage:            repos.NewAPIUsageRepo(db, log),
		Playbook:            repos.NewPlaybookRepo(db, log),
		IdeaGeneration:      repos.NewIdeaGenerationRepo(db, log),
		Submission:          repos.NewSubmissionRepo(db, log),
	}
}
