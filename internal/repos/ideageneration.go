package repos

import (
	"context"

	"gorm.io/gorm"

	"github.com/findyourside/findyourside-backend/internal/logger"
	"github.com/findyourside/findyourside-backend/internal/types"
)

type IdeaGenerationRepo interface {
	Create(ctx context.Context, tx *gorm.DB, generation *types.IdeaGeneration) (*types.IdeaGeneration, error)
}

type ideaGenerationRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewIdeaGenerationRepo(db *gorm.DB, baseLog *logger.Logger) IdeaGenerationRepo {
	repoLog := baseLog.With("repo", "IdeaGenerationRepo")
	return &ideaGenerationRepo{db: db, log: repoLog}
}

func (r *ideaGenerationRepo) Create(ctx context.Context, tx *gorm.DB, generation *types.IdeaGeneration) (*types.IdeaGeneration, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if err := transaction.WithContext(ctx).Create(generation).Error; err != nil {
		return nil, err
	}
	return generation, nil
}
