package repos

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/findyourside/findyourside-backend/internal/logger"
	"github.com/findyourside/findyourside-backend/internal/types"
)

type UserGenerationLimitRepo interface {
	// Get returns the allowance row for (email, month), or a zero-usage row
	// when the email has not generated anything that month.
	Get(ctx context.Context, tx *gorm.DB, email, month string) (*types.UserGenerationLimit, error)
	// Increment bumps the counter for kind by one, creating the row if
	// needed.
	Increment(ctx context.Context, tx *gorm.DB, email, month string, kind types.GenerationKind) error
}

type userGenerationLimitRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUserGenerationLimitRepo(db *gorm.DB, baseLog *logger.Logger) UserGenerationLimitRepo {
	repoLog := baseLog.With("repo", "UserGenerationLimitRepo")
	return &userGenerationLimitRepo{db: db, log: repoLog}
}

func (r *userGenerationLimitRepo) Get(ctx context.Context, tx *gorm.DB, email, month string) (*types.UserGenerationLimit, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var row types.UserGenerationLimit
	err := transaction.WithContext(ctx).First(&row, "email = ? AND month = ?", email, month).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &types.UserGenerationLimit{Email: email, Month: month}, nil
		}
		return nil, err
	}
	return &row, nil
}

func (r *userGenerationLimitRepo) Increment(ctx context.Context, tx *gorm.DB, email, month string, kind types.GenerationKind) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	column := "idea_sets_generated"
	row := types.UserGenerationLimit{Email: email, Month: month, IdeaSetsGenerated: 1}
	if kind == types.KindPlaybooks {
		column = "playbooks_generated"
		row = types.UserGenerationLimit{Email: email, Month: month, PlaybooksGenerated: 1}
	}

	return transaction.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "email"}, {Name: "month"}},
		DoUpdates: clause.Assignments(map[string]interface{}{column: gorm.Expr(column + " + 1")}),
	}).Create(&row).Error
}
