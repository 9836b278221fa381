package repos

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/findyourside/findyourside-backend/internal/logger"
	"github.com/findyourside/findyourside-backend/internal/types"
)

type APIUsageRepo interface {
	// Get returns the usage row for month ("YYYY-MM"), or a zero row when
	// nothing has been generated this month.
	Get(ctx context.Context, tx *gorm.DB, month string) (*types.APIUsage, error)
	// AddSpend adds the estimated cost of one generation of kind to the
	// month's row, creating it if needed.
	AddSpend(ctx context.Context, tx *gorm.DB, month string, kind types.GenerationKind, cost float64) error
}

type apiUsageRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAPIUsageRepo(db *gorm.DB, baseLog *logger.Logger) APIUsageRepo {
	repoLog := baseLog.With("repo", "APIUsageRepo")
	return &apiUsageRepo{db: db, log: repoLog}
}

func (r *apiUsageRepo) Get(ctx context.Context, tx *gorm.DB, month string) (*types.APIUsage, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var row types.APIUsage
	err := transaction.WithContext(ctx).First(&row, "month = ?", month).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &types.APIUsage{Month: month}, nil
		}
		return nil, err
	}
	return &row, nil
}

func (r *apiUsageRepo) AddSpend(ctx context.Context, tx *gorm.DB, month string, kind types.GenerationKind, cost float64) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	countColumn := "idea_sets_generated"
	row := types.APIUsage{Month: month, TotalSpend: cost, IdeaSetsGenerated: 1, LastUpdated: time.Now().UTC()}
	if kind == types.KindPlaybooks {
		countColumn = "playbooks_generated"
		row = types.APIUsage{Month: month, TotalSpend: cost, PlaybooksGenerated: 1, LastUpdated: time.Now().UTC()}
	}

	return transaction.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "month"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"total_spend": gorm.Expr("total_spend + ?", cost),
			countColumn:   gorm.Expr(countColumn + " + 1"),
			"last_updated": time.Now().UTC(),
		}),
	}).Create(&row).Error
}
