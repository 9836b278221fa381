package repos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/findyourside/findyourside-backend/internal/logger"
	"github.com/findyourside/findyourside-backend/internal/types"
)

type PlaybookRepo interface {
	Create(ctx context.Context, tx *gorm.DB, playbook *types.Playbook) (*types.Playbook, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Playbook, error)
	SetNudgeOptIn(ctx context.Context, tx *gorm.DB, id uuid.UUID, optedIn bool) error
	// ListDueDay1Nudges returns opted-in playbooks generated before cutoff
	// whose reminder has not been sent yet.
	ListDueDay1Nudges(ctx context.Context, tx *gorm.DB, cutoff time.Time, limit int) ([]*types.Playbook, error)
	MarkNudgeSent(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
}

type playbookRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPlaybookRepo(db *gorm.DB, baseLog *logger.Logger) PlaybookRepo {
	repoLog := baseLog.With("repo", "PlaybookRepo")
	return &playbookRepo{db: db, log: repoLog}
}

func (r *playbookRepo) Create(ctx context.Context, tx *gorm.DB, playbook *types.Playbook) (*types.Playbook, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if err := transaction.WithContext(ctx).Create(playbook).Error; err != nil {
		return nil, err
	}
	return playbook, nil
}

func (r *playbookRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Playbook, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var row types.Playbook
	if err := transaction.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *playbookRepo) SetNudgeOptIn(ctx context.Context, tx *gorm.DB, id uuid.UUID, optedIn bool) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).
		Model(&types.Playbook{}).
		Where("id = ?", id).
		Update("day1_nudge_opted_in", optedIn).Error
}

func (r *playbookRepo) ListDueDay1Nudges(ctx context.Context, tx *gorm.DB, cutoff time.Time, limit int) ([]*types.Playbook, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.Playbook
	q := transaction.WithContext(ctx).
		Where("day1_nudge_opted_in = ? AND day1_nudge_sent = ?", true, false).
		Where("created_at <= ?", cutoff).
		Order("created_at ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *playbookRepo) MarkNudgeSent(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).
		Model(&types.Playbook{}).
		Where("id = ?", id).
		Update("day1_nudge_sent", true).Error
}
