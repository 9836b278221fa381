package repos

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/findyourside/findyourside-backend/internal/logger"
	"github.com/findyourside/findyourside-backend/internal/types"
)

type IPRateLimitRepo interface {
	// Get returns the row for ip, or a zero-usage row when none exists.
	Get(ctx context.Context, tx *gorm.DB, ip string) (*types.IPRateLimit, error)
	// ResetIfStale zeroes both counters when the stored last_reset is not
	// today. Returns the row as of today.
	ResetIfStale(ctx context.Context, tx *gorm.DB, ip, today string) (*types.IPRateLimit, error)
	// Increment bumps the counter for kind by one, creating the row if
	// needed.
	Increment(ctx context.Context, tx *gorm.DB, ip string, kind types.GenerationKind, today string) error
}

type ipRateLimitRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewIPRateLimitRepo(db *gorm.DB, baseLog *logger.Logger) IPRateLimitRepo {
	repoLog := baseLog.With("repo", "IPRateLimitRepo")
	return &ipRateLimitRepo{db: db, log: repoLog}
}

func (r *ipRateLimitRepo) Get(ctx context.Context, tx *gorm.DB, ip string) (*types.IPRateLimit, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var row types.IPRateLimit
	err := transaction.WithContext(ctx).First(&row, "ip_address = ?", ip).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &types.IPRateLimit{IPAddress: ip}, nil
		}
		return nil, err
	}
	return &row, nil
}

func (r *ipRateLimitRepo) ResetIfStale(ctx context.Context, tx *gorm.DB, ip, today string) (*types.IPRateLimit, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	row, err := r.Get(ctx, transaction, ip)
	if err != nil {
		return nil, err
	}
	if row.LastReset == "" || row.LastReset == today {
		return row, nil
	}

	if err := transaction.WithContext(ctx).
		Model(&types.IPRateLimit{}).
		Where("ip_address = ?", ip).
		Updates(map[string]interface{}{
			"ideas_today":     0,
			"playbooks_today": 0,
			"last_reset":      today,
		}).Error; err != nil {
		return nil, err
	}
	row.IdeasToday = 0
	row.PlaybooksToday = 0
	row.LastReset = today
	return row, nil
}

func (r *ipRateLimitRepo) Increment(ctx context.Context, tx *gorm.DB, ip string, kind types.GenerationKind, today string) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	column := "ideas_today"
	row := types.IPRateLimit{IPAddress: ip, IdeasToday: 1, LastReset: today}
	if kind == types.KindPlaybooks {
		column = "playbooks_today"
		row = types.IPRateLimit{IPAddress: ip, PlaybooksToday: 1, LastReset: today}
	}

	return transaction.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "ip_address"}},
		DoUpdates: clause.Assignments(map[string]interface{}{column: gorm.Expr(column + " + 1")}),
	}).Create(&row).Error
}
