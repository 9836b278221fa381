package types

import (
	"time"
)

// APIUsage is the global monthly spend row, keyed on "YYYY-MM". TotalSpend
// accumulates the fixed per-generation cost estimates and acts as the
// circuit breaker against the monthly budget. Monotonically non-decreasing
// within a month.
type APIUsage struct {
	Month              string    `gorm:"primaryKey;column:month" json:"month"`
	TotalSpend         float64   `gorm:"column:total_spend;not null;default:0" json:"total_spend"`
	IdeaSetsGenerated  int       `gorm:"column:idea_sets_generated;not null;default:0" json:"idea_sets_generated"`
	PlaybooksGenerated int       `gorm:"column:playbooks_generated;not null;default:0" json:"playbooks_generated"`
	LastUpdated        time.Time `gorm:"column:last_updated" json:"last_updated"`
}

func (APIUsage) TableName() string { return "api_usage" }
