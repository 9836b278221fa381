package types

import (
	"time"
)

// UserGenerationLimit is the dedicated per-email allowance counter, scoped
// to a calendar month ("YYYY-MM"). The free tier allows two idea sets and
// two playbooks per email per month; the audit tables are not consulted for
// this check, so purging old audit rows never refunds usage.
type UserGenerationLimit struct {
	Email              string    `gorm:"primaryKey;column:email" json:"email"`
	Month              string    `gorm:"primaryKey;column:month" json:"month"`
	IdeaSetsGenerated  int       `gorm:"column:idea_sets_generated;not null;default:0" json:"idea_sets_generated"`
	PlaybooksGenerated int       `gorm:"column:playbooks_generated;not null;default:0" json:"playbooks_generated"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

func (UserGenerationLimit) TableName() string { return "user_generation_limits" }
