package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Provenance of a persisted playbook: model output that parsed cleanly, or
// the generic fallback served when it did not.
const (
	SourceModel    = "model"
	SourceFallback = "fallback"
)

// Playbook is the persisted generation record for a 30-day launch playbook.
// Append-only. The nudge flags drive the day-1 reminder sweep.
type Playbook struct {
	ID               uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserEmail        string         `gorm:"column:user_email;not null;index" json:"user_email"`
	BusinessName     string         `gorm:"column:business_name;not null" json:"business_name"`
	PlaybookData     datatypes.JSON `gorm:"column:playbook_data" json:"playbook_data"`
	Source           string         `gorm:"column:source;not null;default:model" json:"source"`
	Day1NudgeOptedIn bool           `gorm:"column:day1_nudge_opted_in;not null;default:false" json:"day1_nudge_opted_in"`
	Day1NudgeSent    bool           `gorm:"column:day1_nudge_sent;not null;default:false" json:"day1_nudge_sent"`
	CreatedAt        time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
}

func (Playbook) TableName() string { return "playbooks" }

func (p *Playbook) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
