package types

import (
	"time"
)

// IPRateLimit is the durable per-IP daily counter row. LastReset holds the
// calendar day (YYYY-MM-DD, UTC) the counters belong to; counters are zeroed
// lazily when a request arrives on a later day.
type IPRateLimit struct {
	IPAddress      string    `gorm:"primaryKey;column:ip_address" json:"ip_address"`
	IdeasToday     int       `gorm:"column:ideas_today;not null;default:0" json:"ideas_today"`
	PlaybooksToday int       `gorm:"column:playbooks_today;not null;default:0" json:"playbooks_today"`
	LastReset      string    `gorm:"column:last_reset;not null" json:"last_reset"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func (IPRateLimit) TableName() string { return "ip_rate_limits" }
