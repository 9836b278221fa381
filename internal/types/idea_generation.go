package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// IdeaGeneration is the append-only audit record of one generated idea set.
type IdeaGeneration struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Email     string         `gorm:"column:email;not null;index" json:"email"`
	Ideas     datatypes.JSON `gorm:"column:ideas" json:"ideas"`
	CreatedAt time.Time      `json:"created_at"`
}

func (IdeaGeneration) TableName() string { return "idea_generations" }

func (g *IdeaGeneration) BeforeCreate(tx *gorm.DB) error {
	if g.ID == uuid.Nil {
		g.ID = uuid.New()
	}
	return nil
}
