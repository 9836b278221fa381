package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Submission types accepted by the save-data endpoint.
const (
	SubmissionQuizResponse        = "quiz_response"
	SubmissionIdeaSubmission      = "idea_submission"
	SubmissionWaitlist            = "waitlist"
	SubmissionFeedback            = "feedback"
	SubmissionInterest            = "interest"
	SubmissionAccountabilityOptIn = "accountability_optin"
)

// Submission is an append-only analytics/CRM record (quiz answers, idea-form
// answers, waitlist signups, feedback). Never read back by the generation
// path.
type Submission struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Type      string         `gorm:"column:type;not null;index" json:"type"`
	Email     string         `gorm:"column:email;index" json:"email"`
	Data      datatypes.JSON `gorm:"column:data" json:"data"`
	CreatedAt time.Time      `json:"created_at"`
}

func (Submission) TableName() string { return "submissions" }

func (s *Submission) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
