package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"gorm.io/datatypes"

	"github.com/findyourside/findyourside-backend/internal/apierr"
	"github.com/findyourside/findyourside-backend/internal/logger"
	"github.com/findyourside/findyourside-backend/internal/repos"
	"github.com/findyourside/findyourside-backend/internal/types"
)

var allowedSubmissionTypes = map[string]struct{}{
	types.SubmissionQuizResponse:        {},
	types.SubmissionIdeaSubmission:      {},
	types.SubmissionWaitlist:            {},
	types.SubmissionFeedback:            {},
	types.SubmissionInterest:            {},
	types.SubmissionAccountabilityOptIn: {},
}

type SaveDataRequest struct {
	Type  string          `json:"type"`
	Email string          `json:"email"`
	Data  json.RawMessage `json:"data"`
}

type SubmissionService interface {
	SaveData(ctx context.Context, req SaveDataRequest) (*types.Submission, error)
}

type submissionService struct {
	log         *logger.Logger
	submissions repos.SubmissionRepo
}

func NewSubmissionService(log *logger.Logger, submissions repos.SubmissionRepo) SubmissionService {
	return &submissionService{
		log:         log.With("service", "SubmissionService"),
		submissions: submissions,
	}
}

// SaveData appends one typed submission record. Records are write-only from
// the product's perspective; nothing on the generation path reads them back.
func (s *submissionService) SaveData(ctx context.Context, req SaveDataRequest) (*types.Submission, error) {
	submissionType := strings.TrimSpace(req.Type)
	if _, ok := allowedSubmissionTypes[submissionType]; !ok {
		return nil, apierr.New(http.StatusBadRequest, apierr.CodeValidation,
			fmt.Errorf("unknown submission type %q", submissionType))
	}
	if len(req.Data) == 0 {
		return nil, apierr.New(http.StatusBadRequest, apierr.CodeValidation, fmt.Errorf("data is required"))
	}

	saved, err := s.submissions.Create(ctx, nil, &types.Submission{
		Type:  submissionType,
		Email: strings.TrimSpace(req.Email),
		Data:  datatypes.JSON(req.Data),
	})
	if err != nil {
		s.log.Error("Failed to save submission", "type", submissionType, "error", err)
		return nil, apierr.New(http.StatusInternalServerError, apierr.CodePersistence, fmt.Errorf("failed to save data"))
	}
	return saved, nil
}
