package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/findyourside/findyourside-backend/internal/apierr"
	"github.com/findyourside/findyourside-backend/internal/clients/anthropic"
	"github.com/findyourside/findyourside-backend/internal/logger"
	"github.com/findyourside/findyourside-backend/internal/parse"
	"github.com/findyourside/findyourside-backend/internal/prompts"
	"github.com/findyourside/findyourside-backend/internal/quota"
	"github.com/findyourside/findyourside-backend/internal/repos"
	"github.com/findyourside/findyourside-backend/internal/types"
	"github.com/findyourside/findyourside-backend/internal/utils"
)

// IdeaRef is a previously generated idea the playbook request builds on.
type IdeaRef struct {
	Name      string `json:"name"`
	WhyItFits string `json:"whyItFits"`
	FirstStep string `json:"firstStep"`
}

// IdeaFormData is the free-form "I already have an idea" intake.
type IdeaFormData struct {
	BusinessType      string `json:"businessType"`
	BusinessTypeOther string `json:"businessTypeOther"`
	ProblemSolving    string `json:"problemSolving"`
	TargetCustomer    string `json:"targetCustomer"`
	SkillsExperience  string `json:"skillsExperience"`
	TimeCommitment    string `json:"timeCommitment"`
	Email             string `json:"email"`
}

// PlaybookRequest carries either an Idea (from a generated set) or
// IdeaFormData (free-form); exactly one must be present.
type PlaybookRequest struct {
	Idea           *IdeaRef      `json:"idea"`
	IdeaFormData   *IdeaFormData `json:"ideaFormData"`
	TimeCommitment string        `json:"timeCommitment"`
	Budget         string        `json:"budget"`
	Skills         []string      `json:"skills"`
	UserEmail      string        `json:"userEmail"`
}

type IdeasResult struct {
	Ideas []parse.Idea `json:"ideas"`
}

type PlaybookResult struct {
	Playbook           *parse.PlaybookPayload `json:"playbook"`
	PlaybookID         *uuid.UUID             `json:"playbookId"`
	Source             string                 `json:"source"`
	Degraded           bool                   `json:"degraded,omitempty"`
	PlaybooksRemaining int                    `json:"playbooksRemaining"`
}

type GenerationService interface {
	GenerateIdeas(ctx context.Context, ip string, profile prompts.QuizProfile) (*IdeasResult, error)
	GeneratePlaybook(ctx context.Context, ip string, req PlaybookRequest) (*PlaybookResult, error)
}

type generationService struct {
	log        *logger.Logger
	quota      *quota.Service
	llm        anthropic.Client
	playbooks  repos.PlaybookRepo
	ideaGens   repos.IdeaGenerationRepo
	userLimits repos.UserGenerationLimitRepo

	ideasMaxTokens    int
	playbookMaxTokens int
}

func NewGenerationService(
	log *logger.Logger,
	quotaSvc *quota.Service,
	llm anthropic.Client,
	playbooks repos.PlaybookRepo,
	ideaGens repos.IdeaGenerationRepo,
	userLimits repos.UserGenerationLimitRepo,
) GenerationService {
	svcLog := log.With("service", "GenerationService")
	return &generationService{
		log:               svcLog,
		quota:             quotaSvc,
		llm:               llm,
		playbooks:         playbooks,
		ideaGens:          ideaGens,
		userLimits:        userLimits,
		ideasMaxTokens:    utils.GetEnvAsInt("GEN_IDEAS_MAX_TOKENS", 2048, svcLog),
		playbookMaxTokens: utils.GetEnvAsInt("GEN_PLAYBOOK_MAX_TOKENS", 8192, svcLog),
	}
}

func (s *generationService) GenerateIdeas(ctx context.Context, ip string, profile prompts.QuizProfile) (*IdeasResult, error) {
	email := strings.TrimSpace(profile.Email)
	if email == "" {
		return nil, apierr.New(http.StatusBadRequest, apierr.CodeValidation, fmt.Errorf("email is required"))
	}

	res, err := s.quota.CheckAndReserve(ctx, ip, email, types.KindIdeas)
	if err != nil {
		return nil, err
	}

	prompt := prompts.BuildIdeasPrompt(profile)
	raw, err := s.llm.Complete(ctx, prompt, s.ideasMaxTokens)
	if err != nil {
		s.quota.Release(ctx, res)
		s.log.Error("Idea generation upstream call failed", "email", email, "error", err)
		return nil, apierr.New(http.StatusBadGateway, apierr.CodeUpstream, fmt.Errorf("idea generation failed: %w", err))
	}

	filtered := prompts.FilterProfanity(raw)
	payload, err := parse.Ideas(filtered)
	if err != nil {
		s.quota.Release(ctx, res)
		s.log.Error("Idea generation produced unparseable output", "email", email, "error", err)
		return nil, apierr.New(http.StatusInternalServerError, apierr.CodeParse, err)
	}

	s.quota.Commit(ctx, res)
	s.auditIdeas(email, payload)

	return &IdeasResult{Ideas: payload.Ideas}, nil
}

// auditIdeas writes the append-only generation record off the request path.
// The response never waits on, or fails because of, the audit write.
func (s *generationService) auditIdeas(email string, payload *parse.IdeasPayload) {
	raw, err := json.Marshal(payload.Ideas)
	if err != nil {
		s.log.Warn("Failed to marshal ideas for audit record", "email", email, "error", err)
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if _, err := s.ideaGens.Create(ctx, nil, &types.IdeaGeneration{Email: email, Ideas: datatypes.JSON(raw)}); err != nil {
			s.log.Warn("Failed to write idea generation audit record", "email", email, "error", err)
		}
	}()
}

// normalizePlaybook maps the two request forms onto one prompt input.
func normalizePlaybook(req PlaybookRequest) (prompts.PlaybookInput, error) {
	switch {
	case req.IdeaFormData != nil:
		form := req.IdeaFormData
		businessType := form.BusinessType
		if businessType == "Other" {
			businessType = form.BusinessTypeOther
		}
		if strings.TrimSpace(businessType) == "" {
			return prompts.PlaybookInput{}, fmt.Errorf("businessType is required")
		}
		var skills []string
		if strings.TrimSpace(form.SkillsExperience) != "" {
			skills = []string{form.SkillsExperience}
		}
		return prompts.PlaybookInput{
			BusinessName: businessType + " Business",
			BusinessDescription: fmt.Sprintf("A %s business that %s for %s",
				strings.ToLower(businessType),
				strings.ToLower(form.ProblemSolving),
				strings.ToLower(form.TargetCustomer)),
			Skills:         skills,
			TimeCommitment: form.TimeCommitment,
			Budget:         "$0-100",
			Email:          form.Email,
		}, nil
	case req.Idea != nil:
		timeCommitment := req.TimeCommitment
		if timeCommitment == "" {
			timeCommitment = "10 hours/week"
		}
		budget := req.Budget
		if budget == "" {
			budget = "$0-100"
		}
		return prompts.PlaybookInput{
			BusinessName:        req.Idea.Name,
			BusinessDescription: req.Idea.WhyItFits,
			Skills:              req.Skills,
			TimeCommitment:      timeCommitment,
			Budget:              budget,
			FirstStep:           req.Idea.FirstStep,
			Email:               req.UserEmail,
		}, nil
	default:
		return prompts.PlaybookInput{}, fmt.Errorf("either idea or ideaFormData must be provided")
	}
}

func (s *generationService) GeneratePlaybook(ctx context.Context, ip string, req PlaybookRequest) (*PlaybookResult, error) {
	input, err := normalizePlaybook(req)
	if err != nil {
		return nil, apierr.New(http.StatusBadRequest, apierr.CodeValidation, err)
	}
	email := strings.TrimSpace(input.Email)
	if email == "" {
		return nil, apierr.New(http.StatusBadRequest, apierr.CodeValidation, fmt.Errorf("email is required"))
	}

	res, err := s.quota.CheckAndReserve(ctx, ip, email, types.KindPlaybooks)
	if err != nil {
		return nil, err
	}

	prompt := prompts.BuildPlaybookPrompt(input)
	raw, err := s.llm.Complete(ctx, prompt, s.playbookMaxTokens)
	if err != nil {
		s.quota.Release(ctx, res)
		s.log.Error("Playbook generation upstream call failed", "email", email, "error", err)
		return nil, apierr.New(http.StatusBadGateway, apierr.CodeUpstream, fmt.Errorf("playbook generation failed: %w", err))
	}

	// The model was paid for either way, so quota commits even when the
	// output cannot be parsed and the generic plan is served instead.
	source := types.SourceModel
	degraded := false
	payload, parseErr := parse.Playbook(prompts.FilterProfanity(raw))
	if parseErr != nil {
		s.log.Warn("Playbook output unparseable, serving fallback", "email", email, "error", parseErr)
		payload = parse.FallbackPlaybook(input.BusinessName)
		source = types.SourceFallback
		degraded = true
	}

	s.quota.Commit(ctx, res)

	result := &PlaybookResult{
		Playbook: payload,
		Source:   source,
		Degraded: degraded,
	}

	if saved := s.persistPlaybook(ctx, email, payload, source); saved != nil {
		id := saved.ID
		result.PlaybookID = &id
	}
	result.PlaybooksRemaining = s.playbooksRemaining(ctx, email)

	return result, nil
}

// persistPlaybook saves the playbook row so the nudge sweep and send-email
// endpoint can reference it. Persistence failure degrades to a nil id, never
// a failed response.
func (s *generationService) persistPlaybook(ctx context.Context, email string, payload *parse.PlaybookPayload, source string) *types.Playbook {
	raw, err := json.Marshal(payload)
	if err != nil {
		s.log.Warn("Failed to marshal playbook for persistence", "email", email, "error", err)
		return nil
	}
	saved, err := s.playbooks.Create(ctx, nil, &types.Playbook{
		UserEmail:    email,
		BusinessName: payload.BusinessName,
		PlaybookData: datatypes.JSON(raw),
		Source:       source,
	})
	if err != nil {
		s.log.Warn("Failed to persist playbook", "email", email, "error", err)
		return nil
	}
	return saved
}

func (s *generationService) playbooksRemaining(ctx context.Context, email string) int {
	limits := s.quota.Limits()
	row, err := s.userLimits.Get(ctx, nil, email, s.quota.Month())
	if err != nil {
		s.log.Warn("Failed to read remaining allowance", "email", email, "error", err)
		return 0
	}
	remaining := limits.PerEmailPerMonth - row.PlaybooksGenerated
	if remaining < 0 {
		remaining = 0
	}
	return remaining
}
