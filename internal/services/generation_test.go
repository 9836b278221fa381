package services

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/findyourside/findyourside-backend/internal/apierr"
	"github.com/findyourside/findyourside-backend/internal/prompts"
	"github.com/findyourside/findyourside-backend/internal/quota"
	"github.com/findyourside/findyourside-backend/internal/types"
)

const modelIdeasJSON = "```json\n" + `{
  "ideas": [
    {"name": "A", "whyItFits": "w", "timeRequired": "5 hours/week", "firstStep": "s"},
    {"name": "B", "whyItFits": "w", "timeRequired": "5 hours/week", "firstStep": "s"}
  ]
}` + "\n```"

const modelPlaybookJSON = `{
  "playbook": {
    "businessName": "A Business",
    "overview": "o",
    "weeks": [
      {"week": 1, "title": "Validate", "focusArea": "f", "successMetric": "m", "totalTime": "t",
       "dailyTasks": [{"day": 1, "title": "do", "description": "it", "timeEstimate": "30 minutes", "resources": []}]}
    ]
  }
}`

type generationFixture struct {
	svc        GenerationService
	llm        *fakeLLM
	store      *quota.MemoryStore
	playbooks  *fakePlaybooks
	ideaGens   *fakeIdeaGens
	userLimits *fakeUserLimits
	usage      *fakeUsage
	quota      *quota.Service
}

func newGenerationFixture(t *testing.T) *generationFixture {
	t.Helper()
	log := testLogger(t)
	f := &generationFixture{
		llm:        &fakeLLM{response: modelIdeasJSON},
		store:      quota.NewMemoryStore(),
		playbooks:  newFakePlaybooks(),
		ideaGens:   newFakeIdeaGens(),
		userLimits: newFakeUserLimits(),
		usage:      newFakeUsage(),
	}
	limits := quota.Limits{
		IPIdeasPerDay:     20,
		IPPlaybooksPerDay: 10,
		PerEmailPerMonth:  2,
		MonthlyBudget:     50,
		IdeaSetCost:       0.005,
		PlaybookCost:      0.013,
		ExemptEmail:       "hello.findyourside@gmail.com",
	}
	f.quota = quota.NewService(log, limits, f.store, f.userLimits, f.usage, newFakeIPRates())
	f.svc = NewGenerationService(log, f.quota, f.llm, f.playbooks, f.ideaGens, f.userLimits)
	return f
}

func TestGenerateIdeas(t *testing.T) {
	ctx := context.Background()

	t.Run("success commits quota and audits", func(t *testing.T) {
		f := newGenerationFixture(t)
		profile := prompts.QuizProfile{Skills: []string{"x"}, Email: "a@b.com"}

		result, err := f.svc.GenerateIdeas(ctx, "1.2.3.4", profile)
		if err != nil {
			t.Fatalf("GenerateIdeas: %v", err)
		}
		if len(result.Ideas) != 2 {
			t.Fatalf("len(ideas) = %d, want 2", len(result.Ideas))
		}

		row, _ := f.userLimits.Get(ctx, nil, "a@b.com", f.quota.Month())
		if row.IdeaSetsGenerated != 1 {
			t.Errorf("idea_sets_generated = %d, want 1", row.IdeaSetsGenerated)
		}

		select {
		case audit := <-f.ideaGens.created:
			if audit.Email != "a@b.com" {
				t.Errorf("audit email = %q", audit.Email)
			}
		case <-time.After(2 * time.Second):
			t.Error("audit record was never written")
		}
	})

	t.Run("missing email", func(t *testing.T) {
		f := newGenerationFixture(t)
		_, err := f.svc.GenerateIdeas(ctx, "1.2.3.4", prompts.QuizProfile{})
		apiErr := apierr.As(err)
		if apiErr == nil || apiErr.Status != http.StatusBadRequest {
			t.Fatalf("expected 400, got %v", err)
		}
		if len(f.llm.prompts) != 0 {
			t.Error("validation failure must not reach the model")
		}
	})

	t.Run("upstream failure releases reservation", func(t *testing.T) {
		f := newGenerationFixture(t)
		f.llm.err = errors.New("timeout")

		_, err := f.svc.GenerateIdeas(ctx, "1.2.3.4", prompts.QuizProfile{Email: "a@b.com"})
		apiErr := apierr.As(err)
		if apiErr == nil || apiErr.Status != http.StatusBadGateway || apiErr.Code != apierr.CodeUpstream {
			t.Fatalf("expected 502 upstream_error, got %v", err)
		}

		count, _ := f.store.IPCount(ctx, "1.2.3.4", types.KindIdeas, f.quota.Day())
		if count != 0 {
			t.Errorf("failed generation must release IP slot, counter = %d", count)
		}
		row, _ := f.userLimits.Get(ctx, nil, "a@b.com", f.quota.Month())
		if row.IdeaSetsGenerated != 0 {
			t.Errorf("failed generation must not consume allowance, got %d", row.IdeaSetsGenerated)
		}
	})

	t.Run("unparseable output fails loudly", func(t *testing.T) {
		f := newGenerationFixture(t)
		f.llm.response = "Sure! Here are five ideas for you:"

		_, err := f.svc.GenerateIdeas(ctx, "1.2.3.4", prompts.QuizProfile{Email: "a@b.com"})
		apiErr := apierr.As(err)
		if apiErr == nil || apiErr.Code != apierr.CodeParse {
			t.Fatalf("expected parse_error, got %v", err)
		}
		count, _ := f.store.IPCount(ctx, "1.2.3.4", types.KindIdeas, f.quota.Day())
		if count != 0 {
			t.Errorf("parse failure must release IP slot, counter = %d", count)
		}
	})

	t.Run("denied after allowance used", func(t *testing.T) {
		f := newGenerationFixture(t)
		profile := prompts.QuizProfile{Email: "a@b.com"}
		for i := 0; i < 2; i++ {
			if _, err := f.svc.GenerateIdeas(ctx, "1.2.3.4", profile); err != nil {
				t.Fatalf("generation %d: %v", i+1, err)
			}
		}
		_, err := f.svc.GenerateIdeas(ctx, "1.2.3.4", profile)
		apiErr := apierr.As(err)
		if apiErr == nil || apiErr.Code != apierr.CodeEmailLimit {
			t.Fatalf("expected email_limit, got %v", err)
		}
	})
}

func TestGeneratePlaybook(t *testing.T) {
	ctx := context.Background()
	ideaReq := PlaybookRequest{
		Idea:      &IdeaRef{Name: "A Business", WhyItFits: "fits", FirstStep: "talk to people"},
		Skills:    []string{"x"},
		UserEmail: "a@b.com",
	}

	t.Run("success persists and reports remaining", func(t *testing.T) {
		f := newGenerationFixture(t)
		f.llm.response = modelPlaybookJSON

		result, err := f.svc.GeneratePlaybook(ctx, "1.2.3.4", ideaReq)
		if err != nil {
			t.Fatalf("GeneratePlaybook: %v", err)
		}
		if result.Source != types.SourceModel || result.Degraded {
			t.Errorf("source = %q degraded = %v, want model/false", result.Source, result.Degraded)
		}
		if result.PlaybookID == nil {
			t.Fatal("expected persisted playbook id")
		}
		if result.PlaybooksRemaining != 1 {
			t.Errorf("playbooksRemaining = %d, want 1", result.PlaybooksRemaining)
		}
		if len(f.playbooks.created) != 1 || f.playbooks.created[0].Source != types.SourceModel {
			t.Fatalf("unexpected persisted rows: %+v", f.playbooks.created)
		}
	})

	t.Run("unparseable output falls back tagged", func(t *testing.T) {
		f := newGenerationFixture(t)
		f.llm.response = "I couldn't generate that playbook."

		result, err := f.svc.GeneratePlaybook(ctx, "1.2.3.4", ideaReq)
		if err != nil {
			t.Fatalf("GeneratePlaybook with bad output: %v", err)
		}
		if result.Source != types.SourceFallback || !result.Degraded {
			t.Errorf("source = %q degraded = %v, want fallback/true", result.Source, result.Degraded)
		}
		if len(result.Playbook.Weeks) != 5 {
			t.Errorf("fallback weeks = %d, want 5", len(result.Playbook.Weeks))
		}
		// The model call happened, so the generation still counts.
		row, _ := f.userLimits.Get(ctx, nil, "a@b.com", f.quota.Month())
		if row.PlaybooksGenerated != 1 {
			t.Errorf("playbooks_generated = %d, want 1", row.PlaybooksGenerated)
		}
		if len(f.playbooks.created) != 1 || f.playbooks.created[0].Source != types.SourceFallback {
			t.Fatalf("fallback row not tagged: %+v", f.playbooks.created)
		}
	})

	t.Run("form data request", func(t *testing.T) {
		f := newGenerationFixture(t)
		f.llm.response = modelPlaybookJSON

		_, err := f.svc.GeneratePlaybook(ctx, "1.2.3.4", PlaybookRequest{
			IdeaFormData: &IdeaFormData{
				BusinessType:   "Coaching",
				ProblemSolving: "Helps people get fit",
				TargetCustomer: "Busy parents",
				TimeCommitment: "5 hours/week",
				Email:          "a@b.com",
			},
		})
		if err != nil {
			t.Fatalf("GeneratePlaybook from form: %v", err)
		}
		if len(f.llm.prompts) != 1 {
			t.Fatal("expected one model call")
		}
		prompt := f.llm.prompts[0]
		if want := "BUSINESS IDEA: Coaching Business"; !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	})

	t.Run("neither idea nor form", func(t *testing.T) {
		f := newGenerationFixture(t)
		_, err := f.svc.GeneratePlaybook(ctx, "1.2.3.4", PlaybookRequest{UserEmail: "a@b.com"})
		apiErr := apierr.As(err)
		if apiErr == nil || apiErr.Status != http.StatusBadRequest {
			t.Fatalf("expected 400, got %v", err)
		}
	})
}
