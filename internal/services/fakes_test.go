package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/findyourside/findyourside-backend/internal/clients/brevo"
	"github.com/findyourside/findyourside-backend/internal/logger"
	"github.com/findyourside/findyourside-backend/internal/types"
)

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("logger.New: %v", err)
	}
	return log
}

type fakeLLM struct {
	response string
	err      error
	prompts  []string
}

func (f *fakeLLM) Complete(ctx context.Context, prompt string, maxTokens int) (string, error) {
	f.prompts = append(f.prompts, prompt)
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

// fakeMailer is used from the reminder worker's send goroutines, so it
// locks around its state.
type fakeMailer struct {
	mu   sync.Mutex
	sent []brevo.SendEmailRequest
	err  error
}

func (f *fakeMailer) SendEmail(ctx context.Context, req brevo.SendEmailRequest) (*brevo.SendEmailResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	f.sent = append(f.sent, req)
	return &brevo.SendEmailResponse{MessageID: "msg-1"}, nil
}

type fakePlaybooks struct {
	mu      sync.Mutex
	created []*types.Playbook
	optIns  map[uuid.UUID]bool
	sent    map[uuid.UUID]bool
	due     []*types.Playbook
}

func newFakePlaybooks() *fakePlaybooks {
	return &fakePlaybooks{
		optIns: make(map[uuid.UUID]bool),
		sent:   make(map[uuid.UUID]bool),
	}
}

func (f *fakePlaybooks) Create(ctx context.Context, tx *gorm.DB, playbook *types.Playbook) (*types.Playbook, error) {
	if playbook.ID == uuid.Nil {
		playbook.ID = uuid.New()
	}
	f.created = append(f.created, playbook)
	return playbook, nil
}

func (f *fakePlaybooks) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Playbook, error) {
	for _, p := range f.created {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, errors.New("not found")
}

func (f *fakePlaybooks) SetNudgeOptIn(ctx context.Context, tx *gorm.DB, id uuid.UUID, optedIn bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.optIns[id] = optedIn
	return nil
}

func (f *fakePlaybooks) ListDueDay1Nudges(ctx context.Context, tx *gorm.DB, cutoff time.Time, limit int) ([]*types.Playbook, error) {
	return f.due, nil
}

func (f *fakePlaybooks) MarkNudgeSent(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent[id] = true
	return nil
}

type fakeIdeaGens struct {
	created chan *types.IdeaGeneration
}

func newFakeIdeaGens() *fakeIdeaGens {
	return &fakeIdeaGens{created: make(chan *types.IdeaGeneration, 8)}
}

func (f *fakeIdeaGens) Create(ctx context.Context, tx *gorm.DB, generation *types.IdeaGeneration) (*types.IdeaGeneration, error) {
	generation.ID = uuid.New()
	f.created <- generation
	return generation, nil
}

type fakeUserLimits struct {
	rows map[string]*types.UserGenerationLimit
}

func newFakeUserLimits() *fakeUserLimits {
	return &fakeUserLimits{rows: make(map[string]*types.UserGenerationLimit)}
}

func (f *fakeUserLimits) Get(ctx context.Context, tx *gorm.DB, email, month string) (*types.UserGenerationLimit, error) {
	if row, ok := f.rows[email+"|"+month]; ok {
		return row, nil
	}
	return &types.UserGenerationLimit{Email: email, Month: month}, nil
}

func (f *fakeUserLimits) Increment(ctx context.Context, tx *gorm.DB, email, month string, kind types.GenerationKind) error {
	key := email + "|" + month
	row, ok := f.rows[key]
	if !ok {
		row = &types.UserGenerationLimit{Email: email, Month: month}
		f.rows[key] = row
	}
	if kind == types.KindPlaybooks {
		row.PlaybooksGenerated++
	} else {
		row.IdeaSetsGenerated++
	}
	return nil
}

type fakeUsage struct {
	rows map[string]*types.APIUsage
}

func newFakeUsage() *fakeUsage {
	return &fakeUsage{rows: make(map[string]*types.APIUsage)}
}

func (f *fakeUsage) Get(ctx context.Context, tx *gorm.DB, month string) (*types.APIUsage, error) {
	if row, ok := f.rows[month]; ok {
		return row, nil
	}
	return &types.APIUsage{Month: month}, nil
}

func (f *fakeUsage) AddSpend(ctx context.Context, tx *gorm.DB, month string, kind types.GenerationKind, cost float64) error {
	row, ok := f.rows[month]
	if !ok {
		row = &types.APIUsage{Month: month}
		f.rows[month] = row
	}
	row.TotalSpend += cost
	return nil
}

type fakeIPRates struct {
	rows map[string]*types.IPRateLimit
}

func newFakeIPRates() *fakeIPRates {
	return &fakeIPRates{rows: make(map[string]*types.IPRateLimit)}
}

func (f *fakeIPRates) Get(ctx context.Context, tx *gorm.DB, ip string) (*types.IPRateLimit, error) {
	if row, ok := f.rows[ip]; ok {
		return row, nil
	}
	return &types.IPRateLimit{IPAddress: ip}, nil
}

func (f *fakeIPRates) ResetIfStale(ctx context.Context, tx *gorm.DB, ip, today string) (*types.IPRateLimit, error) {
	row, ok := f.rows[ip]
	if !ok {
		return &types.IPRateLimit{IPAddress: ip, LastReset: today}, nil
	}
	if row.LastReset != today {
		row.IdeasToday = 0
		row.PlaybooksToday = 0
		row.LastReset = today
	}
	return row, nil
}

func (f *fakeIPRates) Increment(ctx context.Context, tx *gorm.DB, ip string, kind types.GenerationKind, today string) error {
	row, ok := f.rows[ip]
	if !ok {
		row = &types.IPRateLimit{IPAddress: ip, LastReset: today}
		f.rows[ip] = row
	}
	if kind == types.KindPlaybooks {
		row.PlaybooksToday++
	} else {
		row.IdeasToday++
	}
	return nil
}

type fakeSubmissions struct {
	created []*types.Submission
}

func (f *fakeSubmissions) Create(ctx context.Context, tx *gorm.DB, submission *types.Submission) (*types.Submission, error) {
	submission.ID = uuid.New()
	f.created = append(f.created, submission)
	return submission, nil
}
