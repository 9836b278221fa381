package services

import (
	"context"
	"testing"

	"github.com/findyourside/findyourside-backend/internal/apierr"
	"github.com/findyourside/findyourside-backend/internal/quota"
	"github.com/findyourside/findyourside-backend/internal/types"
)

type limitsFixture struct {
	svc        LimitsService
	quota      *quota.Service
	store      *quota.MemoryStore
	userLimits *fakeUserLimits
	usage      *fakeUsage
	ipRates    *fakeIPRates
}

func newLimitsFixture(t *testing.T) *limitsFixture {
	t.Helper()
	log := testLogger(t)
	f := &limitsFixture{
		store:      quota.NewMemoryStore(),
		userLimits: newFakeUserLimits(),
		usage:      newFakeUsage(),
		ipRates:    newFakeIPRates(),
	}
	limits := quota.Limits{
		IPIdeasPerDay:     20,
		IPPlaybooksPerDay: 10,
		PerEmailPerMonth:  2,
		MonthlyBudget:     50,
		IdeaSetCost:       0.005,
		PlaybookCost:      0.013,
	}
	f.quota = quota.NewService(log, limits, f.store, f.userLimits, f.usage, f.ipRates)
	f.svc = NewLimitsService(log, f.quota, f.userLimits, f.ipRates)
	return f
}

func TestCheckLimits(t *testing.T) {
	ctx := context.Background()

	t.Run("fresh user", func(t *testing.T) {
		f := newLimitsFixture(t)
		report, err := f.svc.Check(ctx, "a@b.com", "1.2.3.4")
		if err != nil {
			t.Fatalf("Check: %v", err)
		}
		if !report.Ideas.Allowed || report.Ideas.Remaining != 2 || report.Ideas.Total != 2 {
			t.Errorf("ideas report = %+v", report.Ideas)
		}
		if !report.Playbooks.Allowed || report.Playbooks.Remaining != 2 {
			t.Errorf("playbooks report = %+v", report.Playbooks)
		}
		if report.MonthlyBudget.Spent != 0 || report.MonthlyBudget.Remaining != 50 || report.MonthlyBudget.Limit != 50 {
			t.Errorf("budget report = %+v", report.MonthlyBudget)
		}
	})

	t.Run("allowance partially used", func(t *testing.T) {
		f := newLimitsFixture(t)
		month := f.quota.Month()
		f.userLimits.rows["a@b.com|"+month] = &types.UserGenerationLimit{
			Email: "a@b.com", Month: month, IdeaSetsGenerated: 1, PlaybooksGenerated: 2,
		}

		report, err := f.svc.Check(ctx, "a@b.com", "1.2.3.4")
		if err != nil {
			t.Fatalf("Check: %v", err)
		}
		if report.Ideas.Remaining != 1 || !report.Ideas.Allowed {
			t.Errorf("ideas report = %+v", report.Ideas)
		}
		if report.Playbooks.Remaining != 0 || report.Playbooks.Allowed {
			t.Errorf("playbooks report = %+v", report.Playbooks)
		}
	})

	t.Run("budget exhausted blocks everything", func(t *testing.T) {
		f := newLimitsFixture(t)
		month := f.quota.Month()
		f.usage.rows[month] = &types.APIUsage{Month: month, TotalSpend: 50.128}

		report, err := f.svc.Check(ctx, "a@b.com", "1.2.3.4")
		if err != nil {
			t.Fatalf("Check: %v", err)
		}
		if report.Ideas.Allowed || report.Playbooks.Allowed {
			t.Errorf("spent budget must block: ideas=%+v playbooks=%+v", report.Ideas, report.Playbooks)
		}
		if report.MonthlyBudget.Spent != 50.13 {
			t.Errorf("spent = %v, want rounded 50.13", report.MonthlyBudget.Spent)
		}
		if report.MonthlyBudget.Remaining != 0 {
			t.Errorf("remaining = %v, want 0", report.MonthlyBudget.Remaining)
		}
	})

	t.Run("counter-recorded spend blocks too", func(t *testing.T) {
		f := newLimitsFixture(t)
		if _, err := f.store.AddSpend(ctx, f.quota.Month(), 50); err != nil {
			t.Fatalf("AddSpend: %v", err)
		}

		report, err := f.svc.Check(ctx, "a@b.com", "1.2.3.4")
		if err != nil {
			t.Fatalf("Check: %v", err)
		}
		if report.Ideas.Allowed || report.Playbooks.Allowed {
			t.Errorf("counter spend must block: ideas=%+v playbooks=%+v", report.Ideas, report.Playbooks)
		}
		if report.MonthlyBudget.Spent != 50 || report.MonthlyBudget.Remaining != 0 {
			t.Errorf("budget report = %+v", report.MonthlyBudget)
		}
	})

	t.Run("IP counters only count today", func(t *testing.T) {
		f := newLimitsFixture(t)
		f.ipRates.rows["1.2.3.4"] = &types.IPRateLimit{
			IPAddress: "1.2.3.4", IdeasToday: 7, PlaybooksToday: 3, LastReset: "2001-01-01",
		}

		report, err := f.svc.Check(ctx, "a@b.com", "1.2.3.4")
		if err != nil {
			t.Fatalf("Check: %v", err)
		}
		if report.IPLimits.IdeasToday != 0 || report.IPLimits.PlaybooksToday != 0 {
			t.Errorf("stale IP row must read as zero, got %+v", report.IPLimits)
		}

		f.ipRates.rows["1.2.3.4"].LastReset = f.quota.Day()
		report, _ = f.svc.Check(ctx, "a@b.com", "1.2.3.4")
		if report.IPLimits.IdeasToday != 7 || report.IPLimits.PlaybooksToday != 3 {
			t.Errorf("today's IP row must be reported, got %+v", report.IPLimits)
		}
	})

	t.Run("missing email", func(t *testing.T) {
		f := newLimitsFixture(t)
		_, err := f.svc.Check(ctx, "", "1.2.3.4")
		if apiErr := apierr.As(err); apiErr == nil || apiErr.Code != apierr.CodeValidation {
			t.Fatalf("expected validation error, got %v", err)
		}
	})
}
