package services

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"strings"

	"github.com/findyourside/findyourside-backend/internal/apierr"
	"github.com/findyourside/findyourside-backend/internal/logger"
	"github.com/findyourside/findyourside-backend/internal/quota"
	"github.com/findyourside/findyourside-backend/internal/repos"
)

// LimitReport is the check-limits response shape the front end renders.
type LimitReport struct {
	Ideas         AllowanceReport `json:"ideas"`
	Playbooks     AllowanceReport `json:"playbooks"`
	IPLimits      IPReport        `json:"ipLimits"`
	MonthlyBudget BudgetReport    `json:"monthlyBudget"`
}

type AllowanceReport struct {
	Allowed   bool `json:"allowed"`
	Remaining int  `json:"remaining"`
	Total     int  `json:"total"`
}

type IPReport struct {
	IdeasToday     int `json:"ideasToday"`
	PlaybooksToday int `json:"playbooksToday"`
}

type BudgetReport struct {
	Spent     float64 `json:"spent"`
	Remaining float64 `json:"remaining"`
	Limit     float64 `json:"limit"`
}

type LimitsService interface {
	Check(ctx context.Context, email, ip string) (*LimitReport, error)
}

type limitsService struct {
	log        *logger.Logger
	quota      *quota.Service
	userLimits repos.UserGenerationLimitRepo
	ipRates    repos.IPRateLimitRepo
}

func NewLimitsService(
	log *logger.Logger,
	quotaSvc *quota.Service,
	userLimits repos.UserGenerationLimitRepo,
	ipRates repos.IPRateLimitRepo,
) LimitsService {
	return &limitsService{
		log:        log.With("service", "LimitsService"),
		quota:      quotaSvc,
		userLimits: userLimits,
		ipRates:    ipRates,
	}
}

// Check reports remaining allowances without consuming anything. The math
// mirrors enforcement: per-email counters are month-scoped, IP counters
// count only when the durable row's last_reset is today.
func (s *limitsService) Check(ctx context.Context, email, ip string) (*LimitReport, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, apierr.New(http.StatusBadRequest, apierr.CodeValidation, fmt.Errorf("email is required"))
	}

	limits := s.quota.Limits()
	month := s.quota.Month()
	today := s.quota.Day()

	ideaSetsUsed, playbooksUsed := 0, 0
	if row, err := s.userLimits.Get(ctx, nil, email, month); err != nil {
		s.log.Warn("Failed to read email allowance for report", "email", email, "error", err)
	} else {
		ideaSetsUsed = row.IdeaSetsGenerated
		playbooksUsed = row.PlaybooksGenerated
	}

	ideasToday, playbooksToday := 0, 0
	if ip != "" && ip != "unknown" {
		if row, err := s.ipRates.Get(ctx, nil, ip); err != nil {
			s.log.Warn("Failed to read IP counters for report", "ip", ip, "error", err)
		} else if row.LastReset == today {
			ideasToday = row.IdeasToday
			playbooksToday = row.PlaybooksToday
		}
	}

	// Same spend source the budget gate uses, so the report never promises
	// a request the gate would deny.
	spent := s.quota.MonthSpend(ctx)
	budgetRemaining := math.Max(0, limits.MonthlyBudget-spent)

	ideasRemaining := max(0, limits.PerEmailPerMonth-ideaSetsUsed)
	playbooksRemaining := max(0, limits.PerEmailPerMonth-playbooksUsed)

	return &LimitReport{
		Ideas: AllowanceReport{
			Allowed:   ideasRemaining > 0 && ideasToday < limits.IPIdeasPerDay && budgetRemaining > 0,
			Remaining: ideasRemaining,
			Total:     limits.PerEmailPerMonth,
		},
		Playbooks: AllowanceReport{
			Allowed:   playbooksRemaining > 0 && playbooksToday < limits.IPPlaybooksPerDay && budgetRemaining > 0,
			Remaining: playbooksRemaining,
			Total:     limits.PerEmailPerMonth,
		},
		IPLimits: IPReport{
			IdeasToday:     ideasToday,
			PlaybooksToday: playbooksToday,
		},
		MonthlyBudget: BudgetReport{
			Spent:     round2(spent),
			Remaining: round2(budgetRemaining),
			Limit:     limits.MonthlyBudget,
		},
	}, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
