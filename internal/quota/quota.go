package quota

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/findyourside/findyourside-backend/internal/apierr"
	"github.com/findyourside/findyourside-backend/internal/logger"
	"github.com/findyourside/findyourside-backend/internal/repos"
	"github.com/findyourside/findyourside-backend/internal/types"
	"github.com/findyourside/findyourside-backend/internal/utils"
)

// Limits holds every ceiling and cost estimate the quota service enforces.
type Limits struct {
	IPIdeasPerDay     int
	IPPlaybooksPerDay int
	PerEmailPerMonth  int
	MonthlyBudget     float64
	IdeaSetCost       float64
	PlaybookCost      float64
	ExemptEmail       string
}

func LimitsFromEnv(log *logger.Logger) Limits {
	return Limits{
		IPIdeasPerDay:     utils.GetEnvAsInt("QUOTA_IP_IDEAS_PER_DAY", 20, log),
		IPPlaybooksPerDay: utils.GetEnvAsInt("QUOTA_IP_PLAYBOOKS_PER_DAY", 10, log),
		PerEmailPerMonth:  utils.GetEnvAsInt("QUOTA_PER_EMAIL_PER_MONTH", 2, log),
		MonthlyBudget:     utils.GetEnvAsFloat("QUOTA_MONTHLY_BUDGET", 50, log),
		IdeaSetCost:       utils.GetEnvAsFloat("QUOTA_IDEA_SET_COST", 0.005, log),
		PlaybookCost:      utils.GetEnvAsFloat("QUOTA_PLAYBOOK_COST", 0.013, log),
		ExemptEmail:       utils.GetEnv("QUOTA_EXEMPT_EMAIL", "hello.findyourside@gmail.com", log),
	}
}

func (l Limits) ipCap(kind types.GenerationKind) int {
	if kind == types.KindPlaybooks {
		return l.IPPlaybooksPerDay
	}
	return l.IPIdeasPerDay
}

func (l Limits) cost(kind types.GenerationKind) float64 {
	if kind == types.KindPlaybooks {
		return l.PlaybookCost
	}
	return l.IdeaSetCost
}

// Reservation is the record of a passed check. Commit it after a successful
// generation, Release it when the generation fails so the IP slot is
// returned.
type Reservation struct {
	IP     string
	Email  string
	Kind   types.GenerationKind
	Day    string
	Month  string
	Cost   float64
	exempt bool
}

type Service struct {
	log        *logger.Logger
	limits     Limits
	store      CounterStore
	userLimits repos.UserGenerationLimitRepo
	usage      repos.APIUsageRepo
	ipRates    repos.IPRateLimitRepo

	// Injectable for window tests.
	nowFunc func() time.Time
}

func NewService(
	log *logger.Logger,
	limits Limits,
	store CounterStore,
	userLimits repos.UserGenerationLimitRepo,
	usage repos.APIUsageRepo,
	ipRates repos.IPRateLimitRepo,
) *Service {
	return &Service{
		log:        log.With("service", "QuotaService"),
		limits:     limits,
		store:      store,
		userLimits: userLimits,
		usage:      usage,
		ipRates:    ipRates,
		nowFunc:    time.Now,
	}
}

func (s *Service) Limits() Limits { return s.limits }

func (s *Service) now() time.Time { return s.nowFunc().UTC() }

// Day returns the current UTC calendar day ("2006-01-02").
func (s *Service) Day() string { return s.now().Format("2006-01-02") }

// Month returns the current UTC calendar month ("2006-01").
func (s *Service) Month() string { return s.now().Format("2006-01") }

func (s *Service) isExempt(email string) bool {
	if s.limits.ExemptEmail == "" {
		return false
	}
	return strings.EqualFold(strings.TrimSpace(email), s.limits.ExemptEmail)
}

// CheckAndReserve runs the gate checks in canonical order: exempt email,
// per-IP daily cap, global monthly budget, per-email monthly allowance.
// The IP slot is taken atomically up front and handed back when a later
// check denies, so two racing requests cannot both land under the cap.
// Denials are *apierr.Error values carrying the reason code and status.
func (s *Service) CheckAndReserve(ctx context.Context, ip, email string, kind types.GenerationKind) (*Reservation, error) {
	if !kind.Valid() {
		return nil, apierr.New(http.StatusBadRequest, apierr.CodeValidation,
			fmt.Errorf("unknown generation kind %q", kind))
	}

	day := s.Day()
	month := s.Month()
	res := &Reservation{
		IP:    ip,
		Email: email,
		Kind:  kind,
		Day:   day,
		Month: month,
		Cost:  s.limits.cost(kind),
	}

	if s.isExempt(email) {
		res.exempt = true
		s.log.Info("Exempt email, skipping quota checks", "email", email, "kind", kind)
		return res, nil
	}

	// IP daily cap. A store failure fails open with a warning: the caps are
	// abuse brakes, not billing, and the originals treated limiter read
	// errors as zero usage.
	ipReserved := false
	if ip != "" && ip != "unknown" {
		count, err := s.store.IncrIP(ctx, ip, kind, day)
		if err != nil {
			s.log.Warn("Quota counter store unavailable, skipping IP check", "ip", ip, "error", err)
		} else {
			ipReserved = true
			if count > int64(s.limits.ipCap(kind)) {
				s.releaseIP(ctx, res)
				return nil, apierr.New(http.StatusTooManyRequests, apierr.CodeIPLimit,
					fmt.Errorf("too many requests from your network, try again tomorrow"))
			}
		}
	}

	// Global monthly budget.
	if s.monthSpend(ctx, month) >= s.limits.MonthlyBudget {
		if ipReserved {
			s.releaseIP(ctx, res)
		}
		return nil, apierr.New(http.StatusForbidden, apierr.CodeMonthlyLimit,
			fmt.Errorf("we've reached capacity this month"))
	}

	// Per-email monthly allowance.
	if email != "" {
		row, err := s.userLimits.Get(ctx, nil, email, month)
		if err != nil {
			s.log.Warn("Failed to read email allowance, allowing request", "email", email, "error", err)
		} else {
			used := row.IdeaSetsGenerated
			if kind == types.KindPlaybooks {
				used = row.PlaybooksGenerated
			}
			if used >= s.limits.PerEmailPerMonth {
				if ipReserved {
					s.releaseIP(ctx, res)
				}
				return nil, apierr.New(http.StatusForbidden, apierr.CodeEmailLimit,
					fmt.Errorf("free allowance of %d %s per month used up", s.limits.PerEmailPerMonth, kind))
			}
		}
	}

	return res, nil
}

// MonthSpend returns the current month's spend as the budget gate sees it:
// the shared spend counter or the durable usage row, whichever is higher.
// The counter is what Commit bumps on every instance; the durable row covers
// a counter that was flushed or freshly provisioned. If neither source can
// be read the gate fails open and this reports zero.
func (s *Service) MonthSpend(ctx context.Context) float64 {
	return s.monthSpend(ctx, s.Month())
}

func (s *Service) monthSpend(ctx context.Context, month string) float64 {
	spend := 0.0
	if counted, err := s.store.Spend(ctx, month); err != nil {
		s.log.Warn("Failed to read spend counter, falling back to usage row", "month", month, "error", err)
	} else {
		spend = counted
	}
	if usage, err := s.usage.Get(ctx, nil, month); err != nil {
		s.log.Warn("Failed to read monthly usage", "month", month, "error", err)
	} else if usage.TotalSpend > spend {
		spend = usage.TotalSpend
	}
	return spend
}

// Commit records a successful generation: spend counter, durable allowance
// and usage rows, and the durable per-IP row (lazily rolled over). Every
// write is log-and-continue; the user already has their result and these
// caps are best-effort by design.
func (s *Service) Commit(ctx context.Context, res *Reservation) {
	if res == nil || res.exempt {
		return
	}

	if _, err := s.store.AddSpend(ctx, res.Month, res.Cost); err != nil {
		s.log.Warn("Failed to add spend to counter store", "month", res.Month, "error", err)
	}
	if res.Email != "" {
		if err := s.userLimits.Increment(ctx, nil, res.Email, res.Month, res.Kind); err != nil {
			s.log.Warn("Failed to increment email allowance", "email", res.Email, "error", err)
		}
	}
	if err := s.usage.AddSpend(ctx, nil, res.Month, res.Kind, res.Cost); err != nil {
		s.log.Warn("Failed to record monthly spend", "month", res.Month, "error", err)
	}
	if res.IP != "" && res.IP != "unknown" {
		if _, err := s.ipRates.ResetIfStale(ctx, nil, res.IP, res.Day); err != nil {
			s.log.Warn("Failed to roll over IP rate row", "ip", res.IP, "error", err)
		}
		if err := s.ipRates.Increment(ctx, nil, res.IP, res.Kind, res.Day); err != nil {
			s.log.Warn("Failed to increment IP rate row", "ip", res.IP, "error", err)
		}
	}
}

// Release hands back a reservation whose generation failed, so a failed
// upstream call does not consume the caller's daily IP budget.
func (s *Service) Release(ctx context.Context, res *Reservation) {
	if res == nil || res.exempt {
		return
	}
	s.releaseIP(ctx, res)
}

func (s *Service) releaseIP(ctx context.Context, res *Reservation) {
	if res.IP == "" || res.IP == "unknown" {
		return
	}
	if err := s.store.DecrIP(ctx, res.IP, res.Kind, res.Day); err != nil {
		s.log.Warn("Failed to release IP reservation", "ip", res.IP, "error", err)
	}
}
