package services

import (
	"context"
	"encoding/json"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/findyourside/findyourside-backend/internal/logger"
	"github.com/findyourside/findyourside-backend/internal/parse"
	"github.com/findyourside/findyourside-backend/internal/repos"
	"github.com/findyourside/findyourside-backend/internal/types"
	"github.com/findyourside/findyourside-backend/internal/utils"
)

// ReminderWorker sweeps for playbooks whose owner opted into the day-1 nudge,
// was generated at least a day ago, and has not been reminded yet.
type ReminderWorker struct {
	log       *logger.Logger
	playbooks repos.PlaybookRepo
	emails    EmailService

	interval  time.Duration
	batchSize int
	sendLimit int
}

func NewReminderWorker(log *logger.Logger, playbooks repos.PlaybookRepo, emails EmailService) *ReminderWorker {
	workerLog := log.With("worker", "ReminderWorker")
	return &ReminderWorker{
		log:       workerLog,
		playbooks: playbooks,
		emails:    emails,
		interval:  time.Duration(utils.GetEnvAsInt("REMINDER_SWEEP_INTERVAL_MINUTES", 60, workerLog)) * time.Minute,
		batchSize: utils.GetEnvAsInt("REMINDER_BATCH_SIZE", 50, workerLog),
		sendLimit: utils.GetEnvAsInt("REMINDER_SEND_CONCURRENCY", 4, workerLog),
	}
}

// Start runs the sweep loop until ctx is cancelled. One sweep runs
// immediately so restarts do not delay overdue nudges by a full interval.
func (w *ReminderWorker) Start(ctx context.Context) {
	w.log.Info("Reminder worker starting", "interval", w.interval.String())

	w.sweep(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			w.log.Info("Reminder worker stopping")
			return
		case <-ticker.C:
			w.sweep(ctx)
		}
	}
}

func (w *ReminderWorker) sweep(ctx context.Context) {
	cutoff := time.Now().UTC().Add(-24 * time.Hour)
	due, err := w.playbooks.ListDueDay1Nudges(ctx, nil, cutoff, w.batchSize)
	if err != nil {
		w.log.Error("Reminder sweep query failed", "error", err)
		return
	}
	if len(due) == 0 {
		return
	}
	w.log.Info("Reminder sweep found due nudges", "count", len(due))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(w.sendLimit)
	for _, playbook := range due {
		g.Go(func() error {
			w.sendOne(gctx, playbook)
			return nil
		})
	}
	_ = g.Wait()
}

// sendOne sends a single nudge and marks the row. Failures are logged and
// the row stays unsent, so the next sweep retries it.
func (w *ReminderWorker) sendOne(ctx context.Context, playbook *types.Playbook) {
	day1 := firstTask(playbook.PlaybookData)
	if err := w.emails.SendDay1Reminder(ctx, playbook.UserEmail, playbook.BusinessName, day1); err != nil {
		w.log.Warn("Failed to send day-1 reminder",
			"playbook_id", playbook.ID.String(),
			"email", playbook.UserEmail,
			"error", err,
		)
		return
	}
	if err := w.playbooks.MarkNudgeSent(ctx, nil, playbook.ID); err != nil {
		w.log.Error("Failed to mark nudge sent, duplicate reminder possible",
			"playbook_id", playbook.ID.String(),
			"error", err,
		)
		return
	}
	w.log.Info("Day-1 reminder sent", "playbook_id", playbook.ID.String(), "email", playbook.UserEmail)
}

func firstTask(raw []byte) *parse.DailyTask {
	if len(raw) == 0 {
		return nil
	}
	var payload parse.PlaybookPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil
	}
	if len(payload.Weeks) == 0 || len(payload.Weeks[0].DailyTasks) == 0 {
		return nil
	}
	task := payload.Weeks[0].DailyTasks[0]
	return &task
}
