package services

import (
	"context"
	"fmt"
	"html/template"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/findyourside/findyourside-backend/internal/apierr"
	"github.com/findyourside/findyourside-backend/internal/clients/brevo"
	"github.com/findyourside/findyourside-backend/internal/logger"
	"github.com/findyourside/findyourside-backend/internal/parse"
	"github.com/findyourside/findyourside-backend/internal/repos"
)

// SendPlaybookRequest delivers a generated playbook by email. PlaybookID is
// optional; when present together with OptInDay1 the day-1 reminder flag is
// set on the persisted row.
type SendPlaybookRequest struct {
	Email        string                 `json:"email"`
	BusinessIdea string                 `json:"businessIdea"`
	Playbook     *parse.PlaybookPayload `json:"playbook"`
	PlaybookID   *uuid.UUID             `json:"playbookId"`
	OptInDay1    bool                   `json:"optInDay1"`
}

type EmailService interface {
	SendPlaybook(ctx context.Context, req SendPlaybookRequest) (messageID string, err error)
	SendDay1Reminder(ctx context.Context, email, businessName string, day1 *parse.DailyTask) error
}

type emailService struct {
	log       *logger.Logger
	mailer    brevo.Client
	playbooks repos.PlaybookRepo
}

func NewEmailService(log *logger.Logger, mailer brevo.Client, playbooks repos.PlaybookRepo) EmailService {
	return &emailService{
		log:       log.With("service", "EmailService"),
		mailer:    mailer,
		playbooks: playbooks,
	}
}

func (s *emailService) SendPlaybook(ctx context.Context, req SendPlaybookRequest) (string, error) {
	email := strings.TrimSpace(req.Email)
	if email == "" || strings.TrimSpace(req.BusinessIdea) == "" || req.Playbook == nil {
		return "", apierr.New(http.StatusBadRequest, apierr.CodeValidation, fmt.Errorf("email, businessIdea and playbook are required"))
	}

	html, err := RenderPlaybookHTML(req.BusinessIdea, req.Playbook)
	if err != nil {
		s.log.Error("Failed to render playbook email", "email", email, "error", err)
		return "", apierr.New(http.StatusInternalServerError, apierr.CodeValidation, fmt.Errorf("failed to render email"))
	}

	resp, err := s.mailer.SendEmail(ctx, brevo.SendEmailRequest{
		To:          []brevo.Address{{Email: email}},
		Subject:     "Your 30-Day Launch Playbook 🚀",
		HTMLContent: html,
	})
	if err != nil {
		s.log.Error("Failed to send playbook email", "email", email, "error", err)
		return "", apierr.New(http.StatusBadGateway, apierr.CodeUpstream, fmt.Errorf("failed to send email"))
	}

	if req.OptInDay1 && req.PlaybookID != nil {
		s.recordDay1OptIn(ctx, email, *req.PlaybookID)
	}

	return resp.MessageID, nil
}

// recordDay1OptIn flags a stored playbook for the reminder sweep. The flag
// only lands on a row that exists and belongs to the requesting address;
// anything else is logged and skipped, the email itself already went out.
func (s *emailService) recordDay1OptIn(ctx context.Context, email string, id uuid.UUID) {
	row, err := s.playbooks.GetByID(ctx, nil, id)
	if err != nil {
		s.log.Warn("Day-1 opt-in for unknown playbook", "playbook_id", id.String(), "error", err)
		return
	}
	if !strings.EqualFold(row.UserEmail, email) {
		s.log.Warn("Day-1 opt-in does not match playbook owner", "playbook_id", id.String())
		return
	}
	if err := s.playbooks.SetNudgeOptIn(ctx, nil, id, true); err != nil {
		s.log.Warn("Failed to record day-1 opt-in", "playbook_id", id.String(), "error", err)
	}
}

func (s *emailService) SendDay1Reminder(ctx context.Context, email, businessName string, day1 *parse.DailyTask) error {
	html, err := RenderDay1ReminderHTML(businessName, day1)
	if err != nil {
		return err
	}
	_, err = s.mailer.SendEmail(ctx, brevo.SendEmailRequest{
		To:          []brevo.Address{{Email: email}},
		Subject:     "Ready to start Day 1? 🚀",
		HTMLContent: html,
	})
	return err
}

var playbookTmpl = template.Must(template.New("playbook").Parse(`<!DOCTYPE html>
<html>
  <head>
    <meta charset="utf-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>Your 30-Day Launch Playbook</title>
  </head>
  <body style="font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, 'Helvetica Neue', Arial, sans-serif; line-height: 1.6; color: #333; max-width: 800px; margin: 0 auto; padding: 20px;">
    <div style="background: linear-gradient(135deg, #667eea 0%, #764ba2 100%); padding: 40px 20px; border-radius: 12px; text-align: center; margin-bottom: 32px;">
      <h1 style="color: white; font-size: 32px; margin: 0 0 12px 0;">🚀 Your 30-Day Launch Playbook</h1>
      <p style="color: rgba(255,255,255,0.9); font-size: 18px; margin: 0;">{{.BusinessIdea}}</p>
    </div>

    <div style="background: white; padding: 24px; border-radius: 8px; margin-bottom: 24px; border: 1px solid #e5e7eb;">
      <h2 style="color: #111827; font-size: 20px; margin-top: 0;">Welcome to Your Journey! 🎯</h2>
      <p style="color: #4b5563; margin: 12px 0;">
        This playbook will guide you through the next 30 days to launch your business. Each day builds on the previous one, so follow along step by step.
      </p>
      <p style="color: #4b5563; margin: 12px 0;"><strong>Tips for Success:</strong></p>
      <ul style="color: #4b5563; margin: 8px 0; padding-left: 20px;">
        <li>Set aside dedicated time each day</li>
        <li>Don't skip steps - each one is important</li>
        <li>Adjust time estimates based on your schedule</li>
        <li>Use the resources provided - they're there to help</li>
        <li>Track your progress and celebrate small wins</li>
      </ul>
    </div>

    {{range .Weeks}}
    <div style="margin-bottom: 32px; border-left: 4px solid #3b82f6; padding-left: 16px;">
      <h2 style="color: #1e40af; font-size: 20px; margin-bottom: 8px;">Week {{.Week}}: {{.Title}}</h2>
      {{range .DailyTasks}}
      <div style="margin-bottom: 24px; padding: 16px; background: #f9fafb; border-radius: 8px;">
        <div style="display: flex; align-items: center; margin-bottom: 8px;">
          <span style="background: #3b82f6; color: white; padding: 4px 12px; border-radius: 9999px; font-size: 14px; font-weight: 600; margin-right: 12px;">Day {{.Day}}</span>
          <h3 style="color: #111827; font-size: 16px; font-weight: 600; margin: 0;">{{.Title}}</h3>
        </div>
        <p style="color: #4b5563; margin: 8px 0; line-height: 1.6;">{{.Description}}</p>
        <div style="display: flex; align-items: center; margin-top: 12px;">
          <span style="color: #6b7280; font-size: 14px; margin-right: 16px;">⏱️ {{.TimeEstimate}}</span>
        </div>
        {{if .Resources}}
        <div style="margin-top: 12px;">
          <strong style="color: #374151; font-size: 14px;">Resources:</strong>
          <ul style="margin: 4px 0; padding-left: 20px; color: #6b7280;">
            {{range .Resources}}<li style="margin: 4px 0;">{{.}}</li>{{end}}
          </ul>
        </div>
        {{end}}
      </div>
      {{end}}
    </div>
    {{end}}

    <div style="background: #f0fdf4; padding: 24px; border-radius: 8px; margin-top: 32px; border: 1px solid #86efac;">
      <h2 style="color: #15803d; font-size: 20px; margin-top: 0;">🎉 Ready to Launch!</h2>
      <p style="color: #166534; margin: 12px 0;">
        You've got this! Remember, the most important step is Day 1. Start today and build momentum.
      </p>
      <p style="color: #166534; margin: 12px 0;">Good luck on your journey!</p>
      <p style="color: #166534; margin: 12px 0; font-style: italic;">- The Find Your Side Team</p>
    </div>

    <div style="text-align: center; padding: 24px; color: #9ca3af; font-size: 14px; border-top: 1px solid #e5e7eb; margin-top: 32px;">
      <p>Find Your Side - Idea to Execution</p>
      <p>Need help? Reply to this email anytime.</p>
    </div>
  </body>
</html>
`))

type playbookEmailData struct {
	BusinessIdea string
	Weeks        []parse.Week
}

// RenderPlaybookHTML renders the playbook-delivery email body. User-supplied
// strings go through html/template so prompt output cannot inject markup.
func RenderPlaybookHTML(businessIdea string, playbook *parse.PlaybookPayload) (string, error) {
	var b strings.Builder
	err := playbookTmpl.Execute(&b, playbookEmailData{
		BusinessIdea: businessIdea,
		Weeks:        playbook.Weeks,
	})
	if err != nil {
		return "", err
	}
	return b.String(), nil
}

var day1Tmpl = template.Must(template.New("day1").Parse(`<!DOCTYPE html>
<html>
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>Ready to start Day 1?</title>
</head>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px;">
  <div style="background: linear-gradient(to right, #4f46e5, #6366f1); color: white; padding: 30px; border-radius: 12px; margin-bottom: 30px;">
    <h1 style="margin: 0 0 10px 0; font-size: 28px;">Ready to start Day 1? 🚀</h1>
  </div>

  <p style="font-size: 16px; color: #374151; margin-bottom: 20px;">
    You got your 30-day launch plan for <strong>{{.BusinessName}}</strong> yesterday. Today is Day 1!
  </p>

  {{if .TaskTitle}}
  <div style="background-color: #fef3c7; border-left: 4px solid #f59e0b; padding: 20px; border-radius: 8px; margin-bottom: 30px;">
    <h3 style="margin: 0 0 5px 0; color: #92400e; font-size: 18px;">📋 Day 1: {{.TaskTitle}}</h3>
    <p style="margin: 10px 0 0 0; color: #78350f; font-size: 14px;">⏱️ Time needed: {{.TimeEstimate}}</p>
  </div>

  <p style="font-size: 15px; color: #374151; line-height: 1.8; margin-bottom: 25px;">{{.ShortDescription}}</p>
  {{end}}

  <div style="background-color: #eff6ff; padding: 20px; border-radius: 12px; margin-bottom: 30px;">
    <p style="color: #1e40af; font-size: 16px; margin: 0; text-align: center;">
      <strong>Reply to this email if you complete it - we'd love to hear how it goes!</strong>
    </p>
  </div>

  <p style="font-size: 15px; color: #374151; margin-bottom: 10px;">- The Find Your Side Team</p>

  <p style="font-size: 14px; color: #6b7280; font-style: italic;">
    P.S. This is the only reminder we'll send unless you ask for more. You've got this! 💪
  </p>

  <div style="text-align: center; margin-top: 30px; padding-top: 20px; border-top: 1px solid #e5e7eb;">
    <p style="color: #6b7280; font-size: 12px; margin: 0;">Find Your Side - From Idea to Execution</p>
  </div>
</body>
</html>
`))

type day1EmailData struct {
	BusinessName     string
	TaskTitle        string
	TimeEstimate     string
	ShortDescription string
}

// RenderDay1ReminderHTML renders the one-off day-1 nudge. The task block is
// skipped when the stored playbook has no usable first task.
func RenderDay1ReminderHTML(businessName string, day1 *parse.DailyTask) (string, error) {
	data := day1EmailData{BusinessName: businessName}
	if day1 != nil {
		data.TaskTitle = day1.Title
		data.TimeEstimate = day1.TimeEstimate
		data.ShortDescription = firstSentences(day1.Description, 2)
	}
	var b strings.Builder
	if err := day1Tmpl.Execute(&b, data); err != nil {
		return "", err
	}
	return b.String(), nil
}

// firstSentences trims a long description down to its first n sentences.
func firstSentences(text string, n int) string {
	parts := strings.FieldsFunc(text, func(r rune) bool {
		return r == '.' || r == '!' || r == '?'
	})
	kept := make([]string, 0, n)
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		kept = append(kept, p)
		if len(kept) == n {
			break
		}
	}
	if len(kept) == 0 {
		return strings.TrimSpace(text)
	}
	return strings.Join(kept, ". ") + "."
}
