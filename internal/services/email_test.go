package services

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/findyourside/findyourside-backend/internal/apierr"
	"github.com/findyourside/findyourside-backend/internal/parse"
	"github.com/findyourside/findyourside-backend/internal/types"
)

func testPlaybookPayload() *parse.PlaybookPayload {
	return &parse.PlaybookPayload{
		BusinessName: "Dog Walking Co",
		Overview:     "Launch in 30 days.",
		Weeks: []parse.Week{
			{
				Week: 1, Title: "Validate", FocusArea: "f", SuccessMetric: "m", TotalTime: "t",
				DailyTasks: []parse.DailyTask{
					{Day: 1, Title: "List 20 owners", Description: "Write them down. Then call three. Then relax.", TimeEstimate: "30 minutes", Resources: []string{"Google Sheets (free)"}},
					{Day: 2, Title: "Call them", Description: "Short calls.", TimeEstimate: "1 hour", Resources: nil},
				},
			},
		},
	}
}

func TestRenderPlaybookHTML(t *testing.T) {
	html, err := RenderPlaybookHTML("Dog Walking Co", testPlaybookPayload())
	if err != nil {
		t.Fatalf("RenderPlaybookHTML: %v", err)
	}

	for _, want := range []string{
		"Your 30-Day Launch Playbook",
		"Dog Walking Co",
		"Week 1: Validate",
		"Day 1",
		"List 20 owners",
		"30 minutes",
		"Google Sheets (free)",
	} {
		if !strings.Contains(html, want) {
			t.Errorf("rendered email missing %q", want)
		}
	}

	t.Run("escapes markup in model output", func(t *testing.T) {
		payload := testPlaybookPayload()
		payload.Weeks[0].DailyTasks[0].Title = `<script>alert("x")</script>`
		html, err := RenderPlaybookHTML("X", payload)
		if err != nil {
			t.Fatalf("RenderPlaybookHTML: %v", err)
		}
		if strings.Contains(html, "<script>") {
			t.Error("unescaped markup in rendered email")
		}
	})
}

func TestRenderDay1ReminderHTML(t *testing.T) {
	task := &parse.DailyTask{
		Day:          1,
		Title:        "List 20 owners",
		Description:  "Write them down. Then call three. Then relax some more.",
		TimeEstimate: "30 minutes",
	}

	html, err := RenderDay1ReminderHTML("Dog Walking Co", task)
	if err != nil {
		t.Fatalf("RenderDay1ReminderHTML: %v", err)
	}
	for _, want := range []string{
		"Ready to start Day 1?",
		"Dog Walking Co",
		"Day 1: List 20 owners",
		"30 minutes",
	} {
		if !strings.Contains(html, want) {
			t.Errorf("reminder missing %q", want)
		}
	}
	// The description is trimmed to two sentences.
	if strings.Contains(html, "relax some more") {
		t.Error("description was not shortened")
	}

	t.Run("nil task", func(t *testing.T) {
		html, err := RenderDay1ReminderHTML("Dog Walking Co", nil)
		if err != nil {
			t.Fatalf("RenderDay1ReminderHTML: %v", err)
		}
		if strings.Contains(html, "Day 1:") {
			t.Error("task block rendered without a task")
		}
	})
}

func TestFirstSentences(t *testing.T) {
	tests := []struct {
		name string
		in   string
		n    int
		want string
	}{
		{"two of three", "One. Two. Three.", 2, "One. Two."},
		{"fewer than n", "Only one.", 2, "Only one."},
		{"mixed punctuation", "Really? Yes! Go.", 2, "Really. Yes."},
		{"no punctuation", "no terminator here", 2, "no terminator here."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := firstSentences(tt.in, tt.n); got != tt.want {
				t.Errorf("firstSentences(%q, %d) = %q, want %q", tt.in, tt.n, got, tt.want)
			}
		})
	}
}

func TestSendPlaybook(t *testing.T) {
	ctx := context.Background()

	t.Run("sends and records opt-in", func(t *testing.T) {
		mailer := &fakeMailer{}
		playbooks := newFakePlaybooks()
		svc := NewEmailService(testLogger(t), mailer, playbooks)

		row, _ := playbooks.Create(ctx, nil, &types.Playbook{UserEmail: "a@b.com"})
		messageID, err := svc.SendPlaybook(ctx, SendPlaybookRequest{
			Email:        "a@b.com",
			BusinessIdea: "Dog Walking Co",
			Playbook:     testPlaybookPayload(),
			PlaybookID:   &row.ID,
			OptInDay1:    true,
		})
		if err != nil {
			t.Fatalf("SendPlaybook: %v", err)
		}
		if messageID != "msg-1" {
			t.Errorf("messageID = %q", messageID)
		}
		if len(mailer.sent) != 1 || mailer.sent[0].To[0].Email != "a@b.com" {
			t.Fatalf("unexpected sends: %+v", mailer.sent)
		}
		if !playbooks.optIns[row.ID] {
			t.Error("opt-in flag not recorded")
		}
	})

	t.Run("opt-in skipped for someone else's playbook", func(t *testing.T) {
		mailer := &fakeMailer{}
		playbooks := newFakePlaybooks()
		svc := NewEmailService(testLogger(t), mailer, playbooks)

		row, _ := playbooks.Create(ctx, nil, &types.Playbook{UserEmail: "owner@b.com"})
		_, err := svc.SendPlaybook(ctx, SendPlaybookRequest{
			Email:        "other@b.com",
			BusinessIdea: "Dog Walking Co",
			Playbook:     testPlaybookPayload(),
			PlaybookID:   &row.ID,
			OptInDay1:    true,
		})
		if err != nil {
			t.Fatalf("SendPlaybook: %v", err)
		}
		if playbooks.optIns[row.ID] {
			t.Error("opt-in flag set on a playbook the sender does not own")
		}
	})

	t.Run("opt-in skipped for unknown playbook id", func(t *testing.T) {
		mailer := &fakeMailer{}
		playbooks := newFakePlaybooks()
		svc := NewEmailService(testLogger(t), mailer, playbooks)

		id := uuid.New()
		_, err := svc.SendPlaybook(ctx, SendPlaybookRequest{
			Email:        "a@b.com",
			BusinessIdea: "Dog Walking Co",
			Playbook:     testPlaybookPayload(),
			PlaybookID:   &id,
			OptInDay1:    true,
		})
		if err != nil {
			t.Fatalf("SendPlaybook: %v", err)
		}
		if len(playbooks.optIns) != 0 {
			t.Error("opt-in flag set for a playbook that does not exist")
		}
	})

	t.Run("missing fields", func(t *testing.T) {
		svc := NewEmailService(testLogger(t), &fakeMailer{}, newFakePlaybooks())
		_, err := svc.SendPlaybook(ctx, SendPlaybookRequest{Email: "a@b.com"})
		if apiErr := apierr.As(err); apiErr == nil || apiErr.Code != apierr.CodeValidation {
			t.Fatalf("expected validation error, got %v", err)
		}
	})
}
