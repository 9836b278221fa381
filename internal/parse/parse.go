package parse

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Idea is one entry of a generated idea set (canonical 4-field shape).
type Idea struct {
	Name         string `json:"name"`
	WhyItFits    string `json:"whyItFits"`
	TimeRequired string `json:"timeRequired"`
	FirstStep    string `json:"firstStep"`
}

type IdeasPayload struct {
	Ideas []Idea `json:"ideas"`
}

type DailyTask struct {
	Day          int      `json:"day"`
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	TimeEstimate string   `json:"timeEstimate"`
	Resources    []string `json:"resources"`
}

type Week struct {
	Week          int         `json:"week"`
	Title         string      `json:"title"`
	FocusArea     string      `json:"focusArea"`
	SuccessMetric string      `json:"successMetric"`
	TotalTime     string      `json:"totalTime"`
	DailyTasks    []DailyTask `json:"dailyTasks"`
}

type PlaybookPayload struct {
	BusinessName string `json:"businessName"`
	Overview     string `json:"overview"`
	Weeks        []Week `json:"weeks"`
}

type playbookEnvelope struct {
	Playbook *PlaybookPayload `json:"playbook"`
}

const sampleLen = 300

// Error is a parse failure carrying a truncated sample of the offending
// model output for diagnostics.
type Error struct {
	Reason string
	Sample string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s (sample: %q)", e.Reason, e.Sample)
}

func newError(reason, raw string) *Error {
	sample := raw
	if len(sample) > sampleLen {
		sample = sample[:sampleLen]
	}
	return &Error{Reason: reason, Sample: sample}
}

// StripFences removes a leading/trailing markdown code fence (```json or
// bare ```) the model sometimes wraps its output in despite instructions.
func StripFences(raw string) string {
	text := strings.TrimSpace(raw)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	return strings.TrimSpace(text)
}

// Ideas parses raw model output into an idea set. Fails when the stripped
// text is not JSON, lacks the top-level ideas array, or the array is empty.
func Ideas(raw string) (*IdeasPayload, error) {
	text := StripFences(raw)

	var payload IdeasPayload
	if err := json.Unmarshal([]byte(text), &payload); err != nil {
		return nil, newError("model output is not valid JSON", text)
	}
	if payload.Ideas == nil {
		return nil, newError("model output has no ideas array", text)
	}
	if len(payload.Ideas) == 0 {
		return nil, newError("model returned an empty ideas array", text)
	}
	return &payload, nil
}

// Playbook parses raw model output into a playbook. Accepts both the
// enveloped form {"playbook": {...}} and the bare object; fails when the
// weeks array is missing or empty.
func Playbook(raw string) (*PlaybookPayload, error) {
	text := StripFences(raw)

	var envelope playbookEnvelope
	if err := json.Unmarshal([]byte(text), &envelope); err == nil && envelope.Playbook != nil {
		return validatePlaybook(envelope.Playbook, text)
	}

	var payload PlaybookPayload
	if err := json.Unmarshal([]byte(text), &payload); err != nil {
		return nil, newError("model output is not valid JSON", text)
	}
	return validatePlaybook(&payload, text)
}

func validatePlaybook(p *PlaybookPayload, text string) (*PlaybookPayload, error) {
	if len(p.Weeks) == 0 {
		return nil, newError("playbook has no weeks", text)
	}
	for _, week := range p.Weeks {
		if len(week.DailyTasks) == 0 {
			return nil, newError(fmt.Sprintf("week %d has no daily tasks", week.Week), text)
		}
	}
	return p, nil
}
