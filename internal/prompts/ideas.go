package prompts

import (
	"fmt"
	"strings"
)

// QuizProfile is the quiz payload the ideas prompt is rendered from. Fields
// are interpolated into the prompt verbatim; prompt injection through free
// text is a known exposure of the product design.
type QuizProfile struct {
	Skills         []string `json:"skills"`
	TimeCommitment string   `json:"timeCommitment"`
	Budget         string   `json:"budget"`
	Interests      []string `json:"interests"`
	Goal           string   `json:"goal"`
	Experience     string   `json:"experience"`
	Email          string   `json:"email"`
}

// BuildIdeasPrompt renders the idea-generation prompt. Pure and
// deterministic; the requested shape is the canonical 5-idea set with
// name/whyItFits/timeRequired/firstStep.
func BuildIdeasPrompt(profile QuizProfile) string {
	var b strings.Builder

	b.WriteString("IMPORTANT: Generate professional business ideas using clean, appropriate language suitable for all users. No profanity or casual curse words. Keep tone encouraging and professional.\n\n")
	fmt.Fprintf(&b, `Based on these user inputs:
- Skills: %s
- Time: %s
- Budget: %s
- Interests: %s
- Goal: %s
- Experience: %s
`,
		strings.Join(profile.Skills, ", "),
		profile.TimeCommitment,
		profile.Budget,
		strings.Join(profile.Interests, ", "),
		profile.Goal,
		profile.Experience,
	)
	b.WriteString(`
Generate 5 side business ideas. For each idea provide:

1. Concept Name (clear, specific title, 3-7 words)
2. Why It Fits (2-3 personalized sentences connecting to user's skills/interests/goals)
3. Time Required (hours per week estimate, e.g., "5-10 hours/week")
4. First Step to Validate (one specific, actionable task they can do THIS WEEK to test demand)

DO NOT include:
- Match score percentages
- Income potential estimates
- Difficulty ratings
- Startup cost
- Time to first revenue or revenue timeline projections

Make ideas specific, actionable, and realistic.

Respond in JSON format with this structure:
{
  "ideas": [
    {
      "name": "Business Name",
      "whyItFits": "2-3 personalized sentences connecting to user's profile",
      "timeRequired": "Hours per week estimate",
      "firstStep": "One specific, actionable task to validate this week"
    }
  ]
}

Respond with ONLY valid JSON, no other text.`)

	return b.String()
}
