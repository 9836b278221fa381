package prompts

import (
	"fmt"
	"strings"
)

// PlaybookInput is the normalized input to the playbook prompt, derived
// either from a previously generated idea or from the free-form idea form.
type PlaybookInput struct {
	BusinessName        string
	BusinessDescription string
	Skills              []string
	TimeCommitment      string
	Budget              string
	FirstStep           string
	Email               string
}

// BuildPlaybookPrompt renders the 30-day playbook prompt: 5 weeks
// (validate, setup, MVP, launch, optimize), day-level tasks with time
// estimates and named resources. Pure and deterministic.
func BuildPlaybookPrompt(input PlaybookInput) string {
	skills := strings.Join(input.Skills, ", ")
	if skills == "" {
		skills = "general skills"
	}
	firstStep := input.FirstStep
	if firstStep == "" {
		firstStep = "Talk to potential customers to validate the problem"
	}

	var b strings.Builder

	b.WriteString("IMPORTANT: You are a professional business coach. Use clean, professional language appropriate for all audiences. No profanity, curse words, or inappropriate language. Keep tone encouraging and professional.\n\n")
	b.WriteString("You are an experienced business coach who has helped 500+ people launch side businesses while working full-time. You give SPECIFIC, TACTICAL advice - not generic theory. You understand real constraints: limited time, limited budget, fear of failure, impostor syndrome.\n\n")
	fmt.Fprintf(&b, `Create a detailed 30-day launch playbook for this business idea:

BUSINESS IDEA: %s
WHY IT FITS THEM: %s
TIME AVAILABLE: %s
BUDGET: %s
THEIR SKILLS: %s
FIRST VALIDATION STEP: %s
`, input.BusinessName, input.BusinessDescription, input.TimeCommitment, input.Budget, skills, firstStep)
	b.WriteString(`
STRUCTURE YOUR PLAYBOOK AS 5 WEEKS:
- Week 1 (Days 1-7): VALIDATE - Low-risk validation (just talking to people)
- Week 2 (Days 8-14): SETUP - Minimum commitment setup (free/cheap tools)
- Week 3 (Days 15-21): BUILD MVP - Create something real but imperfect
- Week 4 (Days 22-28): LAUNCH - Put it in front of real customers
- Week 5 (Days 29-30): OPTIMIZE & REFLECT - Learn and iterate

CRITICAL: BE HIGHLY SPECIFIC AND ACTIONABLE

For EACH of the 30 days provide a task with:
1. Task Title: action-oriented and specific, with numbers where possible
2. Description: 3-4 tactical sentences with exact actions, specific tools by
   name, concrete outcomes, and conditional advice based on their profile
3. Time Estimate: sized to their available time divided across 6-7 days/week
4. Resources: named tools with pricing tier, never categories

PERSONALIZATION REQUIREMENTS:
`)
	fmt.Fprintf(&b, `1. EXPLICITLY reference their skills (%s) in tasks
2. Adapt task sizes to their time commitment (%s)
3. Adapt tool suggestions to their budget (%s)
4. INCLUDE the validated first step (%s) as the Day 1 or Day 2 task, expanded with specifics
`, skills, input.TimeCommitment, input.Budget, firstStep)
	b.WriteString(`
For each WEEK provide:
- Week number (1-5) and title
- Focus area (specific, not vague)
- Success metric (must be MEASURABLE with exact numbers)
- Total estimated time (calculate based on daily tasks)

RESPOND IN JSON:
{
  "playbook": {
`)
	fmt.Fprintf(&b, "    \"businessName\": %q,\n", input.BusinessName)
	b.WriteString(`    "overview": "2-3 sentences about what they'll accomplish, referencing their specific skills and time available",
    "weeks": [
      {
        "week": 1,
        "title": "Validate",
        "focusArea": "Specific description of what gets validated this week",
        "successMetric": "Measurable goal with exact number",
        "totalTime": "X-Y hours total",
        "dailyTasks": [
          {
            "day": 1,
            "title": "Specific action-oriented title with numbers",
            "description": "3-4 tactical sentences with specific tools, exact numbers, and concrete outcomes.",
            "timeEstimate": "30-45 minutes",
            "resources": ["Specific Tool Name 1 (with pricing/tier)", "Specific Tool Name 2"]
          }
        ]
      }
    ]
  }
}

Generate all 30 days with this level of tactical specificity and personalization.

Respond with ONLY valid JSON, no other text.`)

	return b.String()
}
