package parse

import "fmt"

type fallbackWeek struct {
	title         string
	focusArea     string
	successMetric string
	totalTime     string
	tasks         []fallbackTask
}

type fallbackTask struct {
	title        string
	description  string
	timeEstimate string
	resources    []string
}

var fallbackWeeks = []fallbackWeek{
	{
		title:         "Validate",
		focusArea:     "Confirm real people have the problem before building anything",
		successMetric: "10 conversations with potential customers",
		totalTime:     "4-6 hours total",
		tasks: []fallbackTask{
			{"List 20 people who might have this problem", "Go through your contacts, LinkedIn connections, and local groups. Write down 20 names of people who plausibly face the problem your business solves. Do not filter yet, volume matters more than fit at this stage.", "30-45 minutes", []string{"Google Sheets (free)", "LinkedIn (free)"}},
			{"Draft 5 interview questions", "Write open questions about how people handle the problem today, what it costs them, and what they have already tried. Avoid pitching; you are listening, not selling.", "30 minutes", []string{"The Mom Test (book)", "Notion (free)"}},
			{"Message 10 people and ask for 15 minutes", "Send short, personal messages to the first 10 names on your list. Mention why you thought of them specifically and ask for a 15-minute chat this week.", "45 minutes", []string{"LinkedIn (free)", "Gmail (free)"}},
			{"Run your first 2 interviews", "Hold two conversations using your questions. Take notes on exact phrases people use to describe the problem. Resist explaining your idea until the end.", "1 hour", []string{"Google Meet (free)", "Otter.ai (free tier)"}},
			{"Run 3 more interviews", "Three more conversations. Start tallying which pains come up repeatedly and which were one-offs.", "1-1.5 hours", []string{"Google Meet (free)"}},
			{"Summarize what you heard", "Group your notes into the top 3 recurring pains. Write one sentence per pain in the customers' own words.", "45 minutes", []string{"Notion (free)"}},
			{"Decide your wedge", "Pick the single pain you can address fastest and write a one-sentence offer around it. This sentence drives everything in week 2.", "30 minutes", []string{"Notion (free)"}},
		},
	},
	{
		title:         "Setup",
		focusArea:     "Stand up the minimum presence needed to take interest seriously",
		successMetric: "A live landing page collecting at least 5 signups",
		totalTime:     "4-6 hours total",
		tasks: []fallbackTask{
			{"Write your one-page pitch", "Turn your offer sentence into a headline, three benefit bullets, and a call to action. Use the exact phrases from your interviews.", "45 minutes", []string{"Notion (free)"}},
			{"Build a simple landing page", "Put the pitch on a one-page site with an email signup form. Do not buy a domain yet unless it is under $15.", "1-1.5 hours", []string{"Carrd ($19/year)", "Tally (free)"}},
			{"Set up a way to get paid", "Create a payment link or invoice template so you can accept money the moment someone says yes.", "30 minutes", []string{"Stripe Payment Links (free to set up)", "PayPal (free)"}},
			{"Open a lightweight tracker", "One spreadsheet: leads, conversations, signups, revenue. Update it every day for the rest of the month.", "20 minutes", []string{"Google Sheets (free)"}},
			{"Share the page with your interviewees", "Send the landing page to everyone you interviewed and ask directly whether they would use it. Ask the no's why not.", "30-45 minutes", []string{"Gmail (free)"}},
			{"Post where your customers already are", "Share the page in one or two communities your customers frequent. Lead with the problem, not the product.", "45 minutes", []string{"Reddit (free)", "Facebook Groups (free)"}},
			{"Review week 2 numbers", "Count signups and replies. If fewer than 5 people signed up, revisit the headline before building anything in week 3.", "30 minutes", []string{"Google Sheets (free)"}},
		},
	},
	{
		title:         "Build MVP",
		focusArea:     "Create the smallest version someone would pay for",
		successMetric: "One usable offering delivered to 3 test users",
		totalTime:     "6-8 hours total",
		tasks: []fallbackTask{
			{"Define the smallest sellable unit", "Write down exactly what a customer gets, how it is delivered, and how long it takes you. Cut anything that is not needed for the first sale.", "45 minutes", []string{"Notion (free)"}},
			{"Build the core, version zero", "Create the roughest working version: a service outline, a template, a manual process. Done beats polished this week.", "1.5-2 hours", []string{"Canva (free tier)", "Google Docs (free)"}},
			{"Recruit 3 test users", "Offer the MVP free or heavily discounted to three people from your signup list in exchange for honest feedback.", "45 minutes", []string{"Gmail (free)"}},
			{"Deliver to your first test user", "Walk the first person through the MVP end to end. Note every point where they hesitate or ask a question.", "1-1.5 hours", []string{"Google Meet (free)"}},
			{"Deliver to test users 2 and 3", "Two more deliveries. Fix only the issues that blocked someone from getting value.", "1.5-2 hours", []string{"Google Meet (free)"}},
			{"Collect written feedback", "Ask each test user three questions: what almost stopped you, what was most valuable, what would you pay. Save the answers verbatim.", "45 minutes", []string{"Tally (free)"}},
			{"Set your launch price", "Pick a price based on what test users said and comparable offers. Choose a number you can say out loud without flinching.", "30 minutes", []string{"Google Sheets (free)"}},
		},
	},
	{
		title:         "Launch",
		focusArea:     "Put the offer in front of real customers and ask for money",
		successMetric: "First paying customer (1 or more sales)",
		totalTime:     "5-7 hours total",
		tasks: []fallbackTask{
			{"Update the landing page with price and proof", "Add the price, a line of feedback from a test user, and a buy button. Clarity beats cleverness.", "1 hour", []string{"Carrd ($19/year)", "Stripe Payment Links (free)"}},
			{"Email your full list", "Announce to every signup and interviewee that you are live, with a direct ask to buy or to forward to one person who should.", "45 minutes", []string{"Gmail (free)"}},
			{"Make 10 direct asks", "Personally message 10 warm contacts with a specific, no-pressure offer. Direct asks convert far better than posts.", "1 hour", []string{"LinkedIn (free)"}},
			{"Post your launch publicly", "Share the story of why you built this in one or two communities. Answer every comment the same day.", "45 minutes", []string{"Reddit (free)", "X/Twitter (free)"}},
			{"Follow up with the interested", "Everyone who clicked, replied, or asked a question gets one friendly follow-up. Most sales happen here.", "45 minutes", []string{"Google Sheets (free)"}},
			{"Deliver to your first buyers", "Over-deliver for your first paying customers and ask permission to use their feedback publicly.", "1-1.5 hours", []string{"Google Meet (free)"}},
			{"Log launch results", "Record sales, replies, and objections in your tracker. Write down the single biggest reason people said no.", "30 minutes", []string{"Google Sheets (free)"}},
		},
	},
	{
		title:         "Optimize & Reflect",
		focusArea:     "Turn the first month into a repeatable next month",
		successMetric: "A written plan for the next 30 days with one concrete revenue goal",
		totalTime:     "2-3 hours total",
		tasks: []fallbackTask{
			{"Review the month's numbers", "Go through the tracker: conversations, signups, sales, hours spent. Identify the one activity that produced the most results per hour.", "45-60 minutes", []string{"Google Sheets (free)"}},
			{"Write your next 30-day plan", "Set one revenue goal, pick the two highest-leverage activities from the month, and schedule them into your calendar. Cut everything that produced nothing.", "1 hour", []string{"Notion (free)", "Google Calendar (free)"}},
		},
	},
}

// FallbackPlaybook returns the deterministic generic 30-day playbook served
// when model output for a playbook cannot be parsed. Callers tag the
// response as degraded so the client can show a notice.
func FallbackPlaybook(businessName string) *PlaybookPayload {
	if businessName == "" {
		businessName = "Your Side Business"
	}
	payload := &PlaybookPayload{
		BusinessName: businessName,
		Overview: fmt.Sprintf("A practical 30-day plan to take %s from idea to first customer. "+
			"Each week has one focus: validate, set up, build, launch, then optimize, with small daily tasks that fit around a full-time job.", businessName),
	}

	day := 1
	for i, week := range fallbackWeeks {
		w := Week{
			Week:          i + 1,
			Title:         week.title,
			FocusArea:     week.focusArea,
			SuccessMetric: week.successMetric,
			TotalTime:     week.totalTime,
		}
		for _, task := range week.tasks {
			w.DailyTasks = append(w.DailyTasks, DailyTask{
				Day:          day,
				Title:        task.title,
				Description:  task.description,
				TimeEstimate: task.timeEstimate,
				Resources:    task.resources,
			})
			day++
		}
		payload.Weeks = append(payload.Weeks, w)
	}
	return payload
}
