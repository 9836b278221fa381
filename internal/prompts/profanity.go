package prompts

import (
	"regexp"
)

var forbiddenWords = []string{
	"damn", "hell", "crap", "suck", "screw", "shit", "fuck", "ass", "bastard",
	"bitch", "piss", "dick", "cock", "pussy", "douche", "douchebag", "asshole",
}

var forbiddenPatterns = compileForbidden()

func compileForbidden() []*regexp.Regexp {
	patterns := make([]*regexp.Regexp, 0, len(forbiddenWords))
	for _, word := range forbiddenWords {
		patterns = append(patterns, regexp.MustCompile(`(?i)\b`+regexp.QuoteMeta(word)+`\b`))
	}
	return patterns
}

// FilterProfanity masks whole-word matches of the deny list with "***".
// Applied to raw model output before parsing; the list and semantics carry
// over from the original deployment.
func FilterProfanity(text string) string {
	if text == "" {
		return text
	}
	filtered := text
	for _, pattern := range forbiddenPatterns {
		filtered = pattern.ReplaceAllString(filtered, "***")
	}
	return filtered
}
