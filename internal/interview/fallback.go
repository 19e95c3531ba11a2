package interview

import (
	"fmt"
	"strings"

	"roundtable/backend/internal/models"
)

// Fallback question banks keyed by focus. Used whenever the AI
// collaborator is unavailable, so interviews keep moving offline.
var fallbackQuestions = map[string][]string{
	models.FocusTechnical: {
		"Walk me through a technically challenging project you worked on recently.",
		"How do you decide between optimizing for readability and optimizing for performance?",
		"Describe a production incident you debugged. What was the root cause?",
		"How do you approach testing a component with many external dependencies?",
		"What trade-offs would you weigh when choosing between a queue and a direct call?",
		"Tell me about a time you had to work with a legacy system. How did you make changes safely?",
		"How do you keep your technical knowledge current?",
		"What is a technical decision you regret, and what did you learn from it?",
	},
	models.FocusBehavioral: {
		"Tell me about a time you disagreed with a teammate. How was it resolved?",
		"Describe a situation where you missed a deadline. What happened?",
		"Give an example of feedback you received that was hard to hear.",
		"Tell me about a time you had to deliver bad news to a stakeholder.",
		"Describe a moment you took ownership of a problem outside your role.",
		"How do you handle working with someone whose style clashes with yours?",
		"Tell me about a decision you made with incomplete information.",
		"What is an accomplishment you are proud of, and why?",
	},
	models.FocusHR: {
		"What attracts you to this role?",
		"Where do you see yourself in three years?",
		"What kind of team environment helps you do your best work?",
		"Why are you leaving your current position?",
		"What are your salary expectations?",
		"How do you balance workload during busy periods?",
		"What questions do you have about the company?",
		"What would make you turn down an offer?",
	},
	models.FocusMixed: {
		"Tell me about yourself and your background.",
		"What project best represents your strengths?",
		"Describe a conflict you handled at work.",
		"How do you approach learning something completely new?",
		"What does a well-run team look like to you?",
		"Tell me about a failure and what it taught you.",
		"What motivates you day to day?",
		"Why should we hire you for this role?",
	},
}

// foldSummary is the offline summarizer: it condenses trimmed exchanges
// into a short running digest and folds the previous summary in, so the
// new summary always replaces the old one wholesale.
func foldSummary(older []models.InterviewMessage, previous string) string {
	var b strings.Builder
	if previous != "" {
		b.WriteString(previous)
		b.WriteString(" ")
	}
	for _, m := range older {
		if m.Speaker != models.SpeakerCandidate {
			continue
		}
		// Truncation counts runes, not bytes, so multibyte answers
		// never lose a split character.
		text := m.Text
		if runes := []rune(text); len(runes) > 120 {
			text = string(runes[:120]) + "..."
		}
		b.WriteString("Candidate said: ")
		b.WriteString(text)
		b.WriteString(" ")
	}
	return strings.TrimSpace(b.String())
}

// FallbackQuestion returns the deterministic offline question for the
// given focus and position (asked = questions already asked).
func FallbackQuestion(role, focus string, asked int) string {
	bank, ok := fallbackQuestions[focus]
	if !ok {
		bank = fallbackQuestions[models.FocusMixed]
	}
	q := bank[asked%len(bank)]
	if asked == 0 {
		return fmt.Sprintf("Thanks for joining this %s interview. %s", role, q)
	}
	return q
}
