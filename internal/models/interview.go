package models

import (
	"strings"
	"time"
)

// Speaker identifies who produced an interview message.
type Speaker string

const (
	SpeakerInterviewer Speaker = "interviewer"
	SpeakerCandidate   Speaker = "candidate"
)

// InterviewMessage is one utterance in an interview session.
type InterviewMessage struct {
	Speaker Speaker `json:"speaker"`
	Text    string  `json:"text"`
}

// InterviewStatus is the lifecycle state of an interview session.
type InterviewStatus string

const (
	InterviewActive   InterviewStatus = "active"
	InterviewComplete InterviewStatus = "complete"
)

// Interview focus areas and difficulties. Unknown input is normalized
// by ParseFocus/ParseDifficulty, same rule as ParseMode.
const (
	FocusTechnical  = "technical"
	FocusBehavioral = "behavioral"
	FocusHR         = "hr"
	FocusMixed      = "mixed"

	DifficultyEasy   = "easy"
	DifficultyMedium = "medium"
	DifficultyHard   = "hard"
)

// ParseFocus normalizes an interview focus string, defaulting to mixed.
func ParseFocus(s string) string {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case FocusTechnical:
		return FocusTechnical
	case FocusBehavioral:
		return FocusBehavioral
	case FocusHR:
		return FocusHR
	default:
		return FocusMixed
	}
}

// ParseDifficulty normalizes a difficulty string, defaulting to medium.
func ParseDifficulty(s string) string {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case DifficultyEasy:
		return DifficultyEasy
	case DifficultyHard:
		return DifficultyHard
	default:
		return DifficultyMedium
	}
}

// InterviewSession is one single-user AI interview. Messages is the
// bounded prompt-construction buffer; FullTranscript is the unbounded
// exchange log kept for later evaluation and export. Summarization
// trims Messages only; FullTranscript never loses information.
type InterviewSession struct {
	ID         string `json:"id"`
	Role       string `json:"role"`
	Focus      string `json:"focus"`
	Difficulty string `json:"difficulty"`
	// SystemPrompt is derived once at creation and never changes.
	SystemPrompt string `json:"-"`
	// Messages is the raw window: at most the last 3 exchanges.
	Messages []InterviewMessage `json:"messages"`
	// FullTranscript is the complete ordered exchange log.
	FullTranscript []InterviewMessage `json:"full_transcript"`
	// ConversationSummary is the compressed form of everything trimmed
	// out of Messages; replaced (not appended) on each summarization.
	ConversationSummary string `json:"conversation_summary,omitempty"`
	// QuestionCount is the number of interviewer questions asked so far.
	QuestionCount int             `json:"question_count"`
	Status        InterviewStatus `json:"status"`
	CreatedAt     time.Time       `json:"created_at"`
}
