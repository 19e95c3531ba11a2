package interview

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"

	"roundtable/backend/internal/models"
)

// TestFoldSummaryTruncatesOnRuneBoundary verifies long multibyte
// answers are shortened without splitting a character: the folded
// summary must stay valid UTF-8.
func TestFoldSummaryTruncatesOnRuneBoundary(t *testing.T) {
	long := strings.Repeat("ї", 200)
	older := []models.InterviewMessage{
		{Speaker: models.SpeakerInterviewer, Text: "Розкажіть про себе."},
		{Speaker: models.SpeakerCandidate, Text: long},
	}

	summary := foldSummary(older, "")

	assert.True(t, utf8.ValidString(summary), "summary must be valid UTF-8")
	assert.Contains(t, summary, strings.Repeat("ї", 120)+"...")
	assert.NotContains(t, summary, strings.Repeat("ї", 121))
}

// TestFoldSummaryKeepsPreviousSummary verifies the previous digest is
// folded in ahead of the new exchanges.
func TestFoldSummaryKeepsPreviousSummary(t *testing.T) {
	older := []models.InterviewMessage{
		{Speaker: models.SpeakerCandidate, Text: "I led the migration project."},
	}

	summary := foldSummary(older, "Earlier: discussed background.")

	assert.True(t, strings.HasPrefix(summary, "Earlier: discussed background."))
	assert.Contains(t, summary, "Candidate said: I led the migration project.")
}
