package scoring_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"roundtable/backend/internal/models"
	"roundtable/backend/internal/scoring"
)

var allModes = []models.Mode{
	models.ModeDebate,
	models.ModeClassroom,
	models.ModePanel,
	models.ModeMeeting,
}

// TestModeWeightsSumToOne verifies every weight vector sums to 1.0.
func TestModeWeightsSumToOne(t *testing.T) {
	for _, m := range allModes {
		w := scoring.ModeWeights(m)
		sum := w.Logic + w.Clarity + w.Relevance + w.EmotionalBias
		assert.InDelta(t, 1.0, sum, 1e-9, "weights for mode %s should sum to 1.0", m)
	}
}

// TestFinalScoreMonotonicity verifies the score grows with logic,
// clarity and relevance and shrinks as emotional bias grows.
func TestFinalScoreMonotonicity(t *testing.T) {
	base := models.ScoreSet{Logic: 5, Clarity: 5, Relevance: 5, EmotionalBias: 5}

	for _, m := range allModes {
		ref := scoring.FinalScore(base, m)

		up := base
		up.Logic = 9
		assert.GreaterOrEqual(t, scoring.FinalScore(up, m), ref, "mode %s: logic up", m)

		up = base
		up.Clarity = 9
		assert.GreaterOrEqual(t, scoring.FinalScore(up, m), ref, "mode %s: clarity up", m)

		up = base
		up.Relevance = 9
		assert.GreaterOrEqual(t, scoring.FinalScore(up, m), ref, "mode %s: relevance up", m)

		up = base
		up.EmotionalBias = 9
		assert.LessOrEqual(t, scoring.FinalScore(up, m), ref, "mode %s: bias up", m)
	}
}

// TestFinalScoreKnownValues pins the weighted combination for debate.
func TestFinalScoreKnownValues(t *testing.T) {
	s := models.ScoreSet{Logic: 8, Clarity: 6, Relevance: 7, EmotionalBias: 4}
	// 8*.35 + 6*.20 + 7*.30 + (10-4)*.15 = 2.8 + 1.2 + 2.1 + 0.9 = 7.0
	assert.Equal(t, 7.0, scoring.FinalScore(s, models.ModeDebate))
	// Raw average: (8 + 6 + 7 + 6) / 4 = 6.75 -> 6.8
	assert.Equal(t, 6.8, scoring.RawAverage(s))
}

// TestParseModeFallsBackToDebate verifies unknown modes normalize to
// debate at the parsing edge.
func TestParseModeFallsBackToDebate(t *testing.T) {
	assert.Equal(t, models.ModeDebate, models.ParseMode("karaoke"))
	assert.Equal(t, models.ModeDebate, models.ParseMode(""))
	assert.Equal(t, models.ModeClassroom, models.ParseMode(" Classroom "))
}

// TestParticipantResultSilent verifies zero responses yield score 0 and
// the silent status, never a NaN from an empty average.
func TestParticipantResultSilent(t *testing.T) {
	p := &models.Participant{ID: "p1", Name: "Alice", JoinedAt: time.Now()}

	res := scoring.ParticipantResult(p, models.ModeDebate)

	assert.Equal(t, models.ResultSilent, res.Status)
	assert.Equal(t, 0.0, res.WeightedScore)
	assert.Equal(t, 0.0, res.RawAverage)
	assert.Equal(t, 0, res.ResponseCount)
}

// TestRankTieBreakByJoinOrder verifies equal weighted scores rank by
// join order: the earlier joiner takes the better rank.
func TestRankTieBreakByJoinOrder(t *testing.T) {
	same := models.ScoreSet{Logic: 7, Clarity: 7, Relevance: 7, EmotionalBias: 3}
	first := &models.Participant{ID: "p1", Name: "Alice", Responses: []models.Response{{Round: 1, Scores: same}}}
	second := &models.Participant{ID: "p2", Name: "Bob", Responses: []models.Response{{Round: 1, Scores: same}}}

	results := scoring.Rank([]*models.Participant{first, second}, models.ModePanel)

	assert.Equal(t, "p1", results[0].ParticipantID)
	assert.Equal(t, 1, results[0].Rank)
	assert.Equal(t, "p2", results[1].ParticipantID)
	assert.Equal(t, 2, results[1].Rank)
	assert.Equal(t, results[0].WeightedScore, results[1].WeightedScore)
}

// TestRankDescendingWithSilent verifies ordering by weighted score and
// that silent participants still appear, ranked last.
func TestRankDescendingWithSilent(t *testing.T) {
	strong := &models.Participant{ID: "p1", Name: "Alice", Responses: []models.Response{
		{Round: 1, Scores: models.ScoreSet{Logic: 9, Clarity: 9, Relevance: 9, EmotionalBias: 2}},
	}}
	weak := &models.Participant{ID: "p2", Name: "Bob", Responses: []models.Response{
		{Round: 1, Scores: models.ScoreSet{Logic: 3, Clarity: 4, Relevance: 3, EmotionalBias: 8}},
	}}
	silent := &models.Participant{ID: "p3", Name: "Carol"}

	results := scoring.Rank([]*models.Participant{silent, weak, strong}, models.ModeDebate)

	assert.Equal(t, "p1", results[0].ParticipantID)
	assert.Equal(t, "p2", results[1].ParticipantID)
	assert.Equal(t, "p3", results[2].ParticipantID)
	assert.Equal(t, models.ResultSilent, results[2].Status)
	assert.Equal(t, 3, results[2].Rank)
}
