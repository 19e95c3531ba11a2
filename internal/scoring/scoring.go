// Package scoring maps raw per-dimension evaluations to the single
// weighted score used for ranking. All computations are pure; scores
// are recomputed from raw dimensions, never trusted from snapshots.
package scoring

import (
	"math"
	"sort"

	"roundtable/backend/internal/models"
)

// Weights is the per-mode weight vector. Each vector sums to 1.0.
type Weights struct {
	Logic         float64
	Clarity       float64
	Relevance     float64
	EmotionalBias float64
}

// ModeWeights returns the weight vector for a mode. The switch is
// exhaustive over the closed Mode enumeration; ParseMode guarantees no
// other value reaches here, so the default arm only guards against
// hand-built Mode values and mirrors the debate profile.
func ModeWeights(m models.Mode) Weights {
	switch m {
	case models.ModeClassroom:
		return Weights{Logic: 0.20, Clarity: 0.35, Relevance: 0.35, EmotionalBias: 0.10}
	case models.ModePanel:
		return Weights{Logic: 0.30, Clarity: 0.25, Relevance: 0.25, EmotionalBias: 0.20}
	case models.ModeMeeting:
		return Weights{Logic: 0.25, Clarity: 0.30, Relevance: 0.35, EmotionalBias: 0.10}
	case models.ModeDebate:
		return Weights{Logic: 0.35, Clarity: 0.20, Relevance: 0.30, EmotionalBias: 0.15}
	default:
		return Weights{Logic: 0.35, Clarity: 0.20, Relevance: 0.30, EmotionalBias: 0.15}
	}
}

// FinalScore computes the mode-weighted score of one evaluation,
// rounded to one decimal. Emotional bias is inverted (10 - value):
// lower bias is better, every other dimension is higher-is-better.
func FinalScore(s models.ScoreSet, m models.Mode) float64 {
	w := ModeWeights(m)
	score := s.Logic*w.Logic +
		s.Clarity*w.Clarity +
		s.Relevance*w.Relevance +
		(10-s.EmotionalBias)*w.EmotionalBias
	return round1(score)
}

// RawAverage computes the unweighted mean of the four dimensions with
// bias inverted, rounded to one decimal. Exposed alongside FinalScore
// for transparency.
func RawAverage(s models.ScoreSet) float64 {
	return round1((s.Logic + s.Clarity + s.Relevance + (10 - s.EmotionalBias)) / 4)
}

// ParticipantResult aggregates a participant's responses into their
// final result. Zero responses yields score 0 (not an average of an
// empty set) and the "silent" status.
func ParticipantResult(p *models.Participant, m models.Mode) models.ParticipantResult {
	res := models.ParticipantResult{
		ParticipantID: p.ID,
		Name:          p.Name,
		ResponseCount: len(p.Responses),
	}
	if len(p.Responses) == 0 {
		res.Status = models.ResultSilent
		return res
	}

	var weighted, raw float64
	for _, r := range p.Responses {
		weighted += FinalScore(r.Scores, m)
		raw += RawAverage(r.Scores)
	}
	res.WeightedScore = round1(weighted / float64(len(p.Responses)))
	res.RawAverage = round1(raw / float64(len(p.Responses)))
	res.Status = models.ResultScored
	return res
}

// Rank computes ranked results for all participants. Input order is
// join order; the sort is stable and descending by weighted score, so
// equal scores rank by join order. That tie-break is deliberate and
// documented, not an accident of map iteration.
func Rank(participants []*models.Participant, m models.Mode) []models.ParticipantResult {
	results := make([]models.ParticipantResult, 0, len(participants))
	for _, p := range participants {
		results = append(results, ParticipantResult(p, m))
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].WeightedScore > results[j].WeightedScore
	})
	for i := range results {
		results[i].Rank = i + 1
	}
	return results
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
