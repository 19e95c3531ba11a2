// Package insights derives read-only discussion statistics from a
// room's current participants and responses: contribution balance,
// dominance, disparity and group-quality signals. It never mutates
// state, as pure functions over store snapshots.
package insights

import (
	"fmt"
	"math"

	"roundtable/backend/internal/config"
	"roundtable/backend/internal/models"
	"roundtable/backend/internal/scoring"
)

// ParticipantStat is one participant's contribution summary.
type ParticipantStat struct {
	ParticipantID string  `json:"participant_id"`
	Name          string  `json:"name"`
	Submissions   int     `json:"submissions"`
	SharePercent  float64 `json:"share_percent"`
}

// Insight is one qualitative observation about the discussion.
type Insight struct {
	// Kind classifies the insight: dominance, low_engagement, silent,
	// low_relevance, low_clarity, high_bias, score_disparity, balanced.
	Kind          string `json:"kind"`
	Message       string `json:"message"`
	ParticipantID string `json:"participant_id,omitempty"`
}

// Summary is the full insights view of a room.
type Summary struct {
	RoomCode         string `json:"room_code"`
	TotalSubmissions int    `json:"total_submissions"`
	// BalanceScore is 100 - 100*min(CV,1): 100 for perfectly even
	// contribution, 0 for a silent room.
	BalanceScore float64           `json:"balance_score"`
	Stats        []ParticipantStat `json:"stats"`
	Insights     []Insight         `json:"insights"`
}

// Analyze computes the insights summary for a room snapshot.
func Analyze(room *models.Room, participants []*models.Participant) Summary {
	sum := Summary{RoomCode: room.Code}

	total := 0
	for _, p := range participants {
		total += len(p.Responses)
	}
	sum.TotalSubmissions = total

	for _, p := range participants {
		stat := ParticipantStat{
			ParticipantID: p.ID,
			Name:          p.Name,
			Submissions:   len(p.Responses),
		}
		if total > 0 {
			stat.SharePercent = round1(100 * float64(len(p.Responses)) / float64(total))
		}
		sum.Stats = append(sum.Stats, stat)
	}

	sum.BalanceScore = balanceScore(participants, total)
	sum.Insights = collectInsights(room, participants, sum.Stats, total)
	return sum
}

// balanceScore: 0 for no submissions, 100 for <= 1 participant or zero
// variation, otherwise 100 - 100*min(stddev/mean, 1).
func balanceScore(participants []*models.Participant, total int) float64 {
	if total == 0 {
		return 0
	}
	if len(participants) <= 1 {
		return 100
	}

	mean := float64(total) / float64(len(participants))
	var variance float64
	for _, p := range participants {
		d := float64(len(p.Responses)) - mean
		variance += d * d
	}
	variance /= float64(len(participants))

	cv := math.Sqrt(variance) / mean
	if cv > 1 {
		cv = 1
	}
	return round1(100 - 100*cv)
}

func collectInsights(room *models.Room, participants []*models.Participant, stats []ParticipantStat, total int) []Insight {
	var out []Insight

	for _, st := range stats {
		if st.SharePercent > config.DominanceSharePercent {
			out = append(out, Insight{
				Kind:          "dominance",
				Message:       fmt.Sprintf("%s produced %.1f%% of all submissions", st.Name, st.SharePercent),
				ParticipantID: st.ParticipantID,
			})
		}
	}

	if total > 0 && total < len(participants) {
		out = append(out, Insight{
			Kind:    "low_engagement",
			Message: fmt.Sprintf("only %d submission(s) across %d participants", total, len(participants)),
		})
	}

	for _, st := range stats {
		if total > 0 && st.Submissions == 0 {
			out = append(out, Insight{
				Kind:          "silent",
				Message:       fmt.Sprintf("%s has not contributed yet", st.Name),
				ParticipantID: st.ParticipantID,
			})
		}
	}

	out = append(out, qualityInsights(room, participants, total)...)

	// Позитивний інсайт лише тоді, коли жоден інший не спрацював
	// і є хоча б одна подача.
	if len(out) == 0 && total > 0 {
		out = append(out, Insight{
			Kind:    "balanced",
			Message: "contribution and quality look balanced across the group",
		})
	}
	return out
}

// qualityInsights evaluates group-average thresholds on relevance,
// clarity and bias, plus the best/worst weighted-score gap.
func qualityInsights(room *models.Room, participants []*models.Participant, total int) []Insight {
	if total == 0 {
		return nil
	}

	var out []Insight
	var relevance, clarity, bias float64
	for _, p := range participants {
		for _, r := range p.Responses {
			relevance += r.Scores.Relevance
			clarity += r.Scores.Clarity
			bias += r.Scores.EmotionalBias
		}
	}
	relevance /= float64(total)
	clarity /= float64(total)
	bias /= float64(total)

	if relevance < config.LowRelevanceAverage {
		out = append(out, Insight{
			Kind:    "low_relevance",
			Message: fmt.Sprintf("group relevance average is %.1f; the discussion is drifting off topic", relevance),
		})
	}
	if clarity < config.LowClarityAverage {
		out = append(out, Insight{
			Kind:    "low_clarity",
			Message: fmt.Sprintf("group clarity average is %.1f; arguments are hard to follow", clarity),
		})
	}
	if bias > config.HighBiasAverage {
		out = append(out, Insight{
			Kind:    "high_bias",
			Message: fmt.Sprintf("group emotional-bias average is %.1f; the tone is heated", bias),
		})
	}

	best, worst := math.Inf(-1), math.Inf(1)
	var bestName, worstName string
	scored := 0
	for _, p := range participants {
		res := scoring.ParticipantResult(p, room.Mode)
		if res.Status != models.ResultScored {
			continue
		}
		scored++
		if res.WeightedScore > best {
			best, bestName = res.WeightedScore, p.Name
		}
		if res.WeightedScore < worst {
			worst, worstName = res.WeightedScore, p.Name
		}
	}
	if scored >= 2 && best-worst > config.ScoreDisparityGap {
		out = append(out, Insight{
			Kind:    "score_disparity",
			Message: fmt.Sprintf("%.1f point gap between %s and %s", best-worst, bestName, worstName),
		})
	}
	return out
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
