package models

import "time"

// Participant представляє одного учасника кімнати.
// Учасник належить виключно своїй кімнаті; після видалення хостом
// він зникає і з TurnOrder, і зі списку учасників.
type Participant struct {
	// ID is an opaque generated identifier (UUID).
	ID string `json:"id"`
	// Name is the display name given at join time.
	Name string `json:"name"`
	// Responses holds submitted arguments in submission order.
	Responses []Response `json:"responses"`
	// JoinedAt is the join timestamp; join order defines turn order.
	JoinedAt time.Time `json:"joined_at"`
}

// Response is one submitted argument. Immutable once appended.
type Response struct {
	// Round is the room round the argument was submitted in.
	Round int `json:"round"`
	// Transcript is the argument text (typed or transcribed from audio).
	Transcript string `json:"transcript"`
	// Scores holds the per-dimension evaluation for this argument.
	Scores ScoreSet `json:"scores"`
	// SubmittedAt is the acceptance timestamp.
	SubmittedAt time.Time `json:"submitted_at"`
}

// ScoreSet holds the raw per-dimension evaluation of a single argument.
// All dimensions are in [1,10]. EmotionalBias is the only "lower is
// better" dimension; scoring inverts it.
type ScoreSet struct {
	Logic         float64 `json:"logic"`
	Clarity       float64 `json:"clarity"`
	Relevance     float64 `json:"relevance"`
	EmotionalBias float64 `json:"emotional_bias"`

	// Optional free-text commentary from the evaluator.
	Summary    string `json:"summary,omitempty"`
	FactCheck  string `json:"fact_check,omitempty"`
	Commentary string `json:"commentary,omitempty"`

	// FinalScore and RawAverage are display snapshots cached at
	// submission time. The authoritative values are recomputed from
	// the raw dimensions whenever needed.
	FinalScore float64 `json:"final_score"`
	RawAverage float64 `json:"raw_average"`
}
