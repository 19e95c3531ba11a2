package models

import (
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

// ParticipantResult is the final per-participant evaluation computed
// when a room ends.
type ParticipantResult struct {
	ParticipantID string `json:"participant_id"`
	Name          string `json:"name"`
	// Rank is 1-based, ordered by WeightedScore descending. Equal
	// scores rank by join order.
	Rank int `json:"rank"`
	// ResponseCount is the number of accepted submissions.
	ResponseCount int `json:"response_count"`
	// WeightedScore is the mode-weighted average over all responses,
	// 0 when the participant never submitted.
	WeightedScore float64 `json:"weighted_score"`
	// RawAverage is the unweighted companion score (bias inverted).
	RawAverage float64 `json:"raw_average"`
	// Status is "scored", or "silent" for participants with 0 responses.
	Status string `json:"status"`
}

const (
	ResultScored = "scored"
	ResultSilent = "silent"
)

// Report is the final snapshot persisted when a room transitions to
// results.
type Report struct {
	RoomCode    string              `json:"room_code"`
	Topic       string              `json:"topic"`
	Mode        Mode                `json:"mode"`
	Rounds      int                 `json:"rounds"`
	Results     []ParticipantResult `json:"results"`
	GeneratedAt time.Time           `json:"generated_at"`
}

// ReportRecord is the archived report row in PostgreSQL. The full report
// is kept as a JSON payload; a few columns are lifted out for querying.
type ReportRecord struct {
	gorm.Model

	// RoomCode is the room the report belongs to.
	RoomCode string `gorm:"uniqueIndex;not null"`
	// Topic and Mode mirror the room metadata at end time.
	Topic string `gorm:"type:text;not null"`
	Mode  string `gorm:"size:16;not null"`
	// Rounds is the number of completed rounds.
	Rounds int
	// TurnOrder зберігає порядок черги на момент завершення.
	TurnOrder pq.StringArray `gorm:"type:text[]"`
	// Payload is the full Report serialized as JSON.
	Payload string `gorm:"type:text;not null"`
}

// InterviewRecord is the archived transcript of a completed interview
// session in PostgreSQL.
type InterviewRecord struct {
	gorm.Model

	SessionID     string `gorm:"uniqueIndex;not null"`
	Role          string `gorm:"type:text;not null"`
	Focus         string `gorm:"size:16;not null"`
	Difficulty    string `gorm:"size:16;not null"`
	QuestionCount int
	// Transcript is the full exchange log serialized as JSON.
	Transcript string `gorm:"type:text;not null"`
}
