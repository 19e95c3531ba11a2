package models

import (
	"strings"
	"time"
)

// Mode is the scoring-weight profile applied uniformly to a room.
// It is a closed enumeration: ParseMode is the only way a Mode enters
// the system, so downstream switches never see another value.
type Mode string

const (
	ModeDebate    Mode = "debate"
	ModeClassroom Mode = "classroom"
	ModePanel     Mode = "panel"
	ModeMeeting   Mode = "meeting"
)

// ParseMode нормалізує вхідний рядок у відомий режим.
// Невідомі значення приводяться до ModeDebate — це правило парсингу
// на межі системи, а не прихований fallback у таблиці ваг.
func ParseMode(s string) Mode {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case ModeClassroom:
		return ModeClassroom
	case ModePanel:
		return ModePanel
	case ModeMeeting:
		return ModeMeeting
	default:
		return ModeDebate
	}
}

// RoomStatus is the lifecycle state of a room. Transitions are monotonic:
// waiting -> collecting -> evaluating -> results.
type RoomStatus string

const (
	StatusWaiting    RoomStatus = "waiting"
	StatusCollecting RoomStatus = "collecting"
	StatusEvaluating RoomStatus = "evaluating"
	StatusResults    RoomStatus = "results"
)

// Room represents one discussion session grouping participants around a
// topic and a mode. The host controls the lifecycle via HostSecret.
type Room struct {
	// Code is the 6-char unique room identifier (join code).
	Code string `json:"code"`
	// Topic is the discussion subject announced to participants.
	Topic string `json:"topic"`
	// Mode selects the scoring-weight profile.
	Mode Mode `json:"mode"`
	// HostSecret authorizes host-only operations. Never serialized to clients.
	HostSecret string `json:"-"`
	// Status is the current lifecycle state.
	Status RoomStatus `json:"status"`
	// Locked blocks new joins without evicting existing participants.
	Locked bool `json:"locked"`
	// CurrentRound is 0 before start and only ever increases afterwards.
	CurrentRound int `json:"current_round"`
	// CurrentTurn is the participant ID whose submission is expected,
	// or empty when no turn is assigned. Invariant: empty or a member
	// of TurnOrder.
	CurrentTurn string `json:"current_turn"`
	// TurnOrder holds participant IDs in join order.
	TurnOrder []string `json:"turn_order"`
	// RaisedHands holds participant IDs with a raised hand (set semantics).
	RaisedHands []string `json:"raised_hands"`
	// CreatedAt is the room creation timestamp.
	CreatedAt time.Time `json:"created_at"`
}

// HasParticipant reports whether id is a member of TurnOrder.
func (r *Room) HasParticipant(id string) bool {
	for _, pid := range r.TurnOrder {
		if pid == id {
			return true
		}
	}
	return false
}

// HandRaised reports whether the participant currently has a raised hand.
func (r *Room) HandRaised(id string) bool {
	for _, pid := range r.RaisedHands {
		if pid == id {
			return true
		}
	}
	return false
}

// RaiseHand adds id to RaisedHands. Idempotent.
func (r *Room) RaiseHand(id string) {
	if r.HandRaised(id) {
		return
	}
	r.RaisedHands = append(r.RaisedHands, id)
}

// LowerHand removes id from RaisedHands. Idempotent.
func (r *Room) LowerHand(id string) {
	for i, pid := range r.RaisedHands {
		if pid == id {
			r.RaisedHands = append(r.RaisedHands[:i], r.RaisedHands[i+1:]...)
			return
		}
	}
}

// RemoveFromTurnOrder deletes id from TurnOrder, preserving join order.
func (r *Room) RemoveFromTurnOrder(id string) {
	for i, pid := range r.TurnOrder {
		if pid == id {
			r.TurnOrder = append(r.TurnOrder[:i], r.TurnOrder[i+1:]...)
			return
		}
	}
}
