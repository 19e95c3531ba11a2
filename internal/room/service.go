// Package room implements the room lifecycle state machine: admission,
// turn ordering, the single-flight submission guard and final report
// generation.
//
// Every mutating operation runs its load-check-mutate-save sequence
// inside a per-room critical section, so at most one submission is ever
// accepted for a given (room, turn) pair even under concurrent
// requests. The only long wait, the evaluator call, happens outside
// the lock, with the preconditions re-checked against the authoritative
// state before the write.
package room

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"roundtable/backend/internal/ai"
	"roundtable/backend/internal/apperr"
	"roundtable/backend/internal/config"
	"roundtable/backend/internal/models"
	"roundtable/backend/internal/roomstore"
	"roundtable/backend/internal/scoring"
)

// Evaluator scores one transcript against the room topic. Implemented
// by the AI client; nil is allowed and means the deterministic offline
// evaluator is always used.
type Evaluator interface {
	Evaluate(ctx context.Context, topic, transcript string, mode models.Mode) (models.ScoreSet, error)
}

// Notifier is told when a room's final report is ready. Optional.
type Notifier interface {
	ResultsReady(rep *models.Report)
}

// Service is the room state machine over the store.
type Service struct {
	store    roomstore.Store
	eval     Evaluator
	notifier Notifier

	// mu guards locks; each room gets its own mutex, created on first
	// touch and kept for the process lifetime.
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewService creates the room service. eval and notifier may be nil.
func NewService(store roomstore.Store, eval Evaluator, notifier Notifier) *Service {
	return &Service{
		store:    store,
		eval:     eval,
		notifier: notifier,
		locks:    make(map[string]*sync.Mutex),
	}
}

// lockRoom returns the mutex for a room code, creating it on demand.
func (s *Service) lockRoom(code string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[code]
	if !ok {
		l = &sync.Mutex{}
		s.locks[code] = l
	}
	return l
}

// Create allocates a room with a fresh unique code and host secret.
// The returned room still carries HostSecret; the handler hands it to
// the host exactly once.
func (s *Service) Create(topic, mode string) (*models.Room, error) {
	if topic == "" {
		return nil, apperr.Validationf("topic is required")
	}

	for attempt := 0; attempt < config.RoomCodeMaxAttempts; attempt++ {
		code := NewCode()
		if _, err := s.store.GetRoom(code); err == nil {
			// Колізія коду — пробуємо інший.
			continue
		}

		room := &models.Room{
			Code:       code,
			Topic:      topic,
			Mode:       models.ParseMode(mode),
			HostSecret: uuid.New().String(),
			Status:     models.StatusWaiting,
			CreatedAt:  time.Now(),
		}
		if err := s.store.CreateRoom(room); err != nil {
			continue
		}
		log.Printf("INFO: Room %s created (topic: %q, mode: %s)", code, topic, room.Mode)
		return room, nil
	}
	return nil, fmt.Errorf("failed to allocate a unique room code")
}

// Join admits a new participant. Rejected when the room is locked or
// already past collecting.
func (s *Service) Join(code, name string) (*models.Participant, error) {
	code = NormalizeCode(code)
	if name == "" {
		return nil, apperr.Validationf("name is required")
	}

	l := s.lockRoom(code)
	l.Lock()
	defer l.Unlock()

	room, err := s.store.GetRoom(code)
	if err != nil {
		return nil, err
	}
	if room.Locked {
		return nil, apperr.Conflictf("room %s is locked", code)
	}
	if room.Status == models.StatusEvaluating || room.Status == models.StatusResults {
		return nil, apperr.Conflictf("room %s no longer accepts participants", code)
	}

	p := &models.Participant{
		ID:       uuid.New().String(),
		Name:     name,
		JoinedAt: time.Now(),
	}
	if err := s.store.AddParticipant(code, p); err != nil {
		return nil, err
	}
	room.TurnOrder = append(room.TurnOrder, p.ID)
	if err := s.store.UpdateRoom(room); err != nil {
		return nil, err
	}
	return p, nil
}

// SetLocked toggles the admission lock. Host only; existing
// participants are never evicted.
func (s *Service) SetLocked(code, secret string, locked bool) (*models.Room, error) {
	code = NormalizeCode(code)
	l := s.lockRoom(code)
	l.Lock()
	defer l.Unlock()

	room, err := s.hostRoom(code, secret)
	if err != nil {
		return nil, err
	}
	room.Locked = locked
	if err := s.store.UpdateRoom(room); err != nil {
		return nil, err
	}
	return room, nil
}

// Start moves the room into collecting, opens round 1 and hands the
// turn to the first joiner.
func (s *Service) Start(code, secret string) (*models.Room, error) {
	code = NormalizeCode(code)
	l := s.lockRoom(code)
	l.Lock()
	defer l.Unlock()

	room, err := s.hostRoom(code, secret)
	if err != nil {
		return nil, err
	}
	if room.Status != models.StatusWaiting {
		return nil, apperr.Conflictf("room %s already started", code)
	}
	if len(room.TurnOrder) == 0 {
		return nil, apperr.Conflictf("room %s has no participants", code)
	}

	room.Status = models.StatusCollecting
	room.CurrentRound = 1
	room.CurrentTurn = room.TurnOrder[0]
	if err := s.store.UpdateRoom(room); err != nil {
		return nil, err
	}
	return room, nil
}

// Submit accepts the current turn holder's argument, evaluates it and
// appends the immutable response. Exactly one submission is accepted
// per (room, turn): the turn holder is re-read from authoritative state
// both before and after the evaluator call, and a second submission for
// the same round is rejected even while the turn has not advanced.
func (s *Service) Submit(ctx context.Context, code, participantID, transcript string) (*models.Response, error) {
	code = NormalizeCode(code)
	if transcript == "" {
		return nil, apperr.Validationf("transcript is required")
	}

	l := s.lockRoom(code)
	l.Lock()
	room, err := s.checkSubmit(code, participantID)
	if err != nil {
		l.Unlock()
		return nil, err
	}
	round, topic, mode := room.CurrentRound, room.Topic, room.Mode
	l.Unlock()

	// Suspension point: no lock held while the evaluator call is in
	// flight. Room state stays untouched until it returns.
	scores := s.evaluate(ctx, topic, transcript, mode)

	l.Lock()
	defer l.Unlock()

	room, err = s.checkSubmit(code, participantID)
	if err != nil {
		return nil, err
	}
	if room.CurrentRound != round {
		return nil, apperr.Conflictf("turn expired for participant %s in room %s", participantID, code)
	}

	scores.FinalScore = scoring.FinalScore(scores, mode)
	scores.RawAverage = scoring.RawAverage(scores)
	resp := models.Response{
		Round:       round,
		Transcript:  transcript,
		Scores:      scores,
		SubmittedAt: time.Now(),
	}
	if err := s.store.AddResponse(code, participantID, resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// checkSubmit re-reads the room and verifies every submit precondition
// against the authoritative state. Caller holds the room lock.
func (s *Service) checkSubmit(code, participantID string) (*models.Room, error) {
	room, err := s.store.GetRoom(code)
	if err != nil {
		return nil, err
	}
	if room.Status != models.StatusCollecting {
		return nil, apperr.Conflictf("room %s is not collecting", code)
	}
	if room.CurrentTurn != participantID {
		return nil, apperr.Conflictf("not participant %s's turn", participantID)
	}
	p, err := s.store.GetParticipant(code, participantID)
	if err != nil {
		return nil, err
	}
	for _, r := range p.Responses {
		if r.Round == room.CurrentRound {
			return nil, apperr.Conflictf("participant %s already submitted this turn", participantID)
		}
	}
	return room, nil
}

// evaluate calls the AI evaluator and falls back to the deterministic
// offline evaluator when the collaborator fails or is unconfigured, so
// a submission never fails on upstream trouble.
func (s *Service) evaluate(ctx context.Context, topic, transcript string, mode models.Mode) models.ScoreSet {
	if s.eval == nil {
		return ai.MockEvaluate(topic, transcript)
	}
	scores, err := s.eval.Evaluate(ctx, topic, transcript, mode)
	if err != nil {
		log.Printf("ERROR: Evaluator failed, using offline scores: %v", err)
		return ai.MockEvaluate(topic, transcript)
	}
	return scores
}

// NextTurn advances the turn to the next participant in join order.
// Wrapping past the end of the order increments the round. The new
// holder's raised hand, if any, is cleared.
func (s *Service) NextTurn(code, secret string) (*models.Room, error) {
	code = NormalizeCode(code)
	l := s.lockRoom(code)
	l.Lock()
	defer l.Unlock()

	room, err := s.hostRoom(code, secret)
	if err != nil {
		return nil, err
	}
	if room.Status != models.StatusCollecting {
		return nil, apperr.Conflictf("room %s is not collecting", code)
	}
	if len(room.TurnOrder) == 0 {
		return nil, apperr.Conflictf("room %s has no participants", code)
	}

	next := 0
	wrapped := false
	for i, pid := range room.TurnOrder {
		if pid == room.CurrentTurn {
			next = i + 1
			// Проходження повз кінець черги відкриває новий раунд.
			wrapped = next >= len(room.TurnOrder)
			break
		}
	}
	// next stays 0 when the turn is unassigned (the holder was removed
	// and the room refilled): the new head takes the turn without a
	// round boundary.
	if next >= len(room.TurnOrder) {
		next = 0
	}
	if wrapped {
		room.CurrentRound++
	}
	room.CurrentTurn = room.TurnOrder[next]
	room.LowerHand(room.CurrentTurn)

	if err := s.store.UpdateRoom(room); err != nil {
		return nil, err
	}
	return room, nil
}

// AssignTurn is the host override: the turn jumps straight to the given
// participant without touching the round counter.
func (s *Service) AssignTurn(code, secret, participantID string) (*models.Room, error) {
	code = NormalizeCode(code)
	l := s.lockRoom(code)
	l.Lock()
	defer l.Unlock()

	room, err := s.hostRoom(code, secret)
	if err != nil {
		return nil, err
	}
	if room.Status != models.StatusCollecting {
		return nil, apperr.Conflictf("room %s is not collecting", code)
	}
	if !room.HasParticipant(participantID) {
		return nil, apperr.NotFoundf("participant %s in room %s", participantID, code)
	}

	room.CurrentTurn = participantID
	room.LowerHand(participantID)
	if err := s.store.UpdateRoom(room); err != nil {
		return nil, err
	}
	return room, nil
}

// RaiseHand adds the participant to the raised-hands set. Idempotent;
// only valid while the room is collecting.
func (s *Service) RaiseHand(code, participantID string) (*models.Room, error) {
	code = NormalizeCode(code)
	l := s.lockRoom(code)
	l.Lock()
	defer l.Unlock()

	room, err := s.store.GetRoom(code)
	if err != nil {
		return nil, err
	}
	if room.Status != models.StatusCollecting {
		return nil, apperr.Conflictf("room %s is not collecting", code)
	}
	if !room.HasParticipant(participantID) {
		return nil, apperr.NotFoundf("participant %s in room %s", participantID, code)
	}

	room.RaiseHand(participantID)
	if err := s.store.UpdateRoom(room); err != nil {
		return nil, err
	}
	return room, nil
}

// LowerHand removes the participant from the raised-hands set.
// Idempotent in any status.
func (s *Service) LowerHand(code, participantID string) (*models.Room, error) {
	code = NormalizeCode(code)
	l := s.lockRoom(code)
	l.Lock()
	defer l.Unlock()

	room, err := s.store.GetRoom(code)
	if err != nil {
		return nil, err
	}
	if !room.HasParticipant(participantID) {
		return nil, apperr.NotFoundf("participant %s in room %s", participantID, code)
	}

	room.LowerHand(participantID)
	if err := s.store.UpdateRoom(room); err != nil {
		return nil, err
	}
	return room, nil
}

// RemoveParticipant evicts a participant. When the removed participant
// held the turn, the turn moves to the new head of the order, or clears
// when the room empties.
func (s *Service) RemoveParticipant(code, secret, participantID string) (*models.Room, error) {
	code = NormalizeCode(code)
	l := s.lockRoom(code)
	l.Lock()
	defer l.Unlock()

	room, err := s.hostRoom(code, secret)
	if err != nil {
		return nil, err
	}
	if !room.HasParticipant(participantID) {
		return nil, apperr.NotFoundf("participant %s in room %s", participantID, code)
	}

	if err := s.store.RemoveParticipant(code, participantID); err != nil {
		return nil, err
	}
	room.RemoveFromTurnOrder(participantID)
	room.LowerHand(participantID)
	if room.CurrentTurn == participantID {
		if len(room.TurnOrder) > 0 {
			room.CurrentTurn = room.TurnOrder[0]
		} else {
			room.CurrentTurn = ""
		}
	}
	if err := s.store.UpdateRoom(room); err != nil {
		return nil, err
	}
	return room, nil
}

// End closes the room: evaluating, final scores for every participant,
// ranked report snapshot, then results. Participants with zero
// responses are ranked as silent.
func (s *Service) End(ctx context.Context, code, secret string) (*models.Report, error) {
	code = NormalizeCode(code)
	l := s.lockRoom(code)
	l.Lock()
	defer l.Unlock()

	room, err := s.hostRoom(code, secret)
	if err != nil {
		return nil, err
	}
	if room.Status == models.StatusResults {
		return nil, apperr.Conflictf("room %s already ended", code)
	}

	room.Status = models.StatusEvaluating
	room.CurrentTurn = ""
	if err := s.store.UpdateRoom(room); err != nil {
		return nil, err
	}

	parts, err := s.store.ListParticipants(code)
	if err != nil {
		return nil, err
	}

	rep := &models.Report{
		RoomCode:    code,
		Topic:       room.Topic,
		Mode:        room.Mode,
		Rounds:      room.CurrentRound,
		Results:     scoring.Rank(parts, room.Mode),
		GeneratedAt: time.Now(),
	}
	if err := s.store.SaveReport(code, rep); err != nil {
		return nil, err
	}

	room.Status = models.StatusResults
	if err := s.store.UpdateRoom(room); err != nil {
		return nil, err
	}
	log.Printf("INFO: Room %s ended after %d round(s), %d participant(s)", code, rep.Rounds, len(rep.Results))

	if s.notifier != nil {
		go s.notifier.ResultsReady(rep)
	}
	return rep, nil
}

// State returns the room and its participants for client polling.
func (s *Service) State(code string) (*models.Room, []*models.Participant, error) {
	code = NormalizeCode(code)
	room, err := s.store.GetRoom(code)
	if err != nil {
		return nil, nil, err
	}
	parts, err := s.store.ListParticipants(code)
	if err != nil {
		return nil, nil, err
	}
	return room, parts, nil
}

// Report returns the final snapshot of an ended room.
func (s *Service) Report(code string) (*models.Report, error) {
	return s.store.GetReport(NormalizeCode(code))
}

// hostRoom loads the room and checks the host secret by exact equality.
func (s *Service) hostRoom(code, secret string) (*models.Room, error) {
	room, err := s.store.GetRoom(code)
	if err != nil {
		return nil, err
	}
	if secret == "" || secret != room.HostSecret {
		return nil, apperr.Unauthorizedf("host secret mismatch for room %s", code)
	}
	return room, nil
}
